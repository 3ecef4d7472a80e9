package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thurmanmarka/skybins"
)

// fixedNights returns 19:00 -> 05:30 local for every date.
type fixedNights struct{}

func (fixedNights) Night(_ skybins.TwilightKind, approx time.Time, site skybins.Site) (skybins.Night, error) {
	y, m, d := approx.In(site.Zone).Date()
	start := time.Date(y, m, d, 19, 0, 0, 0, site.Zone)
	return skybins.Night{Site: site, Start: start, End: start.Add(10*time.Hour + 30*time.Minute)}, nil
}

func TestProfile(t *testing.T) {
	site := skybins.Site{Name: "T", Zone: time.UTC}
	in := `date,evening,morning
2020-02-01,19:02,05:30
2020-02-02,18:59,05:33:30
2020-02-03,bad,05:30
short
`
	sum, err := profile(strings.NewReader(in), fixedNights{}, site, skybins.TwilightNautical, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, sum.rows, 2)
	assert.Equal(t, 2, sum.skipped)

	assert.InDelta(t, -2, sum.rows[0].eveningErr, 1e-9)
	assert.InDelta(t, 0, sum.rows[0].morningErr, 1e-9)
	assert.InDelta(t, 1, sum.rows[1].eveningErr, 1e-9)
	assert.InDelta(t, -3.5, sum.rows[1].morningErr, 1e-9)

	assert.InDelta(t, -0.5, sum.evening.mean(), 1e-9)
	assert.InDelta(t, 1.5, sum.absEve.mean(), 1e-9)
	assert.Equal(t, 3.5, sum.absMorn.max)
}

func TestParseLocalTime(t *testing.T) {
	d := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	got, err := parseLocalTime(d, "06:07:08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 2, 1, 6, 7, 8, 0, time.UTC), got)

	_, err = parseLocalTime(d, "6pm")
	assert.Error(t, err)
}
