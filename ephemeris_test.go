package skybins

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEphemeris(t *testing.T) *Ephemeris {
	t.Helper()
	eph, err := NewEphemeris(1024)
	require.NoError(t, err)
	t.Cleanup(eph.Close)
	return eph
}

func TestEphemerisNightsOverSemester(t *testing.T) {
	eph := newEphemeris(t)
	s := Semester{Year: 2020, Half: HalfA}

	nights, err := NewNightSequence(eph, GN, s.Start(GN), s.End(GN), TwilightNautical).All()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(nights), 180)
	assert.LessOrEqual(t, len(nights), 183)
	assertOrdered(t, nights)

	for _, n := range nights {
		d := n.Duration()
		assert.Greater(t, d, 8*time.Hour, n.String())
		assert.Less(t, d, 12*time.Hour, n.String())
	}
}

func TestEphemerisNightIsMemoized(t *testing.T) {
	eph := newEphemeris(t)
	approx := time.Date(2020, 8, 1, 14, 0, 0, 0, GS.Zone)

	a, err := eph.Night(TwilightAstronomical, approx, GS)
	require.NoError(t, err)
	b, err := eph.Night(TwilightAstronomical, approx.Add(3*time.Hour), GS)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	n, err := eph.Night(TwilightNautical, approx, GS)
	require.NoError(t, err)
	assert.True(t, n.Start.Before(a.Start), "nautical night starts before astronomical")
}

func TestEphemerisLST(t *testing.T) {
	eph := newEphemeris(t)
	assert.InDelta(t, 18.697374558, eph.LST(2451545.0, 0), 1e-4)
}

func TestEndToEndMaunaKea(t *testing.T) {
	if testing.Short() {
		t.Skip("solves a full semester")
	}
	eph := newEphemeris(t)
	calc, err := NewCalculator(DefaultCalculatorConfig(eph), nil)
	require.NoError(t, err)

	r, err := calc.Get(GN, Semester{Year: 2020, Half: HalfA}, DefaultRaBinSize, DefaultDecBinSize)
	require.NoError(t, err)

	hrs := r.RaHours()
	require.Len(t, hrs, 24)
	var total float64
	for _, h := range hrs {
		assert.GreaterOrEqual(t, h.Value(), 0.0)
		total += h.Value()
	}
	// Roughly ten one-hour bins credited on each of ~182 nights.
	assert.Greater(t, total, 1000.0)
	assert.Less(t, total, 2600.0)

	perc := r.DecPercentages()
	require.Len(t, perc, 18)
	assert.Equal(t, 100.0, perc[10].Value())
	for i, p := range perc {
		assert.GreaterOrEqual(t, p.Value(), 0.0, "bin %d", i)
	}
	// The far southern bins never rise above airmass 2.15 from Mauna Kea.
	for i := 0; i <= 4; i++ {
		assert.Equal(t, 0.0, perc[i].Value(), "bin %d", i)
	}

	again, err := calc.Get(GN, Semester{Year: 2020, Half: HalfA}, DefaultRaBinSize, DefaultDecBinSize)
	require.NoError(t, err)
	assert.Same(t, r, again)
}
