package skybins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInSiderealWindow(t *testing.T) {
	tests := []struct {
		name          string
		eve, morn, ra float64
		want          bool
	}{
		{"plain inside", 6, 14, 10, true},
		{"plain on evening edge", 6, 14, 6, false},
		{"plain on morning edge", 6, 14, 14, false},
		{"plain before", 6, 14, 2, false},
		{"plain after", 6, 14, 20, false},

		{"wrapped late evening", 22, 6, 23, true},
		{"wrapped early morning", 22, 6, 2, true},
		{"wrapped on evening edge", 22, 6, 22, false},
		{"wrapped on morning edge", 22, 6, 6, false},
		{"wrapped daytime", 22, 6, 12, false},

		{"degenerate window", 5, 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inSiderealWindow(tt.eve, tt.morn, tt.ra))
		})
	}
}

func TestHistoricalRaCalcBoundaries(t *testing.T) {
	// One stub night, 2020-02-01 20:00 to 2020-02-02 04:00 UTC, with the
	// evening at 22h sidereal and the morning at 6h.
	start, end := day(2020, 2, 1, 12), day(2020, 2, 2, 12)
	clock := stubClock{evening: day(2020, 2, 1, 20), eve: 22, morn: 6}

	calc := NewHistoricalRaCalc(&stubNights{}, clock)

	hoursFor := func(minutes int) []float64 {
		t.Helper()
		hrs, err := calc.Calc(utcSite, start, end, mustSize(t, AxisRA, minutes))
		require.NoError(t, err)
		out := make([]float64, len(hrs))
		for i, h := range hrs {
			out[i] = h.Value()
		}
		return out
	}

	// Centers at 2, 6, 10, 14, 18, 22h: only 2h is strictly inside.
	assert.Equal(t, []float64{4, 0, 0, 0, 0, 0}, hoursFor(240))

	// Centers at 1, 3, ..., 23h: 1, 3, 5 and 23 are inside.
	got := hoursFor(120)
	require.Len(t, got, 12)
	assert.Equal(t, []float64{2, 2, 2, 0, 0, 0, 0, 0, 0, 0, 0, 2}, got)

	// A single bin centered at 12h is outside the window.
	assert.Equal(t, []float64{0}, hoursFor(1440))
}

func TestHistoricalRaCalcWrapsNegativeLST(t *testing.T) {
	start, end := day(2020, 2, 1, 12), day(2020, 2, 2, 12)
	// -2h is 22h once wrapped.
	clock := stubClock{evening: day(2020, 2, 1, 20), eve: -2, morn: 6}
	hrs, err := NewHistoricalRaCalc(&stubNights{}, clock).Calc(utcSite, start, end, mustSize(t, AxisRA, 120))
	require.NoError(t, err)
	assert.Equal(t, 2.0, hrs[11].Value())
	assert.Equal(t, 0.0, hrs[10].Value())
}

func TestHistoricalRaCalcSumsNights(t *testing.T) {
	// Ten nights, a constant 20h->4h window: bins at 21, 23, 1 and 3h.
	start, end := day(2020, 2, 1, 12), day(2020, 2, 11, 12)
	calc := &HistoricalRaCalc{Bounds: TwilightNautical, Nights: &stubNights{}, Clock: fixedWindow{eve: 20, morn: 4}}

	hrs, err := calc.Calc(utcSite, start, end, mustSize(t, AxisRA, 120))
	require.NoError(t, err)
	var total float64
	for _, h := range hrs {
		total += h.Value()
	}
	assert.Equal(t, 4*2*10.0, total)
	assert.Equal(t, 20.0, hrs[0].Value())
	assert.Equal(t, 20.0, hrs[10].Value())
	assert.Equal(t, 0.0, hrs[9].Value())
}

// fixedWindow answers eve for any instant at 20:00 UTC and morn otherwise.
type fixedWindow struct{ eve, morn float64 }

func (f fixedWindow) LST(jd, _ float64) float64 {
	// 20:00 UTC is JD fraction .3333...
	frac := jd - float64(int64(jd))
	if frac > 0.33 && frac < 0.34 {
		return f.eve
	}
	return f.morn
}
