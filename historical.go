package skybins

import (
	"time"

	"github.com/thurmanmarka/skybins/internal/timeutil"
)

// SiderealClock returns local sidereal time in hours for a Julian Date and a
// longitude in hours west of Greenwich. Results may be negative.
type SiderealClock interface {
	LST(jd, westHours float64) float64
}

// HistoricalRaCalc reproduces the legacy spreadsheet RA calculation: each
// night, every RA bin whose center lies strictly inside the sidereal window
// between evening and morning twilight is credited one full bin width.
type HistoricalRaCalc struct {
	Bounds TwilightKind
	Nights NightSource
	Clock  SiderealClock
}

// NewHistoricalRaCalc returns a calculator using nautical twilight.
func NewHistoricalRaCalc(nights NightSource, clock SiderealClock) *HistoricalRaCalc {
	return &HistoricalRaCalc{Bounds: TwilightNautical, Nights: nights, Clock: clock}
}

// Calc implements RaBinCalc.
func (c *HistoricalRaCalc) Calc(site Site, start, end time.Time, size BinSize) ([]Hours, error) {
	if err := requireAxis(size, AxisRA); err != nil {
		return nil, err
	}

	binMs := size.binMillis()
	west := site.WestLongitudeHours()

	ras := size.Centers()
	for i := range ras {
		ras[i] /= 60.0 // minutes -> hours
	}

	totals := make([]int64, len(ras))
	seq := NewNightSequence(c.Nights, site, start, end, c.Bounds)
	for seq.Next() {
		n := seq.Night()
		eve := wrapHours(c.Clock.LST(timeutil.JulianDay(n.Start), west))
		morn := wrapHours(c.Clock.LST(timeutil.JulianDay(n.End), west))

		for bin, ra := range ras {
			if inSiderealWindow(eve, morn, ra) {
				totals[bin] += binMs
			}
		}
	}
	if err := seq.Err(); err != nil {
		return nil, err
	}
	return hoursFromTotals(totals)
}

func wrapHours(h float64) float64 {
	if h < 0 {
		h += 24
	}
	return h
}

// inSiderealWindow reports whether ra (hours) lies strictly inside the
// window from eve to morn, which wraps through 0h when eve >= morn.
// Centers exactly on either edge are never inside.
func inSiderealWindow(eve, morn, ra float64) bool {
	switch {
	case eve < morn:
		return ra > eve && ra < morn
	case morn < ra:
		return eve < ra
	default:
		return morn > ra
	}
}
