package skybins

import (
	"time"

	"github.com/thurmanmarka/skybins/internal/solver"
	"github.com/thurmanmarka/skybins/internal/sun"
	"github.com/thurmanmarka/skybins/internal/timeutil"
)

// Ephemeris is the built-in astronomy: low-precision solar position for
// twilight, mean sidereal time, and a sampled airmass solver. It satisfies
// NightSource, SolverFactory and SiderealClock.
type Ephemeris struct {
	nights *sun.Nights

	// Step and Tolerance control the airmass solver's sampling and
	// boundary refinement.
	Step      time.Duration
	Tolerance time.Duration
}

// NewEphemeris returns an Ephemeris that memoizes up to memo twilight
// nights. Call Close when done with it.
func NewEphemeris(memo int64) (*Ephemeris, error) {
	n, err := sun.NewNights(memo)
	if err != nil {
		return nil, err
	}
	return &Ephemeris{
		nights:    n,
		Step:      solver.DefaultStep,
		Tolerance: solver.DefaultTolerance,
	}, nil
}

// Close releases the night memo.
func (e *Ephemeris) Close() {
	e.nights.Close()
}

// Night implements NightSource.
func (e *Ephemeris) Night(kind TwilightKind, approx time.Time, site Site) (Night, error) {
	start, end, err := e.nights.NightFor(kind.HorizonAngle(site), approx, site.place())
	if err != nil {
		return Night{}, err
	}
	return Night{Site: site, Start: start, End: end}, nil
}

// ForAirmass implements SolverFactory.
func (e *Ephemeris) ForAirmass(site Site, target Direction, minAirmass, maxAirmass float64) Solver {
	c := solver.ForAirmass(
		solver.Observer{Lat: site.Lat, Lon: site.Lon},
		solver.Target{RA: target.RA, Dec: target.Dec},
		minAirmass, maxAirmass,
	)
	c.Step = e.Step
	c.Tolerance = e.Tolerance
	return c
}

// LST implements SiderealClock.
func (e *Ephemeris) LST(jd, westHours float64) float64 {
	return timeutil.LocalSiderealTime(jd, westHours)
}
