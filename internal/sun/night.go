package sun

import (
	"errors"
	"fmt"
	"time"

	"github.com/thurmanmarka/skybins/internal/solver"
	"github.com/thurmanmarka/skybins/internal/timeutil"
)

// ErrNoNight is returned when the Sun never dips below the requested
// twilight altitude (or never rises above it) around the requested date.
var ErrNoNight = errors.New("sun: no twilight-bounded night")

// Place is an observing site. Lat/Lon are degrees, east longitude positive.
type Place struct {
	Lat  float64
	Lon  float64
	Zone *time.Location
}

const (
	refineWindow = 90 * time.Minute
	refineSteps  = 19
	refineTol    = time.Second
)

// NightFor returns the twilight-bounded night that begins on the local
// calendar day containing t: evening twilight at the given angle below the
// horizon on that day, through morning twilight the next day.
func NightFor(angle float64, t time.Time, p Place) (start, end time.Time, err error) {
	zone := p.Zone
	if zone == nil {
		zone = time.UTC
	}
	y, m, d := t.In(zone).Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, zone)

	jdMid := timeutil.JulianDay(midnight)
	eq := Position(midnight)

	ha, flag := hourAngleAt(eq.Dec, p.Lat, -angle)
	switch flag {
	case +1:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: sun stays above %.2f° on %s", ErrNoNight, -angle, midnight.Format("2006-01-02"))
	case -1:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: sun stays below %.2f° on %s", ErrNoNight, -angle, midnight.Format("2006-01-02"))
	}

	lstMid := timeutil.LocalSiderealTime(jdMid, -p.Lon/15.0)
	ra := eq.RAHours()

	alt := func(t time.Time) float64 { return Altitude(p.Lat, p.Lon, t) }

	setGuess := midnight.Add(timeutil.HoursToDuration(timeutil.AdjustHours(ra + ha - lstMid)))
	start, ok := solver.FindCrossing(alt, setGuess.Add(-refineWindow), setGuess.Add(refineWindow), -angle, solver.Setting, refineSteps, refineTol)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: sun does not set on %s", ErrNoNight, midnight.Format("2006-01-02"))
	}

	riseGuess := midnight.Add(timeutil.HoursToDuration(timeutil.AdjustHours(ra - ha - lstMid)))
	end, ok = solver.FindCrossing(alt, riseGuess.Add(-refineWindow), riseGuess.Add(refineWindow), -angle, solver.Rising, refineSteps, refineTol)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: sun does not rise on %s", ErrNoNight, midnight.Format("2006-01-02"))
	}

	return start.UTC(), end.UTC(), nil
}
