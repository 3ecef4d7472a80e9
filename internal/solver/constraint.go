package solver

import (
	"math"
	"time"

	"github.com/thurmanmarka/skybins/internal/timeutil"
)

// Observer is a geographic location in degrees (east longitude positive).
type Observer struct {
	Lat float64
	Lon float64
}

// Target is a fixed equatorial position in degrees.
type Target struct {
	RA  float64
	Dec float64
}

// Altitude returns the geometric altitude of tg in degrees as seen by o at t.
func Altitude(o Observer, tg Target, t time.Time) float64 {
	lst := timeutil.LocalSiderealTime(timeutil.JulianDay(t), -o.Lon/15.0)
	ha := timeutil.Deg2Rad(lst*15.0 - tg.RA)

	lat := timeutil.Deg2Rad(o.Lat)
	dec := timeutil.Deg2Rad(tg.Dec)

	sinAlt := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(ha)
	return timeutil.Rad2Deg(math.Asin(sinAlt))
}

// maxPolySecZ is where the airmass polynomial stops tracking sec z. Past
// it the polynomial turns over and goes negative, so sec z is returned
// as is.
const maxPolySecZ = 12.0

// Airmass returns the airmass at the given altitude (degrees). Below the
// horizon there is no meaningful airmass and ok is false.
func Airmass(alt float64) (am float64, ok bool) {
	if alt <= 0 {
		return 0, false
	}
	secz := 1.0 / timeutil.SinD(alt)
	if secz > maxPolySecZ {
		return secz, true
	}
	s := secz - 1.0
	return secz - 0.0018167*s - 0.002875*s*s - 0.0008083*s*s*s, true
}

// Default sampling used by Constraint.Solve.
const (
	DefaultStep      = 5 * time.Minute
	DefaultTolerance = time.Second
)

// Constraint is an airmass band for a single target at a single site.
type Constraint struct {
	Observer Observer
	Target   Target
	Min, Max float64

	Step      time.Duration
	Tolerance time.Duration
}

// ForAirmass builds a constraint that holds while the airmass of tg is in
// [min, max].
func ForAirmass(o Observer, tg Target, min, max float64) *Constraint {
	return &Constraint{
		Observer:  o,
		Target:    tg,
		Min:       min,
		Max:       max,
		Step:      DefaultStep,
		Tolerance: DefaultTolerance,
	}
}

// Holds reports whether the constraint is met at t.
func (c *Constraint) Holds(t time.Time) bool {
	am, ok := Airmass(Altitude(c.Observer, c.Target, t))
	return ok && am >= c.Min && am <= c.Max
}

// Solve returns the sub-intervals of [start, end) where the constraint holds.
func (c *Constraint) Solve(start, end time.Time) ([]Interval, error) {
	return Solve(c.Holds, start, end, c.Step, c.Tolerance), nil
}
