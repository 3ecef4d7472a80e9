package sun

import (
	"math"
	"time"

	"github.com/thurmanmarka/skybins/internal/timeutil"
)

// Equatorial is a geocentric equatorial position in degrees.
type Equatorial struct {
	RA  float64 // right ascension, degrees [0,360)
	Dec float64 // declination, degrees
}

// RAHours returns the right ascension in hours.
func (e Equatorial) RAHours() float64 {
	return e.RA / 15.0
}

// Position returns the low-precision apparent RA/Dec of the Sun at t. The
// series is good to about an arcminute, which is far below what the twilight
// boundaries need.
//
//	g   mean anomaly
//	q   mean longitude
//	L   ecliptic longitude
//	eps obliquity of the ecliptic
func Position(t time.Time) Equatorial {
	d := timeutil.DaysSinceJ2000(t)

	g := timeutil.Deg2Rad(357.529 + 0.98560028*d)
	q := timeutil.Deg2Rad(280.459 + 0.98564736*d)
	l := q + timeutil.Deg2Rad(1.915)*math.Sin(g) + timeutil.Deg2Rad(0.020)*math.Sin(2*g)
	eps := timeutil.Deg2Rad(23.439 - 0.00000036*d)

	sinL := math.Sin(l)
	ra := math.Atan2(math.Cos(eps)*sinL, math.Cos(l))
	dec := math.Asin(math.Sin(eps) * sinL)

	return Equatorial{
		RA:  timeutil.Normalize360(timeutil.Rad2Deg(ra)),
		Dec: timeutil.Rad2Deg(dec),
	}
}

// Altitude returns the geometric altitude of the Sun in degrees for an
// observer at lat, lon (degrees, east positive).
func Altitude(lat, lon float64, t time.Time) float64 {
	eq := Position(t)
	lst := timeutil.LocalSiderealTime(timeutil.JulianDay(t), -lon/15.0)
	ha := timeutil.Deg2Rad(lst*15.0 - eq.RA)

	latR := timeutil.Deg2Rad(lat)
	decR := timeutil.Deg2Rad(eq.Dec)
	sinAlt := math.Sin(latR)*math.Sin(decR) + math.Cos(latR)*math.Cos(decR)*math.Cos(ha)
	return timeutil.Rad2Deg(math.Asin(sinAlt))
}

// hourAngleAt returns the hour angle (hours) at which a body of declination
// dec reaches altitude alt for an observer at lat. The second result is +1
// if the body never gets down to alt, -1 if it never gets up to it.
func hourAngleAt(dec, lat, alt float64) (float64, int) {
	den := timeutil.CosD(dec) * timeutil.CosD(lat)
	if den == 0 {
		if timeutil.SinD(dec)*timeutil.SinD(lat) > timeutil.SinD(alt) {
			return 0, +1
		}
		return 0, -1
	}
	x := (timeutil.SinD(alt) - timeutil.SinD(dec)*timeutil.SinD(lat)) / den
	switch {
	case x < -1:
		return 0, +1
	case x > 1:
		return 0, -1
	}
	return timeutil.Rad2Deg(math.Acos(x)) / 15.0, 0
}
