package timeutil

import (
	"math"
	"time"
)

// jdUnixEpoch is the Julian Date of 1970-01-01T00:00:00Z.
const jdUnixEpoch = 2440587.5

// j2000 is the Julian Date of the J2000.0 epoch.
const j2000 = 2451545.0

const msPerDay = 86400000.0

// JulianDayFromMillis converts milliseconds since the Unix epoch to a Julian Date.
func JulianDayFromMillis(ms int64) float64 {
	return jdUnixEpoch + float64(ms)/msPerDay
}

// JulianDay returns the Julian Date of t at millisecond resolution.
func JulianDay(t time.Time) float64 {
	return JulianDayFromMillis(t.UnixMilli())
}

// DaysSinceJ2000 returns the number of (UTC) days since the J2000.0 epoch.
func DaysSinceJ2000(t time.Time) float64 {
	return JulianDay(t) - j2000
}

// LocalSiderealTime returns the local mean sidereal time in hours [0,24) for
// the given Julian Date. The longitude is expressed in hours WEST of
// Greenwich, so an observer at 155.47°W passes +10.365.
func LocalSiderealTime(jd, westLongitudeHours float64) float64 {
	jdInt := math.Floor(jd)
	jdFrac := jd - jdInt

	// Split at the preceding 0h UT.
	var jdMid, ut float64
	if jdFrac < 0.5 {
		jdMid = jdInt - 0.5
		ut = jdFrac + 0.5
	} else {
		jdMid = jdInt + 0.5
		ut = jdFrac - 0.5
	}

	t := (jdMid - j2000) / 36525.0
	sid := (24110.54841 + 8640184.812866*t + 0.093104*t*t - 6.2e-6*t*t*t) / 86400.0
	sid -= math.Floor(sid)

	sid += 1.0027379093*ut - westLongitudeHours/24.0
	return Normalize24(sid * 24.0)
}

// AdjustHours folds an hour offset into [-12, 12].
func AdjustHours(h float64) float64 {
	for h > 12.0 {
		h -= 24.0
	}
	for h < -12.0 {
		h += 24.0
	}
	return h
}

// HoursToDuration converts fractional hours to a duration, rounded to the
// nearest millisecond.
func HoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h*3600000.0)) * time.Millisecond
}

// -----------------------------
// Basic degree/radian helpers and trig with degree inputs.
// -----------------------------

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180.0
}

func Rad2Deg(r float64) float64 {
	return r * 180.0 / math.Pi
}

func SinD(deg float64) float64 {
	return math.Sin(Deg2Rad(deg))
}

func CosD(deg float64) float64 {
	return math.Cos(Deg2Rad(deg))
}

func Normalize360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}

func Normalize24(h float64) float64 {
	h = math.Mod(h, 24.0)
	if h < 0 {
		h += 24.0
	}
	return h
}
