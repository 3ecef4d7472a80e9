// Package skybins computes how much observing time a telescope site has in
// each right-ascension bin over a semester, and what fraction of that time
// each declination band is usable, under an airmass constraint and a
// twilight definition of "night".
//
// The pieces, from the bottom up:
//   - BinSize partitions the RA axis (1440 minutes, cyclic) or the Dec axis
//     (180 degrees) into equal bins.
//   - NightSequence walks a date range one twilight-bounded night at a time.
//   - ElevationRaCalc / ElevationDecCalc solve an airmass constraint per bin
//     target and accumulate the visible time.
//   - HistoricalRaCalc reproduces the legacy sidereal-window spreadsheet.
//   - Calculator combines RA hours and Dec percentages and caches the result
//     per (site, semester, RA size, Dec size).
//
// Ephemeris is the default implementation of the astronomical collaborators
// (twilight nights, airmass solving and sidereal time).
package skybins

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/thurmanmarka/skybins/internal/sun"
)

// TwilightKind identifies how far below the horizon the Sun must be for it
// to count as night.
type TwilightKind int

const (
	// TwilightCivil corresponds to the Sun's center at -6 degrees altitude.
	TwilightCivil TwilightKind = iota

	// TwilightNautical corresponds to the Sun's center at -12 degrees altitude.
	TwilightNautical

	// TwilightAstronomical corresponds to the Sun's center at -18 degrees altitude.
	TwilightAstronomical

	// TwilightOfficial is sunset/sunrise: refraction plus the solar
	// semidiameter, corrected for the dip of the horizon at the site's
	// altitude.
	TwilightOfficial
)

const earthEquatorialRadius = 6378137.0 // meters

// HorizonAngle returns the depression of the Sun's center below the
// horizon (positive degrees) that bounds night at site s.
func (k TwilightKind) HorizonAngle(s Site) float64 {
	switch k {
	case TwilightCivil:
		return 6
	case TwilightNautical:
		return 12
	case TwilightAstronomical:
		return 18
	case TwilightOfficial:
		alt := math.Max(s.Altitude, 0)
		return 0.8333 + math.Sqrt(2*alt/earthEquatorialRadius)*180/math.Pi
	}
	return 12
}

func (k TwilightKind) String() string {
	switch k {
	case TwilightCivil:
		return "civil"
	case TwilightNautical:
		return "nautical"
	case TwilightAstronomical:
		return "astronomical"
	case TwilightOfficial:
		return "official"
	}
	return fmt.Sprintf("TwilightKind(%d)", int(k))
}

// ParseTwilightKind parses the String form of a TwilightKind.
func ParseTwilightKind(s string) (TwilightKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "civil":
		return TwilightCivil, nil
	case "nautical":
		return TwilightNautical, nil
	case "astronomical":
		return TwilightAstronomical, nil
	case "official":
		return TwilightOfficial, nil
	}
	return 0, fmt.Errorf("unknown twilight kind %q", s)
}

// Site is an observing site.
type Site struct {
	Name     string
	Lat      float64        // degrees, north positive
	Lon      float64        // degrees, east positive (west negative)
	Altitude float64        // meters above sea level
	Zone     *time.Location // local civil time zone
}

// WestLongitudeHours returns the site longitude in hours west of Greenwich,
// the convention sidereal-time routines expect.
func (s Site) WestLongitudeHours() float64 {
	return -s.Lon / 15.0
}

// zenithBin returns the index of the Dec bin containing the zenith.
func (s Site) zenithBin(size int) int {
	return int(math.Floor(s.Lat+90)) / size
}

func (s Site) place() sun.Place {
	return sun.Place{Lat: s.Lat, Lon: s.Lon, Zone: s.location()}
}

func (s Site) location() *time.Location {
	if s.Zone == nil {
		return time.UTC
	}
	return s.Zone
}

func loadZone(name string, offsetHours int) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone(name, offsetHours*3600)
}

var (
	// GN is Gemini North on Mauna Kea.
	GN = Site{
		Name:     "GN",
		Lat:      19.8238,
		Lon:      -155.469,
		Altitude: 4213,
		Zone:     loadZone("Pacific/Honolulu", -10),
	}

	// GS is Gemini South on Cerro Pachón.
	GS = Site{
		Name:     "GS",
		Lat:      -30.2407,
		Lon:      -70.7367,
		Altitude: 2722,
		Zone:     loadZone("America/Santiago", -4),
	}
)

// Sites lists the built-in sites.
func Sites() []Site {
	return []Site{GN, GS}
}

// LookupSite returns the built-in site with the given name (case-insensitive).
func LookupSite(name string) (Site, error) {
	for _, s := range Sites() {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return Site{}, fmt.Errorf("%w: %q", ErrUnknownSite, name)
}

// Direction is a fixed equatorial direction in degrees.
type Direction struct {
	RA  float64 // right ascension, degrees [0,360)
	Dec float64 // declination, degrees [-90,90]
}

var (
	// ErrBinSize is wrapped by every *SizeError.
	ErrBinSize = errors.New("bad bin size")

	// ErrNegative is returned when an Hours or Percent value is negative.
	ErrNegative = errors.New("value cannot be negative")

	// ErrIncompleteKey is returned when a cache key is missing a field.
	ErrIncompleteKey = errors.New("incomplete cache key")

	// ErrZeroZenithTotal is returned when the zenith Dec bin received no
	// visible time, so percentages relative to it are undefined.
	ErrZeroZenithTotal = errors.New("zenith declination bin has no visible time")

	// ErrZenithOutOfRange is returned when the zenith bin index falls
	// outside the Dec partition.
	ErrZenithOutOfRange = errors.New("zenith declination bin out of range")

	// ErrUnknownSite is returned by LookupSite.
	ErrUnknownSite = errors.New("unknown site")

	// ErrBadSemester is returned by ParseSemester.
	ErrBadSemester = errors.New("bad semester")

	// ErrNoNight is returned when the Sun never reaches the twilight
	// altitude around a date.
	ErrNoNight = sun.ErrNoNight

	// ErrNightOrder is returned when the twilight source produces a night
	// that does not start after the previous one.
	ErrNightOrder = errors.New("night sequence did not advance")
)
