package skybins

import (
	"fmt"
	"strconv"
	"strings"
)

// Axis is the sky axis a BinSize partitions.
type Axis int

const (
	// AxisRA is right ascension, measured in minutes of time over 24 hours.
	AxisRA Axis = iota + 1
	// AxisDec is declination, measured in degrees from -90 to +90.
	AxisDec
)

const (
	totalRAMinutes = 24 * 60
	totalDecDeg    = 180
)

// Total returns the number of units spanned by the axis.
func (a Axis) Total() int {
	if a == AxisRA {
		return totalRAMinutes
	}
	return totalDecDeg
}

func (a Axis) String() string {
	switch a {
	case AxisRA:
		return "ra"
	case AxisDec:
		return "dec"
	}
	return "axis(" + strconv.Itoa(int(a)) + ")"
}

// Units returns the name of the unit bin sizes on this axis are given in.
func (a Axis) Units() string {
	if a == AxisRA {
		return "MINUTES"
	}
	return "DEGREES"
}

// offset is the angle (in axis units) of the left edge of bin 0.
func (a Axis) offset() float64 {
	if a == AxisDec {
		return -90
	}
	return 0
}

// SizeError reports a bin size that cannot partition its axis.
type SizeError struct {
	Axis     Axis
	Size     int
	Negative bool // size divides the axis but is below zero
	msg      string
}

func (e *SizeError) Error() string { return e.msg }

// Unwrap lets errors.Is(err, ErrBinSize) match.
func (e *SizeError) Unwrap() error { return ErrBinSize }

func validateBinSize(a Axis, size int) error {
	if size == 0 || a.Total()%size != 0 {
		return &SizeError{Axis: a, Size: size, msg: fmt.Sprintf(
			"Bad bin size: %d %s. %s bin size must evenly divide %d %s.",
			size, a.Units(), a, a.Total(), a.Units())}
	}
	if size < 0 {
		return &SizeError{Axis: a, Size: size, Negative: true, msg: fmt.Sprintf(
			"Bad bin size: %d %s. Cannot be negative.", size, a.Units())}
	}
	return nil
}

// BinSize divides an axis into equal bins. It is a comparable value; the
// zero BinSize means "no size" and is rejected wherever a size is required.
type BinSize struct {
	axis Axis
	size int
}

// NewBinSize validates size against the axis total.
func NewBinSize(a Axis, size int) (BinSize, error) {
	if a != AxisRA && a != AxisDec {
		return BinSize{}, fmt.Errorf("%w: unknown axis %d", ErrBinSize, int(a))
	}
	if err := validateBinSize(a, size); err != nil {
		return BinSize{}, err
	}
	return BinSize{axis: a, size: size}, nil
}

// NewRaBinSize returns an RA bin size in minutes.
func NewRaBinSize(minutes int) (BinSize, error) { return NewBinSize(AxisRA, minutes) }

// NewDecBinSize returns a Dec bin size in degrees.
func NewDecBinSize(degrees int) (BinSize, error) { return NewBinSize(AxisDec, degrees) }

var (
	// DefaultRaBinSize is one hour.
	DefaultRaBinSize = BinSize{axis: AxisRA, size: 60}
	// DefaultDecBinSize is ten degrees.
	DefaultDecBinSize = BinSize{axis: AxisDec, size: 10}
)

// Axis returns the axis partitioned.
func (b BinSize) Axis() Axis { return b.axis }

// Size returns the bin width in axis units.
func (b BinSize) Size() int { return b.size }

// IsZero reports whether b is the zero BinSize.
func (b BinSize) IsZero() bool { return b.size == 0 }

// Count returns the number of bins.
func (b BinSize) Count() int {
	if b.size == 0 {
		return 0
	}
	return b.axis.Total() / b.size
}

// CentersFrom returns the center of every bin in axis units, starting at
// offset: i*size + size/2 + offset.
func (b BinSize) CentersFrom(offset float64) []float64 {
	n := b.Count()
	out := make([]float64, n)
	half := float64(b.size) / 2.0
	for i := 0; i < n; i++ {
		out[i] = float64(i*b.size) + half + offset
	}
	return out
}

// Centers returns the bin centers in axis units: minutes from 0h for RA,
// degrees from -90 for Dec.
func (b BinSize) Centers() []float64 {
	return b.CentersFrom(b.axis.offset())
}

// CentersDegrees returns the bin centers as angles in degrees.
func (b BinSize) CentersDegrees() []float64 {
	c := b.Centers()
	if b.axis == AxisRA {
		for i := range c {
			c[i] = minutesToDegrees(c[i])
		}
	}
	return c
}

// Targets returns one direction per bin. For an RA size the declination is
// fixed; for a Dec size the right ascension is.
func (b BinSize) Targets(fixed float64) []Direction {
	c := b.CentersDegrees()
	out := make([]Direction, len(c))
	for i, v := range c {
		if b.axis == AxisRA {
			out[i] = Direction{RA: v, Dec: fixed}
		} else {
			out[i] = Direction{RA: fixed, Dec: v}
		}
	}
	return out
}

func (b BinSize) String() string {
	if b.size == 0 {
		return "none"
	}
	return strconv.Itoa(b.size) + " " + strings.ToLower(b.axis.Units())
}

// binMillis returns the width of an RA bin as milliseconds of sidereal
// angle treated as solar time, the way the legacy calculations credit it.
func (b BinSize) binMillis() int64 {
	return int64(b.size) * 60 * 1000
}

func minutesToDegrees(m float64) float64 { return m / 4.0 }
