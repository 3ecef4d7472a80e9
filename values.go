package skybins

import "fmt"

// Hours is a non-negative amount of observing time.
type Hours struct {
	v float64
}

// NewHours returns h as Hours, or ErrNegative.
func NewHours(h float64) (Hours, error) {
	if h < 0 {
		return Hours{}, fmt.Errorf("%w: %v hours", ErrNegative, h)
	}
	return Hours{v: h}, nil
}

// HoursFromMillis converts a non-negative millisecond total.
func HoursFromMillis(ms int64) (Hours, error) {
	return NewHours(float64(ms) / 3600000.0)
}

// Value returns the number of hours.
func (h Hours) Value() float64 { return h.v }

// Add returns h + o.
func (h Hours) Add(o Hours) Hours { return Hours{v: h.v + o.v} }

func (h Hours) String() string { return fmt.Sprintf("%.2f hrs", h.v) }

// MarshalJSON encodes the bare number.
func (h Hours) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%g", h.v)), nil
}

// Percent is a non-negative percentage. Values above 100 are legal.
type Percent struct {
	v float64
}

// NewPercent returns p as Percent, or ErrNegative.
func NewPercent(p float64) (Percent, error) {
	if p < 0 {
		return Percent{}, fmt.Errorf("%w: %v percent", ErrNegative, p)
	}
	return Percent{v: p}, nil
}

// Value returns the percentage amount.
func (p Percent) Value() float64 { return p.v }

func (p Percent) String() string { return fmt.Sprintf("%2.3f%%", p.v) }

// MarshalJSON encodes the bare number.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%g", p.v)), nil
}
