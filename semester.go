package skybins

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Half is the half of the year a semester covers.
type Half int

const (
	// HalfA runs February through July.
	HalfA Half = iota + 1
	// HalfB runs August through January.
	HalfB
)

func (h Half) String() string {
	switch h {
	case HalfA:
		return "A"
	case HalfB:
		return "B"
	}
	return "?"
}

// Semester is an observing semester such as 2020A.
type Semester struct {
	Year int
	Half Half
}

// semesterStartHour is the local hour at which a semester begins, well
// before evening twilight on its first day.
const semesterStartHour = 14

// ParseSemester parses the form "2020A" or "2020B" (case-insensitive).
func ParseSemester(s string) (Semester, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 5 {
		return Semester{}, fmt.Errorf("%w: %q", ErrBadSemester, s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return Semester{}, fmt.Errorf("%w: %q: %v", ErrBadSemester, s, err)
	}
	var h Half
	switch s[4] {
	case 'A':
		h = HalfA
	case 'B':
		h = HalfB
	default:
		return Semester{}, fmt.Errorf("%w: %q: half must be A or B", ErrBadSemester, s)
	}
	return Semester{Year: year, Half: h}, nil
}

// IsZero reports whether sem is the zero Semester.
func (sem Semester) IsZero() bool { return sem.Half == 0 }

func (sem Semester) String() string {
	return fmt.Sprintf("%04d%s", sem.Year, sem.Half)
}

// Next returns the semester that follows sem.
func (sem Semester) Next() Semester {
	if sem.Half == HalfA {
		return Semester{Year: sem.Year, Half: HalfB}
	}
	return Semester{Year: sem.Year + 1, Half: HalfA}
}

// Start returns the instant the semester begins at site.
func (sem Semester) Start(site Site) time.Time {
	month := time.February
	if sem.Half == HalfB {
		month = time.August
	}
	return time.Date(sem.Year, month, 1, semesterStartHour, 0, 0, 0, site.location())
}

// End returns the instant the semester ends at site, which is the start of
// the next one.
func (sem Semester) End(site Site) time.Time {
	return sem.Next().Start(site)
}
