package skybins

import (
	"fmt"
	"time"
)

// Night is a half-open interval [Start, End) of darkness at a site.
type Night struct {
	Site  Site
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (n Night) Duration() time.Duration { return n.End.Sub(n.Start) }

// Includes reports whether t lies in [Start, End).
func (n Night) Includes(t time.Time) bool {
	return !t.Before(n.Start) && t.Before(n.End)
}

func (n Night) String() string {
	zone := n.Site.location()
	return fmt.Sprintf("%s %s -> %s", n.Site.Name,
		n.Start.In(zone).Format("2006-01-02 15:04"), n.End.In(zone).Format("2006-01-02 15:04"))
}

// NightSource produces the twilight-bounded night for the local calendar
// day containing approx.
type NightSource interface {
	Night(kind TwilightKind, approx time.Time, site Site) (Night, error)
}

// maxAdvanceAttempts bounds how many extra local days NightSequence will
// try when the source hands back a night that does not move forward.
const maxAdvanceAttempts = 3

// NightSequence iterates the nights overlapping [start, end), clipped to
// that range. It is used like bufio.Scanner:
//
//	seq := NewNightSequence(src, site, start, end, TwilightNautical)
//	for seq.Next() {
//		n := seq.Night()
//		...
//	}
//	if err := seq.Err(); err != nil {
//		...
//	}
type NightSequence struct {
	src        NightSource
	site       Site
	kind       TwilightKind
	start, end time.Time

	started bool
	done    bool
	cur     Night
	err     error
}

// NewNightSequence returns a sequence over [start, end). No night is
// computed until the first call to Next.
func NewNightSequence(src NightSource, site Site, start, end time.Time, kind TwilightKind) *NightSequence {
	return &NightSequence{src: src, site: site, kind: kind, start: start, end: end}
}

// Next advances to the next night, returning false at the end of the range
// or on error.
func (s *NightSequence) Next() bool {
	if s.done {
		return false
	}
	var (
		n  Night
		ok bool
	)
	if !s.started {
		s.started = true
		n, ok = s.first()
	} else {
		n, ok = s.next()
	}
	if !ok {
		s.done = true
		return false
	}
	s.cur = n
	return true
}

// Night returns the night produced by the last successful Next.
func (s *NightSequence) Night() Night { return s.cur }

// Err returns the first error encountered, if any.
func (s *NightSequence) Err() error { return s.err }

// All drains the sequence.
func (s *NightSequence) All() ([]Night, error) {
	var out []Night
	for s.Next() {
		out = append(out, s.Night())
	}
	return out, s.Err()
}

func (s *NightSequence) first() (Night, bool) {
	if !s.end.After(s.start) {
		return Night{}, false
	}
	n, err := s.src.Night(s.kind, s.start, s.site)
	if err != nil {
		s.err = err
		return Night{}, false
	}
	if n.Start.Before(s.start) {
		n.Start = s.start
	}
	if n.End.After(s.end) {
		n.End = s.end
	}
	if !n.End.After(n.Start) {
		return Night{}, false
	}
	n.Site = s.site
	return n, true
}

// next estimates the following night's start one local calendar day after
// the current one, then asks the source for the exact boundaries.
func (s *NightSequence) next() (Night, bool) {
	estimate := s.cur.Start.In(s.site.location())

	var n Night
	advanced := false
	for i := 0; i < maxAdvanceAttempts && !advanced; i++ {
		estimate = estimate.AddDate(0, 0, 1)

		var err error
		n, err = s.src.Night(s.kind, estimate, s.site)
		if err != nil {
			s.err = err
			return Night{}, false
		}
		advanced = n.Start.After(s.cur.Start) && !n.Start.Before(s.cur.End)
	}
	if !advanced {
		s.err = fmt.Errorf("%w: after night starting %s", ErrNightOrder, s.cur.Start.Format(time.RFC3339))
		return Night{}, false
	}

	if n.End.After(s.end) {
		if !n.Start.Before(s.end) {
			return Night{}, false
		}
		n.End = s.end
	}
	n.Site = s.site
	return n, true
}
