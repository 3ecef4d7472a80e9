package skybins

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/thurmanmarka/skybins/internal/timeutil"
)

// utcSite is a site on the Greenwich meridian with a UTC calendar, so the
// stub night schedule is easy to reason about.
var utcSite = Site{Name: "TEST", Lat: 19.8238, Lon: 0, Zone: time.UTC}

// stubNights returns, for the local date of approx, a night from 20:00 that
// day until 04:00 the next.
type stubNights struct {
	mu    sync.Mutex
	calls int
	err   error
	stuck *Night
}

func (s *stubNights) Night(_ TwilightKind, approx time.Time, site Site) (Night, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return Night{}, s.err
	}
	if s.stuck != nil {
		return *s.stuck, nil
	}
	y, m, d := approx.In(site.location()).Date()
	start := time.Date(y, m, d, 20, 0, 0, 0, site.location())
	return Night{Site: site, Start: start, End: start.Add(8 * time.Hour)}, nil
}

// fixedSolver reports one interval at the start of every night whose length
// is given by visible.
type fixedSolver struct {
	visible time.Duration
	calls   *int
	mu      *sync.Mutex
}

func (s fixedSolver) Solve(start, end time.Time) ([]Interval, error) {
	s.mu.Lock()
	*s.calls++
	s.mu.Unlock()
	if s.visible <= 0 {
		return nil, nil
	}
	e := start.Add(s.visible)
	if e.After(end) {
		e = end
	}
	return []Interval{{Start: start, End: e}}, nil
}

// stubSolvers builds fixedSolvers whose visible time depends on the target.
type stubSolvers struct {
	visible func(Direction) time.Duration
	mu      sync.Mutex
	calls   int
	built   []Direction
	err     error
}

func (f *stubSolvers) ForAirmass(_ Site, tg Direction, _, _ float64) Solver {
	f.mu.Lock()
	f.built = append(f.built, tg)
	f.mu.Unlock()
	if f.err != nil {
		return errSolver{f.err}
	}
	return fixedSolver{visible: f.visible(tg), calls: &f.calls, mu: &f.mu}
}

type errSolver struct{ err error }

func (e errSolver) Solve(time.Time, time.Time) ([]Interval, error) { return nil, e.err }

// stubClock returns eve at the Julian Date of evening and morn otherwise.
type stubClock struct {
	evening   time.Time
	eve, morn float64
}

func (c stubClock) LST(jd, _ float64) float64 {
	if math.Abs(jd-timeutil.JulianDay(c.evening)) < 1e-9 {
		return c.eve
	}
	return c.morn
}

// countingRa and countingDec return canned values and count invocations.
type countingRa struct {
	mu    sync.Mutex
	calls int
	hours []float64
}

func (c *countingRa) Calc(_ Site, _, _ time.Time, size BinSize) ([]Hours, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	out := make([]Hours, size.Count())
	for i := range out {
		if i < len(c.hours) {
			out[i], _ = NewHours(c.hours[i])
		}
	}
	return out, nil
}

type countingDec struct {
	mu     sync.Mutex
	calls  int
	lastRa float64
	err    error
}

func (c *countingDec) Calc(_ Site, _, _ time.Time, size BinSize, ra float64) ([]Percent, error) {
	c.mu.Lock()
	c.calls++
	c.lastRa = ra
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]Percent, size.Count())
	for i := range out {
		out[i], _ = NewPercent(float64(i))
	}
	return out, nil
}

var errBoom = errors.New("boom")

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}
