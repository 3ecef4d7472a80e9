package solver

import "time"

// Interval is a half-open span of time [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Solve returns the disjoint, ordered set of sub-intervals of [start, end)
// where p holds. The range is sampled every step and each transition is
// refined to within tol.
func Solve(p Predicate, start, end time.Time, step, tol time.Duration) []Interval {
	if !start.Before(end) {
		return nil
	}
	if step <= 0 {
		step = end.Sub(start)
	}

	var (
		out   []Interval
		open  time.Time
		prevT = start
		prev  = p(start)
	)
	if prev {
		open = start
	}

	for t := start.Add(step); ; t = t.Add(step) {
		if t.After(end) {
			t = end
		}
		cur := p(t)

		if cur != prev {
			edge := Boundary(p, prevT, t, prev, tol)
			if cur {
				open = edge
			} else if edge.After(open) {
				out = append(out, Interval{Start: open, End: edge})
			}
		}

		prevT, prev = t, cur
		if !t.Before(end) {
			break
		}
	}

	if prev && end.After(open) {
		out = append(out, Interval{Start: open, End: end})
	}
	return out
}

// Total sums the lengths of the given intervals.
func Total(ivs []Interval) time.Duration {
	var d time.Duration
	for _, iv := range ivs {
		d += iv.Duration()
	}
	return d
}
