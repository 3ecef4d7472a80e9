// Package solver finds the times at which sky quantities cross thresholds.
//
// Everything here is built on one primitive: a boolean predicate over time
// that is sampled on a coarse grid and whose transitions are then narrowed
// down by bisection.
package solver

import (
	"time"
)

// Func returns a scalar quantity (usually an altitude in degrees) at time t.
type Func func(t time.Time) float64

// Predicate reports whether a condition holds at time t.
type Predicate func(t time.Time) bool

// Direction describes whether we are looking for a rising or setting event.
type Direction int

const (
	// Rising means the quantity is increasing through the target value.
	Rising Direction = iota
	// Setting means the quantity is decreasing through the target value.
	Setting
)

// FindCrossing searches [start, end] for the first time f crosses target in
// the given direction. The range is sampled with steps points, then the
// bracketing pair is bisected down to tol.
func FindCrossing(f Func, start, end time.Time, target float64, dir Direction, steps int, tol time.Duration) (time.Time, bool) {
	if !start.Before(end) {
		return time.Time{}, false
	}
	if steps < 2 {
		steps = 2
	}

	// Rising: below -> at-or-above. Setting: above -> at-or-below.
	var p Predicate
	var from bool
	switch dir {
	case Rising:
		p = func(t time.Time) bool { return f(t) >= target }
		from = false
	default:
		p = func(t time.Time) bool { return f(t) > target }
		from = true
	}

	interval := end.Sub(start) / time.Duration(steps-1)
	prevT, prev := start, p(start)

	for i := 1; i < steps; i++ {
		t := start.Add(time.Duration(i) * interval)
		if i == steps-1 {
			t = end
		}
		cur := p(t)

		if prev == from && cur != from {
			edge := Boundary(p, prevT, t, prev, tol)
			return edge, true
		}
		prevT, prev = t, cur
	}

	return time.Time{}, false
}

// Boundary narrows [a, b] to within tol of the instant where p changes from
// state (its value at a) to the opposite value, and returns the first instant
// known to be in the new state.
func Boundary(p Predicate, a, b time.Time, state bool, tol time.Duration) time.Time {
	if tol <= 0 {
		tol = time.Millisecond
	}
	for b.Sub(a) > tol {
		mid := a.Add(b.Sub(a) / 2)
		if p(mid) == state {
			a = mid
		} else {
			b = mid
		}
	}
	return b
}
