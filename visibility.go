package skybins

import (
	"fmt"
	"time"

	"github.com/thurmanmarka/skybins/internal/solver"
)

// Interval is a half-open span of time [Start, End).
type Interval = solver.Interval

// Solver returns the disjoint, ordered sub-intervals of [start, end) during
// which some constraint holds.
type Solver interface {
	Solve(start, end time.Time) ([]Interval, error)
}

// SolverFactory builds airmass-constraint solvers.
type SolverFactory interface {
	ForAirmass(site Site, target Direction, minAirmass, maxAirmass float64) Solver
}

// RaBinCalc computes the observing time available in each RA bin.
type RaBinCalc interface {
	Calc(site Site, start, end time.Time, size BinSize) ([]Hours, error)
}

// DecBinCalc computes, for targets at the given right ascension (degrees),
// the usable fraction of time in each Dec bin.
type DecBinCalc interface {
	Calc(site Site, start, end time.Time, size BinSize, ra float64) ([]Percent, error)
}

// ElevationConfig says when a target counts as observable.
type ElevationConfig struct {
	Bounds     TwilightKind
	MinAirmass float64
	MaxAirmass float64
}

// DefaultElevationConfig is nautical twilight with airmass in [1.0, 2.15].
var DefaultElevationConfig = ElevationConfig{
	Bounds:     TwilightNautical,
	MinAirmass: 1.0,
	MaxAirmass: 2.15,
}

func requireAxis(size BinSize, a Axis) error {
	if size.IsZero() {
		return fmt.Errorf("%w: %s bin size is required", ErrBinSize, a)
	}
	if size.Axis() != a {
		return fmt.Errorf("%w: expected %s bin size, got %s", ErrBinSize, a, size.Axis())
	}
	return nil
}

// accumulate walks every night in [start, end), solves each target's
// constraint over the night and adds the credited milliseconds to the
// target's bin. credit receives the visible time of one target over one
// night.
func accumulate(nights NightSource, solvers SolverFactory, cfg ElevationConfig, site Site,
	start, end time.Time, targets []Direction, credit func(ms int64) int64) ([]int64, error) {

	ss := make([]Solver, len(targets))
	for i, tg := range targets {
		ss[i] = solvers.ForAirmass(site, tg, cfg.MinAirmass, cfg.MaxAirmass)
	}

	totals := make([]int64, len(targets))
	seq := NewNightSequence(nights, site, start, end, cfg.Bounds)
	for seq.Next() {
		n := seq.Night()
		for bin, s := range ss {
			ivs, err := s.Solve(n.Start, n.End)
			if err != nil {
				return nil, fmt.Errorf("solving bin %d for %s: %w", bin, n, err)
			}
			var ms int64
			for _, iv := range ivs {
				ms += iv.Duration().Milliseconds()
			}
			totals[bin] += credit(ms)
		}
	}
	if err := seq.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}

// ElevationRaCalc credits each RA bin with the time a target on the bin
// center, passing through the zenith, satisfies the airmass constraint.
type ElevationRaCalc struct {
	Config ElevationConfig

	// TransitOnly caps the time credited per bin per night at the bin
	// width.
	TransitOnly bool

	Nights  NightSource
	Solvers SolverFactory
}

// NewElevationRaCalc returns a transit-only calculator.
func NewElevationRaCalc(nights NightSource, solvers SolverFactory, cfg ElevationConfig) *ElevationRaCalc {
	return &ElevationRaCalc{Config: cfg, TransitOnly: true, Nights: nights, Solvers: solvers}
}

// Calc implements RaBinCalc.
func (c *ElevationRaCalc) Calc(site Site, start, end time.Time, size BinSize) ([]Hours, error) {
	if err := requireAxis(size, AxisRA); err != nil {
		return nil, err
	}

	binMs := size.binMillis()
	credit := func(ms int64) int64 {
		if c.TransitOnly && ms > binMs {
			return binMs
		}
		return ms
	}

	totals, err := accumulate(c.Nights, c.Solvers, c.Config, site, start, end, size.Targets(site.Lat), credit)
	if err != nil {
		return nil, err
	}
	return hoursFromTotals(totals)
}

// ElevationDecCalc gives each Dec bin's visible time as a percentage of the
// visible time of the bin containing the site's zenith.
type ElevationDecCalc struct {
	Config  ElevationConfig
	Nights  NightSource
	Solvers SolverFactory
}

// NewElevationDecCalc returns a Dec calculator.
func NewElevationDecCalc(nights NightSource, solvers SolverFactory, cfg ElevationConfig) *ElevationDecCalc {
	return &ElevationDecCalc{Config: cfg, Nights: nights, Solvers: solvers}
}

// Calc implements DecBinCalc.
func (c *ElevationDecCalc) Calc(site Site, start, end time.Time, size BinSize, ra float64) ([]Percent, error) {
	if err := requireAxis(size, AxisDec); err != nil {
		return nil, err
	}

	zi := site.zenithBin(size.Size())
	if zi < 0 || zi >= size.Count() {
		return nil, fmt.Errorf("%w: index %d for latitude %.4f", ErrZenithOutOfRange, zi, site.Lat)
	}

	full := func(ms int64) int64 { return ms }
	totals, err := accumulate(c.Nights, c.Solvers, c.Config, site, start, end, size.Targets(ra), full)
	if err != nil {
		return nil, err
	}

	max := totals[zi]
	if max == 0 {
		return nil, fmt.Errorf("%w: bin %d at %s", ErrZeroZenithTotal, zi, site.Name)
	}

	out := make([]Percent, len(totals))
	for i, cur := range totals {
		p, err := NewPercent(100.0 * (float64(cur) / float64(max)))
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func hoursFromTotals(totals []int64) ([]Hours, error) {
	out := make([]Hours, len(totals))
	for i, ms := range totals {
		h, err := HoursFromMillis(ms)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}
