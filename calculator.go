package skybins

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/thurmanmarka/skybins/internal/metrics"
)

// Result holds the RA hours and Dec percentages for one site, semester and
// pair of bin sizes. It is never modified after construction.
type Result struct {
	raHours []Hours
	decPerc []Percent

	// MaxRa is the center (degrees) of the RA bin with the most hours,
	// the right ascension the Dec percentages were computed at.
	MaxRa float64
}

// NewResult copies its inputs into a Result.
func NewResult(ra []Hours, dec []Percent, maxRa float64) *Result {
	return &Result{
		raHours: append([]Hours(nil), ra...),
		decPerc: append([]Percent(nil), dec...),
		MaxRa:   maxRa,
	}
}

// RaHours returns a copy of the per-RA-bin hours.
func (r *Result) RaHours() []Hours { return append([]Hours(nil), r.raHours...) }

// DecPercentages returns a copy of the per-Dec-bin percentages.
func (r *Result) DecPercentages() []Percent { return append([]Percent(nil), r.decPerc...) }

// siteID is the part of a Site that affects a calculation.
type siteID struct {
	Name     string
	Lat, Lon float64
	Altitude float64
	Zone     string
}

func idOf(s Site) siteID {
	return siteID{Name: s.Name, Lat: s.Lat, Lon: s.Lon, Altitude: s.Altitude, Zone: s.location().String()}
}

// Key identifies a cached Result. Two sites with the same name but
// different coordinates, altitude or zone get different keys.
type Key struct {
	Site     string
	site     siteID
	Semester Semester
	Ra       BinSize
	Dec      BinSize
}

// NewKey validates that every part of the key is present and on the right
// axis.
func NewKey(site Site, sem Semester, ra, dec BinSize) (Key, error) {
	switch {
	case site.Name == "":
		return Key{}, fmt.Errorf("%w: site", ErrIncompleteKey)
	case sem.IsZero():
		return Key{}, fmt.Errorf("%w: semester", ErrIncompleteKey)
	case ra.IsZero() || ra.Axis() != AxisRA:
		return Key{}, fmt.Errorf("%w: ra bin size", ErrIncompleteKey)
	case dec.IsZero() || dec.Axis() != AxisDec:
		return Key{}, fmt.Errorf("%w: dec bin size", ErrIncompleteKey)
	}
	return Key{Site: site.Name, site: idOf(site), Semester: sem, Ra: ra, Dec: dec}, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/ra=%d/dec=%d", k.Site, k.Semester, k.Ra.Size(), k.Dec.Size())
}

// flight is the singleflight group key; unlike String it includes the full
// site identity.
func (k Key) flight() string {
	return fmt.Sprintf("%s@%g,%g,%g,%s/%s/ra=%d/dec=%d", k.Site, k.site.Lat, k.site.Lon, k.site.Altitude,
		k.site.Zone, k.Semester, k.Ra.Size(), k.Dec.Size())
}

// DefaultCacheSize is the number of results a Calculator keeps.
const DefaultCacheSize = 50

// CalculatorConfig wires a Calculator.
type CalculatorConfig struct {
	CacheSize int
	RaCalc    RaBinCalc
	DecCalc   DecBinCalc
}

// DefaultCalculatorConfig uses the historical RA calculation and the
// elevation Dec calculation, both backed by eph.
func DefaultCalculatorConfig(eph *Ephemeris) CalculatorConfig {
	return CalculatorConfig{
		CacheSize: DefaultCacheSize,
		RaCalc:    NewHistoricalRaCalc(eph, eph),
		DecCalc:   NewElevationDecCalc(eph, eph, DefaultElevationConfig),
	}
}

// CacheStats is a snapshot of the result cache.
type CacheStats struct {
	Entries   int   `json:"entries"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Calculator combines an RA and a Dec calculation and caches results in a
// bounded least-recently-used cache. It is safe for concurrent use.
type Calculator struct {
	ra  RaBinCalc
	dec DecBinCalc

	cache    *lru.Cache[Key, *Result]
	capacity int
	group    singleflight.Group
	logger   *zap.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	purging   atomic.Bool
}

// NewCalculator builds a Calculator. A nil logger disables logging.
func NewCalculator(cfg CalculatorConfig, logger *zap.Logger) (*Calculator, error) {
	if cfg.RaCalc == nil || cfg.DecCalc == nil {
		return nil, fmt.Errorf("skybins: calculator needs both an RA and a Dec calculation")
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Calculator{
		ra:       cfg.RaCalc,
		dec:      cfg.DecCalc,
		capacity: cfg.CacheSize,
		logger:   logger,
	}
	cache, err := lru.NewWithEvict[Key, *Result](cfg.CacheSize, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("skybins: creating result cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

func (c *Calculator) onEvict(k Key, _ *Result) {
	if c.purging.Load() {
		return
	}
	c.evictions.Add(1)
	metrics.CacheEvicted()
	c.logger.Debug("evicted result", zap.Stringer("key", k))
}

// Compute runs the RA calculation, picks the RA bin with the most hours
// (the first such bin on ties) and runs the Dec calculation at its center.
// Nothing is cached.
func (c *Calculator) Compute(site Site, start, end time.Time, ra, dec BinSize) (*Result, error) {
	began := time.Now()

	hours, err := c.ra.Calc(site, start, end, ra)
	if err != nil {
		return nil, fmt.Errorf("ra bins: %w", err)
	}
	metrics.ObserveCompute("ra", time.Since(began))
	if len(hours) == 0 {
		return nil, fmt.Errorf("ra bins: %w: no bins", ErrBinSize)
	}

	best := 0
	for i := 1; i < len(hours); i++ {
		if hours[i].Value() > hours[best].Value() {
			best = i
		}
	}
	maxRa := ra.CentersDegrees()[best]

	decStart := time.Now()
	perc, err := c.dec.Calc(site, start, end, dec, maxRa)
	if err != nil {
		return nil, fmt.Errorf("dec bins: %w", err)
	}
	metrics.ObserveCompute("dec", time.Since(decStart))
	metrics.ObserveCompute("total", time.Since(began))

	c.logger.Info("computed bins",
		zap.String("site", site.Name),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Stringer("ra_size", ra),
		zap.Stringer("dec_size", dec),
		zap.Float64("max_ra_deg", maxRa),
		zap.Duration("elapsed", time.Since(began)),
	)
	return NewResult(hours, perc, maxRa), nil
}

// Get returns the cached Result for the key, computing it over the
// semester on a miss. Concurrent misses for one key share one computation.
func (c *Calculator) Get(site Site, sem Semester, ra, dec BinSize) (*Result, error) {
	key, err := NewKey(site, sem, ra, dec)
	if err != nil {
		return nil, err
	}

	if r, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		metrics.CacheHit()
		c.logger.Debug("cache hit", zap.Stringer("key", key))
		return r, nil
	}
	c.misses.Add(1)
	metrics.CacheMiss()
	c.logger.Debug("cache miss", zap.Stringer("key", key))

	v, err, _ := c.group.Do(key.flight(), func() (interface{}, error) {
		if r, ok := c.cache.Peek(key); ok {
			return r, nil
		}
		r, err := c.Compute(site, sem.Start(site), sem.End(site), ra, dec)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, r)
		metrics.SetCacheEntries(c.cache.Len())
		return r, nil
	})
	if err != nil {
		c.logger.Warn("bin calculation failed", zap.Stringer("key", key), zap.Error(err))
		return nil, err
	}
	return v.(*Result), nil
}

// Warm fills the cache for every semester, limited to workers concurrent
// calculations. It stops at the first error.
func (c *Calculator) Warm(ctx context.Context, site Site, sems []Semester, ra, dec BinSize, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, sem := range sems {
		sem := sem
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := c.Get(site, sem, ra, dec)
			return err
		})
	}
	return g.Wait()
}

// Stats returns a snapshot of cache activity.
func (c *Calculator) Stats() CacheStats {
	return CacheStats{
		Entries:   c.cache.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Purge empties the cache. Purged entries are not counted as evictions.
func (c *Calculator) Purge() {
	c.purging.Store(true)
	defer c.purging.Store(false)
	c.cache.Purge()
	metrics.SetCacheEntries(0)
}
