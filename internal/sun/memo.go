package sun

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

type night struct {
	start, end time.Time
}

// Nights memoizes NightFor results. Twilight for a given site, angle and
// local date never changes, so entries carry no TTL. Errors are not cached.
type Nights struct {
	cache *ristretto.Cache
}

// NewNights returns a memo holding up to about maxEntries nights.
func NewNights(maxEntries int64) (*Nights, error) {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sun: creating night cache: %w", err)
	}
	return &Nights{cache: c}, nil
}

func nightKey(angle float64, t time.Time, p Place) string {
	zone := p.Zone
	if zone == nil {
		zone = time.UTC
	}
	return fmt.Sprintf("%.6f|%.6f|%s|%.4f|%s", p.Lat, p.Lon, zone.String(), angle, t.In(zone).Format("2006-01-02"))
}

// NightFor is NightFor backed by the memo.
func (n *Nights) NightFor(angle float64, t time.Time, p Place) (time.Time, time.Time, error) {
	key := nightKey(angle, t, p)
	if v, ok := n.cache.Get(key); ok {
		if nt, ok := v.(night); ok {
			return nt.start, nt.end, nil
		}
	}

	start, end, err := NightFor(angle, t, p)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	n.cache.Set(key, night{start: start, end: end}, 1)
	n.cache.Wait()
	return start, end, nil
}

// Close releases the memo's background goroutines.
func (n *Nights) Close() {
	n.cache.Close()
}
