// Package metrics holds the Prometheus collectors for skybins.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skybins_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skybins_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skybins_cache_lookups_total",
			Help: "RA/Dec result cache lookups by outcome.",
		},
		[]string{"result"},
	)

	cacheEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skybins_cache_evictions_total",
			Help: "RA/Dec results evicted from the cache.",
		},
	)

	cacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "skybins_cache_entries",
			Help: "RA/Dec results currently cached.",
		},
	)

	computeDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skybins_compute_duration_seconds",
			Help:    "Time spent computing bins, by stage.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(cacheLookupsTotal)
	prometheus.MustRegister(cacheEvictionsTotal)
	prometheus.MustRegister(cacheEntries)
	prometheus.MustRegister(computeDurationSeconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CacheHit records a cache hit.
func CacheHit() { cacheLookupsTotal.WithLabelValues("hit").Inc() }

// CacheMiss records a cache miss.
func CacheMiss() { cacheLookupsTotal.WithLabelValues("miss").Inc() }

// CacheEvicted records an eviction.
func CacheEvicted() { cacheEvictionsTotal.Inc() }

// SetCacheEntries sets the current cache size.
func SetCacheEntries(n int) { cacheEntries.Set(float64(n)) }

// ObserveCompute records how long a stage ("ra", "dec", "total") took.
func ObserveCompute(stage string, d time.Duration) {
	computeDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// knownRoutes are label-safe as-is.
var knownRoutes = map[string]bool{
	"/":                   true,
	"/healthz":            true,
	"/metrics":            true,
	"/api/v1/sites":       true,
	"/api/v1/bins":        true,
	"/api/v1/nights":      true,
	"/api/v1/cache/stats": true,
}

// normalizeRoute collapses request paths into a bounded set of labels.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/api/v1/sites/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/api/v1/sites/{site}"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := normalizeRoute(r.URL.Path)
		code := strconv.Itoa(rw.statusCode)
		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
