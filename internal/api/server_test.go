package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thurmanmarka/skybins"
)

type fakeBins struct {
	calls int
	last  struct {
		site    string
		sem     skybins.Semester
		ra, dec skybins.BinSize
	}
	err error
}

func (f *fakeBins) Get(site skybins.Site, sem skybins.Semester, ra, dec skybins.BinSize) (*skybins.Result, error) {
	f.calls++
	f.last.site, f.last.sem, f.last.ra, f.last.dec = site.Name, sem, ra, dec
	if f.err != nil {
		return nil, f.err
	}
	h, _ := skybins.NewHours(1.5)
	p, _ := skybins.NewPercent(100)
	return skybins.NewResult([]skybins.Hours{h, h}, []skybins.Percent{p}, 90), nil
}

func (f *fakeBins) Stats() skybins.CacheStats {
	return skybins.CacheStats{Entries: 1, Capacity: 50, Hits: 2, Misses: 1}
}

type fakeNights struct{}

func (fakeNights) Night(_ skybins.TwilightKind, approx time.Time, site skybins.Site) (skybins.Night, error) {
	y, m, d := approx.In(site.Zone).Date()
	start := time.Date(y, m, d, 19, 0, 0, 0, site.Zone)
	return skybins.Night{Site: site, Start: start, End: start.Add(10 * time.Hour)}, nil
}

func newTestServer(t *testing.T, bins BinService) *httptest.Server {
	t.Helper()
	s := NewServer(":0", bins, fakeNights{}, zaptest.NewLogger(t))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeBins{})
	var body map[string]string
	assert.Equal(t, http.StatusOK, get(t, ts, "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeBins{})
	get(t, ts, "/healthz", nil)
	assert.Equal(t, http.StatusOK, get(t, ts, "/metrics", nil))
}

func TestBinsHandler(t *testing.T) {
	t.Run("should use default sizes", func(t *testing.T) {
		bins := &fakeBins{}
		ts := newTestServer(t, bins)

		var body BinsResponseDTO
		code := get(t, ts, "/api/v1/bins?site=gn&semester=2020A", &body)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "GN", body.Site)
		assert.Equal(t, "2020A", body.Semester)
		assert.Equal(t, 60, body.RaSizeMinutes)
		assert.Equal(t, 10, body.DecSizeDegrees)
		assert.Equal(t, 90.0, body.MaxRaDegrees)
		assert.Len(t, body.RaHours, 2)
		assert.Equal(t, skybins.DefaultRaBinSize, bins.last.ra)
		assert.Equal(t, skybins.DefaultDecBinSize, bins.last.dec)
	})

	t.Run("should pass explicit sizes", func(t *testing.T) {
		bins := &fakeBins{}
		ts := newTestServer(t, bins)
		code := get(t, ts, "/api/v1/bins?site=GS&semester=2019B&ra=120&dec=20", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "GS", bins.last.site)
		assert.Equal(t, 120, bins.last.ra.Size())
		assert.Equal(t, 20, bins.last.dec.Size())
	})

	tests := []struct {
		name string
		path string
		want int
	}{
		{"should reject a missing site", "/api/v1/bins?semester=2020A", http.StatusBadRequest},
		{"should reject an unknown site", "/api/v1/bins?site=KPNO&semester=2020A", http.StatusBadRequest},
		{"should reject a bad semester", "/api/v1/bins?site=GN&semester=2020Q", http.StatusBadRequest},
		{"should reject a bad ra size", "/api/v1/bins?site=GN&semester=2020A&ra=7", http.StatusBadRequest},
		{"should reject a non-numeric dec size", "/api/v1/bins?site=GN&semester=2020A&dec=ten", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bins := &fakeBins{}
			ts := newTestServer(t, bins)
			var body ErrorMessage
			assert.Equal(t, tt.want, get(t, ts, tt.path, &body))
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, 0, bins.calls)
		})
	}

	t.Run("should map calculation failures", func(t *testing.T) {
		ts := newTestServer(t, &fakeBins{err: skybins.ErrZeroZenithTotal})
		assert.Equal(t, http.StatusUnprocessableEntity, get(t, ts, "/api/v1/bins?site=GN&semester=2020A", nil))

		ts = newTestServer(t, &fakeBins{err: errors.New("solver exploded")})
		assert.Equal(t, http.StatusInternalServerError, get(t, ts, "/api/v1/bins?site=GN&semester=2020A", nil))
	})
}

func TestNightsHandler(t *testing.T) {
	ts := newTestServer(t, &fakeBins{})

	var body NightsResponseDTO
	code := get(t, ts, "/api/v1/nights?site=GN&semester=2020A&twilight=astronomical", &body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "astronomical", body.Twilight)
	assert.Len(t, body.Nights, 182)
	assert.Equal(t, 10.0, body.Nights[0].Duration)

	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/api/v1/nights?site=GN&semester=2020A&twilight=dusk", nil))
}

func TestSitesHandlers(t *testing.T) {
	ts := newTestServer(t, &fakeBins{})

	var sites []SiteDTO
	require.Equal(t, http.StatusOK, get(t, ts, "/api/v1/sites", &sites))
	assert.Len(t, sites, 2)

	var site SiteDTO
	require.Equal(t, http.StatusOK, get(t, ts, "/api/v1/sites/GS", &site))
	assert.Equal(t, skybins.GS.Lat, site.Lat)

	assert.Equal(t, http.StatusNotFound, get(t, ts, "/api/v1/sites/XX", nil))
}

func TestCacheStatsHandler(t *testing.T) {
	ts := newTestServer(t, &fakeBins{})
	var st skybins.CacheStats
	require.Equal(t, http.StatusOK, get(t, ts, "/api/v1/cache/stats", &st))
	assert.Equal(t, 50, st.Capacity)
	assert.Equal(t, int64(2), st.Hits)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &fakeBins{})
	resp, err := http.Post(ts.URL+"/api/v1/bins", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
