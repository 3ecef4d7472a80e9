// Package api serves skybins calculations over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/thurmanmarka/skybins"
	"github.com/thurmanmarka/skybins/internal/metrics"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// CreateRouter registers every route.
func CreateRouter(bins BinService, nights skybins.NightSource, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Handle("/sites", SitesHandler(logger)).Methods(http.MethodGet)
	v1.Handle("/sites/{site}", SiteHandler(logger)).Methods(http.MethodGet)
	v1.Handle("/bins", BinsHandler(bins, logger)).Methods(http.MethodGet)
	v1.Handle("/nights", NightsHandler(nights, logger)).Methods(http.MethodGet)
	v1.Handle("/cache/stats", CacheStatsHandler(bins, logger)).Methods(http.MethodGet)

	return r
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, bins BinService, nights skybins.NightSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	// metrics -> logging -> router
	var handler http.Handler = CreateRouter(bins, nights, logger)
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			// A cold semester calculation can take a while.
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			fields := []zap.Field{
				zap.String("component", "api"),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sr.statusCode),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("remote_ip", r.RemoteAddr),
			}
			if r.URL.Path == "/healthz" {
				logger.Debug("request", fields...)
				return
			}
			logger.Info("request", fields...)
		})
	}
}
