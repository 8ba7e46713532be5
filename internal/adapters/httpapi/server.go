package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andrescamacho/routing-go/internal/adapters/metrics"
	"github.com/andrescamacho/routing-go/internal/application/cache"
	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/infrastructure/config"
)

// Server is the HTTP front of the daemon. Every route dispatches through the
// mediator; the server itself holds no routing logic.
type Server struct {
	mediator      mediator.Mediator
	logger        logrus.FieldLogger
	responseCache *cache.TTLCache
	uptime        func() time.Duration
	version       string

	httpServer *http.Server
}

// NewServer wires the route table and middleware chain. responseCache backs
// the coords-only matrix route and may be nil; httpMetrics may be nil when
// metrics are disabled; uptime feeds the health endpoint.
func NewServer(
	cfg *config.ServerConfig,
	med mediator.Mediator,
	logger logrus.FieldLogger,
	responseCache *cache.TTLCache,
	httpMetrics *metrics.HTTPMetricsCollector,
	uptime func() time.Duration,
	version string,
) *Server {
	s := &Server{
		mediator:      med,
		logger:        logger,
		responseCache: responseCache,
		uptime:        uptime,
		version:       version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /solver", s.handleSolve)
	mux.HandleFunc("GET /solver/runs", s.handleRecentRuns)
	mux.HandleFunc("POST /distance-matrix", s.handleComputeMatrix)
	mux.HandleFunc("POST /distance-matrix/ors", s.handleORSMatrix)
	mux.HandleFunc("GET /benchmarks", s.handleListDatasets)
	mux.HandleFunc("GET /benchmarks/files", s.handleListFiles)
	mux.HandleFunc("GET /benchmarks/find", s.handleFindPair)
	mux.HandleFunc("GET /benchmarks/load", s.handleLoadInstance)
	mux.HandleFunc("POST /benchmarks/export", s.handleExportInstance)
	mux.HandleFunc("GET /status/adapters", s.handleListAdapters)
	mux.HandleFunc("GET /status/solvers", s.handleListSolvers)
	mux.HandleFunc("GET /capabilities", s.handleCapabilities)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Recovery sits innermost so the access log and the metrics middleware
	// still observe the 500 it writes.
	var handler http.Handler = withRecovery(logger, mux)
	handler = withCORS(cfg.CORSAllowOrigins, handler)
	handler = metrics.HTTPMiddleware(httpMetrics, handler)
	handler = withAccessLog(logger, handler)
	handler = withRequestID(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler exposes the full middleware-wrapped route table.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the address the server binds.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
