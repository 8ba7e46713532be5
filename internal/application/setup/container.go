package setup

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/andrescamacho/routing-go/internal/adapters/benchfiles"
	"github.com/andrescamacho/routing-go/internal/adapters/metrics"
	"github.com/andrescamacho/routing-go/internal/application/cache"
	"github.com/andrescamacho/routing-go/internal/application/common"
	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/application/solve"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/journal"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
	"github.com/andrescamacho/routing-go/internal/infrastructure/config"
)

// Container owns every long-lived object of the routing service: the plugin
// registries, the TTL caches, the benchmark library, the prometheus
// collectors and the mediator with all handlers bound. main builds exactly
// one; tests build their own over fakes. Nothing here is a package-level
// singleton.
type Container struct {
	Config *config.Config
	Logger logrus.FieldLogger
	Clock  shared.Clock

	Engines   *registry.Registry[solver.Engine]
	Providers *registry.Registry[matrix.Provider]

	// MatrixCache memoizes computed matrices by request fingerprint;
	// ResponseCache holds rendered provider responses for the convenience
	// route; the index and pair caches live inside the benchmark indexer.
	MatrixCache   *cache.TTLCache
	ResponseCache *cache.TTLCache

	Index    benchmark.Index
	Loader   benchmark.Loader
	Exporter benchmark.Exporter

	Journal journal.Repository

	Mediator mediator.Mediator

	// MetricsRegistry is nil when metrics are disabled; the collectors are
	// then nil too and every record helper no-ops.
	MetricsRegistry *prometheus.Registry
	CommandMetrics  *metrics.CommandMetricsCollector
	SolverMetrics   *metrics.SolverMetricsCollector
	MatrixMetrics   *metrics.MatrixMetricsCollector
	HTTPMetrics     *metrics.HTTPMetricsCollector

	StartedAt time.Time
}

// NewContainer wires the full application: registries loaded from config,
// caches sized from CacheConfig, collectors registered when metrics are
// enabled, and every handler bound to the mediator. journalRepo may be nil;
// solves then skip journaling and the runs query returns an error. A nil
// clock falls back to the real clock.
func NewContainer(cfg *config.Config, logger logrus.FieldLogger, journalRepo journal.Repository, clock shared.Clock) (*Container, error) {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Clock:     clock,
		Journal:   journalRepo,
		StartedAt: clock.Now(),
	}

	c.Engines = registry.New[solver.Engine]("engine")
	c.Providers = registry.New[matrix.Provider]("adapter")
	RegisterEngines(c.Engines, logger)
	RegisterProviders(c.Providers, cfg, logger)

	c.MatrixCache = cache.New(cfg.Cache.MatrixTTL, cfg.Cache.MaxEntries, clock)
	c.ResponseCache = cache.New(cfg.Cache.ProviderTTL, cfg.Cache.MaxEntries, clock)

	indexCache := cache.New(cfg.Data.IndexTTL, cfg.Cache.MaxEntries, clock)
	pairCache := cache.New(cfg.Cache.PairTTL, cfg.Cache.MaxEntries, clock)
	c.Index = benchfiles.NewIndexer(cfg.Data.Root, cfg.Data.Excludes, indexCache, pairCache)
	c.Loader = benchfiles.NewFactory()
	c.Exporter = benchfiles.NewExporter(cfg.Data.Root)

	if cfg.Metrics.Enabled {
		c.MetricsRegistry = metrics.NewRegistry()
		c.CommandMetrics = metrics.NewCommandMetricsCollector()
		c.SolverMetrics = metrics.NewSolverMetricsCollector()
		c.MatrixMetrics = metrics.NewMatrixMetricsCollector()
		c.HTTPMetrics = metrics.NewHTTPMetricsCollector()

		if err := c.CommandMetrics.Register(c.MetricsRegistry); err != nil {
			return nil, fmt.Errorf("failed to register command metrics: %w", err)
		}
		if err := c.SolverMetrics.Register(c.MetricsRegistry); err != nil {
			return nil, fmt.Errorf("failed to register solver metrics: %w", err)
		}
		if err := c.MatrixMetrics.Register(c.MetricsRegistry); err != nil {
			return nil, fmt.Errorf("failed to register matrix metrics: %w", err)
		}
		if err := c.HTTPMetrics.Register(c.MetricsRegistry); err != nil {
			return nil, fmt.Errorf("failed to register http metrics: %w", err)
		}
	}

	// First Use runs outermost: the id must exist before the logger binds
	// it, and the metrics middleware should not time the id stamping.
	med := mediator.NewMediator()
	med.Use(common.RequestIDMiddleware())
	med.Use(common.LoggingMiddleware(logger))
	med.Use(metrics.PrometheusMiddleware(c.CommandMetrics))
	c.Mediator = med

	handlers := NewHandlerRegistry(
		c.Engines,
		c.Providers,
		c.MatrixCache,
		c.Index,
		c.Loader,
		c.Exporter,
		journalRepo,
		solve.NewEnricher(cfg.Solver.CostPerKm),
		c.SolverMetrics,
		c.MatrixMetrics,
		clock,
	)
	if err := handlers.RegisterAll(med); err != nil {
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	return c, nil
}

// Uptime reports how long the container has been running.
func (c *Container) Uptime() time.Duration {
	return c.Clock.Now().Sub(c.StartedAt)
}
