package setup

import (
	"reflect"

	"github.com/andrescamacho/routing-go/internal/application/benchmarkapp"
	"github.com/andrescamacho/routing-go/internal/application/cache"
	"github.com/andrescamacho/routing-go/internal/application/journalapp"
	"github.com/andrescamacho/routing-go/internal/application/matrixapp"
	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/application/solve"
	"github.com/andrescamacho/routing-go/internal/application/statusapp"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/journal"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	engines       *registry.Registry[solver.Engine]
	providers     *registry.Registry[matrix.Provider]
	matrixCache   *cache.TTLCache
	index         benchmark.Index
	loader        benchmark.Loader
	exporter      benchmark.Exporter
	journal       journal.Repository
	enricher      *solve.Enricher
	solveMetrics  solve.SolveMetrics
	matrixMetrics matrixapp.MatrixMetrics
	clock         shared.Clock
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	engines *registry.Registry[solver.Engine],
	providers *registry.Registry[matrix.Provider],
	matrixCache *cache.TTLCache,
	index benchmark.Index,
	loader benchmark.Loader,
	exporter benchmark.Exporter,
	journalRepo journal.Repository,
	enricher *solve.Enricher,
	solveMetrics solve.SolveMetrics,
	matrixMetrics matrixapp.MatrixMetrics,
	clock shared.Clock,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		engines:       engines,
		providers:     providers,
		matrixCache:   matrixCache,
		index:         index,
		loader:        loader,
		exporter:      exporter,
		journal:       journalRepo,
		enricher:      enricher,
		solveMetrics:  solveMetrics,
		matrixMetrics: matrixMetrics,
		clock:         clock,
	}
}

// RegisterSolveHandlers registers the dispatch facade with the mediator
func (r *HandlerRegistry) RegisterSolveHandlers(m mediator.Mediator) error {
	solveHandler := solve.NewSolveHandler(r.engines, r.enricher, r.journal, r.solveMetrics, r.clock)
	return m.Register(reflect.TypeOf(&solve.SolveCommand{}), solveHandler)
}

// RegisterMatrixHandlers registers the matrix acquisition facade
func (r *HandlerRegistry) RegisterMatrixHandlers(m mediator.Mediator) error {
	computeHandler := matrixapp.NewComputeMatrixHandler(r.providers, r.matrixCache, r.matrixMetrics)
	return m.Register(reflect.TypeOf(&matrixapp.ComputeMatrixCommand{}), computeHandler)
}

// RegisterBenchmarkHandlers registers the benchmark library queries:
// dataset discovery, file listing, pair lookup, instance loading and export
func (r *HandlerRegistry) RegisterBenchmarkHandlers(m mediator.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&benchmarkapp.ListDatasetsQuery{}),
		benchmarkapp.NewListDatasetsHandler(r.index),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&benchmarkapp.ListFilesQuery{}),
		benchmarkapp.NewListFilesHandler(r.index),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&benchmarkapp.FindPairQuery{}),
		benchmarkapp.NewFindPairHandler(r.index),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&benchmarkapp.LoadInstanceQuery{}),
		benchmarkapp.NewLoadInstanceHandler(r.index, r.loader),
	); err != nil {
		return err
	}

	return m.Register(
		reflect.TypeOf(&benchmarkapp.ExportInstanceQuery{}),
		benchmarkapp.NewExportInstanceHandler(r.exporter),
	)
}

// RegisterStatusHandlers registers adapter/solver discovery and the
// capability report
func (r *HandlerRegistry) RegisterStatusHandlers(m mediator.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&statusapp.ListAdaptersQuery{}),
		statusapp.NewListAdaptersHandler(r.providers),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&statusapp.ListSolversQuery{}),
		statusapp.NewListSolversHandler(r.engines),
	); err != nil {
		return err
	}

	return m.Register(
		reflect.TypeOf(&statusapp.CapabilitiesQuery{}),
		statusapp.NewCapabilitiesHandler(r.engines, r.providers),
	)
}

// RegisterJournalHandlers registers the recent-runs query
func (r *HandlerRegistry) RegisterJournalHandlers(m mediator.Mediator) error {
	return m.Register(
		reflect.TypeOf(&journalapp.RecentRunsQuery{}),
		journalapp.NewRecentRunsHandler(r.journal),
	)
}

// RegisterAll wires every application handler into the mediator
func (r *HandlerRegistry) RegisterAll(m mediator.Mediator) error {
	if err := r.RegisterSolveHandlers(m); err != nil {
		return err
	}
	if err := r.RegisterMatrixHandlers(m); err != nil {
		return err
	}
	if err := r.RegisterBenchmarkHandlers(m); err != nil {
		return err
	}
	if err := r.RegisterStatusHandlers(m); err != nil {
		return err
	}
	return r.RegisterJournalHandlers(m)
}
