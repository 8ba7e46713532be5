package solve_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/application/requestid"
	"github.com/andrescamacho/routing-go/internal/application/solve"
	"github.com/andrescamacho/routing-go/internal/domain/journal"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// stubEngine is a scriptable engine for dispatch tests.
type stubEngine struct {
	name    string
	caps    solver.Capabilities
	solveFn func(ctx context.Context, inst *solver.Instance) (*solver.Routes, error)
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Capabilities() solver.Capabilities { return s.caps }

func (s *stubEngine) Solve(ctx context.Context, inst *solver.Instance) (*solver.Routes, error) {
	return s.solveFn(ctx, inst)
}

// memoryJournal records saved runs in memory.
type memoryJournal struct {
	runs    []*journal.SolveRun
	saveErr error
}

func (m *memoryJournal) Save(ctx context.Context, run *journal.SolveRun) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryJournal) Recent(ctx context.Context, limit int) ([]*journal.SolveRun, error) {
	if limit > len(m.runs) {
		limit = len(m.runs)
	}
	return m.runs[len(m.runs)-limit:], nil
}

func (m *memoryJournal) CountByEngine(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, run := range m.runs {
		counts[run.Engine]++
	}
	return counts, nil
}

// recordedSolve is one metrics observation.
type recordedSolve struct {
	engine string
	status string
}

type memoryMetrics struct {
	observed []recordedSolve
}

func (m *memoryMetrics) RecordSolve(engine, status string, seconds float64) {
	m.observed = append(m.observed, recordedSolve{engine: engine, status: status})
}

func engineRegistry(engines ...*stubEngine) *registry.Registry[solver.Engine] {
	reg := registry.New[solver.Engine]("engine")
	for _, eng := range engines {
		eng := eng
		reg.Register(eng.name, func() (solver.Engine, error) { return eng, nil })
	}
	return reg
}

func happyEngine() *stubEngine {
	return &stubEngine{
		name: "stub",
		solveFn: func(ctx context.Context, inst *solver.Instance) (*solver.Routes, error) {
			return &solver.Routes{
				Status: solver.StatusSuccess,
				Routes: []solver.Route{{
					VehicleID:   "veh-1",
					NodeIndexes: []int{0, 1, 0},
				}},
			}, nil
		},
	}
}

func matrixRequest() *solver.Request {
	return &solver.Request{
		Engine: "stub",
		Matrix: &matrix.Matrix{Distances: [][]float64{
			{0, 5},
			{5, 0},
		}},
		Fleet: solver.Fleet{Vehicles: []solver.Vehicle{{ID: "veh-1", Capacity: []int64{100}}}},
	}
}

func TestSolveHandler_RejectsUnknownEngine(t *testing.T) {
	// Arrange
	handler := solve.NewSolveHandler(engineRegistry(happyEngine()), nil, nil, nil, nil)
	req := matrixRequest()
	req.Engine = "warp"

	// Act
	_, err := handler.Handle(context.Background(), &solve.SolveCommand{Request: req})

	// Assert
	var input *shared.InputError
	require.ErrorAs(t, err, &input)
	assert.Equal(t, "solver", input.Field)
	assert.Contains(t, input.Message, `engine "warp" is not registered`)
}

func TestSolveHandler_RejectsWrongRequestType(t *testing.T) {
	// Arrange
	handler := solve.NewSolveHandler(engineRegistry(happyEngine()), nil, nil, nil, nil)

	// Act
	_, err := handler.Handle(context.Background(), "not a command")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request type: expected *SolveCommand")
}

func TestSolveHandler_RequiresMatrixForMatrixEngines(t *testing.T) {
	// Arrange: geographic waypoints only, against an engine without
	// coordinate mode.
	handler := solve.NewSolveHandler(engineRegistry(happyEngine()), nil, nil, nil, nil)
	req := &solver.Request{
		Engine: "stub",
		Waypoints: []solver.Waypoint{
			{ID: "a", Location: &shared.Coordinate{Lat: 52.5, Lon: 13.4}},
			{ID: "b", Location: &shared.Coordinate{Lat: 48.1, Lon: 11.6}},
		},
		Fleet: solver.Fleet{Vehicles: []solver.Vehicle{{ID: "veh-1"}}},
	}

	// Act
	_, err := handler.Handle(context.Background(), &solve.SolveCommand{Request: req})

	// Assert
	var input *shared.InputError
	require.ErrorAs(t, err, &input)
	assert.Equal(t, "matrix", input.Field)
	assert.Contains(t, input.Message, `matrix is required for engine "stub"; provide matrix or planar waypoints`)
}

func TestSolveHandler_RecoversFromEnginePanic(t *testing.T) {
	// Arrange
	eng := happyEngine()
	eng.solveFn = func(ctx context.Context, inst *solver.Instance) (*solver.Routes, error) {
		panic("index out of range")
	}
	metrics := &memoryMetrics{}
	handler := solve.NewSolveHandler(engineRegistry(eng), nil, nil, metrics, nil)

	// Act
	_, err := handler.Handle(context.Background(), &solve.SolveCommand{Request: matrixRequest()})

	// Assert
	var engineErr *shared.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Contains(t, engineErr.Message, "engine panicked")
	require.Len(t, metrics.observed, 1)
	assert.Equal(t, recordedSolve{engine: "stub", status: solver.StatusError}, metrics.observed[0])
}

func TestSolveHandler_AssignsRequestID(t *testing.T) {
	// Arrange
	handler := solve.NewSolveHandler(engineRegistry(happyEngine()), nil, nil, nil, nil)

	// Act
	resp, err := handler.Handle(context.Background(), &solve.SolveCommand{Request: matrixRequest()})

	// Assert
	require.NoError(t, err)
	solved, ok := resp.(*solve.SolveResponse)
	require.True(t, ok)
	assert.NotEmpty(t, solved.RequestID)
}

func TestSolveHandler_KeepsRequestIDFromContext(t *testing.T) {
	// Arrange
	handler := solve.NewSolveHandler(engineRegistry(happyEngine()), nil, nil, nil, nil)
	ctx := requestid.WithRequestID(context.Background(), "req-fixed")

	// Act
	resp, err := handler.Handle(ctx, &solve.SolveCommand{Request: matrixRequest()})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "req-fixed", resp.(*solve.SolveResponse).RequestID)
}

func TestSolveHandler_WrapsErrorsWithRequestID(t *testing.T) {
	// Arrange
	eng := happyEngine()
	eng.solveFn = func(ctx context.Context, inst *solver.Instance) (*solver.Routes, error) {
		return nil, shared.NewEngineStoppedError(eng.name)
	}
	handler := solve.NewSolveHandler(engineRegistry(eng), nil, nil, nil, nil)
	ctx := requestid.WithRequestID(context.Background(), "req-42")

	// Act
	_, err := handler.Handle(ctx, &solve.SolveCommand{Request: matrixRequest()})

	// Assert
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "solve req-42:"), err.Error())
	var stopped *shared.EngineStoppedError
	assert.ErrorAs(t, err, &stopped)
}

func TestSolveHandler_JournalsCompletedRuns(t *testing.T) {
	// Arrange
	runs := &memoryJournal{}
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	eng := happyEngine()
	eng.solveFn = func(ctx context.Context, inst *solver.Instance) (*solver.Routes, error) {
		clock.Advance(1500 * time.Millisecond)
		return &solver.Routes{
			Status: solver.StatusSuccess,
			Routes: []solver.Route{{
				VehicleID:   "veh-1",
				NodeIndexes: []int{0, 1, 0},
			}},
		}, nil
	}
	handler := solve.NewSolveHandler(engineRegistry(eng), nil, runs, nil, clock)
	ctx := requestid.WithRequestID(context.Background(), "req-7")

	// Act
	_, err := handler.Handle(ctx, &solve.SolveCommand{Request: matrixRequest()})

	// Assert
	require.NoError(t, err)
	require.Len(t, runs.runs, 1)
	run := runs.runs[0]
	assert.Equal(t, "req-7", run.RequestID)
	assert.Equal(t, "stub", run.Engine)
	assert.Equal(t, solver.StatusSuccess, run.Status)
	assert.Equal(t, 2, run.Waypoints)
	assert.Equal(t, int64(1500), run.SolveMillis)
	assert.InDelta(t, 10.0, run.TotalDistance, 1e-9)
}

func TestSolveHandler_JournalFailureDoesNotFailSolve(t *testing.T) {
	// Arrange
	runs := &memoryJournal{saveErr: errors.New("disk full")}
	handler := solve.NewSolveHandler(engineRegistry(happyEngine()), nil, runs, nil, nil)

	// Act
	resp, err := handler.Handle(context.Background(), &solve.SolveCommand{Request: matrixRequest()})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, resp)
}

func TestSolveHandler_EnrichesFromCanonicalMatrix(t *testing.T) {
	// Arrange: the stub engine reports no totals at all.
	metrics := &memoryMetrics{}
	handler := solve.NewSolveHandler(engineRegistry(happyEngine()), solve.NewEnricher(2.0), nil, metrics, nil)

	// Act
	resp, err := handler.Handle(context.Background(), &solve.SolveCommand{Request: matrixRequest()})

	// Assert
	require.NoError(t, err)
	routes := resp.(*solve.SolveResponse).Routes
	require.Len(t, routes.Routes, 1)
	assert.InDelta(t, 10.0, routes.Routes[0].TotalDistance, 1e-9)
	assert.InDelta(t, 10.0, routes.TotalDistance, 1e-9)
	require.Contains(t, routes.Routes[0].Metadata, "cost")
	assert.InDelta(t, 0.02, routes.Routes[0].Metadata["cost"].(float64), 1e-12)
	require.Len(t, metrics.observed, 1)
	assert.Equal(t, recordedSolve{engine: "stub", status: solver.StatusSuccess}, metrics.observed[0])
}

func TestSolveHandler_WrapsEngineConstructionFailure(t *testing.T) {
	// Arrange: the factory is registered but cannot build its engine.
	reg := registry.New[solver.Engine]("engine")
	reg.Register("stub", func() (solver.Engine, error) {
		return nil, fmt.Errorf("license expired")
	})
	handler := solve.NewSolveHandler(reg, nil, nil, nil, nil)

	// Act
	_, err := handler.Handle(context.Background(), &solve.SolveCommand{Request: matrixRequest()})

	// Assert
	require.Error(t, err)
	var input *shared.InputError
	assert.False(t, errors.As(err, &input))
	assert.Contains(t, err.Error(), `failed to initialize engine "stub"`)
	assert.Contains(t, err.Error(), "license expired")
}
