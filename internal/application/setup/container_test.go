package setup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/application/matrixapp"
	"github.com/andrescamacho/routing-go/internal/application/setup"
	"github.com/andrescamacho/routing-go/internal/application/solve"
	"github.com/andrescamacho/routing-go/internal/domain/journal"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
	"github.com/andrescamacho/routing-go/internal/infrastructure/config"
	"github.com/andrescamacho/routing-go/test/helpers"
)

// fakeJournal records saves in memory.
type fakeJournal struct {
	saved []*journal.SolveRun
}

func (j *fakeJournal) Save(ctx context.Context, run *journal.SolveRun) error {
	j.saved = append(j.saved, run)
	return nil
}

func (j *fakeJournal) Recent(ctx context.Context, limit int) ([]*journal.SolveRun, error) {
	if limit > len(j.saved) {
		limit = len(j.saved)
	}
	out := make([]*journal.SolveRun, 0, limit)
	for i := len(j.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.saved[i])
	}
	return out, nil
}

func (j *fakeJournal) CountByEngine(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, run := range j.saved {
		counts[run.Engine]++
	}
	return counts, nil
}

func containerConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Providers.Euclidean.Enabled = true
	cfg.Providers.Haversine.Enabled = true
	cfg.Data.Root = t.TempDir()
	cfg.Metrics.Enabled = true
	return cfg
}

func planar(v float64) *float64 { return &v }

func TestNewContainer_SolvesThroughTheMediator(t *testing.T) {
	// Arrange
	runs := &fakeJournal{}
	c, err := setup.NewContainer(containerConfig(t), quietLogger(), runs, nil)
	require.NoError(t, err)

	request := &solver.Request{
		Engine: "tour",
		Waypoints: []solver.Waypoint{
			{ID: "depot", X: planar(0), Y: planar(0), Depot: true},
			{ID: "a", X: planar(0), Y: planar(10)},
			{ID: "b", X: planar(10), Y: planar(10)},
			{ID: "c", X: planar(10), Y: planar(0)},
		},
		Fleet: solver.Fleet{Vehicles: []solver.Vehicle{{ID: "v1"}}},
	}

	// Act
	response, err := c.Mediator.Send(context.Background(), &solve.SolveCommand{Request: request})

	// Assert
	require.NoError(t, err)
	solved, ok := response.(*solve.SolveResponse)
	require.True(t, ok)
	assert.NotEmpty(t, solved.RequestID)
	require.NotNil(t, solved.Routes)
	assert.Equal(t, solver.StatusSuccess, solved.Routes.Status)

	require.Len(t, runs.saved, 1)
	assert.Equal(t, "tour", runs.saved[0].Engine)
	assert.Equal(t, solved.RequestID, runs.saved[0].RequestID)
}

func TestNewContainer_ComputesMatricesThroughTheRegistry(t *testing.T) {
	// Arrange
	c, err := setup.NewContainer(containerConfig(t), quietLogger(), nil, nil)
	require.NoError(t, err)

	request := &matrix.Request{
		Adapter: "euclidean",
		Coordinates: []shared.Coordinate{
			{Lat: 0, Lon: 0},
			{Lat: 4, Lon: 3},
		},
	}

	// Act
	response, err := c.Mediator.Send(context.Background(), &matrixapp.ComputeMatrixCommand{Request: request})

	// Assert
	require.NoError(t, err)
	computed, ok := response.(*matrixapp.ComputeMatrixResponse)
	require.True(t, ok)
	assert.Equal(t, "euclidean", computed.Adapter)
	require.NotNil(t, computed.Matrix)
	assert.Equal(t, float64(5), computed.Matrix.Distances[0][1])
}

func TestNewContainer_TracksUptimeWithItsClock(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	c, err := setup.NewContainer(containerConfig(t), quietLogger(), nil, clock)
	require.NoError(t, err)

	// Act
	clock.Advance(90 * time.Second)

	// Assert
	assert.Equal(t, 90*time.Second, c.Uptime())
}

func TestNewContainer_EngineRegistryAcceptsPlugins(t *testing.T) {
	// Arrange
	c, err := setup.NewContainer(containerConfig(t), quietLogger(), nil, nil)
	require.NoError(t, err)

	canned := &solver.Routes{
		Status: solver.StatusSuccess,
		Routes: []solver.Route{{VehicleID: "v1", NodeIndexes: []int{0, 1, 0}}},
	}
	plugged := helpers.NewMockEngine("plugged", canned)
	require.NoError(t, c.Engines.Register("plugged", func() (solver.Engine, error) { return plugged, nil }))

	request := &solver.Request{
		Engine: "plugged",
		Matrix: &matrix.Matrix{Distances: [][]float64{{0, 5}, {5, 0}}},
		Fleet:  solver.Fleet{Vehicles: []solver.Vehicle{{ID: "v1"}}},
	}

	// Act
	response, err := c.Mediator.Send(context.Background(), &solve.SolveCommand{Request: request})

	// Assert
	require.NoError(t, err)
	solved, ok := response.(*solve.SolveResponse)
	require.True(t, ok)
	require.Len(t, plugged.Solved(), 1)
	assert.Equal(t, 2, plugged.Solved()[0].N)
	// Totals come from the enricher, not the plugin's own figures.
	require.Len(t, solved.Routes.Routes, 1)
	assert.Equal(t, float64(10), solved.Routes.Routes[0].TotalDistance)
}

func TestNewContainer_ProviderRegistryAcceptsPlugins(t *testing.T) {
	// Arrange
	c, err := setup.NewContainer(containerConfig(t), quietLogger(), nil, nil)
	require.NoError(t, err)

	served := matrix.NewSquare(2)
	served.Distances[0][1] = 42
	served.Distances[1][0] = 42
	plugged := helpers.NewMockMatrixProvider(served)
	require.NoError(t, c.Providers.Register("satellite", func() (matrix.Provider, error) { return plugged, nil }))

	request := &matrix.Request{
		Adapter: "satellite",
		Coordinates: []shared.Coordinate{
			{Lat: 0, Lon: 0},
			{Lat: 1, Lon: 1},
		},
	}

	// Act
	first, err1 := c.Mediator.Send(context.Background(), &matrixapp.ComputeMatrixCommand{Request: request})
	second, err2 := c.Mediator.Send(context.Background(), &matrixapp.ComputeMatrixCommand{Request: request})

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	computed, ok := first.(*matrixapp.ComputeMatrixResponse)
	require.True(t, ok)
	assert.Equal(t, float64(42), computed.Matrix.Distances[0][1])
	assert.Equal(t, computed.Matrix, second.(*matrixapp.ComputeMatrixResponse).Matrix)
	assert.Equal(t, 1, plugged.Calls(), "second compute should come from the cache")
}

func TestNewContainer_WiresCostPerKmIntoTheEnricher(t *testing.T) {
	// Arrange
	cfg := containerConfig(t)
	cfg.Solver.CostPerKm = 2.5
	c, err := setup.NewContainer(cfg, quietLogger(), nil, nil)
	require.NoError(t, err)

	request := &solver.Request{
		Engine: "heuristic",
		Matrix: &matrix.Matrix{Distances: [][]float64{{0, 1000}, {1000, 0}}},
		Fleet:  solver.Fleet{Vehicles: []solver.Vehicle{{ID: "v1"}}},
	}

	// Act
	response, err := c.Mediator.Send(context.Background(), &solve.SolveCommand{Request: request})

	// Assert
	require.NoError(t, err)
	solved, ok := response.(*solve.SolveResponse)
	require.True(t, ok)
	require.Len(t, solved.Routes.Routes, 1)
	require.NotNil(t, solved.Routes.Routes[0].Metadata)
	// 2 km round trip at 2.5 per km.
	assert.Equal(t, 5.0, solved.Routes.Routes[0].Metadata["cost"])
}
