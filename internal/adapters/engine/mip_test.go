package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/engine"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

func TestMIPEngine_ProvesOptimalTour(t *testing.T) {
	// Arrange
	inst := newInstance(triangleDistances(), nil, solver.Vehicle{ID: "veh-0"})
	e := engine.NewMIPEngine()

	// Act
	result, err := e.Solve(context.Background(), inst)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)
	assert.InDelta(t, 15.0, result.TotalDistance, 1e-6)
	assert.Contains(t, result.Message, "status=optimal")
}

func TestMIPEngine_SplitsByCapacity(t *testing.T) {
	// Arrange
	inst := newInstance(triangleDistances(), nil,
		solver.Vehicle{ID: "veh-0", Capacity: []int64{5}},
		solver.Vehicle{ID: "veh-1", Capacity: []int64{5}},
	)
	inst.Demands = []int64{0, 4, 4}
	e := engine.NewMIPEngine()

	// Act
	result, err := e.Solve(context.Background(), inst)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Routes, 2)
	assert.InDelta(t, 24.0, result.TotalDistance, 1e-6)
	for _, route := range result.Routes {
		assert.Equal(t, 1, route.Stops())
	}
}

func TestMIPEngine_SequencesWithinTimeWindows(t *testing.T) {
	// Arrange - node 1 closes before node 2 opens, forcing depot, 1, 2, depot
	durations := [][]int64{
		{0, 300, 420},
		{300, 0, 180},
		{420, 180, 0},
	}
	inst := newInstance(triangleDistances(), durations, solver.Vehicle{ID: "veh-0"})
	inst.TimeWindows = []solver.TimeWindow{
		{Start: 0, End: solver.HorizonSeconds},
		{Start: 0, End: 400},
		{Start: 600, End: 3600},
	}
	inst.ServiceTimes = []int64{0, 120, 120}
	e := engine.NewMIPEngine()

	// Act
	result, err := e.Solve(context.Background(), inst)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, []int{0, 1, 2, 0}, result.Routes[0].NodeIndexes)
	assert.Contains(t, result.Message, "status=optimal")
}

func TestMIPEngine_RejectsExcessDemand(t *testing.T) {
	// Arrange
	inst := newInstance(triangleDistances(), nil,
		solver.Vehicle{ID: "veh-0", Capacity: []int64{5}},
		solver.Vehicle{ID: "veh-1", Capacity: []int64{5}},
	)
	inst.Demands = []int64{0, 9, 9}
	e := engine.NewMIPEngine()

	// Act
	_, err := e.Solve(context.Background(), inst)

	// Assert
	var infeasible *shared.InfeasibleError
	require.ErrorAs(t, err, &infeasible)
	assert.Contains(t, err.Error(), "total demand 18 exceeds total vehicle capacity 10")
}

func TestMIPEngine_ServesDemandsWithUncapacitatedVehicle(t *testing.T) {
	// Arrange - no capacity vector means unlimited, not zero
	inst := newInstance(triangleDistances(), nil, solver.Vehicle{ID: "veh-0"})
	inst.Demands = []int64{0, 4, 4}
	e := engine.NewMIPEngine()

	// Act
	result, err := e.Solve(context.Background(), inst)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)
	assert.InDelta(t, 15.0, result.TotalDistance, 1e-6)
}

func TestMIPEngine_RejectsUnreachableWindow(t *testing.T) {
	// Arrange - node 1 closes before the shortest travel from the depot
	durations := [][]int64{
		{0, 300, 420},
		{300, 0, 180},
		{420, 180, 0},
	}
	inst := newInstance(triangleDistances(), durations, solver.Vehicle{ID: "veh-0"})
	inst.TimeWindows[1] = solver.TimeWindow{Start: 0, End: 100}
	e := engine.NewMIPEngine()

	// Act
	_, err := e.Solve(context.Background(), inst)

	// Assert
	var infeasible *shared.InfeasibleError
	require.ErrorAs(t, err, &infeasible)
	assert.Contains(t, err.Error(), "node 1 latest time 100 is earlier than shortest travel 300")
}

func TestMIPEngine_RejectsPickupDeliveryPairs(t *testing.T) {
	// Arrange
	inst := newInstance(triangleDistances(), nil, solver.Vehicle{ID: "veh-0"})
	inst.Pairs = []solver.PickupDeliveryPair{{Pickup: 1, Delivery: 2}}
	e := engine.NewMIPEngine()

	// Act
	_, err := e.Solve(context.Background(), inst)

	// Assert
	var inputErr *shared.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "pickup_delivery_pairs", inputErr.Field)
}

func TestMIPEngine_ReportsStopWhenBudgetSpentWithoutIncumbent(t *testing.T) {
	// Arrange - the budget is gone before the first relaxation runs
	inst := newInstance(triangleDistances(), nil, solver.Vehicle{ID: "veh-0"})
	e := engine.NewMIPEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, err := e.Solve(ctx, inst)

	// Assert
	var stopped *shared.EngineStoppedError
	require.ErrorAs(t, err, &stopped)
	assert.Contains(t, err.Error(), "increasing time_limit")
}

func TestMIPEngine_RequiresMatrix(t *testing.T) {
	// Arrange
	inst := &solver.Instance{N: 2, Vehicles: []solver.Vehicle{{ID: "veh-0"}}}
	e := engine.NewMIPEngine()

	// Act
	_, err := e.Solve(context.Background(), inst)

	// Assert
	var inputErr *shared.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "matrix", inputErr.Field)
}
