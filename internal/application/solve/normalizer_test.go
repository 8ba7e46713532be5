package solve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/application/solve"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

func f64(v float64) *float64 { return &v }

// planarWaypoint builds a solver-space stop at (x, y).
func planarWaypoint(id string, x, y float64) solver.Waypoint {
	return solver.Waypoint{ID: id, X: f64(x), Y: f64(y)}
}

func oneVehicleFleet(capacity int64) solver.Fleet {
	return solver.Fleet{Vehicles: []solver.Vehicle{{ID: "veh-1", Capacity: []int64{capacity}}}}
}

func TestNormalize_BuildsEuclideanMatrixFromPlanarWaypoints(t *testing.T) {
	// Arrange
	req := &solver.Request{
		Engine: "mip",
		Waypoints: []solver.Waypoint{
			planarWaypoint("depot", 0, 0),
			planarWaypoint("c1", 3, 4),
		},
		Fleet:           oneVehicleFleet(100),
		NodeTimeWindows: []*solver.TimeWindow{nil, {Start: 0, End: 1236}},
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, inst.Matrix)
	require.Equal(t, 2, inst.N)
	assert.InDelta(t, 5.0, inst.Matrix.Distances[0][1], 1e-9)
	// The bounded window spans 1236 minutes, so durations come out at scale 60.
	require.True(t, inst.Matrix.HasDurations())
	assert.Equal(t, int64(300), inst.Matrix.Durations[0][1])
	assert.Equal(t, solver.TimeWindow{Start: 0, End: 74160}, inst.TimeWindows[1])
	assert.Equal(t, solver.TimeWindow{Start: 0, End: solver.HorizonSeconds}, inst.TimeWindows[0])
}

func TestNormalize_ExplicitDurationScaleOverridesHeuristic(t *testing.T) {
	// Arrange
	req := &solver.Request{
		Engine: "mip",
		Waypoints: []solver.Waypoint{
			planarWaypoint("depot", 0, 0),
			planarWaypoint("c1", 3, 4),
		},
		Fleet:           oneVehicleFleet(100),
		NodeTimeWindows: []*solver.TimeWindow{nil, {Start: 0, End: 1236}},
		Options:         solver.Options{DurationScale: 1},
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	require.True(t, inst.Matrix.HasDurations())
	assert.Equal(t, int64(5), inst.Matrix.Durations[0][1])
}

func TestNormalize_GuessesUnscaledDurationsForNarrowWindows(t *testing.T) {
	// Arrange: the only bounded window spans 100 minutes (6000 seconds after
	// conversion), well under the extent that signals minute-grained data.
	req := &solver.Request{
		Engine: "mip",
		Waypoints: []solver.Waypoint{
			planarWaypoint("depot", 0, 0),
			planarWaypoint("c1", 3, 4),
		},
		Fleet:           oneVehicleFleet(100),
		NodeTimeWindows: []*solver.TimeWindow{nil, {Start: 100, End: 200}},
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	require.True(t, inst.Matrix.HasDurations())
	assert.Equal(t, int64(5), inst.Matrix.Durations[0][1])
	assert.Equal(t, solver.TimeWindow{Start: 6000, End: 12000}, inst.TimeWindows[1])
}

func TestNormalize_AlignsArraysToMatrixSize(t *testing.T) {
	// Arrange: demands undershoot the node count and service times overshoot it.
	req := &solver.Request{
		Engine: "mip",
		Matrix: &matrix.Matrix{Distances: [][]float64{
			{0, 5, 7},
			{5, 0, 3},
			{7, 3, 0},
		}},
		Fleet:            oneVehicleFleet(100),
		Demands:          []int64{0, 4},
		NodeServiceTimes: []int64{0, 1500, 1500, 1500, 1500},
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 4, 0}, inst.Demands)
	assert.Equal(t, []int64{0, 1500, 1500}, inst.ServiceTimes)
	require.Len(t, inst.TimeWindows, 3)
	for _, tw := range inst.TimeWindows {
		assert.Equal(t, solver.TimeWindow{Start: 0, End: solver.HorizonSeconds}, tw)
	}
}

func TestNormalize_ConvertsTimeUnitsPerValue(t *testing.T) {
	// Arrange: hour-, minute- and second-grained figures mixed in one request.
	req := &solver.Request{
		Engine: "mip",
		Matrix: &matrix.Matrix{Distances: [][]float64{
			{0, 5, 7},
			{5, 0, 3},
			{7, 3, 0},
		}},
		Fleet: solver.Fleet{Vehicles: []solver.Vehicle{{
			ID:         "veh-1",
			Capacity:   []int64{100},
			TimeWindow: &solver.TimeWindow{Start: 8, End: 17},
		}}},
		NodeTimeWindows: []*solver.TimeWindow{
			nil,
			{Start: 0, End: 8},
			{Start: 10, End: 600},
		},
		NodeServiceTimes: []int64{0, 2, 90},
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, solver.TimeWindow{Start: 0, End: 28800}, inst.TimeWindows[1])
	assert.Equal(t, solver.TimeWindow{Start: 600, End: 36000}, inst.TimeWindows[2])
	assert.Equal(t, []int64{0, 7200, 5400}, inst.ServiceTimes)
	require.NotNil(t, inst.Vehicles[0].TimeWindow)
	assert.Equal(t, solver.TimeWindow{Start: 28800, End: 61200}, *inst.Vehicles[0].TimeWindow)
}

func TestNormalize_SwapsReversedWindows(t *testing.T) {
	// Arrange
	req := &solver.Request{
		Engine: "mip",
		Matrix: &matrix.Matrix{Distances: [][]float64{
			{0, 5},
			{5, 0},
		}},
		Fleet:           oneVehicleFleet(100),
		NodeTimeWindows: []*solver.TimeWindow{nil, {Start: 600, End: 10}},
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, solver.TimeWindow{Start: 600, End: 36000}, inst.TimeWindows[1])
}

func TestNormalize_RejectsExcessDemand(t *testing.T) {
	// Arrange
	req := &solver.Request{
		Engine: "mip",
		Matrix: &matrix.Matrix{Distances: [][]float64{
			{0, 5, 7},
			{5, 0, 3},
			{7, 3, 0},
		}},
		Fleet: solver.Fleet{Vehicles: []solver.Vehicle{
			{ID: "veh-1", Capacity: []int64{5}},
			{ID: "veh-2", Capacity: []int64{5}},
		}},
		Demands: []int64{0, 9, 9},
	}

	// Act
	_, err := solve.Normalize(req)

	// Assert
	var infeasible *shared.InfeasibleError
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t,
		"total demand 18 exceeds total vehicle capacity 10 (vehicles=2, capacities=[5 5]); increase capacity or add vehicles",
		infeasible.Message)
}

func TestNormalize_TreatsUncapacitatedVehicleAsUnlimited(t *testing.T) {
	// Arrange: a vehicle without a capacity vector carries anything, so
	// positive demands must not trip the fleet-capacity check.
	req := &solver.Request{
		Engine: "heuristic",
		Matrix: &matrix.Matrix{Distances: [][]float64{
			{0, 5, 7},
			{5, 0, 3},
			{7, 3, 0},
		}},
		Fleet:   solver.Fleet{Vehicles: []solver.Vehicle{{ID: "veh-1"}}},
		Demands: []int64{0, 4, 4},
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(8), inst.TotalDemand())
	assert.True(t, inst.HasUncapacitatedVehicle())
}

func TestNormalize_RejectsWindowShorterThanTravelFromDepot(t *testing.T) {
	// Arrange: node 2 closes at second 2000 but sits 3000 seconds from the depot.
	req := &solver.Request{
		Engine: "mip",
		Matrix: &matrix.Matrix{
			Distances: [][]float64{
				{0, 5, 7},
				{5, 0, 3},
				{7, 3, 0},
			},
			Durations: [][]int64{
				{0, 100, 3000},
				{100, 0, 200},
				{3000, 200, 0},
			},
		},
		Fleet:           oneVehicleFleet(100),
		NodeTimeWindows: []*solver.TimeWindow{nil, nil, {Start: 1500, End: 2000}},
	}

	// Act
	_, err := solve.Normalize(req)

	// Assert
	var infeasible *shared.InfeasibleError
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t, "node 2 latest time 2000 is earlier than shortest travel 3000 from depot", infeasible.Message)
}

func TestNormalize_RejectsDepotOutOfRange(t *testing.T) {
	// Arrange
	req := &solver.Request{
		Engine: "mip",
		Matrix: &matrix.Matrix{Distances: [][]float64{
			{0, 5},
			{5, 0},
		}},
		Fleet:      oneVehicleFleet(100),
		DepotIndex: 5,
	}

	// Act
	_, err := solve.Normalize(req)

	// Assert
	var input *shared.InputError
	require.ErrorAs(t, err, &input)
	assert.Equal(t, "depot_index", input.Field)
}

func TestNormalize_RequiresMatrixOrWaypoints(t *testing.T) {
	// Arrange
	req := &solver.Request{Engine: "mip", Fleet: oneVehicleFleet(100)}

	// Act
	_, err := solve.Normalize(req)

	// Assert
	var input *shared.InputError
	require.ErrorAs(t, err, &input)
	assert.Equal(t, "matrix", input.Field)
}

func TestNormalize_RequiresAtLeastOneVehicle(t *testing.T) {
	// Arrange
	req := &solver.Request{
		Engine: "mip",
		Matrix: &matrix.Matrix{Distances: [][]float64{{0}}},
	}

	// Act
	_, err := solve.Normalize(req)

	// Assert
	var input *shared.InputError
	require.ErrorAs(t, err, &input)
	assert.Equal(t, "fleet", input.Field)
}

func TestNormalize_RoundsMatrixCopyAndLeavesRequestUntouched(t *testing.T) {
	// Arrange
	req := &solver.Request{
		Engine: "mip",
		Matrix: &matrix.Matrix{Distances: [][]float64{
			{0, 5.4},
			{5.6, 0},
		}},
		Fleet: oneVehicleFleet(100),
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5.0, inst.Matrix.Distances[0][1])
	assert.Equal(t, 6.0, inst.Matrix.Distances[1][0])
	// The request still holds the caller's raw cells.
	assert.Equal(t, 5.4, req.Matrix.Distances[0][1])
	assert.Equal(t, 5.6, req.Matrix.Distances[1][0])
}

func TestNormalize_FillsArraysFromWaypoints(t *testing.T) {
	// Arrange: demand and service time ride on the waypoints, not the request.
	customer := planarWaypoint("c1", 3, 4)
	customer.Demand = []int64{7}
	customer.ServiceTime = 90
	req := &solver.Request{
		Engine:    "mip",
		Waypoints: []solver.Waypoint{planarWaypoint("depot", 0, 0), customer},
		Fleet:     oneVehicleFleet(100),
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 7}, inst.Demands)
	assert.Equal(t, []int64{0, 5400}, inst.ServiceTimes)
}

func TestNormalize_ErrorsOnPartiallyPlanarWaypoints(t *testing.T) {
	// Arrange: one stop has solver-space coordinates, the other only a location.
	geo := solver.Waypoint{ID: "c1", Location: &shared.Coordinate{Lat: 52.5, Lon: 13.4}}
	req := &solver.Request{
		Engine:    "mip",
		Waypoints: []solver.Waypoint{planarWaypoint("depot", 0, 0), geo},
		Fleet:     oneVehicleFleet(100),
	}

	// Act
	_, err := solve.Normalize(req)

	// Assert
	var input *shared.InputError
	require.ErrorAs(t, err, &input)
	assert.Equal(t, "waypoints", input.Field)
	assert.Contains(t, input.Message, "missing x/y")
}

func TestNormalize_LeavesGeographicRequestsWithoutMatrix(t *testing.T) {
	// Arrange: purely geographic waypoints stay matrix-free so coordinate-mode
	// engines can acquire travel costs themselves.
	req := &solver.Request{
		Engine: "tour",
		Waypoints: []solver.Waypoint{
			{ID: "a", Location: &shared.Coordinate{Lat: 52.5, Lon: 13.4}},
			{ID: "b", Location: &shared.Coordinate{Lat: 48.1, Lon: 11.6}},
		},
		Fleet: solver.Fleet{Vehicles: []solver.Vehicle{{}}},
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, inst.Matrix)
	assert.Equal(t, 2, inst.N)
	require.Len(t, inst.Waypoints, 2)
	assert.Equal(t, "vehicle-1", inst.Vehicles[0].ID)
}

func TestNormalize_DepotFlagOverridesIndex(t *testing.T) {
	// Arrange: the flagged waypoint wins over the implicit index 0.
	req := &solver.Request{
		Engine: "mip",
		Waypoints: []solver.Waypoint{
			planarWaypoint("c1", 3, 4),
			{ID: "base", X: f64(0), Y: f64(0), Depot: true},
		},
		Fleet: oneVehicleFleet(100),
	}

	// Act
	inst, err := solve.Normalize(req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, inst.DepotIndex)
}

func TestNormalize_RejectsTwoFlaggedDepots(t *testing.T) {
	// Arrange
	req := &solver.Request{
		Engine: "mip",
		Waypoints: []solver.Waypoint{
			{ID: "base-a", X: f64(0), Y: f64(0), Depot: true},
			{ID: "base-b", X: f64(1), Y: f64(1), Depot: true},
		},
		Fleet: oneVehicleFleet(100),
	}

	// Act
	_, err := solve.Normalize(req)

	// Assert
	var inputErr *shared.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, err.Error(), "both marked depot")
}
