// Package engine implements the solver backends behind the solver.Engine port:
// a local-search metaheuristic, an exact mixed-integer formulation solved by
// branch-and-bound over LP relaxations, and a single-vehicle coordinate tour.
// All engines consume the canonical normalized instance and report the same
// summary message shape.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// Registry names.
const (
	NameHeuristic = "heuristic"
	NameMIP       = "mip"
	NameTour      = "tour"
)

// costScale keeps weighted arc costs integral.
const costScale = 1000

// formatMessage renders the uniform solve summary. Distance is meters,
// duration seconds; status carries the engine-internal termination state.
func formatMessage(status string, used, fleetSize, served, customers, dropped int, meters float64, seconds int64) string {
	return fmt.Sprintf(
		"status=%s; vehicles_used=%d/%d; served=%d/%d; dropped=%d; total_distance≈%.3f; total_duration≈%d",
		status, used, fleetSize, served, customers, dropped, meters, seconds,
	)
}

// routeFromPath builds a Route over a closed node path (depot at both ends),
// summing distance and duration from the given matrix. Emissions are filled
// when the vehicle carries a per-km factor.
func routeFromPath(inst *solver.Instance, m *matrix.Matrix, vehicleIdx int, path []int, meta map[string]interface{}) solver.Route {
	veh := &inst.Vehicles[vehicleIdx]

	var meters float64
	var seconds int64
	var load int64
	for i := 0; i+1 < len(path); i++ {
		meters += m.DistanceAt(path[i], path[i+1])
		if m.HasDurations() {
			seconds += m.DurationAt(path[i], path[i+1])
		}
	}
	for _, node := range path {
		if node == inst.DepotIndex {
			continue
		}
		if node < len(inst.Demands) && inst.Demands[node] > 0 {
			load += inst.Demands[node]
		}
	}

	ids := make([]string, len(path))
	for i, node := range path {
		ids[i] = inst.WaypointID(node)
	}

	route := solver.Route{
		VehicleID:     veh.ID,
		WaypointIDs:   ids,
		NodeIndexes:   append([]int(nil), path...),
		TotalDistance: meters,
		TotalLoad:     load,
		Metadata:      meta,
	}
	if m.HasDurations() {
		duration := seconds
		route.TotalDuration = &duration
	}
	if veh.EmissionsPerKm != nil {
		kg := (meters / 1000.0) * *veh.EmissionsPerKm
		route.EmissionsKg = &kg
	}
	return route
}

// assemble fills the Routes totals, dropped list and summary message from the
// extracted per-vehicle routes.
func assemble(inst *solver.Instance, routes []solver.Route, dropped []int, status string) *solver.Routes {
	served := make(map[int]bool)
	var meters float64
	var seconds int64
	var emissions float64
	hasDuration := false
	hasEmissions := false

	for i := range routes {
		meters += routes[i].TotalDistance
		if routes[i].TotalDuration != nil {
			seconds += *routes[i].TotalDuration
			hasDuration = true
		}
		if routes[i].EmissionsKg != nil {
			emissions += *routes[i].EmissionsKg
			hasEmissions = true
		}
		for _, node := range routes[i].NodeIndexes {
			if node != inst.DepotIndex {
				served[node] = true
			}
		}
	}

	sort.Ints(dropped)
	result := &solver.Routes{
		Status:        solver.StatusSuccess,
		Routes:        routes,
		Dropped:       dropped,
		TotalDistance: meters,
	}
	if hasDuration {
		total := seconds
		result.TotalDuration = &total
	}
	if hasEmissions {
		total := emissions
		result.TotalEmissions = &total
	}
	result.Message = formatMessage(
		status, len(routes), len(inst.Vehicles),
		len(served), inst.N-1, len(dropped),
		meters, seconds,
	)
	return result
}

// searchDeadline resolves the wall-clock budget: the engine time limit capped
// by any earlier context deadline.
func searchDeadline(ctxDeadline time.Time, hasCtxDeadline bool, limitSecs int64) time.Time {
	deadline := time.Now().Add(time.Duration(limitSecs) * time.Second)
	if hasCtxDeadline && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}
