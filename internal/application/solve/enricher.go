package solve

import (
	"strconv"

	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// Enricher recomputes route totals from the canonical matrix so responses
// agree with the acquisition layer no matter what units an engine tracked
// internally. A positive CostPerKm also writes a cost figure into each
// route's metadata.
type Enricher struct {
	CostPerKm float64
}

// NewEnricher creates an enricher. costPerKm <= 0 disables cost metadata.
func NewEnricher(costPerKm float64) *Enricher {
	return &Enricher{CostPerKm: costPerKm}
}

// Enrich rewrites per-route and aggregate totals in place. Routes that
// cannot be resolved to matrix node indexes are left untouched.
func (e *Enricher) Enrich(routes *solver.Routes, inst *solver.Instance) {
	if routes == nil || inst == nil || inst.Matrix == nil || inst.Matrix.IsEmpty() {
		return
	}
	m := inst.Matrix
	hasDurations := m.HasDurations()

	for i := range routes.Routes {
		route := &routes.Routes[i]
		nodes, ok := routeNodes(route, m.Size())
		if !ok {
			continue
		}

		var meters float64
		var seconds int64
		for k := 0; k+1 < len(nodes); k++ {
			meters += m.DistanceAt(nodes[k], nodes[k+1])
			if hasDurations {
				seconds += m.DurationAt(nodes[k], nodes[k+1])
			}
		}
		route.TotalDistance = meters
		if hasDurations {
			total := seconds
			route.TotalDuration = &total
		}

		km := meters / 1000.0
		if veh := matchVehicle(inst.Vehicles, route.VehicleID); veh != nil && veh.EmissionsPerKm != nil {
			kg := km * *veh.EmissionsPerKm
			route.EmissionsKg = &kg
		}
		if e.CostPerKm > 0 {
			if route.Metadata == nil {
				route.Metadata = map[string]interface{}{}
			}
			route.Metadata["cost"] = km * e.CostPerKm
		}
	}

	refreshTotals(routes)
}

// refreshTotals re-derives the aggregate figures from the per-route ones.
func refreshTotals(routes *solver.Routes) {
	var distance float64
	var duration int64
	var emissions float64
	hasDuration := false
	hasEmissions := false
	for i := range routes.Routes {
		route := &routes.Routes[i]
		distance += route.TotalDistance
		if route.TotalDuration != nil {
			duration += *route.TotalDuration
			hasDuration = true
		}
		if route.EmissionsKg != nil {
			emissions += *route.EmissionsKg
			hasEmissions = true
		}
	}
	routes.TotalDistance = distance
	if hasDuration {
		routes.TotalDuration = &duration
	}
	if hasEmissions {
		routes.TotalEmissions = &emissions
	}
}

// routeNodes resolves a route to matrix node indexes, preferring the
// engine-supplied indexes and falling back to numeric waypoint ids.
func routeNodes(route *solver.Route, n int) ([]int, bool) {
	if len(route.NodeIndexes) >= 2 {
		for _, node := range route.NodeIndexes {
			if node < 0 || node >= n {
				return nil, false
			}
		}
		return route.NodeIndexes, true
	}
	if len(route.WaypointIDs) < 2 {
		return nil, false
	}
	nodes := make([]int, len(route.WaypointIDs))
	for i, id := range route.WaypointIDs {
		node, err := strconv.Atoi(id)
		if err != nil || node < 0 || node >= n {
			return nil, false
		}
		nodes[i] = node
	}
	return nodes, true
}

func matchVehicle(vehicles []solver.Vehicle, id string) *solver.Vehicle {
	for i := range vehicles {
		if vehicles[i].ID == id {
			return &vehicles[i]
		}
	}
	return nil
}
