package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// tourSpeedKmh derives durations from haversine distances when the caller
// supplied coordinates instead of a matrix.
const tourSpeedKmh = 50.0

// TourEngine produces one closed loop over geographic waypoints for a single
// vehicle: nearest-neighbor construction refined by 2-opt. It is the only
// backend that accepts coordinates without a matrix.
type TourEngine struct{}

// NewTourEngine creates the single-vehicle tour backend.
func NewTourEngine() *TourEngine {
	return &TourEngine{}
}

// Name implements solver.Engine.
func (e *TourEngine) Name() string {
	return NameTour
}

// Capabilities implements solver.Engine.
func (e *TourEngine) Capabilities() solver.Capabilities {
	return capabilityTable[NameTour]
}

// Solve implements solver.Engine.
func (e *TourEngine) Solve(ctx context.Context, inst *solver.Instance) (*solver.Routes, error) {
	if len(inst.Vehicles) != 1 {
		return nil, shared.NewInputError("fleet", fmt.Sprintf("the tour engine routes exactly one vehicle, got %d", len(inst.Vehicles)))
	}

	work := inst.Matrix
	n := inst.N
	if work == nil || work.IsEmpty() {
		if len(inst.Waypoints) < 2 {
			return nil, shared.NewInputError("waypoints", "at least two waypoints or a matrix are required")
		}
		built, err := geoMatrix(inst.Waypoints)
		if err != nil {
			return nil, err
		}
		work = built
		n = len(inst.Waypoints)
	}
	if n < 2 {
		return nil, shared.NewInputError("waypoints", "a tour needs at least two stops")
	}
	if inst.DepotIndex < 0 || inst.DepotIndex >= n {
		return nil, shared.NewInputError("depot_index", fmt.Sprintf("depot index %d out of range for %d stops", inst.DepotIndex, n))
	}
	if err := rejectDuplicateDepot(inst, n); err != nil {
		return nil, err
	}

	ctxDeadline, hasDeadline := ctx.Deadline()
	deadline := searchDeadline(ctxDeadline, hasDeadline, inst.Options.EffectiveTimeLimit())

	order, algorithm := twoOptTour(work, inst.DepotIndex, n, deadline)
	// The loop closes back at the depot.
	path := make([]int, 0, len(order)+1)
	path = append(path, order...)
	path = append(path, inst.DepotIndex)

	route := routeFromPath(inst, work, 0, path, map[string]interface{}{
		"algorithm": algorithm,
	})
	return assemble(inst, []solver.Route{route}, nil, algorithm), nil
}

// geoMatrix builds a working matrix from waypoint coordinates: haversine
// meters, with durations at a fixed cruising speed.
func geoMatrix(waypoints []solver.Waypoint) (*matrix.Matrix, error) {
	coords := make([]shared.Coordinate, len(waypoints))
	for i := range waypoints {
		if waypoints[i].Location == nil {
			return nil, shared.NewInputError("waypoints", "waypoints require lon/lat")
		}
		coords[i] = *waypoints[i].Location
	}
	m := matrix.NewSquare(len(coords))
	for i := range coords {
		for j := range coords {
			if i == j {
				continue
			}
			meters := math.Round(coords[i].HaversineMeters(coords[j]))
			m.Distances[i][j] = meters
			m.Durations[i][j] = int64(math.Round(meters * 3.6 / tourSpeedKmh))
		}
	}
	return m, nil
}

// rejectDuplicateDepot refuses coordinate inputs that list the start twice;
// the engine closes the loop itself, so a duplicated depot would be visited
// as a stop of its own.
func rejectDuplicateDepot(inst *solver.Instance, n int) error {
	if len(inst.Waypoints) != n {
		return nil
	}
	depot := inst.Waypoints[inst.DepotIndex]
	if depot.Location == nil {
		return nil
	}
	for i := range inst.Waypoints {
		if i == inst.DepotIndex || inst.Waypoints[i].Location == nil {
			continue
		}
		if inst.Waypoints[i].Location.Lat == depot.Location.Lat &&
			inst.Waypoints[i].Location.Lon == depot.Location.Lon {
			return shared.NewInputError("waypoints", fmt.Sprintf(
				"waypoint %d duplicates the depot coordinates; the loop is closed automatically", i))
		}
	}
	return nil
}

// nearestNeighborOrder grows the tour by always visiting the closest
// unvisited stop, starting from the depot.
func nearestNeighborOrder(m *matrix.Matrix, depot, n int) []int {
	order := make([]int, 0, n)
	order = append(order, depot)
	visited := make([]bool, n)
	visited[depot] = true
	cur := depot
	for len(order) < n {
		best, bestDist := -1, math.Inf(1)
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if d := m.DistanceAt(cur, j); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best < 0 {
			break
		}
		order = append(order, best)
		visited[best] = true
		cur = best
	}
	return order
}

// twoOptTour builds a nearest-neighbor loop and reverses segments until no
// reversal shortens it or the deadline passes.
func twoOptTour(m *matrix.Matrix, depot, n int, deadline time.Time) ([]int, string) {
	order := nearestNeighborOrder(m, depot, n)
	algorithm := "nearest_neighbor"
	improved := true
	for improved && time.Now().Before(deadline) {
		improved = false
		for i := 1; i < len(order)-1; i++ {
			for j := i + 1; j < len(order); j++ {
				next := depot
				if j+1 < len(order) {
					next = order[j+1]
				}
				current := m.DistanceAt(order[i-1], order[i]) + m.DistanceAt(order[j], next)
				proposed := m.DistanceAt(order[i-1], order[j]) + m.DistanceAt(order[i], next)
				if proposed+1e-9 < current {
					reverse(order[i : j+1])
					improved = true
					algorithm = "two_opt"
				}
			}
		}
	}
	return order, algorithm
}
