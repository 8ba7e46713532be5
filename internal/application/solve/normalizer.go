// Package solve hosts the dispatch pipeline: one request comes in, the
// normalizer reconciles its units and shapes, the named engine runs under a
// wall-clock budget, the enricher recomputes totals from the canonical
// matrix, and the run is journaled.
package solve

import (
	"fmt"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// twSecondsExtent is the converted window width at which an instance is
// assumed to think in seconds, making planar distances read as minutes when
// the euclidean duration scale has to be guessed.
const twSecondsExtent int64 = 20000

// Normalize reconciles a wire request into the canonical engine instance:
// one matrix (given, or auto-built from planar waypoints), every array
// aligned to the node count, every time figure in seconds, and the hard
// preconditions checked. The request is never mutated; the returned instance
// owns copies of everything it rewrites.
func Normalize(req *solver.Request) (*solver.Instance, error) {
	if req.Fleet.Size() == 0 {
		return nil, shared.NewInputError("fleet", "at least one vehicle is required")
	}

	var work *matrix.Matrix
	var n int
	switch {
	case req.Matrix != nil && !req.Matrix.IsEmpty():
		work = req.Matrix.Clone()
		work.ClampUnreachable()
		if err := work.Validate(); err != nil {
			return nil, err
		}
		// Engines expect integer meters; user tables are re-rounded here
		// because not every client rounds at its edge.
		work.RoundMeters()
		n = work.Size()
	case len(req.Waypoints) > 0:
		n = len(req.Waypoints)
	default:
		return nil, shared.NewInputError("matrix", "request carries neither a matrix nor waypoints")
	}

	depot := req.DepotIndex
	if flagged, err := flaggedDepot(req.Waypoints); err != nil {
		return nil, err
	} else if flagged >= 0 {
		depot = flagged
	}
	if depot < 0 || depot >= n {
		return nil, shared.NewInputError("depot_index", fmt.Sprintf("depot index %d out of range [0, %d)", depot, n))
	}

	demands := alignedInt64s(req.Demands, waypointDemands(req.Waypoints), n)
	services := alignedInt64s(req.NodeServiceTimes, waypointServices(req.Waypoints), n)
	windows := alignedWindows(req.NodeTimeWindows, req.Waypoints, n)

	for i := range services {
		services[i] = secondsFigure(services[i])
	}
	for i := range windows {
		windows[i] = windowSeconds(windows[i])
	}

	vehicles := make([]solver.Vehicle, len(req.Fleet.Vehicles))
	copy(vehicles, req.Fleet.Vehicles)
	for i := range vehicles {
		if vehicles[i].TimeWindow != nil {
			tw := windowSeconds(*vehicles[i].TimeWindow)
			vehicles[i].TimeWindow = &tw
		}
		if vehicles[i].ID == "" {
			vehicles[i].ID = fmt.Sprintf("vehicle-%d", i+1)
		}
	}

	if work == nil {
		if planar := planarCount(req.Waypoints); planar > 0 {
			if planar < len(req.Waypoints) {
				return nil, shared.NewInputError("waypoints", fmt.Sprintf(
					"%d of %d waypoints are missing x/y for the euclidean matrix",
					len(req.Waypoints)-planar, len(req.Waypoints)))
			}
			scale := req.Options.DurationScale
			if scale <= 0 {
				scale = guessDurationScale(windows)
			}
			work = solver.EuclideanMatrix(req.Waypoints, scale)
		}
	}

	inst := &solver.Instance{
		N:            n,
		Matrix:       work,
		DepotIndex:   depot,
		Demands:      demands,
		TimeWindows:  windows,
		ServiceTimes: services,
		Vehicles:     vehicles,
		Pairs:        req.PickupDeliveryPairs,
		Weights:      req.EffectiveWeights(),
		Options:      req.Options,
		Waypoints:    req.Waypoints,
	}

	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if err := checkFeasibility(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// checkFeasibility rejects instances that cannot possibly admit a solution:
// demand beyond the fleet and nodes whose window closes before any vehicle
// could reach them.
func checkFeasibility(inst *solver.Instance) error {
	totalDemand := inst.TotalDemand()
	totalCapacity := inst.TotalCapacity()
	if totalDemand > totalCapacity && !inst.HasUncapacitatedVehicle() {
		capacities := make([]int64, len(inst.Vehicles))
		for i := range inst.Vehicles {
			capacities[i] = inst.Vehicles[i].PrimaryCapacity()
		}
		return shared.NewInfeasibleError(fmt.Sprintf(
			"total demand %d exceeds total vehicle capacity %d (vehicles=%d, capacities=%v); increase capacity or add vehicles",
			totalDemand, totalCapacity, len(inst.Vehicles), capacities))
	}

	if inst.Matrix != nil && inst.Matrix.HasDurations() {
		for i := 0; i < inst.N; i++ {
			if i == inst.DepotIndex {
				continue
			}
			travel := inst.Matrix.DurationAt(inst.DepotIndex, i)
			if end := inst.TimeWindows[i].End; end < travel {
				return shared.NewInfeasibleError(fmt.Sprintf(
					"node %d latest time %d is earlier than shortest travel %d from depot",
					i, end, travel))
			}
		}
	}
	return nil
}

// flaggedDepot returns the index of the waypoint marked as depot, or -1 when
// none is marked. Marking more than one waypoint is an input error.
func flaggedDepot(waypoints []solver.Waypoint) (int, error) {
	found := -1
	for i := range waypoints {
		if !waypoints[i].Depot {
			continue
		}
		if found >= 0 {
			return 0, shared.NewInputError("waypoints", fmt.Sprintf(
				"waypoints %d and %d are both marked depot", found, i))
		}
		found = i
	}
	return found, nil
}

// secondsFigure converts one raw time figure to seconds. Values up to 48
// read as hours, up to 1440 as minutes; anything larger is already seconds.
func secondsFigure(v int64) int64 {
	switch {
	case v <= 48:
		return v * 3600
	case v <= 1440:
		return v * 60
	default:
		return v
	}
}

// windowSeconds converts a window to seconds, choosing the factor from the
// larger bound so both ends stay in one unit. Reversed windows are swapped
// first.
func windowSeconds(tw solver.TimeWindow) solver.TimeWindow {
	if tw.End < tw.Start {
		tw.Start, tw.End = tw.End, tw.Start
	}
	switch {
	case tw.End <= 48:
		tw.Start, tw.End = tw.Start*3600, tw.End*3600
	case tw.End <= 1440:
		tw.Start, tw.End = tw.Start*60, tw.End*60
	}
	return tw
}

// guessDurationScale infers the euclidean duration scale from the converted
// windows: any bounded window at least twSecondsExtent wide means the
// instance thinks in seconds, so planar distances read as minutes (scale 60).
// Otherwise distances pass through unscaled.
func guessDurationScale(windows []solver.TimeWindow) float64 {
	for _, tw := range windows {
		if tw.End >= solver.HorizonSeconds {
			continue
		}
		if tw.Width() >= twSecondsExtent {
			return 60
		}
	}
	return 1
}

// alignedInt64s sizes values to n, falling back to the waypoint-carried
// figures when the request array is absent. Short arrays pad with zeros,
// long ones truncate.
func alignedInt64s(values []int64, fallback []int64, n int) []int64 {
	src := values
	if src == nil {
		src = fallback
	}
	out := make([]int64, n)
	copy(out, src)
	return out
}

// alignedWindows sizes windows to n. Missing and nil entries open to the
// full horizon; waypoint windows fill in when the request carries no array.
func alignedWindows(windows []*solver.TimeWindow, waypoints []solver.Waypoint, n int) []solver.TimeWindow {
	src := windows
	if src == nil && len(waypoints) > 0 {
		src = make([]*solver.TimeWindow, len(waypoints))
		for i := range waypoints {
			src[i] = waypoints[i].TimeWindow
		}
	}
	out := make([]solver.TimeWindow, n)
	for i := range out {
		out[i] = solver.TimeWindow{Start: 0, End: solver.HorizonSeconds}
		if i < len(src) && src[i] != nil {
			out[i] = *src[i]
		}
	}
	return out
}

func waypointDemands(waypoints []solver.Waypoint) []int64 {
	if len(waypoints) == 0 {
		return nil
	}
	out := make([]int64, len(waypoints))
	for i := range waypoints {
		out[i] = waypoints[i].PrimaryDemand()
	}
	return out
}

func waypointServices(waypoints []solver.Waypoint) []int64 {
	if len(waypoints) == 0 {
		return nil
	}
	out := make([]int64, len(waypoints))
	for i := range waypoints {
		out[i] = waypoints[i].ServiceTime
	}
	return out
}

func planarCount(waypoints []solver.Waypoint) int {
	count := 0
	for i := range waypoints {
		if waypoints[i].HasPlanar() {
			count++
		}
	}
	return count
}
