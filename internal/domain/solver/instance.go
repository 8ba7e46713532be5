package solver

import (
	"fmt"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// Instance is the canonical normalized problem handed to engines. Every slice
// is aligned to N nodes, distances are integer meters, durations and windows
// integer seconds. Engines never re-derive units.
type Instance struct {
	N          int
	Matrix     *matrix.Matrix
	DepotIndex int

	Demands      []int64
	TimeWindows  []TimeWindow
	ServiceTimes []int64

	Vehicles []Vehicle
	Pairs    []PickupDeliveryPair
	Weights  Weights
	Options  Options

	// Waypoints is populated when the request arrived in coordinate form;
	// engines that route on raw coordinates read it, matrix engines ignore it.
	Waypoints []Waypoint
}

// Validate checks the cross-slice alignment invariants.
func (in *Instance) Validate() error {
	if in.N <= 0 {
		return shared.NewInputError("instance", "instance has no nodes")
	}
	if in.Matrix != nil && in.Matrix.Size() != in.N {
		return shared.NewInputError("matrix", fmt.Sprintf("matrix is %dx%d but the instance has %d nodes", in.Matrix.Size(), in.Matrix.Size(), in.N))
	}
	if len(in.Demands) != in.N {
		return shared.NewInputError("demands", fmt.Sprintf("expected %d demand entries, got %d", in.N, len(in.Demands)))
	}
	if len(in.TimeWindows) != in.N {
		return shared.NewInputError("node_time_windows", fmt.Sprintf("expected %d time windows, got %d", in.N, len(in.TimeWindows)))
	}
	if len(in.ServiceTimes) != in.N {
		return shared.NewInputError("node_service_times", fmt.Sprintf("expected %d service times, got %d", in.N, len(in.ServiceTimes)))
	}
	if in.DepotIndex < 0 || in.DepotIndex >= in.N {
		return shared.NewInputError("depot_index", fmt.Sprintf("depot index %d out of range [0, %d)", in.DepotIndex, in.N))
	}
	if len(in.Vehicles) == 0 {
		return shared.NewInputError("fleet", "at least one vehicle is required")
	}
	for _, p := range in.Pairs {
		if p.Pickup < 0 || p.Pickup >= in.N || p.Delivery < 0 || p.Delivery >= in.N {
			return shared.NewInputError("pickup_delivery_pairs", fmt.Sprintf("pair (%d, %d) references a node outside [0, %d)", p.Pickup, p.Delivery, in.N))
		}
		if p.Pickup == p.Delivery {
			return shared.NewInputError("pickup_delivery_pairs", fmt.Sprintf("pair (%d, %d) has identical pickup and delivery", p.Pickup, p.Delivery))
		}
		if p.Pickup == in.DepotIndex || p.Delivery == in.DepotIndex {
			return shared.NewInputError("pickup_delivery_pairs", "pairs cannot reference the depot")
		}
	}
	return nil
}

// TotalDemand sums customer demand, excluding the depot.
func (in *Instance) TotalDemand() int64 {
	var total int64
	for i, d := range in.Demands {
		if i == in.DepotIndex {
			continue
		}
		total += d
	}
	return total
}

// TotalCapacity sums the primary capacity across vehicles.
func (in *Instance) TotalCapacity() int64 {
	var total int64
	for i := range in.Vehicles {
		total += in.Vehicles[i].PrimaryCapacity()
	}
	return total
}

// HasUncapacitatedVehicle reports whether any vehicle carries no capacity
// constraint. Engines treat a missing or zero capacity as unlimited, so a
// demand-versus-capacity comparison is meaningless for such fleets.
func (in *Instance) HasUncapacitatedVehicle() bool {
	for i := range in.Vehicles {
		if in.Vehicles[i].PrimaryCapacity() <= 0 {
			return true
		}
	}
	return false
}

// Customers returns the node indexes excluding the depot.
func (in *Instance) Customers() []int {
	out := make([]int, 0, in.N-1)
	for i := 0; i < in.N; i++ {
		if i != in.DepotIndex {
			out = append(out, i)
		}
	}
	return out
}

// HasTimeWindows reports whether any node window is tighter than the horizon.
func (in *Instance) HasTimeWindows() bool {
	for _, tw := range in.TimeWindows {
		if tw.Start > 0 || tw.End < HorizonSeconds {
			return true
		}
	}
	return false
}

// WaypointID returns the external id for a node index, falling back to the
// index itself when the instance arrived in matrix form.
func (in *Instance) WaypointID(node int) string {
	if node >= 0 && node < len(in.Waypoints) && in.Waypoints[node].ID != "" {
		return in.Waypoints[node].ID
	}
	return fmt.Sprintf("%d", node)
}
