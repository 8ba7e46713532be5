package solver

import (
	"encoding/json"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// Vehicle describes a single vehicle. Capacity is a vector so multi-dimensional
// loads (weight, volume) share one model; a scalar on the wire is promoted to a
// one-element vector.
type Vehicle struct {
	ID             string
	Capacity       []int64
	Start          *int // node index; nil means the instance depot
	End            *int
	TimeWindow     *TimeWindow
	MaxDistance    int64 // meters, 0 = unlimited
	MaxDuration    int64 // seconds, 0 = unlimited
	SpeedKmh       float64
	EmissionsPerKm *float64 // kg CO2 per km
	FixedCost      *float64
}

// PrimaryCapacity returns the first capacity dimension, or zero.
func (v *Vehicle) PrimaryCapacity() int64 {
	if len(v.Capacity) == 0 {
		return 0
	}
	return v.Capacity[0]
}

type vehicleJSON struct {
	ID             json.RawMessage `json:"id"`
	Capacity       json.RawMessage `json:"capacity,omitempty"`
	Start          *int            `json:"start,omitempty"`
	End            *int            `json:"end,omitempty"`
	TimeWindow     *TimeWindow     `json:"time_window,omitempty"`
	MaxDistance    *float64        `json:"max_distance,omitempty"`
	MaxDuration    *float64        `json:"max_duration,omitempty"`
	Speed          *float64        `json:"speed,omitempty"`
	EmissionsPerKm *float64        `json:"emissions_per_km,omitempty"`
	FixedCost      *float64        `json:"fixed_cost,omitempty"`
}

func (v *Vehicle) UnmarshalJSON(data []byte) error {
	var raw vehicleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode vehicle: %w", err)
	}
	v.ID = decodeFlexibleID(raw.ID)
	if len(raw.Capacity) > 0 {
		capacity, err := decodeFlexibleInts(raw.Capacity)
		if err != nil {
			return shared.NewInputError("capacity", "must be an integer or an integer array")
		}
		v.Capacity = capacity
	}
	v.Start = raw.Start
	v.End = raw.End
	v.TimeWindow = raw.TimeWindow
	if raw.MaxDistance != nil {
		v.MaxDistance = int64(*raw.MaxDistance)
	}
	if raw.MaxDuration != nil {
		v.MaxDuration = int64(*raw.MaxDuration)
	}
	if raw.Speed != nil {
		v.SpeedKmh = *raw.Speed
	}
	v.EmissionsPerKm = raw.EmissionsPerKm
	v.FixedCost = raw.FixedCost
	return nil
}

func (v Vehicle) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"id":       v.ID,
		"capacity": v.Capacity,
	}
	if v.Start != nil {
		out["start"] = *v.Start
	}
	if v.End != nil {
		out["end"] = *v.End
	}
	if v.TimeWindow != nil {
		out["time_window"] = *v.TimeWindow
	}
	if v.MaxDistance > 0 {
		out["max_distance"] = v.MaxDistance
	}
	if v.MaxDuration > 0 {
		out["max_duration"] = v.MaxDuration
	}
	if v.SpeedKmh > 0 {
		out["speed"] = v.SpeedKmh
	}
	if v.EmissionsPerKm != nil {
		out["emissions_per_km"] = *v.EmissionsPerKm
	}
	if v.FixedCost != nil {
		out["fixed_cost"] = *v.FixedCost
	}
	return json.Marshal(out)
}

// Fleet is the set of vehicles available to a solve. The wire format accepts
// either a bare array of vehicles or the object form {"vehicles": [...]}.
type Fleet struct {
	Vehicles []Vehicle
}

func (f *Fleet) UnmarshalJSON(data []byte) error {
	var list []Vehicle
	if err := json.Unmarshal(data, &list); err == nil {
		f.Vehicles = list
		return nil
	}
	var obj struct {
		Vehicles []Vehicle `json:"vehicles"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return shared.NewInputError("fleet", "must be a vehicle array or {vehicles: [...]}")
	}
	f.Vehicles = obj.Vehicles
	return nil
}

func (f Fleet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Vehicles []Vehicle `json:"vehicles"`
	}{Vehicles: f.Vehicles})
}

// Size returns the number of vehicles.
func (f *Fleet) Size() int {
	return len(f.Vehicles)
}

// TotalCapacity sums the primary capacity dimension across the fleet.
func (f *Fleet) TotalCapacity() int64 {
	var total int64
	for i := range f.Vehicles {
		total += f.Vehicles[i].PrimaryCapacity()
	}
	return total
}

// UniformFleet builds n identical vehicles with the given scalar capacity,
// the shape benchmark headers describe.
func UniformFleet(n int, capacity int64) Fleet {
	vehicles := make([]Vehicle, n)
	for i := range vehicles {
		vehicles[i] = Vehicle{
			ID:       fmt.Sprintf("vehicle-%d", i+1),
			Capacity: []int64{capacity},
		}
	}
	return Fleet{Vehicles: vehicles}
}
