package solver

import (
	"encoding/json"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// PickupDeliveryPair links a pickup node index to its delivery node index.
// Both must be served by the same vehicle with the pickup visited first.
//
// JSON accepts [pickup, delivery], {"pickup": p, "delivery": d} and the
// legacy {"from": p, "to": d} spelling.
type PickupDeliveryPair struct {
	Pickup   int   `json:"pickup"`
	Delivery int   `json:"delivery"`
	Quantity int64 `json:"quantity,omitempty"`
}

func (p *PickupDeliveryPair) UnmarshalJSON(data []byte) error {
	var arr []int
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) != 2 {
			return shared.NewInputError("pickup_delivery_pairs", "array form must be [pickup, delivery]")
		}
		p.Pickup, p.Delivery = arr[0], arr[1]
		return nil
	}
	var obj struct {
		Pickup   *int  `json:"pickup"`
		Delivery *int  `json:"delivery"`
		From     *int  `json:"from"`
		To       *int  `json:"to"`
		Quantity int64 `json:"quantity"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return shared.NewInputError("pickup_delivery_pairs", "must be [pickup, delivery] or {pickup, delivery}")
	}
	switch {
	case obj.Pickup != nil && obj.Delivery != nil:
		p.Pickup, p.Delivery = *obj.Pickup, *obj.Delivery
	case obj.From != nil && obj.To != nil:
		p.Pickup, p.Delivery = *obj.From, *obj.To
	default:
		return shared.NewInputError("pickup_delivery_pairs", "pair is missing pickup or delivery index")
	}
	p.Quantity = obj.Quantity
	return nil
}

// Weights blends the cost terms an engine optimizes. Distance defaults to 1.
type Weights struct {
	Distance    float64 `json:"distance"`
	Time        float64 `json:"time"`
	Emissions   float64 `json:"emissions"`
	Reliability float64 `json:"reliability"`
}

// DefaultWeights is the pure-distance objective.
func DefaultWeights() Weights {
	return Weights{Distance: 1.0}
}

// IsZero reports whether no weight was supplied.
func (w Weights) IsZero() bool {
	return w.Distance == 0 && w.Time == 0 && w.Emissions == 0 && w.Reliability == 0
}

// Options carries engine tuning as an explicit tagged object. Unknown engines
// ignore fields they do not understand; nothing is inferred from field
// presence.
type Options struct {
	// TimeLimit caps the search wall clock in seconds. Zero means the
	// engine default (60s); the dispatch layer clamps to [1, 900].
	TimeLimit int64 `json:"time_limit,omitempty"`

	// DurationScale converts matrix duration cells to seconds. Zero means
	// the cells are already seconds (scale 1). Planar benchmark instances
	// that express travel time in minutes pass 60 explicitly.
	DurationScale float64 `json:"duration_scale,omitempty"`

	// AllowDrop lets the engine leave nodes unserved at a penalty instead
	// of declaring the instance infeasible.
	AllowDrop bool `json:"allow_drop,omitempty"`

	// DropPenalty overrides the computed per-node drop penalty.
	DropPenalty int64 `json:"drop_penalty,omitempty"`

	// VehicleFixedCost is added once per vehicle that leaves the depot.
	// Nil means the engine default (100).
	VehicleFixedCost *float64 `json:"vehicle_fixed_cost,omitempty"`

	// FirstSolution picks the construction strategy: "cheapest_arc",
	// "savings" or "nearest". Empty means the engine default.
	FirstSolution string `json:"first_solution,omitempty"`

	// Metaheuristic picks the improvement strategy: "guided_local_search"
	// or "none". Empty means the engine default.
	Metaheuristic string `json:"metaheuristic,omitempty"`

	// LogSearch turns on per-iteration search logging.
	LogSearch bool `json:"log_search,omitempty"`
}

// EffectiveTimeLimit applies the default and the hard ceiling.
func (o Options) EffectiveTimeLimit() int64 {
	limit := o.TimeLimit
	if limit <= 0 {
		limit = 60
	}
	if limit > 900 {
		limit = 900
	}
	return limit
}

// EffectiveDurationScale returns the explicit scale or 1.
func (o Options) EffectiveDurationScale() float64 {
	if o.DurationScale <= 0 {
		return 1
	}
	return o.DurationScale
}

// EffectiveVehicleFixedCost returns the override or the default of 100.
func (o Options) EffectiveVehicleFixedCost() float64 {
	if o.VehicleFixedCost == nil {
		return 100.0
	}
	return *o.VehicleFixedCost
}

// Request is the engine-agnostic solve request. Exactly one of Matrix or
// Waypoints-with-coordinates drives the travel costs; the normalizer resolves
// which and produces the canonical Instance engines consume.
type Request struct {
	Engine              string               `json:"solver"`
	Matrix              *matrix.Matrix       `json:"matrix,omitempty"`
	Waypoints           []Waypoint           `json:"waypoints,omitempty"`
	Fleet               Fleet                `json:"fleet"`
	DepotIndex          int                  `json:"depot_index"`
	Demands             []int64              `json:"demands,omitempty"`
	NodeTimeWindows     []*TimeWindow        `json:"node_time_windows,omitempty"`
	NodeServiceTimes    []int64              `json:"node_service_times,omitempty"`
	PickupDeliveryPairs []PickupDeliveryPair `json:"pickup_delivery_pairs,omitempty"`
	Weights             *Weights             `json:"weights,omitempty"`
	Options             Options              `json:"options,omitempty"`
}

// EffectiveWeights returns the supplied weights or the distance-only default.
func (r *Request) EffectiveWeights() Weights {
	if r.Weights == nil || r.Weights.IsZero() {
		return DefaultWeights()
	}
	return *r.Weights
}
