package solver

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// HorizonSeconds is the default open end of a time window.
const HorizonSeconds int64 = 1e9

// TimeWindow is the [earliest, latest] service start interval in seconds.
//
// JSON accepts both the object form {"start": s, "end": e} and the array form
// [s, e]. A window whose end precedes its start is swapped on decode.
type TimeWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (tw *TimeWindow) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return shared.NewInputError("time_window", "array form must have two elements [start, end]")
		}
		tw.Start = int64(pair[0])
		tw.End = int64(pair[1])
	} else {
		var obj struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return shared.NewInputError("time_window", "must be [start, end] or {start, end}")
		}
		tw.Start = int64(obj.Start)
		tw.End = int64(obj.End)
	}
	if tw.End < tw.Start {
		tw.Start, tw.End = tw.End, tw.Start
	}
	return nil
}

func (tw TimeWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{tw.Start, tw.End})
}

// Width returns the window extent in seconds.
func (tw TimeWindow) Width() int64 {
	if tw.End < tw.Start {
		return 0
	}
	return tw.End - tw.Start
}

// Waypoint is a stop in a routing problem. It carries up to two coordinate
// spaces: the planar solver space (X, Y) used by euclidean math and the
// geographic display space (Location). At least one must be usable.
type Waypoint struct {
	ID          string
	X           *float64
	Y           *float64
	Location    *shared.Coordinate
	Demand      []int64
	ServiceTime int64 // seconds
	TimeWindow  *TimeWindow
	Depot       bool
	PairedWith  string
	Priority    int
}

// HasPlanar reports whether the solver-space coordinates are present.
func (w *Waypoint) HasPlanar() bool {
	return w.X != nil && w.Y != nil
}

// Planar returns the solver-space coordinates, reading the geographic pair as
// (lon, lat) when no planar pair was given.
func (w *Waypoint) Planar() (float64, float64) {
	if w.HasPlanar() {
		return *w.X, *w.Y
	}
	if w.Location != nil {
		return w.Location.Lon, w.Location.Lat
	}
	return 0, 0
}

// PrimaryDemand returns the first demand dimension, or zero.
func (w *Waypoint) PrimaryDemand() int64 {
	if len(w.Demand) == 0 {
		return 0
	}
	return w.Demand[0]
}

// EuclideanMatrix computes pairwise planar distances between waypoints. A
// positive durationScale also emits durations = round(distance * scale), the
// convention of formats whose travel time equals distance (Solomon thinks in
// minutes, so scale 60 yields seconds).
func EuclideanMatrix(waypoints []Waypoint, durationScale float64) *matrix.Matrix {
	n := len(waypoints)
	out := &matrix.Matrix{Distances: make([][]float64, n)}
	if durationScale > 0 {
		out.Durations = make([][]int64, n)
	}
	for i := 0; i < n; i++ {
		out.Distances[i] = make([]float64, n)
		if out.Durations != nil {
			out.Durations[i] = make([]int64, n)
		}
		xi, yi := waypoints[i].Planar()
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			xj, yj := waypoints[j].Planar()
			d := math.Hypot(xi-xj, yi-yj)
			out.Distances[i][j] = d
			if out.Durations != nil {
				out.Durations[i][j] = int64(math.Round(d * durationScale))
			}
		}
	}
	return out
}

// waypointJSON covers every wire shape clients and loaders send: nested
// {location: {lat, lon}} or flat lat/lon, service_duration or service_time,
// scalar or vector demand, and a numeric or string id.
type waypointJSON struct {
	ID              json.RawMessage    `json:"id"`
	X               *float64           `json:"x,omitempty"`
	Y               *float64           `json:"y,omitempty"`
	Lat             *float64           `json:"lat,omitempty"`
	Lon             *float64           `json:"lon,omitempty"`
	Lng             *float64           `json:"lng,omitempty"`
	Location        *shared.Coordinate `json:"location,omitempty"`
	Type            string             `json:"type,omitempty"`
	Demand          json.RawMessage    `json:"demand,omitempty"`
	ServiceTime     *int64             `json:"service_time,omitempty"`
	ServiceDuration *int64             `json:"service_duration,omitempty"`
	TimeWindow      *TimeWindow        `json:"time_window,omitempty"`
	Depot           bool               `json:"depot,omitempty"`
	PairedWith      string             `json:"paired_with,omitempty"`
	Priority        *int               `json:"priority,omitempty"`
}

func (w *Waypoint) UnmarshalJSON(data []byte) error {
	var raw waypointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode waypoint: %w", err)
	}

	w.ID = decodeFlexibleID(raw.ID)
	w.X = raw.X
	w.Y = raw.Y

	if raw.Location != nil {
		w.Location = raw.Location
	} else {
		lon := raw.Lon
		if lon == nil {
			lon = raw.Lng
		}
		if raw.Lat != nil && lon != nil {
			w.Location = &shared.Coordinate{Lat: *raw.Lat, Lon: *lon}
		}
	}

	if len(raw.Demand) > 0 {
		demand, err := decodeFlexibleInts(raw.Demand)
		if err != nil {
			return shared.NewInputError("demand", "must be an integer or an integer array")
		}
		w.Demand = demand
	}

	switch {
	case raw.ServiceDuration != nil:
		w.ServiceTime = *raw.ServiceDuration
	case raw.ServiceTime != nil:
		w.ServiceTime = *raw.ServiceTime
	}

	w.TimeWindow = raw.TimeWindow
	w.Depot = raw.Depot || raw.Type == "depot"
	w.PairedWith = raw.PairedWith
	if raw.Priority != nil {
		w.Priority = *raw.Priority
	} else {
		w.Priority = 1
	}
	return nil
}

func (w Waypoint) MarshalJSON() ([]byte, error) {
	out := waypointJSON{
		ID:          json.RawMessage(strconv.Quote(w.ID)),
		X:           w.X,
		Y:           w.Y,
		TimeWindow:  w.TimeWindow,
		Depot:       w.Depot,
		PairedWith:  w.PairedWith,
		ServiceTime: &w.ServiceTime,
	}
	if w.Location != nil {
		lat, lon := w.Location.Lat, w.Location.Lon
		out.Lat = &lat
		out.Lon = &lon
	}
	if len(w.Demand) > 0 {
		demand, err := json.Marshal(w.Demand)
		if err != nil {
			return nil, err
		}
		out.Demand = demand
	}
	if w.Priority != 0 {
		p := w.Priority
		out.Priority = &p
	}
	return json.Marshal(out)
}

func decodeFlexibleID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

func decodeFlexibleInts(raw json.RawMessage) ([]int64, error) {
	var list []float64
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]int64, len(list))
		for i, v := range list {
			out[i] = int64(v)
		}
		return out, nil
	}
	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return []int64{int64(scalar)}, nil
	}
	return nil, fmt.Errorf("value %s is neither a number nor a number array", string(raw))
}
