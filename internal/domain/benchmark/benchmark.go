// Package benchmark models benchmark instance files (VRPLIB, Solomon, XML),
// their reference solutions and the on-disk dataset index.
package benchmark

import (
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// File kinds as reported by the index.
const (
	KindInstance = "instance"
	KindSolution = "solution"
)

// Instance is a parsed benchmark problem. Waypoints carry planar coordinates
// and, when the file is geographic, mirrored lat/lon so both spaces survive a
// round trip. Matrix is set when the file ships explicit edge weights or when
// the format fixes the travel metric (Solomon).
type Instance struct {
	Name           string            `json:"name"`
	Format         string            `json:"format"`
	Comment        string            `json:"comment,omitempty"`
	EdgeWeightType string            `json:"edge_weight_type,omitempty"`
	Waypoints      []solver.Waypoint `json:"waypoints"`
	DepotIndex     int               `json:"depot_index"`
	NumVehicles    int               `json:"num_vehicles"`
	Capacity       int64             `json:"capacity"`
	Matrix         *matrix.Matrix    `json:"matrix,omitempty"`
}

// Size returns the node count.
func (in *Instance) Size() int {
	return len(in.Waypoints)
}

// EuclideanMatrix computes pairwise planar distances between the waypoints.
// A positive durationScale also emits durations = round(distance * scale),
// the convention of formats whose travel time equals distance (Solomon uses
// minutes, so scale 60 yields seconds).
func (in *Instance) EuclideanMatrix(durationScale float64) *matrix.Matrix {
	return solver.EuclideanMatrix(in.Waypoints, durationScale)
}

// Fleet expands the header vehicle count and capacity into a uniform fleet.
func (in *Instance) Fleet() solver.Fleet {
	n := in.NumVehicles
	if n <= 0 {
		n = 1
	}
	return solver.UniformFleet(n, in.Capacity)
}

// ToSolveRequest shapes the instance as a coordinate-form solve request.
func (in *Instance) ToSolveRequest(engine string, opts solver.Options) *solver.Request {
	demands := make([]int64, len(in.Waypoints))
	services := make([]int64, len(in.Waypoints))
	windows := make([]*solver.TimeWindow, len(in.Waypoints))
	for i := range in.Waypoints {
		demands[i] = in.Waypoints[i].PrimaryDemand()
		services[i] = in.Waypoints[i].ServiceTime
		windows[i] = in.Waypoints[i].TimeWindow
	}
	return &solver.Request{
		Engine:           engine,
		Matrix:           in.Matrix,
		Waypoints:        in.Waypoints,
		Fleet:            in.Fleet(),
		DepotIndex:       in.DepotIndex,
		Demands:          demands,
		NodeTimeWindows:  windows,
		NodeServiceTimes: services,
		Options:          opts,
	}
}

// Solution is a reference solution: tours as node index lists wrapped with
// the depot at both ends, plus the published cost when the file states one.
type Solution struct {
	Name   string  `json:"name"`
	Routes [][]int `json:"routes"`
	Cost   float64 `json:"cost,omitempty"`
}

// Dataset is a top-level directory under the data root.
type Dataset struct {
	Name  string `json:"name"`
	Files int    `json:"files"`
}

// FileEntry is one benchmark file in the index.
type FileEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"` // relative to the data root
	Dataset   string `json:"dataset"`
	SizeBytes int64  `json:"size_bytes"`
	Kind      string `json:"kind"`
}

// Stem returns the filename without its extension, the key pairing uses.
func (f *FileEntry) Stem() string {
	name := f.Name
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

// Pair couples an instance file with its same-stem solution file. Solution
// is nil when the dataset ships none.
type Pair struct {
	Instance *FileEntry `json:"instance"`
	Solution *FileEntry `json:"solution,omitempty"`
}

// Page is one slice of a file listing.
type Page struct {
	Items  []FileEntry `json:"items"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// FileQuery filters and orders a file listing.
type FileQuery struct {
	Dataset string
	Query   string   // substring match on name and path
	Exts    []string // extension allow-list, e.g. [".vrp", ".sol"]
	Kind    string   // instance, solution or empty for both
	SortBy  string   // name or size
	SortDir string   // asc or desc
	Limit   int
	Offset  int
}
