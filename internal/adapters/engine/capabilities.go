package engine

import "github.com/andrescamacho/routing-go/internal/domain/solver"

// capabilityTable declares, per backend, which problem classes are accepted
// and how each request field is treated. Field tokens mirror the request
// schema; fleet>=1 and fleet==1 encode the vehicle-count precondition.
var capabilityTable = map[string]solver.Capabilities{
	NameHeuristic: {
		SupportsDrop: true,
		Problems: map[string]map[string]solver.FieldRequirement{
			"TSP": {
				"matrix.distances": solver.FieldRequired,
				"fleet>=1":         solver.FieldRequired,
				"depot_index":      solver.FieldRequired,
				"matrix.durations": solver.FieldOptional,
				"weights":          solver.FieldOptional,
			},
			"CVRP": {
				"matrix.distances":   solver.FieldRequired,
				"fleet>=1":           solver.FieldRequired,
				"demands":            solver.FieldRequired,
				"depot_index":        solver.FieldRequired,
				"matrix.durations":   solver.FieldOptional,
				"node_service_times": solver.FieldOptional,
				"weights":            solver.FieldOptional,
			},
			"VRPTW": {
				"matrix.durations":   solver.FieldRequired,
				"node_time_windows":  solver.FieldRequired,
				"fleet>=1":           solver.FieldRequired,
				"depot_index":        solver.FieldRequired,
				"matrix.distances":   solver.FieldOptional,
				"node_service_times": solver.FieldOptional,
				"weights":            solver.FieldOptional,
			},
			"PDPTW": {
				"matrix.durations":      solver.FieldRequired,
				"node_time_windows":     solver.FieldRequired,
				"pickup_delivery_pairs": solver.FieldRequired,
				"demands":               solver.FieldRequired,
				"fleet>=1":              solver.FieldRequired,
				"depot_index":           solver.FieldRequired,
				"matrix.distances":      solver.FieldOptional,
				"node_service_times":    solver.FieldOptional,
				"weights":               solver.FieldOptional,
			},
		},
	},
	NameMIP: {
		Problems: map[string]map[string]solver.FieldRequirement{
			"TSP": {
				"matrix.distances": solver.FieldRequired,
				"fleet>=1":         solver.FieldRequired,
				"depot_index":      solver.FieldRequired,
			},
			"CVRP": {
				"matrix.distances": solver.FieldRequired,
				"fleet>=1":         solver.FieldRequired,
				"demands":          solver.FieldRequired,
				"depot_index":      solver.FieldRequired,
			},
			"VRPTW": {
				"matrix.durations":  solver.FieldRequired,
				"node_time_windows": solver.FieldRequired,
				"fleet>=1":          solver.FieldRequired,
				"depot_index":       solver.FieldRequired,
			},
		},
	},
	NameTour: {
		CoordinateMode: true,
		Problems: map[string]map[string]solver.FieldRequirement{
			"TSP": {
				"waypoints":   solver.FieldRequired,
				"fleet==1":    solver.FieldRequired,
				"depot_index": solver.FieldOptional,
				"matrix":      solver.FieldOptional,
				"weights":     solver.FieldIgnored,
			},
		},
	},
}
