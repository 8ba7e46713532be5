// Package matrixprovider implements the pluggable matrix computation
// backends: planar euclidean, great-circle haversine, an offline road-graph
// provider fed by Overpass, and the Mapbox, Google and openrouteservice
// online APIs. Every provider satisfies matrix.Provider and returns integer
// meters and integer seconds with unreachable pairs clamped to the domain
// sentinels.
package matrixprovider

import (
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// wantedMetrics interprets Parameters.Metrics. Empty means both.
func wantedMetrics(params matrix.Parameters) (distance, duration bool) {
	if len(params.Metrics) == 0 {
		return true, true
	}
	for _, m := range params.Metrics {
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "distance":
			distance = true
		case "duration":
			duration = true
		}
	}
	return distance, duration
}

// sameEndpoints reports whether origins and destinations name the same point
// list, in which case the result is a symmetric matrix whose diagonal must be
// exactly zero.
func sameEndpoints(origins, destinations []shared.Coordinate) bool {
	if len(origins) != len(destinations) {
		return false
	}
	for i := range origins {
		if origins[i].Key() != destinations[i].Key() {
			return false
		}
	}
	return true
}

// defaultDestinations applies the "destinations default to origins" rule at
// the provider edge; the request normalizer already does this for HTTP
// callers but providers are also invoked directly.
func defaultDestinations(origins, destinations []shared.Coordinate) []shared.Coordinate {
	if len(destinations) == 0 {
		return origins
	}
	return destinations
}
