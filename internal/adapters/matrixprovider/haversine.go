package matrixprovider

import (
	"context"
	"math"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// Haversine computes great-circle matrices over WGS84 coordinates using the
// mean Earth radius of 6371 km. It never produces durations; callers that
// need travel times pair it with a duration-capable provider.
type Haversine struct{}

// NewHaversine creates the great-circle provider.
func NewHaversine() *Haversine {
	return &Haversine{}
}

// Compute implements matrix.Provider.
func (h *Haversine) Compute(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params matrix.Parameters) (*matrix.Matrix, error) {
	destinations = defaultDestinations(origins, destinations)
	if len(origins) == 0 {
		return nil, shared.NewInputError("origins", "at least one origin is required")
	}

	m := &matrix.Matrix{Distances: make([][]float64, len(origins))}
	for i, o := range origins {
		row := make([]float64, len(destinations))
		for j, d := range destinations {
			row[j] = math.Round(o.HaversineMeters(d))
		}
		m.Distances[i] = row
	}
	if sameEndpoints(origins, destinations) {
		m.ZeroDiagonal()
	}
	return m, nil
}
