package matrixprovider

import (
	"context"
	"math"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// Euclidean computes straight-line matrices over planar points. Callers that
// work in planar space put y in the lat slot and x in the lon slot; the
// distance is symmetric so the assignment does not matter. MetersPerUnit
// scales raw units into meters (default 1), and a positive DurationScale
// makes the provider emit durations as distance times that factor.
type Euclidean struct{}

// NewEuclidean creates the planar provider.
func NewEuclidean() *Euclidean {
	return &Euclidean{}
}

// Compute implements matrix.Provider.
func (e *Euclidean) Compute(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params matrix.Parameters) (*matrix.Matrix, error) {
	destinations = defaultDestinations(origins, destinations)
	if len(origins) == 0 {
		return nil, shared.NewInputError("origins", "at least one origin is required")
	}

	scale := params.MetersPerUnit
	if scale <= 0 {
		scale = 1
	}
	_, wantDuration := wantedMetrics(params)
	emitDurations := wantDuration && params.DurationScale > 0

	m := &matrix.Matrix{Distances: make([][]float64, len(origins))}
	if emitDurations {
		m.Durations = make([][]int64, len(origins))
	}
	for i, o := range origins {
		distRow := make([]float64, len(destinations))
		var durRow []int64
		if emitDurations {
			durRow = make([]int64, len(destinations))
		}
		for j, d := range destinations {
			meters := math.Round(math.Hypot(o.Lon-d.Lon, o.Lat-d.Lat) * scale)
			distRow[j] = meters
			if emitDurations {
				durRow[j] = int64(math.Round(meters * params.DurationScale))
			}
		}
		m.Distances[i] = distRow
		if emitDurations {
			m.Durations[i] = durRow
		}
	}
	if sameEndpoints(origins, destinations) {
		m.ZeroDiagonal()
	}
	return m, nil
}
