package matrix

import (
	"context"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// Provider computes a distance/duration matrix between two point sets.
//
// Row i corresponds to origins[i] and column j to destinations[j] even when
// the provider deduplicates coordinates internally. Distances come back as
// integral meters, durations as integral seconds; unreachable pairs carry the
// sentinel markers, never infinities.
type Provider interface {
	Compute(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params Parameters) (*Matrix, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params Parameters) (*Matrix, error)

func (f ProviderFunc) Compute(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params Parameters) (*Matrix, error) {
	return f(ctx, origins, destinations, mode, params)
}
