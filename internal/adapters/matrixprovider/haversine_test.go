package matrixprovider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/matrixprovider"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

func TestHaversine_SanFranciscoToLosAngeles(t *testing.T) {
	// Arrange
	sf := shared.Coordinate{Lat: 37.7749, Lon: -122.4194}
	la := shared.Coordinate{Lat: 34.0522, Lon: -118.2437}
	provider := matrixprovider.NewHaversine()

	// Act
	m, err := provider.Compute(context.Background(),
		[]shared.Coordinate{sf}, []shared.Coordinate{la}, matrix.ModeDriving, matrix.Parameters{})

	// Assert - great-circle SF to LA is about 559 km
	require.NoError(t, err)
	d := m.Distances[0][0]
	assert.Greater(t, d, 500_000.0)
	assert.Less(t, d, 700_000.0)
	assert.False(t, m.HasDurations())
}

func TestHaversine_DestinationsDefaultToOrigins(t *testing.T) {
	// Arrange
	points := []shared.Coordinate{
		{Lat: 37.7749, Lon: -122.4194},
		{Lat: 37.8044, Lon: -122.2712},
	}
	provider := matrixprovider.NewHaversine()

	// Act
	m, err := provider.Compute(context.Background(), points, nil, matrix.ModeDriving, matrix.Parameters{})

	// Assert - square symmetric matrix with zero diagonal
	require.NoError(t, err)
	require.Len(t, m.Distances, 2)
	require.Len(t, m.Distances[0], 2)
	assert.Equal(t, 0.0, m.Distances[0][0])
	assert.Equal(t, 0.0, m.Distances[1][1])
	assert.Equal(t, m.Distances[0][1], m.Distances[1][0])
	assert.Greater(t, m.Distances[0][1], 0.0)
}
