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

func TestEuclidean_PlanarDistances(t *testing.T) {
	// Arrange - a 3-4-5 triangle in planar units (y in lat, x in lon)
	points := []shared.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 4, Lon: 3},
	}
	provider := matrixprovider.NewEuclidean()

	// Act
	m, err := provider.Compute(context.Background(), points, nil, matrix.ModeDriving, matrix.Parameters{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5.0, m.Distances[0][1])
	assert.Equal(t, 5.0, m.Distances[1][0])
	assert.Equal(t, 0.0, m.Distances[0][0])
	assert.Equal(t, 0.0, m.Distances[1][1])
	assert.False(t, m.HasDurations())
}

func TestEuclidean_MetersPerUnit(t *testing.T) {
	// Arrange
	points := []shared.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 4, Lon: 3},
	}
	provider := matrixprovider.NewEuclidean()
	params := matrix.Parameters{MetersPerUnit: 1000}

	// Act
	m, err := provider.Compute(context.Background(), points, nil, matrix.ModeDriving, params)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5000.0, m.Distances[0][1])
}

func TestEuclidean_DurationScale(t *testing.T) {
	// Arrange
	points := []shared.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 4, Lon: 3},
	}
	provider := matrixprovider.NewEuclidean()
	params := matrix.Parameters{DurationScale: 60}

	// Act
	m, err := provider.Compute(context.Background(), points, nil, matrix.ModeDriving, params)

	// Assert - durations are distance x scale
	require.NoError(t, err)
	require.True(t, m.HasDurations())
	assert.Equal(t, int64(300), m.Durations[0][1])
	assert.Equal(t, int64(0), m.Durations[0][0])
}

func TestEuclidean_NoOrigins(t *testing.T) {
	// Arrange
	provider := matrixprovider.NewEuclidean()

	// Act
	_, err := provider.Compute(context.Background(), nil, nil, matrix.ModeDriving, matrix.Parameters{})

	// Assert
	require.Error(t, err)
	var inputErr *shared.InputError
	assert.ErrorAs(t, err, &inputErr)
}
