package matrixprovider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/matrixprovider"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

func TestGoogle_RequestShapeAndElementStatuses(t *testing.T) {
	// Arrange
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/distancematrix/json", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [
				{"elements": [
					{"status": "OK", "distance": {"value": 0}, "duration": {"value": 0}},
					{"status": "OK", "distance": {"value": 5821}, "duration": {"value": 701}}
				]},
				{"elements": [
					{"status": "ZERO_RESULTS"},
					{"status": "OK", "distance": {"value": 0}, "duration": {"value": 0}}
				]}
			]
		}`))
	}))
	defer server.Close()

	provider, err := matrixprovider.NewGoogle(matrixprovider.GoogleOptions{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	points := []shared.Coordinate{{Lat: 37.7749, Lon: -122.4194}, {Lat: 37.8044, Lon: -122.2712}}

	// Act
	m, err := provider.Compute(context.Background(), points, nil, matrix.ModeCycling, matrix.Parameters{})

	// Assert - lat,lon pairs pipe-joined, cycling mapped to bicycling
	require.NoError(t, err)
	assert.Equal(t, "37.774900,-122.419400|37.804400,-122.271200", gotQuery["origins"][0])
	assert.Equal(t, "37.774900,-122.419400|37.804400,-122.271200", gotQuery["destinations"][0])
	assert.Equal(t, "bicycling", gotQuery["mode"][0])
	assert.Equal(t, "metric", gotQuery["units"][0])
	assert.Equal(t, "key", gotQuery["key"][0])

	// Assert - OK elements carry values, ZERO_RESULTS clamps to sentinels
	assert.Equal(t, 5821.0, m.Distances[0][1])
	assert.Equal(t, int64(701), m.Durations[0][1])
	assert.Equal(t, matrix.UnreachableDistanceMeters, m.Distances[1][0])
	assert.Equal(t, matrix.UnreachableDurationSecs, m.Durations[1][0])
}

func TestGoogle_TopLevelErrorSurfaced(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	}))
	defer server.Close()

	provider, err := matrixprovider.NewGoogle(matrixprovider.GoogleOptions{APIKey: "bad", BaseURL: server.URL})
	require.NoError(t, err)

	// Act
	_, err = provider.Compute(context.Background(),
		[]shared.Coordinate{{Lat: 1, Lon: 1}}, nil, matrix.ModeDriving, matrix.Parameters{})

	// Assert
	require.Error(t, err)
	var reqErr *shared.MatrixRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "google", reqErr.Provider)
	assert.Equal(t, "REQUEST_DENIED", reqErr.StatusText)
	assert.Contains(t, err.Error(), "API key is invalid")
}

func TestGoogle_MissingKey(t *testing.T) {
	// Act
	_, err := matrixprovider.NewGoogle(matrixprovider.GoogleOptions{})

	// Assert
	require.Error(t, err)
	var keyErr *shared.APIKeyMissingError
	require.ErrorAs(t, err, &keyErr)
	assert.Equal(t, "google", keyErr.Provider)
}
