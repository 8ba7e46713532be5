package matrixprovider_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/matrixprovider"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// osmFixture has three nodes on the equator: a one-way residential street from
// node 1 to node 2 and a motorway from node 2 to node 3.
const osmFixture = `{
	"elements": [
		{"type": "node", "id": 1, "lat": 0, "lon": 0},
		{"type": "node", "id": 2, "lat": 0, "lon": 0.01},
		{"type": "node", "id": 3, "lat": 0, "lon": 0.02},
		{"type": "way", "id": 10, "nodes": [1, 2], "tags": {"highway": "residential", "oneway": "yes"}},
		{"type": "way", "id": 11, "nodes": [2, 3], "tags": {"highway": "motorway"}}
	]
}`

func newOverpassServer(t *testing.T, payload string) (*httptest.Server, *string) {
	t.Helper()
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostFormValue("data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)
	return server, &gotQuery
}

func TestOverpassBuilder_OnewayEdges(t *testing.T) {
	// Arrange
	server, gotQuery := newOverpassServer(t, osmFixture)
	builder := matrixprovider.NewOverpassBuilder(server.URL, matrixprovider.ClientOptions{RequestsPerSec: 1000})

	// Act
	graph, err := builder.Build(context.Background(), shared.Coordinate{Lat: 0, Lon: 0.01}, 5000, "driving")

	// Assert - query selects highway ways in a bounding box
	require.NoError(t, err)
	assert.Contains(t, *gotQuery, `way["highway"]`)
	assert.Contains(t, *gotQuery, "out body")

	// Assert - the one-way street is traversable only from node 1 to node 2
	require.Equal(t, 3, graph.NodeCount())
	n1 := graph.Nearest(shared.Coordinate{Lat: 0, Lon: 0})
	n2 := graph.Nearest(shared.Coordinate{Lat: 0, Lon: 0.01})

	fromN1 := graph.ShortestFrom(n1, matrixprovider.WeightMeters)
	assert.InDelta(t, 1113, fromN1[n2], 5)

	fromN2 := graph.ShortestFrom(n2, matrixprovider.WeightMeters)
	assert.True(t, math.IsInf(fromN2[n1], 1))
}

func TestOverpassBuilder_TravelTimeFromClassSpeed(t *testing.T) {
	// Arrange - residential defaults to 30 km/h
	server, _ := newOverpassServer(t, osmFixture)
	builder := matrixprovider.NewOverpassBuilder(server.URL, matrixprovider.ClientOptions{RequestsPerSec: 1000})

	// Act
	graph, err := builder.Build(context.Background(), shared.Coordinate{Lat: 0, Lon: 0.01}, 5000, "driving")

	// Assert - seconds = meters * 3.6 / kmh
	require.NoError(t, err)
	n1 := graph.Nearest(shared.Coordinate{Lat: 0, Lon: 0})
	n2 := graph.Nearest(shared.Coordinate{Lat: 0, Lon: 0.01})
	meters := graph.ShortestFrom(n1, matrixprovider.WeightMeters)[n2]
	seconds := graph.ShortestFrom(n1, matrixprovider.WeightSeconds)[n2]
	assert.InDelta(t, meters*3.6/30, seconds, 0.1)
}

func TestOverpassBuilder_WalkingExcludesMotorways(t *testing.T) {
	// Arrange
	server, _ := newOverpassServer(t, osmFixture)
	builder := matrixprovider.NewOverpassBuilder(server.URL, matrixprovider.ClientOptions{RequestsPerSec: 1000})

	// Act
	graph, err := builder.Build(context.Background(), shared.Coordinate{Lat: 0, Lon: 0.01}, 5000, "walking")

	// Assert - the motorway way is dropped, so node 3 never enters the graph
	require.NoError(t, err)
	assert.Equal(t, 2, graph.NodeCount())
}

func TestOverpassBuilder_UpstreamErrorMapsToProviderError(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("parse error: unexpected token"))
	}))
	defer server.Close()
	builder := matrixprovider.NewOverpassBuilder(server.URL, matrixprovider.ClientOptions{RequestsPerSec: 1000})

	// Act
	_, err := builder.Build(context.Background(), shared.Coordinate{Lat: 0, Lon: 0}, 5000, "driving")

	// Assert
	require.Error(t, err)
	var reqErr *shared.MatrixRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "local", reqErr.Provider)
	assert.Contains(t, err.Error(), "parse error")
}
