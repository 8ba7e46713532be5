package matrixprovider_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/matrixprovider"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// stubBuilder serves a pre-built graph and counts builds.
type stubBuilder struct {
	builds int32
	delay  time.Duration
	graph  *matrixprovider.RoadGraph
}

func (b *stubBuilder) Build(ctx context.Context, center shared.Coordinate, radiusMeters float64, networkType string) (*matrixprovider.RoadGraph, error) {
	atomic.AddInt32(&b.builds, 1)
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return b.graph, nil
}

// twoPathGraph has a short-by-meters and a short-by-seconds path between its
// endpoints plus one disconnected island node.
func twoPathGraph() *matrixprovider.RoadGraph {
	g := matrixprovider.NewRoadGraph()
	a := g.AddNode(0, 0)
	b := g.AddNode(0, 0.01)
	c := g.AddNode(0, 0.02)
	x := g.AddNode(0.01, 0.01)
	g.AddNode(1, 1) // island
	g.AddEdge(a, b, 1000, 100)
	g.AddEdge(b, a, 1000, 100)
	g.AddEdge(b, c, 1000, 50)
	g.AddEdge(c, b, 1000, 50)
	g.AddEdge(a, x, 2500, 10)
	g.AddEdge(x, a, 2500, 10)
	g.AddEdge(x, c, 2500, 10)
	g.AddEdge(c, x, 2500, 10)
	return g
}

func TestLocalGraph_SnapAndTwoWeightRouting(t *testing.T) {
	// Arrange
	builder := &stubBuilder{graph: twoPathGraph()}
	cache, err := matrixprovider.NewGraphCache(4)
	require.NoError(t, err)
	provider := matrixprovider.NewLocalGraph(builder, cache, matrixprovider.LocalGraphOptions{BufferMeters: 5000})

	origins := []shared.Coordinate{{Lat: 0, Lon: 0}}
	destinations := []shared.Coordinate{
		{Lat: 0, Lon: 0.02}, // snaps to c
		{Lat: 1, Lon: 1},    // snaps to the island
	}

	// Act
	m, err := provider.Compute(context.Background(), origins, destinations, matrix.ModeDriving, matrix.Parameters{})

	// Assert - distance over the short-by-meters path, duration over the
	// short-by-seconds path, island clamped to the sentinels
	require.NoError(t, err)
	assert.Equal(t, 2000.0, m.Distances[0][0])
	assert.Equal(t, int64(20), m.Durations[0][0])
	assert.Equal(t, matrix.UnreachableDistanceMeters, m.Distances[0][1])
	assert.Equal(t, matrix.UnreachableDurationSecs, m.Durations[0][1])
}

func TestLocalGraph_GraphReusedAcrossCalls(t *testing.T) {
	// Arrange
	builder := &stubBuilder{graph: twoPathGraph()}
	cache, err := matrixprovider.NewGraphCache(4)
	require.NoError(t, err)
	provider := matrixprovider.NewLocalGraph(builder, cache, matrixprovider.LocalGraphOptions{})
	points := []shared.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.02}}

	// Act - same area twice
	_, err = provider.Compute(context.Background(), points, nil, matrix.ModeDriving, matrix.Parameters{})
	require.NoError(t, err)
	_, err = provider.Compute(context.Background(), points, nil, matrix.ModeDriving, matrix.Parameters{})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int32(1), atomic.LoadInt32(&builder.builds))
}

func TestLocalGraph_ConcurrentCallsBuildOnce(t *testing.T) {
	// Arrange - a slow builder so every goroutine arrives before the build ends
	builder := &stubBuilder{graph: twoPathGraph(), delay: 30 * time.Millisecond}
	cache, err := matrixprovider.NewGraphCache(4)
	require.NoError(t, err)
	provider := matrixprovider.NewLocalGraph(builder, cache, matrixprovider.LocalGraphOptions{})
	points := []shared.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.02}}

	// Act
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = provider.Compute(context.Background(), points, nil, matrix.ModeDriving, matrix.Parameters{})
		}(i)
	}
	wg.Wait()

	// Assert
	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&builder.builds))
	assert.Equal(t, 1, cache.Len())
}
