package matrixprovider

import (
	"context"
	"fmt"
	"math"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

const (
	defaultBufferMeters   = 10000
	defaultGraphCacheSize = 16
)

// GraphCache is the process-wide LRU of built road graphs keyed by
// (centroid bucket, buffer, network type). A per-key mutex collapses
// concurrent builds of the same area into a single builder call; waiters
// block until the winner stores the graph.
type GraphCache struct {
	graphs     *lru.Cache
	buildLocks sync.Map // key string -> *sync.Mutex
}

// NewGraphCache creates a cache holding up to size graphs.
func NewGraphCache(size int) (*GraphCache, error) {
	if size <= 0 {
		size = defaultGraphCacheSize
	}
	graphs, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph cache: %w", err)
	}
	return &GraphCache{graphs: graphs}, nil
}

// GetOrBuild returns the cached graph for key or runs build exactly once per
// key under concurrent callers.
func (gc *GraphCache) GetOrBuild(ctx context.Context, key string, build func(ctx context.Context) (*RoadGraph, error)) (*RoadGraph, error) {
	if cached, ok := gc.graphs.Get(key); ok {
		return cached.(*RoadGraph), nil
	}

	lockAny, _ := gc.buildLocks.LoadOrStore(key, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	// Double-check after acquiring the lock; another caller may have
	// finished the build while we waited.
	if cached, ok := gc.graphs.Get(key); ok {
		return cached.(*RoadGraph), nil
	}

	graph, err := build(ctx)
	if err != nil {
		return nil, err
	}
	gc.graphs.Add(key, graph)
	return graph, nil
}

// Len returns the number of cached graphs.
func (gc *GraphCache) Len() int {
	return gc.graphs.Len()
}

// LocalGraphOptions tunes the offline road-graph provider.
type LocalGraphOptions struct {
	// BufferMeters is the graph radius around the point centroid.
	BufferMeters float64
}

// LocalGraph computes matrices over a road graph built for the neighborhood
// of the requested points. Each point snaps to its nearest graph node; per
// origin, one shortest-path run over road length fills the distance row and
// one over travel time fills the duration row.
type LocalGraph struct {
	builder GraphBuilder
	cache   *GraphCache
	buffer  float64
}

// NewLocalGraph creates the provider. The cache is shared process-wide so
// repeated requests in the same area reuse the built graph.
func NewLocalGraph(builder GraphBuilder, cache *GraphCache, opts LocalGraphOptions) *LocalGraph {
	buffer := opts.BufferMeters
	if buffer <= 0 {
		buffer = defaultBufferMeters
	}
	return &LocalGraph{builder: builder, cache: cache, buffer: buffer}
}

// Compute implements matrix.Provider.
func (p *LocalGraph) Compute(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params matrix.Parameters) (*matrix.Matrix, error) {
	destinations = defaultDestinations(origins, destinations)
	if len(origins) == 0 {
		return nil, shared.NewInputError("origins", "at least one origin is required")
	}

	points := make([]shared.Coordinate, 0, len(origins)+len(destinations))
	points = append(points, origins...)
	points = append(points, destinations...)
	center := centroid(points)

	// 4-decimal buckets (~11 m) so nearby requests share one graph.
	key := fmt.Sprintf("%.4f,%.4f|%.0f|%s", center.Lat, center.Lon, p.buffer, mode)
	graph, err := p.cache.GetOrBuild(ctx, key, func(ctx context.Context) (*RoadGraph, error) {
		return p.builder.Build(ctx, center, p.buffer, mode)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build road graph: %w", err)
	}
	if graph.NodeCount() == 0 {
		return nil, shared.NewMatrixRequestError("local", "", "road graph is empty for the requested area")
	}

	destNodes := make([]int, len(destinations))
	for j, d := range destinations {
		destNodes[j] = graph.Nearest(d)
	}

	m := &matrix.Matrix{
		Distances: make([][]float64, len(origins)),
		Durations: make([][]int64, len(origins)),
	}
	for i, o := range origins {
		src := graph.Nearest(o)
		meters := graph.ShortestFrom(src, WeightMeters)
		seconds := graph.ShortestFrom(src, WeightSeconds)

		distRow := make([]float64, len(destinations))
		durRow := make([]int64, len(destinations))
		for j, dst := range destNodes {
			if dst < 0 || math.IsInf(meters[dst], 1) {
				distRow[j] = matrix.UnreachableDistanceMeters
				durRow[j] = matrix.UnreachableDurationSecs
				continue
			}
			distRow[j] = math.Round(meters[dst])
			durRow[j] = int64(math.Round(seconds[dst]))
		}
		m.Distances[i] = distRow
		m.Durations[i] = durRow
	}
	if sameEndpoints(origins, destinations) {
		m.ZeroDiagonal()
	}
	return m, nil
}

func centroid(points []shared.Coordinate) shared.Coordinate {
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return shared.Coordinate{Lat: lat / n, Lon: lon / n}
}
