package matrixprovider

import (
	"container/heap"
	"math"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// EdgeWeight selects which edge attribute a shortest-path run minimizes.
type EdgeWeight int

const (
	// WeightMeters minimizes road length.
	WeightMeters EdgeWeight = iota
	// WeightSeconds minimizes travel time.
	WeightSeconds
)

type roadEdge struct {
	to      int
	meters  float64
	seconds float64
}

// RoadGraph is a compact adjacency-list road network. Edges are directed;
// two-way streets carry one edge per direction. Node ids are dense indexes
// assigned by AddNode.
type RoadGraph struct {
	lats []float64
	lons []float64
	adj  [][]roadEdge
}

// NewRoadGraph creates an empty graph.
func NewRoadGraph() *RoadGraph {
	return &RoadGraph{}
}

// AddNode appends a node and returns its index.
func (g *RoadGraph) AddNode(lat, lon float64) int {
	g.lats = append(g.lats, lat)
	g.lons = append(g.lons, lon)
	g.adj = append(g.adj, nil)
	return len(g.lats) - 1
}

// AddEdge adds a directed edge with both weights.
func (g *RoadGraph) AddEdge(from, to int, meters, seconds float64) {
	if from < 0 || from >= len(g.adj) || to < 0 || to >= len(g.adj) {
		return
	}
	g.adj[from] = append(g.adj[from], roadEdge{to: to, meters: meters, seconds: seconds})
}

// NodeCount returns the number of nodes.
func (g *RoadGraph) NodeCount() int {
	return len(g.lats)
}

// Coordinate returns the location of a node.
func (g *RoadGraph) Coordinate(node int) shared.Coordinate {
	return shared.Coordinate{Lat: g.lats[node], Lon: g.lons[node]}
}

// Nearest returns the node closest to c by great-circle distance, or -1 on an
// empty graph. The scan is linear; graphs are neighborhood-sized.
func (g *RoadGraph) Nearest(c shared.Coordinate) int {
	best := -1
	bestDist := math.Inf(1)
	for i := range g.lats {
		d := c.HaversineMeters(shared.Coordinate{Lat: g.lats[i], Lon: g.lons[i]})
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// ShortestFrom runs Dijkstra from source over the chosen weight and returns
// the cost to every node. Unreachable nodes carry +Inf; callers clamp to the
// domain sentinels.
func (g *RoadGraph) ShortestFrom(source int, weight EdgeWeight) []float64 {
	dist := make([]float64, len(g.adj))
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	if source < 0 || source >= len(g.adj) {
		return dist
	}
	dist[source] = 0

	pq := &distQueue{{node: source, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(distEntry)
		if cur.dist > dist[cur.node] {
			continue // stale entry
		}
		for _, e := range g.adj[cur.node] {
			w := e.meters
			if weight == WeightSeconds {
				w = e.seconds
			}
			if next := cur.dist + w; next < dist[e.to] {
				dist[e.to] = next
				heap.Push(pq, distEntry{node: e.to, dist: next})
			}
		}
	}
	return dist
}

type distEntry struct {
	node int
	dist float64
}

type distQueue []distEntry

func (q distQueue) Len() int            { return len(q) }
func (q distQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q distQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x interface{}) { *q = append(*q, x.(distEntry)) }
func (q *distQueue) Pop() interface{} {
	old := *q
	n := len(old)
	entry := old[n-1]
	*q = old[:n-1]
	return entry
}
