package matrixprovider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// GraphBuilder assembles a road graph covering a radius around a center
// point. The local-graph provider holds one behind its LRU.
type GraphBuilder interface {
	Build(ctx context.Context, center shared.Coordinate, radiusMeters float64, networkType string) (*RoadGraph, error)
}

// DefaultOverpassURL is the public Overpass API endpoint.
const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

// Speeds imputed per highway class when a way carries no maxspeed tag.
var classSpeedsKmh = map[string]float64{
	"motorway":       100,
	"motorway_link":  60,
	"trunk":          80,
	"trunk_link":     50,
	"primary":        60,
	"primary_link":   45,
	"secondary":      50,
	"secondary_link": 40,
	"tertiary":       40,
	"tertiary_link":  35,
	"residential":    30,
	"unclassified":   30,
	"living_street":  20,
	"service":        20,
}

const fallbackSpeedKmh = 50.0

// OverpassBuilder fetches OpenStreetMap highway data from an Overpass API
// endpoint and assembles a RoadGraph with per-edge length and travel time.
type OverpassBuilder struct {
	url    string
	client *httpClient
}

// NewOverpassBuilder creates a builder against the given endpoint. An empty
// url falls back to the public instance.
func NewOverpassBuilder(endpoint string, opts ClientOptions) *OverpassBuilder {
	if endpoint == "" {
		endpoint = DefaultOverpassURL
	}
	return &OverpassBuilder{
		url:    endpoint,
		client: newHTTPClient(opts),
	}
}

type overpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// Build implements GraphBuilder. It queries every highway way inside the
// bounding box around center and connects consecutive way nodes with edges
// weighted by haversine length and imputed travel time.
func (b *OverpassBuilder) Build(ctx context.Context, center shared.Coordinate, radiusMeters float64, networkType string) (*RoadGraph, error) {
	south, west, north, east := boundingBox(center, radiusMeters)
	query := fmt.Sprintf(
		`[out:json][timeout:60];way["highway"](%.6f,%.6f,%.6f,%.6f);(._;>;);out body;`,
		south, west, north, east)

	var resp overpassResponse
	form := url.Values{"data": {query}}
	if err := b.client.postForm(ctx, b.url, form, &resp); err != nil {
		var ue *upstreamError
		if errors.As(err, &ue) {
			return nil, shared.NewMatrixRequestError("local", ue.StatusText(), ue.body)
		}
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	coords := make(map[int64]shared.Coordinate)
	for _, el := range resp.Elements {
		if el.Type == "node" {
			coords[el.ID] = shared.Coordinate{Lat: el.Lat, Lon: el.Lon}
		}
	}

	graph := NewRoadGraph()
	index := make(map[int64]int)
	nodeFor := func(osmID int64) (int, bool) {
		if idx, ok := index[osmID]; ok {
			return idx, true
		}
		c, ok := coords[osmID]
		if !ok {
			return 0, false
		}
		idx := graph.AddNode(c.Lat, c.Lon)
		index[osmID] = idx
		return idx, true
	}

	for _, el := range resp.Elements {
		if el.Type != "way" || len(el.Nodes) < 2 {
			continue
		}
		class := el.Tags["highway"]
		if !allowedHighway(networkType, class) {
			continue
		}
		kph := speedKmh(networkType, class, el.Tags)
		forward, backward := wayDirections(el.Tags)

		for i := 0; i+1 < len(el.Nodes); i++ {
			from, ok := nodeFor(el.Nodes[i])
			if !ok {
				continue
			}
			to, ok := nodeFor(el.Nodes[i+1])
			if !ok {
				continue
			}
			meters := graph.Coordinate(from).HaversineMeters(graph.Coordinate(to))
			seconds := meters * 3.6 / kph
			if forward {
				graph.AddEdge(from, to, meters, seconds)
			}
			if backward {
				graph.AddEdge(to, from, meters, seconds)
			}
		}
	}
	return graph, nil
}

// boundingBox returns (south, west, north, east) for a circle of radius
// meters around center. One degree of latitude spans about 111320 m.
func boundingBox(center shared.Coordinate, radiusMeters float64) (float64, float64, float64, float64) {
	dLat := radiusMeters / 111320.0
	cosLat := math.Cos(center.Lat * math.Pi / 180)
	if math.Abs(cosLat) < 1e-6 {
		cosLat = 1e-6
	}
	dLon := radiusMeters / (111320.0 * math.Abs(cosLat))
	return center.Lat - dLat, center.Lon - dLon, center.Lat + dLat, center.Lon + dLon
}

func allowedHighway(networkType, class string) bool {
	if class == "" {
		return false
	}
	switch networkType {
	case "walking":
		switch class {
		case "motorway", "motorway_link", "trunk", "trunk_link":
			return false
		}
		return true
	case "cycling":
		switch class {
		case "motorway", "motorway_link":
			return false
		}
		return true
	default: // driving
		switch class {
		case "footway", "path", "pedestrian", "steps", "cycleway", "bridleway", "corridor", "track":
			return false
		}
		return true
	}
}

// speedKmh picks the edge speed: fixed for non-motorized modes, else the
// way's maxspeed tag, else the class default.
func speedKmh(networkType, class string, tags map[string]string) float64 {
	switch networkType {
	case "walking":
		return 5
	case "cycling":
		return 15
	}
	if raw, ok := tags["maxspeed"]; ok {
		if kph := parseMaxspeed(raw); kph > 0 {
			return kph
		}
	}
	if kph, ok := classSpeedsKmh[class]; ok {
		return kph
	}
	return fallbackSpeedKmh
}

// parseMaxspeed understands "50", "50 km/h" and "30 mph". Anything else
// (e.g. "signals", "walk") yields 0 so the class default applies.
func parseMaxspeed(raw string) float64 {
	raw = strings.TrimSpace(strings.ToLower(raw))
	mph := strings.HasSuffix(raw, "mph")
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(raw, "mph"), "km/h"))
	raw = strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 0
	}
	if mph {
		return value * 1.609344
	}
	return value
}

// wayDirections reads the oneway tag: (forward, backward) edge emission.
func wayDirections(tags map[string]string) (bool, bool) {
	switch tags["oneway"] {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return false, true
	default:
		return true, true
	}
}
