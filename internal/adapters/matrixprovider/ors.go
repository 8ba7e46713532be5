package matrixprovider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

const defaultORSURL = "https://api.openrouteservice.org"

// ORSOptions configures the openrouteservice matrix provider.
type ORSOptions struct {
	APIKey  string
	BaseURL string
	Client  ClientOptions
}

// ORS queries the openrouteservice matrix endpoint. The service charges by
// element, so coordinates are deduplicated before sending and the full
// origins-by-destinations table is rebuilt from the response.
type ORS struct {
	apiKey  string
	baseURL string
	client  *httpClient
}

// NewORS creates the provider, failing with APIKeyMissingError when the key
// is absent.
func NewORS(opts ORSOptions) (*ORS, error) {
	if opts.APIKey == "" {
		return nil, shared.NewAPIKeyMissingError("ors", "ORS_API_KEY")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultORSURL
	}
	return &ORS{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(opts.Client),
	}, nil
}

func orsProfile(mode string) string {
	switch mode {
	case matrix.ModeWalking:
		return "foot-walking"
	case matrix.ModeCycling:
		return "cycling-regular"
	default:
		return "driving-car"
	}
}

// Compute implements matrix.Provider.
func (o *ORS) Compute(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params matrix.Parameters) (*matrix.Matrix, error) {
	destinations = defaultDestinations(origins, destinations)
	if len(origins) == 0 {
		return nil, shared.NewInputError("origins", "at least one origin is required")
	}

	// Dedupe by 6-decimal key; srcLoc/dstLoc map each request point to its
	// slot in the unique location list.
	var locations [][2]float64
	keyIndex := make(map[string]int)
	locationOf := func(c shared.Coordinate) int {
		if idx, ok := keyIndex[c.Key()]; ok {
			return idx
		}
		idx := len(locations)
		keyIndex[c.Key()] = idx
		locations = append(locations, [2]float64{c.Lon, c.Lat})
		return idx
	}
	srcLoc := make([]int, len(origins))
	for i, c := range origins {
		srcLoc[i] = locationOf(c)
	}
	dstLoc := make([]int, len(destinations))
	for j, c := range destinations {
		dstLoc[j] = locationOf(c)
	}

	// Response rows/columns follow the sources/destinations index lists, so
	// remember where each unique location landed.
	sources, srcPos := uniqueIndexes(srcLoc)
	dests, dstPos := uniqueIndexes(dstLoc)

	metrics := []string{"distance", "duration"}
	if wantDist, wantDur := wantedMetrics(params); !wantDist || !wantDur {
		metrics = metrics[:0]
		if wantDist {
			metrics = append(metrics, "distance")
		}
		if wantDur {
			metrics = append(metrics, "duration")
		}
	}
	units := params.Units
	if units == "" {
		units = "m"
	}

	body := map[string]interface{}{
		"locations":    locations,
		"sources":      sources,
		"destinations": dests,
		"metrics":      metrics,
		"units":        units,
	}

	var resp struct {
		Distances [][]*float64 `json:"distances"`
		Durations [][]*float64 `json:"durations"`
	}
	requestURL := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, orsProfile(mode))
	headers := map[string]string{"Authorization": o.apiKey}
	if err := o.client.postJSON(ctx, requestURL, headers, body, &resp); err != nil {
		var ue *upstreamError
		if errors.As(err, &ue) {
			return nil, shared.NewMatrixRequestError("ors", ue.StatusText(), ue.body)
		}
		return nil, shared.NewMatrixRequestError("ors", "", err.Error())
	}
	if len(resp.Distances) == 0 && len(resp.Durations) == 0 {
		return nil, shared.NewMatrixRequestError("ors", "", "response carried neither distances nor durations")
	}

	factor := distanceFactor(units, resp.Distances)

	out := &matrix.Matrix{}
	if len(resp.Distances) > 0 {
		out.Distances = make([][]float64, len(origins))
		for i := range origins {
			row := resp.Distances[srcPos[srcLoc[i]]]
			distRow := make([]float64, len(destinations))
			for j := range destinations {
				col := dstPos[dstLoc[j]]
				if col >= len(row) || row[col] == nil {
					distRow[j] = matrix.UnreachableDistanceMeters
					continue
				}
				distRow[j] = math.Round(*row[col] * factor)
			}
			out.Distances[i] = distRow
		}
	}
	if len(resp.Durations) > 0 {
		out.Durations = make([][]int64, len(origins))
		for i := range origins {
			row := resp.Durations[srcPos[srcLoc[i]]]
			durRow := make([]int64, len(destinations))
			for j := range destinations {
				col := dstPos[dstLoc[j]]
				if col >= len(row) || row[col] == nil {
					durRow[j] = matrix.UnreachableDurationSecs
					continue
				}
				durRow[j] = int64(math.Round(*row[col]))
			}
			out.Durations[i] = durRow
		}
	}
	if sameEndpoints(origins, destinations) {
		out.ZeroDiagonal()
	}
	return out, nil
}

// uniqueIndexes keeps the first occurrence of each location index, returning
// the deduplicated list and a location-index to response-row map.
func uniqueIndexes(locs []int) ([]int, map[int]int) {
	unique := make([]int, 0, len(locs))
	pos := make(map[int]int, len(locs))
	for _, loc := range locs {
		if _, ok := pos[loc]; ok {
			continue
		}
		pos[loc] = len(unique)
		unique = append(unique, loc)
	}
	return unique, pos
}

// distanceFactor converts response distances to meters. Explicit km/mi units
// scale directly; for meter requests a response whose largest finite value is
// below 20 is taken to be kilometers (some deployments ignore the units
// field) and scaled up.
func distanceFactor(units string, distances [][]*float64) float64 {
	switch units {
	case "km":
		return 1000
	case "mi":
		return 1609.344
	}
	maxFinite := 0.0
	for _, row := range distances {
		for _, cell := range row {
			if cell != nil && *cell > maxFinite {
				maxFinite = *cell
			}
		}
	}
	if maxFinite > 0 && maxFinite < 20 {
		return 1000
	}
	return 1
}
