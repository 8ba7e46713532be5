package matrixprovider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

const defaultMapboxURL = "https://api.mapbox.com"

// MapboxOptions configures the Mapbox Matrix API provider.
type MapboxOptions struct {
	Token   string
	BaseURL string
	Client  ClientOptions
}

// Mapbox queries the Mapbox Matrix API. Distances come back in meters and
// durations in seconds; null cells mark unreachable pairs and are clamped to
// the domain sentinels.
type Mapbox struct {
	token   string
	baseURL string
	client  *httpClient
}

// NewMapbox creates the provider. A missing token is an APIKeyMissingError so
// the bootstrap can skip the provider instead of failing.
func NewMapbox(opts MapboxOptions) (*Mapbox, error) {
	if opts.Token == "" {
		return nil, shared.NewAPIKeyMissingError("mapbox", "MAPBOX_TOKEN")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultMapboxURL
	}
	return &Mapbox{
		token:   opts.Token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(opts.Client),
	}, nil
}

func mapboxProfile(mode string) string {
	switch mode {
	case matrix.ModeWalking:
		return "walking"
	case matrix.ModeCycling:
		return "cycling"
	default:
		return "driving"
	}
}

// Compute implements matrix.Provider. The Matrix API takes one combined
// coordinate list with sources/destinations index selectors, so origins and
// destinations are concatenated and addressed by position.
func (m *Mapbox) Compute(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params matrix.Parameters) (*matrix.Matrix, error) {
	destinations = defaultDestinations(origins, destinations)
	if len(origins) == 0 {
		return nil, shared.NewInputError("origins", "at least one origin is required")
	}

	coords := make([]string, 0, len(origins)+len(destinations))
	for _, c := range origins {
		coords = append(coords, fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat))
	}
	for _, c := range destinations {
		coords = append(coords, fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat))
	}
	query := url.Values{}
	query.Set("sources", indexList(0, len(origins)))
	query.Set("destinations", indexList(len(origins), len(destinations)))
	query.Set("annotations", "distance,duration")
	query.Set("access_token", m.token)

	requestURL := fmt.Sprintf("%s/directions-matrix/v1/mapbox/%s/%s?%s",
		m.baseURL, mapboxProfile(mode), strings.Join(coords, ";"), query.Encode())

	var resp struct {
		Code      string       `json:"code"`
		Message   string       `json:"message"`
		Distances [][]*float64 `json:"distances"`
		Durations [][]*float64 `json:"durations"`
	}
	if err := m.client.getJSON(ctx, requestURL, nil, &resp); err != nil {
		var ue *upstreamError
		if errors.As(err, &ue) {
			return nil, shared.NewMatrixRequestError("mapbox", ue.StatusText(), ue.body)
		}
		return nil, shared.NewMatrixRequestError("mapbox", "", err.Error())
	}
	if resp.Code != "Ok" {
		message := resp.Message
		if message == "" {
			message = "matrix request failed"
		}
		return nil, shared.NewMatrixRequestError("mapbox", resp.Code, message)
	}
	if len(resp.Distances) != len(origins) {
		return nil, shared.NewMatrixRequestError("mapbox", "",
			fmt.Sprintf("expected %d distance rows, got %d", len(origins), len(resp.Distances)))
	}

	out := &matrix.Matrix{Distances: make([][]float64, len(origins))}
	if len(resp.Durations) == len(origins) {
		out.Durations = make([][]int64, len(origins))
	}
	for i := range resp.Distances {
		distRow := make([]float64, len(destinations))
		for j := range distRow {
			distRow[j] = metersCell(resp.Distances[i], j)
		}
		out.Distances[i] = distRow

		if out.Durations != nil {
			durRow := make([]int64, len(destinations))
			for j := range durRow {
				durRow[j] = secondsCell(resp.Durations[i], j)
			}
			out.Durations[i] = durRow
		}
	}
	if sameEndpoints(origins, destinations) {
		out.ZeroDiagonal()
	}
	return out, nil
}

func indexList(start, count int) string {
	parts := make([]string, count)
	for i := 0; i < count; i++ {
		parts[i] = strconv.Itoa(start + i)
	}
	return strings.Join(parts, ";")
}

// metersCell rounds a nullable distance cell, clamping nulls to the sentinel.
func metersCell(row []*float64, j int) float64 {
	if j >= len(row) || row[j] == nil {
		return matrix.UnreachableDistanceMeters
	}
	return math.Round(*row[j])
}

// secondsCell rounds a nullable duration cell, clamping nulls to the sentinel.
func secondsCell(row []*float64, j int) int64 {
	if j >= len(row) || row[j] == nil {
		return matrix.UnreachableDurationSecs
	}
	return int64(math.Round(*row[j]))
}
