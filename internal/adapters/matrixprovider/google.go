package matrixprovider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

const defaultGoogleURL = "https://maps.googleapis.com"

// GoogleOptions configures the Google Distance Matrix provider.
type GoogleOptions struct {
	APIKey  string
	BaseURL string
	Client  ClientOptions
}

// Google queries the Google Distance Matrix API. Values arrive in meters and
// seconds; per-element statuses other than OK mark unreachable pairs.
type Google struct {
	apiKey  string
	baseURL string
	client  *httpClient
}

// NewGoogle creates the provider, failing with APIKeyMissingError when the
// key is absent.
func NewGoogle(opts GoogleOptions) (*Google, error) {
	if opts.APIKey == "" {
		return nil, shared.NewAPIKeyMissingError("google", "GOOGLE_API_KEY")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultGoogleURL
	}
	return &Google{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(opts.Client),
	}, nil
}

func googleMode(mode string) string {
	switch mode {
	case matrix.ModeWalking:
		return "walking"
	case matrix.ModeCycling:
		return "bicycling"
	default:
		return "driving"
	}
}

// Compute implements matrix.Provider.
func (g *Google) Compute(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params matrix.Parameters) (*matrix.Matrix, error) {
	destinations = defaultDestinations(origins, destinations)
	if len(origins) == 0 {
		return nil, shared.NewInputError("origins", "at least one origin is required")
	}

	requestURL := fmt.Sprintf(
		"%s/maps/api/distancematrix/json?origins=%s&destinations=%s&mode=%s&units=metric&key=%s",
		g.baseURL,
		url.QueryEscape(pipeJoined(origins)),
		url.QueryEscape(pipeJoined(destinations)),
		googleMode(mode), g.apiKey)

	var resp struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Rows         []struct {
			Elements []struct {
				Status   string `json:"status"`
				Distance struct {
					Value float64 `json:"value"`
				} `json:"distance"`
				Duration struct {
					Value float64 `json:"value"`
				} `json:"duration"`
			} `json:"elements"`
		} `json:"rows"`
	}
	if err := g.client.getJSON(ctx, requestURL, nil, &resp); err != nil {
		var ue *upstreamError
		if errors.As(err, &ue) {
			return nil, shared.NewMatrixRequestError("google", ue.StatusText(), ue.body)
		}
		return nil, shared.NewMatrixRequestError("google", "", err.Error())
	}
	if resp.Status != "OK" {
		message := resp.ErrorMessage
		if message == "" {
			message = "distance matrix request failed"
		}
		return nil, shared.NewMatrixRequestError("google", resp.Status, message)
	}
	if len(resp.Rows) != len(origins) {
		return nil, shared.NewMatrixRequestError("google", "",
			fmt.Sprintf("expected %d rows, got %d", len(origins), len(resp.Rows)))
	}

	out := &matrix.Matrix{
		Distances: make([][]float64, len(origins)),
		Durations: make([][]int64, len(origins)),
	}
	for i, row := range resp.Rows {
		distRow := make([]float64, len(destinations))
		durRow := make([]int64, len(destinations))
		for j := range distRow {
			if j >= len(row.Elements) || row.Elements[j].Status != "OK" {
				distRow[j] = matrix.UnreachableDistanceMeters
				durRow[j] = matrix.UnreachableDurationSecs
				continue
			}
			distRow[j] = math.Round(row.Elements[j].Distance.Value)
			durRow[j] = int64(math.Round(row.Elements[j].Duration.Value))
		}
		out.Distances[i] = distRow
		out.Durations[i] = durRow
	}
	if sameEndpoints(origins, destinations) {
		out.ZeroDiagonal()
	}
	return out, nil
}

func pipeJoined(points []shared.Coordinate) string {
	parts := make([]string, len(points))
	for i, c := range points {
		parts[i] = fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
	}
	return strings.Join(parts, "|")
}
