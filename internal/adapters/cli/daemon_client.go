package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DaemonClient provides a client interface to communicate with the daemon
// over HTTP.
type DaemonClient struct {
	baseURL    string
	httpClient *http.Client
	verbose    bool
}

// Response types (mirror the daemon's JSON payloads)

type RoutePayload struct {
	VehicleID     string   `json:"vehicle_id"`
	WaypointIDs   []string `json:"waypoint_ids"`
	NodeIndexes   []int    `json:"node_indexes,omitempty"`
	TotalDistance float64  `json:"total_distance"`
	TotalDuration *int64   `json:"total_duration"`
	TotalLoad     int64    `json:"total_load,omitempty"`
	EmissionsKg   *float64 `json:"emissions_kg,omitempty"`
}

type RoutesPayload struct {
	Status         string         `json:"status"`
	Message        string         `json:"message,omitempty"`
	Routes         []RoutePayload `json:"routes"`
	Dropped        []int          `json:"dropped,omitempty"`
	TotalDistance  float64        `json:"total_distance"`
	TotalDuration  *int64         `json:"total_duration,omitempty"`
	TotalEmissions *float64       `json:"total_emissions,omitempty"`
}

type SolveResult struct {
	Status    string          `json:"status"`
	Message   string          `json:"message,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Data      *RoutesPayload  `json:"data"`
	Raw       json.RawMessage `json:"-"`
}

type MatrixPayload struct {
	Distances [][]float64 `json:"distances"`
	Durations [][]int64   `json:"durations,omitempty"`
}

type MatrixResult struct {
	Matrix  *MatrixPayload  `json:"matrix"`
	Adapter string          `json:"adapter,omitempty"`
	Mode    string          `json:"mode,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

type DatasetInfo struct {
	Name  string `json:"name"`
	Files int    `json:"files"`
}

type DatasetsResult struct {
	Datasets []DatasetInfo   `json:"datasets"`
	Raw      json.RawMessage `json:"-"`
}

type FileInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Dataset   string `json:"dataset"`
	SizeBytes int64  `json:"size_bytes"`
	Kind      string `json:"kind"`
}

type FilesResult struct {
	Items  []FileInfo      `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Raw    json.RawMessage `json:"-"`
}

// ListFilesOptions narrows and pages the benchmark file listing.
type ListFilesOptions struct {
	Dataset string
	Query   string
	Exts    []string
	Kind    string
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

type FindResult struct {
	Instance *FileInfo       `json:"instance"`
	Solution *FileInfo       `json:"solution"`
	Raw      json.RawMessage `json:"-"`
}

type WaypointInfo struct {
	ID string `json:"id"`
}

type InstancePayload struct {
	Name        string         `json:"name"`
	Format      string         `json:"format"`
	Comment     string         `json:"comment,omitempty"`
	Waypoints   []WaypointInfo `json:"waypoints"`
	DepotIndex  int            `json:"depot_index"`
	NumVehicles int            `json:"num_vehicles"`
	Capacity    int64          `json:"capacity"`
	Matrix      *MatrixPayload `json:"matrix,omitempty"`
}

type LoadResult struct {
	Instance     *FileInfo        `json:"instance"`
	Solution     *FileInfo        `json:"solution"`
	InstancePath string           `json:"instance_path"`
	SolutionPath string           `json:"solution_path,omitempty"`
	Data         *InstancePayload `json:"data"`
	Raw          json.RawMessage  `json:"-"`
}

type SolverCapabilityInfo struct {
	Name           string                     `json:"name"`
	CoordinateMode bool                       `json:"coordinate_mode"`
	SupportsDrop   bool                       `json:"supports_drop"`
	Problems       map[string]json.RawMessage `json:"problems"`
}

type AdapterCapabilityInfo struct {
	Name     string   `json:"name"`
	Provides []string `json:"provides"`
}

type CapabilitiesResult struct {
	Solvers  []SolverCapabilityInfo  `json:"solvers"`
	Adapters []AdapterCapabilityInfo `json:"adapters"`
	Raw      json.RawMessage         `json:"-"`
}

type RunInfo struct {
	RequestID     string    `json:"request_id"`
	Engine        string    `json:"engine"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	Waypoints     int       `json:"waypoints"`
	VehiclesUsed  int       `json:"vehicles_used"`
	TotalDistance float64   `json:"total_distance"`
	TotalDuration *int64    `json:"total_duration,omitempty"`
	SolveMillis   int64     `json:"solve_millis"`
	CreatedAt     time.Time `json:"created_at"`
}

type RunsResult struct {
	Runs         []RunInfo        `json:"runs"`
	EngineCounts map[string]int64 `json:"engine_counts"`
	Raw          json.RawMessage  `json:"-"`
}

type HealthResult struct {
	Status        string          `json:"status"`
	Version       string          `json:"version,omitempty"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Engines       int             `json:"engines"`
	Adapters      int             `json:"adapters"`
	Raw           json.RawMessage `json:"-"`
}

// APIError is a non-2xx daemon reply decoded from the error envelope.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("daemon replied %d: %s (request %s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("daemon replied %d: %s", e.StatusCode, e.Message)
}

// NewDaemonClient creates a new daemon client
func NewDaemonClient(addr string) *DaemonClient {
	return &DaemonClient{
		baseURL:    strings.TrimRight(addr, "/"),
		httpClient: &http.Client{},
		verbose:    verbose,
	}
}

// dataEnvelope is the {"status": ..., "data": ...} wrapper some routes use.
type dataEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func (c *DaemonClient) do(ctx context.Context, method, path string, query url.Values, body []byte) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.verbose {
		fmt.Fprintf(os.Stderr, "> %s %s\n", method, u)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach daemon at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
			apiErr.RequestID = envelope.RequestID
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return nil, apiErr
	}

	return raw, nil
}

func (c *DaemonClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return raw, nil
}

func (c *DaemonClient) postJSON(ctx context.Context, path string, body []byte, out interface{}) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return raw, nil
}

// unwrapData extracts the payload from a {"status", "data"} envelope.
func unwrapData(raw json.RawMessage, path string, out interface{}) error {
	var envelope dataEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("response from %s carries no data", path)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// Solve submits a solve request payload as-is
func (c *DaemonClient) Solve(ctx context.Context, payload []byte) (*SolveResult, error) {
	var result SolveResult
	raw, err := c.postJSON(ctx, "/solver", payload, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// ComputeMatrix submits a matrix request payload as-is
func (c *DaemonClient) ComputeMatrix(ctx context.Context, payload []byte) (*MatrixResult, error) {
	raw, err := c.do(ctx, http.MethodPost, "/distance-matrix", nil, payload)
	if err != nil {
		return nil, err
	}
	var result MatrixResult
	if err := unwrapData(raw, "/distance-matrix", &result); err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// ListDatasets lists the benchmark datasets
func (c *DaemonClient) ListDatasets(ctx context.Context) (*DatasetsResult, error) {
	var result DatasetsResult
	raw, err := c.getJSON(ctx, "/benchmarks", nil, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// ListFiles lists benchmark files with filters and paging
func (c *DaemonClient) ListFiles(ctx context.Context, opts ListFilesOptions) (*FilesResult, error) {
	query := url.Values{}
	if opts.Dataset != "" {
		query.Set("dataset", opts.Dataset)
	}
	if opts.Query != "" {
		query.Set("q", opts.Query)
	}
	if len(opts.Exts) > 0 {
		query.Set("exts", strings.Join(opts.Exts, ","))
	}
	if opts.Kind != "" {
		query.Set("kind", opts.Kind)
	}
	if opts.SortBy != "" {
		query.Set("sort", opts.SortBy)
	}
	if opts.SortDir != "" {
		query.Set("order", opts.SortDir)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var result FilesResult
	raw, err := c.getJSON(ctx, "/benchmarks/files", query, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// FindPair locates an instance file and its reference solution
func (c *DaemonClient) FindPair(ctx context.Context, name, dataset string) (*FindResult, error) {
	query := url.Values{}
	query.Set("name", name)
	if dataset != "" {
		query.Set("dataset", dataset)
	}

	var result FindResult
	raw, err := c.getJSON(ctx, "/benchmarks/find", query, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// LoadInstance parses a benchmark instance on the daemon
func (c *DaemonClient) LoadInstance(ctx context.Context, name, dataset string, computeMatrix bool) (*LoadResult, error) {
	query := url.Values{}
	query.Set("name", name)
	if dataset != "" {
		query.Set("dataset", dataset)
	}
	if !computeMatrix {
		query.Set("compute_matrix", "false")
	}

	var result LoadResult
	raw, err := c.getJSON(ctx, "/benchmarks/load", query, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// ListSolvers lists the registered engine names
func (c *DaemonClient) ListSolvers(ctx context.Context) ([]string, error) {
	var result struct {
		Solvers []string `json:"solvers"`
	}
	if _, err := c.getJSON(ctx, "/status/solvers", nil, &result); err != nil {
		return nil, err
	}
	return result.Solvers, nil
}

// ListAdapters lists the registered matrix adapter names
func (c *DaemonClient) ListAdapters(ctx context.Context) ([]string, error) {
	var result struct {
		Adapters []string `json:"adapters"`
	}
	if _, err := c.getJSON(ctx, "/status/adapters", nil, &result); err != nil {
		return nil, err
	}
	return result.Adapters, nil
}

// Capabilities fetches the engine and adapter capability sheets
func (c *DaemonClient) Capabilities(ctx context.Context) (*CapabilitiesResult, error) {
	raw, err := c.do(ctx, http.MethodGet, "/capabilities", nil, nil)
	if err != nil {
		return nil, err
	}
	var result CapabilitiesResult
	if err := unwrapData(raw, "/capabilities", &result); err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// RecentRuns fetches the newest journaled solve runs
func (c *DaemonClient) RecentRuns(ctx context.Context, limit int) (*RunsResult, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	raw, err := c.do(ctx, http.MethodGet, "/solver/runs", query, nil)
	if err != nil {
		return nil, err
	}
	var result RunsResult
	if err := unwrapData(raw, "/solver/runs", &result); err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// Health verifies daemon health
func (c *DaemonClient) Health(ctx context.Context) (*HealthResult, error) {
	var result HealthResult
	raw, err := c.getJSON(ctx, "/health", nil, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}
