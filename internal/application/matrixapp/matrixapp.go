// Package matrixapp is the acquisition facade: it resolves the named adapter
// from the registry and memoizes results in the matrix cache keyed by the
// request fingerprint.
package matrixapp

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/routing-go/internal/application/cache"
	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// MatrixMetrics receives adapter invocation observations. The prometheus
// collector implements it; nil disables recording.
type MatrixMetrics interface {
	RecordMatrixBuild(adapter, status string, seconds float64)
	RecordMatrixCacheLookup(adapter string, hit bool)
}

// ComputeMatrixCommand asks the named adapter for a distance/duration matrix.
type ComputeMatrixCommand struct {
	Request *matrix.Request
}

// ComputeMatrixResponse carries the computed matrix and the resolved adapter.
type ComputeMatrixResponse struct {
	Adapter string
	Mode    string
	Matrix  *matrix.Matrix
}

// ComputeMatrixHandler resolves the adapter and serves results through the
// matrix cache so identical requests inside the TTL hit the provider once.
type ComputeMatrixHandler struct {
	providers *registry.Registry[matrix.Provider]
	cache     *cache.TTLCache
	metrics   MatrixMetrics
}

// NewComputeMatrixHandler creates the handler. cache may be nil to disable
// memoization, metrics may be nil to disable recording.
func NewComputeMatrixHandler(providers *registry.Registry[matrix.Provider], matrixCache *cache.TTLCache, metrics MatrixMetrics) *ComputeMatrixHandler {
	return &ComputeMatrixHandler{providers: providers, cache: matrixCache, metrics: metrics}
}

// Handle executes the ComputeMatrixCommand.
func (h *ComputeMatrixHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ComputeMatrixCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ComputeMatrixCommand")
	}

	req := cmd.Request
	if req == nil {
		return nil, shared.NewInputError("request", "request body is required")
	}
	if req.Adapter == "" {
		return nil, shared.NewInputError("adapter", "adapter name is required")
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	provider, err := h.providers.Get(req.Adapter)
	if err != nil {
		if !h.providers.Has(req.Adapter) {
			return nil, shared.NewInputError("adapter", err.Error())
		}
		return nil, fmt.Errorf("failed to initialize adapter %q: %w", req.Adapter, err)
	}

	built := false
	compute := func(ctx context.Context) (interface{}, error) {
		built = true
		start := time.Now()
		m, computeErr := provider.Compute(ctx, req.Origins, req.Destinations, req.Mode, req.Parameters)
		if h.metrics != nil {
			status := "success"
			if computeErr != nil {
				status = "error"
			}
			h.metrics.RecordMatrixBuild(req.Adapter, status, time.Since(start).Seconds())
		}
		return m, computeErr
	}

	var value interface{}
	if h.cache != nil {
		value, err = h.cache.GetOrCompute(ctx, req.Fingerprint(), compute)
		if h.metrics != nil {
			// Joining an in-flight build counts as a hit: this request did
			// not invoke the provider.
			h.metrics.RecordMatrixCacheLookup(req.Adapter, !built)
		}
	} else {
		value, err = compute(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compute matrix via %q: %w", req.Adapter, err)
	}

	result, ok := value.(*matrix.Matrix)
	if !ok || result == nil {
		return nil, fmt.Errorf("adapter %q returned no matrix", req.Adapter)
	}
	return &ComputeMatrixResponse{Adapter: req.Adapter, Mode: req.Mode, Matrix: result}, nil
}
