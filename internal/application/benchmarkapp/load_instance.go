package benchmarkapp

import (
	"context"
	"fmt"
	"os"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// LoadInstanceQuery locates and parses a benchmark instance. ComputeMatrix
// controls whether the travel matrix is materialized; large instances list
// faster without the n-squared table.
type LoadInstanceQuery struct {
	Dataset       string
	Name          string
	ComputeMatrix bool
}

// LoadInstanceResponse carries the parsed instance and the files it came from.
type LoadInstanceResponse struct {
	Pair     *benchmark.Pair     `json:"pair"`
	Instance *benchmark.Instance `json:"instance"`
}

// LoadInstanceHandler finds the instance file via the index and decodes it
// with the format-sniffing loader.
type LoadInstanceHandler struct {
	index  benchmark.Index
	loader benchmark.Loader
}

func NewLoadInstanceHandler(index benchmark.Index, loader benchmark.Loader) *LoadInstanceHandler {
	return &LoadInstanceHandler{index: index, loader: loader}
}

func (h *LoadInstanceHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	q, ok := request.(*LoadInstanceQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *LoadInstanceQuery")
	}
	if q.Name == "" {
		return nil, shared.NewInputError("name", "instance name is required")
	}

	pair, err := h.index.FindPair(ctx, q.Dataset, q.Name)
	if err != nil {
		return nil, err
	}

	path, err := h.index.Resolve(pair.Instance.Path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instance %q: %w", pair.Instance.Path, err)
	}

	inst, err := h.loader.Parse(pair.Instance.Name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse instance %q: %w", pair.Instance.Name, err)
	}

	if q.ComputeMatrix {
		// Formats that fix their own travel-time convention attach the
		// matrix at parse time; for the rest travel time equals distance.
		if inst.Matrix == nil && inst.Size() > 0 {
			inst.Matrix = inst.EuclideanMatrix(1)
		}
	} else {
		inst.Matrix = nil
	}

	return &LoadInstanceResponse{Pair: pair, Instance: inst}, nil
}
