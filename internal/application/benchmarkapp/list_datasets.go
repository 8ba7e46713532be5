// Package benchmarkapp answers benchmark library queries: dataset discovery,
// file listing with solution pairing, instance loading and .vrp export.
package benchmarkapp

import (
	"context"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
)

// ListDatasetsQuery asks for the datasets under the data root.
type ListDatasetsQuery struct{}

// ListDatasetsResponse carries the discovered datasets.
type ListDatasetsResponse struct {
	Datasets []benchmark.Dataset `json:"datasets"`
}

// ListDatasetsHandler serves ListDatasetsQuery from the index.
type ListDatasetsHandler struct {
	index benchmark.Index
}

func NewListDatasetsHandler(index benchmark.Index) *ListDatasetsHandler {
	return &ListDatasetsHandler{index: index}
}

func (h *ListDatasetsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*ListDatasetsQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListDatasetsQuery")
	}
	datasets, err := h.index.Datasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return &ListDatasetsResponse{Datasets: datasets}, nil
}
