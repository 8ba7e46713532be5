package benchmarkapp

import (
	"context"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// FindPairQuery locates an instance and its same-stem solution by name.
type FindPairQuery struct {
	Dataset string
	Name    string
}

// FindPairResponse carries the located pair.
type FindPairResponse struct {
	Pair *benchmark.Pair `json:"pair"`
}

// FindPairHandler serves FindPairQuery from the index.
type FindPairHandler struct {
	index benchmark.Index
}

func NewFindPairHandler(index benchmark.Index) *FindPairHandler {
	return &FindPairHandler{index: index}
}

func (h *FindPairHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	q, ok := request.(*FindPairQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *FindPairQuery")
	}
	if q.Name == "" {
		return nil, shared.NewInputError("name", "instance name is required")
	}
	pair, err := h.index.FindPair(ctx, q.Dataset, q.Name)
	if err != nil {
		return nil, err
	}
	return &FindPairResponse{Pair: pair}, nil
}
