package statusapp

import (
	"context"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// ListSolversQuery asks for the registered solver engine names.
type ListSolversQuery struct{}

// ListSolversResponse carries engine names in lexicographic order.
type ListSolversResponse struct {
	Solvers []string `json:"solvers"`
}

// ListSolversHandler serves ListSolversQuery from the engine registry.
type ListSolversHandler struct {
	engines *registry.Registry[solver.Engine]
}

func NewListSolversHandler(engines *registry.Registry[solver.Engine]) *ListSolversHandler {
	return &ListSolversHandler{engines: engines}
}

func (h *ListSolversHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*ListSolversQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListSolversQuery")
	}
	return &ListSolversResponse{Solvers: h.engines.Names()}, nil
}
