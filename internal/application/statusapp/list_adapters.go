// Package statusapp reports what the running service has plugged in: the
// registered matrix adapters, the registered solver engines, and the
// capability sheet describing what each one can consume and produce.
package statusapp

import (
	"context"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
)

// ListAdaptersQuery asks for the registered matrix adapter names.
type ListAdaptersQuery struct{}

// ListAdaptersResponse carries adapter names in lexicographic order.
type ListAdaptersResponse struct {
	Adapters []string `json:"adapters"`
}

// ListAdaptersHandler serves ListAdaptersQuery from the provider registry.
type ListAdaptersHandler struct {
	providers *registry.Registry[matrix.Provider]
}

func NewListAdaptersHandler(providers *registry.Registry[matrix.Provider]) *ListAdaptersHandler {
	return &ListAdaptersHandler{providers: providers}
}

func (h *ListAdaptersHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*ListAdaptersQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListAdaptersQuery")
	}
	return &ListAdaptersResponse{Adapters: h.providers.Names()}, nil
}
