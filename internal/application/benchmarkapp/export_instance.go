package benchmarkapp

import (
	"context"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// ExportInstanceQuery writes a canonical instance under the data root.
// Without Overwrite an existing file is a conflict, not a replacement.
type ExportInstanceQuery struct {
	Path      string
	Instance  *benchmark.Instance
	Overwrite bool
}

// ExportInstanceResponse reports where the file landed.
type ExportInstanceResponse struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}

// ExportInstanceHandler serializes and persists instances via the exporter.
type ExportInstanceHandler struct {
	exporter benchmark.Exporter
}

func NewExportInstanceHandler(exporter benchmark.Exporter) *ExportInstanceHandler {
	return &ExportInstanceHandler{exporter: exporter}
}

func (h *ExportInstanceHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	q, ok := request.(*ExportInstanceQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ExportInstanceQuery")
	}
	if q.Instance == nil {
		return nil, shared.NewInputError("instance", "instance body is required")
	}

	abs, size, err := h.exporter.Export(q.Instance, q.Path, q.Overwrite)
	if err != nil {
		return nil, err
	}
	return &ExportInstanceResponse{Path: abs, Size: size}, nil
}
