package benchmarkapp

import (
	"context"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
)

// File listing limits mirror the HTTP surface defaults.
const (
	defaultListLimit = 100
	maxListLimit     = 2000
)

// ListFilesQuery pages through one dataset's files.
type ListFilesQuery struct {
	Dataset string
	Query   string
	Exts    []string
	Kind    string
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

// FileItem is a file entry enriched with the path of its same-stem solution
// when the dataset ships one.
type FileItem struct {
	benchmark.FileEntry
	SolutionPath string `json:"solution_path,omitempty"`
}

// ListFilesResponse is one page of enriched entries.
type ListFilesResponse struct {
	Items  []FileItem `json:"items"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// ListFilesHandler serves ListFilesQuery from the index. Pair lookups for the
// solution-path enrichment are best effort; a dataset without solutions still
// lists cleanly.
type ListFilesHandler struct {
	index benchmark.Index
}

func NewListFilesHandler(index benchmark.Index) *ListFilesHandler {
	return &ListFilesHandler{index: index}
}

func (h *ListFilesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	q, ok := request.(*ListFilesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListFilesQuery")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	page, err := h.index.Files(ctx, benchmark.FileQuery{
		Dataset: q.Dataset,
		Query:   q.Query,
		Exts:    q.Exts,
		Kind:    q.Kind,
		SortBy:  q.SortBy,
		SortDir: q.SortDir,
		Limit:   limit,
		Offset:  q.Offset,
	})
	if err != nil {
		return nil, err
	}

	items := make([]FileItem, 0, len(page.Items))
	for _, entry := range page.Items {
		item := FileItem{FileEntry: entry}
		if pair, err := h.index.FindPair(ctx, q.Dataset, entry.Stem()); err == nil && pair.Solution != nil {
			item.SolutionPath = pair.Solution.Path
		}
		items = append(items, item)
	}

	return &ListFilesResponse{
		Items:  items,
		Total:  page.Total,
		Limit:  limit,
		Offset: q.Offset,
	}, nil
}
