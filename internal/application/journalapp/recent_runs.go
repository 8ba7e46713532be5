// Package journalapp surfaces the solve journal: recent runs and per-engine
// usage counts for the operations endpoints and the CLI.
package journalapp

import (
	"context"
	"fmt"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/domain/journal"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 500
)

// RecentRunsQuery asks for the newest journaled solve runs.
type RecentRunsQuery struct {
	Limit int
}

// RecentRunsResponse carries the newest runs, most recent first, plus the
// all-time per-engine run counts.
type RecentRunsResponse struct {
	Runs         []*journal.SolveRun `json:"runs"`
	EngineCounts map[string]int64    `json:"engine_counts"`
}

// RecentRunsHandler serves RecentRunsQuery from the journal repository.
type RecentRunsHandler struct {
	journal journal.Repository
}

func NewRecentRunsHandler(repo journal.Repository) *RecentRunsHandler {
	return &RecentRunsHandler{journal: repo}
}

func (h *RecentRunsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	q, ok := request.(*RecentRunsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecentRunsQuery")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	runs, err := h.journal.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent runs: %w", err)
	}
	counts, err := h.journal.CountByEngine(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs by engine: %w", err)
	}
	return &RecentRunsResponse{Runs: runs, EngineCounts: counts}, nil
}
