package httpapi

import (
	"net/http"

	"github.com/andrescamacho/routing-go/internal/application/journalapp"
	"github.com/andrescamacho/routing-go/internal/application/solve"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// solveEnvelope mirrors the engine verdict at the top level so clients can
// check status without digging into the payload. Data repeats the full
// result, dropped nodes and per-route breakdown included.
type solveEnvelope struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Data      *solver.Routes `json:"data"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solver.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.mediator.Send(r.Context(), &solve.SolveCommand{Request: &req})
	if err != nil {
		writeError(w, r, err)
		return
	}

	result := resp.(*solve.SolveResponse)
	writeJSON(w, http.StatusOK, &solveEnvelope{
		Status:    result.Routes.Status,
		Message:   result.Routes.Message,
		RequestID: result.RequestID,
		Data:      result.Routes,
	})
}

func (s *Server) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.mediator.Send(r.Context(), &journalapp.RecentRunsQuery{Limit: limit})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, resp)
}
