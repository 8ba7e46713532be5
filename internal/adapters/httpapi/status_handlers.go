package httpapi

import (
	"net/http"

	"github.com/andrescamacho/routing-go/internal/application/statusapp"
)

func (s *Server) handleListAdapters(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &statusapp.ListAdaptersQuery{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSolvers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &statusapp.ListSolversQuery{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &statusapp.CapabilitiesQuery{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, resp)
}

// healthBody is the liveness report.
type healthBody struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Engines       int    `json:"engines"`
	Adapters      int    `json:"adapters"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := &healthBody{Status: "ok", Version: s.version}
	if s.uptime != nil {
		body.UptimeSeconds = int64(s.uptime().Seconds())
	}

	if resp, err := s.mediator.Send(r.Context(), &statusapp.ListSolversQuery{}); err == nil {
		body.Engines = len(resp.(*statusapp.ListSolversResponse).Solvers)
	}
	if resp, err := s.mediator.Send(r.Context(), &statusapp.ListAdaptersQuery{}); err == nil {
		body.Adapters = len(resp.(*statusapp.ListAdaptersResponse).Adapters)
	}
	writeJSON(w, http.StatusOK, body)
}
