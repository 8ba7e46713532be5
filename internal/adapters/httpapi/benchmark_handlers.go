package httpapi

import (
	"net/http"

	"github.com/andrescamacho/routing-go/internal/application/benchmarkapp"
	"github.com/andrescamacho/routing-go/internal/domain/benchmark"
)

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &benchmarkapp.ListDatasetsQuery{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	query := &benchmarkapp.ListFilesQuery{
		Dataset: q.Get("dataset"),
		Query:   q.Get("q"),
		Exts:    csvParam(r, "exts"),
		Kind:    q.Get("kind"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("order"),
		Limit:   limit,
		Offset:  offset,
	}

	resp, err := s.mediator.Send(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// pairEnvelope flattens the located pair; solution stays null when the
// dataset ships no reference solution.
type pairEnvelope struct {
	Status   string               `json:"status"`
	Instance *benchmark.FileEntry `json:"instance"`
	Solution *benchmark.FileEntry `json:"solution"`
}

func (s *Server) handleFindPair(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.mediator.Send(r.Context(), &benchmarkapp.FindPairQuery{
		Dataset: q.Get("dataset"),
		Name:    q.Get("name"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair := resp.(*benchmarkapp.FindPairResponse).Pair
	writeJSON(w, http.StatusOK, &pairEnvelope{
		Status:   "success",
		Instance: pair.Instance,
		Solution: pair.Solution,
	})
}

// loadEnvelope carries the parsed instance plus the files it came from so a
// client can re-request or export without another find round trip.
type loadEnvelope struct {
	Status       string               `json:"status"`
	Instance     *benchmark.FileEntry `json:"instance"`
	Solution     *benchmark.FileEntry `json:"solution"`
	InstancePath string               `json:"instance_path"`
	SolutionPath string               `json:"solution_path,omitempty"`
	Data         *benchmark.Instance  `json:"data"`
}

func (s *Server) handleLoadInstance(w http.ResponseWriter, r *http.Request) {
	computeMatrix, err := boolParam(r, "compute_matrix", true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	resp, err := s.mediator.Send(r.Context(), &benchmarkapp.LoadInstanceQuery{
		Dataset:       q.Get("dataset"),
		Name:          q.Get("name"),
		ComputeMatrix: computeMatrix,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	result := resp.(*benchmarkapp.LoadInstanceResponse)
	envelope := &loadEnvelope{
		Status:       "success",
		Instance:     result.Pair.Instance,
		Solution:     result.Pair.Solution,
		InstancePath: result.Pair.Instance.Path,
		Data:         result.Instance,
	}
	if result.Pair.Solution != nil {
		envelope.SolutionPath = result.Pair.Solution.Path
	}
	writeJSON(w, http.StatusOK, envelope)
}

// exportBody is the write request for canonical instance export.
type exportBody struct {
	Path      string              `json:"path"`
	Instance  *benchmark.Instance `json:"instance"`
	Overwrite bool                `json:"overwrite,omitempty"`
}

func (s *Server) handleExportInstance(w http.ResponseWriter, r *http.Request) {
	var body exportBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.mediator.Send(r.Context(), &benchmarkapp.ExportInstanceQuery{
		Path:      body.Path,
		Instance:  body.Instance,
		Overwrite: body.Overwrite,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
