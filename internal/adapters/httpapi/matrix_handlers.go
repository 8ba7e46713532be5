package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrescamacho/routing-go/internal/application/matrixapp"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// matrixData is the payload under "data" for both matrix routes.
type matrixData struct {
	Matrix  *matrix.Matrix `json:"matrix"`
	Adapter string         `json:"adapter,omitempty"`
	Mode    string         `json:"mode,omitempty"`
}

func (s *Server) handleComputeMatrix(w http.ResponseWriter, r *http.Request) {
	var req matrix.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.mediator.Send(r.Context(), &matrixapp.ComputeMatrixCommand{Request: &req})
	if err != nil {
		writeError(w, r, err)
		return
	}

	result := resp.(*matrixapp.ComputeMatrixResponse)
	writeOK(w, &matrixData{Matrix: result.Matrix, Adapter: result.Adapter, Mode: result.Mode})
}

// orsMatrixBody is the coords-only request for the openrouteservice
// convenience route. Coordinates accept {lat,lon} objects or [lon,lat] pairs.
type orsMatrixBody struct {
	Origins      []shared.Coordinate `json:"origins"`
	Destinations []shared.Coordinate `json:"destinations,omitempty"`
	Mode         string              `json:"mode,omitempty"`
	Parameters   matrix.Parameters   `json:"parameters,omitempty"`
}

// handleORSMatrix forces the ors adapter and memoizes whole responses in the
// response cache, so a frontend polling the same coordinate set does not burn
// upstream quota.
func (s *Server) handleORSMatrix(w http.ResponseWriter, r *http.Request) {
	var body orsMatrixBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	req := &matrix.Request{
		Adapter:      "ors",
		Mode:         body.Mode,
		Origins:      body.Origins,
		Destinations: body.Destinations,
		Parameters:   body.Parameters,
	}
	if err := req.Normalize(); err != nil {
		writeError(w, r, err)
		return
	}

	compute := func(ctx context.Context) (interface{}, error) {
		resp, err := s.mediator.Send(ctx, &matrixapp.ComputeMatrixCommand{Request: req})
		if err != nil {
			return nil, err
		}
		result := resp.(*matrixapp.ComputeMatrixResponse)
		return &matrixData{Matrix: result.Matrix, Adapter: result.Adapter, Mode: result.Mode}, nil
	}

	var payload interface{}
	var err error
	if s.responseCache != nil {
		payload, err = s.responseCache.GetOrCompute(r.Context(), req.Fingerprint(), compute)
	} else {
		payload, err = compute(r.Context())
	}
	if err != nil {
		// An unregistered ors adapter means the credential was absent at
		// boot; report the configuration problem, not a bad request.
		var inputErr *shared.InputError
		if errors.As(err, &inputErr) && inputErr.Field == "adapter" {
			writeError(w, r, shared.NewAPIKeyMissingError("ors", "ORS_API_KEY"))
			return
		}
		writeError(w, r, err)
		return
	}
	writeOK(w, payload)
}
