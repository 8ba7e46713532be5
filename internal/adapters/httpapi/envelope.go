// Package httpapi exposes the routing service over HTTP. Handlers decode the
// request, dispatch a command or query through the mediator, and encode the
// result; all routing decisions live in the application layer.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/andrescamacho/routing-go/internal/application/requestid"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// errorBody is the error envelope for every route.
type errorBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// okBody is the generic success envelope for routes that wrap their payload.
type okBody struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// decodeJSON reads the request body into v. Decode failures surface as input
// errors so the caller can pass them straight to writeError.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return shared.NewInputError("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	// The status line is already out; an encode failure here can only be
	// truncated output on a closed connection.
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, &okBody{Status: "success", Data: data})
}

// writeError maps a domain error onto its HTTP status and writes the error
// envelope. Unknown errors become opaque 500s.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := statusForError(err)
	writeErrorMessage(w, r, code, message)
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, code int, message string) {
	writeJSON(w, code, &errorBody{
		Status:    "error",
		Message:   message,
		RequestID: requestid.FromContext(r.Context()),
	})
}

// statusForError translates the typed domain errors into HTTP status codes.
// Input problems are 400, missing files 404, export collisions 409, upstream
// provider failures 502, engine failures 500.
func statusForError(err error) (int, string) {
	var (
		inputErr      *shared.InputError
		validationErr *shared.ValidationError
		notFoundErr   *shared.NotFoundError
		conflictErr   *shared.ConflictError
		matrixErr     *shared.MatrixRequestError
		keyErr        *shared.APIKeyMissingError
		infeasibleErr *shared.InfeasibleError
		stoppedErr    *shared.EngineStoppedError
		engineErr     *shared.EngineError
	)
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Error()
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Error()
	case errors.As(err, &conflictErr):
		return http.StatusConflict, conflictErr.Error()
	case errors.As(err, &matrixErr):
		return http.StatusBadGateway, matrixErr.Error()
	case errors.As(err, &keyErr):
		return http.StatusBadGateway, keyErr.Error()
	case errors.As(err, &infeasibleErr):
		return http.StatusInternalServerError, infeasibleErr.Error()
	case errors.As(err, &stoppedErr):
		return http.StatusInternalServerError, stoppedErr.Error()
	case errors.As(err, &engineErr):
		return http.StatusInternalServerError, engineErr.Error()
	default:
		return http.StatusInternalServerError, fmt.Sprintf("Internal error: %v", err)
	}
}
