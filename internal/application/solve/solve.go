package solve

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/routing-go/internal/application/common"
	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/application/requestid"
	"github.com/andrescamacho/routing-go/internal/domain/journal"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// SolveCommand asks the dispatch pipeline to solve one routing request.
type SolveCommand struct {
	Request *solver.Request
}

// SolveResponse carries the engine result and the id assigned to the run.
type SolveResponse struct {
	RequestID string
	Routes    *solver.Routes
}

// SolveMetrics receives engine invocation observations. The prometheus
// collector implements it; a nil recorder disables recording.
type SolveMetrics interface {
	RecordSolve(engine, status string, seconds float64)
}

// SolveHandler drives a request through normalize, engine, enrich, journal.
type SolveHandler struct {
	engines  *registry.Registry[solver.Engine]
	enricher *Enricher
	runs     journal.Repository
	metrics  SolveMetrics
	clock    shared.Clock
}

// NewSolveHandler creates the dispatch handler. runs and metrics may be nil;
// a nil clock falls back to the real clock.
func NewSolveHandler(
	engines *registry.Registry[solver.Engine],
	enricher *Enricher,
	runs journal.Repository,
	metrics SolveMetrics,
	clock shared.Clock,
) *SolveHandler {
	if enricher == nil {
		enricher = NewEnricher(0)
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SolveHandler{
		engines:  engines,
		enricher: enricher,
		runs:     runs,
		metrics:  metrics,
		clock:    clock,
	}
}

// Handle executes the SolveCommand. Errors are wrapped with the request id
// so logs and journal rows correlate.
func (h *SolveHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SolveCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SolveCommand")
	}

	id := requestid.FromContext(ctx)
	if id == "" {
		id = requestid.New()
		ctx = requestid.WithRequestID(ctx, id)
	}

	routes, err := h.solve(ctx, id, cmd.Request)
	if err != nil {
		return nil, fmt.Errorf("solve %s: %w", id, err)
	}
	return &SolveResponse{RequestID: id, Routes: routes}, nil
}

func (h *SolveHandler) solve(ctx context.Context, id string, req *solver.Request) (*solver.Routes, error) {
	if req == nil {
		return nil, shared.NewInputError("request", "request body is required")
	}

	eng, err := h.engines.Get(req.Engine)
	if err != nil {
		if !h.engines.Has(req.Engine) {
			return nil, shared.NewInputError("solver", err.Error())
		}
		return nil, fmt.Errorf("failed to initialize engine %q: %w", req.Engine, err)
	}

	inst, err := Normalize(req)
	if err != nil {
		return nil, err
	}

	if err := requireInputs(eng, inst); err != nil {
		return nil, err
	}

	started := h.clock.Now()
	routes, err := h.invoke(ctx, eng, inst)
	elapsed := h.clock.Now().Sub(started)
	if h.metrics != nil {
		status := solver.StatusSuccess
		if err != nil {
			status = solver.StatusError
		}
		h.metrics.RecordSolve(eng.Name(), status, elapsed.Seconds())
	}
	if err != nil {
		return nil, err
	}

	if inst.Matrix != nil && !inst.Matrix.IsEmpty() {
		h.enricher.Enrich(routes, inst)
	}

	h.journalRun(ctx, id, eng.Name(), inst, routes, elapsed)
	return routes, nil
}

// requireInputs enforces the engine's input mode after normalization: matrix
// engines need a matrix (given or auto-built), coordinate engines accept
// either waypoints or a matrix.
func requireInputs(eng solver.Engine, inst *solver.Instance) error {
	hasMatrix := inst.Matrix != nil && !inst.Matrix.IsEmpty()
	if eng.Capabilities().CoordinateMode {
		if !hasMatrix && len(inst.Waypoints) == 0 {
			return shared.NewInputError("waypoints", fmt.Sprintf(
				"engine %q routes coordinates; provide waypoints or a matrix", eng.Name()))
		}
		return nil
	}
	if !hasMatrix {
		return shared.NewInputError("matrix", fmt.Sprintf(
			"matrix is required for engine %q; provide matrix or planar waypoints", eng.Name()))
	}
	return nil
}

// invoke runs the engine under its wall-clock budget. A panic inside an
// engine surfaces as an EngineError instead of tearing down the request.
func (h *SolveHandler) invoke(ctx context.Context, eng solver.Engine, inst *solver.Instance) (routes *solver.Routes, err error) {
	budget := time.Duration(inst.Options.EffectiveTimeLimit()) * time.Second
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			routes = nil
			err = shared.NewEngineError(eng.Name(), fmt.Sprintf("engine panicked: %v", r))
		}
	}()
	return eng.Solve(ctx, inst)
}

// journalRun persists the run record. Journaling is best effort: failures
// log a warning and never fail the solve.
func (h *SolveHandler) journalRun(ctx context.Context, id, engine string, inst *solver.Instance, routes *solver.Routes, elapsed time.Duration) {
	if h.runs == nil {
		return
	}
	run := &journal.SolveRun{
		RequestID:     id,
		Engine:        engine,
		Status:        routes.Status,
		Message:       routes.Message,
		Waypoints:     inst.N,
		VehiclesUsed:  routes.VehiclesUsed(),
		TotalDistance: routes.TotalDistance,
		TotalDuration: routes.TotalDuration,
		SolveMillis:   elapsed.Milliseconds(),
		CreatedAt:     h.clock.Now(),
	}
	if err := h.runs.Save(ctx, run); err != nil {
		common.LoggerFromContext(ctx).Warnf("failed to journal solve run %s: %v", id, err)
	}
}
