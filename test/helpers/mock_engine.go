package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// MockEngine simulates a solver engine. It records the instances it was
// asked to solve and answers with a configured result.
type MockEngine struct {
	mu sync.Mutex

	name   string
	caps   solver.Capabilities
	routes *solver.Routes
	err    error
	solved []*solver.Instance
}

// NewMockEngine creates an engine answering with routes.
func NewMockEngine(name string, routes *solver.Routes) *MockEngine {
	return &MockEngine{name: name, routes: routes}
}

// FailWith makes every Solve return err.
func (e *MockEngine) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// SetCapabilities overrides the advertised capability sheet.
func (e *MockEngine) SetCapabilities(caps solver.Capabilities) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.caps = caps
}

// Solved returns the instances passed to Solve, in order.
func (e *MockEngine) Solved() []*solver.Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*solver.Instance(nil), e.solved...)
}

// Name implements solver.Engine.
func (e *MockEngine) Name() string { return e.name }

// Capabilities implements solver.Engine.
func (e *MockEngine) Capabilities() solver.Capabilities {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.caps
}

// Solve implements solver.Engine.
func (e *MockEngine) Solve(ctx context.Context, inst *solver.Instance) (*solver.Routes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.solved = append(e.solved, inst)
	if e.err != nil {
		return nil, e.err
	}
	return e.routes, nil
}
