package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// MockMatrixProvider simulates a matrix adapter for testing. It serves a
// configured matrix and counts invocations so cache behavior is observable.
type MockMatrixProvider struct {
	mu sync.Mutex

	matrix *matrix.Matrix
	err    error
	calls  int
}

// NewMockMatrixProvider creates a provider that answers with m.
func NewMockMatrixProvider(m *matrix.Matrix) *MockMatrixProvider {
	return &MockMatrixProvider{matrix: m}
}

// FailWith makes every Compute return err.
func (p *MockMatrixProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Calls reports how many times Compute ran.
func (p *MockMatrixProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Compute implements matrix.Provider.
func (p *MockMatrixProvider) Compute(ctx context.Context, origins, destinations []shared.Coordinate, mode string, params matrix.Parameters) (*matrix.Matrix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.matrix, nil
}
