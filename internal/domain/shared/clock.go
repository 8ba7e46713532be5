package shared

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock access so caches, the journal and retrying
// HTTP clients can be tested against a controlled time source.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock reads the system clock. Times are UTC so journal rows and cache
// stamps compare consistently across hosts.
type RealClock struct{}

// Now returns the current time in UTC.
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Sleep blocks for the given duration.
func (r *RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// NewRealClock creates the production clock.
func NewRealClock() Clock {
	return &RealClock{}
}

// MockClock is a manually driven clock for tests. It is safe for concurrent
// use: cache tests advance it while worker goroutines read it.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewMockClock creates a MockClock starting at start, or at the current time
// when start is the zero value.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{current: start}
}

// Now returns the mock's current time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Sleep advances the mock clock without blocking, so retry and TTL paths
// run instantly in tests.
func (m *MockClock) Sleep(d time.Duration) {
	m.Advance(d)
}

// Advance moves the mock clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// SetTime pins the mock clock to t.
func (m *MockClock) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}
