// Package registry provides the named factory registries behind the pluggable
// matrix providers and solver engines. Construction is deferred: Get builds a
// fresh instance per call so plugins never share mutable state across requests.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory builds one instance of a plugin. Factories that cannot construct
// their plugin (for example a provider whose API key is absent) return an
// error from the call instead of failing at registration time.
type Factory[T any] func() (T, error)

// Registry is a concurrency-safe name-to-factory map. Names are
// case-insensitive and surrounding whitespace is ignored.
type Registry[T any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// New creates an empty registry. kind names what is being registered
// ("adapter", "solver") and appears in error messages.
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:      kind,
		factories: make(map[string]Factory[T]),
	}
}

// Register adds a factory under the given name. Registering a name twice is
// an error; replacing a plugin requires explicit intent, not a silent
// overwrite.
func (r *Registry[T]) Register(name string, factory Factory[T]) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("%s name cannot be empty", r.kind)
	}
	if factory == nil {
		return fmt.Errorf("%s %q factory cannot be nil", r.kind, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("%s %q is already registered", r.kind, key)
	}
	r.factories[key] = factory
	return nil
}

// Get constructs a fresh instance of the named plugin.
func (r *Registry[T]) Get(name string) (T, error) {
	var zero T
	key := normalize(name)

	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()

	if !ok {
		return zero, fmt.Errorf("%s %q is not registered", r.kind, key)
	}
	instance, err := factory()
	if err != nil {
		return zero, fmt.Errorf("failed to construct %s %q: %w", r.kind, key, err)
	}
	return instance, nil
}

// Has reports whether a name is registered.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[normalize(name)]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered factories.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
