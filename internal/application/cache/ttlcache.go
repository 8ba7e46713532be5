// Package cache implements the in-process TTL cache shared by the matrix
// pipeline, the benchmark index and the provider HTTP layer. Entries expire
// after a fixed duration and the cache holds at most maxSize entries,
// evicting in insertion order when full.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// Builder computes the value for a key on a cache miss.
type Builder func(ctx context.Context) (interface{}, error)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

type inflight struct {
	done  chan struct{}
	value interface{}
	err   error
}

// TTLCache is a mutex-guarded key/value cache with a per-entry time to live
// and FIFO eviction. GetOrCompute collapses concurrent misses on the same key
// into a single builder call.
type TTLCache struct {
	ttl     time.Duration
	maxSize int
	clock   shared.Clock

	mu       sync.Mutex
	entries  map[string]entry
	order    []string // insertion order, oldest first
	building map[string]*inflight
}

// New creates a cache. maxSize <= 0 means unbounded; a nil clock falls back
// to the real clock.
func New(ttl time.Duration, maxSize int, clock shared.Clock) *TTLCache {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &TTLCache{
		ttl:      ttl,
		maxSize:  maxSize,
		clock:    clock,
		entries:  make(map[string]entry),
		building: make(map[string]*inflight),
	}
}

// Get returns the cached value for key. Expired entries are removed on the
// way out and reported as misses.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *TTLCache) getLocked(key string) (interface{}, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		c.removeLocked(key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key, evicting the oldest entry when the cache is
// at capacity. Re-setting an existing key refreshes its TTL but keeps its
// original eviction slot.
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *TTLCache) setLocked(key string, value interface{}) {
	if _, exists := c.entries[key]; !exists {
		if c.maxSize > 0 && len(c.entries) >= c.maxSize {
			c.evictOldestLocked()
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
}

// GetOrCompute returns the cached value for key, or runs builder to produce
// it. Concurrent callers on the same key share one builder invocation and its
// result. Builder errors are returned to every waiter and never cached.
func (c *TTLCache) GetOrCompute(ctx context.Context, key string, builder Builder) (interface{}, error) {
	c.mu.Lock()
	if v, ok := c.getLocked(key); ok {
		c.mu.Unlock()
		return v, nil
	}
	if fl, ok := c.building[key]; ok {
		c.mu.Unlock()
		select {
		case <-fl.done:
			return fl.value, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	fl := &inflight{done: make(chan struct{})}
	c.building[key] = fl
	c.mu.Unlock()

	value, err := builder(ctx)

	c.mu.Lock()
	delete(c.building, key)
	if err == nil {
		c.setLocked(key, value)
	}
	c.mu.Unlock()

	fl.value = value
	fl.err = err
	close(fl.done)
	return value, err
}

// Remove deletes a key.
func (c *TTLCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

// Len returns the number of live (non-expired) entries.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	n := 0
	for _, e := range c.entries {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

// Purge drops every entry.
func (c *TTLCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.order = c.order[:0]
}

func (c *TTLCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *TTLCache) evictOldestLocked() {
	for len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.entries[oldest]; ok {
			delete(c.entries, oldest)
			return
		}
	}
}
