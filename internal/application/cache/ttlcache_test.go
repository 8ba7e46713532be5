package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/application/cache"
	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

func TestTTLCache_SetAndGet(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.New(60*time.Second, 10, clock)

	// Act
	c.Set("a", 42)
	v, ok := c.Get("a")

	// Assert
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTTLCache_ExpiryRemovesEntry(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.New(60*time.Second, 10, clock)
	c.Set("a", "value")

	// Act - advance past the TTL
	clock.Advance(61 * time.Second)
	_, ok := c.Get("a")

	// Assert
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_FIFOEvictionAtCapacity(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.New(time.Minute, 3, clock)
	c.Set("first", 1)
	c.Set("second", 2)
	c.Set("third", 3)

	// Act - the fourth insert evicts the oldest
	c.Set("fourth", 4)

	// Assert
	_, ok := c.Get("first")
	assert.False(t, ok)
	for _, key := range []string{"second", "third", "fourth"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "expected %q to survive eviction", key)
	}
}

func TestTTLCache_GetOrComputeCachesValue(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.New(time.Minute, 10, clock)
	calls := 0

	builder := func(ctx context.Context) (interface{}, error) {
		calls++
		return "built", nil
	}

	// Act
	first, err1 := c.GetOrCompute(context.Background(), "k", builder)
	second, err2 := c.GetOrCompute(context.Background(), "k", builder)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, "built", first)
	assert.Equal(t, "built", second)
	assert.Equal(t, 1, calls)
}

func TestTTLCache_GetOrComputeSingleFlight(t *testing.T) {
	// Arrange
	c := cache.New(time.Minute, 10, nil)
	var calls int32
	release := make(chan struct{})

	builder := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	// Act - 50 goroutines race on the same key
	var wg sync.WaitGroup
	results := make([]interface{}, 50)
	errs := make([]error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrCompute(context.Background(), "hot", builder)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// Assert - exactly one build, every caller sees its result
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}
}

func TestTTLCache_GetOrComputeErrorNotCached(t *testing.T) {
	// Arrange
	c := cache.New(time.Minute, 10, nil)
	calls := 0
	builder := func(ctx context.Context) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("upstream down")
		}
		return "recovered", nil
	}

	// Act
	_, err1 := c.GetOrCompute(context.Background(), "k", builder)
	v, err2 := c.GetOrCompute(context.Background(), "k", builder)

	// Assert - the failure was not cached, the retry rebuilt
	require.Error(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, 2, calls)
}

func TestTTLCache_PurgeDropsEverything(t *testing.T) {
	// Arrange
	c := cache.New(time.Minute, 10, nil)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	require.Equal(t, 5, c.Len())

	// Act
	c.Purge()

	// Assert
	assert.Equal(t, 0, c.Len())
}
