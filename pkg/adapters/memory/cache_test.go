package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/briefing/pkg/adapters/memory"
	"github.com/aretw0/briefing/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_Contract(t *testing.T) {
	ports.RunCacheContract(t, memory.NewCache(16))
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	cache := memory.NewCache(16, memory.WithTTL(time.Minute), memory.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, cache.Set(ctx, "default", []byte("b"), 0))

	now = now.Add(30 * time.Second)

	_, ok, err := cache.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "entry past its own ttl expires")

	val, ok, err := cache.Get(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok, "zero ttl uses the cache default")
	assert.Equal(t, "b", string(val))
}

func TestMemoryCache_Eviction(t *testing.T) {
	cache := memory.NewCache(2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0))
	}

	assert.Equal(t, 2, cache.Len())
	_, ok, _ := cache.Get(ctx, "k0")
	assert.False(t, ok, "least recently used entry is evicted")
}

func TestMemoryCache_Isolation(t *testing.T) {
	cache := memory.NewCache(4)
	ctx := context.Background()

	buf := []byte("original")
	require.NoError(t, cache.Set(ctx, "k", buf, 0))
	buf[0] = 'X'

	got, _, _ := cache.Get(ctx, "k")
	assert.Equal(t, "original", string(got))
}
