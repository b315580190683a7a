package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCacheContract runs a suite of tests to verify that a Cache implementation
// adheres to the defined interface contract.
func RunCacheContract(t *testing.T, cache Cache) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405.000000000")

	t.Run("Miss", func(t *testing.T) {
		val, ok, err := cache.Get(ctx, prefix+"-missing")
		require.NoError(t, err, "Get on a miss should not return error")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("Set and Get", func(t *testing.T) {
		key := prefix + "-hit"
		require.NoError(t, cache.Set(ctx, key, []byte(`{"temperature":15}`), time.Minute))

		val, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"temperature":15}`, string(val))
	})

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + "-overwrite"
		require.NoError(t, cache.Set(ctx, key, []byte("old"), time.Minute))
		require.NoError(t, cache.Set(ctx, key, []byte("new"), time.Minute))

		val, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "new", string(val))
	})
}
