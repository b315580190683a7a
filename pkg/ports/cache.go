package ports

import (
	"context"
	"time"
)

// Cache is a byte cache used to memoize external lookups.
type Cache interface {
	// Get returns the cached value. A miss is reported with ok == false and a nil error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key. A zero ttl uses the implementation default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
