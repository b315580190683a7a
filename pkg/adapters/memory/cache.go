// Package memory provides an in-process implementation of ports.Cache.
package memory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultMaxSize = 256
	defaultTTL     = 10 * time.Minute
)

type entry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// Cache implements ports.Cache with a size bounded LRU. Entries expire
// lazily on read. Safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	now     func() time.Time
}

// Option configures the Cache.
type Option func(*Cache)

// WithTTL sets the default time-to-live of entries stored with a zero ttl.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates a cache holding at most size entries (256 when size <= 0).
func NewCache(size int, opts ...Option) *Cache {
	if size <= 0 {
		size = defaultMaxSize
	}
	// lru.New only fails on a non-positive size, guarded above.
	entries, _ := lru.New[string, entry](size)
	c := &Cache{entries: entries, ttl: defaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached value. Expired entries are evicted and
// reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(e.storedAt) > e.ttl {
		c.entries.Remove(key)
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set stores a copy of value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	v := make([]byte, len(value))
	copy(v, value)
	c.entries.Add(key, entry{value: v, storedAt: c.now(), ttl: ttl})
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	return c.entries.Len()
}
