// Package redis implements ports.Cache on top of Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "briefing:"
	defaultTTL    = 10 * time.Minute
)

// Cache implements ports.Cache using Redis strings with expiry.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Cache.
type Option func(*Cache)

// WithPrefix sets the key namespace (default "briefing:").
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithTTL sets the expiry used when Set is called with a zero ttl.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Cache {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{client: client, prefix: defaultPrefix, ttl: defaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}
