// Package cache decorates weather and headline sources with a ports.Cache.
//
// Values are stored as JSON. Cache errors are logged and never fail the
// lookup: the decorated source is asked instead.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/briefing/internal/logging"
	"github.com/aretw0/briefing/pkg/ports"
)

type options struct {
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a cached source.
type Option func(*options)

// WithTTL sets the lifetime of cached lookups. Zero uses the cache default.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Weather is a cached ports.WeatherSource.
type Weather struct {
	next  ports.WeatherSource
	cache ports.Cache
	opts  options
}

// NewWeather wraps next with cache.
func NewWeather(next ports.WeatherSource, cache ports.Cache, opts ...Option) *Weather {
	return &Weather{next: next, cache: cache, opts: newOptions(opts)}
}

func (w *Weather) Weather(ctx context.Context, location string) (ports.WeatherReading, error) {
	key := "weather:" + strings.ToLower(location)

	var reading ports.WeatherReading
	if lookup(ctx, w.cache, key, &reading, w.opts.logger) {
		return reading, nil
	}

	reading, err := w.next.Weather(ctx, location)
	if err != nil {
		return ports.WeatherReading{}, err
	}
	store(ctx, w.cache, key, reading, w.opts)
	return reading, nil
}

// Headlines is a cached ports.HeadlineSource.
type Headlines struct {
	next  ports.HeadlineSource
	cache ports.Cache
	opts  options
}

// NewHeadlines wraps next with cache.
func NewHeadlines(next ports.HeadlineSource, cache ports.Cache, opts ...Option) *Headlines {
	return &Headlines{next: next, cache: cache, opts: newOptions(opts)}
}

func (h *Headlines) Headlines(ctx context.Context, topic string, count int) ([]string, error) {
	key := fmt.Sprintf("news:%s:%d", strings.ToLower(topic), count)

	var headlines []string
	if lookup(ctx, h.cache, key, &headlines, h.opts.logger) {
		return headlines, nil
	}

	headlines, err := h.next.Headlines(ctx, topic, count)
	if err != nil {
		return nil, err
	}
	store(ctx, h.cache, key, headlines, h.opts)
	return headlines, nil
}

func lookup(ctx context.Context, c ports.Cache, key string, out any, logger *slog.Logger) bool {
	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		logger.Warn("cache get failed", "key", key, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Warn("cache entry is corrupt", "key", key, "err", err)
		return false
	}
	logger.Debug("cache hit", "key", key)
	return true
}

func store(ctx context.Context, c ports.Cache, key string, v any, o options) {
	raw, err := json.Marshal(v)
	if err != nil {
		o.logger.Warn("cache encode failed", "key", key, "err", err)
		return
	}
	if err := c.Set(ctx, key, raw, o.ttl); err != nil {
		o.logger.Warn("cache set failed", "key", key, "err", err)
	}
}
