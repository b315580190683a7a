package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/briefing"
	"github.com/aretw0/briefing/internal/config"
	"github.com/aretw0/briefing/pkg/adapters/cache"
	"github.com/aretw0/briefing/pkg/adapters/genai"
	"github.com/aretw0/briefing/pkg/adapters/memory"
	"github.com/aretw0/briefing/pkg/adapters/mock"
	"github.com/aretw0/briefing/pkg/adapters/redis"
	"github.com/aretw0/briefing/pkg/observability"
	"github.com/aretw0/briefing/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Environment is an agent wired from the configuration together with the
// resources it owns.
type Environment struct {
	Agent    *briefing.Agent
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Logger   *slog.Logger
	closers  []io.Closer
}

// Close releases the resources opened by NewEnvironment.
func (e *Environment) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewEnvironment builds the agent described by cfg: mock sources behind the
// configured cache, the configured generator, metrics and logging hooks.
// Extra options are applied last.
func NewEnvironment(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...briefing.Option) (*Environment, error) {
	env := &Environment{
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}
	env.Metrics = observability.MustNewMetrics(env.Registry)

	var weather ports.WeatherSource = mock.NewWeather()
	var headlines ports.HeadlineSource = mock.NewHeadlines()

	store, err := createCache(ctx, cfg.Cache, env)
	if err != nil {
		return nil, err
	}
	if store != nil {
		cacheOpts := []cache.Option{cache.WithTTL(cfg.Cache.TTL.Std()), cache.WithLogger(logger)}
		weather = cache.NewWeather(weather, store, cacheOpts...)
		headlines = cache.NewHeadlines(headlines, store, cacheOpts...)
	}

	opts := []briefing.Option{
		briefing.WithLogger(logger),
		briefing.WithLifecycleHooks(observability.CombineHooks(
			env.Metrics.Hooks(),
			observability.LoggingHooks(logger),
		)),
		briefing.WithWeatherSource(weather),
		briefing.WithHeadlineSource(headlines),
		briefing.WithTaskTimeout(cfg.Tasks.Timeout.Std()),
		briefing.WithMaxTicks(cfg.Tasks.MaxTicks),
		briefing.WithDefaults(cfg.Defaults.Location, cfg.Defaults.Topic, cfg.Defaults.Count),
	}
	if cfg.Tasks.Strict {
		opts = append(opts, briefing.WithStrictSources())
	}

	if cfg.Generator.Backend == config.GeneratorGenAI {
		var genOpts []genai.Option
		if cfg.Generator.Model != "" {
			genOpts = append(genOpts, genai.WithModel(cfg.Generator.Model))
		}
		gen, err := genai.New(ctx, cfg.Generator.APIKey, genOpts...)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("error initializing generator: %w", err)
		}
		opts = append(opts, briefing.WithGenerator(gen))
	}

	agent, err := briefing.New(append(opts, extra...)...)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("error initializing agent: %w", err)
	}
	env.Agent = agent
	return env, nil
}

func createCache(ctx context.Context, cfg config.CacheConfig, env *Environment) (ports.Cache, error) {
	switch cfg.Backend {
	case config.CacheMemory:
		return memory.NewCache(cfg.Size, memory.WithTTL(cfg.TTL.Std())), nil
	case config.CacheRedis:
		c := redis.New(cfg.Address, redis.WithTTL(cfg.TTL.Std()))
		if err := c.Ping(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("redis cache at %s: %w", cfg.Address, err)
		}
		env.closers = append(env.closers, c)
		return c, nil
	default:
		return nil, nil
	}
}
