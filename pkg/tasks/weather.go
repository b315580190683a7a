package tasks

import (
	"context"
	"time"

	"github.com/aretw0/briefing/pkg/adapters/mock"
	"github.com/aretw0/briefing/pkg/domain"
	"github.com/aretw0/briefing/pkg/ports"
)

// WeatherTask gathers the current weather for the requested location.
type WeatherTask struct {
	memory
	source ports.WeatherSource
	opts   options
}

// NewWeatherTask creates a weather task reading from source. A nil source
// uses the built-in table.
func NewWeatherTask(source ports.WeatherSource, opts ...Option) *WeatherTask {
	if source == nil {
		source = mock.NewWeather()
	}
	return &WeatherTask{source: source, opts: newOptions(opts)}
}

func (t *WeatherTask) Name() string { return WeatherTaskName }

// Execute reads KeyLocation and publishes location, temperature, condition
// and timestamp.
func (t *WeatherTask) Execute(ctx context.Context, run domain.RunContext, _ domain.Inputs) domain.TaskResult {
	location := run.String(domain.KeyLocation, domain.DefaultLocation)
	log := t.opts.logger.With("task", WeatherTaskName, "location", location)
	log.Info("gathering weather data")

	reading, err := t.source.Weather(ctx, location)
	if ctx.Err() != nil {
		log.Warn("weather lookup abandoned", "err", ctx.Err())
		return domain.Fail("weather lookup abandoned: " + ctx.Err().Error())
	}
	if err != nil {
		if t.opts.strict {
			log.Warn("weather lookup failed", "err", err)
			return domain.Fail("weather lookup failed: " + err.Error())
		}
		log.Warn("weather lookup failed, using default reading", "err", err)
		reading = mock.DefaultReading(location)
		t.remember(ctx, "fallback", err.Error())
	} else {
		t.forget(ctx, "fallback")
	}
	if reading.Location == "" {
		reading.Location = location
	}

	payload := domain.Payload{
		"location":    reading.Location,
		"temperature": reading.Temperature,
		"condition":   reading.Condition,
		"timestamp":   t.opts.clock().Format(time.RFC3339),
	}
	if !t.remember(ctx, domain.SlotWeather, payload.Clone()) {
		return domain.Fail("weather lookup abandoned: " + ctx.Err().Error())
	}
	log.Debug("weather data collected", "temperature", reading.Temperature, "condition", reading.Condition)
	return domain.Succeed(payload)
}
