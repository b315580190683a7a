package ports

import (
	"context"
	"time"
)

// WeatherReading is a single weather observation.
type WeatherReading struct {
	Location    string `json:"location" mapstructure:"location"`
	Temperature int    `json:"temperature" mapstructure:"temperature"`
	Condition   string `json:"condition" mapstructure:"condition"`
}

// WeatherSource looks up the current weather for a location.
type WeatherSource interface {
	Weather(ctx context.Context, location string) (WeatherReading, error)
}

// HeadlineSource returns the top headlines of a topic, at most count items.
type HeadlineSource interface {
	Headlines(ctx context.Context, topic string, count int) ([]string, error)
}

// Generator turns a prompt into text (e.g. an LLM backend).
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Clock returns the current time. Injected so payload timestamps are testable.
type Clock func() time.Time
