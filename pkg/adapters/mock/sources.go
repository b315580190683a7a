// Package mock provides deterministic in-memory weather and headline sources.
// They are the default sources of the briefing agent and the fixtures of
// most tests.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/briefing/pkg/ports"
)

// DefaultReadingKey is the table entry used for unknown locations.
const DefaultReadingKey = "Default"

// FallbackTopic is the headline list used for unknown topics.
const FallbackTopic = "world"

var readings = map[string]ports.WeatherReading{
	"New York":        {Temperature: 72, Condition: "Partly Cloudy"},
	"London":          {Temperature: 15, Condition: "Rainy"},
	"Tokyo":           {Temperature: 25, Condition: "Sunny"},
	"San Francisco":   {Temperature: 18, Condition: "Foggy"},
	DefaultReadingKey: {Temperature: 20, Condition: "Clear"},
}

var headlines = map[string][]string{
	"technology": {
		"AI Breakthrough: New Language Model Achieves Human-Level Performance",
		"Tech Giants Report Strong Q3 Earnings Despite Market Volatility",
		"Quantum Computing Milestone Reached by Leading Research Team",
	},
	"world": {
		"Global Climate Summit Announces New Sustainability Initiatives",
		"International Trade Agreements Show Positive Economic Impact",
		"Space Agency Successfully Launches New Mars Exploration Mission",
	},
	"business": {
		"Stock Markets Reach New Heights Amid Economic Recovery",
		"Renewable Energy Sector Sees Record Investment Growth",
		"Cryptocurrency Market Shows Signs of Stabilization",
	},
}

// DefaultReading returns the reading reported for locations that are not in
// the table, labelled with location.
func DefaultReading(location string) ports.WeatherReading {
	r := readings[DefaultReadingKey]
	r.Location = location
	return r
}

// Weather is a table driven ports.WeatherSource. Unknown locations get the
// default reading. Lookups are case-sensitive.
type Weather struct {
	mu        sync.Mutex
	overrides map[string]ports.WeatherReading
	failures  map[string]error
	calls     int
}

// NewWeather creates a weather source backed by the built-in table.
func NewWeather() *Weather {
	return &Weather{
		overrides: make(map[string]ports.WeatherReading),
		failures:  make(map[string]error),
	}
}

// Set overrides the reading of a location.
func (w *Weather) Set(location string, temperature int, condition string) *Weather {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.overrides[location] = ports.WeatherReading{Location: location, Temperature: temperature, Condition: condition}
	return w
}

// FailFor makes lookups of location return err.
func (w *Weather) FailFor(location string, err error) *Weather {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures[location] = err
	return w
}

// Calls returns the number of lookups served.
func (w *Weather) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

func (w *Weather) Weather(ctx context.Context, location string) (ports.WeatherReading, error) {
	if err := ctx.Err(); err != nil {
		return ports.WeatherReading{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++

	if err, ok := w.failures[location]; ok {
		return ports.WeatherReading{}, err
	}
	if r, ok := w.overrides[location]; ok {
		return r, nil
	}
	r, ok := readings[location]
	if !ok {
		return DefaultReading(location), nil
	}
	r.Location = location
	return r, nil
}

// Headlines is a table driven ports.HeadlineSource. Topics are matched
// case-insensitively and unknown topics get the FallbackTopic list.
type Headlines struct {
	mu       sync.Mutex
	failures map[string]error
	calls    int
}

// NewHeadlines creates a headline source backed by the built-in table.
func NewHeadlines() *Headlines {
	return &Headlines{failures: make(map[string]error)}
}

// FailFor makes lookups of topic return err.
func (h *Headlines) FailFor(topic string, err error) *Headlines {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[strings.ToLower(topic)] = err
	return h
}

// Calls returns the number of lookups served.
func (h *Headlines) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func (h *Headlines) Headlines(ctx context.Context, topic string, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++

	key := strings.ToLower(topic)
	if err, ok := h.failures[key]; ok {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("negative headline count %d", count)
	}
	return FallbackHeadlines(key, count), nil
}

// FallbackHeadlines returns the first count headlines of topic, or of the
// FallbackTopic list when topic is unknown.
func FallbackHeadlines(topic string, count int) []string {
	list, ok := headlines[strings.ToLower(topic)]
	if !ok {
		list = headlines[FallbackTopic]
	}
	if count > len(list) {
		count = len(list)
	}
	if count < 0 {
		count = 0
	}
	out := make([]string, count)
	copy(out, list[:count])
	return out
}

// Topics returns the topics present in the table.
func Topics() []string {
	return []string{"technology", "world", "business"}
}
