// Package tasks holds the built-in briefing tasks: weather and news
// gathering, and synthesis of the final briefing text.
//
// Every task implements ports.Task and ports.Introspectable. Source errors
// are replaced by deterministic fallbacks unless the task is strict.
package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/briefing/internal/logging"
	"github.com/aretw0/briefing/pkg/ports"
)

// Task names, also used as the keys of the agent's task states.
const (
	WeatherTaskName   = "weather_agent"
	NewsTaskName      = "news_agent"
	SynthesisTaskName = "synthesizer_agent"
)

// TemplateGenerator is the generator label recorded when the built-in
// template produced the briefing.
const TemplateGenerator = "template"

type options struct {
	clock     ports.Clock
	logger    *slog.Logger
	generator ports.Generator
	strict    bool
}

// Option configures a task.
type Option func(*options)

// WithClock sets the clock used for payload timestamps.
func WithClock(clock ports.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGenerator sets the text generator used by the synthesis task.
// Other tasks ignore it.
func WithGenerator(g ports.Generator) Option {
	return func(o *options) {
		o.generator = g
	}
}

// Strict makes gathering tasks report source errors as Failure instead of
// substituting fallback data.
func Strict() Option {
	return func(o *options) {
		o.strict = true
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:  time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// memory is the diagnostic state a task keeps about its last execution.
// Writes from an execution whose context is done are dropped: the action
// has already reported that execution as failed.
type memory struct {
	mu    sync.RWMutex
	state map[string]any
}

func (m *memory) remember(ctx context.Context, kv ...any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	if m.state == nil {
		m.state = make(map[string]any)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m.state[key] = kv[i+1]
	}
	return true
}

func (m *memory) forget(ctx context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	for _, k := range keys {
		delete(m.state, k)
	}
}

// State returns a copy of the diagnostic state.
func (m *memory) State() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.state))
	for k, v := range m.state {
		out[k] = v
	}
	return out
}
