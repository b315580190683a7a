package briefing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/briefing/internal/logging"
	"github.com/aretw0/briefing/internal/runtime"
	"github.com/aretw0/briefing/pkg/domain"
	"github.com/aretw0/briefing/pkg/ports"
	"github.com/aretw0/briefing/pkg/tasks"
)

// Node names of the briefing tree.
const (
	NodeRoot       = "briefing"
	NodeGather     = "gather"
	NodeWeather    = "weather"
	NodeNews       = "news"
	NodeDataReady  = "data_ready"
	NodeSynthesize = "synthesize"
)

// classifyFailure attributes a failed node of the briefing tree to its stage.
func classifyFailure(f runtime.Failure) domain.Stage {
	switch f.Node {
	case NodeWeather, NodeNews:
		return domain.StageGathering
	case NodeDataReady:
		return domain.StageReadiness
	case NodeSynthesize:
		return domain.StageSynthesis
	default:
		return runtime.StructuralStages(domain.SlotBriefing)(f)
	}
}

// NodeDescription is a read-only view of one node of the tree.
type NodeDescription = runtime.Description

// Agent runs the daily briefing tree. Runs are serialized: concurrent
// callers wait for each other.
type Agent struct {
	engine   *runtime.Engine
	weather  ports.Task
	news     ports.Task
	synth    ports.Task
	defaults domain.RunContext
	logger   *slog.Logger
}

type settings struct {
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	weatherSrc ports.WeatherSource
	newsSrc    ports.HeadlineSource
	generator  ports.Generator
	weather    ports.Task
	news       ports.Task
	synth      ports.Task
	timeout    time.Duration
	clock      ports.Clock
	maxTicks   int
	strict     bool
	location   string
	topic      string
	count      int
}

// Option defines a functional option for configuring the Agent.
type Option func(*settings)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}

// WithWeatherSource sets the source of the built-in weather task.
func WithWeatherSource(src ports.WeatherSource) Option {
	return func(s *settings) {
		s.weatherSrc = src
	}
}

// WithHeadlineSource sets the source of the built-in news task.
func WithHeadlineSource(src ports.HeadlineSource) Option {
	return func(s *settings) {
		s.newsSrc = src
	}
}

// WithGenerator sets the text generator of the built-in synthesis task.
func WithGenerator(g ports.Generator) Option {
	return func(s *settings) {
		s.generator = g
	}
}

// WithWeatherTask replaces the weather task.
func WithWeatherTask(t ports.Task) Option {
	return func(s *settings) {
		s.weather = t
	}
}

// WithNewsTask replaces the news task.
func WithNewsTask(t ports.Task) Option {
	return func(s *settings) {
		s.news = t
	}
}

// WithSynthesisTask replaces the synthesis task.
func WithSynthesisTask(t ports.Task) Option {
	return func(s *settings) {
		s.synth = t
	}
}

// WithTaskTimeout bounds each task execution. Zero disables the timeout.
func WithTaskTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// WithClock sets the clock used for payload timestamps and the briefing date.
func WithClock(clock ports.Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithMaxTicks bounds how many times the root is ticked while Running.
func WithMaxTicks(n int) Option {
	return func(s *settings) {
		s.maxTicks = n
	}
}

// WithStrictSources makes the built-in gathering tasks fail on source
// errors instead of substituting fallback data.
func WithStrictSources() Option {
	return func(s *settings) {
		s.strict = true
	}
}

// WithDefaults sets the values Run uses for an empty location, an empty
// topic or a non-positive count.
func WithDefaults(location, topic string, count int) Option {
	return func(s *settings) {
		if location != "" {
			s.location = location
		}
		if topic != "" {
			s.topic = topic
		}
		if count > 0 {
			s.count = count
		}
	}
}

// New builds the briefing tree and validates it.
func New(opts ...Option) (*Agent, error) {
	s := &settings{
		timeout:  10 * time.Second,
		clock:    time.Now,
		maxTicks: 1,
		location: domain.DefaultLocation,
		topic:    domain.DefaultTopic,
		count:    domain.DefaultNewsCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	taskOpts := []tasks.Option{tasks.WithClock(s.clock), tasks.WithLogger(s.logger)}
	if s.strict {
		taskOpts = append(taskOpts, tasks.Strict())
	}
	if s.weather == nil {
		s.weather = tasks.NewWeatherTask(s.weatherSrc, taskOpts...)
	}
	if s.news == nil {
		s.news = tasks.NewNewsTask(s.newsSrc, taskOpts...)
	}
	if s.synth == nil {
		s.synth = tasks.NewSynthesisTask(append(taskOpts, tasks.WithGenerator(s.generator))...)
	}

	timeout := runtime.WithTimeout(s.timeout)
	root := runtime.NewSequence(NodeRoot,
		runtime.NewParallel(NodeGather, runtime.SuccessOnAll,
			runtime.NewAction(NodeWeather, s.weather, domain.SlotWeather, timeout),
			runtime.NewAction(NodeNews, s.news, domain.SlotNews, timeout),
		),
		runtime.NewCondition(NodeDataReady, domain.SlotWeather, domain.SlotNews),
		runtime.NewAction(NodeSynthesize, s.synth, domain.SlotBriefing,
			runtime.WithRequires(domain.SlotWeather, domain.SlotNews), timeout),
	)

	engine, err := runtime.NewEngine(root, domain.SlotBriefing,
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithMaxTicks(s.maxTicks),
		runtime.WithStageClassifier(classifyFailure),
	)
	if err != nil {
		return nil, err
	}

	return &Agent{
		engine:   engine,
		weather:  s.weather,
		news:     s.news,
		synth:    s.synth,
		defaults: domain.BriefingContext(s.location, s.topic, s.count),
		logger:   s.logger,
	}, nil
}

// Run generates the briefing for location, topic and count. Empty or
// non-positive arguments take the agent defaults.
func (a *Agent) Run(ctx context.Context, location, topic string, count int) (string, error) {
	if location == "" {
		location = a.defaults.String(domain.KeyLocation, domain.DefaultLocation)
	}
	if topic == "" {
		topic = a.defaults.String(domain.KeyTopic, domain.DefaultTopic)
	}
	if count <= 0 {
		count = a.defaults.Int(domain.KeyNewsCount, domain.DefaultNewsCount)
	}
	a.logger.Debug("briefing requested", "location", location, "topic", topic, "count", count)
	return a.RunContext(ctx, domain.BriefingContext(location, topic, count))
}

// RunContext runs the tree with a caller supplied RunContext and returns the
// briefing text. It either returns non-empty text or an error; failures of
// the tree are *domain.TreeEvaluationFailure.
func (a *Agent) RunContext(ctx context.Context, rc domain.RunContext) (string, error) {
	payload, err := a.engine.Run(ctx, rc)
	if err != nil {
		return "", err
	}
	text, _ := payload["briefing"].(string)
	if text == "" {
		return "", &domain.TreeEvaluationFailure{
			Stage:  domain.StageOutput,
			Node:   NodeSynthesize,
			Status: domain.StatusSuccess,
			Cause:  errors.New("briefing payload has no text"),
		}
	}
	return text, nil
}

// TaskStates returns the diagnostic state of each task, keyed by
// weather_agent, news_agent and synthesizer_agent. Tasks that keep no state
// report an empty map.
func (a *Agent) TaskStates() map[string]map[string]any {
	return map[string]map[string]any{
		tasks.WeatherTaskName:   stateOf(a.weather),
		tasks.NewsTaskName:      stateOf(a.news),
		tasks.SynthesisTaskName: stateOf(a.synth),
	}
}

func stateOf(t ports.Task) map[string]any {
	if in, ok := t.(ports.Introspectable); ok {
		if st := in.State(); st != nil {
			return st
		}
	}
	return map[string]any{}
}

// LastState returns a snapshot of the slots populated by the most recent
// run, or nil before the first run.
func (a *Agent) LastState() map[string]domain.Payload {
	st := a.engine.LastState()
	if st == nil {
		return nil
	}
	return st.Snapshot()
}

// Tree describes the briefing tree.
func (a *Agent) Tree() NodeDescription {
	return runtime.Describe(a.engine.Root())
}

// Describe renders the error of a failed run for humans.
func Describe(err error) string {
	var tef *domain.TreeEvaluationFailure
	if errors.As(err, &tef) {
		return fmt.Sprintf("Failed to generate daily briefing (%s stage, node %q): %v", tef.Stage, tef.Node, err)
	}
	return fmt.Sprintf("Failed to generate daily briefing: %v", err)
}
