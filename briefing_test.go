package briefing_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/briefing"
	"github.com/aretw0/briefing/pkg/adapters/mock"
	"github.com/aretw0/briefing/pkg/domain"
	"github.com/aretw0/briefing/pkg/ports"
	"github.com/aretw0/briefing/pkg/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, time.October, 17, 8, 30, 0, 0, time.UTC)
}

func newAgent(t *testing.T, opts ...briefing.Option) *briefing.Agent {
	t.Helper()
	agent, err := briefing.New(append([]briefing.Option{briefing.WithClock(fixedClock)}, opts...)...)
	require.NoError(t, err)
	return agent
}

func TestAgent_Run_London(t *testing.T) {
	agent := newAgent(t)

	text, err := agent.Run(context.Background(), "London", "world", 3)

	require.NoError(t, err)
	assert.Contains(t, text, "🌅 Daily Briefing - October 17, 2026")
	assert.Contains(t, text, "📍 Weather Update for London:")
	assert.Contains(t, text, "Temperature: 15°C")
	assert.Contains(t, text, "Conditions: Rainy")
	assert.Contains(t, text, "📰 Top World News Headlines:")

	world := mock.FallbackHeadlines("world", 3)
	last := -1
	for i, h := range world {
		idx := strings.Index(text, h)
		require.GreaterOrEqual(t, idx, 0, "headline %d missing", i+1)
		assert.Greater(t, idx, last, "headlines must keep their order")
		last = idx
	}

	state := agent.LastState()
	assert.Len(t, state, 3)
	assert.Equal(t, "London", state[domain.SlotWeather]["location"])
}

func TestAgent_Run_GatheringFailure(t *testing.T) {
	failing := ports.TaskFunc{
		TaskName: "weather_agent",
		Fn: func(context.Context, domain.RunContext, domain.Inputs) domain.TaskResult {
			return domain.Fail("weather service unavailable")
		},
	}
	agent := newAgent(t, briefing.WithWeatherTask(failing))

	text, err := agent.Run(context.Background(), "London", "world", 3)

	assert.Empty(t, text)
	var tef *domain.TreeEvaluationFailure
	require.ErrorAs(t, err, &tef)
	assert.Equal(t, domain.StageGathering, tef.Stage)
	assert.Equal(t, briefing.NodeWeather, tef.Node)
	assert.EqualError(t, err, `gathering task "weather" failed: weather service unavailable`)

	state := agent.LastState()
	assert.NotContains(t, state, domain.SlotBriefing)
	assert.NotContains(t, state, domain.SlotWeather)
	assert.Contains(t, briefing.Describe(err), "gathering stage")
}

func TestAgent_Run_SynthesisFailure(t *testing.T) {
	failing := ports.TaskFunc{
		TaskName: "synthesizer_agent",
		Fn: func(context.Context, domain.RunContext, domain.Inputs) domain.TaskResult {
			return domain.Fail("template error")
		},
	}
	agent := newAgent(t, briefing.WithSynthesisTask(failing))

	_, err := agent.Run(context.Background(), "London", "world", 3)

	var tef *domain.TreeEvaluationFailure
	require.ErrorAs(t, err, &tef)
	assert.Equal(t, domain.StageSynthesis, tef.Stage)
	assert.Equal(t, briefing.NodeSynthesize, tef.Node)
	assert.Contains(t, agent.LastState(), domain.SlotWeather)
}

func TestAgent_Run_StrictSources(t *testing.T) {
	source := mock.NewWeather().FailFor("London", errors.New("503 service unavailable"))

	t.Run("Fallback", func(t *testing.T) {
		agent := newAgent(t, briefing.WithWeatherSource(source))
		text, err := agent.Run(context.Background(), "London", "world", 3)

		require.NoError(t, err)
		assert.Contains(t, text, "Conditions: Clear")
	})

	t.Run("Strict", func(t *testing.T) {
		agent := newAgent(t, briefing.WithWeatherSource(source), briefing.WithStrictSources())
		_, err := agent.Run(context.Background(), "London", "world", 3)

		var tef *domain.TreeEvaluationFailure
		require.ErrorAs(t, err, &tef)
		assert.Equal(t, briefing.NodeWeather, tef.Node)
	})
}

func TestAgent_Run_Idempotent(t *testing.T) {
	agent := newAgent(t)

	first, err := agent.Run(context.Background(), "Tokyo", "business", 2)
	require.NoError(t, err)
	second, err := agent.Run(context.Background(), "Tokyo", "business", 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "2 significant developments")
}

func TestAgent_Run_Defaults(t *testing.T) {
	t.Run("Built-in", func(t *testing.T) {
		text, err := newAgent(t).Run(context.Background(), "", "", 0)

		require.NoError(t, err)
		assert.Contains(t, text, "San Francisco")
		assert.Contains(t, text, "Technology News Headlines")
		assert.Contains(t, text, "3 significant developments")
	})

	t.Run("Configured", func(t *testing.T) {
		agent := newAgent(t, briefing.WithDefaults("New York", "business", 1))
		text, err := agent.Run(context.Background(), "", "", 0)

		require.NoError(t, err)
		assert.Contains(t, text, "Temperature: 72°C")
		assert.Contains(t, text, "Business News Headlines")
		assert.Contains(t, text, "1 significant developments")
	})
}

func TestAgent_Run_TaskTimeout(t *testing.T) {
	slow := ports.TaskFunc{
		TaskName: "news_agent",
		Fn: func(ctx context.Context, _ domain.RunContext, _ domain.Inputs) domain.TaskResult {
			<-ctx.Done()
			return domain.Fail("cancelled")
		},
	}
	agent := newAgent(t, briefing.WithNewsTask(slow), briefing.WithTaskTimeout(20*time.Millisecond))

	_, err := agent.Run(context.Background(), "London", "world", 3)

	var tef *domain.TreeEvaluationFailure
	require.ErrorAs(t, err, &tef)
	assert.Equal(t, briefing.NodeNews, tef.Node)
	assert.ErrorIs(t, err, domain.ErrTaskTimeout)
}

// lateWeather ignores its context and answers after delay.
type lateWeather struct {
	delay    time.Duration
	returned chan struct{}
}

func (l *lateWeather) Weather(context.Context, string) (ports.WeatherReading, error) {
	time.Sleep(l.delay)
	defer close(l.returned)
	return ports.WeatherReading{Location: "London", Temperature: 99, Condition: "Late"}, nil
}

func TestAgent_Run_TimedOutTaskLeavesNoState(t *testing.T) {
	src := &lateWeather{delay: 200 * time.Millisecond, returned: make(chan struct{})}
	agent := newAgent(t, briefing.WithWeatherSource(src), briefing.WithTaskTimeout(50*time.Millisecond))

	_, err := agent.Run(context.Background(), "London", "world", 3)

	require.ErrorIs(t, err, domain.ErrTaskTimeout)
	assert.NotContains(t, agent.TaskStates()[tasks.WeatherTaskName], domain.SlotWeather)

	select {
	case <-src.returned:
	case <-time.After(2 * time.Second):
		t.Fatal("weather source never returned")
	}
	assert.Never(t, func() bool {
		_, ok := agent.TaskStates()[tasks.WeatherTaskName][domain.SlotWeather]
		return ok
	}, 100*time.Millisecond, 10*time.Millisecond)
	assert.NotContains(t, agent.LastState(), domain.SlotWeather)
}

func TestAgent_Run_EmptyBriefing(t *testing.T) {
	empty := ports.TaskFunc{
		TaskName: "synthesizer_agent",
		Fn: func(context.Context, domain.RunContext, domain.Inputs) domain.TaskResult {
			return domain.Succeed(domain.Payload{"briefing": ""})
		},
	}
	agent := newAgent(t, briefing.WithSynthesisTask(empty))

	_, err := agent.Run(context.Background(), "London", "world", 3)

	var tef *domain.TreeEvaluationFailure
	require.ErrorAs(t, err, &tef)
	assert.Equal(t, domain.StageOutput, tef.Stage)
}

func TestAgent_TaskStates(t *testing.T) {
	agent := newAgent(t)

	before := agent.TaskStates()
	assert.Len(t, before, 3)
	assert.Empty(t, before[tasks.WeatherTaskName])

	_, err := agent.Run(context.Background(), "London", "world", 3)
	require.NoError(t, err)

	states := agent.TaskStates()
	assert.Contains(t, states[tasks.WeatherTaskName], domain.SlotWeather)
	assert.Contains(t, states[tasks.NewsTaskName], domain.SlotNews)
	assert.Contains(t, states[tasks.SynthesisTaskName], "briefing")
	assert.Nil(t, newAgent(t).LastState(), "no run yet")
}

func TestAgent_Tree(t *testing.T) {
	tree := newAgent(t).Tree()

	assert.Equal(t, briefing.NodeRoot, tree.Name)
	require.Len(t, tree.Children, 3)
	assert.Equal(t, briefing.NodeGather, tree.Children[0].Name)
	assert.Len(t, tree.Children[0].Children, 2)
	assert.Equal(t, briefing.NodeDataReady, tree.Children[1].Name)
	assert.Equal(t, briefing.NodeSynthesize, tree.Children[2].Name)
}

func TestAgent_Run_Concurrent(t *testing.T) {
	agent := newAgent(t)
	locations := []string{"New York", "London", "Tokyo", "Paris"}

	var wg sync.WaitGroup
	results := make([]string, len(locations))
	for i, loc := range locations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := agent.Run(context.Background(), loc, "world", 3)
			assert.NoError(t, err)
			results[i] = text
		}()
	}
	wg.Wait()

	for i, loc := range locations {
		assert.Contains(t, results[i], "Weather Update for "+loc+":")
	}
}
