package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/briefing/internal/runtime"
	"github.com/aretw0/briefing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type briefingStubs struct {
	weather, news, synth *stubTask
}

func newBriefingStubs() briefingStubs {
	return briefingStubs{
		weather: &stubTask{name: "weather_agent", payload: domain.Payload{"temperature": 15}},
		news:    &stubTask{name: "news_agent", payload: domain.Payload{"headlines": []string{"a", "b"}}},
		synth:   &stubTask{name: "synthesizer_agent", payload: domain.Payload{"briefing": "text"}},
	}
}

func (s briefingStubs) tree() runtime.Node {
	return runtime.NewSequence("briefing",
		runtime.NewParallel("gather", runtime.SuccessOnAll,
			runtime.NewAction("weather", s.weather, domain.SlotWeather),
			runtime.NewAction("news", s.news, domain.SlotNews),
		),
		runtime.NewCondition("data_ready", domain.SlotWeather, domain.SlotNews),
		runtime.NewAction("synthesize", s.synth, domain.SlotBriefing,
			runtime.WithRequires(domain.SlotWeather, domain.SlotNews)),
	)
}

func TestEngine_Run(t *testing.T) {
	stubs := newBriefingStubs()
	engine, err := runtime.NewEngine(stubs.tree(), domain.SlotBriefing)
	require.NoError(t, err)

	payload, err := engine.Run(context.Background(), domain.BriefingContext("London", "world", 3))

	require.NoError(t, err)
	assert.Equal(t, "text", payload["briefing"])
	assert.Equal(t, []string{domain.SlotBriefing, domain.SlotNews, domain.SlotWeather}, engine.LastState().Populated())
	assert.Equal(t, "London", engine.LastState().Context().String(domain.KeyLocation, ""))
}

func TestEngine_FailureStages(t *testing.T) {
	tests := []struct {
		name      string
		configure func(s briefingStubs)
		stage     domain.Stage
		node      string
		message   string
	}{
		{
			name:      "Weather failure is a gathering failure",
			configure: func(s briefingStubs) { s.weather.reason = "weather service unavailable" },
			stage:     domain.StageGathering,
			node:      "weather",
			message:   `gathering task "weather" failed: weather service unavailable`,
		},
		{
			name:      "News failure is a gathering failure",
			configure: func(s briefingStubs) { s.news.reason = "news service unavailable" },
			stage:     domain.StageGathering,
			node:      "news",
		},
		{
			name:      "Synthesizer failure",
			configure: func(s briefingStubs) { s.synth.reason = "template error" },
			stage:     domain.StageSynthesis,
			node:      "synthesize",
			message:   `synthesis task "synthesize" failed: template error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubs := newBriefingStubs()
			tt.configure(stubs)
			engine, err := runtime.NewEngine(stubs.tree(), domain.SlotBriefing)
			require.NoError(t, err)

			payload, err := engine.Run(context.Background(), domain.BriefingContext("London", "world", 3))

			assert.Nil(t, payload)
			var tef *domain.TreeEvaluationFailure
			require.ErrorAs(t, err, &tef)
			assert.Equal(t, tt.stage, tef.Stage)
			assert.Equal(t, tt.node, tef.Node)
			assert.Equal(t, domain.StatusFailure, tef.Status)
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
			assert.False(t, engine.LastState().Ready(domain.SlotBriefing), "briefing slot stays empty on failure")
		})
	}
}

func TestEngine_StageClassifier(t *testing.T) {
	stubs := newBriefingStubs()
	stubs.news.reason = "news service unavailable"
	var seen runtime.Failure
	engine, err := runtime.NewEngine(stubs.tree(), domain.SlotBriefing,
		runtime.WithStageClassifier(func(f runtime.Failure) domain.Stage {
			seen = f
			return domain.StageOutput
		}),
	)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), domain.BriefingContext("London", "world", 3))

	var tef *domain.TreeEvaluationFailure
	require.ErrorAs(t, err, &tef)
	assert.Equal(t, domain.StageOutput, tef.Stage)
	assert.Equal(t, "news", seen.Node)
	assert.Equal(t, runtime.KindAction, seen.Kind)
	assert.Equal(t, domain.SlotNews, seen.Slot)
}

func TestStructuralStages(t *testing.T) {
	classify := runtime.StructuralStages(domain.SlotBriefing)

	assert.Equal(t, domain.StageReadiness, classify(runtime.Failure{Node: "ready", Kind: runtime.KindCondition}))
	assert.Equal(t, domain.StageSynthesis, classify(runtime.Failure{Node: "write", Kind: runtime.KindAction, Slot: domain.SlotBriefing}))
	assert.Equal(t, domain.StageGathering, classify(runtime.Failure{Node: "fetch", Kind: runtime.KindAction, Slot: domain.SlotWeather}))
}

func TestEngine_GatheringFailureSkipsSynthesis(t *testing.T) {
	stubs := newBriefingStubs()
	stubs.weather.reason = "down"
	engine, err := runtime.NewEngine(stubs.tree(), domain.SlotBriefing)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), domain.BriefingContext("London", "world", 3))

	require.Error(t, err)
	assert.Equal(t, 0, stubs.synth.Calls())
}

func TestEngine_ReadinessFailure(t *testing.T) {
	producer := &stubTask{name: "producer"}
	root := runtime.NewSequence("root",
		runtime.NewCondition("ready", "data"),
		runtime.NewAction("produce", producer, "data"),
	)
	engine, err := runtime.NewEngine(root, "data")
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), domain.NewRunContext(nil))

	var tef *domain.TreeEvaluationFailure
	require.ErrorAs(t, err, &tef)
	assert.Equal(t, domain.StageReadiness, tef.Stage)
	assert.Equal(t, "ready", tef.Node)
	assert.ErrorIs(t, err, domain.ErrSlotNotReady)
	assert.Equal(t, 0, producer.Calls())
}

func TestEngine_SuccessWithEmptyFinalSlot(t *testing.T) {
	root := runtime.NewParallel("any", runtime.SuccessOnOne,
		runtime.NewAction("side", &stubTask{name: "side"}, "side_data"),
		runtime.NewAction("final", &stubTask{name: "final", reason: "nope"}, "result"),
	)
	engine, err := runtime.NewEngine(root, "result")
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), domain.NewRunContext(nil))

	var tef *domain.TreeEvaluationFailure
	require.ErrorAs(t, err, &tef)
	assert.Equal(t, domain.StageOutput, tef.Stage)
	assert.Equal(t, domain.StatusSuccess, tef.Status)
	assert.Equal(t, "final", tef.Node)
	assert.ErrorIs(t, err, domain.ErrSlotNotReady)
}

func TestEngine_MaxTicks(t *testing.T) {
	build := func() runtime.Node {
		return runtime.NewSequence("root",
			&runningNode{name: "waiting", pending: 2},
			runtime.NewAction("final", &stubTask{name: "final"}, "result"),
		)
	}

	t.Run("Running root after one tick", func(t *testing.T) {
		engine, err := runtime.NewEngine(build(), "result")
		require.NoError(t, err)

		_, err = engine.Run(context.Background(), domain.NewRunContext(nil))

		var tef *domain.TreeEvaluationFailure
		require.ErrorAs(t, err, &tef)
		assert.Equal(t, domain.StageOutput, tef.Stage)
		assert.Equal(t, domain.StatusRunning, tef.Status)
		assert.Contains(t, err.Error(), "still running after 1 tick(s)")
	})

	t.Run("Resumed until success", func(t *testing.T) {
		engine, err := runtime.NewEngine(build(), "result", runtime.WithMaxTicks(3))
		require.NoError(t, err)

		_, err = engine.Run(context.Background(), domain.NewRunContext(nil))
		assert.NoError(t, err)
	})
}

func TestEngine_CancelledBeforeRun(t *testing.T) {
	stubs := newBriefingStubs()
	engine, err := runtime.NewEngine(stubs.tree(), domain.SlotBriefing)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Run(ctx, domain.BriefingContext("London", "world", 3))

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, stubs.weather.Calls())
}

func TestEngine_RunsAreIndependent(t *testing.T) {
	stubs := newBriefingStubs()
	ids := []string{"run-1", "run-2"}
	var next int
	engine, err := runtime.NewEngine(stubs.tree(), domain.SlotBriefing,
		runtime.WithRunIDs(func() string { id := ids[next]; next++; return id }))
	require.NoError(t, err)

	first, err := engine.Run(context.Background(), domain.BriefingContext("London", "world", 3))
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), domain.BriefingContext("Tokyo", "business", 2))
	require.NoError(t, err, "a second run must not trip over slots written by the first")

	assert.Equal(t, first, second)
	assert.Equal(t, "Tokyo", engine.LastState().Context().String(domain.KeyLocation, ""))
	assert.Equal(t, 2, stubs.synth.Calls())
}

func TestEngine_Hooks(t *testing.T) {
	var mu sync.Mutex
	entered := map[string]int{}
	var runIDs []string
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			mu.Lock()
			defer mu.Unlock()
			entered[e.Node]++
			runIDs = append(runIDs, e.RunID)
		},
	}

	stubs := newBriefingStubs()
	engine, err := runtime.NewEngine(stubs.tree(), domain.SlotBriefing,
		runtime.WithLifecycleHooks(hooks),
		runtime.WithRunIDs(func() string { return "fixed" }))
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), domain.BriefingContext("London", "world", 3))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"briefing": 1, "gather": 1, "weather": 1, "news": 1, "data_ready": 1, "synthesize": 1,
	}, entered)
	for _, id := range runIDs {
		assert.Equal(t, "fixed", id)
	}
}

func TestNewEngine_RejectsInvalidTrees(t *testing.T) {
	_, err := runtime.NewEngine(runtime.NewAction("a", &stubTask{name: "a"}, "a_slot"), "missing")
	assert.ErrorIs(t, err, runtime.ErrUndeclaredSlot)

	_, err = runtime.NewEngine(nil, "x")
	assert.Error(t, err)
}

func TestEngine_RunFinishHook(t *testing.T) {
	var outcomes []string
	hooks := domain.LifecycleHooks{
		OnRunFinish: func(_ context.Context, e *domain.RunEvent) { outcomes = append(outcomes, e.Outcome) },
	}

	stubs := newBriefingStubs()
	engine, err := runtime.NewEngine(stubs.tree(), domain.SlotBriefing, runtime.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), domain.BriefingContext("London", "world", 3))
	require.NoError(t, err)

	stubs.synth.reason = "template error"
	_, err = engine.Run(context.Background(), domain.BriefingContext("London", "world", 3))
	require.Error(t, err)

	assert.Equal(t, []string{domain.OutcomeSuccess, string(domain.StageSynthesis)}, outcomes)
}
