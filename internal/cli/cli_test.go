package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/briefing"
	"github.com/aretw0/briefing/internal/config"
	"github.com/aretw0/briefing/internal/logging"
	"github.com/aretw0/briefing/pkg/domain"
	"github.com/aretw0/briefing/pkg/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T, cfg config.Config, extra ...briefing.Option) *Environment {
	t.Helper()
	env, err := NewEnvironment(context.Background(), cfg, logging.NewNop(), extra...)
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env
}

func TestNewEnvironment_MemoryCache(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.CacheMemory
	env := newEnv(t, cfg)

	for range 2 {
		_, err := env.Agent.Run(context.Background(), "London", "world", 3)
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(env.Metrics.RunsCounter(domain.OutcomeSuccess)))
}

func TestNewEnvironment_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.Address = mr.Addr()
	env := newEnv(t, cfg)

	_, err := env.Agent.Run(context.Background(), "London", "world", 3)

	require.NoError(t, err)
	assert.True(t, mr.Exists("briefing:weather:london"))
	assert.True(t, mr.Exists("briefing:news:world:3"))
	assert.Greater(t, mr.TTL("briefing:weather:london"), time.Duration(0))
}

func TestNewEnvironment_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.Address = addr

	_, err := NewEnvironment(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestNewEnvironment_Defaults(t *testing.T) {
	cfg := config.Default()
	cfg.Defaults = config.Defaults{Location: "Tokyo", Topic: "business", Count: 1}
	env := newEnv(t, cfg)

	text, err := env.Agent.Run(context.Background(), "", "", 0)

	require.NoError(t, err)
	assert.Contains(t, text, "Weather Update for Tokyo:")
	assert.Contains(t, text, "1 significant developments")
}

func TestExecute_OneShot(t *testing.T) {
	env := newEnv(t, config.Default())
	var out bytes.Buffer

	err := Execute(context.Background(), env.Agent, RunOptions{Location: "London", Topic: "world", Plain: true}, nil, &out)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "🌅 Daily Briefing"))
	assert.True(t, strings.HasSuffix(out.String(), "Stay informed and have a great day! 🌟\n"))
}

func TestExecute_Failure(t *testing.T) {
	failing := ports.TaskFunc{
		TaskName: "weather_agent",
		Fn: func(context.Context, domain.RunContext, domain.Inputs) domain.TaskResult {
			return domain.Fail("weather service unavailable")
		},
	}
	env := newEnv(t, config.Default(), briefing.WithWeatherTask(failing))

	err := Execute(context.Background(), env.Agent, RunOptions{Plain: true}, nil, &bytes.Buffer{})

	var tef *domain.TreeEvaluationFailure
	require.ErrorAs(t, err, &tef)
	assert.Equal(t, domain.StageGathering, tef.Stage)
}

func TestExecute_Interactive(t *testing.T) {
	env := newEnv(t, config.Default())
	var out bytes.Buffer

	err := Execute(context.Background(), env.Agent,
		RunOptions{Interactive: true, Headless: true, Plain: true},
		strings.NewReader("Tokyo\nbusiness\nQUIT\n"), &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Weather Update for Tokyo:")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunDemo(t *testing.T) {
	env := newEnv(t, config.Default())
	var out bytes.Buffer

	require.NoError(t, RunDemo(context.Background(), env.Agent, &out))

	s := out.String()
	assert.Equal(t, 3, strings.Count(s, "📋 Test Case"))
	for _, c := range DemoCases {
		assert.Contains(t, s, "Weather Update for "+c.Location+":")
	}
	assert.Contains(t, s, "  news_agent: 1 items in state")
	assert.Contains(t, s, "  synthesizer_agent: 2 items in state")
	assert.Contains(t, s, "  weather_agent: 1 items in state")
}

func TestServe_Shutdown(t *testing.T) {
	env := newEnv(t, config.Default())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, env, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
