package runtime_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aretw0/briefing/internal/runtime"
	"github.com/aretw0/briefing/pkg/domain"
)

// stubTask is a configurable Task that counts its executions.
type stubTask struct {
	name    string
	payload domain.Payload
	reason  string        // non-empty => Failure
	delay   time.Duration // honours ctx while sleeping
	panics  bool
	calls   atomic.Int32
	inputs  atomic.Value // last domain.Inputs
}

func (s *stubTask) Name() string { return s.name }

func (s *stubTask) Execute(ctx context.Context, run domain.RunContext, inputs domain.Inputs) domain.TaskResult {
	s.calls.Add(1)
	s.inputs.Store(inputs)
	if s.panics {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return domain.Fail("interrupted: " + ctx.Err().Error())
		}
	}
	if s.reason != "" {
		return domain.Fail(s.reason)
	}
	return domain.Succeed(s.payload)
}

func (s *stubTask) Calls() int { return int(s.calls.Load()) }

// runningNode returns Running for the first n ticks, then Success.
type runningNode struct {
	name    string
	pending int
	ticks   int
}

func (r *runningNode) Name() string       { return r.name }
func (r *runningNode) Kind() runtime.Kind { return runtime.KindCondition }
func (r *runningNode) Reset()             {}
func (r *runningNode) Tick(ctx context.Context, ex *runtime.Execution) domain.NodeStatus {
	r.ticks++
	if r.ticks <= r.pending {
		return domain.StatusRunning
	}
	return domain.StatusSuccess
}

func newExecution(schema *runtime.Schema) *runtime.Execution {
	state := runtime.NewSharedState(schema, domain.BriefingContext("London", "world", 3))
	return runtime.NewExecution("test-run", state, domain.LifecycleHooks{}, nil)
}

func schemaOf(slots ...string) *runtime.Schema {
	s := runtime.NewSchema()
	for _, slot := range slots {
		_ = s.Declare(slot, "owner-"+slot)
	}
	return s
}
