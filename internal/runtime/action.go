package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/briefing/pkg/domain"
	"github.com/aretw0/briefing/pkg/ports"
)

// Action is a leaf node that runs one Task and publishes its payload into
// a slot. The slot is written only when the task succeeds.
type Action struct {
	name     string
	task     ports.Task
	slot     string
	requires []string
	timeout  time.Duration
}

// ActionOption configures an Action.
type ActionOption func(*Action)

// WithRequires declares the slots the task reads. They are handed to the
// task as Inputs and must be populated when the action is ticked.
func WithRequires(slots ...string) ActionOption {
	return func(a *Action) {
		a.requires = append(a.requires, slots...)
	}
}

// WithTimeout bounds a single task execution. Zero disables the timeout.
func WithTimeout(d time.Duration) ActionOption {
	return func(a *Action) {
		a.timeout = d
	}
}

// NewAction creates an action that runs task and writes its payload into slot.
func NewAction(name string, task ports.Task, slot string, opts ...ActionOption) *Action {
	a := &Action{name: name, task: task, slot: slot}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Action) Name() string { return a.name }
func (a *Action) Kind() Kind   { return KindAction }
func (a *Action) Reset()       {}

// Slot returns the destination slot.
func (a *Action) Slot() string { return a.slot }

// Requires returns the prerequisite slots.
func (a *Action) Requires() []string {
	out := make([]string, len(a.requires))
	copy(out, a.requires)
	return out
}

// Task returns the wrapped task.
func (a *Action) Task() ports.Task { return a.task }

// Tick runs the task once.
func (a *Action) Tick(ctx context.Context, ex *Execution) domain.NodeStatus {
	return tick(ctx, ex, a, func() domain.NodeStatus {
		return a.run(ctx, ex)
	})
}

func (a *Action) run(ctx context.Context, ex *Execution) domain.NodeStatus {
	inputs := make(domain.Inputs, len(a.requires))
	if missing := ex.State.Missing(a.requires...); len(missing) > 0 {
		ex.fail(a, a.slot, &domain.TaskFailure{
			Task:   a.name,
			Slot:   a.slot,
			Reason: fmt.Sprintf("prerequisites not ready: %s", strings.Join(missing, ", ")),
			Cause:  &domain.SlotError{Slots: missing},
		})
		return domain.StatusFailure
	}
	for _, slot := range a.requires {
		inputs[slot], _ = ex.State.Get(slot)
	}

	if err := ctx.Err(); err != nil {
		ex.fail(a, a.slot, &domain.TaskFailure{Task: a.name, Slot: a.slot, Reason: "cancelled before start", Cause: err})
		return domain.StatusFailure
	}

	ex.taskStart(ctx, a)
	start := time.Now()
	res, cause := a.execute(ctx, ex.State.Context(), inputs)
	ex.taskFinish(ctx, a, res, time.Since(start))

	if !res.OK() {
		ex.fail(a, a.slot, &domain.TaskFailure{Task: a.name, Slot: a.slot, Reason: res.Reason(), Cause: cause})
		return domain.StatusFailure
	}

	if err := ex.State.Publish(a.slot, res.Payload()); err != nil {
		ex.fail(a, a.slot, &domain.TaskFailure{Task: a.name, Slot: a.slot, Reason: err.Error(), Cause: err})
		return domain.StatusFailure
	}
	return domain.StatusSuccess
}

// execute runs the task on its own goroutine so a deadline or cancellation
// ends the action even when the task ignores its context. Panics are
// converted into a Failure.
func (a *Action) execute(ctx context.Context, run domain.RunContext, inputs domain.Inputs) (domain.TaskResult, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	done := make(chan domain.TaskResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- domain.Fail(fmt.Sprintf("task panicked: %v", r))
			}
		}()
		done <- a.task.Execute(ctx, run, inputs)
	}()

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		select {
		case res := <-done:
			return res, nil
		default:
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Fail("timed out"), domain.ErrTaskTimeout
		}
		return domain.Fail("cancelled"), ctx.Err()
	}
}
