package ports

import (
	"context"

	"github.com/aretw0/briefing/pkg/domain"
)

// Task is a unit of work executed by an Action node.
//
// Execute receives the immutable RunContext and the prerequisite slots the
// Action declared. It must not panic or leak errors: internal failures are
// either replaced by a deterministic fallback (Success) or reported as
// Failure.
type Task interface {
	Name() string
	Execute(ctx context.Context, run domain.RunContext, inputs domain.Inputs) domain.TaskResult
}

// Introspectable is implemented by tasks that keep diagnostic state about
// their last execution. State must return a copy.
type Introspectable interface {
	State() map[string]any
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context, run domain.RunContext, inputs domain.Inputs) domain.TaskResult
}

// Name returns the task name.
func (f TaskFunc) Name() string { return f.TaskName }

// Execute calls the wrapped function.
func (f TaskFunc) Execute(ctx context.Context, run domain.RunContext, inputs domain.Inputs) domain.TaskResult {
	return f.Fn(ctx, run, inputs)
}
