package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/briefing/internal/logging"
	"github.com/aretw0/briefing/pkg/domain"
)

// Kind identifies the variant of a tree node.
type Kind string

const (
	KindAction    Kind = "action"
	KindCondition Kind = "condition"
	KindSequence  Kind = "sequence"
	KindParallel  Kind = "parallel"
)

// Node is a behavior tree node.
//
// Tick evaluates the node once against the execution and returns its status.
// Reset clears any memory kept between ticks (composites forward it to
// their children). A node is never ticked concurrently with itself.
type Node interface {
	Name() string
	Kind() Kind
	Tick(ctx context.Context, ex *Execution) domain.NodeStatus
	Reset()
}

// Composite is implemented by nodes that own children.
type Composite interface {
	Node
	Children() []Node
}

// Failure is a failure recorded by a leaf node during a run.
type Failure struct {
	Node string
	Kind Kind
	Slot string // Destination slot for actions, empty for conditions
	Err  error
}

// Execution carries the per-run data shared by every node of one run: the
// SharedState, the observability hooks and the failure log.
type Execution struct {
	ID    string
	State *SharedState

	hooks  domain.LifecycleHooks
	logger *slog.Logger

	mu       sync.Mutex
	failures []Failure
}

// NewExecution creates an execution around state.
func NewExecution(id string, state *SharedState, hooks domain.LifecycleHooks, logger *slog.Logger) *Execution {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Execution{
		ID:     id,
		State:  state,
		hooks:  hooks,
		logger: logger.With("run_id", id),
	}
}

// Failures returns the failures recorded so far, in the order they happened.
func (ex *Execution) Failures() []Failure {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	out := make([]Failure, len(ex.failures))
	copy(out, ex.failures)
	return out
}

func (ex *Execution) fail(node Node, slot string, err error) {
	ex.mu.Lock()
	ex.failures = append(ex.failures, Failure{Node: node.Name(), Kind: node.Kind(), Slot: slot, Err: err})
	ex.mu.Unlock()
	ex.logger.Warn("node failed", "node", node.Name(), "kind", node.Kind(), "slot", slot, "err", err)
}

func (ex *Execution) enter(ctx context.Context, node Node) {
	ex.logger.Debug("node enter", "node", node.Name(), "kind", node.Kind())
	if ex.hooks.OnNodeEnter != nil {
		ex.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
			EventBase: ex.base(domain.EventNodeEnter),
			Node:      node.Name(),
			Kind:      string(node.Kind()),
		})
	}
}

func (ex *Execution) leave(ctx context.Context, node Node, status domain.NodeStatus) {
	ex.logger.Debug("node leave", "node", node.Name(), "kind", node.Kind(), "status", status)
	if ex.hooks.OnNodeLeave != nil {
		ex.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
			EventBase: ex.base(domain.EventNodeLeave),
			Node:      node.Name(),
			Kind:      string(node.Kind()),
			Status:    status,
		})
	}
}

func (ex *Execution) taskStart(ctx context.Context, a *Action) {
	if ex.hooks.OnTaskStart != nil {
		ex.hooks.OnTaskStart(ctx, &domain.TaskEvent{
			EventBase: ex.base(domain.EventTaskStart),
			Node:      a.name,
			Task:      a.task.Name(),
			Slot:      a.slot,
		})
	}
}

func (ex *Execution) taskFinish(ctx context.Context, a *Action, res domain.TaskResult, took time.Duration) {
	if ex.hooks.OnTaskFinish != nil {
		ex.hooks.OnTaskFinish(ctx, &domain.TaskEvent{
			EventBase: ex.base(domain.EventTaskFinish),
			Node:      a.name,
			Task:      a.task.Name(),
			Slot:      a.slot,
			Success:   res.OK(),
			Reason:    res.Reason(),
			Duration:  took,
		})
	}
}

func (ex *Execution) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RunID: ex.ID}
}

// tick wraps a node evaluation with enter/leave notifications.
func tick(ctx context.Context, ex *Execution, node Node, fn func() domain.NodeStatus) domain.NodeStatus {
	ex.enter(ctx, node)
	status := fn()
	ex.leave(ctx, node, status)
	return status
}
