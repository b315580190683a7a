package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/briefing/internal/logging"
	"github.com/aretw0/briefing/pkg/domain"
	"github.com/google/uuid"
)

// Engine owns a behavior tree and drives it from the root, one run at a time.
type Engine struct {
	root      Node
	schema    *Schema
	finalSlot string
	maxTicks  int
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	newID     func() string
	classify  StageClassifier

	// runMu serializes runs: nodes keep per-run memory.
	runMu sync.Mutex

	lastMu sync.RWMutex
	last   *SharedState
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxTicks bounds how many times a Running root is ticked within one run.
func WithMaxTicks(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxTicks = n
		}
	}
}

// WithRunIDs overrides the run identifier generator (default: UUIDv4).
func WithRunIDs(gen func() string) EngineOption {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// StageClassifier maps the first recorded failure of a run to the Stage
// reported in its TreeEvaluationFailure.
type StageClassifier func(f Failure) domain.Stage

// WithStageClassifier overrides how failures are attributed to stages.
// Without it, conditions map to StageReadiness, the action owning the final
// slot to StageSynthesis and every other node to StageGathering.
func WithStageClassifier(c StageClassifier) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.classify = c
		}
	}
}

// StructuralStages classifies failures by node kind and destination slot
// only, with no knowledge of node names.
func StructuralStages(finalSlot string) StageClassifier {
	return func(f Failure) domain.Stage {
		switch {
		case f.Kind == KindCondition:
			return domain.StageReadiness
		case f.Slot == finalSlot:
			return domain.StageSynthesis
		default:
			return domain.StageGathering
		}
	}
}

// NewEngine validates the tree and creates an engine whose run output is the
// payload published in finalSlot.
func NewEngine(root Node, finalSlot string, opts ...EngineOption) (*Engine, error) {
	schema, err := BuildSchema(root)
	if err != nil {
		return nil, fmt.Errorf("invalid tree: %w", err)
	}
	if !schema.Has(finalSlot) {
		return nil, fmt.Errorf("invalid tree: %w: final slot %q is not written by any action", ErrUndeclaredSlot, finalSlot)
	}

	e := &Engine{
		root:      root,
		schema:    schema,
		finalSlot: finalSlot,
		maxTicks:  1,
		logger:    logging.NewNop(),
		newID:     uuid.NewString,
		classify:  StructuralStages(finalSlot),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Root returns the root node.
func (e *Engine) Root() Node { return e.root }

// Schema returns the slot schema derived from the tree.
func (e *Engine) Schema() *Schema { return e.schema }

// FinalSlot returns the slot read at the end of a run.
func (e *Engine) FinalSlot() string { return e.finalSlot }

// Run installs rc into a fresh SharedState, ticks the root and returns the
// payload of the final slot. A run that does not produce that payload
// returns a *domain.TreeEvaluationFailure. There is no automatic retry.
func (e *Engine) Run(ctx context.Context, rc domain.RunContext) (domain.Payload, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	state := NewSharedState(e.schema, rc)
	ex := NewExecution(e.newID(), state, e.hooks, e.logger)
	log := e.logger.With("run_id", ex.ID)

	e.root.Reset()
	defer e.root.Reset()

	start := time.Now()
	status := domain.StatusRunning
	ticks := 0
	for ticks < e.maxTicks && status == domain.StatusRunning {
		if err := ctx.Err(); err != nil {
			break
		}
		ticks++
		log.Debug("tick", "n", ticks)
		status = e.root.Tick(ctx, ex)
	}

	e.lastMu.Lock()
	e.last = state
	e.lastMu.Unlock()

	if status != domain.StatusSuccess {
		err := e.failure(ctx, ex, status, ticks)
		log.Error("run failed", "status", status, "ticks", ticks, "err", err)
		e.finish(ctx, ex, err, ticks, start)
		return nil, err
	}

	payload, ok := state.Get(e.finalSlot)
	if !ok {
		err := &domain.TreeEvaluationFailure{
			Stage:  domain.StageOutput,
			Node:   e.schema.Owner(e.finalSlot),
			Status: status,
			Cause:  fmt.Errorf("tree completed but final slot %q is empty: %w", e.finalSlot, &domain.SlotError{Slots: []string{e.finalSlot}}),
		}
		log.Error("run failed", "err", err)
		e.finish(ctx, ex, err, ticks, start)
		return nil, err
	}

	log.Info("run completed", "ticks", ticks, "duration", time.Since(start), "slots", state.Populated())
	e.finish(ctx, ex, nil, ticks, start)
	return payload, nil
}

func (e *Engine) finish(ctx context.Context, ex *Execution, err error, ticks int, start time.Time) {
	if e.hooks.OnRunFinish == nil {
		return
	}
	outcome := domain.OutcomeSuccess
	var tef *domain.TreeEvaluationFailure
	if errors.As(err, &tef) {
		outcome = string(tef.Stage)
	}
	e.hooks.OnRunFinish(ctx, &domain.RunEvent{
		EventBase: ex.base(domain.EventRunFinish),
		Outcome:   outcome,
		Ticks:     ticks,
		Duration:  time.Since(start),
		Err:       err,
	})
}

// LastState returns the SharedState of the most recent run, or nil.
func (e *Engine) LastState() *SharedState {
	e.lastMu.RLock()
	defer e.lastMu.RUnlock()
	return e.last
}

// failure converts the failure log of a run into a typed error.
// The first recorded failure is the one reported.
func (e *Engine) failure(ctx context.Context, ex *Execution, status domain.NodeStatus, ticks int) error {
	failures := ex.Failures()
	if len(failures) == 0 {
		cause := ctx.Err()
		if cause == nil && status == domain.StatusRunning {
			cause = fmt.Errorf("root %q still running after %d tick(s)", e.root.Name(), ticks)
		}
		return &domain.TreeEvaluationFailure{
			Stage:  domain.StageOutput,
			Node:   e.root.Name(),
			Status: status,
			Cause:  cause,
		}
	}

	first := failures[0]
	return &domain.TreeEvaluationFailure{
		Stage:  e.classify(first),
		Node:   first.Node,
		Status: status,
		Cause:  first.Err,
	}
}

