package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/briefing/pkg/domain"
)

// LoggingHooks logs task and run events. Node events are logged at debug.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node evaluated", "run_id", e.RunID, "node", e.Node, "kind", e.Kind, "status", e.Status)
		},
		OnTaskStart: func(ctx context.Context, e *domain.TaskEvent) {
			logger.InfoContext(ctx, "task started", "run_id", e.RunID, "task", e.Task, "slot", e.Slot)
		},
		OnTaskFinish: func(ctx context.Context, e *domain.TaskEvent) {
			if e.Success {
				logger.InfoContext(ctx, "task finished", "run_id", e.RunID, "task", e.Task, "slot", e.Slot, "duration", e.Duration)
				return
			}
			logger.WarnContext(ctx, "task failed", "run_id", e.RunID, "task", e.Task, "reason", e.Reason, "duration", e.Duration)
		},
		OnRunFinish: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run finished", "run_id", e.RunID, "outcome", e.Outcome, "ticks", e.Ticks, "duration", e.Duration)
		},
	}
}

// CombineHooks returns hooks that invoke every non-nil hook of each set, in order.
func CombineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnNodeEnter = chain(out.OnNodeEnter, h.OnNodeEnter)
		out.OnNodeLeave = chain(out.OnNodeLeave, h.OnNodeLeave)
		out.OnTaskStart = chain(out.OnTaskStart, h.OnTaskStart)
		out.OnTaskFinish = chain(out.OnTaskFinish, h.OnTaskFinish)
		out.OnRunFinish = chain(out.OnRunFinish, h.OnRunFinish)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
