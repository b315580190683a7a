package runtime

import (
	"context"

	"github.com/aretw0/briefing/pkg/domain"
)

// Condition is a leaf node that succeeds iff every named slot is populated.
// It never writes to the state.
type Condition struct {
	name  string
	slots []string
}

// NewCondition creates a readiness gate over slots.
func NewCondition(name string, slots ...string) *Condition {
	return &Condition{name: name, slots: slots}
}

func (c *Condition) Name() string { return c.name }
func (c *Condition) Kind() Kind   { return KindCondition }
func (c *Condition) Reset()       {}

// Slots returns the slots checked by the condition.
func (c *Condition) Slots() []string {
	out := make([]string, len(c.slots))
	copy(out, c.slots)
	return out
}

// Tick evaluates the predicate.
func (c *Condition) Tick(ctx context.Context, ex *Execution) domain.NodeStatus {
	return tick(ctx, ex, c, func() domain.NodeStatus {
		missing := ex.State.Missing(c.slots...)
		if len(missing) == 0 {
			return domain.StatusSuccess
		}
		ex.fail(c, "", &domain.SlotError{Slots: missing})
		return domain.StatusFailure
	})
}
