package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter  EventType = "node_enter"
	EventNodeLeave  EventType = "node_leave"
	EventTaskStart  EventType = "task_start"
	EventTaskFinish EventType = "task_finish"
	EventRunFinish  EventType = "run_finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// NodeEvent represents entry into or exit from a tree node.
type NodeEvent struct {
	EventBase
	Node   string     `json:"node"`
	Kind   string     `json:"kind"`
	Status NodeStatus `json:"status,omitempty"` // Only set on leave
}

// TaskEvent represents a task execution by an Action node.
type TaskEvent struct {
	EventBase
	Node     string        `json:"node"`
	Task     string        `json:"task"`
	Slot     string        `json:"slot"`
	Success  bool          `json:"success,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// RunEvent summarises a completed run. Outcome is "success" or the Stage of
// the failure.
type RunEvent struct {
	EventBase
	Outcome  string        `json:"outcome"`
	Ticks    int           `json:"ticks"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// OutcomeSuccess is the RunEvent outcome of a run that produced its output.
const OutcomeSuccess = "success"

// LifecycleHooks defines callbacks for engine observability.
// Hooks of sibling nodes under a Parallel composite are invoked concurrently.
type LifecycleHooks struct {
	OnNodeEnter  func(context.Context, *NodeEvent)
	OnNodeLeave  func(context.Context, *NodeEvent)
	OnTaskStart  func(context.Context, *TaskEvent)
	OnTaskFinish func(context.Context, *TaskEvent)
	OnRunFinish  func(context.Context, *RunEvent)
}
