package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSlotNotReady is returned when a reader finds a required slot empty.
var ErrSlotNotReady = errors.New("slot not ready")

// ErrSlotOccupied is returned when a slot is written a second time within a run.
var ErrSlotOccupied = errors.New("slot already populated")

// ErrUnknownSlot is returned when a slot was not declared in the state schema.
var ErrUnknownSlot = errors.New("unknown slot")

// ErrTaskTimeout is the cause recorded when a task exceeds its deadline.
var ErrTaskTimeout = errors.New("task timed out")

// SlotError names the slots that were found empty.
type SlotError struct {
	Slots []string
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("missing slots [%s]", strings.Join(e.Slots, ", "))
}

func (e *SlotError) Unwrap() error { return ErrSlotNotReady }

// TaskFailure describes a task that did not produce its slot.
type TaskFailure struct {
	Task   string // Node name of the Action that ran the task
	Slot   string // Destination slot that was left empty
	Reason string
	Cause  error // Optional underlying error (timeout, cancellation, slot error)
}

func (e *TaskFailure) Error() string {
	return fmt.Sprintf("task %q failed: %s", e.Task, e.Reason)
}

func (e *TaskFailure) Unwrap() error { return e.Cause }

// Stage identifies the phase of the briefing tree in which a run failed.
type Stage string

const (
	StageGathering Stage = "gathering"
	StageReadiness Stage = "readiness"
	StageSynthesis Stage = "synthesis"
	StageOutput    Stage = "output"
)

// TreeEvaluationFailure is returned by a run whose root did not succeed or
// whose final slot is empty.
type TreeEvaluationFailure struct {
	Stage  Stage
	Node   string     // Name of the node responsible for the failure
	Status NodeStatus // Final status of the root
	Cause  error
}

func (e *TreeEvaluationFailure) Error() string {
	switch e.Stage {
	case StageGathering:
		return fmt.Sprintf("gathering task %q failed: %s", e.Node, reason(e.Cause))
	case StageSynthesis:
		return fmt.Sprintf("synthesis task %q failed: %s", e.Node, reason(e.Cause))
	case StageReadiness:
		return fmt.Sprintf("readiness condition %q was never met: %s", e.Node, reason(e.Cause))
	default:
		if e.Cause != nil {
			return fmt.Sprintf("tree evaluation failed (root %s): %v", e.Status, e.Cause)
		}
		return fmt.Sprintf("tree evaluation failed (root %s)", e.Status)
	}
}

func (e *TreeEvaluationFailure) Unwrap() error { return e.Cause }

func reason(err error) string {
	if err == nil {
		return "no reason reported"
	}
	var tf *TaskFailure
	if errors.As(err, &tf) {
		return tf.Reason
	}
	return err.Error()
}
