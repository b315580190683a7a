package domain

// Payload is the structured data a task produces. It is stored as-is in the
// task's SharedState slot.
type Payload map[string]any

// Clone returns a shallow copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Inputs maps a prerequisite slot name to the payload published in it.
// Tasks only receive the slots their Action declared.
type Inputs map[string]Payload

// TaskResult is the tagged outcome of a task execution.
type TaskResult struct {
	ok      bool
	payload Payload
	reason  string
}

// Succeed builds a successful result carrying payload.
func Succeed(payload Payload) TaskResult {
	return TaskResult{ok: true, payload: payload}
}

// Fail builds a failed result with a human readable reason.
func Fail(reason string) TaskResult {
	if reason == "" {
		reason = "unspecified failure"
	}
	return TaskResult{reason: reason}
}

// OK reports whether the result is a Success.
func (r TaskResult) OK() bool { return r.ok }

// Payload returns the success payload (nil on Failure).
func (r TaskResult) Payload() Payload { return r.payload }

// Reason returns the failure reason (empty on Success).
func (r TaskResult) Reason() string { return r.reason }
