package domain

import "fmt"

// NodeStatus is the outcome of ticking a tree node. The zero value means no
// status has been set.
type NodeStatus int

const (
	// StatusFailure means the node finished without achieving its goal.
	StatusFailure NodeStatus = iota + 1
	// StatusSuccess means the node finished and achieved its goal.
	StatusSuccess
	// StatusRunning means the node has not finished yet and must be ticked again.
	StatusRunning
)

func (s NodeStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Done reports whether the status is terminal (Success or Failure).
func (s NodeStatus) Done() bool {
	return s == StatusSuccess || s == StatusFailure
}

// MarshalText encodes the status as its name.
func (s NodeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *NodeStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "success":
		*s = StatusSuccess
	case "failure":
		*s = StatusFailure
	case "running":
		*s = StatusRunning
	case "unknown", "":
		*s = 0
	default:
		return fmt.Errorf("unknown node status %q", b)
	}
	return nil
}
