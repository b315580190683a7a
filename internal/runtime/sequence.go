package runtime

import (
	"context"

	"github.com/aretw0/briefing/pkg/domain"
)

// Sequence ticks its children left to right and stops at the first child
// that does not succeed.
//
// It has memory: when a child returns Running the sequence remembers its
// position and the next tick resumes there, so children that already
// succeeded in this run are not ticked again.
type Sequence struct {
	name     string
	children []Node
	current  int
}

// NewSequence creates a sequence with memory.
func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{name: name, children: children}
}

func (s *Sequence) Name() string { return s.name }
func (s *Sequence) Kind() Kind   { return KindSequence }

// Children returns the ordered children.
func (s *Sequence) Children() []Node { return s.children }

// Reset forgets the resume position and resets every child.
func (s *Sequence) Reset() {
	s.current = 0
	for _, c := range s.children {
		c.Reset()
	}
}

// Tick evaluates the children in order.
func (s *Sequence) Tick(ctx context.Context, ex *Execution) domain.NodeStatus {
	return tick(ctx, ex, s, func() domain.NodeStatus {
		for i := s.current; i < len(s.children); i++ {
			switch s.children[i].Tick(ctx, ex) {
			case domain.StatusRunning:
				s.current = i
				return domain.StatusRunning
			case domain.StatusFailure:
				s.current = 0
				return domain.StatusFailure
			}
		}
		s.current = 0
		return domain.StatusSuccess
	})
}
