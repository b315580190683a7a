package runtime

import (
	"context"
	"errors"

	"github.com/aretw0/briefing/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// Policy decides when a Parallel composite is complete.
type Policy int

const (
	// SuccessOnAll succeeds when every child succeeded and fails as soon as
	// one child fails, cancelling the siblings still in flight.
	SuccessOnAll Policy = iota
	// SuccessOnOne succeeds when at least one child succeeded and fails
	// only when every child failed.
	SuccessOnOne
)

func (p Policy) String() string {
	switch p {
	case SuccessOnAll:
		return "success_on_all"
	case SuccessOnOne:
		return "success_on_one"
	default:
		return "unknown"
	}
}

var errChildFailed = errors.New("parallel child failed")

// Parallel ticks all children concurrently, each on its own goroutine, and
// waits for every one of them before aggregating their statuses.
//
// Children that succeeded while the composite returned Running are not
// ticked again until the composite completes or is reset.
type Parallel struct {
	name      string
	policy    Policy
	children  []Node
	succeeded []bool
}

// NewParallel creates a parallel composite with the given completion policy.
func NewParallel(name string, policy Policy, children ...Node) *Parallel {
	return &Parallel{
		name:      name,
		policy:    policy,
		children:  children,
		succeeded: make([]bool, len(children)),
	}
}

func (p *Parallel) Name() string { return p.name }
func (p *Parallel) Kind() Kind   { return KindParallel }

// Policy returns the completion policy.
func (p *Parallel) Policy() Policy { return p.policy }

// Children returns the children.
func (p *Parallel) Children() []Node { return p.children }

// Reset forgets completed children and resets every child.
func (p *Parallel) Reset() {
	for i := range p.succeeded {
		p.succeeded[i] = false
	}
	for _, c := range p.children {
		c.Reset()
	}
}

// Tick runs the pending children concurrently.
func (p *Parallel) Tick(ctx context.Context, ex *Execution) domain.NodeStatus {
	return tick(ctx, ex, p, func() domain.NodeStatus {
		statuses := make([]domain.NodeStatus, len(p.children))

		g, gctx := errgroup.WithContext(ctx)
		for i, child := range p.children {
			if p.succeeded[i] {
				statuses[i] = domain.StatusSuccess
				continue
			}
			g.Go(func() error {
				statuses[i] = child.Tick(gctx, ex)
				if statuses[i] == domain.StatusFailure && p.policy == SuccessOnAll {
					return errChildFailed
				}
				return nil
			})
		}
		// Only errChildFailed is ever returned; it is reflected in statuses.
		_ = g.Wait()

		status := p.aggregate(statuses)
		if status.Done() {
			for i := range p.succeeded {
				p.succeeded[i] = false
			}
		} else {
			for i, st := range statuses {
				p.succeeded[i] = st == domain.StatusSuccess
			}
		}
		return status
	})
}

func (p *Parallel) aggregate(statuses []domain.NodeStatus) domain.NodeStatus {
	var success, failure int
	for _, st := range statuses {
		switch st {
		case domain.StatusSuccess:
			success++
		case domain.StatusFailure:
			failure++
		}
	}

	switch p.policy {
	case SuccessOnOne:
		if success > 0 {
			return domain.StatusSuccess
		}
		if failure == len(statuses) {
			return domain.StatusFailure
		}
	default:
		if failure > 0 {
			return domain.StatusFailure
		}
		if success == len(statuses) {
			return domain.StatusSuccess
		}
	}
	return domain.StatusRunning
}
