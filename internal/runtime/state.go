package runtime

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/briefing/pkg/domain"
)

// Schema is the fixed set of slots a tree may write, each with exactly one
// owning Action. It is derived from the tree by BuildSchema and never
// changes afterwards.
type Schema struct {
	owners map[string]string
	order  []string
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{owners: make(map[string]string)}
}

// Declare registers slot as owned by owner.
// Declaring a slot already owned by another node is a collision.
func (s *Schema) Declare(slot, owner string) error {
	if slot == "" {
		return fmt.Errorf("node %q declares an empty slot name", owner)
	}
	if prev, ok := s.owners[slot]; ok {
		return fmt.Errorf("%w: slot %q is written by both %q and %q", ErrSlotCollision, slot, prev, owner)
	}
	s.owners[slot] = owner
	s.order = append(s.order, slot)
	return nil
}

// Has reports whether slot is declared.
func (s *Schema) Has(slot string) bool {
	_, ok := s.owners[slot]
	return ok
}

// Owner returns the name of the node that writes slot.
func (s *Schema) Owner(slot string) string {
	return s.owners[slot]
}

// Slots returns the declared slots in declaration order.
func (s *Schema) Slots() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SharedState is the run-scoped store read and written by tree nodes.
// It holds the RunContext and one write-once slot per schema entry.
// Safe for concurrent use.
type SharedState struct {
	schema *Schema
	run    domain.RunContext

	mu    sync.RWMutex
	slots map[string]domain.Payload
}

// NewSharedState allocates a state with every slot empty.
func NewSharedState(schema *Schema, run domain.RunContext) *SharedState {
	if schema == nil {
		schema = NewSchema()
	}
	return &SharedState{
		schema: schema,
		run:    run,
		slots:  make(map[string]domain.Payload),
	}
}

// Context returns the RunContext of the run.
func (s *SharedState) Context() domain.RunContext {
	return s.run
}

// Publish writes payload into slot. A slot transitions from empty to
// populated at most once; unknown slots are rejected.
func (s *SharedState) Publish(slot string, payload domain.Payload) error {
	if !s.schema.Has(slot) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownSlot, slot)
	}
	if payload == nil {
		payload = domain.Payload{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[slot]; ok {
		return fmt.Errorf("%w: %q", domain.ErrSlotOccupied, slot)
	}
	s.slots[slot] = payload.Clone()
	return nil
}

// Get returns a copy of the payload in slot. ok is false while the slot is empty.
func (s *SharedState) Get(slot string) (domain.Payload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.slots[slot]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Missing returns the subset of slots that are still empty, in the given order.
func (s *SharedState) Missing(slots ...string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var missing []string
	for _, slot := range slots {
		if _, ok := s.slots[slot]; !ok {
			missing = append(missing, slot)
		}
	}
	return missing
}

// Ready reports whether every given slot is populated.
func (s *SharedState) Ready(slots ...string) bool {
	return len(s.Missing(slots...)) == 0
}

// Snapshot returns a copy of all populated slots.
func (s *SharedState) Snapshot() map[string]domain.Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Payload, len(s.slots))
	for k, v := range s.slots {
		out[k] = v.Clone()
	}
	return out
}

// Populated returns the sorted names of populated slots.
func (s *SharedState) Populated() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.slots))
	for k := range s.slots {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
