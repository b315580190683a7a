package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotCollision is returned when two actions write the same slot.
	ErrSlotCollision = errors.New("slot collision")
	// ErrDuplicateNode is returned when two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node name")
	// ErrUndeclaredSlot is returned when a node reads a slot no action writes.
	ErrUndeclaredSlot = errors.New("undeclared slot")
)

// BuildSchema walks the tree, checks that it is well formed and returns the
// slot schema it implies.
//
// Rules:
//   - node names are unique and non-empty;
//   - every slot is written by exactly one Action;
//   - every slot read by a Condition or required by an Action is written by some Action.
func BuildSchema(root Node) (*Schema, error) {
	if root == nil {
		return nil, fmt.Errorf("cannot build a tree from a nil root")
	}

	schema := NewSchema()
	names := make(map[string]struct{})
	type read struct {
		node string
		slot string
	}
	var reads []read

	var walk func(n Node) error
	walk = func(n Node) error {
		if n == nil {
			return fmt.Errorf("tree contains a nil node")
		}
		if n.Name() == "" {
			return fmt.Errorf("%s node has an empty name", n.Kind())
		}
		if _, dup := names[n.Name()]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateNode, n.Name())
		}
		names[n.Name()] = struct{}{}

		switch node := n.(type) {
		case *Action:
			if node.task == nil {
				return fmt.Errorf("action %q has no task", node.name)
			}
			if err := schema.Declare(node.slot, node.name); err != nil {
				return err
			}
			for _, s := range node.requires {
				reads = append(reads, read{node: node.name, slot: s})
			}
		case *Condition:
			for _, s := range node.slots {
				reads = append(reads, read{node: node.name, slot: s})
			}
		}

		if c, ok := n.(Composite); ok {
			for _, child := range c.Children() {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}

	for _, r := range reads {
		if !schema.Has(r.slot) {
			return nil, fmt.Errorf("%w: node %q reads %q but no action writes it", ErrUndeclaredSlot, r.node, r.slot)
		}
		if schema.Owner(r.slot) == r.node {
			return nil, fmt.Errorf("node %q cannot require its own slot %q", r.node, r.slot)
		}
	}
	return schema, nil
}
