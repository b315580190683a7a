package runtime

// Description is a read-only, serializable view of a tree node.
type Description struct {
	Name     string        `json:"name"`
	Kind     Kind          `json:"kind"`
	Slot     string        `json:"slot,omitempty"`
	Requires []string      `json:"requires,omitempty"`
	Checks   []string      `json:"checks,omitempty"`
	Policy   string        `json:"policy,omitempty"`
	Children []Description `json:"children,omitempty"`
}

// Describe returns the description of n and its subtree.
func Describe(n Node) Description {
	d := Description{Name: n.Name(), Kind: n.Kind()}
	switch node := n.(type) {
	case *Action:
		d.Slot = node.slot
		d.Requires = node.Requires()
	case *Condition:
		d.Checks = node.Slots()
	case *Parallel:
		d.Policy = node.policy.String()
	}
	if c, ok := n.(Composite); ok {
		for _, child := range c.Children() {
			d.Children = append(d.Children, Describe(child))
		}
	}
	return d
}

// Walk visits n and its subtree depth-first, parents before children.
func Walk(n Node, visit func(Node)) {
	visit(n)
	if c, ok := n.(Composite); ok {
		for _, child := range c.Children() {
			Walk(child, visit)
		}
	}
}
