package tree

// InnerVisitor is the narrower contract MultiVisitor drives: unlike
// Visitor it does not need its own Halted() — the composite owns halt
// state for the whole pass, matching the source's commented-out
// multi-visitor which is the mechanism of record for running the name
// resolver and the variable-type visitor in a single traversal.
type InnerVisitor interface {
	Preorder(n Node, spine []Node) (descend bool)
	Postorder(n Node, spine []Node)
}

// MultiVisitor composes N inner visitors into one Visitor. Each
// non-skipped inner visitor receives every Preorder/Postorder call.
// When an inner visitor declines to descend into a node, its bookmark
// is recorded so the composite does not re-invite it into that
// subtree; the bookmark clears when Postorder fires for that same
// node. The composite itself descends iff at least one inner visitor
// wants to.
type MultiVisitor struct {
	inner     []InnerVisitor
	skippedAt []Node // parallel to inner; nil entry means "not skipped"
	halt      bool
}

// NewMultiVisitor builds a composite over the given inner visitors, in
// the order their hooks should fire.
func NewMultiVisitor(inner ...InnerVisitor) *MultiVisitor {
	return &MultiVisitor{
		inner:     inner,
		skippedAt: make([]Node, len(inner)),
	}
}

// Halt requests the composite (and therefore the whole traversal) stop
// at the next opportunity.
func (m *MultiVisitor) Halt() { m.halt = true }

func (m *MultiVisitor) Halted() bool { return m.halt }

func (m *MultiVisitor) Preorder(n Node, spine []Node) bool {
	descend := false
	for i, v := range m.inner {
		if m.skippedAt[i] != nil {
			continue
		}
		if v.Preorder(n, spine) {
			descend = true
		} else {
			m.skippedAt[i] = n
		}
	}
	return descend
}

func (m *MultiVisitor) Postorder(n Node, spine []Node) {
	for i, v := range m.inner {
		skipped := m.skippedAt[i] == n
		if m.skippedAt[i] != nil && !skipped {
			continue
		}
		v.Postorder(n, spine)
		if skipped {
			m.skippedAt[i] = nil
		}
	}
}
