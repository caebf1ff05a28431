package robdd

// NodeID identifies a node within one Manager's arena. It is only
// meaningful together with the generation it was issued under: once a
// slot is freed and reused, a NodeID minted before the reuse no longer
// names the new occupant. This is the generation-tagged-index
// re-architecture spec.md §9 names as an alternative to weak pointers.
type NodeID struct {
	index      uint32
	generation uint32
}

// NullNode is the zero value of NodeID; it never names a live node.
var NullNode = NodeID{}

func (id NodeID) valid() bool {
	return id.index != 0
}

// kind tags what shape a node has.
type kind uint8

const (
	kindTrue kind = iota
	kindFalse
	kindNonTerminal
)

// slot is the arena's storage cell for one node. Terminals carry kind
// only; non-terminals additionally carry level/then/else. refcount is the
// number of strong references the client/graph holds on this node; the
// unique table's back-reference is NOT counted (that is the weak half of
// spec.md §3's ownership split).
type slot struct {
	kind       kind
	generation uint32
	level      uint64
	then       NodeID
	els        NodeID
	refcount   uint32

	// free is true when this slot is on the free list; nextFree chains
	// free slots together (mirrors rudd's tables.freepos/freenum).
	free     bool
	nextFree uint32
}

// refSentinel marks a refcount that must never reach zero: the two
// terminals, kept alive by the Manager itself for its whole lifetime
// (spec.md §3 "Destroying a terminal never happens while the Manager
// lives").
const refSentinel = ^uint32(0)

// Level returns the variable level a non-terminal node tests. Calling it
// on a terminal returns 0; use IsTerminal to distinguish a terminal from
// a genuine non-terminal at level 0.
func (m *Manager) Level(id NodeID) (uint64, error) {
	s, err := m.lookup(id)
	if err != nil {
		return 0, err
	}
	return s.level, nil
}

// Then returns the then-child (the branch taken when the tested variable
// is true) of a non-terminal node, or NullNode for a terminal.
func (m *Manager) Then(id NodeID) (NodeID, error) {
	s, err := m.lookup(id)
	if err != nil {
		return NullNode, err
	}
	if s.kind != kindNonTerminal {
		return NullNode, nil
	}
	return s.then, nil
}

// Else returns the else-child of a non-terminal node, or NullNode for a
// terminal.
func (m *Manager) Else(id NodeID) (NodeID, error) {
	s, err := m.lookup(id)
	if err != nil {
		return NullNode, err
	}
	if s.kind != kindNonTerminal {
		return NullNode, nil
	}
	return s.els, nil
}

// IsTrue reports whether id names the constant-true terminal.
func (m *Manager) IsTrue(id NodeID) bool {
	s, err := m.lookup(id)
	return err == nil && s.kind == kindTrue
}

// IsFalse reports whether id names the constant-false terminal.
func (m *Manager) IsFalse(id NodeID) bool {
	s, err := m.lookup(id)
	return err == nil && s.kind == kindFalse
}

// IsTerminal reports whether id names either terminal.
func (m *Manager) IsTerminal(id NodeID) bool {
	s, err := m.lookup(id)
	return err == nil && s.kind != kindNonTerminal
}
