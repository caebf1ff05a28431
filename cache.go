package robdd

import (
	"sync"

	"github.com/pkg/errors"
)

// cacheKey is the unique-table key: a non-terminal is canonical per
// (level, then, else) triple, compared by NodeID identity (spec.md §3
// invariant 3).
type cacheKey struct {
	level uint64
	then  NodeID
	els   NodeID
}

// cache is the unique table of spec.md §4.1: it owns the node arena, the
// two terminals, and the (level, then, else) -> NodeID hash-consing map.
// Non-terminal slots are reference counted; the map entry itself is the
// "weak" half of the ownership split in spec.md §3 — it does not keep a
// node alive, and is removed the instant the node's refcount reaches
// zero.
//
// A single sync.RWMutex serializes all access: probes (lookups) take a
// read lock, inserts and removals take a write lock. This satisfies both
// the single-threaded model and the synchronized model of spec.md §5
// without needing a build-tag split, at the cost of a currently-unused
// upgrade path for true lock-free single-threaded use.
type cache struct {
	mu sync.RWMutex

	slots   []slot
	unique  map[cacheKey]NodeID
	freeHd  uint32
	freeLen int

	trueID  NodeID
	falseID NodeID

	metrics *metrics
}

func newCache(m *metrics) *cache {
	c := &cache{
		unique:  make(map[cacheKey]NodeID),
		metrics: m,
	}
	// slots[0] is reserved so NodeID{index:0} can mean "null".
	c.slots = append(c.slots, slot{free: true})

	c.trueID = c.alloc(slot{kind: kindTrue, refcount: refSentinel})
	c.falseID = c.alloc(slot{kind: kindFalse, refcount: refSentinel})
	return c
}

// alloc installs s into a fresh or recycled slot and returns its NodeID.
// Caller must hold mu for writing.
func (c *cache) alloc(s slot) NodeID {
	if c.freeLen > 0 {
		idx := c.freeHd
		old := c.slots[idx]
		c.freeHd = old.nextFree
		c.freeLen--
		s.generation = old.generation + 1
		s.free = false
		c.slots[idx] = s
		return NodeID{index: idx, generation: s.generation}
	}
	idx := uint32(len(c.slots))
	s.generation = 1
	c.slots = append(c.slots, s)
	return NodeID{index: idx, generation: s.generation}
}

// release returns a slot to the free list. Caller must hold mu for writing.
func (c *cache) release(idx uint32) {
	c.slots[idx] = slot{free: true, generation: c.slots[idx].generation, nextFree: c.freeHd}
	c.freeHd = idx
	c.freeLen++
}

func (m *Manager) lookup(id NodeID) (slot, error) {
	if !id.valid() {
		return slot{}, errors.Wrapf(ErrInvalidNode, "node %v", id)
	}
	c := m.cache
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id.index) >= len(c.slots) {
		return slot{}, errors.Wrapf(ErrInvalidNode, "node %v out of range", id)
	}
	s := c.slots[id.index]
	if s.free || s.generation != id.generation {
		return slot{}, errors.Wrapf(ErrInvalidNode, "node %v stale or collected", id)
	}
	return s, nil
}

// MakeNode is the canonicalizing constructor of spec.md §4.1: given a
// level and two already-live children of the same Manager, it returns the
// unique node representing (¬x_level ∧ else) ∨ (x_level ∧ then),
// allocating a fresh slot only when no equivalent node already exists.
//
// Preconditions (checked in debug builds of client code, not re-verified
// here — spec.md §7.3): both children come from this Manager, and every
// non-terminal reachable through them has level strictly greater than
// level.
func (m *Manager) MakeNode(level uint64, then, els NodeID) (NodeID, error) {
	if _, err := m.lookup(then); err != nil {
		return NullNode, errors.Wrap(err, "then child")
	}
	if _, err := m.lookup(els); err != nil {
		return NullNode, errors.Wrap(err, "else child")
	}

	// Reduction rule: then == else collapses to that child (spec.md §3
	// invariant 2), and costs no allocation.
	if then == els {
		m.Ref(then)
		return then, nil
	}

	key := cacheKey{level: level, then: then, els: els}

	c := m.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.unique[key]; ok {
		s := c.slots[existing.index]
		if !s.free && s.generation == existing.generation {
			c.slots[existing.index].refcount++
			c.metrics.hit()
			return existing, nil
		}
		// Stale back-reference left by a node that finished dying
		// between the map lookup and here; treat as a miss (spec.md
		// §4.1 "weak revival").
		delete(c.unique, key)
	}
	c.metrics.miss()

	c.refLocked(then)
	c.refLocked(els)
	id := c.alloc(slot{kind: kindNonTerminal, level: level, then: then, els: els, refcount: 1})
	c.unique[key] = id
	c.metrics.setSize(len(c.slots) - 1 - c.freeLen)
	return id, nil
}

// refLocked bumps id's strong reference count. Caller must already hold
// c.mu for writing — this is the shared body behind Ref and MakeNode's
// miss path, which cannot call Ref directly since it already holds the
// same lock and sync.RWMutex is not reentrant.
func (c *cache) refLocked(id NodeID) {
	if !id.valid() {
		return
	}
	if int(id.index) >= len(c.slots) {
		return
	}
	s := &c.slots[id.index]
	if s.free || s.generation != id.generation || s.refcount == refSentinel {
		return
	}
	s.refcount++
}

// Ref bumps the strong reference count on id. Every NodeID a client holds
// onto (stores in a struct field, a slice, a map) must have been produced
// by a constructor (MakeNode, a factory, an Apply op) or explicitly
// Ref'd — mirroring Node::clone in the Rust original.
func (m *Manager) Ref(id NodeID) {
	c := m.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refLocked(id)
}

// Unref drops one strong reference to id. When the last reference to a
// non-terminal is dropped, the node is destroyed: its unique-table entry
// is removed under its (level, then, else) key, and its children are
// unreffed in turn — a release cascades exactly as far as the chain of
// last-references goes (spec.md §3, §5 "Re-entrancy").
func (m *Manager) Unref(id NodeID) {
	if !id.valid() {
		return
	}
	m.unrefLocked(id)
}

func (m *Manager) unrefLocked(id NodeID) {
	c := m.cache

	c.mu.Lock()
	if int(id.index) >= len(c.slots) {
		c.mu.Unlock()
		return
	}
	s := &c.slots[id.index]
	if s.free || s.generation != id.generation || s.refcount == refSentinel {
		c.mu.Unlock()
		return
	}
	s.refcount--
	if s.refcount > 0 {
		c.mu.Unlock()
		return
	}

	// Last reference gone: remove the unique-table entry (only
	// non-terminals are ever in the table), then release the slot.
	dying := *s
	if dying.kind == kindNonTerminal {
		key := cacheKey{level: dying.level, then: dying.then, els: dying.els}
		if cur, ok := c.unique[key]; ok && cur == id {
			delete(c.unique, key)
		}
	}
	c.release(id.index)
	c.metrics.setSize(len(c.slots) - 1 - c.freeLen)
	c.mu.Unlock()

	// Drop our joint ownership of the children outside the lock: their
	// own Unref will re-enter this same path (re-entrancy, spec.md §5),
	// which is safe because this slot's own mutation already finished.
	if dying.kind == kindNonTerminal {
		m.unrefLocked(dying.then)
		m.unrefLocked(dying.els)
	}
}

// Size returns the number of live nodes, including the two terminals.
func (m *Manager) Size() int {
	c := m.cache
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots) - 1 - c.freeLen
}
