package robdd

import lru "github.com/hashicorp/golang-lru"

// opKind distinguishes the Apply operations that share the opCache.
type opKind uint8

const (
	opNot opKind = iota
	opAnd
	opOr
	opXor
	opImplies
	opIte
	opShift
	opSplitShift
)

// opCacheKey identifies one memoized Apply call: an operator together
// with its operand identities. Shift/SplitShift have no second/third
// NodeID operand, so they fold their integer parameters (diff, or
// border/diff1/diff2) into i1/i2/i3 instead, keeping one key shape for
// every cached op.
type opCacheKey struct {
	op      opKind
	a, b, c NodeID
	i1, i2, i3 int64
}

// opCache is the Apply engine's optional computed-result cache (spec.md
// §4.3): "not required by this specification, but the canonical place for
// a computed-result cache keyed by (op, identities...)". Backed by
// github.com/hashicorp/golang-lru so memory stays bounded regardless of
// how many distinct sub-problems an Apply traversal visits.
type opCache struct {
	lru     *lru.Cache
	metrics *metrics
}

func newOpCache(size int, m *metrics) *opCache {
	c, err := lru.New(size)
	if err != nil {
		// Only returns an error for size <= 0, which callers only reach
		// through WithOperationCache guarded by size > 0.
		panic(err)
	}
	return &opCache{lru: c, metrics: m}
}

func (m *Manager) opCacheGet(key opCacheKey) (NodeID, bool) {
	if m.opCache == nil {
		return NullNode, false
	}
	v, ok := m.opCache.lru.Get(key)
	if !ok {
		m.metrics.opMiss()
		return NullNode, false
	}
	id := v.(NodeID)
	if _, err := m.lookup(id); err != nil {
		// The result died since it was memoized (all strong references
		// released) and its slot may already have been recycled under a
		// new generation; treat this exactly like a table miss.
		m.opCache.lru.Remove(key)
		m.metrics.opMiss()
		return NullNode, false
	}
	m.Ref(id)
	m.metrics.opHit()
	return id, true
}

func (m *Manager) opCachePut(key opCacheKey, result NodeID) {
	if m.opCache == nil {
		return
	}
	m.opCache.lru.Add(key, result)
}
