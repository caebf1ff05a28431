package robdd

// Manager is the public façade over one unique table (spec.md §4.2). It
// owns the shared cache and exposes terminal accessors and MakeNode, the
// single primitive for constructing non-terminals.
//
// A Manager is a thin handle: copying it (or sharing a pointer to it)
// gives every holder access to the same underlying table, so a Boolean
// function built through one handle is usable through any other handle
// of the same Manager. Nodes from two different Managers must never be
// mixed in one operation (spec.md §9).
type Manager struct {
	cache   *cache
	opCache *opCache
	metrics *metrics
}

// New creates a Manager with an empty unique table already holding the
// two terminals.
func New(opts ...Option) *Manager {
	cfg := newConfig(opts...)
	met := newMetrics(cfg.metricsEnabled)
	m := &Manager{
		cache:   newCache(met),
		metrics: met,
	}
	if cfg.opCacheSize > 0 {
		m.opCache = newOpCache(cfg.opCacheSize, met)
	}
	return m
}

// True returns the unique true-terminal node. Cheap: a reference bump, no
// allocation or table lookup.
func (m *Manager) True() NodeID {
	m.Ref(m.cache.trueID)
	return m.cache.trueID
}

// False returns the unique false-terminal node.
func (m *Manager) False() NodeID {
	m.Ref(m.cache.falseID)
	return m.cache.falseID
}

// trueUnchecked/falseUnchecked return the terminal IDs without bumping
// their refcount; used internally where the caller already holds a
// reference it intends to reuse rather than duplicate.
func (m *Manager) trueUnchecked() NodeID  { return m.cache.trueID }
func (m *Manager) falseUnchecked() NodeID { return m.cache.falseID }
