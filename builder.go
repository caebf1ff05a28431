package robdd

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ConstraintSpec defines a problem specification for top-down diagram
// construction: a state machine walked once per variable level, pruning
// infeasible branches instead of building them.
//
// This complements the bottom-up Apply engine (apply.go) and factories
// (factories.go): where those combine already-built diagrams, Builder
// constructs one directly from a state transition function, sharing
// equivalent states the way spec.md §4.1 hash-consing shares equivalent
// subgraphs.
type ConstraintSpec interface {
	// Variables returns the number of decision variables.
	Variables() int

	// InitialState returns the state before any variable is assigned.
	InitialState() State

	// GetChild computes the state after assigning variable level to
	// take. level counts down from Variables() to 1 as construction
	// proceeds root to terminal (it is the number of variables,
	// including this one, left to assign) — the diagram node built from
	// this call ends up at level Variables()-level in the finished
	// diagram. Returning an error prunes this branch (MakeNode never
	// sees it).
	GetChild(ctx context.Context, state State, level int, take bool) (State, error)

	// IsValid reports whether a state reaching the terminal level is a
	// feasible solution.
	IsValid(state State) bool
}

// State is the per-branch state a ConstraintSpec threads through
// construction.
type State interface {
	Clone() State
	Hash() uint64
	Equal(other State) bool
}

// SkipState lets GetChild jump directly to a deeper level instead of
// being walked one variable at a time — sound because MakeNode(level,
// x, x) reduces to x regardless of how many intervening levels were
// elided, so skipping levels whose outcome is fixed never changes the
// diagram produced, only the work spent building it.
type SkipState struct {
	State  State
	SkipTo int
}

// NewSkipState wraps state so construction jumps straight to level skipTo.
func NewSkipState(state State, skipTo int) *SkipState {
	return &SkipState{State: state, SkipTo: skipTo}
}

// Clone deep-copies the wrapped state.
func (s *SkipState) Clone() State { return &SkipState{State: s.State.Clone(), SkipTo: s.SkipTo} }

// Hash delegates to the wrapped state.
func (s *SkipState) Hash() uint64 { return s.State.Hash() }

// Equal compares the skip target together with the wrapped state.
func (s *SkipState) Equal(other State) bool {
	o, ok := other.(*SkipState)
	return ok && s.SkipTo == o.SkipTo && s.State.Equal(o.State)
}

type memoKey struct {
	level int
	hash  uint64
}

type memoEntry struct {
	state State
	node  NodeID
}

// Builder runs ConstraintSpec-driven top-down construction against a
// Manager, grounded on the teacher's buildRecursive/NodeTable state
// deduplication, adapted to the refcounted arena: each memoized node
// holds one extra strong reference owned by the Builder itself, released
// in Build's cleanup pass once the final root has its own independent
// reference.
type Builder struct {
	m       *Manager
	memo    map[memoKey][]memoEntry
	workers int
	timeout time.Duration
}

// NewBuilder creates a Builder over m with the Workers and Timeout of
// opts. Build applies Timeout; it does not use Workers.
func NewBuilder(m *Manager, opts ...Option) *Builder {
	cfg := newConfig(opts...)
	return &Builder{m: m, memo: make(map[memoKey][]memoEntry), workers: cfg.Workers, timeout: cfg.Timeout}
}

// Build constructs a diagram from spec and returns its (owned) root node.
func (b *Builder) Build(ctx context.Context, spec ConstraintSpec) (NodeID, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	root, err := b.buildRecursive(ctx, spec, spec.InitialState(), spec.Variables())
	b.releaseMemo()
	if err != nil {
		return NullNode, errors.Wrap(err, "build")
	}
	return root, nil
}

// releaseMemo drops the Builder's own extra reference on every memoized
// node, including the root: buildRecursive's normal return-ownership
// already gave the caller its own independent reference on top of the
// one the memo holds, so every entry — root included — sheds exactly
// one reference here.
func (b *Builder) releaseMemo() {
	for _, entries := range b.memo {
		for _, e := range entries {
			b.m.Unref(e.node)
		}
	}
	b.memo = make(map[memoKey][]memoEntry)
}

func (b *Builder) lookupMemo(level int, state State) (NodeID, bool) {
	key := memoKey{level: level, hash: state.Hash()}
	for _, e := range b.memo[key] {
		if e.state.Equal(state) {
			b.m.Ref(e.node)
			return e.node, true
		}
	}
	return NullNode, false
}

func (b *Builder) storeMemo(level int, state State, node NodeID) {
	key := memoKey{level: level, hash: state.Hash()}
	b.m.Ref(node)
	b.memo[key] = append(b.memo[key], memoEntry{state: state, node: node})
}

// buildRecursive implements the top-down construction algorithm:
// explores both assignment choices for the current level, descending
// through GetChild, and folds the result via MakeNode — the same
// recursive shape as the Apply engine but driven by a problem's own
// state machine instead of two existing diagrams.
func (b *Builder) buildRecursive(ctx context.Context, spec ConstraintSpec, state State, level int) (NodeID, error) {
	select {
	case <-ctx.Done():
		return NullNode, ctx.Err()
	default:
	}

	if level == 0 {
		if spec.IsValid(state) {
			return b.m.True(), nil
		}
		return b.m.False(), nil
	}

	if node, ok := b.lookupMemo(level, state); ok {
		return node, nil
	}

	els, err := b.branch(ctx, spec, state, level, false)
	if err != nil {
		return NullNode, err
	}
	then, err := b.branch(ctx, spec, state, level, true)
	if err != nil {
		b.m.Unref(els)
		return NullNode, err
	}

	nodeLevel := uint64(spec.Variables() - level)
	node, err := b.m.makeChild(nodeLevel, then, els)
	if err != nil {
		return NullNode, err
	}
	b.storeMemo(level, state, node)
	return node, nil
}

// branch computes one arc (take or don't-take) out of state at level,
// pruning to False on constraint violation and honoring SkipState.
func (b *Builder) branch(ctx context.Context, spec ConstraintSpec, state State, level int, take bool) (NodeID, error) {
	next, err := spec.GetChild(ctx, state, level, take)
	if err != nil {
		return b.m.False(), nil
	}
	if skip, ok := next.(*SkipState); ok {
		return b.buildRecursive(ctx, spec, skip.State, skip.SkipTo)
	}
	return b.buildRecursive(ctx, spec, next, level-1)
}
