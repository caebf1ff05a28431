package relation

import (
	"context"
	"hash/fnv"

	"github.com/pkg/errors"

	"github.com/relalg/robdd"
)

// FromPredicate builds the relation {(x, y) in domX x domY : pred(x, y)}
// via top-down construction (robdd.Builder) rather than unioning one
// minterm per matching pair. Each Builder state is the whole prefix of
// bits decided so far, so Builder's memo never merges two distinct
// prefixes; subgraphs of the result are shared through MakeNode's
// hash-consing. Used by Compose and CollapseLeft.
func FromPredicate(m *robdd.Manager, domX, domY Domain, pred func(x, y Element) bool) (Relation, error) {
	inDomain := func(x, y Element) bool {
		return x < domX.Size && y < domY.Size && pred(x, y)
	}
	spec := &predicateSpec{
		nvx:  int(NumVars(domX)),
		nvy:  int(NumVars(domY)),
		pred: inDomain,
	}
	b := robdd.NewBuilder(m)
	node, err := b.Build(context.Background(), spec)
	if err != nil {
		return Relation{}, errors.Wrap(err, "relation: from predicate")
	}
	return Relation{m: m, domX: domX, domY: domY, node: node}, nil
}

// predicateState is the per-branch state FromPredicate threads through
// Builder: the bits decided so far, in the same root-to-leaf, row-then-
// column order bits2 encodes a pair in.
type predicateState struct {
	bits []bool
}

// Clone deep-copies the bits decided so far.
func (s *predicateState) Clone() robdd.State {
	bits := make([]bool, len(s.bits))
	copy(bits, s.bits)
	return &predicateState{bits: bits}
}

// Hash computes a hash for Builder's memo table.
func (s *predicateState) Hash() uint64 {
	h := fnv.New64a()
	for _, b := range s.bits {
		if b {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// Equal reports whether other decided the same bits in the same order.
func (s *predicateState) Equal(other robdd.State) bool {
	o, ok := other.(*predicateState)
	if !ok || len(s.bits) != len(o.bits) {
		return false
	}
	for i, b := range s.bits {
		if b != o.bits[i] {
			return false
		}
	}
	return true
}

// predicateSpec walks one bit of the pair's interleaved encoding per
// level, deferring to pred only once every row and column bit is
// decided.
type predicateSpec struct {
	nvx, nvy int
	pred     func(x, y Element) bool
}

// Variables is the total row-bit plus column-bit count.
func (s *predicateSpec) Variables() int { return s.nvx + s.nvy }

// InitialState starts with no bits decided.
func (s *predicateSpec) InitialState() robdd.State { return &predicateState{} }

// GetChild appends the bit just decided for the current level.
func (s *predicateSpec) GetChild(_ context.Context, state robdd.State, _ int, take bool) (robdd.State, error) {
	cur := state.(*predicateState)
	bits := make([]bool, len(cur.bits)+1)
	copy(bits, cur.bits)
	bits[len(cur.bits)] = take
	return &predicateState{bits: bits}, nil
}

// IsValid decodes the fully-decided row and column bits and asks pred.
func (s *predicateSpec) IsValid(state robdd.State) bool {
	st := state.(*predicateState)
	x := bitsToElement(st.bits[:s.nvx])
	y := bitsToElement(st.bits[s.nvx:])
	return s.pred(x, y)
}

// bitsToElement folds a big-endian bit slice (most significant first,
// bitsOf's own convention) back into the element it encodes.
func bitsToElement(bits []bool) Element {
	var v uint32
	for _, b := range bits {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return Element(v)
}
