package relation

import (
	"github.com/pkg/errors"

	"github.com/relalg/robdd"
)

// Relation is a binary relation over (DomainX, DomainY), represented as a
// ROBDD node over the interleaved bit encoding of its domain pair (spec.md
// §6): row bits occupy the lower levels, column bits the higher ones.
// Relation owns one strong reference on node; callers must Release it (or
// Clone it before sharing) the same way a NodeID borrowed from the kernel
// must eventually be unreffed.
type Relation struct {
	m    *robdd.Manager
	domX Domain
	domY Domain
	node robdd.NodeID
}

// DomainX returns the relation's row domain.
func (r Relation) DomainX() Domain { return r.domX }

// DomainY returns the relation's column domain.
func (r Relation) DomainY() Domain { return r.domY }

// Release drops the relation's reference on its underlying node.
func (r Relation) Release() { r.m.Unref(r.node) }

// Clone returns an independent Relation sharing the same underlying node,
// bumping its reference count.
func (r Relation) Clone() Relation {
	r.m.Ref(r.node)
	return r
}

// Empty returns the relation containing no pairs.
func Empty(m *robdd.Manager, domX, domY Domain) Relation {
	return Relation{m: m, domX: domX, domY: domY, node: m.False()}
}

// Identity returns {(x, x) : x in dom}.
func Identity(m *robdd.Manager, dom Domain) (Relation, error) {
	pairs := make([]Pair, dom.Size)
	for i := range pairs {
		pairs[i] = Pair{X: Element(i), Y: Element(i)}
	}
	return Sparse(m, dom, dom, pairs)
}

// Universal returns the relation containing every pair in domX x domY.
func Universal(m *robdd.Manager, domX, domY Domain) (Relation, error) {
	if domX.Size == 0 || domY.Size == 0 {
		return Empty(m, domX, domY), nil
	}
	xBound, err := m.LessThanEqVec(bitsOf(domX, domX.Size-1))
	if err != nil {
		return Relation{}, errors.Wrap(err, "universal: row bound")
	}
	yBoundLow, err := m.LessThanEqVec(bitsOf(domY, domY.Size-1))
	if err != nil {
		m.Unref(xBound)
		return Relation{}, errors.Wrap(err, "universal: column bound")
	}
	yBound, err := m.Shift(yBoundLow, int64(NumVars(domX)))
	m.Unref(yBoundLow)
	if err != nil {
		m.Unref(xBound)
		return Relation{}, errors.Wrap(err, "universal: shift column bound")
	}
	node, err := m.And(xBound, yBound)
	m.Unref(xBound)
	m.Unref(yBound)
	if err != nil {
		return Relation{}, errors.Wrap(err, "universal")
	}
	return Relation{m: m, domX: domX, domY: domY, node: node}, nil
}

// Sparse returns the relation containing exactly pairs, each of which must
// lie within domX x domY.
func Sparse(m *robdd.Manager, domX, domY Domain, pairs []Pair) (Relation, error) {
	node := m.False()
	for _, p := range pairs {
		if p.X >= domX.Size {
			m.Unref(node)
			return Relation{}, errors.Errorf("relation: x=%d is not in domain of size %d", p.X, domX.Size)
		}
		if p.Y >= domY.Size {
			m.Unref(node)
			return Relation{}, errors.Errorf("relation: y=%d is not in domain of size %d", p.Y, domY.Size)
		}
		point, err := m.MintermVec(bits2(domX, domY, p))
		if err != nil {
			m.Unref(node)
			return Relation{}, err
		}
		next, err := m.Or(node, point)
		m.Unref(node)
		m.Unref(point)
		if err != nil {
			return Relation{}, err
		}
		node = next
	}
	return Relation{m: m, domX: domX, domY: domY, node: node}, nil
}

// TrueRelation is the nullary relation over a singleton domain holding the
// one pair (0, 0) — the "true" value when relations double as booleans.
func TrueRelation(m *robdd.Manager) (Relation, error) {
	return Universal(m, Domain{Size: 1}, Domain{Size: 1})
}

// FalseRelation is the nullary relation over a singleton domain holding no
// pairs — the "false" value when relations double as booleans.
func FalseRelation(m *robdd.Manager) Relation {
	return Empty(m, Domain{Size: 1}, Domain{Size: 1})
}

// Converse swaps the relation's two axes: split_shift transposes the row
// bit block with the column bit block (spec.md §6's border = row-bit
// count, Δ₁ = +column-bit count, Δ₂ = -row-bit count).
func (r Relation) Converse() (Relation, error) {
	nvx := int64(NumVars(r.domX))
	nvy := int64(NumVars(r.domY))
	node, err := r.m.SplitShift(r.node, uint64(nvx), nvy, -nvx)
	if err != nil {
		return Relation{}, errors.Wrap(err, "converse")
	}
	return Relation{m: r.m, domX: r.domY, domY: r.domX, node: node}, nil
}

// IsEmpty reports whether the relation holds no pairs.
func (r Relation) IsEmpty() bool { return r.m.IsFalse(r.node) }

// IsSubsetOf reports whether every pair of r is also a pair of other.
// Domains are assumed to match; callers composing mismatched domains get
// an answer over whatever bit pattern the two nodes happen to share.
func (r Relation) IsSubsetOf(other Relation) (bool, error) {
	imp, err := r.m.Implies(r.node, other.node)
	if err != nil {
		return false, err
	}
	defer r.m.Unref(imp)
	return r.m.IsTrue(imp), nil
}

// Contains reports whether pair is a member of the relation.
func (r Relation) Contains(pair Pair) (bool, error) {
	return r.m.Eval(r.node, robdd.NewSliceAssignment(bits2(r.domX, r.domY, pair)))
}

// Iter lists every pair the relation contains, in row-major order.
func (r Relation) Iter() ([]Pair, error) {
	var out []Pair
	for _, x := range iterDomain(r.domX) {
		for _, y := range iterDomain(r.domY) {
			p := Pair{X: x, Y: y}
			ok, err := r.Contains(p)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// CollapseLeft projects the relation down to its row domain: the result
// relates x to 0 whenever some y makes (x, y) a member.
func (r Relation) CollapseLeft() (Relation, error) {
	ys := iterDomain(r.domY)
	return FromPredicate(r.m, r.domX, Domain{Size: 1}, func(x, _ Element) bool {
		for _, y := range ys {
			ok, err := r.Contains(Pair{X: x, Y: y})
			if err == nil && ok {
				return true
			}
		}
		return false
	})
}

// ChooseOne returns a relation holding at most one pair of r.
func (r Relation) ChooseOne() (Relation, error) {
	pairs, err := r.Iter()
	if err != nil {
		return Relation{}, err
	}
	if len(pairs) > 1 {
		pairs = pairs[:1]
	}
	return Sparse(r.m, r.domX, r.domY, pairs)
}

// Union returns the relation containing every pair in r or other.
func (r Relation) Union(other Relation) (Relation, error) {
	node, err := r.m.Or(r.node, other.node)
	if err != nil {
		return Relation{}, err
	}
	return Relation{m: r.m, domX: r.domX, domY: r.domY, node: node}, nil
}

// Intersect returns the relation containing every pair in both r and other.
func (r Relation) Intersect(other Relation) (Relation, error) {
	node, err := r.m.And(r.node, other.node)
	if err != nil {
		return Relation{}, err
	}
	return Relation{m: r.m, domX: r.domX, domY: r.domY, node: node}, nil
}

// Complement returns the relation containing every pair of domX x domY not
// in r.
func (r Relation) Complement() (Relation, error) {
	universal, err := Universal(r.m, r.domX, r.domY)
	if err != nil {
		return Relation{}, err
	}
	defer universal.Release()
	node, err := r.m.Xor(r.node, universal.node)
	if err != nil {
		return Relation{}, err
	}
	return Relation{m: r.m, domX: r.domX, domY: r.domY, node: node}, nil
}

// Equal reports whether r and other hold the same pairs, relying on the
// kernel's canonical-form invariant (identical node means identical set).
func (r Relation) Equal(other Relation) bool {
	return r.m.Equal(r.node, other.node)
}

// Compose computes relational product: (x, z) is in the result iff some y
// makes (x, y) a member of r and (y, z) a member of other. r's column
// domain must match other's row domain. Built via FromPredicate's
// top-down construction rather than unioning one minterm per matching
// (x, z) pair.
//
// TODO: the predicate itself still enumerates the shared y domain via
// Contains rather than folding it through the kernel's own Apply
// operations; fine for the domain sizes this layer targets, too slow for
// large ones.
func (r Relation) Compose(other Relation) (Relation, error) {
	if r.domY.Size != other.domX.Size {
		return Relation{}, errors.Errorf("relation: cannot compose domain %d with domain %d", r.domY.Size, other.domX.Size)
	}
	mid := iterDomain(r.domY)
	return FromPredicate(r.m, r.domX, other.domY, func(x, z Element) bool {
		for _, y := range mid {
			left, err := r.Contains(Pair{X: x, Y: y})
			if err != nil || !left {
				continue
			}
			right, err := other.Contains(Pair{X: y, Y: z})
			if err == nil && right {
				return true
			}
		}
		return false
	})
}

// DirectSum combines r and other block-diagonally: r's pairs occupy the
// low block of the result's domain unshifted, other's pairs occupy the
// high block shifted past r's domain sizes. The toy language's '+'
// operator (original_source/src/ast.rs's BinOp::Sum) was left as
// `todo!()` in eval.rs; direct sum is the standard relational-algebra
// reading of "sum" for two relations of possibly different domains.
func (r Relation) DirectSum(other Relation) (Relation, error) {
	newDomX := Domain{Size: r.domX.Size + other.domX.Size}
	newDomY := Domain{Size: r.domY.Size + other.domY.Size}

	leftPairs, err := r.Iter()
	if err != nil {
		return Relation{}, err
	}
	rightPairs, err := other.Iter()
	if err != nil {
		return Relation{}, err
	}

	pairs := make([]Pair, 0, len(leftPairs)+len(rightPairs))
	pairs = append(pairs, leftPairs...)
	for _, p := range rightPairs {
		pairs = append(pairs, Pair{X: p.X + r.domX.Size, Y: p.Y + r.domY.Size})
	}
	return Sparse(r.m, newDomX, newDomY, pairs)
}
