package robdd

import "github.com/pkg/errors"

// Factory helpers (spec.md §4.4), grounded on
// original_source/rel-lang-dd/src/factories.rs: small, commonly-needed
// Boolean functions built directly via MakeNode rather than through
// Apply, since their shape is known up front.

// Bit returns the node for f(b) = b[i]: true iff variable level i is set.
func (m *Manager) Bit(i uint64) (NodeID, error) {
	return m.MakeNode(i, m.trueUnchecked(), m.falseUnchecked())
}

// Minterm returns the node for f(b) = all(b[j] == (j == i) for j < n):
// the single point in the n-variable Boolean cube where only bit i is
// set.
func (m *Manager) Minterm(i, n uint64) (NodeID, error) {
	if i >= n {
		return NullNode, errors.Wrapf(ErrBadLevel, "minterm index %d out of range for %d variables", i, n)
	}
	node := m.trueUnchecked()
	owned := false
	falseN := m.falseUnchecked()
	for j := n; j > 0; j-- {
		level := j - 1
		var next NodeID
		var err error
		if level == i {
			next, err = m.MakeNode(level, node, falseN)
		} else {
			next, err = m.MakeNode(level, falseN, node)
		}
		if owned {
			m.Unref(node)
		}
		if err != nil {
			return NullNode, err
		}
		node = next
		owned = true
	}
	return node, nil
}

// MintermVec returns the node for f(b) = all(b[i] == v[i] for i < len(v)):
// the single point in the Boolean cube named by v.
func (m *Manager) MintermVec(v []bool) (NodeID, error) {
	node := m.trueUnchecked()
	owned := false
	falseN := m.falseUnchecked()
	for i := len(v) - 1; i >= 0; i-- {
		var next NodeID
		var err error
		if v[i] {
			next, err = m.MakeNode(uint64(i), node, falseN)
		} else {
			next, err = m.MakeNode(uint64(i), falseN, node)
		}
		if owned {
			m.Unref(node)
		}
		if err != nil {
			return NullNode, err
		}
		node = next
		owned = true
	}
	return node, nil
}

// LessThanEqVec returns the node constraining its argument, read as a
// big-endian bit vector over levels 0..len(v)-1, to be at most v. At a
// level where v is set, an argument bit of 0 leaves the remaining suffix
// unconstrained and an argument bit of 1 leaves the suffix to satisfy
// the bound; at a level where v is clear, an argument bit of 1 exceeds
// the bound and an argument bit of 0 leaves the suffix to satisfy it.
func (m *Manager) LessThanEqVec(v []bool) (NodeID, error) {
	node := m.trueUnchecked()
	owned := false
	trueN := m.trueUnchecked()
	falseN := m.falseUnchecked()
	for i := len(v) - 1; i >= 0; i-- {
		var next NodeID
		var err error
		if v[i] {
			next, err = m.MakeNode(uint64(i), node, trueN)
		} else {
			next, err = m.MakeNode(uint64(i), falseN, node)
		}
		if owned {
			m.Unref(node)
		}
		if err != nil {
			return NullNode, err
		}
		node = next
		owned = true
	}
	return node, nil
}
