package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relalg/robdd"
)

func TestIdentityContainsOnlyDiagonal(t *testing.T) {
	m := robdd.New()
	dom := Domain{Size: 3}
	id, err := Identity(m, dom)
	require.NoError(t, err)
	defer id.Release()

	for x := Element(0); x < 3; x++ {
		for y := Element(0); y < 3; y++ {
			got, err := id.Contains(Pair{X: x, Y: y})
			require.NoError(t, err)
			assert.Equal(t, x == y, got, "identity(%d,%d)", x, y)
		}
	}
}

func TestUniversalContainsEverything(t *testing.T) {
	m := robdd.New()
	u, err := Universal(m, Domain{Size: 2}, Domain{Size: 3})
	require.NoError(t, err)
	defer u.Release()

	pairs, err := u.Iter()
	require.NoError(t, err)
	assert.Len(t, pairs, 6)
}

func TestEmptyIsEmpty(t *testing.T) {
	m := robdd.New()
	e := Empty(m, Domain{Size: 4}, Domain{Size: 4})
	defer e.Release()
	assert.True(t, e.IsEmpty())
}

func TestSparseRoundTripsThroughIter(t *testing.T) {
	m := robdd.New()
	dom := Domain{Size: 4}
	pairs := []Pair{{X: 0, Y: 1}, {X: 2, Y: 3}, {X: 3, Y: 0}}
	r, err := Sparse(m, dom, dom, pairs)
	require.NoError(t, err)
	defer r.Release()

	got, err := r.Iter()
	require.NoError(t, err)
	assert.ElementsMatch(t, pairs, got)
}

func TestConverseIsInvolution(t *testing.T) {
	m := robdd.New()
	dom := Domain{Size: 4}
	r, err := Sparse(m, dom, dom, []Pair{{X: 0, Y: 1}, {X: 2, Y: 3}})
	require.NoError(t, err)
	defer r.Release()

	swapped, err := r.Converse()
	require.NoError(t, err)
	defer swapped.Release()

	got, err := swapped.Iter()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair{{X: 1, Y: 0}, {X: 3, Y: 2}}, got)

	back, err := swapped.Converse()
	require.NoError(t, err)
	defer back.Release()
	assert.True(t, r.Equal(back))
}

func TestUnionIntersectComplement(t *testing.T) {
	m := robdd.New()
	dom := Domain{Size: 2}
	a, err := Sparse(m, dom, dom, []Pair{{X: 0, Y: 0}})
	require.NoError(t, err)
	defer a.Release()
	b, err := Sparse(m, dom, dom, []Pair{{X: 1, Y: 1}})
	require.NoError(t, err)
	defer b.Release()

	union, err := a.Union(b)
	require.NoError(t, err)
	defer union.Release()
	unionPairs, err := union.Iter()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair{{X: 0, Y: 0}, {X: 1, Y: 1}}, unionPairs)

	inter, err := a.Intersect(b)
	require.NoError(t, err)
	defer inter.Release()
	assert.True(t, inter.IsEmpty())

	notA, err := a.Complement()
	require.NoError(t, err)
	defer notA.Release()
	notAPairs, err := notA.Iter()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair{{X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1}}, notAPairs)
}

func TestIsSubsetOf(t *testing.T) {
	m := robdd.New()
	dom := Domain{Size: 3}
	small, err := Sparse(m, dom, dom, []Pair{{X: 0, Y: 0}})
	require.NoError(t, err)
	defer small.Release()
	big, err := Sparse(m, dom, dom, []Pair{{X: 0, Y: 0}, {X: 1, Y: 1}})
	require.NoError(t, err)
	defer big.Release()

	ok, err := small.IsSubsetOf(big)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = big.IsSubsetOf(small)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompose(t *testing.T) {
	m := robdd.New()
	dom := Domain{Size: 3}
	// r: 0->1, 1->2
	r, err := Sparse(m, dom, dom, []Pair{{X: 0, Y: 1}, {X: 1, Y: 2}})
	require.NoError(t, err)
	defer r.Release()
	// s: 1->0, 2->0
	s, err := Sparse(m, dom, dom, []Pair{{X: 1, Y: 0}, {X: 2, Y: 0}})
	require.NoError(t, err)
	defer s.Release()

	composed, err := r.Compose(s)
	require.NoError(t, err)
	defer composed.Release()

	got, err := composed.Iter()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair{{X: 0, Y: 0}, {X: 1, Y: 0}}, got)
}

func TestCollapseLeftAndChooseOne(t *testing.T) {
	m := robdd.New()
	dom := Domain{Size: 3}
	r, err := Sparse(m, dom, dom, []Pair{{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 1}})
	require.NoError(t, err)
	defer r.Release()

	collapsed, err := r.CollapseLeft()
	require.NoError(t, err)
	defer collapsed.Release()
	collapsedPairs, err := collapsed.Iter()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair{{X: 0, Y: 0}, {X: 1, Y: 0}}, collapsedPairs)

	chosen, err := r.ChooseOne()
	require.NoError(t, err)
	defer chosen.Release()
	chosenPairs, err := chosen.Iter()
	require.NoError(t, err)
	assert.Len(t, chosenPairs, 1)
	ok, err := r.Contains(chosenPairs[0])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNoLeakAfterRelease(t *testing.T) {
	m := robdd.New()
	base := m.Size()
	dom := Domain{Size: 4}
	r, err := Sparse(m, dom, dom, []Pair{{X: 0, Y: 1}, {X: 2, Y: 3}})
	require.NoError(t, err)
	r.Release()
	assert.Equal(t, base, m.Size(), "Relation must not leak kernel nodes")
}
