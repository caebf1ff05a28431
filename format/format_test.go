package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relalg/robdd"
	"github.com/relalg/robdd/relation"
)

func TestFormatRelation(t *testing.T) {
	m := robdd.New()
	r, err := relation.Sparse(m, relation.Domain{Size: 3}, relation.Domain{Size: 3},
		[]relation.Pair{{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 2, Y: 0}})
	require.NoError(t, err)
	defer r.Release()

	out, err := FormatRelation("R", r)
	require.NoError(t, err)
	assert.Equal(t, "R (3, 3)\n1 : 2, 3\n3 : 1\n", out)
}

func TestFormatMatrix(t *testing.T) {
	m := robdd.New()
	r, err := relation.Sparse(m, relation.Domain{Size: 2}, relation.Domain{Size: 2},
		[]relation.Pair{{X: 0, Y: 1}, {X: 1, Y: 1}})
	require.NoError(t, err)
	defer r.Release()

	out, err := FormatMatrix(r)
	require.NoError(t, err)
	assert.Equal(t, "+--+\n| X|\n| X|\n+--+\n", out)
}

func TestParseRelationRoundTrips(t *testing.T) {
	m := robdd.New()
	src := "R (3, 3)\n1 : 2, 3\n3 : 1\n"

	name, r, err := ParseRelation(m, src)
	require.NoError(t, err)
	defer r.Release()
	assert.Equal(t, "R", name)

	out, err := FormatRelation(name, r)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestParseMatrixRoundTrips(t *testing.T) {
	m := robdd.New()
	src := "+--+\n| X|\n| X|\n+--+\n"

	r, err := ParseMatrix(m, src)
	require.NoError(t, err)
	defer r.Release()

	out, err := FormatMatrix(r)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestParseRelationEmptyRowsOmitted(t *testing.T) {
	m := robdd.New()
	src := "Empty (2, 2)\n"

	_, r, err := ParseRelation(m, src)
	require.NoError(t, err)
	defer r.Release()
	assert.True(t, r.IsEmpty())
}

func TestParseRelationRejectsMalformedHeader(t *testing.T) {
	m := robdd.New()
	_, _, err := ParseRelation(m, "not a header\n")
	assert.Error(t, err)
}

func TestParseMatrixRejectsBadWidth(t *testing.T) {
	m := robdd.New()
	_, err := ParseMatrix(m, "+--+\n|X|\n+--+\n")
	assert.Error(t, err)
}
