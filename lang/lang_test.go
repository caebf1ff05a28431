package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relalg/robdd"
	"github.com/relalg/robdd/relation"
)

func TestParseFunctionDef(t *testing.T) {
	prog, err := Parse("Converse(R) = R^.")
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)

	fn, ok := prog.Items[0].(*FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "Converse", fn.Name)
	assert.Equal(t, []string{"R"}, fn.Params)
	_, ok = fn.Value.(*TransposeExpr)
	assert.True(t, ok)
}

func TestParseProcedureWithControlFlow(t *testing.T) {
	src := `
TC(R)
DECL P
BEG
  P = R
  WHILE -eq(P, P * R | P) DO
    P = P * R | P
  OD
  RETURN P
END.
`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)
	proc, ok := prog.Items[0].(*Procedure)
	require.True(t, ok)
	assert.Equal(t, "TC", proc.Name)
	assert.Equal(t, []string{"R"}, proc.Params)
	assert.Equal(t, []string{"P"}, proc.Decls)
	require.Len(t, proc.Body, 3)
	_, ok = proc.Body[1].(*WhileStmt)
	assert.True(t, ok)
	_, ok = proc.Body[2].(*ReturnStmt)
	assert.True(t, ok)
}

func TestEvalUnionCompose(t *testing.T) {
	m := robdd.New()
	dom := relation.Domain{Size: 3}
	a, err := relation.Sparse(m, dom, dom, []relation.Pair{{X: 0, Y: 1}})
	require.NoError(t, err)
	defer a.Release()
	b, err := relation.Sparse(m, dom, dom, []relation.Pair{{X: 1, Y: 2}})
	require.NoError(t, err)
	defer b.Release()

	g := NewGlobals(m)
	locals := newLocals()
	defer locals.releaseAll()
	locals.declare("A")
	locals.declare("B")
	locals.assign("A", a.Clone())
	locals.assign("B", b.Clone())

	union, err := Eval(g, locals, &BinExpr{Left: &IdentExpr{Ident: "A"}, Op: OpUnion, Right: &IdentExpr{Ident: "B"}})
	require.NoError(t, err)
	defer union.Release()
	pairs, err := union.Iter()
	require.NoError(t, err)
	assert.ElementsMatch(t, []relation.Pair{{X: 0, Y: 1}, {X: 1, Y: 2}}, pairs)

	composed, err := Eval(g, locals, &BinExpr{Left: &IdentExpr{Ident: "A"}, Op: OpCompose, Right: &IdentExpr{Ident: "B"}})
	require.NoError(t, err)
	defer composed.Release()
	composedPairs, err := composed.Iter()
	require.NoError(t, err)
	assert.ElementsMatch(t, []relation.Pair{{X: 0, Y: 2}}, composedPairs)
}

func TestEvalBuiltinsAndEq(t *testing.T) {
	m := robdd.New()
	g := NewGlobals(m)
	locals := newLocals()
	defer locals.releaseAll()

	tru, err := Eval(g, locals, &CallExpr{Func: "TRUE"})
	require.NoError(t, err)
	defer tru.Release()
	assert.False(t, tru.IsEmpty())

	fals, err := Eval(g, locals, &CallExpr{Func: "FALSE"})
	require.NoError(t, err)
	defer fals.Release()
	assert.True(t, fals.IsEmpty())

	eq, err := Eval(g, locals, &CallExpr{Func: "eq", Args: []Expr{&CallExpr{Func: "TRUE"}, &CallExpr{Func: "TRUE"}}})
	require.NoError(t, err)
	defer eq.Release()
	assert.False(t, eq.IsEmpty())
}

func TestRunProcedureTransitiveClosure(t *testing.T) {
	m := robdd.New()
	src := `
TC(R)
DECL P
BEG
  P = R
  WHILE -eq(P * R | P, P) DO
    P = P * R | P
  OD
  RETURN P
END.
`
	prog, err := Parse(src)
	require.NoError(t, err)

	dom := relation.Domain{Size: 4}
	r, err := relation.Sparse(m, dom, dom, []relation.Pair{{X: 0, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 3}})
	require.NoError(t, err)
	defer r.Release()

	g := NewGlobals(m)
	result, err := Run(g, prog, "TC", []relation.Relation{r})
	require.NoError(t, err)
	defer result.Release()

	pairs, err := result.Iter()
	require.NoError(t, err)
	assert.ElementsMatch(t, []relation.Pair{
		{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0, Y: 3},
		{X: 1, Y: 2}, {X: 1, Y: 3},
		{X: 2, Y: 3},
	}, pairs)
}

func TestEvalUnknownLocal(t *testing.T) {
	m := robdd.New()
	g := NewGlobals(m)
	locals := newLocals()
	defer locals.releaseAll()

	_, err := Eval(g, locals, &IdentExpr{Ident: "nope"})
	assert.ErrorIs(t, err, ErrUnknownLocal)
}

func TestNoLeakAfterEval(t *testing.T) {
	m := robdd.New()
	base := m.Size()
	dom := relation.Domain{Size: 2}
	a, err := relation.Sparse(m, dom, dom, []relation.Pair{{X: 0, Y: 1}})
	require.NoError(t, err)

	g := NewGlobals(m)
	locals := newLocals()
	locals.declare("A")
	locals.assign("A", a)

	result, err := Eval(g, locals, &TransposeExpr{Value: &IdentExpr{Ident: "A"}})
	require.NoError(t, err)
	result.Release()
	locals.releaseAll()

	assert.Equal(t, base, m.Size(), "evaluation must not leak kernel nodes")
}
