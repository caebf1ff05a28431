package robdd

import (
	"errors"
	"testing"
)

func mustBit(t *testing.T, m *Manager, i uint64) NodeID {
	t.Helper()
	id, err := m.Bit(i)
	if err != nil {
		t.Fatalf("Bit(%d): %v", i, err)
	}
	return id
}

func evalBits(t *testing.T, m *Manager, f NodeID, bits []bool) bool {
	t.Helper()
	v, err := m.Eval(f, NewSliceAssignment(bits))
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	return v
}

func TestTerminalsAndRefcounting(t *testing.T) {
	m := New()
	if m.Size() != 2 {
		t.Fatalf("Size() = %d, want 2 (just the terminals)", m.Size())
	}
	tr := m.True()
	fa := m.False()
	if !m.IsTrue(tr) || !m.IsFalse(fa) {
		t.Fatal("terminal identity mismatch")
	}
	m.Unref(tr)
	m.Unref(fa)
	if m.Size() != 2 {
		t.Fatalf("terminals must never be collected, Size() = %d", m.Size())
	}
}

func TestMakeNodeCanonical(t *testing.T) {
	m := New()
	x0 := mustBit(t, m, 0)
	x0b := mustBit(t, m, 0)
	if x0 != x0b {
		t.Fatal("Bit(0) called twice must yield the identical NodeID (hash-consing)")
	}
	m.Unref(x0)
	m.Unref(x0b)
}

func TestMakeNodeReduction(t *testing.T) {
	m := New()
	n, err := m.MakeNode(0, m.True(), m.True())
	if err != nil {
		t.Fatal(err)
	}
	if n != m.trueUnchecked() {
		t.Fatal("MakeNode(level, x, x) must reduce to x")
	}
}

func TestNotAndOrXorImplies(t *testing.T) {
	m := New()
	x0 := mustBit(t, m, 0)
	x1 := mustBit(t, m, 1)

	and, err := m.And(x0, x1)
	if err != nil {
		t.Fatal(err)
	}
	or, err := m.Or(x0, x1)
	if err != nil {
		t.Fatal(err)
	}
	xor, err := m.Xor(x0, x1)
	if err != nil {
		t.Fatal(err)
	}
	implies, err := m.Implies(x0, x1)
	if err != nil {
		t.Fatal(err)
	}
	not0, err := m.Not(x0)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		bits                   []bool
		and, or, xor, implies, not0 bool
	}{
		{[]bool{false, false}, false, false, false, true, true},
		{[]bool{true, false}, false, true, true, false, false},
		{[]bool{false, true}, false, true, true, true, true},
		{[]bool{true, true}, true, true, false, true, false},
	}
	for _, c := range cases {
		if got := evalBits(t, m, and, c.bits); got != c.and {
			t.Errorf("And%v = %v, want %v", c.bits, got, c.and)
		}
		if got := evalBits(t, m, or, c.bits); got != c.or {
			t.Errorf("Or%v = %v, want %v", c.bits, got, c.or)
		}
		if got := evalBits(t, m, xor, c.bits); got != c.xor {
			t.Errorf("Xor%v = %v, want %v", c.bits, got, c.xor)
		}
		if got := evalBits(t, m, implies, c.bits); got != c.implies {
			t.Errorf("Implies%v = %v, want %v", c.bits, got, c.implies)
		}
		if got := evalBits(t, m, not0, c.bits); got != c.not0 {
			t.Errorf("Not(x0)%v = %v, want %v", c.bits, got, c.not0)
		}
	}
}

func TestIteMatchesAndOrNot(t *testing.T) {
	m := New()
	x0 := mustBit(t, m, 0)
	x1 := mustBit(t, m, 1)
	x2 := mustBit(t, m, 2)

	ite, err := m.Ite(x0, x1, x2)
	if err != nil {
		t.Fatal(err)
	}
	for _, bits := range [][]bool{
		{true, true, false}, {true, false, false},
		{false, true, true}, {false, true, false},
	} {
		want := bits[0]
		var wv bool
		if want {
			wv = bits[1]
		} else {
			wv = bits[2]
		}
		if got := evalBits(t, m, ite, bits); got != wv {
			t.Errorf("Ite%v = %v, want %v", bits, got, wv)
		}
	}
}

func TestEqualIsSoundOnCanonicalForm(t *testing.T) {
	m := New()
	x0 := mustBit(t, m, 0)
	x1 := mustBit(t, m, 1)
	a, _ := m.And(x0, x1)
	b, _ := m.And(x1, x0)
	if !m.Equal(a, b) {
		t.Fatal("x0∧x1 and x1∧x0 must canonicalize to the same node")
	}
}

func TestShiftRoundTrip(t *testing.T) {
	m := New()
	x0 := mustBit(t, m, 0)
	x1 := mustBit(t, m, 1)
	f, _ := m.And(x0, x1)

	shifted, err := m.Shift(f, 2)
	if err != nil {
		t.Fatal(err)
	}
	back, err := m.Shift(shifted, -2)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Equal(f, back) {
		t.Fatal("Shift(f, d) then Shift(., -d) must recover f")
	}

	lvl, _ := m.Level(shifted)
	if lvl != 2 {
		t.Fatalf("shifted level = %d, want 2", lvl)
	}
}

func TestSplitShiftConverseInvolution(t *testing.T) {
	m := New()
	// border=1, diff1=+1, diff2=-1 transposes level 0 with level 1 — an
	// involution, so applying it twice must recover the original node.
	x0 := mustBit(t, m, 0)
	x1 := mustBit(t, m, 1)
	notX1, _ := m.Not(x1)
	f, _ := m.And(x0, notX1)

	swapped, err := m.SplitShift(f, 1, 1, -1)
	if err != nil {
		t.Fatal(err)
	}
	back, err := m.SplitShift(swapped, 1, 1, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Equal(f, back) {
		t.Fatal("applying the same transposing SplitShift twice must recover the original")
	}
}

func TestFactories(t *testing.T) {
	m := New()
	minterm, err := m.Minterm(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		bits []bool
		want bool
	}{
		{[]bool{false, false, false}, false},
		{[]bool{true, false, false}, false},
		{[]bool{false, true, false}, true},
		{[]bool{true, true, false}, false},
		{[]bool{false, false, true}, false},
	}
	for _, c := range cases {
		if got := evalBits(t, m, minterm, c.bits); got != c.want {
			t.Errorf("Minterm(1,3)%v = %v, want %v", c.bits, got, c.want)
		}
	}

	mv, err := m.MintermVec([]bool{true, false, true})
	if err != nil {
		t.Fatal(err)
	}
	if got := evalBits(t, m, mv, []bool{true, false, true}); !got {
		t.Error("MintermVec([t,f,t]) must be true at its own point")
	}
	if got := evalBits(t, m, mv, []bool{true, true, true}); got {
		t.Error("MintermVec([t,f,t]) must be false elsewhere")
	}
}

func TestNoLeakAfterUnref(t *testing.T) {
	m := New()
	base := m.Size()
	x0 := mustBit(t, m, 0)
	x1 := mustBit(t, m, 1)
	f, err := m.And(x0, x1)
	if err != nil {
		t.Fatal(err)
	}
	if m.Size() <= base {
		t.Fatal("expected new nodes after building And(x0, x1)")
	}
	m.Unref(x0)
	m.Unref(x1)
	m.Unref(f)
	if m.Size() != base {
		t.Fatalf("Size() = %d after releasing every reference, want %d (no leak)", m.Size(), base)
	}
}

func TestEvalUndefinedOnShortAssignment(t *testing.T) {
	m := New()
	x0 := mustBit(t, m, 0)
	x1 := mustBit(t, m, 1)
	f, _ := m.And(x0, x1)
	_, err := m.Eval(f, NewSliceAssignment([]bool{true}))
	if !errors.Is(err, ErrUndefined) {
		t.Fatalf("Eval with a short assignment must wrap ErrUndefined, got %v", err)
	}
}
