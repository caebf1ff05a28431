package robdd

import (
	"testing"

	fuzz "github.com/google/gofuzz"
)

// fuzzVars bounds the random functions built below to a small Boolean
// cube, keeping Eval assignments and node counts cheap across many fuzz
// iterations.
const fuzzVars = 4

// randomFunction builds a Boolean function over fuzzVars variables from a
// fuzzed set of minterms: each minterm is one point of the cube, the
// function is their union. Returns a freshly owned NodeID.
func randomFunction(t *testing.T, m *Manager, f *fuzz.Fuzzer) NodeID {
	t.Helper()
	var minterms [][fuzzVars]bool
	f.NilChance(0).NumElements(0, 6).Fuzz(&minterms)

	node := m.False()
	for _, mt := range minterms {
		point, err := m.MintermVec(mt[:])
		if err != nil {
			t.Fatalf("MintermVec: %v", err)
		}
		next, err := m.Or(node, point)
		m.Unref(node)
		m.Unref(point)
		if err != nil {
			t.Fatalf("Or: %v", err)
		}
		node = next
	}
	return node
}

func randomAssignment(f *fuzz.Fuzzer) []bool {
	var bits [fuzzVars]bool
	f.Fuzz(&bits)
	return bits[:]
}

const fuzzIterations = 100

func TestFuzzAndCommutative(t *testing.T) {
	m := New()
	f := fuzz.New()
	for i := 0; i < fuzzIterations; i++ {
		a := randomFunction(t, m, f)
		b := randomFunction(t, m, f)

		ab, err := m.And(a, b)
		if err != nil {
			t.Fatalf("And: %v", err)
		}
		ba, err := m.And(b, a)
		if err != nil {
			t.Fatalf("And: %v", err)
		}
		if !m.Equal(ab, ba) {
			t.Fatalf("And is not commutative for this pair of functions")
		}
		m.Unref(a)
		m.Unref(b)
		m.Unref(ab)
		m.Unref(ba)
	}
}

func TestFuzzOrCommutative(t *testing.T) {
	m := New()
	f := fuzz.New()
	for i := 0; i < fuzzIterations; i++ {
		a := randomFunction(t, m, f)
		b := randomFunction(t, m, f)

		ab, err := m.Or(a, b)
		if err != nil {
			t.Fatalf("Or: %v", err)
		}
		ba, err := m.Or(b, a)
		if err != nil {
			t.Fatalf("Or: %v", err)
		}
		if !m.Equal(ab, ba) {
			t.Fatalf("Or is not commutative for this pair of functions")
		}
		m.Unref(a)
		m.Unref(b)
		m.Unref(ab)
		m.Unref(ba)
	}
}

func TestFuzzAndIdempotent(t *testing.T) {
	m := New()
	f := fuzz.New()
	for i := 0; i < fuzzIterations; i++ {
		a := randomFunction(t, m, f)
		aa, err := m.And(a, a)
		if err != nil {
			t.Fatalf("And: %v", err)
		}
		if !m.Equal(a, aa) {
			t.Fatalf("f AND f must equal f")
		}
		m.Unref(a)
		m.Unref(aa)
	}
}

func TestFuzzDeMorgan(t *testing.T) {
	m := New()
	f := fuzz.New()
	for i := 0; i < fuzzIterations; i++ {
		a := randomFunction(t, m, f)
		b := randomFunction(t, m, f)

		and, err := m.And(a, b)
		if err != nil {
			t.Fatalf("And: %v", err)
		}
		notAnd, err := m.Not(and)
		if err != nil {
			t.Fatalf("Not: %v", err)
		}
		m.Unref(and)

		notA, err := m.Not(a)
		if err != nil {
			t.Fatalf("Not: %v", err)
		}
		notB, err := m.Not(b)
		if err != nil {
			t.Fatalf("Not: %v", err)
		}
		orNot, err := m.Or(notA, notB)
		if err != nil {
			t.Fatalf("Or: %v", err)
		}
		m.Unref(notA)
		m.Unref(notB)

		if !m.Equal(notAnd, orNot) {
			t.Fatalf("De Morgan's law failed: NOT(a AND b) != (NOT a) OR (NOT b)")
		}
		m.Unref(notAnd)
		m.Unref(orNot)
		m.Unref(a)
		m.Unref(b)
	}
}

func TestFuzzEvalMatchesApply(t *testing.T) {
	m := New()
	f := fuzz.New()
	for i := 0; i < fuzzIterations; i++ {
		a := randomFunction(t, m, f)
		b := randomFunction(t, m, f)
		and, err := m.And(a, b)
		if err != nil {
			t.Fatalf("And: %v", err)
		}

		bits := randomAssignment(f)
		va := evalBits(t, m, a, bits)
		vb := evalBits(t, m, b, bits)
		vand := evalBits(t, m, and, bits)

		if vand != (va && vb) {
			t.Fatalf("Eval(a AND b) = %v, want Eval(a) && Eval(b) = %v", vand, va && vb)
		}

		m.Unref(a)
		m.Unref(b)
		m.Unref(and)
	}
}

func TestFuzzShiftRoundTrip(t *testing.T) {
	m := New()
	f := fuzz.New()
	const diff = 3
	for i := 0; i < fuzzIterations; i++ {
		a := randomFunction(t, m, f)

		shifted, err := m.Shift(a, diff)
		if err != nil {
			t.Fatalf("Shift: %v", err)
		}
		back, err := m.Shift(shifted, -diff)
		if err != nil {
			t.Fatalf("Shift back: %v", err)
		}
		m.Unref(shifted)

		if !m.Equal(a, back) {
			t.Fatalf("Shift(Shift(f, %d), %d) != f", diff, -diff)
		}
		m.Unref(a)
		m.Unref(back)
	}
}
