package robdd

import "hash/fnv"

// IntState is a ready-to-use State for ConstraintSpec implementations whose
// per-branch state is a small vector of counters — running totals, indices,
// or 0/1 flags threaded through Builder's top-down construction.
type IntState struct {
	Values []int
}

// NewIntState creates an IntState with the given initial values.
func NewIntState(values ...int) *IntState {
	vals := make([]int, len(values))
	copy(vals, values)
	return &IntState{Values: vals}
}

// Clone deep-copies the state.
func (s *IntState) Clone() State {
	values := make([]int, len(s.Values))
	copy(values, s.Values)
	return &IntState{Values: values}
}

// Hash computes a hash for Builder's memo table.
func (s *IntState) Hash() uint64 {
	h := fnv.New64a()
	for _, v := range s.Values {
		h.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
	}
	return h.Sum64()
}

// Equal reports whether other is an IntState with the same values.
func (s *IntState) Equal(other State) bool {
	o, ok := other.(*IntState)
	if !ok || len(s.Values) != len(o.Values) {
		return false
	}
	for i, v := range s.Values {
		if v != o.Values[i] {
			return false
		}
	}
	return true
}
