// Package robdd implements a reduced ordered binary decision diagram
// (ROBDD) engine: a hash-consed, reference-counted graph of Shannon
// expansion nodes representing Boolean functions over an ordered set of
// variables.
package robdd

import "errors"

// Core kernel errors. Wrapped with additional context via
// github.com/pkg/errors at call sites.
var (
	// ErrInvalidNode indicates a NodeID does not name a live node in this
	// Manager (stale generation, out-of-range index, or the null ID).
	ErrInvalidNode = errors.New("robdd: invalid node")

	// ErrForeignNode indicates a node from a different Manager was passed
	// to an operation. Mixing nodes from distinct Managers is a
	// precondition violation (spec §7.3). No kernel operation checks for
	// it or returns this error: a NodeID is always looked up in the
	// receiving Manager's own arena.
	ErrForeignNode = errors.New("robdd: node belongs to a different manager")

	// ErrBadLevel indicates a level precondition was violated, e.g.
	// Minterm(i, n) with i >= n.
	ErrBadLevel = errors.New("robdd: invalid variable level")

	// ErrUndefined is returned by Eval when the assignment runs out
	// before reaching every level the diagram tests.
	ErrUndefined = errors.New("robdd: assignment exhausted before evaluation completed")

	// ErrMemoryLimit indicates the configured node-table memory budget
	// has been exceeded.
	ErrMemoryLimit = errors.New("robdd: memory limit exceeded")

	// ErrInfeasible indicates a constraint-driven construction found no
	// satisfying assignment.
	ErrInfeasible = errors.New("robdd: no feasible solutions")

	// ErrInvalidConstraint indicates a ConstraintSpec produced a state
	// that the evaluator protocol does not accept.
	ErrInvalidConstraint = errors.New("robdd: invalid constraint specification")
)
