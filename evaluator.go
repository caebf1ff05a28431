package robdd

import (
	"context"
	"sort"
)

// Solution is one feasible assignment extracted from a diagram built by a
// Builder: the levels assigned true, together with an optional cost.
type Solution struct {
	Variables []int
	Cost      float64
}

// countKey memoizes model counting by (node, level) rather than node
// alone: the same shared node can be reached at different depths along
// different paths through the diagram, and each occurrence needs its own
// gap-to-terminal weighting (see countFrom).
type countKey struct {
	id    NodeID
	level uint64
}

// Count returns the number of satisfying assignments to levels
// 0..vars-1 under root. A level with no node testing it (because no
// node between it and its neighbors depends on that variable) is free:
// both assignments to it are counted, contributing a factor of two —
// this is the gap-weighting countFrom performs whenever it steps from
// one node's level to a descendant's.
//
// Non-goal per spec.md: arbitrary-precision counting. Large vars can
// overflow the int64 result; callers working at that scale should
// reduce via a different representation first.
func (m *Manager) Count(ctx context.Context, root NodeID, vars int) (int64, error) {
	memo := make(map[countKey]int64)
	return m.countFrom(ctx, root, 0, uint64(vars), memo)
}

func (m *Manager) countFrom(ctx context.Context, id NodeID, level, vars uint64, memo map[countKey]int64) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}
	key := countKey{id: id, level: level}
	if v, ok := memo[key]; ok {
		return v, nil
	}
	s, err := m.lookup(id)
	if err != nil {
		return 0, err
	}

	var result int64
	switch s.kind {
	case kindFalse:
		result = 0
	case kindTrue:
		result = int64(1) << (vars - level)
	default:
		gap := s.level - level
		thenCount, err := m.countFrom(ctx, s.then, s.level+1, vars, memo)
		if err != nil {
			return 0, err
		}
		elseCount, err := m.countFrom(ctx, s.els, s.level+1, vars, memo)
		if err != nil {
			return 0, err
		}
		result = (thenCount + elseCount) << gap
	}
	memo[key] = result
	return result, nil
}

type optResult struct {
	cost float64
	vars []int
}

type optKey struct {
	id    NodeID
	level uint64
}

// Optimize finds the lowest-cost satisfying assignment, where costs[i]
// is the cost of setting level i true (costs for unset variables, and
// for levels a path never tests, are zero). Returns ok == false if root
// is unsatisfiable.
func (m *Manager) Optimize(ctx context.Context, root NodeID, vars int, costs []float64) (Solution, bool, error) {
	memo := make(map[optKey]optResult)
	res, feasible, err := m.optimizeFrom(ctx, root, 0, uint64(vars), costs, memo)
	if err != nil || !feasible {
		return Solution{}, false, err
	}
	sorted := append([]int(nil), res.vars...)
	sort.Ints(sorted)
	return Solution{Variables: sorted, Cost: res.cost}, true, nil
}

const infeasibleCost = 1e18

func (m *Manager) optimizeFrom(ctx context.Context, id NodeID, level, vars uint64, costs []float64, memo map[optKey]optResult) (optResult, bool, error) {
	select {
	case <-ctx.Done():
		return optResult{}, false, ctx.Err()
	default:
	}
	key := optKey{id: id, level: level}
	if v, ok := memo[key]; ok {
		return v, v.cost < infeasibleCost, nil
	}
	s, err := m.lookup(id)
	if err != nil {
		return optResult{}, false, err
	}

	var result optResult
	var feasible bool
	switch s.kind {
	case kindFalse:
		result = optResult{cost: infeasibleCost}
		feasible = false
	case kindTrue:
		// Every level from here to the terminal is free; leaving all of
		// them unset is always at least as cheap as setting any of
		// them, so the optimum never sets them (costs are assumed >= 0).
		result = optResult{cost: 0, vars: nil}
		feasible = true
	default:
		thenRes, thenOK, err := m.optimizeFrom(ctx, s.then, s.level+1, vars, costs, memo)
		if err != nil {
			return optResult{}, false, err
		}
		elseRes, elseOK, err := m.optimizeFrom(ctx, s.els, s.level+1, vars, costs, memo)
		if err != nil {
			return optResult{}, false, err
		}
		thenCost := infeasibleCost
		if thenOK {
			thenCost = thenRes.cost
			if int(s.level) < len(costs) {
				thenCost += costs[s.level]
			}
		}
		switch {
		case !thenOK && !elseOK:
			result = optResult{cost: infeasibleCost}
			feasible = false
		case elseOK && (!thenOK || elseRes.cost <= thenCost):
			result = optResult{cost: elseRes.cost, vars: elseRes.vars}
			feasible = true
		default:
			chosen := append([]int{int(s.level)}, thenRes.vars...)
			result = optResult{cost: thenCost, vars: chosen}
			feasible = true
		}
	}
	memo[key] = result
	return result, feasible, nil
}

// KBest returns up to k lowest-cost satisfying assignments, ascending by
// cost, by enumerating every assignment and sorting — adequate for the
// diagram sizes this kernel targets (spec.md has no scalability
// requirement for this convenience beyond Apply itself).
func (m *Manager) KBest(ctx context.Context, root NodeID, vars, k int, costs []float64) ([]Solution, error) {
	if k <= 0 {
		return nil, nil
	}
	all, err := m.enumerate(ctx, root, 0, uint64(vars), costs, nil, 0)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Cost < all[j].Cost })
	if len(all) > k {
		all = all[:k]
	}
	return all, nil
}

// enumerate walks every satisfying assignment. A level a path reaches
// before id's own test level (or, for a terminal, before vars) is free:
// the diagram's value doesn't depend on it, but a full assignment still
// has to pick something for it, so both choices are branched on
// explicitly here before id itself is examined — the explicit
// counterpart to the 2^gap factor countFrom folds into a single number.
func (m *Manager) enumerate(ctx context.Context, id NodeID, level, vars uint64, costs []float64, chosen []int, cost float64) ([]Solution, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	actualLevel := vars
	if s.kind == kindNonTerminal {
		actualLevel = s.level
	}
	if level < actualLevel {
		notTaken, err := m.enumerate(ctx, id, level+1, vars, costs, chosen, cost)
		if err != nil {
			return nil, err
		}
		takeCost := cost
		if int(level) < len(costs) {
			takeCost += costs[level]
		}
		taken, err := m.enumerate(ctx, id, level+1, vars, costs, append(append([]int(nil), chosen...), int(level)), takeCost)
		if err != nil {
			return nil, err
		}
		return append(notTaken, taken...), nil
	}

	switch s.kind {
	case kindFalse:
		return nil, nil
	case kindTrue:
		sorted := append([]int(nil), chosen...)
		sort.Ints(sorted)
		return []Solution{{Variables: sorted, Cost: cost}}, nil
	}

	elseSols, err := m.enumerate(ctx, s.els, s.level+1, vars, costs, chosen, cost)
	if err != nil {
		return nil, err
	}
	thenCost := cost
	if int(s.level) < len(costs) {
		thenCost += costs[s.level]
	}
	thenSols, err := m.enumerate(ctx, s.then, s.level+1, vars, costs, append(append([]int(nil), chosen...), int(s.level)), thenCost)
	if err != nil {
		return nil, err
	}
	return append(elseSols, thenSols...), nil
}
