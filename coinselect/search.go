// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// DefaultMaxTries is the number of search steps after which the search gives
// up and returns the best selection found so far.
const DefaultMaxTries = 100_000

// searchParams bundles the inputs of one branch and bound run.
type searchParams struct {
	// target is the target value inflated by the fee of the transaction
	// without inputs.
	target btcutil.Amount

	// costOfChange is the width of the window above target that is still
	// accepted for a changeless transaction.
	costOfChange btcutil.Amount

	// noInputsFee is only reported to the observer.
	noInputsFee btcutil.Amount

	maxTries int

	observer Observer
}

// searchOutcome is the raw result of a run.
type searchOutcome struct {
	// best is the decision vector of the best selection, padded to the
	// pool length with false.
	best fn.Option[[]bool]

	// waste is the waste of best, or btcutil.MaxSatoshi if none.
	waste btcutil.Amount

	// tries is the number of steps taken.
	tries int

	// complete is true if the whole search space was explored.
	complete bool
}

// searchState is the tentative selection of the search together with the
// running totals derived from it. The totals are updated incrementally but
// always equal what recompute would return for the same selection.
type searchState struct {
	pool utxoPool

	// selection holds one decision per decided group. Position i refers
	// to pool[i], it only grows and shrinks at its tail.
	selection []bool

	// value is the summed effective value of the included groups.
	value btcutil.Amount

	// available is the summed effective value of the undecided groups.
	available btcutil.Amount

	// waste is the summed (fee - long-term fee) of the included groups.
	waste btcutil.Amount
}

// newSearchState returns the state with nothing decided yet.
func newSearchState(pool utxoPool) *searchState {
	return &searchState{
		pool:      pool,
		selection: make([]bool, 0, len(pool)),
		available: pool.totalEffectiveValue(),
	}
}

// depth returns the number of decided groups.
func (s *searchState) depth() int {
	return len(s.selection)
}

// feesElevated reports whether the next undecided group costs more to spend
// now than at the long-term fee rate. Once the pool is fully decided the last
// group stands in for it. Every group of a pool shares the same per-input
// fees, so the answer does not depend on which group is asked.
func (s *searchState) feesElevated() bool {
	if len(s.pool) == 0 {
		return false
	}

	next := s.depth()
	if next >= len(s.pool) {
		next = len(s.pool) - 1
	}

	return s.pool[next].Waste() > 0
}

// advance decides the next undecided group. The group is included unless
// the previous group was excluded and has the same effective value and fee.
// In that case including this one would only repeat a branch already
// explored, so it is excluded as well. It returns whether the group was
// included.
func (s *searchState) advance() bool {
	depth := s.depth()
	group := s.pool[depth]

	// The group is decided now, whatever the decision.
	s.available -= group.effectiveValue

	if depth > 0 && !s.selection[depth-1] {
		prev := s.pool[depth-1]
		if group.effectiveValue == prev.effectiveValue &&
			group.fee == prev.fee {

			s.selection = append(s.selection, false)

			return false
		}
	}

	// Inclusion branch first.
	s.selection = append(s.selection, true)
	s.value += group.effectiveValue
	s.waste += group.Waste()

	return true
}

// backtrack walks back to the deepest included group whose exclusion branch
// has not been explored yet and excludes it. Trailing excluded groups become
// undecided again on the way. It returns false once nothing is left to
// explore.
func (s *searchState) backtrack() bool {
	for s.depth() > 0 && !s.selection[s.depth()-1] {
		s.selection = s.selection[:s.depth()-1]
		s.available += s.pool[s.depth()].effectiveValue
	}

	if s.depth() == 0 {
		return false
	}

	// The group was included on previous steps, try excluding it now.
	last := s.depth() - 1
	s.selection[last] = false

	group := s.pool[last]
	s.value -= group.effectiveValue
	s.waste -= group.Waste()

	return true
}

// snapshot returns a copy of the selection padded to the pool length.
func (s *searchState) snapshot() []bool {
	best := make([]bool, len(s.pool))
	copy(best, s.selection)

	return best
}

// recompute derives value, available and waste from the selection alone.
func (s *searchState) recompute() (value, available, waste btcutil.Amount) {
	for i, g := range s.pool {
		switch {
		case i >= len(s.selection):
			available += g.effectiveValue

		case s.selection[i]:
			value += g.effectiveValue
			waste += g.Waste()
		}
	}

	return value, available, waste
}

// step builds the observer view of the current selection.
func (s *searchState) step(try int, noInputsFee btcutil.Amount) Step {
	st := Step{
		Try:         try,
		Value:       s.value,
		NoInputsFee: noInputsFee,
	}
	for i, included := range s.selection {
		if !included {
			continue
		}

		st.Groups = append(st.Groups, s.pool[i])
		st.InputFees += s.pool[i].fee
	}

	return st
}

// branchAndBound runs a depth-first search over include/exclude decisions
// for the groups of the pool and returns the decision vector with the lowest
// waste whose value lies in [target, target + costOfChange]. The pool must be
// sorted by descending effective value.
//
// Each step does exactly one of:
//   - backtrack, if the branch can no longer reach the target, already
//     overshoots the window, or is already more wasteful than the best
//     selection while fees are above the long-term rate,
//   - record and backtrack, if the branch is inside the window. Adding more
//     inputs from here would only turn value into fees,
//   - advance to the next group otherwise.
//
// A feasible selection with waste equal to the best one replaces it, so ties
// go to the selection found last.
func branchAndBound(pool utxoPool, p searchParams) searchOutcome {
	maxTries := p.maxTries
	if maxTries <= 0 {
		maxTries = DefaultMaxTries
	}

	var (
		state     = newSearchState(pool)
		best      = fn.None[[]bool]()
		bestWaste = btcutil.Amount(btcutil.MaxSatoshi)
		tries     int
		complete  bool
	)

	for ; tries < maxTries; tries++ {
		backtrack := false

		switch {
		// Cannot possibly reach the target with the value still
		// undecided.
		case state.value+state.available < p.target:
			backtrack = true

		// Selected value is out of range, go back and try another
		// branch.
		case state.value > p.target+p.costOfChange:
			backtrack = true

		// More inputs can only add waste while fees are elevated.
		case state.waste > bestWaste && state.feesElevated():
			backtrack = true

		// Selected value is within range.
		case state.value >= p.target:
			// The excess is counted as waste for the comparison
			// only, it is not part of the running total.
			excess := state.value - p.target
			if state.waste+excess <= bestWaste {
				best = fn.Some(state.snapshot())
				bestWaste = state.waste + excess

				if p.observer != nil {
					p.observer.Recorded(
						state.step(tries, p.noInputsFee),
						bestWaste,
					)
				}
			}

			backtrack = true
		}

		if backtrack {
			if p.observer != nil {
				p.observer.Backtracked(
					state.step(tries, p.noInputsFee),
				)
			}

			// Walked back past the first group, every branch has
			// been searched.
			if !state.backtrack() {
				complete = true
				tries++

				break
			}

			continue
		}

		// Moving forwards, continuing down this branch.
		if state.advance() && p.observer != nil {
			p.observer.Included(state.step(tries, p.noInputsFee))
		}
	}

	if best.IsNone() {
		bestWaste = btcutil.MaxSatoshi
	}

	return searchOutcome{
		best:     best,
		waste:    bestWaste,
		tries:    tries,
		complete: complete,
	}
}
