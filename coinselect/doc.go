// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package coinselect implements branch and bound coin selection.

Given a target amount, a fee rate, a long-term fee rate and a set of
candidate coins, the selector searches for a subset of coins whose
effective value (value minus the fee of spending it now) lands inside
the window

	[target + fee(no inputs), target + fee(no inputs) + cost of change]

so the transaction can be built without a change output. Among the subsets
inside the window it keeps the one with the lowest waste, where waste is the
sum of (fee - long-term fee) over the chosen inputs plus the excess above the
target.

The search is a depth-first walk over include/exclude decisions made on the
coins sorted by descending effective value. Inclusion is tried first, so a
good answer is found early, and the walk stops after a fixed number of steps
(100,000 by default). When the budget runs out the best selection found so
far is returned.

# Usage

	sel, err := coinselect.NewBnBSelector(coinselect.Config{
		FeeRate:         feeRate,
		LongTermFeeRate: longTermFeeRate,
		InputWeight:     inputWeight,
		NoInputsWeight:  coinselect.NoInputsWeight(outputs, true),
		ChangeSource:    changeSource,
	})
	if err != nil {
		return err
	}

	selected := sel.Select(target, coins)
	if len(selected) == 0 {
		// No changeless solution, fall back to another strategy.
	}

An empty selection means either the coins cannot cover the target at all or
no subset fits inside the window. Search distinguishes the two with
ErrInsufficientFunds and ErrNoSolution.
*/
package coinselect
