package coinselect

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
)

// Result is the outcome of a successful search.
type Result struct {
	// Coins are the selected candidates, in descending order of effective
	// value.
	Coins []coinset.Coin

	// Waste is the waste of the selection: the summed (fee - long-term
	// fee) of its inputs plus its excess over ActualTarget.
	Waste btcutil.Amount

	// EffectiveValue is the summed effective value of Coins.
	EffectiveValue btcutil.Amount

	// ActualTarget is the target plus the fee of the transaction without
	// inputs.
	ActualTarget btcutil.Amount

	// CostOfChange is the width of the accepted window above ActualTarget.
	CostOfChange btcutil.Amount

	// Tries is the number of search steps taken.
	Tries int

	// Complete is true when the whole search space was explored, in which
	// case Coins has the lowest waste of all selections in the window.
	// Otherwise the step budget ran out and Coins is the best selection
	// found until then.
	Complete bool
}

// Excess returns how much the selection overshoots the actual target. The
// excess goes to the miners as there is no change output.
func (r *Result) Excess() btcutil.Amount {
	return r.EffectiveValue - r.ActualTarget
}

// CoinSet returns the selected coins as a coinset.CoinSet.
func (r *Result) CoinSet() *coinset.CoinSet {
	return coinset.NewCoinSet(r.Coins)
}

// project maps a decision vector back to the coins of the included groups.
// It returns nil if no group is included.
func project(pool utxoPool, selection []bool) ([]coinset.Coin,
	btcutil.Amount) {

	var (
		coins []coinset.Coin
		value btcutil.Amount
	)
	for i, included := range selection {
		if !included {
			continue
		}

		coins = append(coins, pool[i].Coins()...)
		value += pool[i].EffectiveValue()
	}

	return coins, value
}
