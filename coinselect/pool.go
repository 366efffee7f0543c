package coinselect

import (
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
)

// utxoPool is the list of groups the search decides on, sorted by
// descending effective value.
type utxoPool []*OutputGroup

// newUtxoPool wraps every coin into its own group and orders the groups by
// descending effective value. The sort is stable, so groups with equal
// effective value keep the order in which the coins were given.
func newUtxoPool(coins []coinset.Coin, fees inputFees) utxoPool {
	pool := make(utxoPool, 0, len(coins))
	for _, coin := range coins {
		pool = append(pool, newOutputGroup(fees, coin))
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].effectiveValue > pool[j].effectiveValue
	})

	return pool
}

// totalEffectiveValue returns the sum of the effective values of all groups.
func (p utxoPool) totalEffectiveValue() btcutil.Amount {
	var total btcutil.Amount
	for _, g := range p {
		total += g.effectiveValue
	}

	return total
}
