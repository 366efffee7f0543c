package coinselect

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/coinselect/pkg/btcunit"
)

// inputFees holds the marginal cost of adding one input to a transaction,
// both at the current fee rate and at the long-term fee rate. Both values are
// derived from the same input weight.
type inputFees struct {
	// fee is floor(inputWeight * feeRate / WitnessScaleFactor).
	fee btcutil.Amount

	// longTermFee is floor(inputWeight * longTermFeeRate /
	// WitnessScaleFactor).
	longTermFee btcutil.Amount
}

// newInputFees computes the per-input fees for the given input weight.
func newInputFees(inputWeight btcunit.WeightUnit, feeRate,
	longTermFeeRate btcunit.SatPerVByte) inputFees {

	return inputFees{
		fee:         feeRate.FeeForWeight(inputWeight),
		longTermFee: longTermFeeRate.FeeForWeight(inputWeight),
	}
}

// OutputGroup is a set of coins that are always spent together. The search
// decides on whole groups. Every group built by the selector holds exactly
// one coin, but the accounting supports any number of them.
type OutputGroup struct {
	coins []coinset.Coin

	// effectiveValue is the summed value of the coins minus the fee to
	// spend each of them at the current fee rate.
	effectiveValue btcutil.Amount

	// fee is the summed marginal input fee at the current fee rate.
	fee btcutil.Amount

	// longTermFee is the summed marginal input fee at the long-term fee
	// rate.
	longTermFee btcutil.Amount

	fees inputFees
}

// newOutputGroup creates a group holding the given coin.
func newOutputGroup(fees inputFees, coin coinset.Coin) *OutputGroup {
	g := &OutputGroup{
		coins: make([]coinset.Coin, 0, 1),
		fees:  fees,
	}
	g.Add(coin)

	return g
}

// Add includes the coin in the group.
func (g *OutputGroup) Add(coin coinset.Coin) {
	g.coins = append(g.coins, coin)
	g.effectiveValue += coin.Value() - g.fees.fee
	g.fee += g.fees.fee
	g.longTermFee += g.fees.longTermFee
}

// Remove takes the coin with the same outpoint out of the group, applying the
// exact inverse of Add. It returns false if the coin is not a member.
func (g *OutputGroup) Remove(coin coinset.Coin) bool {
	target := outPointOf(coin)
	for i, member := range g.coins {
		if outPointOf(member) != target {
			continue
		}

		g.coins = append(g.coins[:i], g.coins[i+1:]...)
		g.effectiveValue -= member.Value() - g.fees.fee
		g.fee -= g.fees.fee
		g.longTermFee -= g.fees.longTermFee

		return true
	}

	return false
}

// Coins returns the coins of the group.
func (g *OutputGroup) Coins() []coinset.Coin {
	return g.coins
}

// EffectiveValue returns the value of the group net of its input fees.
func (g *OutputGroup) EffectiveValue() btcutil.Amount {
	return g.effectiveValue
}

// Fee returns the input fees of the group at the current fee rate.
func (g *OutputGroup) Fee() btcutil.Amount {
	return g.fee
}

// LongTermFee returns the input fees of the group at the long-term fee rate.
func (g *OutputGroup) LongTermFee() btcutil.Amount {
	return g.longTermFee
}

// Waste returns what spending the group now costs over spending it at the
// long-term fee rate. It is negative when fees are below the long-term rate.
func (g *OutputGroup) Waste() btcutil.Amount {
	return g.fee - g.longTermFee
}
