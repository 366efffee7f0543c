package coinselect

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/btcsuite/coinselect/pkg/btcunit"
)

const (
	// p2trInputSize is the non-witness size of a taproot key spend input:
	// outpoint, empty sigScript length and sequence.
	p2trInputSize = 32 + 4 + 1 + 4

	// p2trKeySpendWitnessWeight is the witness of a taproot key spend with
	// a default sighash: item count, signature length and a 64-byte
	// schnorr signature.
	p2trKeySpendWitnessWeight = 1 + 1 + 64

	// txShellSize is the non-witness size of version and lock time.
	txShellSize = 4 + 4

	// inputCountSize assumes fewer than 253 inputs.
	inputCountSize = 1

	// segwitMarkerWeight is the weight of the segwit marker and flag.
	segwitMarkerWeight = 2

	// notionalChangeValue is the amount put on the change output that is
	// priced to derive the cost of change. Only its size matters.
	notionalChangeValue = 1
)

// ChangeFeeEstimator prices a change output. The returned amount is the width
// of the window above the target that is accepted for a changeless
// transaction: paying that much extra to the miners is no worse than creating
// the change output.
type ChangeFeeEstimator interface {
	// ChangeFee returns the cost of adding the change output.
	ChangeFee(change *wire.TxOut, feeRate,
		longTermFeeRate btcunit.SatPerVByte) btcutil.Amount
}

// SpendCost is the default ChangeFeeEstimator. The cost of change is the fee
// to create the output now at the fee rate plus the fee to spend it later at
// the long-term fee rate.
type SpendCost struct {
	// InputWeight is the weight of the input that will spend the change.
	InputWeight btcunit.WeightUnit
}

// A compile time check to ensure that SpendCost implements the interface.
var _ ChangeFeeEstimator = SpendCost{}

// ChangeFee returns the cost of creating and later spending the change.
func (s SpendCost) ChangeFee(change *wire.TxOut, feeRate,
	longTermFeeRate btcunit.SatPerVByte) btcutil.Amount {

	outputWeight := btcunit.NewWeightFromBytes(change.SerializeSize())

	return feeRate.FeeForWeight(outputWeight) +
		longTermFeeRate.FeeForWeight(s.InputWeight)
}

// notionalChangeOutput materializes the change output that would be added
// to the transaction. If the change source cannot derive a script, a zeroed
// script of the announced size stands in for it, since only the size is
// priced.
func notionalChangeOutput(src *txauthor.ChangeSource) (*wire.TxOut, error) {
	if src.NewScript == nil {
		if src.ScriptSize <= 0 {
			return nil, fmt.Errorf("%w: no script and no script "+
				"size", ErrMissingChangeSource)
		}

		script := make([]byte, src.ScriptSize)

		return wire.NewTxOut(notionalChangeValue, script), nil
	}

	script, err := src.NewScript()
	if err != nil {
		return nil, fmt.Errorf("derive change script: %w", err)
	}

	return wire.NewTxOut(notionalChangeValue, script), nil
}

// costOfChange prices the notional change output of the change source.
func costOfChange(src *txauthor.ChangeSource, est ChangeFeeEstimator,
	feeRate, longTermFeeRate btcunit.SatPerVByte) (btcutil.Amount, error) {

	if src == nil {
		return 0, ErrMissingChangeSource
	}

	change, err := notionalChangeOutput(src)
	if err != nil {
		return 0, err
	}

	cost := est.ChangeFee(change, feeRate, longTermFeeRate)
	if cost < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCostOfChange, cost)
	}

	return cost, nil
}

// InputWeight returns the weight an input spending an output locked by the
// given script adds to a transaction. P2PKH, P2WPKH, P2SH-nested P2WPKH and
// taproot key spends are supported.
func InputWeight(pkScript []byte) (btcunit.WeightUnit, error) {
	switch {
	case txscript.IsPayToTaproot(pkScript):
		return btcunit.NewWeightFromBytes(p2trInputSize).Add(
			btcunit.NewWeightUnit(p2trKeySpendWitnessWeight),
		), nil

	case txscript.IsPayToWitnessPubKeyHash(pkScript):
		return btcunit.NewWeightFromBytes(
			txsizes.RedeemP2WPKHInputSize,
		).Add(btcunit.NewWeightUnit(
			txsizes.RedeemP2WPKHInputWitnessWeight,
		)), nil

	// We assume a P2SH output is a nested P2WPKH, which is the only kind
	// of P2SH output a wallet creates for itself.
	case txscript.IsPayToScriptHash(pkScript):
		return btcunit.NewWeightFromBytes(
			txsizes.RedeemNestedP2WPKHInputSize,
		).Add(btcunit.NewWeightUnit(
			txsizes.RedeemP2WPKHInputWitnessWeight,
		)), nil

	case txscript.IsPayToPubKeyHash(pkScript):
		return btcunit.NewWeightFromBytes(
			txsizes.RedeemP2PKHInputSize,
		), nil

	default:
		return btcunit.WeightUnit{}, fmt.Errorf("%w: %x",
			ErrUnsupportedScript, pkScript)
	}
}

// NoInputsWeight returns the weight of a transaction paying to the given
// outputs before any input is added: version, input count, the outputs and
// lock time, plus the segwit marker and flag if the inputs will carry
// witnesses.
func NoInputsWeight(outputs []*wire.TxOut, segwit bool) btcunit.WeightUnit {
	size := txShellSize + inputCountSize +
		wire.VarIntSerializeSize(uint64(len(outputs))) +
		txsizes.SumOutputSerializeSizes(outputs)

	weight := btcunit.NewWeightFromBytes(size)
	if segwit {
		weight = weight.Add(btcunit.NewWeightUnit(segwitMarkerWeight))
	}

	return weight
}
