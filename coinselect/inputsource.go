package coinselect

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/coinselect/pkg/btcunit"
)

// ErrNoTxOutputs is returned when a transaction is authored without any
// outputs.
var ErrNoTxOutputs = errors.New("tx has no outputs")

// ConstantInputSource creates an input source function that always returns
// the given coins, whatever target txauthor asks for. It is used to hand a
// selection made up front to txauthor.
func ConstantInputSource(coins []coinset.Coin) txauthor.InputSource {
	// These won't change over different invocations as the inputs have
	// already been selected.
	currentTotal := btcutil.Amount(0)
	currentInputs := make([]*wire.TxIn, 0, len(coins))
	currentScripts := make([][]byte, 0, len(coins))
	currentInputValues := make([]btcutil.Amount, 0, len(coins))

	for _, coin := range coins {
		outpoint := outPointOf(coin)
		nextInput := wire.NewTxIn(&outpoint, nil, nil)
		currentTotal += coin.Value()

		currentInputs = append(currentInputs, nextInput)
		currentScripts = append(currentScripts, coin.PkScript())
		currentInputValues = append(currentInputValues, coin.Value())
	}

	return func(btcutil.Amount) (btcutil.Amount, []*wire.TxIn,
		[]btcutil.Amount, [][]byte, error) {

		return currentTotal, currentInputs, currentInputValues,
			currentScripts, nil
	}
}

// AuthorTx creates an unsigned transaction spending the selected coins to
// the outputs. Each output must not be dust according to the default relay
// fee policy. If the selection overshoots by more than the dust limit,
// txauthor adds a change output from changeSource.
func AuthorTx(outputs []*wire.TxOut, feeRate btcunit.SatPerKVByte,
	coins []coinset.Coin, changeSource *txauthor.ChangeSource) (
	*txauthor.AuthoredTx, error) {

	if len(outputs) == 0 {
		return nil, ErrNoTxOutputs
	}

	for _, output := range outputs {
		err := txrules.CheckOutput(output, txrules.DefaultRelayFeePerKb)
		if err != nil {
			return nil, err
		}
	}

	return txauthor.NewUnsignedTransaction(
		outputs, feeRate.Val(), ConstantInputSource(coins),
		changeSource,
	)
}
