package coinselect

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/coinselect/pkg/btcunit"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

const (
	// testInputWeight is the weight of a P2WPKH-like input used by the
	// tests. At 1 sat/vb an input costs 68 sats.
	testInputWeight = 272

	// testInputFee is the input fee at 1 sat/vb.
	testInputFee = 68
)

var (
	// p2wpkhScript is a witness v0 pubkey hash script.
	p2wpkhScript = append([]byte{txscript.OP_0, txscript.OP_DATA_20},
		bytes.Repeat([]byte{0x01}, 20)...)

	// p2trScript is a witness v1 taproot script.
	p2trScript = append([]byte{txscript.OP_1, txscript.OP_DATA_32},
		bytes.Repeat([]byte{0x02}, 32)...)

	// p2shScript is a script hash script.
	p2shScript = append(append([]byte{txscript.OP_HASH160,
		txscript.OP_DATA_20}, bytes.Repeat([]byte{0x03}, 20)...),
		txscript.OP_EQUAL)

	// p2pkhScript is a pubkey hash script.
	p2pkhScript = append(append([]byte{txscript.OP_DUP,
		txscript.OP_HASH160, txscript.OP_DATA_20},
		bytes.Repeat([]byte{0x04}, 20)...),
		txscript.OP_EQUALVERIFY, txscript.OP_CHECKSIG)
)

// testOutPoint returns a unique outpoint for the index.
func testOutPoint(index int) wire.OutPoint {
	hash := chainhash.HashH([]byte(fmt.Sprintf("%d", index)))

	return wire.OutPoint{Hash: hash, Index: uint32(index)}
}

// makeCoins creates one P2WPKH coin per value.
func makeCoins(values ...btcutil.Amount) []coinset.Coin {
	coins := make([]coinset.Coin, 0, len(values))
	for i, value := range values {
		coins = append(coins, NewCoin(
			testOutPoint(i), value, p2wpkhScript, 1,
		))
	}

	return coins
}

// coinValues returns the values of the coins.
func coinValues(coins []coinset.Coin) []btcutil.Amount {
	values := make([]btcutil.Amount, 0, len(coins))
	for _, c := range coins {
		values = append(values, c.Value())
	}

	return values
}

// testChangeSource returns a change source handing out P2WPKH scripts.
func testChangeSource() *txauthor.ChangeSource {
	return &txauthor.ChangeSource{
		ScriptSize: len(p2wpkhScript),
		NewScript: func() ([]byte, error) {
			return p2wpkhScript, nil
		},
	}
}

// newTestSelector creates a selector with the test input weight, no
// transaction overhead and the given fixed cost of change. Rates are in
// whole sat/vb.
func newTestSelector(t *testing.T, feeRate, longTermFeeRate btcutil.Amount,
	cost btcutil.Amount) *BnBSelector {

	t.Helper()

	sel, err := NewBnBSelector(Config{
		FeeRate:         btcunit.NewSatPerVByte(feeRate),
		LongTermFeeRate: btcunit.NewSatPerVByte(longTermFeeRate),
		InputWeight:     btcunit.NewWeightUnit(testInputWeight),
		CostOfChange:    fn.Some(cost),
	})
	require.NoError(t, err)

	return sel
}
