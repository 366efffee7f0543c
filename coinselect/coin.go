package coinselect

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Coin represents a spendable UTXO which is available for coin selection. It
// implements the coinset.Coin interface so it can be handed to any selector
// of the coinset package as well.
type Coin struct {
	// TxOut is the output being spent.
	TxOut wire.TxOut

	// OutPoint identifies the output on chain.
	OutPoint wire.OutPoint

	// Confs is the number of confirmations of the output.
	Confs int64
}

// A compile time check to ensure that Coin implements the interface.
var _ coinset.Coin = (*Coin)(nil)

// NewCoin creates a coin for the given outpoint and output.
func NewCoin(op wire.OutPoint, value btcutil.Amount, pkScript []byte,
	confs int64) *Coin {

	return &Coin{
		TxOut:    wire.TxOut{Value: int64(value), PkScript: pkScript},
		OutPoint: op,
		Confs:    confs,
	}
}

// Hash returns the hash of the transaction that created the output.
func (c *Coin) Hash() *chainhash.Hash { return &c.OutPoint.Hash }

// Index returns the output index within the creating transaction.
func (c *Coin) Index() uint32 { return c.OutPoint.Index }

// Value returns the amount of the output.
func (c *Coin) Value() btcutil.Amount { return btcutil.Amount(c.TxOut.Value) }

// PkScript returns the script locking the output.
func (c *Coin) PkScript() []byte { return c.TxOut.PkScript }

// NumConfs returns the number of confirmations of the output.
func (c *Coin) NumConfs() int64 { return c.Confs }

// ValueAge returns the value of the output times its confirmations.
func (c *Coin) ValueAge() int64 { return c.TxOut.Value * c.Confs }

// String returns the outpoint and amount of the coin.
func (c *Coin) String() string {
	return fmt.Sprintf("%v (%v)", c.OutPoint, c.Value())
}

// outPointOf returns the identity of a candidate coin.
func outPointOf(c coinset.Coin) wire.OutPoint {
	return wire.OutPoint{Hash: *c.Hash(), Index: c.Index()}
}

// validateCoins checks that no outpoint is listed twice and that no coin
// carries a negative value.
func validateCoins(coins []coinset.Coin) error {
	seen := fn.NewSet[wire.OutPoint]()
	for _, coin := range coins {
		op := outPointOf(coin)
		if seen.Contains(op) {
			return fmt.Errorf("%w: %v", ErrDuplicateCoin, op)
		}

		if coin.Value() < 0 {
			return fmt.Errorf("coin %v has negative value %v", op,
				coin.Value())
		}

		seen.Add(op)
	}

	return nil
}
