// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command bnbselect runs a branch and bound coin selection over the coins
// given on the command line and prints the selection that funds the target
// without a change output.
//
// Example:
//
//	bnbselect --feerate=5 --target=0.001 --costofchange=500 \
//		--utxo=<txid>:0:0.0006 --utxo=<txid>:1:0.0005
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btclog"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/coinselect/coinselect"
	flags "github.com/jessevdk/go-flags"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		// Option errors are already printed by the parser.
		var e *flags.Error
		if errors.As(err, &e) {
			if e.Type == flags.ErrHelp {
				os.Exit(0)
			}

			os.Exit(1)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses the arguments, runs the selection and writes the outcome to w.
func run(args []string, w io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	if err := setLogLevels(cfg.DebugLevel); err != nil {
		return err
	}

	if cfg.LogDir != "" {
		if err := initLogRotator(cfg.LogDir); err != nil {
			return err
		}
		defer logRotator.Close()
	}

	p, err := cfg.parse()
	if err != nil {
		return err
	}

	// Every explored combination is only worth printing at trace level.
	if slctLog.Level() == btclog.LevelTrace {
		p.selector.Observer = coinselect.LogObserver{}
	}

	sel, err := coinselect.NewBnBSelector(p.selector)
	if err != nil {
		return err
	}

	coins := p.coins
	if p.positiveYield {
		coins = sel.PositiveYield(coins)
		mainLog.Debugf("Dropped %d coins not covering their input fee",
			len(p.coins)-len(coins))
	}

	mainLog.Infof("Selecting %v from %d coins at %v (long-term %v), "+
		"cost of change %v", p.target, len(coins), p.selector.FeeRate,
		p.selector.LongTermFeeRate, sel.CostOfChange())

	res, err := sel.Search(p.target, coins)
	if err != nil {
		return err
	}

	writeResult(w, res)

	if p.payTo == nil {
		return nil
	}

	feeRate := p.selector.FeeRate.ToSatPerKVByte()
	tx, err := coinselect.AuthorTx(
		[]*wire.TxOut{p.payTo}, feeRate, res.Coins,
		p.selector.ChangeSource,
	)
	if err != nil {
		return err
	}

	writeTx(w, tx)

	return nil
}

// writeResult prints the selected coins and the figures of the selection.
func writeResult(w io.Writer, res *coinselect.Result) {
	fmt.Fprintf(w, "Selected %d coins:\n", len(res.Coins))
	for _, coin := range res.Coins {
		fmt.Fprintf(w, "  %v:%d %v\n", coin.Hash(), coin.Index(),
			coin.Value())
	}

	fmt.Fprintf(w, "Effective value: %v\n", res.EffectiveValue)
	fmt.Fprintf(w, "Actual target:   %v\n", res.ActualTarget)
	fmt.Fprintf(w, "Excess:          %v\n", res.Excess())
	fmt.Fprintf(w, "Waste:           %v\n", res.Waste)
	fmt.Fprintf(w, "Tries:           %d (complete=%v)\n", res.Tries,
		res.Complete)
}

// writeTx prints the authored transaction.
func writeTx(w io.Writer, tx *txauthor.AuthoredTx) {
	var outputTotal btcutil.Amount
	for _, out := range tx.Tx.TxOut {
		outputTotal += btcutil.Amount(out.Value)
	}

	fmt.Fprintf(w, "Transaction %v\n", tx.Tx.TxHash())
	fmt.Fprintf(w, "  inputs:  %d (%v)\n", len(tx.Tx.TxIn),
		tx.TotalInput)
	fmt.Fprintf(w, "  outputs: %d (%v)\n", len(tx.Tx.TxOut),
		outputTotal)
	fmt.Fprintf(w, "  fee:     %v\n", tx.TotalInput-outputTotal)

	if tx.ChangeIndex >= 0 {
		fmt.Fprintf(w, "  change:  output %d\n", tx.ChangeIndex)
	}
}
