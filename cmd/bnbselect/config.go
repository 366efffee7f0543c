// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/coinselect/coinselect"
	"github.com/btcsuite/coinselect/pkg/btcunit"
	flags "github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	defaultLongTermFeeRate = "10"
	defaultInputType       = "p2wpkh"
	defaultLogLevel        = "info"

	// unsetCostOfChange marks that the cost of change is derived from the
	// change address.
	unsetCostOfChange = -1
)

// config defines the configuration options for bnbselect.
//
// See loadConfig for details on the configuration load process.
type config struct {
	FeeRate         string   `long:"feerate" description:"Fee rate of the transaction in sat/vb" required:"true"`
	LongTermFeeRate string   `long:"longtermfeerate" description:"Fee rate expected to be paid on average in the future in sat/vb"`
	Target          float64  `long:"target" description:"Amount to fund in BTC" required:"true"`
	UTXOs           []string `long:"utxo" description:"Candidate coin as txid:vout:amount with the amount in BTC, may be given multiple times"`
	InputType       string   `long:"inputtype" description:"Script type of the candidate coins {p2wpkh, np2wpkh, p2tr, p2pkh}"`
	InputWeight     uint64   `long:"inputweight" description:"Weight of one input, overrides the weight derived from inputtype"`
	NoInputsWeight  uint64   `long:"noinputsweight" description:"Weight of the transaction without inputs, overrides the weight derived from payto"`
	PayTo           string   `long:"payto" description:"Address receiving the target, the transaction is authored if set"`
	ChangeAddr      string   `long:"changeaddr" description:"Address change would be sent to, used to price the cost of change"`
	CostOfChange    int64    `long:"costofchange" description:"Fixed cost of change in satoshis instead of pricing a change output"`
	MaxTries        int      `long:"maxtries" description:"Maximum number of search steps"`
	PositiveYield   bool     `long:"positiveyield" description:"Only consider coins worth more than the fee of spending them"`
	TestNet3        bool     `long:"testnet" description:"Use the test network"`
	RegressionTest  bool     `long:"regtest" description:"Use the regression test network"`
	SimNet          bool     `long:"simnet" description:"Use the simulation test network"`
	DebugLevel      string   `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	LogDir          string   `long:"logdir" description:"Directory to also write a rotated log file to"`
}

// params holds everything the selection needs, parsed and validated from
// the command line options.
type params struct {
	net      *chaincfg.Params
	target   btcutil.Amount
	coins    []coinset.Coin
	selector coinselect.Config

	// positiveYield drops coins not covering their input fee.
	positiveYield bool

	// payTo is the output receiving the target, nil if the transaction
	// should not be authored.
	payTo *wire.TxOut
}

// templateScripts maps the supported input types to a script of that class.
// Only the class of the script matters for the input weight.
var templateScripts = map[string]func() ([]byte, error){
	"p2wpkh": func() ([]byte, error) {
		return txscript.NewScriptBuilder().AddOp(txscript.OP_0).
			AddData(make([]byte, 20)).Script()
	},
	"np2wpkh": func() ([]byte, error) {
		return txscript.NewScriptBuilder().AddOp(txscript.OP_HASH160).
			AddData(make([]byte, 20)).AddOp(txscript.OP_EQUAL).
			Script()
	},
	"p2tr": func() ([]byte, error) {
		return txscript.NewScriptBuilder().AddOp(txscript.OP_1).
			AddData(make([]byte, 32)).Script()
	},
	"p2pkh": func() ([]byte, error) {
		return txscript.NewScriptBuilder().AddOp(txscript.OP_DUP).
			AddOp(txscript.OP_HASH160).AddData(make([]byte, 20)).
			AddOp(txscript.OP_EQUALVERIFY).
			AddOp(txscript.OP_CHECKSIG).Script()
	},
}

// loadConfig initializes and parses the config using command line options.
func loadConfig(args []string) (*config, error) {
	// Default config.
	cfg := config{
		LongTermFeeRate: defaultLongTermFeeRate,
		InputType:       defaultInputType,
		CostOfChange:    unsetCostOfChange,
		DebugLevel:      defaultLogLevel,
	}

	// Parse command line options.
	parser := flags.NewParser(&cfg, flags.Default)
	_, err := parser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}

		return nil, err
	}

	// Multiple networks can't be selected simultaneously.
	numNets := 0
	if cfg.TestNet3 {
		numNets++
	}
	if cfg.RegressionTest {
		numNets++
	}
	if cfg.SimNet {
		numNets++
	}
	if numNets > 1 {
		return nil, errors.New("the testnet, regtest, and simnet " +
			"params can't be used together -- choose one of the " +
			"three")
	}

	if cfg.ChangeAddr == "" && cfg.CostOfChange == unsetCostOfChange {
		return nil, errors.New("either changeaddr or costofchange " +
			"must be set")
	}

	return &cfg, nil
}

// netParams returns the network selected by the config.
func (c *config) netParams() *chaincfg.Params {
	switch {
	case c.TestNet3:
		return &chaincfg.TestNet3Params

	case c.RegressionTest:
		return &chaincfg.RegressionNetParams

	case c.SimNet:
		return &chaincfg.SimNetParams

	default:
		return &chaincfg.MainNetParams
	}
}

// parse validates the options and converts them into the selection params.
func (c *config) parse() (*params, error) {
	p := &params{
		net:           c.netParams(),
		positiveYield: c.PositiveYield,
	}

	feeRate, err := btcunit.ParseSatPerVByte(c.FeeRate)
	if err != nil {
		return nil, fmt.Errorf("feerate: %w", err)
	}

	longTermFeeRate, err := btcunit.ParseSatPerVByte(c.LongTermFeeRate)
	if err != nil {
		return nil, fmt.Errorf("longtermfeerate: %w", err)
	}

	p.target, err = btcutil.NewAmount(c.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	newScript, ok := templateScripts[c.InputType]
	if !ok {
		return nil, fmt.Errorf("unknown input type %q", c.InputType)
	}

	pkScript, err := newScript()
	if err != nil {
		return nil, err
	}

	inputWeight := btcunit.NewWeightUnit(c.InputWeight)
	if inputWeight.IsZero() {
		inputWeight, err = coinselect.InputWeight(pkScript)
		if err != nil {
			return nil, err
		}
	}

	for _, utxo := range c.UTXOs {
		coin, err := parseUTXO(utxo, pkScript)
		if err != nil {
			return nil, err
		}

		p.coins = append(p.coins, coin)
	}

	p.selector = coinselect.Config{
		FeeRate:         feeRate,
		LongTermFeeRate: longTermFeeRate,
		InputWeight:     inputWeight,
		NoInputsWeight:  btcunit.NewWeightUnit(c.NoInputsWeight),
		MaxTries:        c.MaxTries,
	}

	if c.CostOfChange != unsetCostOfChange {
		p.selector.CostOfChange = fn.Some(
			btcutil.Amount(c.CostOfChange),
		)
	}

	if c.ChangeAddr != "" {
		changeScript, err := addrScript(c.ChangeAddr, p.net)
		if err != nil {
			return nil, fmt.Errorf("changeaddr: %w", err)
		}

		p.selector.ChangeSource = &txauthor.ChangeSource{
			ScriptSize: len(changeScript),
			NewScript: func() ([]byte, error) {
				return changeScript, nil
			},
		}
	}

	if c.PayTo != "" {
		// txauthor needs somewhere to send change to.
		if p.selector.ChangeSource == nil {
			return nil, errors.New("payto requires changeaddr")
		}

		payToScript, err := addrScript(c.PayTo, p.net)
		if err != nil {
			return nil, fmt.Errorf("payto: %w", err)
		}

		p.payTo = wire.NewTxOut(int64(p.target), payToScript)

		if p.selector.NoInputsWeight.IsZero() {
			segwit := c.InputType != "p2pkh"
			p.selector.NoInputsWeight = coinselect.NoInputsWeight(
				[]*wire.TxOut{p.payTo}, segwit,
			)
		}
	}

	return p, nil
}

// addrScript decodes the address for the network and returns its output
// script.
func addrScript(addr string, net *chaincfg.Params) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(addr, net)
	if err != nil {
		return nil, err
	}

	if !decoded.IsForNet(net) {
		return nil, fmt.Errorf("address %v is not for %v", addr,
			net.Name)
	}

	return txscript.PayToAddrScript(decoded)
}

// parseUTXO parses a candidate given as txid:vout:amount, with the amount in
// BTC.
func parseUTXO(s string, pkScript []byte) (*coinselect.Coin, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("utxo %q is not txid:vout:amount", s)
	}

	hash, err := chainhash.NewHashFromStr(parts[0])
	if err != nil {
		return nil, fmt.Errorf("utxo %q: invalid txid: %w", s, err)
	}

	vout, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("utxo %q: invalid vout: %w", s, err)
	}

	btc, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return nil, fmt.Errorf("utxo %q: invalid amount: %w", s, err)
	}

	amount, err := btcutil.NewAmount(btc)
	if err != nil {
		return nil, fmt.Errorf("utxo %q: %w", s, err)
	}

	if amount <= 0 {
		return nil, fmt.Errorf("utxo %q: amount must be positive", s)
	}

	op := wire.NewOutPoint(hash, uint32(vout))

	return coinselect.NewCoin(*op, amount, pkScript, 0), nil
}
