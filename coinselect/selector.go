// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/coinselect/pkg/btcunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Config holds the parameters of a BnBSelector.
type Config struct {
	// FeeRate is the fee rate the transaction is built with. This field is
	// required.
	FeeRate btcunit.SatPerVByte

	// LongTermFeeRate is the fee rate the wallet expects to pay on
	// average in the future. Spending inputs while FeeRate is above it
	// counts as waste, spending them while it is below counts as savings.
	// This field is required.
	LongTermFeeRate btcunit.SatPerVByte

	// InputWeight is the weight one input adds to the transaction. It is
	// used for every candidate. This field is required.
	InputWeight btcunit.WeightUnit

	// NoInputsWeight is the weight of the transaction without any inputs.
	// The fee for it is added to the target. See NoInputsWeight.
	NoInputsWeight btcunit.WeightUnit

	// ChangeSource derives the change output that would be added if no
	// changeless selection were found. Only the size of its script is
	// used. Required unless CostOfChange is set.
	ChangeSource *txauthor.ChangeSource

	// ChangeFee prices the change output of ChangeSource. If nil,
	// SpendCost with InputWeight is used.
	ChangeFee ChangeFeeEstimator

	// CostOfChange overrides the cost of change instead of deriving it
	// from ChangeSource.
	CostOfChange fn.Option[btcutil.Amount]

	// MaxTries bounds the number of search steps. Zero means
	// DefaultMaxTries.
	MaxTries int

	// Observer, if set, is notified of every search step.
	Observer Observer
}

// BnBSelector selects coins with branch and bound. A selector holds no
// mutable state, so it is safe for concurrent use as long as the candidate
// coins are not modified during a call.
type BnBSelector struct {
	cfg Config

	fees inputFees

	noInputsFee btcutil.Amount

	costOfChange btcutil.Amount
}

// A compile time check to ensure that BnBSelector implements the interface.
var _ coinset.CoinSelector = (*BnBSelector)(nil)

// NewBnBSelector validates the config and derives the per-input fees and the
// cost of change, which are fixed for the lifetime of the selector.
func NewBnBSelector(cfg Config) (*BnBSelector, error) {
	if !cfg.FeeRate.IsPositive() {
		return nil, fmt.Errorf("%w: fee rate", ErrInvalidFeeRate)
	}

	if !cfg.LongTermFeeRate.IsPositive() {
		return nil, fmt.Errorf("%w: long-term fee rate",
			ErrInvalidFeeRate)
	}

	if cfg.InputWeight.IsZero() {
		return nil, ErrInvalidInputWeight
	}

	if cfg.ChangeFee == nil {
		cfg.ChangeFee = SpendCost{InputWeight: cfg.InputWeight}
	}

	var (
		cost btcutil.Amount
		err  error
	)
	if cfg.CostOfChange.IsSome() {
		cost = cfg.CostOfChange.UnwrapOr(0)
		if cost < 0 {
			return nil, fmt.Errorf("%w: %v",
				ErrInvalidCostOfChange, cost)
		}
	} else {
		cost, err = costOfChange(
			cfg.ChangeSource, cfg.ChangeFee, cfg.FeeRate,
			cfg.LongTermFeeRate,
		)
		if err != nil {
			return nil, err
		}
	}

	fees := newInputFees(
		cfg.InputWeight, cfg.FeeRate, cfg.LongTermFeeRate,
	)

	return &BnBSelector{
		cfg:          cfg,
		fees:         fees,
		noInputsFee:  cfg.FeeRate.FeeForWeight(cfg.NoInputsWeight),
		costOfChange: cost,
	}, nil
}

// CostOfChange returns the width of the accepted window above the actual
// target.
func (s *BnBSelector) CostOfChange() btcutil.Amount {
	return s.costOfChange
}

// ActualTarget returns the target inflated by the fee of the transaction
// without inputs.
func (s *BnBSelector) ActualTarget(target btcutil.Amount) btcutil.Amount {
	return target + s.noInputsFee
}

// InputFee returns the marginal fee of one input at the fee rate.
func (s *BnBSelector) InputFee() btcutil.Amount {
	return s.fees.fee
}

// PositiveYield returns the coins whose value exceeds the fee of spending them
// at the fee rate. Search accepts the others as well, they only lower the
// effective value of any selection they are part of.
func (s *BnBSelector) PositiveYield(coins []coinset.Coin) []coinset.Coin {
	eligible := make([]coinset.Coin, 0, len(coins))
	for _, coin := range coins {
		if s.fees.fee < coin.Value() {
			eligible = append(eligible, coin)
		}
	}

	return eligible
}

// Select returns the candidates that fund the target without a change
// output at the lowest waste found. It returns nil if the candidates cannot
// cover the target or no selection fits the window.
func (s *BnBSelector) Select(target btcutil.Amount,
	coins []coinset.Coin) []coinset.Coin {

	res, err := s.Search(target, coins)
	if err != nil {
		log.Debugf("No selection for target %v: %v", target, err)

		return nil
	}

	return res.Coins
}

// CoinSelect implements coinset.CoinSelector. When no selection is possible
// the returned error wraps coinset.ErrCoinsNoSelectionAvailable.
func (s *BnBSelector) CoinSelect(target btcutil.Amount,
	coins []coinset.Coin) (coinset.Coins, error) {

	res, err := s.Search(target, coins)
	switch {
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrNoSolution):

		return nil, fmt.Errorf("%w: %w",
			coinset.ErrCoinsNoSelectionAvailable, err)

	case err != nil:
		return nil, err
	}

	return res.CoinSet(), nil
}

// Search runs the branch and bound search and reports how it went. It
// returns ErrInsufficientFunds without searching if the candidates cannot
// cover the target, and ErrNoSolution if no selection fits the window.
func (s *BnBSelector) Search(target btcutil.Amount,
	coins []coinset.Coin) (*Result, error) {

	if target < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeTarget, target)
	}

	if err := validateCoins(coins); err != nil {
		return nil, err
	}

	pool := newUtxoPool(coins, s.fees)

	available := pool.totalEffectiveValue()
	if available < target {
		return nil, fmt.Errorf("%w: effective value %v is below "+
			"target %v", ErrInsufficientFunds, available, target)
	}

	actualTarget := s.ActualTarget(target)

	log.Debugf("Selecting from %d coins: actual target %v, cost of "+
		"change %v, selected must be at most %v", len(pool),
		actualTarget, s.costOfChange, actualTarget+s.costOfChange)

	outcome := branchAndBound(pool, searchParams{
		target:       actualTarget,
		costOfChange: s.costOfChange,
		noInputsFee:  s.noInputsFee,
		maxTries:     s.cfg.MaxTries,
		observer:     s.cfg.Observer,
	})

	selected, value := project(pool, outcome.best.UnwrapOr(nil))
	if len(selected) == 0 {
		log.Debugf("No result found after %d tries (complete=%v)",
			outcome.tries, outcome.complete)

		return nil, fmt.Errorf("%w: target %v after %d tries",
			ErrNoSolution, target, outcome.tries)
	}

	log.Debugf("Selected %d coins worth %v with waste %v after %d "+
		"tries (complete=%v)", len(selected), value, outcome.waste,
		outcome.tries, outcome.complete)

	return &Result{
		Coins:          selected,
		Waste:          outcome.waste,
		EffectiveValue: value,
		ActualTarget:   actualTarget,
		CostOfChange:   s.costOfChange,
		Tries:          outcome.tries,
		Complete:       outcome.complete,
	}, nil
}
