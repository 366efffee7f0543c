// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcunit provides a set of types for dealing with bitcoin units.
package btcunit

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
)

const (
	// kilo is a generic multiplier for kilo units.
	kilo = 1000

	// floatStringPrecision is the number of decimal places to use when
	// converting a fee rate to a string. Three places keep rates such as
	// 1 sat/kvb (0.001 sat/vb) from being displayed as zero.
	floatStringPrecision = 3
)

var (
	// ErrInvalidFeeRate is returned when a fee rate string cannot be
	// parsed or describes a negative rate.
	ErrInvalidFeeRate = errors.New("invalid fee rate")

	// ZeroSatPerVByte is a fee rate of 0 sat/vb.
	ZeroSatPerVByte = NewSatPerVByte(0)

	// ZeroSatPerKVByte is a fee rate of 0 sat/kvb.
	ZeroSatPerKVByte = NewSatPerKVByte(0)
)

// baseFeeRate stores the canonical representation of a fee rate, which is
// satoshis per kilo-weight-unit (sat/kwu). All other fee rate units are
// derived from this.
type baseFeeRate struct {
	// satsPerKWU is the fee rate in satoshis per kilo-weight-unit. Keeping
	// it as a rational means a fractional sat/vb rate multiplies a weight
	// without any floating point rounding.
	satsPerKWU *big.Rat
}

// newBaseFeeRate creates a new baseFeeRate with the given numerator and
// denominator. A zero denominator yields a zero fee rate.
func newBaseFeeRate(numerator btcutil.Amount, denominator uint64) baseFeeRate {
	if denominator == 0 {
		return baseFeeRate{satsPerKWU: big.NewRat(0, 1)}
	}

	return baseFeeRate{satsPerKWU: big.NewRat(
		int64(numerator),
		safeUint64ToInt64(denominator),
	)}
}

// ToSatPerVByte converts the fee rate to sat/vb.
func (f baseFeeRate) ToSatPerVByte() SatPerVByte {
	return SatPerVByte{f}
}

// ToSatPerKVByte converts the fee rate to sat/kvb.
func (f baseFeeRate) ToSatPerKVByte() SatPerKVByte {
	return SatPerKVByte{f}
}

// FeeForWeight calculates the fee resulting from this fee rate and the given
// weight in weight units (wu). The result is rounded down, which for a sat/vb
// rate is exactly floor(weight * rate / WitnessScaleFactor).
func (f baseFeeRate) FeeForWeight(weightUnit WeightUnit) btcutil.Amount {
	fee := new(big.Rat).Mul(
		f.satsPerKWU,
		big.NewRat(safeUint64ToInt64(weightUnit.wu), kilo),
	)

	// Integer division of the reduced fraction truncates toward zero,
	// fee rates are never negative so this is the floor.
	quotient := new(big.Int).Quo(fee.Num(), fee.Denom())

	return btcutil.Amount(quotient.Int64())
}

// FeeForWeightRoundUp calculates the fee resulting from this fee rate and the
// given weight in weight units (wu), rounding up to the nearest satoshi.
func (f baseFeeRate) FeeForWeightRoundUp(weightUnit WeightUnit) btcutil.Amount {
	fee := new(big.Rat).Mul(
		f.satsPerKWU,
		big.NewRat(safeUint64ToInt64(weightUnit.wu), kilo),
	)

	// (numerator + denominator - 1) / denominator.
	numerator := fee.Num()
	denominator := fee.Denom()

	result := new(big.Int).Add(numerator, denominator)
	result.Sub(result, big.NewInt(1))
	result.Quo(result, denominator)

	return btcutil.Amount(result.Int64())
}

// FeeForVByte calculates the fee resulting from this fee rate and the given
// size in vbytes (vb).
func (f baseFeeRate) FeeForVByte(vb VByte) btcutil.Amount {
	return f.FeeForWeight(vb.ToWU())
}

// IsPositive returns true if the fee rate is strictly greater than zero.
func (f baseFeeRate) IsPositive() bool {
	return f.satsPerKWU != nil && f.satsPerKWU.Sign() > 0
}

// equal returns true if the fee rate is equal to the other fee rate.
func (f baseFeeRate) equal(other baseFeeRate) bool {
	return f.satsPerKWU.Cmp(other.satsPerKWU) == 0
}

// greaterThan returns true if the fee rate is greater than the other fee rate.
func (f baseFeeRate) greaterThan(other baseFeeRate) bool {
	return f.satsPerKWU.Cmp(other.satsPerKWU) > 0
}

// lessThan returns true if the fee rate is less than the other fee rate.
func (f baseFeeRate) lessThan(other baseFeeRate) bool {
	return f.satsPerKWU.Cmp(other.satsPerKWU) < 0
}

// SatPerVByte represents a fee rate in sat/vbyte. This is the unit coin
// selection works in: the marginal fee of an input is its weight times the
// rate divided by the witness scale factor.
type SatPerVByte struct {
	baseFeeRate
}

// NewSatPerVByte creates a new fee rate in sat/vb.
func NewSatPerVByte(rate btcutil.Amount) SatPerVByte {
	return CalcSatPerVByte(rate, NewVByte(1))
}

// CalcSatPerVByte calculates the fee rate in sat/vb for a given fee and size.
func CalcSatPerVByte(fee btcutil.Amount, vb VByte) SatPerVByte {
	// To convert the rate to the canonical sat/kwu unit, we use the
	// formula: (fee * 1000) / size_in_wu.
	numerator := fee * kilo
	denominator := vb.wu

	return SatPerVByte{newBaseFeeRate(numerator, denominator)}
}

// ParseSatPerVByte parses a decimal sat/vb rate such as "12" or "2.25". The
// value is kept as an exact fraction.
func ParseSatPerVByte(s string) (SatPerVByte, error) {
	rate, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return ZeroSatPerVByte, fmt.Errorf("%w: %q", ErrInvalidFeeRate,
			s)
	}

	if rate.Sign() < 0 {
		return ZeroSatPerVByte, fmt.Errorf("%w: %q is negative",
			ErrInvalidFeeRate, s)
	}

	// sat/vb -> sat/kwu is a multiplication by 1000/4.
	rate.Mul(rate, big.NewRat(kilo, blockchain.WitnessScaleFactor))

	return SatPerVByte{baseFeeRate{satsPerKWU: rate}}, nil
}

// String returns a human-readable string of the fee rate.
func (s SatPerVByte) String() string {
	kwToVbRate := new(big.Rat).Mul(
		s.satsPerKWU, big.NewRat(blockchain.WitnessScaleFactor, kilo),
	)

	return kwToVbRate.FloatString(floatStringPrecision) + " sat/vb"
}

// Equal returns true if the fee rate is equal to the other fee rate.
func (s SatPerVByte) Equal(other SatPerVByte) bool {
	return s.equal(other.baseFeeRate)
}

// GreaterThan returns true if the fee rate is greater than the other fee rate.
func (s SatPerVByte) GreaterThan(other SatPerVByte) bool {
	return s.greaterThan(other.baseFeeRate)
}

// LessThan returns true if the fee rate is less than the other fee rate.
func (s SatPerVByte) LessThan(other SatPerVByte) bool {
	return s.lessThan(other.baseFeeRate)
}

// SatPerKVByte represents a fee rate in sat/kvb, the unit txauthor expects
// when authoring a transaction.
type SatPerKVByte struct {
	baseFeeRate
}

// NewSatPerKVByte creates a new fee rate in sat/kvb.
func NewSatPerKVByte(rate btcutil.Amount) SatPerKVByte {
	return CalcSatPerKVByte(rate, NewKVByte(1))
}

// CalcSatPerKVByte calculates the fee rate in sat/kvb for a given fee and size.
func CalcSatPerKVByte(fee btcutil.Amount, kvb KVByte) SatPerKVByte {
	numerator := fee * kilo
	denominator := kvb.wu

	return SatPerKVByte{newBaseFeeRate(numerator, denominator)}
}

// Val returns the fee rate as a whole number of satoshis per kvb, rounded
// down.
func (s SatPerKVByte) Val() btcutil.Amount {
	return s.FeeForKVByte()
}

// FeeForKVByte returns the fee paid for one kilo-vbyte at this rate, rounded
// down.
func (s SatPerKVByte) FeeForKVByte() btcutil.Amount {
	return s.FeeForWeight(NewKVByte(1).ToWU())
}

// String returns a human-readable string of the fee rate.
func (s SatPerKVByte) String() string {
	kwToKvbRate := new(big.Rat).Mul(
		s.satsPerKWU, big.NewRat(blockchain.WitnessScaleFactor, 1),
	)

	return kwToKvbRate.FloatString(floatStringPrecision) + " sat/kvb"
}

// Equal returns true if the fee rate is equal to the other fee rate.
func (s SatPerKVByte) Equal(other SatPerKVByte) bool {
	return s.equal(other.baseFeeRate)
}

// GreaterThan returns true if the fee rate is greater than the other fee rate.
func (s SatPerKVByte) GreaterThan(other SatPerKVByte) bool {
	return s.greaterThan(other.baseFeeRate)
}

// LessThan returns true if the fee rate is less than the other fee rate.
func (s SatPerKVByte) LessThan(other SatPerKVByte) bool {
	return s.lessThan(other.baseFeeRate)
}

// safeUint64ToInt64 converts a uint64 to an int64, capping at math.MaxInt64.
// The values converted here are transaction weights, which consensus limits
// keep far below the cap.
func safeUint64ToInt64(u uint64) int64 {
	if u > math.MaxInt64 {
		slog.Warn("Capping uint64 value to math.MaxInt64",
			slog.Uint64("old", u), slog.Int64("new", math.MaxInt64))

		return math.MaxInt64
	}

	return int64(u)
}
