package btcunit

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
)

// baseUnit stores the canonical representation of a transaction size, which is
// weight units (wu). All other size units are derived from this.
type baseUnit struct {
	wu uint64
}

// ToWU converts the unit to a WeightUnit.
func (b baseUnit) ToWU() WeightUnit {
	return WeightUnit{b}
}

// ToVB converts the unit to a VByte.
func (b baseUnit) ToVB() VByte {
	return VByte{b}
}

// WeightUnit defines a unit to express the transaction size. One weight unit
// is 1/4_000_000 of the max block size. The tx weight is calculated using
// `Base tx size * 3 + Total tx size`.
type WeightUnit struct {
	// The internal size is recorded in weight units.
	baseUnit
}

// NewWeightUnit creates a new WeightUnit from a uint64 value.
func NewWeightUnit(val uint64) WeightUnit {
	return WeightUnit{baseUnit{wu: val}}
}

// NewWeightFromBytes returns the weight of non-witness bytes, each of which
// counts WitnessScaleFactor weight units.
func NewWeightFromBytes(size int) WeightUnit {
	if size < 0 {
		size = 0
	}

	return NewWeightUnit(uint64(size) * blockchain.WitnessScaleFactor)
}

// Val returns the raw number of weight units.
func (w WeightUnit) Val() uint64 {
	return w.wu
}

// Add returns the sum of both weights.
func (w WeightUnit) Add(other WeightUnit) WeightUnit {
	return NewWeightUnit(w.wu + other.wu)
}

// IsZero returns true for an empty weight.
func (w WeightUnit) IsZero() bool {
	return w.wu == 0
}

// String returns the string representation of the weight unit.
func (w WeightUnit) String() string {
	return fmt.Sprintf("%d wu", w.wu)
}

// VByte defines a unit to express the transaction size. One virtual byte is
// 1/4th of a weight unit. The tx virtual bytes is calculated using `TxWeight /
// 4`.
type VByte struct {
	// The internal size is recorded in weight units.
	baseUnit
}

// NewVByte creates a new VByte from a uint64 value.
func NewVByte(val uint64) VByte {
	return VByte{baseUnit{wu: val * blockchain.WitnessScaleFactor}}
}

// String returns the string representation of the virtual byte.
func (v VByte) String() string {
	vbytes := (v.wu + blockchain.WitnessScaleFactor - 1) /
		blockchain.WitnessScaleFactor

	return fmt.Sprintf("%d vb", vbytes)
}

// KVByte defines a unit to express the transaction size in kilo-virtual-bytes.
type KVByte struct {
	// The internal size is recorded in weight units.
	baseUnit
}

// NewKVByte creates a new KVByte from a uint64.
func NewKVByte(val uint64) KVByte {
	return KVByte{baseUnit{wu: val * kilo * blockchain.WitnessScaleFactor}}
}

// String returns the string representation of the kilo-virtual-byte.
func (k KVByte) String() string {
	vbytes := (k.wu + blockchain.WitnessScaleFactor - 1) /
		blockchain.WitnessScaleFactor

	return fmt.Sprintf("%d kvb", vbytes/kilo)
}
