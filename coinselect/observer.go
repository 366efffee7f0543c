package coinselect

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// Step describes the tentative selection at one point of the search.
type Step struct {
	// Try is the zero based index of the search step.
	Try int

	// Groups are the groups currently included, in pool order.
	Groups []*OutputGroup

	// Value is the summed effective value of Groups.
	Value btcutil.Amount

	// InputFees is the summed input fee of Groups at the current fee rate.
	InputFees btcutil.Amount

	// NoInputsFee is the fee paid for the transaction without any inputs.
	NoInputsFee btcutil.Amount
}

// Observer receives progress updates from the search. It is purely
// diagnostic: implementations must not retain Groups beyond the call and
// cannot influence the outcome.
type Observer interface {
	// Included is called after a group was added to the selection.
	Included(step Step)

	// Backtracked is called when the search abandons a branch.
	Backtracked(step Step)

	// Recorded is called when a feasible selection becomes the best one.
	Recorded(step Step, waste btcutil.Amount)
}

// LogObserver writes every explored combination to the package logger at
// trace level.
type LogObserver struct{}

// A compile time check to ensure that LogObserver implements the interface.
var _ Observer = LogObserver{}

// Included logs the current combination as "a + b = sum (plus fee of f)".
func (LogObserver) Included(step Step) {
	log.Tracef("Try %d: %v (plus fee of %v)", step.Try, formatStep(step),
		step.NoInputsFee+step.InputFees)
}

// Backtracked logs that the search is walking back.
func (LogObserver) Backtracked(step Step) {
	log.Tracef("Try %d: backtracking from depth %d", step.Try,
		len(step.Groups))
}

// Recorded logs the new best selection.
func (LogObserver) Recorded(step Step, waste btcutil.Amount) {
	log.Tracef("Try %d: new best %v with waste %v", step.Try,
		formatStep(step), waste)
}

// formatStep joins the effective values of the included groups.
func formatStep(step Step) string {
	parts := make([]string, 0, len(step.Groups))
	for _, g := range step.Groups {
		parts = append(parts, g.EffectiveValue().String())
	}

	return strings.Join(parts, " + ") + " = " + step.Value.String()
}
