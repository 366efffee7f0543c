package coinselect

import "errors"

var (
	// ErrInsufficientFunds is returned when the total effective value of
	// all candidates is below the target. No search is run in this case.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoSolution is returned when the search finished, either by
	// exploring every branch or by running out of tries, without finding
	// a selection inside the target window.
	ErrNoSolution = errors.New("no changeless selection found")

	// ErrDuplicateCoin is returned when the same outpoint is given more
	// than once as a candidate.
	ErrDuplicateCoin = errors.New("duplicated coin")

	// ErrNegativeTarget is returned when the target value is below zero.
	ErrNegativeTarget = errors.New("target value must not be negative")

	// ErrInvalidFeeRate is returned when the fee rate or long-term fee
	// rate is not strictly positive.
	ErrInvalidFeeRate = errors.New("fee rate must be positive")

	// ErrInvalidInputWeight is returned when no input weight is set.
	ErrInvalidInputWeight = errors.New("input weight must be positive")

	// ErrMissingChangeSource is returned when the cost of change cannot be
	// derived because neither a change source nor a fixed cost of change
	// was configured.
	ErrMissingChangeSource = errors.New("missing change source")

	// ErrInvalidCostOfChange is returned when a negative cost of change
	// is configured or estimated.
	ErrInvalidCostOfChange = errors.New("cost of change must not be " +
		"negative")

	// ErrUnsupportedScript is returned when the input weight of a script
	// class is unknown.
	ErrUnsupportedScript = errors.New("unsupported script type")
)
