package coinselect

import (
	"context"
	"runtime"
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of the search for one target of a batch.
type BatchResult struct {
	// Target is the requested target value.
	Target btcutil.Amount

	// Result is set if a selection was found.
	Result *Result

	// Err is set if no selection was found, for example
	// ErrInsufficientFunds or ErrNoSolution.
	Err error
}

// SelectBatch runs an independent search for every target against the same
// candidates, using up to GOMAXPROCS goroutines. Each search gets its own copy
// of the candidate list. Per-target failures are reported in the matching
// BatchResult, the returned error is only set if ctx is done before all
// searches have started.
func (s *BnBSelector) SelectBatch(ctx context.Context,
	targets []btcutil.Amount, coins []coinset.Coin) ([]BatchResult, error) {

	results := make([]BatchResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, target := range targets {
		// A single search cannot be interrupted, so cancellation is
		// checked before each one starts.
		select {
		case <-ctx.Done():
			_ = g.Wait()

			return nil, ctx.Err()
		default:
		}

		snapshot := slices.Clone(coins)

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := s.Search(target, snapshot)
			results[i] = BatchResult{
				Target: target,
				Result: res,
				Err:    err,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
