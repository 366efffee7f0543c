package coinselect

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestSelectBatch checks that every target of a batch gets its own outcome.
func TestSelectBatch(t *testing.T) {
	t.Parallel()

	sel := newTestSelector(t, 1, 1, 10_000)
	coins := makeCoins(100_000, 50_000, 30_000)

	targets := []btcutil.Amount{120_000, 500_000, 10_000, 79_000}
	results, err := sel.SelectBatch(context.Background(), targets, coins)
	require.NoError(t, err)
	require.Len(t, results, len(targets))

	for i, res := range results {
		require.Equal(t, targets[i], res.Target)
	}

	require.NoError(t, results[0].Err)
	require.Equal(t, []btcutil.Amount{100_000, 30_000},
		coinValues(results[0].Result.Coins))

	require.ErrorIs(t, results[1].Err, ErrInsufficientFunds)
	require.Nil(t, results[1].Result)

	require.ErrorIs(t, results[2].Err, ErrNoSolution)

	// 49,932 + 29,932 fits [79,000, 89,000] while nothing else does.
	require.NoError(t, results[3].Err)
	require.Equal(t, []btcutil.Amount{50_000, 30_000},
		coinValues(results[3].Result.Coins))

	// The batch matches running the searches one by one.
	for i, target := range targets {
		res, err := sel.Search(target, coins)
		if results[i].Err != nil {
			require.EqualError(t, err, results[i].Err.Error())
			continue
		}

		require.NoError(t, err)
		require.Equal(t, res, results[i].Result)
	}
}

// TestSelectBatchCanceled checks that a canceled context stops the batch.
func TestSelectBatchCanceled(t *testing.T) {
	t.Parallel()

	sel := newTestSelector(t, 1, 1, 10_000)
	coins := makeCoins(100_000, 50_000, 30_000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := sel.SelectBatch(
		ctx, []btcutil.Amount{120_000, 80_000}, coins,
	)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, results)
}

// TestSelectBatchEmpty checks that an empty batch succeeds.
func TestSelectBatchEmpty(t *testing.T) {
	t.Parallel()

	sel := newTestSelector(t, 1, 1, 10_000)

	results, err := sel.SelectBatch(
		context.Background(), nil, makeCoins(1_000),
	)
	require.NoError(t, err)
	require.Empty(t, results)
}
