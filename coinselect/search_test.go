package coinselect

import (
	"math/rand"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/stretchr/testify/require"
)

// searchFor builds the pool for the coins and runs the search on it.
func searchFor(coins []coinset.Coin, fees inputFees, target,
	cost btcutil.Amount, maxTries int) (utxoPool, searchOutcome) {

	pool := newUtxoPool(coins, fees)
	outcome := branchAndBound(pool, searchParams{
		target:       target,
		costOfChange: cost,
		maxTries:     maxTries,
	})

	return pool, outcome
}

// TestBranchAndBoundFindsLowestExcess checks the search on a small pool
// where only one combination fits the window.
func TestBranchAndBoundFindsLowestExcess(t *testing.T) {
	t.Parallel()

	sel := newTestSelector(t, 1, 1, 10_000)
	coins := makeCoins(100_000, 50_000, 30_000)

	res, err := sel.Search(120_000, coins)
	require.NoError(t, err)

	require.Equal(t, []btcutil.Amount{100_000, 30_000},
		coinValues(res.Coins))

	// Equal rates carry no input waste, so the waste is the excess.
	require.Equal(t, btcutil.Amount(130_000-2*testInputFee-120_000),
		res.Waste)
	require.Equal(t, res.Waste, res.Excess())
	require.Equal(t, btcutil.Amount(120_000), res.ActualTarget)
	require.True(t, res.Complete)
	require.Equal(t, 7, res.Tries)
}

// TestBranchAndBoundTieGoesToLast checks that a selection with the same
// waste as the best one replaces it.
func TestBranchAndBoundTieGoesToLast(t *testing.T) {
	t.Parallel()

	// Effective values 3000, 2000 and 1000. Both {3000} and
	// {2000, 1000} hit the target exactly with zero waste, the second one
	// is found later.
	coins := makeCoins(
		3_000+testInputFee, 2_000+testInputFee, 1_000+testInputFee,
	)
	fees := inputFees{fee: testInputFee, longTermFee: testInputFee}

	pool, outcome := searchFor(coins, fees, 3_000, 0, 0)
	require.True(t, outcome.best.IsSome())
	require.Zero(t, outcome.waste)
	require.True(t, outcome.complete)

	selected, _ := project(pool, outcome.best.UnwrapOr(nil))
	require.Equal(t, []btcutil.Amount{2_068, 1_068}, coinValues(selected))
}

// TestBranchAndBoundSymmetryPruning checks that equal groups are not
// re-included after one of them was excluded, which keeps the number of
// steps polynomial in the pool size.
func TestBranchAndBoundSymmetryPruning(t *testing.T) {
	t.Parallel()

	const numCoins = 20

	values := make([]btcutil.Amount, numCoins)
	for i := range values {
		values[i] = 10_000 + testInputFee
	}
	coins := makeCoins(values...)
	fees := inputFees{fee: testInputFee, longTermFee: testInputFee}

	// Five coins are 50,000 and six are 60,000, so nothing fits in
	// [55,000, 56,000]. Without the pruning rule the search would visit
	// every 5-subset of the 20 coins.
	_, outcome := searchFor(coins, fees, 55_000, 1_000, 0)
	require.True(t, outcome.best.IsNone())
	require.True(t, outcome.complete)
	require.Less(t, outcome.tries, numCoins*numCoins)

	// Five coins fit [50,000, 51,000]. The answer is the first five
	// coins, as every later equal selection is pruned.
	pool, outcome := searchFor(coins, fees, 50_000, 1_000, 0)
	require.True(t, outcome.complete)
	require.Less(t, outcome.tries, numCoins*numCoins)

	selected, value := project(pool, outcome.best.UnwrapOr(nil))
	require.Equal(t, coins[:5], selected)
	require.Equal(t, btcutil.Amount(50_000), value)
}

// TestBranchAndBoundMaxTries checks that running out of tries returns the
// best selection found so far and reports it as incomplete.
func TestBranchAndBoundMaxTries(t *testing.T) {
	t.Parallel()

	coins := makeCoins(100_000, 50_000, 30_000)
	fees := inputFees{fee: testInputFee, longTermFee: testInputFee}

	// The one solution is recorded on the fifth step.
	pool, outcome := searchFor(coins, fees, 120_000, 10_000, 5)
	require.False(t, outcome.complete)
	require.Equal(t, 5, outcome.tries)

	selected, _ := project(pool, outcome.best.UnwrapOr(nil))
	require.Equal(t, []btcutil.Amount{100_000, 30_000},
		coinValues(selected))

	// Two steps are not enough to reach it.
	_, outcome = searchFor(coins, fees, 120_000, 10_000, 2)
	require.False(t, outcome.complete)
	require.True(t, outcome.best.IsNone())
	require.Equal(t, btcutil.Amount(btcutil.MaxSatoshi), outcome.waste)
}

// TestBranchAndBoundEmptyPool checks that an empty pool ends the search on
// the first step.
func TestBranchAndBoundEmptyPool(t *testing.T) {
	t.Parallel()

	_, outcome := searchFor(nil, inputFees{}, 1_000, 0, 0)
	require.True(t, outcome.best.IsNone())
	require.True(t, outcome.complete)
	require.Equal(t, 1, outcome.tries)
}

// TestFeesElevated checks the condition guarding the waste pruning rule.
func TestFeesElevated(t *testing.T) {
	t.Parallel()

	coins := makeCoins(10_000, 20_000)

	high := newSearchState(newUtxoPool(coins, inputFees{
		fee: 136, longTermFee: 68,
	}))
	require.True(t, high.feesElevated())

	// Once every group is decided the last one is asked.
	high.advance()
	high.advance()
	require.True(t, high.feesElevated())

	low := newSearchState(newUtxoPool(coins, inputFees{
		fee: 68, longTermFee: 136,
	}))
	require.False(t, low.feesElevated())

	equal := newSearchState(newUtxoPool(coins, inputFees{
		fee: 68, longTermFee: 68,
	}))
	require.False(t, equal.feesElevated())

	empty := newSearchState(nil)
	require.False(t, empty.feesElevated())
}

// TestSearchStateInvariant drives the search state through random advance
// and backtrack steps and checks that the running totals always equal what
// the selection implies.
func TestSearchStateInvariant(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		coins := randomCoins(rng, 1+rng.Intn(12))
		fees := inputFees{
			fee:         btcutil.Amount(rng.Intn(300)),
			longTermFee: btcutil.Amount(rng.Intn(300)),
		}

		state := newSearchState(newUtxoPool(coins, fees))
		for op := 0; op < 200; op++ {
			if state.depth() < len(state.pool) && rng.Intn(3) > 0 {
				state.advance()
			} else if !state.backtrack() {
				break
			}

			require.LessOrEqual(t, state.depth(), len(state.pool))

			value, available, waste := state.recompute()
			require.Equal(t, value, state.value)
			require.Equal(t, available, state.available)
			require.Equal(t, waste, state.waste)
		}
	}
}

// TestBranchAndBoundMatchesBruteForce compares the search against an
// enumeration of every subset on small pools. With positive effective
// values a complete search must find the lowest waste in the window, and the
// best waste must never increase while searching.
func TestBranchAndBoundMatchesBruteForce(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))

	rates := []inputFees{
		{fee: 68, longTermFee: 68},
		{fee: 136, longTermFee: 68},
		{fee: 68, longTermFee: 204},
		{fee: 204, longTermFee: 136},
	}

	for round := 0; round < 200; round++ {
		fees := rates[rng.Intn(len(rates))]
		coins := randomCoins(rng, 1+rng.Intn(10))
		pool := newUtxoPool(coins, fees)

		target := btcutil.Amount(rng.Int63n(
			int64(pool.totalEffectiveValue()) + 1,
		))
		cost := btcutil.Amount(rng.Intn(5_000))

		obs := &wasteRecorder{}
		outcome := branchAndBound(pool, searchParams{
			target:       target,
			costOfChange: cost,
			observer:     obs,
		})
		require.True(t, outcome.complete)

		bestWaste, found := bruteForce(pool, target, cost)
		require.Equal(t, found, outcome.best.IsSome(),
			"round %d", round)

		if !found {
			continue
		}

		require.Equal(t, bestWaste, outcome.waste, "round %d", round)

		// The recorded waste only ever goes down.
		for i := 1; i < len(obs.wastes); i++ {
			require.LessOrEqual(t, obs.wastes[i], obs.wastes[i-1])
		}

		// The returned selection lies inside the window and carries
		// the reported waste.
		_, value := project(pool, outcome.best.UnwrapOr(nil))
		require.GreaterOrEqual(t, value, target)
		require.LessOrEqual(t, value, target+cost)
		require.Equal(t, outcome.waste,
			selectionWaste(pool, outcome.best.UnwrapOr(nil))+
				value-target)
	}
}

// TestBranchAndBoundDeterministic checks that the same input gives the same
// selection.
func TestBranchAndBoundDeterministic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	coins := randomCoins(rng, 25)
	fees := inputFees{fee: 136, longTermFee: 68}

	pool1, first := searchFor(coins, fees, 150_000, 2_000, 0)
	pool2, second := searchFor(coins, fees, 150_000, 2_000, 0)

	sel1, _ := project(pool1, first.best.UnwrapOr(nil))
	sel2, _ := project(pool2, second.best.UnwrapOr(nil))
	require.Equal(t, sel1, sel2)
	require.Equal(t, first.waste, second.waste)
	require.Equal(t, first.tries, second.tries)
}

// randomCoins returns coins worth between 1,000 and 100,000 sats. A third
// of them repeat an earlier value to exercise the pruning of equal groups.
func randomCoins(rng *rand.Rand, n int) []coinset.Coin {
	values := make([]btcutil.Amount, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && rng.Intn(3) == 0 {
			values = append(values, values[rng.Intn(i)])
			continue
		}

		values = append(values, btcutil.Amount(1_000+rng.Intn(99_000)))
	}

	return makeCoins(values...)
}

// bruteForce returns the lowest waste of all subsets of the pool whose
// effective value is in [target, target + cost].
func bruteForce(pool utxoPool, target, cost btcutil.Amount) (btcutil.Amount,
	bool) {

	var (
		best  btcutil.Amount
		found bool
	)
	for mask := 0; mask < 1<<len(pool); mask++ {
		var value, waste btcutil.Amount
		for i, g := range pool {
			if mask&(1<<i) == 0 {
				continue
			}

			value += g.EffectiveValue()
			waste += g.Waste()
		}

		if value < target || value > target+cost {
			continue
		}

		waste += value - target
		if !found || waste < best {
			best = waste
			found = true
		}
	}

	return best, found
}

// selectionWaste sums the input waste of the included groups.
func selectionWaste(pool utxoPool, selection []bool) btcutil.Amount {
	var waste btcutil.Amount
	for i, included := range selection {
		if included {
			waste += pool[i].Waste()
		}
	}

	return waste
}

// wasteRecorder is an Observer remembering every recorded waste.
type wasteRecorder struct {
	wastes []btcutil.Amount
}

func (w *wasteRecorder) Included(Step)    {}
func (w *wasteRecorder) Backtracked(Step) {}

func (w *wasteRecorder) Recorded(_ Step, waste btcutil.Amount) {
	w.wastes = append(w.wastes, waste)
}
