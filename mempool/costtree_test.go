// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func TestWeightedCostAtOrAboveRelayFeeEqualsSize(t *testing.T) {
	t.Parallel()

	const relayFee = btcutil.Amount(1000)
	const txSize = int64(250)

	paid := btcutil.Amount(int64(relayFee) * txSize / 1000)
	require.Equal(t, txSize, weightedCost(txSize, paid, relayFee))
}

func TestWeightedCostPenalizesLowFee(t *testing.T) {
	t.Parallel()

	const relayFee = btcutil.Amount(1000)
	const txSize = int64(250)

	low := weightedCost(txSize, 1, relayFee)
	require.Greater(t, low, txSize)
}

func TestWeightedCostTreeAddRemoveTotalCost(t *testing.T) {
	t.Parallel()

	tree := newWeightedCostTree()
	var a, b chainhash.Hash
	a[0], b[0] = 1, 2

	tree.Add(a, 100)
	tree.Add(b, 200)
	require.Equal(t, int64(300), tree.TotalCost())
	require.Equal(t, 2, tree.Len())

	tree.Remove(a)
	require.Equal(t, int64(200), tree.TotalCost())
	require.Equal(t, 1, tree.Len())
}

func TestWeightedCostTreeDropRandomRespectsLimit(t *testing.T) {
	t.Parallel()

	tree := newWeightedCostTree()
	var a, b chainhash.Hash
	a[0], b[0] = 1, 2
	tree.Add(a, 100)
	tree.Add(b, 100)

	_, ok := tree.DropRandom(200)
	require.False(t, ok, "at the limit, DropRandom must not evict")

	id, ok := tree.DropRandom(100)
	require.True(t, ok)
	require.Contains(t, []chainhash.Hash{a, b}, id)
	require.LessOrEqual(t, tree.TotalCost(), int64(100))
}

// TestWeightedCostTreeDropRandomProportional exercises the §8 law that
// weighted eviction converges to the empirical frequency cost(x)/total.
func TestWeightedCostTreeDropRandomProportional(t *testing.T) {
	t.Parallel()

	var heavy, light chainhash.Hash
	heavy[0], light[0] = 1, 2

	const trials = 4000
	var heavyWins int
	for i := 0; i < trials; i++ {
		tree := newWeightedCostTree()
		tree.Add(heavy, 900)
		tree.Add(light, 100)
		id, ok := tree.DropRandom(0)
		require.True(t, ok)
		if id == heavy {
			heavyWins++
		}
	}

	frequency := float64(heavyWins) / float64(trials)
	require.InDelta(t, 0.9, frequency, 0.05)
}
