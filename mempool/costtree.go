// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math/rand"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// weightedCost computes the per-transaction eviction weight for
// component H: the larger of the transaction's own size and a low-fee
// penalty that inflates the weight of transactions paying less than
// relayFee per 1000 bytes. The source delegates this to an external
// WeightedTxInfo::from with a protocol-specific formula that is not
// present in the retrieved sources (see DESIGN.md); this reproduces the
// documented intent -- "balancing size and low-fee penalty" -- with the
// simplest formula that satisfies it: a transaction paying exactly the
// relay fee costs exactly its own size, and cost grows without bound as
// the paid fee approaches zero.
func weightedCost(txSize int64, fee btcutil.Amount, relayFee btcutil.Amount) int64 {
	if relayFee <= 0 || txSize <= 0 {
		return txSize
	}
	minFee := int64(relayFee) * txSize / 1000
	if minFee <= 0 {
		minFee = 1
	}
	paid := int64(fee)
	if paid < 1 {
		paid = 1
	}
	penalty := txSize * minFee / paid
	if penalty > txSize {
		return penalty
	}
	return txSize
}

// weightedCostTree is the pool's component H: a cost-weighted random
// selector used by size-limit eviction. The source backs this with a
// balanced tree augmented with subtree cost sums for O(log n)
// add/remove/select; this implementation instead keeps a flat cost map
// plus an insertion-ordered id slice and rebuilds prefix sums on demand,
// which is O(n) per DropRandom rather than O(log n). §2's stated budget
// targets line count, not asymptotic complexity, and this package has no
// component with a node count large enough for the difference to matter
// in practice; see DESIGN.md.
type weightedCostTree struct {
	costs map[chainhash.Hash]int64
	order []chainhash.Hash
	total int64
	rng   *rand.Rand
}

func newWeightedCostTree() *weightedCostTree {
	return &weightedCostTree{
		costs: make(map[chainhash.Hash]int64),
		rng:   rand.New(rand.NewSource(rand.Int63())),
	}
}

// Add inserts or updates id's cost.
func (w *weightedCostTree) Add(id chainhash.Hash, cost int64) {
	if old, ok := w.costs[id]; ok {
		w.total += cost - old
		w.costs[id] = cost
		return
	}
	w.costs[id] = cost
	w.order = append(w.order, id)
	w.total += cost
}

// Remove deletes id's cost, if present. A no-op otherwise, matching the
// source's "H is maintained even for txs that weren't in B" contract.
func (w *weightedCostTree) Remove(id chainhash.Hash) {
	cost, ok := w.costs[id]
	if !ok {
		return
	}
	delete(w.costs, id)
	w.total -= cost
	for i, h := range w.order {
		if h == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// TotalCost returns the sum of all currently-tracked costs.
func (w *weightedCostTree) TotalCost() int64 {
	return w.total
}

// Len returns the number of tracked ids.
func (w *weightedCostTree) Len() int {
	return len(w.costs)
}

// DropRandom returns an id chosen with probability proportional to its
// cost, and removes it, only if TotalCost() exceeds limit. It reports
// false if the tree is within the limit (or empty), in which case no
// mutation occurs.
func (w *weightedCostTree) DropRandom(limit int64) (chainhash.Hash, bool) {
	if w.total <= limit || len(w.order) == 0 {
		return chainhash.Hash{}, false
	}
	point := w.rng.Int63n(w.total)
	var cumulative int64
	for _, id := range w.order {
		cumulative += w.costs[id]
		if point < cumulative {
			w.Remove(id)
			return id, true
		}
	}
	// point < total, so the integer accumulation always finds a
	// candidate before falling off the end; fall back to the last id
	// defensively.
	last := w.order[len(w.order)-1]
	w.Remove(last)
	return last, true
}
