// Copyright (c) 2024 The Koto developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/container/apbf"
)

// evictedCapacityHint bounds the minimum capacity requested from the
// underlying filter; the window is meant to hold "recently" evicted ids,
// not the whole pool's history, so a modest fixed capacity is
// appropriate regardless of pool size.
const evictedCapacityHint = 4096

// evictedFalsePositiveRate is conservative: a false positive here only
// causes a legitimate re-admission to be spuriously treated as recently
// evicted, which is a churn-prevention hint, not a correctness hazard
// (see SPEC_FULL.md §3).
const evictedFalsePositiveRate = 0.001

// evictionWindow is the pool's component I: a time-bounded memory of ids
// recently dropped by eviction. §3 calls for ids older than
// evictionMemorySeconds to be lazily discarded; it is backed here by an
// Age-Partitioned Bloom Filter (apbf.Filter), which natively ages by
// item-count generations rather than wall-clock time. This wraps it with
// a time-driven Reset so the observable "contains" answer degrades to
// false once roughly evictionMemorySeconds have elapsed since the last
// reset, approximating the spec's time-bound contract with a real
// bloom-filter dependency rather than a hand-rolled time-indexed set; see
// DESIGN.md for the tradeoff this accepts (coarse, reset-boundary-aligned
// expiry rather than a per-item timestamp).
type evictionWindow struct {
	filter     *apbf.Filter
	memory     time.Duration
	lastReset  time.Time
	now        func() time.Time
}

func newEvictionWindow(memorySeconds int64, now func() time.Time) *evictionWindow {
	if now == nil {
		now = time.Now
	}
	return &evictionWindow{
		filter:    apbf.NewFilter(evictedCapacityHint, evictedFalsePositiveRate),
		memory:    time.Duration(memorySeconds) * time.Second,
		lastReset: now(),
		now:       now,
	}
}

func (w *evictionWindow) maybeReset() {
	if w.memory <= 0 {
		return
	}
	now := w.now()
	if now.Sub(w.lastReset) >= w.memory {
		w.filter.Reset()
		w.lastReset = now
	}
}

// Add remembers id as recently evicted.
func (w *evictionWindow) Add(id chainhash.Hash) {
	w.maybeReset()
	w.filter.Add(id[:])
}

// Contains reports whether id was evicted within the configured memory
// window. May return a false positive; never a false negative for an id
// added since the last reset boundary.
func (w *evictionWindow) Contains(id chainhash.Hash) bool {
	w.maybeReset()
	return w.filter.Contains(id[:])
}
