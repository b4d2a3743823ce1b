// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// priorityFeeDelta is a single id's accumulated prioritisation, the
// value type of the delta overlay (component F).
type priorityFeeDelta struct {
	Priority float64
	Fee      btcutil.Amount
}

// deltaOverlay is the pool's component F: per-id priority and fee
// adjustments that are applied lazily. Unlike every other index, F's
// keys are not required to correspond to a member of the primary index
// -- a caller may call Prioritise before the referenced transaction is
// ever admitted, and the delta will be picked up on admission (§4.B
// step 7).
type deltaOverlay struct {
	deltas map[chainhash.Hash]*priorityFeeDelta
}

func newDeltaOverlay() *deltaOverlay {
	return &deltaOverlay{deltas: make(map[chainhash.Hash]*priorityFeeDelta)}
}

// Add accumulates (dp, df) into id's delta, creating it if absent.
func (d *deltaOverlay) Add(id chainhash.Hash, dp float64, df btcutil.Amount) *priorityFeeDelta {
	pd, ok := d.deltas[id]
	if !ok {
		pd = &priorityFeeDelta{}
		d.deltas[id] = pd
	}
	pd.Priority += dp
	pd.Fee += df
	return pd
}

// Get returns id's accumulated delta, if any.
func (d *deltaOverlay) Get(id chainhash.Hash) (priorityFeeDelta, bool) {
	pd, ok := d.deltas[id]
	if !ok {
		return priorityFeeDelta{}, false
	}
	return *pd, true
}

// Clear removes id's delta entirely.
func (d *deltaOverlay) Clear(id chainhash.Hash) {
	delete(d.deltas, id)
}

// ApplyDeltas adds id's accumulated delta (if any) onto the in/out
// parameters, matching the additive contract §8 requires: two calls
// must yield the same result as one call with the deltas summed.
func (d *deltaOverlay) ApplyDeltas(id chainhash.Hash, priority *float64, fee *btcutil.Amount) {
	pd, ok := d.deltas[id]
	if !ok {
		return
	}
	*priority += pd.Priority
	*fee += pd.Fee
}
