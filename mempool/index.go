// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// primaryIndex is the pool's component B: a set of Entries addressable
// by id, with a secondary ordering by score maintained as a sorted
// slice. The source backs this with an intrusive Boost multi_index
// container; a hash map plus a sorted slice gives the same two access
// patterns without requiring an intrusive container library.
type primaryIndex struct {
	byID   map[chainhash.Hash]*Entry
	sorted []*Entry // score-descending; rebuilt lazily
	dirty  bool
}

func newPrimaryIndex() *primaryIndex {
	return &primaryIndex{byID: make(map[chainhash.Hash]*Entry)}
}

// Len returns the number of entries currently indexed.
func (idx *primaryIndex) Len() int {
	return len(idx.byID)
}

// Get returns the entry for id, if present.
func (idx *primaryIndex) Get(id chainhash.Hash) (*Entry, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

// Has reports whether id is indexed.
func (idx *primaryIndex) Has(id chainhash.Hash) bool {
	_, ok := idx.byID[id]
	return ok
}

// Insert adds e, keyed by its own id. Behavior is undefined if the id is
// already present, matching the source's addUnchecked contract -- the
// caller is trusted to have checked first.
func (idx *primaryIndex) Insert(e *Entry) {
	idx.byID[e.ID()] = e
	idx.dirty = true
}

// Delete removes id from the index. A no-op if id is absent.
func (idx *primaryIndex) Delete(id chainhash.Hash) {
	if _, ok := idx.byID[id]; !ok {
		return
	}
	delete(idx.byID, id)
	idx.dirty = true
}

// Modify updates id's fee delta and invalidates the score ordering. It is
// the only sanctioned way to mutate a field that participates in the
// score key, mirroring the source's PrioritiseTransaction-driven
// modify-then-resort protocol.
func (idx *primaryIndex) Modify(id chainhash.Hash, feeDelta int64) {
	e, ok := idx.byID[id]
	if !ok {
		return
	}
	e.FeeDelta += btcutil.Amount(feeDelta)
	idx.dirty = true
}

// Sorted returns entries in score order (highest effective fee-rate
// first, smaller size breaking ties), rebuilding the cached ordering if
// it has been invalidated since the last call.
func (idx *primaryIndex) Sorted() []*Entry {
	if idx.dirty || idx.sorted == nil {
		idx.rebuild()
	}
	return idx.sorted
}

func (idx *primaryIndex) rebuild() {
	idx.sorted = make([]*Entry, 0, len(idx.byID))
	for _, e := range idx.byID {
		idx.sorted = append(idx.sorted, e)
	}
	sort.Slice(idx.sorted, func(i, j int) bool {
		return CompareDepthAndScore(idx.sorted[i], idx.sorted[j])
	})
	idx.dirty = false
}

// Range calls fn for every entry in unspecified order, stopping early if
// fn returns false.
func (idx *primaryIndex) Range(fn func(*Entry) bool) {
	for _, e := range idx.byID {
		if !fn(e) {
			return
		}
	}
}
