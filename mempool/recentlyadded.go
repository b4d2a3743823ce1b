// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// recentlyAddedLog is the pool's component G: an insertion-ordered
// record of just-admitted transactions, drained by the wallet-notify
// path. G stores entries by id and resolves through the primary index
// at drain time rather than holding bare *wire.Tx pointers, so that a
// transaction removed from the pool between admission and drain does
// not leave a dangling reference (see SPEC_FULL.md §9).
type recentlyAddedLog struct {
	order []chainhash.Hash
	seq   uint64
}

func newRecentlyAddedLog() *recentlyAddedLog {
	return &recentlyAddedLog{}
}

// Append records id's admission and bumps the sequence counter.
func (g *recentlyAddedLog) Append(id chainhash.Hash) uint64 {
	g.order = append(g.order, id)
	g.seq++
	return g.seq
}

// Remove drops id from the pending log, if present, without affecting
// the sequence counter. Called when a logged transaction is removed
// from the pool before ever being drained.
func (g *recentlyAddedLog) Remove(id chainhash.Hash) {
	for i, h := range g.order {
		if h == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			return
		}
	}
}

// Drain returns, in admission order, the transactions resolvable in idx
// (skipping any id that was removed before being drained), the current
// sequence number, and clears the pending log. Drain never resets the
// sequence counter itself, per §3 (TxPool.Clear replaces the whole log,
// counter included).
func (g *recentlyAddedLog) Drain(idx *primaryIndex) ([]*wire.Tx, uint64) {
	out := make([]*wire.Tx, 0, len(g.order))
	for _, id := range g.order {
		if e, ok := idx.Get(id); ok {
			out = append(out, e.Tx)
		}
	}
	g.order = nil
	return out, g.seq
}

// Seq returns the current sequence counter without draining.
func (g *recentlyAddedLog) Seq() uint64 {
	return g.seq
}
