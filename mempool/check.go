// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math/rand"

	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Check is the pool's component K: a probabilistic cross-index
// invariant verifier. It runs with probability checkFrequency / 2^32
// (set via SetCheckFrequency); a zero frequency, the default, disables
// it entirely. A detected inconsistency panics -- Check is a
// test/development aid, and a failure indicates internal corruption
// that no caller can meaningfully recover from.
func (mp *TxPool) Check(base CoinsViewer) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.check(base)
}

func (mp *TxPool) check(base CoinsViewer) {
	if mp.checkFrequency == 0 {
		return
	}
	if rand.Uint32() >= mp.checkFrequency {
		return
	}

	var tallySize, tallyUsage int64

	mp.primary.Range(func(e *Entry) bool {
		tallySize += e.TxSize
		tallyUsage += e.UsageSize

		for i, in := range e.Tx.MsgTx().TxIn {
			spender, idx, ok := mp.outpoints.SpenderOf(in.PreviousOutPoint)
			if !ok || spender != e.ID() || idx != i {
				panic("mempool: check: outpoint map inconsistent with primary index")
			}
			if mp.primary.Has(in.PreviousOutPoint.Hash) {
				continue
			}
			if base != nil && !base.HaveCoins(in.PreviousOutPoint.Hash) {
				panic("mempool: check: parent of pool member unavailable in base view")
			}
		}

		if base != nil {
			for protocol, nfs := range nullifiersOf(e) {
				for _, nf := range nfs {
					if base.GetNullifier(nf, protocol) {
						panic("mempool: check: nullifier published by pool member already spent in base view")
					}
				}
			}
		}
		return true
	})

	for _, op := range mp.outpoints.allOutpoints() {
		spender, idx, ok := mp.outpoints.SpenderOf(op)
		if !ok {
			continue
		}
		e, ok := mp.primary.Get(spender)
		if !ok {
			panic("mempool: check: outpoint map references a transaction absent from the primary index")
		}
		if idx >= len(e.Tx.MsgTx().TxIn) || e.Tx.MsgTx().TxIn[idx].PreviousOutPoint != op {
			panic("mempool: check: outpoint map entry does not match the stored parent pointer")
		}
	}

	for protocol := range mp.nullifiers.byProtocol {
		for nf, id := range mp.nullifiers.byProtocol[protocol] {
			e, ok := mp.primary.Get(id)
			if !ok {
				panic("mempool: check: nullifier set references a transaction absent from the primary index")
			}
			if !publishesNullifier(e, wire.ShieldedProtocol(protocol), nf) {
				panic("mempool: check: nullifier set entry not actually published by its referenced entry")
			}
		}
	}

	if tallySize != mp.totalTxSize {
		panic("mempool: check: totalTxSize diverged from the sum over entries")
	}
	if tallyUsage != mp.cachedInnerUsage {
		panic("mempool: check: cachedInnerUsage diverged from the sum over entries")
	}
}

func publishesNullifier(e *Entry, protocol wire.ShieldedProtocol, nf chainhash.Hash) bool {
	for _, got := range nullifiersOf(e)[protocol] {
		if got == nf {
			return true
		}
	}
	return false
}

// allOutpoints returns every tracked outpoint, for Check's use only; it
// is not part of the outpointIndex's steady-state API because nothing
// else needs a full scan.
func (o *outpointIndex) allOutpoints() []wire.OutPoint {
	out := make([]wire.OutPoint, 0, len(o.spentBy))
	for op := range o.spentBy {
		out = append(out, op)
	}
	return out
}
