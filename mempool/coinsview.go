// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Coins is a synthesised view of a transaction's outputs as seen by the
// coins-view overlay: either resolved from a pool member (in which case
// Height is UnminedHeight) or passed through from the base view.
type Coins struct {
	Tx     *wire.Tx
	Height int32
}

// MempoolCoinsView is the pool's component L: a read-through view that
// shadows a base UTXO store with the pool's own contents, so that
// dependent-transaction validation (the integrity checker, and any
// external caller assembling a chain of unconfirmed spends) can resolve
// parents that live only in the pool.
type MempoolCoinsView struct {
	pool *TxPool
	base CoinsViewer
}

// NewMempoolCoinsView returns an overlay backed by base, shadowed by
// pool.
func NewMempoolCoinsView(pool *TxPool, base CoinsViewer) *MempoolCoinsView {
	return &MempoolCoinsView{pool: pool, base: base}
}

// GetCoins resolves txid's coins, preferring the pool over the base
// view, per §4.G.
func (v *MempoolCoinsView) GetCoins(txid chainhash.Hash) (*Coins, bool) {
	if e, ok := v.pool.Get(txid); ok {
		return &Coins{Tx: e.Tx, Height: UnminedHeight}, true
	}
	if v.base == nil {
		return nil, false
	}
	return v.base.GetCoins(txid)
}

// HaveCoins reports whether txid resolves in either the pool or the
// base view.
func (v *MempoolCoinsView) HaveCoins(txid chainhash.Hash) bool {
	if v.pool.Exists(txid) {
		return true
	}
	return v.base != nil && v.base.HaveCoins(txid)
}

// GetNullifier reports whether nf has been published under protocol by
// either the pool or the base view.
func (v *MempoolCoinsView) GetNullifier(nf chainhash.Hash, protocol wire.ShieldedProtocol) bool {
	if v.pool.NullifierExists(nf, protocol) {
		return true
	}
	return v.base != nil && v.base.GetNullifier(nf, protocol)
}
