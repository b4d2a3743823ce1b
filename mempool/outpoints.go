// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// spentBy records which member transaction, and at which input index,
// spends a given outpoint.
type spentBy struct {
	TxID       chainhash.Hash
	InputIndex int
}

// outpointIndex is the pool's component C: a map from every transparent
// outpoint currently spent by a pool member to the spending entry. The
// invariant that no two members spend the same outpoint is enforced by
// the admission/removal call sites in mempool.go, not by this type
// itself, mirroring the source's bare std::map<COutPoint, ...>.
type outpointIndex struct {
	spentBy map[wire.OutPoint]spentBy
}

func newOutpointIndex() *outpointIndex {
	return &outpointIndex{spentBy: make(map[wire.OutPoint]spentBy)}
}

// Add records that id's input i spends outpoint op.
func (o *outpointIndex) Add(op wire.OutPoint, id chainhash.Hash, i int) {
	o.spentBy[op] = spentBy{TxID: id, InputIndex: i}
}

// Remove forgets who spends op, if anyone.
func (o *outpointIndex) Remove(op wire.OutPoint) {
	delete(o.spentBy, op)
}

// SpenderOf returns the id spending op, if any.
func (o *outpointIndex) SpenderOf(op wire.OutPoint) (chainhash.Hash, int, bool) {
	sb, ok := o.spentBy[op]
	return sb.TxID, sb.InputIndex, ok
}

// HasSpender reports whether anything in the pool spends op.
func (o *outpointIndex) HasSpender(op wire.OutPoint) bool {
	_, ok := o.spentBy[op]
	return ok
}

// Len returns the number of tracked outpoints.
func (o *outpointIndex) Len() int {
	return len(o.spentBy)
}

// AddEntry indexes every transparent input of e under its outpoint,
// per §4.B step 5.
func (o *outpointIndex) AddEntry(e *Entry) {
	for i, in := range e.Tx.MsgTx().TxIn {
		o.Add(in.PreviousOutPoint, e.ID(), i)
	}
}

// RemoveEntry un-indexes every transparent input of e, per §4.C.
func (o *outpointIndex) RemoveEntry(e *Entry) {
	for _, in := range e.Tx.MsgTx().TxIn {
		o.Remove(in.PreviousOutPoint)
	}
}
