// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// nullifierIndex is the pool's component D: three independent maps, one
// per shielded protocol, each from a published nullifier to the id of
// the member transaction that published it. The three namespaces never
// overlap even if the raw nullifier bytes happen to collide.
type nullifierIndex struct {
	byProtocol [3]map[chainhash.Hash]chainhash.Hash
}

func newNullifierIndex() *nullifierIndex {
	n := &nullifierIndex{}
	for i := range n.byProtocol {
		n.byProtocol[i] = make(map[chainhash.Hash]chainhash.Hash)
	}
	return n
}

func (n *nullifierIndex) set(protocol wire.ShieldedProtocol) map[chainhash.Hash]chainhash.Hash {
	switch protocol {
	case wire.Sprout, wire.Sapling, wire.Orchard:
		return n.byProtocol[protocol]
	default:
		unknownProtocol(int(protocol))
		return nil // unreachable
	}
}

// Exists reports whether nf has been published by some pool member under
// protocol. Panics on an unrecognized protocol, matching nullifierExists
// in the source.
func (n *nullifierIndex) Exists(nf chainhash.Hash, protocol wire.ShieldedProtocol) bool {
	_, ok := n.set(protocol)[nf]
	return ok
}

// SpenderOf returns the id that published nf under protocol, if any.
func (n *nullifierIndex) SpenderOf(nf chainhash.Hash, protocol wire.ShieldedProtocol) (chainhash.Hash, bool) {
	id, ok := n.set(protocol)[nf]
	return id, ok
}

// nullifiersOf returns every nullifier e's transaction publishes, paired
// with the protocol namespace it belongs to.
func nullifiersOf(e *Entry) map[wire.ShieldedProtocol][]chainhash.Hash {
	tx := e.Tx.MsgTx()
	out := make(map[wire.ShieldedProtocol][]chainhash.Hash)
	for _, js := range tx.JoinSplits {
		out[wire.Sprout] = append(out[wire.Sprout], js.Nullifiers...)
	}
	for _, sp := range tx.ShieldedSpends {
		out[wire.Sapling] = append(out[wire.Sapling], sp.Nullifier)
	}
	if tx.Orchard != nil {
		out[wire.Orchard] = append(out[wire.Orchard], tx.Orchard.Nullifiers()...)
	}
	return out
}

// AddEntry indexes every nullifier e publishes, per §4.B step 6.
func (n *nullifierIndex) AddEntry(e *Entry) {
	for protocol, nfs := range nullifiersOf(e) {
		m := n.set(protocol)
		for _, nf := range nfs {
			m[nf] = e.ID()
		}
	}
}

// RemoveEntry un-indexes every nullifier e publishes, per §4.C.
func (n *nullifierIndex) RemoveEntry(e *Entry) {
	for protocol, nfs := range nullifiersOf(e) {
		m := n.set(protocol)
		for _, nf := range nfs {
			delete(m, nf)
		}
	}
}
