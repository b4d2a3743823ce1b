// Copyright (c) 2024 The Koto developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// AddressDelta is a single balance-affecting event for a watched
// script: either a received output (Spending == false) or a spent
// input (Spending == true).
type AddressDelta struct {
	ScriptType uint8
	ScriptHash chainhash.Hash
	TxID       chainhash.Hash
	Index      uint32
	Spending   bool
	Amount     btcutil.Amount
	// PrevOut is only meaningful when Spending is true.
	PrevOut wire.OutPoint
}

type addressKey struct {
	ScriptType uint8
	ScriptHash chainhash.Hash
}

// addressIndex is the optional component E forward/reverse pair keyed
// by script. It is a no-op surface when the owning pool's Config leaves
// AddressIndex disabled; mempool.go never calls into it in that case.
type addressIndex struct {
	byAddress map[addressKey][]AddressDelta
	byTx      map[chainhash.Hash][]addressKey
}

func newAddressIndex() *addressIndex {
	return &addressIndex{
		byAddress: make(map[addressKey][]AddressDelta),
		byTx:      make(map[chainhash.Hash][]addressKey),
	}
}

// Add indexes every delta under its script key and records the keys
// touched by id so Remove can tear them down in O(k).
func (a *addressIndex) Add(id chainhash.Hash, deltas []AddressDelta) {
	if len(deltas) == 0 {
		return
	}
	keys := make([]addressKey, 0, len(deltas))
	for _, d := range deltas {
		k := addressKey{ScriptType: d.ScriptType, ScriptHash: d.ScriptHash}
		a.byAddress[k] = append(a.byAddress[k], d)
		keys = append(keys, k)
	}
	a.byTx[id] = append(a.byTx[id], keys...)
}

// Remove tears down every delta id contributed.
func (a *addressIndex) Remove(id chainhash.Hash) {
	keys, ok := a.byTx[id]
	if !ok {
		return
	}
	delete(a.byTx, id)
	for _, k := range keys {
		deltas := a.byAddress[k]
		filtered := deltas[:0]
		for _, d := range deltas {
			if d.TxID != id {
				filtered = append(filtered, d)
			}
		}
		if len(filtered) == 0 {
			delete(a.byAddress, k)
		} else {
			a.byAddress[k] = filtered
		}
	}
}

// Get returns the deltas recorded for (scriptType, scriptHash).
func (a *addressIndex) Get(scriptType uint8, scriptHash chainhash.Hash) []AddressDelta {
	return a.byAddress[addressKey{ScriptType: scriptType, ScriptHash: scriptHash}]
}
