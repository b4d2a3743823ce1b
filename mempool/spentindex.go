// Copyright (c) 2024 The Koto developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// SpentInfo describes who spends a given outpoint and with what amount,
// the value type of the optional spent-output index.
type SpentInfo struct {
	SpendingTxID  chainhash.Hash
	InputIndex    int
	SatoshisSpent btcutil.Amount
	AddressScript []byte
}

// spentIndex is the optional component E counterpart to addressIndex,
// keyed by the outpoint being spent rather than by script.
type spentIndex struct {
	byOutpoint map[wire.OutPoint]SpentInfo
	byTx       map[chainhash.Hash][]wire.OutPoint
}

func newSpentIndex() *spentIndex {
	return &spentIndex{
		byOutpoint: make(map[wire.OutPoint]SpentInfo),
		byTx:       make(map[chainhash.Hash][]wire.OutPoint),
	}
}

// Add indexes every (outpoint, SpentInfo) pair for id.
func (s *spentIndex) Add(id chainhash.Hash, entries map[wire.OutPoint]SpentInfo) {
	if len(entries) == 0 {
		return
	}
	keys := make([]wire.OutPoint, 0, len(entries))
	for op, info := range entries {
		s.byOutpoint[op] = info
		keys = append(keys, op)
	}
	s.byTx[id] = append(s.byTx[id], keys...)
}

// Remove tears down every outpoint id contributed.
func (s *spentIndex) Remove(id chainhash.Hash) {
	ops, ok := s.byTx[id]
	if !ok {
		return
	}
	delete(s.byTx, id)
	for _, op := range ops {
		if info, ok := s.byOutpoint[op]; ok && info.SpendingTxID == id {
			delete(s.byOutpoint, op)
		}
	}
}

// Get returns who spends op, if known.
func (s *spentIndex) Get(op wire.OutPoint) (SpentInfo, bool) {
	info, ok := s.byOutpoint[op]
	return info, ok
}
