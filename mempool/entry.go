// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"

	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Entry is the pool's per-transaction metadata record (component A). It
// owns the transaction by shared reference so that callers retrieving an
// Entry from the pool may continue to hold a usable handle on the
// transaction after the Entry itself is removed.
type Entry struct {
	Tx *wire.Tx

	Fee               btcutil.Amount
	TxSize            int64
	ModSize           int64
	UsageSize         int64
	Time              time.Time
	Priority          float64
	Height            int32
	HadNoDependencies bool
	SpendsCoinbase    bool
	SigOpCount        uint32
	BranchID          uint32
	FeeDelta          btcutil.Amount
}

// NewEntry builds an Entry for tx, computing derived fields the way the
// source's CTxMemPoolEntry constructor does: size and modified size from
// the transaction body, and the deep memory footprint via DynamicUsage.
func NewEntry(
	tx *wire.Tx,
	fee btcutil.Amount,
	when time.Time,
	priority float64,
	height int32,
	hadNoDependencies bool,
	spendsCoinbase bool,
	sigOpCount uint32,
	branchID uint32,
) *Entry {
	txSize := tx.MsgTx().SerializeSize()
	e := &Entry{
		Tx:                tx,
		Fee:               fee,
		TxSize:            txSize,
		ModSize:           tx.MsgTx().ModifiedSize(txSize),
		Time:              when,
		Priority:          priority,
		Height:            height,
		HadNoDependencies: hadNoDependencies,
		SpendsCoinbase:    spendsCoinbase,
		SigOpCount:        sigOpCount,
		BranchID:          branchID,
	}
	e.UsageSize = int64(dynamicUsage(e))
	return e
}

// ID returns the transaction's cached id.
func (e *Entry) ID() chainhash.Hash {
	return *e.Tx.Hash()
}

// FeeRate returns fee per serialized byte. Division by zero cannot occur:
// every transaction admitted to the pool has at least one input, giving a
// strictly positive TxSize.
func (e *Entry) FeeRate() float64 {
	if e.TxSize == 0 {
		return 0
	}
	return float64(e.Fee) / float64(e.TxSize)
}

// PriorityAt returns the transaction's priority extrapolated to height h,
// mirroring the source's CTxMemPoolEntry::GetPriority: priority grows
// linearly with chain-depth-since-admission, scaled by the value moved
// per byte of modified size.
func (e *Entry) PriorityAt(h int32) float64 {
	if e.ModSize == 0 {
		return e.Priority
	}
	deltaHeight := float64(h - e.Height)
	deltaPriority := deltaHeight * float64(e.Tx.MsgTx().ValueOut()+int64(e.Fee)) / float64(e.ModSize)
	result := e.Priority + deltaPriority
	if result < 0 {
		result = 0
	}
	return result
}

// score is the comparable ordering key for the primary index: higher
// effective fee rate ((fee + fee delta) / size) wins, ties broken by
// smaller size.
type score struct {
	fee  btcutil.Amount
	size int64
}

func (e *Entry) score() score {
	return score{fee: e.Fee + e.FeeDelta, size: e.TxSize}
}

// less reports whether a should sort before b in the primary index's
// score order, i.e. whether a has strictly higher priority than b.
func (a score) less(b score) bool {
	lhs := float64(a.fee) * float64(b.size)
	rhs := float64(b.fee) * float64(a.size)
	if lhs != rhs {
		return lhs > rhs
	}
	return a.size < b.size
}

// CompareDepthAndScore orders two entries the way the source's
// CompareTxMemPoolEntryByDepthAndScore does. The name is inherited
// verbatim from the source, which documents that despite its name the
// comparator does not consider transaction depth at all -- only score.
// This implementation preserves that (surprising) observable ordering
// rather than "fixing" the name to match the behavior.
func CompareDepthAndScore(a, b *Entry) bool {
	return a.score().less(b.score())
}
