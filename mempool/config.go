// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// UnminedHeight is the sentinel height recorded on an Entry that has not
// yet been confirmed in a block, mirroring MEMPOOL_HEIGHT in the source.
const UnminedHeight = 0x7fffffff

// FeeEstimatorBackend is the opaque collaborator the pool forwards
// admission and removal events to. It is satisfied by *fees.Estimator in
// production and by a mock in tests.
type FeeEstimatorBackend interface {
	ObserveTransaction(entry *Entry)
	ProcessBlock(height int32, entries []*Entry)
	RemoveTx(id chainhash.Hash, inBlock bool)
	EstimateFee(numBlocks int32) (btcutil.Amount, error)
	EstimatePriority(numBlocks int32) (float64, error)
}

// CoinsViewer is the minimal read surface of the external UTXO store the
// pool's coins-view overlay (§4.G) shadows. The pool never mutates the
// base view.
type CoinsViewer interface {
	GetCoins(txid chainhash.Hash) (*Coins, bool)
	HaveCoins(txid chainhash.Hash) bool
	GetNullifier(nf chainhash.Hash, protocol wire.ShieldedProtocol) bool
}

// Config houses the functional collaborators the pool needs but does not
// itself implement: finality, expiry, and coinbase maturity all live in
// consensus code outside this package (§9, Open Questions) and are
// injected here rather than hard-coded.
type Config struct {
	// BestHeight returns the current chain tip height. The pool itself
	// does not call it: every height-dependent operation takes its
	// height as an explicit argument.
	BestHeight func() int32

	// IsFinalTx reports whether tx would be considered final if it were
	// mined at the given height and time, under the given reorg flags.
	// A nil IsFinalTx treats every transaction as final.
	IsFinalTx func(tx *wire.Tx, height int32, flags uint32) bool

	// IsExpired reports whether tx has expired at the given height. A
	// nil IsExpired treats no transaction as expired.
	IsExpired func(tx *wire.Tx, height int32) bool

	// CoinbaseMaturity is the minimum number of confirmations a
	// coinbase output must have before it may be spent.
	CoinbaseMaturity int32

	// Estimator is the fee-estimator glue (component M). A nil
	// Estimator disables estimator forwarding entirely.
	Estimator FeeEstimatorBackend

	// AddressIndex enables the optional by-address insight index
	// (component E).
	AddressIndex bool

	// SpentIndex enables the optional by-spent-output insight index
	// (component E).
	SpentIndex bool

	// CheckFrequency is compared against a uniform [0, 2^32) draw on
	// every call to Check; 0 disables integrity checking entirely.
	CheckFrequency uint32

	// RelayFee is the minimum fee rate (amount per 1000 bytes) below
	// which a transaction's weighted eviction cost is penalized; see
	// DESIGN.md for the exact formula.
	RelayFee btcutil.Amount

	// MempoolCostLimit bounds the weighted cost tree's total cost;
	// EnsureSizeLimit evicts down to this bound.
	MempoolCostLimit int64

	// EvictionMemorySeconds bounds how long an evicted id is
	// remembered by the recently-evicted window.
	EvictionMemorySeconds int64

	// IsRegtest gates SetNotifiedSequence/IsFullyNotified.
	IsRegtest bool
}

// defaultConfig returns a copy of cfg with zero-value-unsafe fields
// replaced by defaults; New calls this so a caller may supply a
// partially-populated Config.
func defaultConfig(cfg *Config) *Config {
	out := *cfg
	if out.BestHeight == nil {
		out.BestHeight = func() int32 { return UnminedHeight }
	}
	if out.MempoolCostLimit <= 0 {
		out.MempoolCostLimit = defaultMempoolCostLimit
	}
	if out.EvictionMemorySeconds <= 0 {
		out.EvictionMemorySeconds = defaultEvictionMemorySeconds
	}
	if out.RelayFee <= 0 {
		out.RelayFee = defaultRelayFee
	}
	return &out
}

const (
	defaultMempoolCostLimit      = 80_000_000
	defaultEvictionMemorySeconds = 60 * 60
	defaultRelayFee              = btcutil.Amount(1000)
)
