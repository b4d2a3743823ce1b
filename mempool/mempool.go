// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements the unconfirmed-transaction pool: the
// in-memory staging area between peer-to-peer relay and block
// production/validation. It accepts candidate transactions, detects
// conflicts with existing members across both transparent outpoints and
// the three shielded-protocol nullifier namespaces, services read
// queries, removes members on block connection and reorg, and enforces
// a cost-weighted size bound with probabilistic eviction.
//
// The pool performs no consensus validation of its own; callers are
// expected to have validated a transaction before calling AddUnchecked.
package mempool

import (
	"sync"
	"time"

	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// TxMempoolInfo is a snapshot of an entry's externally-relevant fields,
// returned by InfoAll/Info.
type TxMempoolInfo struct {
	Tx      *wire.Tx
	Time    time.Time
	FeeRate float64
	Fee     btcutil.Amount
	Size    int64
}

// TxPool is the unconfirmed-transaction pool. All exported methods take
// mtx once at the top and delegate to an unexported, lock-free
// implementation; unexported methods call each other directly without
// re-locking. This mirrors the teacher package's own exported/lowercase
// method-pair discipline and sidesteps the need for Go's non-reentrant
// sync.Mutex to behave reentrantly (see SPEC_FULL.md §5).
type TxPool struct {
	mtx sync.Mutex
	cfg *Config

	primary    *primaryIndex
	outpoints  *outpointIndex
	nullifiers *nullifierIndex
	deltas     *deltaOverlay
	recent     *recentlyAddedLog
	cost       *weightedCostTree
	evicted    *evictionWindow
	addresses  *addressIndex
	spent      *spentIndex

	totalTxSize      int64
	cachedInnerUsage int64
	transactionsUpdated uint64

	checkFrequency uint32
	notifiedSeq    uint64

	now func() time.Time
}

// New returns an empty pool configured per cfg.
func New(cfg *Config) *TxPool {
	cfg = defaultConfig(cfg)
	now := time.Now
	return &TxPool{
		cfg:            cfg,
		primary:        newPrimaryIndex(),
		outpoints:      newOutpointIndex(),
		nullifiers:     newNullifierIndex(),
		deltas:         newDeltaOverlay(),
		recent:         newRecentlyAddedLog(),
		cost:           newWeightedCostTree(),
		evicted:        newEvictionWindow(cfg.EvictionMemorySeconds, now),
		addresses:      newAddressIndex(),
		spent:          newSpentIndex(),
		checkFrequency: cfg.CheckFrequency,
		now:            now,
	}
}

// Lock exposes the pool's mutex to callers that must hold it across
// multiple operations, e.g. EnsureSizeLimit's documented precondition.
func (mp *TxPool) Lock()   { mp.mtx.Lock() }
func (mp *TxPool) Unlock() { mp.mtx.Unlock() }

// ---------------------------------------------------------------------
// Admission (§4.B)
// ---------------------------------------------------------------------

// AddUnchecked admits entry into the pool, under the contract that the
// caller has already validated entry.Tx. Returns an error only if id is
// already present -- the source treats this as undefined behavior, but
// returning an error here is more idiomatic than leaving the pool's
// invariants undefined.
func (mp *TxPool) AddUnchecked(entry *Entry) error {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.addUnchecked(entry)
}

func (mp *TxPool) addUnchecked(entry *Entry) error {
	id := entry.ID()
	if mp.primary.Has(id) {
		return ErrAlreadyInPool{ID: id}
	}

	cost := weightedCost(entry.TxSize, entry.Fee, mp.cfg.RelayFee)
	mp.cost.Add(id, cost)

	mp.primary.Insert(entry)
	mp.cachedInnerUsage += entry.UsageSize

	mp.recent.Append(id)

	mp.outpoints.AddEntry(entry)
	mp.nullifiers.AddEntry(entry)

	if pd, ok := mp.deltas.Get(id); ok && pd.Fee != 0 {
		mp.primary.Modify(id, int64(pd.Fee))
		entry.FeeDelta = pd.Fee
	}

	if mp.cfg.AddressIndex {
		// Address-delta computation from scripts requires an
		// external address-decoding collaborator this package does
		// not have; callers that enable AddressIndex populate it
		// themselves via AddressIndexAdd after admission.
	}

	mp.transactionsUpdated++
	mp.totalTxSize += entry.TxSize

	if mp.cfg.Estimator != nil {
		mp.cfg.Estimator.ObserveTransaction(entry)
	}

	log.Debugf("Accepted transaction %v into pool", id)
	return nil
}

// ErrAlreadyInPool is returned by AddUnchecked when id is already a
// member.
type ErrAlreadyInPool struct {
	ID chainhash.Hash
}

func (e ErrAlreadyInPool) Error() string {
	return "mempool: " + e.ID.String() + " is already in the pool"
}

// ---------------------------------------------------------------------
// Removal -- recursive closure (§4.C)
// ---------------------------------------------------------------------

// Remove removes tx (and, if recursive, every descendant that currently
// spends one of its outputs, transitively) from the pool. Returns the
// removed transactions.
func (mp *TxPool) Remove(tx *wire.Tx, recursive bool) []*wire.Tx {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.remove(tx, recursive)
}

func (mp *TxPool) remove(tx *wire.Tx, recursive bool) []*wire.Tx {
	return mp.removeWithReason(tx, recursive, false)
}

// removeWithReason is remove's actual implementation. viaBlock is true
// only for the non-recursive removal RemoveForBlock performs on a
// transaction it is about to hand to the estimator's ProcessBlock: in
// that case the estimator's observation must survive this call so
// ProcessBlock can still find it by id, so RemoveTx is told inBlock so
// it leaves its bookkeeping alone instead of discarding it.
func (mp *TxPool) removeWithReason(tx *wire.Tx, recursive, viaBlock bool) []*wire.Tx {
	var removed []*wire.Tx
	queue := []chainhash.Hash{*tx.Hash()}

	if recursive && !mp.primary.Has(*tx.Hash()) {
		for k := range tx.MsgTx().TxOut {
			if spender, _, ok := mp.outpoints.SpenderOf(wire.OutPoint{Hash: *tx.Hash(), Index: uint32(k)}); ok {
				queue = append(queue, spender)
			}
		}
	}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		e, ok := mp.primary.Get(h)
		if !ok {
			continue
		}
		etx := e.Tx

		if recursive {
			for k := range etx.MsgTx().TxOut {
				if spender, _, ok := mp.outpoints.SpenderOf(wire.OutPoint{Hash: h, Index: uint32(k)}); ok {
					queue = append(queue, spender)
				}
			}
		}

		mp.recent.Remove(h)
		mp.outpoints.RemoveEntry(e)
		mp.nullifiers.RemoveEntry(e)

		removed = append(removed, etx)

		mp.totalTxSize -= e.TxSize
		mp.cachedInnerUsage -= e.UsageSize

		mp.primary.Delete(h)
		mp.transactionsUpdated++

		if mp.cfg.Estimator != nil {
			mp.cfg.Estimator.RemoveTx(h, viaBlock)
		}

		if mp.cfg.AddressIndex {
			mp.addresses.Remove(h)
		}
		if mp.cfg.SpentIndex {
			mp.spent.Remove(h)
		}
	}

	for _, etx := range removed {
		mp.cost.Remove(*etx.Hash())
	}

	return removed
}

// ---------------------------------------------------------------------
// Removal drivers (§4.D)
// ---------------------------------------------------------------------

// RemoveForReorg removes members that have become non-final or whose
// spent coinbase inputs have fallen below maturity at the given height.
func (mp *TxPool) RemoveForReorg(coins CoinsViewer, height int32, flags uint32) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.removeForReorg(coins, height, flags)
}

func (mp *TxPool) removeForReorg(coins CoinsViewer, height int32, flags uint32) {
	var candidates []*wire.Tx
	mp.primary.Range(func(e *Entry) bool {
		if mp.cfg.IsFinalTx != nil && !mp.cfg.IsFinalTx(e.Tx, height, flags) {
			candidates = append(candidates, e.Tx)
			return true
		}
		if e.SpendsCoinbase {
			for _, in := range e.Tx.MsgTx().TxIn {
				if mp.primary.Has(in.PreviousOutPoint.Hash) {
					continue
				}
				if coins == nil {
					continue
				}
				if !coins.HaveCoins(in.PreviousOutPoint.Hash) {
					if mp.checkFrequency != 0 {
						panic("mempool: coin referenced by pool member missing from base view")
					}
					candidates = append(candidates, e.Tx)
					return true
				}
				if c, ok := coins.GetCoins(in.PreviousOutPoint.Hash); ok && c != nil && c.Tx != nil &&
					c.Tx.MsgTx().IsCoinBase() && height-c.Height < mp.cfg.CoinbaseMaturity {
					candidates = append(candidates, e.Tx)
					return true
				}
			}
		}
		return true
	})
	for _, tx := range candidates {
		mp.remove(tx, true)
	}
}

// RemoveWithAnchor removes every member whose Sprout or Sapling shielded
// description anchors to root. Orchard is not exercised here (see
// SPEC_FULL.md §9, Design Notes).
func (mp *TxPool) RemoveWithAnchor(root chainhash.Hash, protocol wire.ShieldedProtocol) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.removeWithAnchor(root, protocol)
}

func (mp *TxPool) removeWithAnchor(root chainhash.Hash, protocol wire.ShieldedProtocol) {
	var candidates []*wire.Tx
	switch protocol {
	case wire.Sprout:
		mp.primary.Range(func(e *Entry) bool {
			for _, js := range e.Tx.MsgTx().JoinSplits {
				if js.Anchor == root {
					candidates = append(candidates, e.Tx)
					return true
				}
			}
			return true
		})
	case wire.Sapling:
		mp.primary.Range(func(e *Entry) bool {
			for _, sp := range e.Tx.MsgTx().ShieldedSpends {
				if sp.Anchor == root {
					candidates = append(candidates, e.Tx)
					return true
				}
			}
			return true
		})
	default:
		unknownProtocol(int(protocol))
	}
	for _, tx := range candidates {
		mp.remove(tx, true)
	}
}

// RemoveConflicts removes every member that spends a transparent
// outpoint, or publishes a shielded nullifier, also touched by tx. tx
// itself is never removed, even if it happens to be a member.
func (mp *TxPool) RemoveConflicts(tx *wire.Tx) []*wire.Tx {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.removeConflicts(tx)
}

func (mp *TxPool) removeConflicts(tx *wire.Tx) []*wire.Tx {
	var removed []*wire.Tx
	self := *tx.Hash()

	for _, in := range tx.MsgTx().TxIn {
		if spender, _, ok := mp.outpoints.SpenderOf(in.PreviousOutPoint); ok && spender != self {
			if e, ok := mp.primary.Get(spender); ok {
				removed = append(removed, mp.remove(e.Tx, true)...)
			}
		}
	}
	for protocol, nfs := range nullifiersOfTx(tx) {
		for _, nf := range nfs {
			if spender, ok := mp.nullifiers.SpenderOf(nf, protocol); ok && spender != self {
				if e, ok := mp.primary.Get(spender); ok {
					removed = append(removed, mp.remove(e.Tx, true)...)
				}
			}
		}
	}
	return removed
}

// nullifiersOfTx is the *wire.Tx analogue of nullifiersOf, used by
// drivers that receive a bare transaction rather than a pool Entry.
func nullifiersOfTx(tx *wire.Tx) map[wire.ShieldedProtocol][]chainhash.Hash {
	msg := tx.MsgTx()
	out := make(map[wire.ShieldedProtocol][]chainhash.Hash)
	for _, js := range msg.JoinSplits {
		out[wire.Sprout] = append(out[wire.Sprout], js.Nullifiers...)
	}
	for _, sp := range msg.ShieldedSpends {
		out[wire.Sapling] = append(out[wire.Sapling], sp.Nullifier)
	}
	if msg.Orchard != nil {
		out[wire.Orchard] = append(out[wire.Orchard], msg.Orchard.Nullifiers()...)
	}
	return out
}

// RemoveExpired removes every member for which the injected expiry
// predicate reports true at height.
func (mp *TxPool) RemoveExpired(height int32) []chainhash.Hash {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.removeExpired(height)
}

func (mp *TxPool) removeExpired(height int32) []chainhash.Hash {
	if mp.cfg.IsExpired == nil {
		return nil
	}
	var candidates []*wire.Tx
	mp.primary.Range(func(e *Entry) bool {
		if mp.cfg.IsExpired(e.Tx, height) {
			candidates = append(candidates, e.Tx)
		}
		return true
	})
	ids := make([]chainhash.Hash, 0, len(candidates))
	for _, tx := range candidates {
		ids = append(ids, *tx.Hash())
		mp.remove(tx, true)
	}
	return ids
}

// RemoveWithoutBranchID removes every member whose validated branch id
// does not equal b.
func (mp *TxPool) RemoveWithoutBranchID(b uint32) []*wire.Tx {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.removeWithoutBranchID(b)
}

func (mp *TxPool) removeWithoutBranchID(b uint32) []*wire.Tx {
	var candidates []*wire.Tx
	mp.primary.Range(func(e *Entry) bool {
		if e.BranchID != b {
			candidates = append(candidates, e.Tx)
		}
		return true
	})
	var removed []*wire.Tx
	for _, tx := range candidates {
		removed = append(removed, mp.remove(tx, true)...)
	}
	return removed
}

// RemoveForBlock removes every transaction in vtx non-recursively (their
// descendants stay in the pool, since they now spend confirmed outputs),
// then resolves conflicts each introduces, then clears their
// prioritisation. Returns the conflicts removed.
func (mp *TxPool) RemoveForBlock(vtx []*wire.Tx, height int32) []*wire.Tx {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.removeForBlock(vtx, height)
}

func (mp *TxPool) removeForBlock(vtx []*wire.Tx, height int32) []*wire.Tx {
	var entries []*Entry
	for _, tx := range vtx {
		if e, ok := mp.primary.Get(*tx.Hash()); ok {
			entries = append(entries, e)
		}
	}

	var conflicts []*wire.Tx
	for _, tx := range vtx {
		mp.removeWithReason(tx, false, true)
		conflicts = append(conflicts, mp.removeConflicts(tx)...)
		mp.deltas.Clear(*tx.Hash())
	}

	if mp.cfg.Estimator != nil {
		mp.cfg.Estimator.ProcessBlock(height, entries)
	}
	return conflicts
}

// ---------------------------------------------------------------------
// Delta overlay (§4.E)
// ---------------------------------------------------------------------

// Prioritise accumulates a priority/fee adjustment for id, re-sorting
// the primary index if id is currently a member.
func (mp *TxPool) Prioritise(id chainhash.Hash, priorityDelta float64, feeDelta btcutil.Amount) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.prioritise(id, priorityDelta, feeDelta)
}

func (mp *TxPool) prioritise(id chainhash.Hash, priorityDelta float64, feeDelta btcutil.Amount) {
	pd := mp.deltas.Add(id, priorityDelta, feeDelta)
	if e, ok := mp.primary.Get(id); ok {
		mp.primary.Modify(id, int64(pd.Fee)-int64(e.FeeDelta))
		e.FeeDelta = pd.Fee
	}
	log.Debugf("PrioritiseTransaction: %v priority += %v, fee += %v", id, priorityDelta, feeDelta)
}

// ApplyDeltas adds id's accumulated delta, if any, onto priority and fee
// in place.
func (mp *TxPool) ApplyDeltas(id chainhash.Hash, priority *float64, fee *btcutil.Amount) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.deltas.ApplyDeltas(id, priority, fee)
}

// ClearPrioritisation removes id's accumulated delta entirely.
func (mp *TxPool) ClearPrioritisation(id chainhash.Hash) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.deltas.Clear(id)
}

// ---------------------------------------------------------------------
// Size-bound eviction (§4.F)
// ---------------------------------------------------------------------

// EnsureSizeLimit evicts members, weighted-randomly, until the weighted
// cost tree's total cost is at or below the configured limit. The
// caller must already hold the pool's lock (via Lock/Unlock), mirroring
// the source's documented precondition -- this is the one operation in
// the package that is intentionally exported without taking mtx itself.
func (mp *TxPool) EnsureSizeLimit() {
	for {
		id, ok := mp.cost.DropRandom(mp.cfg.MempoolCostLimit)
		if !ok {
			return
		}
		mp.evicted.Add(id)
		if e, ok := mp.primary.Get(id); ok {
			mp.remove(e.Tx, true)
		}
	}
}

// IsRecentlyEvicted reports whether id was evicted from the pool within
// the configured eviction-memory window.
func (mp *TxPool) IsRecentlyEvicted(id chainhash.Hash) bool {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.evicted.Contains(id)
}

// SetMempoolCostLimit replaces the weighted cost tree and recently-
// evicted window with fresh instances parameterised by limit and
// memorySeconds.
func (mp *TxPool) SetMempoolCostLimit(limit int64, memorySeconds int64) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.cfg.MempoolCostLimit = limit
	mp.cfg.EvictionMemorySeconds = memorySeconds
	mp.cost = newWeightedCostTree()
	mp.primary.Range(func(e *Entry) bool {
		mp.cost.Add(e.ID(), weightedCost(e.TxSize, e.Fee, mp.cfg.RelayFee))
		return true
	})
	mp.evicted = newEvictionWindow(memorySeconds, mp.now)
}

// ---------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------

// Exists reports whether id is a member.
func (mp *TxPool) Exists(id chainhash.Hash) bool {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.primary.Has(id)
}

// Get returns id's Entry, if present.
func (mp *TxPool) Get(id chainhash.Hash) (*Entry, bool) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.primary.Get(id)
}

// Info returns a snapshot of id's externally-relevant fields.
func (mp *TxPool) Info(id chainhash.Hash) (*TxMempoolInfo, bool) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	e, ok := mp.primary.Get(id)
	if !ok {
		return nil, false
	}
	return entryInfo(e), true
}

func entryInfo(e *Entry) *TxMempoolInfo {
	return &TxMempoolInfo{
		Tx:      e.Tx,
		Time:    e.Time,
		FeeRate: e.FeeRate(),
		Fee:     e.Fee,
		Size:    e.TxSize,
	}
}

// QueryHashes returns every member id, sorted by score descending.
func (mp *TxPool) QueryHashes() []chainhash.Hash {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	sorted := mp.primary.Sorted()
	out := make([]chainhash.Hash, len(sorted))
	for i, e := range sorted {
		out[i] = e.ID()
	}
	return out
}

// InfoAll returns a snapshot of every member, in the same order as
// QueryHashes.
func (mp *TxPool) InfoAll() []*TxMempoolInfo {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	sorted := mp.primary.Sorted()
	out := make([]*TxMempoolInfo, len(sorted))
	for i, e := range sorted {
		out[i] = entryInfo(e)
	}
	return out
}

// Count returns the number of members.
func (mp *TxPool) Count() int {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.primary.Len()
}

// NullifierExists reports whether nf has been published under protocol
// by a pool member. Panics on an unrecognized protocol.
func (mp *TxPool) NullifierExists(nf chainhash.Hash, protocol wire.ShieldedProtocol) bool {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.nullifiers.Exists(nf, protocol)
}

// HasNoInputsOf reports whether no transparent input of tx spends a
// pool member's output (by txid).
func (mp *TxPool) HasNoInputsOf(tx *wire.Tx) bool {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	for _, in := range tx.MsgTx().TxIn {
		if mp.primary.Has(in.PreviousOutPoint.Hash) {
			return false
		}
	}
	return true
}

// DrainRecentlyAdded empties the recently-added log and returns its
// former contents alongside the current sequence counter.
func (mp *TxPool) DrainRecentlyAdded() ([]*wire.Tx, uint64) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.recent.Drain(mp.primary)
}

// SetNotifiedSequence records the wallet-notification sequence number a
// regtest functional test has observed. Panics if the pool was not
// configured for regtest.
func (mp *TxPool) SetNotifiedSequence(seq uint64) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if !mp.cfg.IsRegtest {
		notRegtest("SetNotifiedSequence")
	}
	mp.notifiedSeq = seq
}

// IsFullyNotified reports whether the last SetNotifiedSequence value
// matches the pool's current recently-added sequence counter. Panics if
// the pool was not configured for regtest.
func (mp *TxPool) IsFullyNotified() bool {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if !mp.cfg.IsRegtest {
		notRegtest("IsFullyNotified")
	}
	return mp.notifiedSeq == mp.recent.Seq()
}

// Clear empties the primary index, outpoint map, nullifier sets, and
// counters. It deliberately does not reset the delta overlay, the
// recently-evicted window, or the weighted cost tree, per §3.
func (mp *TxPool) Clear() {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.clear()
}

func (mp *TxPool) clear() {
	mp.primary = newPrimaryIndex()
	mp.outpoints = newOutpointIndex()
	mp.nullifiers = newNullifierIndex()
	mp.recent = newRecentlyAddedLog()
	mp.addresses = newAddressIndex()
	mp.spent = newSpentIndex()
	mp.totalTxSize = 0
	mp.cachedInnerUsage = 0
	mp.transactionsUpdated++
}

// LastUpdated returns the monotonically increasing counter bumped by
// every admission and removal.
func (mp *TxPool) LastUpdated() uint64 {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.transactionsUpdated
}

// ---------------------------------------------------------------------
// Fee/priority estimation surface (§4.I)
// ---------------------------------------------------------------------

// EstimateFee forwards to the configured estimator.
func (mp *TxPool) EstimateFee(numBlocks int32) (btcutil.Amount, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if mp.cfg.Estimator == nil {
		return 0, errNoEstimator
	}
	return mp.cfg.Estimator.EstimateFee(numBlocks)
}

// EstimatePriority forwards to the configured estimator.
func (mp *TxPool) EstimatePriority(numBlocks int32) (float64, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if mp.cfg.Estimator == nil {
		return 0, errNoEstimator
	}
	return mp.cfg.Estimator.EstimatePriority(numBlocks)
}

// ---------------------------------------------------------------------
// Integrity checking controls (§4.H)
// ---------------------------------------------------------------------

// SetCheckFrequency sets the probability, expressed as a fraction of
// 2^32, that Check actually performs a full verification pass.
func (mp *TxPool) SetCheckFrequency(f uint32) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.checkFrequency = f
}

// ---------------------------------------------------------------------
// Optional insight indexes (§4.J)
// ---------------------------------------------------------------------

// AddressIndexAdd indexes deltas under id, if address indexing is
// enabled.
func (mp *TxPool) AddressIndexAdd(id chainhash.Hash, deltas []AddressDelta) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if !mp.cfg.AddressIndex {
		return
	}
	mp.addresses.Add(id, deltas)
}

// AddressIndexRemove tears down id's address-index entries.
func (mp *TxPool) AddressIndexRemove(id chainhash.Hash) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if !mp.cfg.AddressIndex {
		return
	}
	mp.addresses.Remove(id)
}

// GetAddressIndex returns the deltas recorded for a script, if address
// indexing is enabled.
func (mp *TxPool) GetAddressIndex(scriptType uint8, scriptHash chainhash.Hash) []AddressDelta {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if !mp.cfg.AddressIndex {
		return nil
	}
	return mp.addresses.Get(scriptType, scriptHash)
}

// SpentIndexAdd indexes spend entries under id, if spent indexing is
// enabled.
func (mp *TxPool) SpentIndexAdd(id chainhash.Hash, entries map[wire.OutPoint]SpentInfo) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if !mp.cfg.SpentIndex {
		return
	}
	mp.spent.Add(id, entries)
}

// SpentIndexRemove tears down id's spent-index entries.
func (mp *TxPool) SpentIndexRemove(id chainhash.Hash) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if !mp.cfg.SpentIndex {
		return
	}
	mp.spent.Remove(id)
}

// GetSpentIndex returns who spends op, if spent indexing is enabled and
// the outpoint is known.
func (mp *TxPool) GetSpentIndex(op wire.OutPoint) (SpentInfo, bool) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	if !mp.cfg.SpentIndex {
		return SpentInfo{}, false
	}
	return mp.spent.Get(op)
}

// ---------------------------------------------------------------------
// Memory accounting (§5)
// ---------------------------------------------------------------------

// DynamicMemoryUsage returns an estimate of the pool's total dynamic
// memory footprint, per the §5 formula. The recently-evicted window (I)
// is not counted.
func (mp *TxPool) DynamicMemoryUsage() int64 {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	n := int64(mallocOverhead(entrySize+9*pointerSize)) * int64(mp.primary.Len())
	n += mp.cachedInnerUsage
	n += int64(mp.outpoints.Len()) * int64(outpointEntrySize)
	n += int64(len(mp.deltas.deltas)) * int64(deltaEntrySize)
	n += int64(len(mp.recent.order)) * int64(chainhash.HashSize)
	for i := range mp.nullifiers.byProtocol {
		n += int64(len(mp.nullifiers.byProtocol[i])) * int64(nullifierEntrySize)
	}
	n += int64(mp.cost.Len()) * int64(costEntrySize)
	n += int64(len(mp.addresses.byAddress)) * int64(addressEntrySize)
	n += int64(len(mp.spent.byOutpoint)) * int64(spentEntrySize)
	return n
}

var errNoEstimator = ErrNoEstimator{}

// ErrNoEstimator is returned by EstimateFee/EstimatePriority when the
// pool was configured without a FeeEstimatorBackend.
type ErrNoEstimator struct{}

func (ErrNoEstimator) Error() string { return "mempool: no fee estimator configured" }
