// Copyright (c) 2024 The Koto developers
// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fees implements the pool's fee/priority estimator (component
// M of the pool's design): an opaque observer that watches transactions
// enter and leave the pool and, from that history, predicts the fee
// rate and priority needed to confirm within a given number of blocks.
// The pool treats this package purely through the small interface it
// forwards ObserveTransaction/ProcessBlock/RemoveTx calls to; nothing
// in the pool's own correctness depends on the estimator's model.
package fees

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/VindexProject/koto/mempool"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// estimateDepth is the maximum number of blocks before confirmation
	// that observations are tracked for.
	estimateDepth = 25

	// binSize is the number of txs stored in each bin.
	binSize = 100

	// maxReplacements is the max number of replacements that can be
	// made in a bin by the txs found in a given block.
	maxReplacements = 10

	// versionRequired is written as the minimum reader version able to
	// understand the snapshot; Read refuses anything newer.
	versionRequired = 109900

	// clientVersion is written into every persisted snapshot as the
	// writer's own version, per SPEC_FULL.md §6. It must stay at or
	// above versionRequired: this package both writes and reads its
	// own snapshots, so a clientVersion below the minimum it itself
	// demands would make Write produce a file Read always refuses.
	clientVersion = 4020150
)

// FeeRate is a fee expressed in amount per byte.
type FeeRate float64

// ToPerKB converts a FeeRate to amount per 1000 bytes.
func (r FeeRate) ToPerKB() float64 {
	if r < 0 {
		return -1
	}
	return float64(r) * 1000
}

// Fee returns the fee for a transaction of the given size at rate r.
func (r FeeRate) Fee(size int64) btcutil.Amount {
	if r < 0 {
		return -1
	}
	return btcutil.Amount(float64(r) * float64(size))
}

// NewFeeRate derives a FeeRate from an absolute fee and a size in bytes.
func NewFeeRate(fee btcutil.Amount, size int64) FeeRate {
	if size == 0 {
		return 0
	}
	return FeeRate(float64(fee) / float64(size))
}

// observation is a single watched transaction and the data the
// estimation algorithm needs to eventually bin it. Its fields are
// exported so gob, which encodes snapshot.Observed/FeeBin/PrioBin
// through *observation, has something to walk; an all-lowercase struct
// encodes as "no exported fields" and Write would fail outright.
type observation struct {
	ID         chainhash.Hash
	Rate       FeeRate
	Priority   float64
	ObservedAt int32
	MinedAt    int32
}

// droppedBlock remembers which observations a registered block confirmed
// within estimateDepth (and so moved into bins, up to maxReplacements per
// bin), so Rollback can undo the effect of an orphaned block.
type droppedBlock struct {
	hash         chainhash.Hash
	observations []*observation
}

// Estimator is the pool's fee/priority estimator. It is safe for
// concurrent access.
type Estimator struct {
	mu sync.RWMutex

	maxRollback         uint32
	minRegisteredBlocks uint32
	lastKnownHeight     int32
	numBlocksRegistered uint32

	observed map[chainhash.Hash]*observation
	feeBin   [estimateDepth][]*observation
	prioBin  [estimateDepth][]*observation

	cachedFee      []FeeRate
	cachedPriority []float64

	dropped []droppedBlock
}

// NewEstimator returns an Estimator that can roll back at most
// maxRollback blocks and that refuses to answer EstimateFee/
// EstimatePriority until minRegisteredBlocks blocks have been
// registered.
func NewEstimator(maxRollback, minRegisteredBlocks uint32) *Estimator {
	return &Estimator{
		maxRollback:         maxRollback,
		minRegisteredBlocks: minRegisteredBlocks,
		lastKnownHeight:     mempool.UnminedHeight,
		observed:            make(map[chainhash.Hash]*observation),
		dropped:             make([]droppedBlock, 0, maxRollback),
	}
}

// ObserveTransaction is called when entry is admitted to the pool.
func (ef *Estimator) ObserveTransaction(entry *mempool.Entry) {
	ef.mu.Lock()
	defer ef.mu.Unlock()

	id := entry.ID()
	if _, ok := ef.observed[id]; ok {
		return
	}
	ef.observed[id] = &observation{
		ID:         id,
		Rate:       NewFeeRate(entry.Fee, entry.TxSize),
		Priority:   entry.Priority,
		ObservedAt: entry.Height,
		MinedAt:    mempool.UnminedHeight,
	}
	log.Debugf("Observing transaction %v for fee estimation", id)
}

// RemoveTx forgets id unless inBlock is true. A transaction removed
// because it is about to be confirmed keeps its observation so that
// ProcessBlock can still bin it; a removal for any other reason
// (conflict, expiry, eviction) drops the observation. RemoveTx never
// touches the bins, which are only ever populated via ProcessBlock.
func (ef *Estimator) RemoveTx(id chainhash.Hash, inBlock bool) {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	if !inBlock {
		delete(ef.observed, id)
	}
}

// ProcessBlock informs the estimator that the transactions behind
// entries confirmed at height.
func (ef *Estimator) ProcessBlock(height int32, entries []*mempool.Entry) {
	ef.mu.Lock()
	defer ef.mu.Unlock()

	ef.cachedFee = nil
	ef.cachedPriority = nil

	if ef.lastKnownHeight != mempool.UnminedHeight && height != ef.lastKnownHeight+1 {
		log.Warnf("fees: intermediate block not recorded; last known height %d, new height %d",
			ef.lastKnownHeight, height)
	}
	ef.lastKnownHeight = height
	ef.numBlocksRegistered++

	var feeReplacements, prioReplacements [estimateDepth]int
	drop := droppedBlock{observations: make([]*observation, 0, len(entries))}

	for _, entry := range entries {
		id := entry.ID()
		o, ok := ef.observed[id]
		if !ok {
			continue
		}
		o.MinedAt = height
		blocksToConfirm := height - o.ObservedAt - 1
		if blocksToConfirm < 0 || blocksToConfirm >= estimateDepth {
			continue
		}
		drop.observations = append(drop.observations, o)

		if feeReplacements[blocksToConfirm] < maxReplacements {
			feeReplacements[blocksToConfirm]++
			ef.feeBin[blocksToConfirm] = replaceRandom(ef.feeBin[blocksToConfirm], o, binSize, feeReplacements[blocksToConfirm])
		}
		if prioReplacements[blocksToConfirm] < maxReplacements {
			prioReplacements[blocksToConfirm]++
			ef.prioBin[blocksToConfirm] = replaceRandom(ef.prioBin[blocksToConfirm], o, binSize, prioReplacements[blocksToConfirm])
		}
	}

	for id, o := range ef.observed {
		if height-o.ObservedAt >= estimateDepth {
			delete(ef.observed, id)
		}
	}

	if ef.maxRollback == 0 {
		return
	}
	if uint32(len(ef.dropped)) == ef.maxRollback {
		ef.dropped = ef.dropped[1:]
	}
	ef.dropped = append(ef.dropped, drop)
}

// replaceRandom inserts o into bin. Once bin has reached its capacity, a
// uniformly random existing element is discarded to make room for o,
// mirroring the teacher's reservoir-style bin replacement.
func replaceRandom(bin []*observation, o *observation, capacity, replacementCount int) []*observation {
	if len(bin) < capacity {
		return append(bin, o)
	}
	room := capacity - replacementCount
	if room <= 0 {
		return bin
	}
	victim := rand.Intn(room)
	bin[victim] = bin[room-1]
	bin[room-1] = o
	return bin
}

// Rollback unregisters the most recently registered block: the
// observations it confirmed are taken back out of the bins, marked
// unmined again and kept for a later block. Observations that block
// displaced from full bins are not restored. hash is not used; this
// estimator does not index dropped blocks by hash since ProcessBlock
// never receives one, so Rollback always undoes exactly the most recent
// registration.
func (ef *Estimator) Rollback(hash chainhash.Hash) error {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	return ef.rollback()
}

func (ef *Estimator) rollback() error {
	ef.cachedFee = nil
	ef.cachedPriority = nil

	last := len(ef.dropped) - 1
	if last < 0 {
		return errors.New("fees: no block registered to roll back")
	}
	ef.numBlocksRegistered--
	drop := ef.dropped[last]
	ef.dropped = ef.dropped[:last]

	for _, o := range drop.observations {
		i := o.MinedAt - o.ObservedAt - 1
		for _, bin := range []*[]*observation{&ef.feeBin[i], &ef.prioBin[i]} {
			for j, b := range *bin {
				if b == o {
					*bin = append((*bin)[:j], (*bin)[j+1:]...)
					break
				}
			}
		}
		o.MinedAt = mempool.UnminedHeight
		ef.observed[o.ID] = o
	}
	ef.lastKnownHeight--
	return nil
}

// feeEstimateSet sorts a snapshot of fee-rate observations for
// estimation, mirroring the source's estimateFeeSet.
type feeEstimateSet struct {
	rates []FeeRate
	bin   [estimateDepth]uint32
}

func (s *feeEstimateSet) Len() int           { return len(s.rates) }
func (s *feeEstimateSet) Less(i, j int) bool { return s.rates[i] > s.rates[j] }
func (s *feeEstimateSet) Swap(i, j int)      { s.rates[i], s.rates[j] = s.rates[j], s.rates[i] }

func (s *feeEstimateSet) estimate(confirmations int) FeeRate {
	if confirmations <= 0 {
		return FeeRate(math.Inf(1))
	}
	if confirmations > estimateDepth {
		return 0
	}
	var lo, hi uint32
	for i := 0; i < confirmations-1; i++ {
		lo += s.bin[i]
	}
	hi = lo + s.bin[confirmations-1]
	if lo == 0 && hi == 0 {
		return 0
	}
	return s.rates[(lo+hi-1)/2]
}

func (ef *Estimator) newFeeEstimateSet() *feeEstimateSet {
	set := &feeEstimateSet{}
	capacity := 0
	for i, b := range ef.feeBin {
		set.bin[i] = uint32(len(b))
		capacity += len(b)
	}
	set.rates = make([]FeeRate, 0, capacity)
	for _, b := range ef.feeBin {
		for _, o := range b {
			set.rates = append(set.rates, o.Rate)
		}
	}
	sort.Sort(set)
	return set
}

type priorityEstimateSet struct {
	priorities []float64
	bin        [estimateDepth]uint32
}

func (s *priorityEstimateSet) Len() int           { return len(s.priorities) }
func (s *priorityEstimateSet) Less(i, j int) bool { return s.priorities[i] > s.priorities[j] }
func (s *priorityEstimateSet) Swap(i, j int) {
	s.priorities[i], s.priorities[j] = s.priorities[j], s.priorities[i]
}

func (s *priorityEstimateSet) estimate(confirmations int) float64 {
	if confirmations <= 0 || confirmations > estimateDepth {
		return 0
	}
	var lo, hi uint32
	for i := 0; i < confirmations-1; i++ {
		lo += s.bin[i]
	}
	hi = lo + s.bin[confirmations-1]
	if lo == 0 && hi == 0 {
		return 0
	}
	return s.priorities[(lo+hi-1)/2]
}

func (ef *Estimator) newPriorityEstimateSet() *priorityEstimateSet {
	set := &priorityEstimateSet{}
	capacity := 0
	for i, b := range ef.prioBin {
		set.bin[i] = uint32(len(b))
		capacity += len(b)
	}
	set.priorities = make([]float64, 0, capacity)
	for _, b := range ef.prioBin {
		for _, o := range b {
			set.priorities = append(set.priorities, o.Priority)
		}
	}
	sort.Sort(set)
	return set
}

// EstimateFee estimates the fee rate needed to confirm within numBlocks
// blocks from now.
func (ef *Estimator) EstimateFee(numBlocks int32) (btcutil.Amount, error) {
	ef.mu.Lock()
	defer ef.mu.Unlock()

	if ef.numBlocksRegistered < ef.minRegisteredBlocks {
		return 0, errors.New("fees: not enough blocks have been observed")
	}
	if numBlocks <= 0 {
		return 0, errors.New("fees: cannot confirm a transaction in zero or fewer blocks")
	}
	if numBlocks > estimateDepth {
		return 0, fmt.Errorf("fees: can only estimate up to %d blocks from now", estimateDepth)
	}
	if ef.cachedFee == nil {
		set := ef.newFeeEstimateSet()
		ef.cachedFee = make([]FeeRate, estimateDepth)
		for i := 0; i < estimateDepth; i++ {
			ef.cachedFee[i] = set.estimate(i + 1)
		}
	}
	return btcutil.Amount(ef.cachedFee[numBlocks-1]), nil
}

// EstimatePriority estimates the priority needed to confirm within
// numBlocks blocks from now.
func (ef *Estimator) EstimatePriority(numBlocks int32) (float64, error) {
	ef.mu.Lock()
	defer ef.mu.Unlock()

	if ef.numBlocksRegistered < ef.minRegisteredBlocks {
		return 0, errors.New("fees: not enough blocks have been observed")
	}
	if numBlocks <= 0 || numBlocks > estimateDepth {
		return 0, fmt.Errorf("fees: can only estimate up to %d blocks from now", estimateDepth)
	}
	if ef.cachedPriority == nil {
		set := ef.newPriorityEstimateSet()
		ef.cachedPriority = make([]float64, estimateDepth)
		for i := 0; i < estimateDepth; i++ {
			ef.cachedPriority[i] = set.estimate(i + 1)
		}
	}
	return ef.cachedPriority[numBlocks-1], nil
}

// snapshot is the gob-encoded payload written/read by Write/Read. gob is
// used rather than a hand-rolled codec because the wire contract treats
// the estimator's own bytes as fully opaque (SPEC_FULL.md §6); nothing
// outside this package ever needs to decode them without also linking
// this package.
type snapshot struct {
	MaxRollback         uint32
	MinRegisteredBlocks uint32
	LastKnownHeight     int32
	NumBlocksRegistered uint32
	Observed            map[chainhash.Hash]*observation
	FeeBin              [estimateDepth][]*observation
	PrioBin             [estimateDepth][]*observation
}

// Write serialises the estimator's state, prefixed with the version
// framing SPEC_FULL.md §6 specifies: a required-reader version, then the
// writer's own version, then the opaque payload.
func (ef *Estimator) Write(w interface{ Write([]byte) (int, error) }) error {
	ef.mu.RLock()
	defer ef.mu.RUnlock()

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, int32(versionRequired)); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.BigEndian, int32(clientVersion)); err != nil {
		return err
	}

	snap := snapshot{
		MaxRollback:         ef.maxRollback,
		MinRegisteredBlocks: ef.minRegisteredBlocks,
		LastKnownHeight:     ef.lastKnownHeight,
		NumBlocksRegistered: ef.numBlocksRegistered,
		Observed:            ef.observed,
		FeeBin:              ef.feeBin,
		PrioBin:             ef.prioBin,
	}
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		log.Errorf("fees: failed to encode fee estimator snapshot: %v", err)
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Read decodes a snapshot previously produced by Write. Per SPEC_FULL.md
// §7, a malformed or too-new payload is a non-fatal condition: Read logs
// and returns an error rather than panicking, and the caller is expected
// to fall back to a fresh Estimator.
func (ef *Estimator) Read(r interface{ Read([]byte) (int, error) }) error {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}

	br := bytes.NewReader(buf)
	var required, wroteWith int32
	if err := binary.Read(br, binary.BigEndian, &required); err != nil {
		log.Warnf("fees: %v: %v", mempool.ErrReadFeeEstimates, err)
		return mempool.ErrReadFeeEstimates
	}
	if err := binary.Read(br, binary.BigEndian, &wroteWith); err != nil {
		log.Warnf("fees: %v: %v", mempool.ErrReadFeeEstimates, err)
		return mempool.ErrReadFeeEstimates
	}
	if required > clientVersion {
		verErr := mempool.ErrFeeEstimatorVersion{Required: required, Have: clientVersion}
		log.Warnf("fees: %v (file was written by client version %d)", verErr, wroteWith)
		return verErr
	}

	var snap snapshot
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		log.Warnf("fees: %v: %v", mempool.ErrReadFeeEstimates, err)
		return mempool.ErrReadFeeEstimates
	}

	ef.mu.Lock()
	defer ef.mu.Unlock()
	ef.maxRollback = snap.MaxRollback
	ef.minRegisteredBlocks = snap.MinRegisteredBlocks
	ef.lastKnownHeight = snap.LastKnownHeight
	ef.numBlocksRegistered = snap.NumBlocksRegistered
	ef.observed = snap.Observed
	if ef.observed == nil {
		ef.observed = make(map[chainhash.Hash]*observation)
	}
	ef.feeBin = snap.FeeBin
	ef.prioBin = snap.PrioBin
	ef.cachedFee = nil
	ef.cachedPriority = nil
	return nil
}
