// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"
	"time"

	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockEstimator is a mock FeeEstimatorBackend, used so removal-driver
// tests can assert on exactly which hooks fire without linking the real
// fees.Estimator.
type mockEstimator struct {
	mock.Mock
}

func (m *mockEstimator) ObserveTransaction(entry *Entry) { m.Called(entry) }
func (m *mockEstimator) ProcessBlock(height int32, entries []*Entry) {
	m.Called(height, entries)
}
func (m *mockEstimator) RemoveTx(id chainhash.Hash, inBlock bool) { m.Called(id, inBlock) }
func (m *mockEstimator) EstimateFee(n int32) (btcutil.Amount, error) {
	args := m.Called(n)
	return args.Get(0).(btcutil.Amount), args.Error(1)
}
func (m *mockEstimator) EstimatePriority(n int32) (float64, error) {
	args := m.Called(n)
	return args.Get(0).(float64), args.Error(1)
}

func newPermissiveEstimator() *mockEstimator {
	m := &mockEstimator{}
	m.On("ObserveTransaction", mock.Anything).Return()
	m.On("RemoveTx", mock.Anything, mock.Anything).Return()
	m.On("ProcessBlock", mock.Anything, mock.Anything).Return()
	return m
}

func newTestPool(t *testing.T) *TxPool {
	t.Helper()
	return New(&Config{Estimator: newPermissiveEstimator()})
}

// addEntry builds an Entry for tx and admits it, returning the entry.
func addEntry(t *testing.T, mp *TxPool, tx *wire.Tx, fee btcutil.Amount) *Entry {
	t.Helper()
	e := NewEntry(tx, fee, time.Unix(0, 0), 0, 1, false, false, 0, 1)
	require.NoError(t, mp.AddUnchecked(e))
	return e
}

// --- Invariants (§8) ---------------------------------------------------

func TestInvariantOutpointMapMatchesPrimaryIndex(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	tx := newTestTx(1, 1000)
	e := addEntry(t, mp, tx, 100)

	for i, in := range tx.MsgTx().TxIn {
		spender, idx, ok := mp.outpoints.SpenderOf(in.PreviousOutPoint)
		require.True(t, ok)
		require.Equal(t, e.ID(), spender)
		require.Equal(t, i, idx)
	}
}

func TestInvariantNullifierMapMatchesPrimaryIndex(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	tx := newTestTx(1, 1000)
	var nf chainhash.Hash
	nf[0] = 0xAA
	tx.MsgTx().ShieldedSpends = []*wire.SpendDescription{{Nullifier: nf}}
	e := addEntry(t, mp, tx, 100)

	spender, ok := mp.nullifiers.SpenderOf(nf, wire.Sapling)
	require.True(t, ok)
	require.Equal(t, e.ID(), spender)
	require.True(t, mp.NullifierExists(nf, wire.Sapling))
}

func TestInvariantTotalsTrackMembers(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	e1 := addEntry(t, mp, newTestTx(1, 1000), 100)
	e2 := addEntry(t, mp, newTestTx(2, 1000), 200)

	require.Equal(t, e1.TxSize+e2.TxSize, mp.totalTxSize)
	require.Equal(t, e1.UsageSize+e2.UsageSize, mp.cachedInnerUsage)
}

func TestInvariantCostTreeTracksPrimaryIndex(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	e := addEntry(t, mp, newTestTx(1, 1000), 100)
	require.Equal(t, mp.primary.Len(), mp.cost.Len())

	mp.Remove(e.Tx, false)
	require.Equal(t, 0, mp.cost.Len())
}

func TestInvariantEnsureSizeLimitRespectsBound(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	mp.cfg.MempoolCostLimit = 100
	for i := byte(1); i <= 10; i++ {
		addEntry(t, mp, newTestTx(i, 1000), 100)
	}

	mp.Lock()
	mp.EnsureSizeLimit()
	mp.Unlock()

	require.LessOrEqual(t, mp.cost.TotalCost(), int64(100))
}

// --- Laws (§8) -----------------------------------------------------------

func TestLawAdmitThenRemoveRestoresState(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	before := mp.primary.Len()

	tx := newTestTx(1, 1000)
	addEntry(t, mp, tx, 100)
	mp.Remove(tx, false)

	require.Equal(t, before, mp.primary.Len())
	require.Equal(t, int64(0), mp.totalTxSize)
	require.Equal(t, int64(0), mp.cachedInnerUsage)
}

func TestLawDrainRecentlyAddedIdempotent(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	addEntry(t, mp, newTestTx(1, 1000), 100)

	first, seq1 := mp.DrainRecentlyAdded()
	require.Len(t, first, 1)

	second, seq2 := mp.DrainRecentlyAdded()
	require.Empty(t, second)
	require.Equal(t, seq1, seq2)
}

func TestLawApplyDeltasAdditive(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	id := newTestTx(1, 1000).MsgTx().TxIn[0].PreviousOutPoint.Hash

	mp.Prioritise(id, 1.0, 10)
	mp.Prioritise(id, 2.0, 20)

	var priority float64
	var fee btcutil.Amount
	mp.ApplyDeltas(id, &priority, &fee)
	require.Equal(t, 3.0, priority)
	require.Equal(t, btcutil.Amount(30), fee)

	mp2 := newTestPool(t)
	mp2.Prioritise(id, 3.0, 30)
	var priority2 float64
	var fee2 btcutil.Amount
	mp2.ApplyDeltas(id, &priority2, &fee2)
	require.Equal(t, priority, priority2)
	require.Equal(t, fee, fee2)
}

// --- End-to-end scenarios (§8) -------------------------------------------

// Scenario 1: conflict resolution.
func TestScenarioConflictResolution(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	shared := wire.OutPoint{Hash: chainhash.Hash{0xAA}, Index: 0}
	t1 := newTestTx(1, 1000, shared)
	t2 := newTestTx(2, 1000, shared)
	addEntry(t, mp, t1, 100)

	removed := mp.RemoveConflicts(t2)
	require.Len(t, removed, 1)
	require.Equal(t, *t1.Hash(), *removed[0].Hash())
	require.Equal(t, 0, mp.primary.Len())
}

// Scenario 2: recursive descendant removal.
func TestScenarioRecursiveDescendantRemoval(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	t1 := newTestTx(1, 1000)
	t2 := newTestTx(2, 1000, wire.OutPoint{Hash: *t1.Hash(), Index: 0})
	t3 := newTestTx(3, 1000, wire.OutPoint{Hash: *t2.Hash(), Index: 0})
	addEntry(t, mp, t1, 100)
	addEntry(t, mp, t2, 100)
	addEntry(t, mp, t3, 100)

	removed := mp.Remove(t1, true)
	require.Len(t, removed, 3)
	require.Equal(t, 0, mp.primary.Len())
}

// Scenario 3: block confirmation keeps children.
func TestScenarioBlockConfirmationKeepsChildren(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	t1 := newTestTx(1, 1000)
	t2 := newTestTx(2, 1000, wire.OutPoint{Hash: *t1.Hash(), Index: 0})
	addEntry(t, mp, t1, 100)
	addEntry(t, mp, t2, 100)

	conflicts := mp.RemoveForBlock([]*wire.Tx{t1}, 10)
	require.Empty(t, conflicts)
	require.False(t, mp.Exists(*t1.Hash()))
	require.True(t, mp.Exists(*t2.Hash()))
}

// Scenario 4: priority delta re-sorts.
func TestScenarioPriorityDeltaResorts(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	a := addEntry(t, mp, newTestTx(1, 1000), 100)
	addEntry(t, mp, newTestTx(2, 1000), 900)

	require.NotEqual(t, a.ID(), mp.QueryHashes()[0])

	mp.Prioritise(a.ID(), 0, 10_000)
	require.Equal(t, a.ID(), mp.QueryHashes()[0])
}

// Scenario 5: nullifier uniqueness enforced via conflict removal.
func TestScenarioNullifierUniquenessViaConflictRemoval(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	var nf chainhash.Hash
	nf[0] = 0xBB

	t1 := newTestTx(1, 1000)
	t1.MsgTx().JoinSplits = []*wire.JoinSplitDescription{{Nullifiers: []chainhash.Hash{nf}}}
	addEntry(t, mp, t1, 100)

	t2 := newTestTx(2, 1000)
	t2.MsgTx().JoinSplits = []*wire.JoinSplitDescription{{Nullifiers: []chainhash.Hash{nf}}}

	removed := mp.RemoveConflicts(t2)
	require.Len(t, removed, 1)
	require.Equal(t, *t1.Hash(), *removed[0].Hash())
}

// Scenario 6: weighted eviction bounds size.
func TestScenarioWeightedEvictionBoundsSize(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	mp.cfg.MempoolCostLimit = 1000
	var entries []*Entry
	for i := byte(1); i <= 20; i++ {
		entries = append(entries, addEntry(t, mp, newTestTx(i, 1000), 100))
	}

	mp.Lock()
	mp.EnsureSizeLimit()
	mp.Unlock()

	require.LessOrEqual(t, mp.cost.TotalCost(), int64(1000))
	for _, e := range entries {
		if !mp.Exists(e.ID()) {
			require.True(t, mp.IsRecentlyEvicted(e.ID()))
		}
	}
}

func TestEstimateFeeWithoutEstimatorReturnsError(t *testing.T) {
	t.Parallel()

	mp := New(&Config{})
	_, err := mp.EstimateFee(1)
	require.Error(t, err)
}

func TestNullifierExistsPanicsOnUnknownProtocol(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	require.Panics(t, func() {
		mp.NullifierExists(chainhash.Hash{}, wire.ShieldedProtocol(99))
	})
}

func TestSetNotifiedSequencePanicsOffRegtest(t *testing.T) {
	t.Parallel()

	mp := newTestPool(t)
	require.Panics(t, func() {
		mp.SetNotifiedSequence(1)
	})
}
