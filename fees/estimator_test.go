// Copyright (c) 2024 The Koto developers
// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fees

import (
	"bytes"
	"testing"
	"time"

	"github.com/VindexProject/koto/mempool"
	"github.com/VindexProject/koto/wire"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func newTestEntry(seed byte, fee btcutil.Amount, height int32, priority float64) *mempool.Entry {
	msg := &wire.MsgTx{
		TxIn:  []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{seed}, Index: 0}}},
		TxOut: []*wire.TxOut{{Value: 1000, PkScript: []byte{seed}}},
	}
	tx := wire.NewTx(msg)
	var h chainhash.Hash
	h[0] = seed
	tx.SetHash(h)
	return mempool.NewEntry(tx, fee, time.Unix(0, 0), priority, height, false, false, 0, 1)
}

func TestEstimatorRefusesBeforeMinRegisteredBlocks(t *testing.T) {
	t.Parallel()

	ef := NewEstimator(10, 5)
	_, err := ef.EstimateFee(1)
	require.Error(t, err)
}

func TestEstimatorObserveAndProcessBlock(t *testing.T) {
	t.Parallel()

	ef := NewEstimator(10, 0)
	e := newTestEntry(1, 1000, 1, 0)
	ef.ObserveTransaction(e)

	ef.ProcessBlock(2, []*mempool.Entry{e})

	rate, err := ef.EstimateFee(1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, int64(rate), int64(0))
}

func TestEstimatorRemoveTxDropsUnconfirmedObservation(t *testing.T) {
	t.Parallel()

	ef := NewEstimator(10, 0)
	e := newTestEntry(1, 1000, 1, 0)
	ef.ObserveTransaction(e)

	ef.RemoveTx(e.ID(), false)
	require.NotContains(t, ef.observed, e.ID())
}

func TestEstimatorRemoveTxKeepsInBlockObservation(t *testing.T) {
	t.Parallel()

	ef := NewEstimator(10, 0)
	e := newTestEntry(1, 1000, 1, 0)
	ef.ObserveTransaction(e)

	ef.RemoveTx(e.ID(), true)
	require.Contains(t, ef.observed, e.ID())
}

func TestEstimatorRollbackUndoesProcessBlock(t *testing.T) {
	t.Parallel()

	ef := NewEstimator(10, 0)
	e := newTestEntry(1, 1000, 1, 0)
	ef.ObserveTransaction(e)
	ef.ProcessBlock(2, []*mempool.Entry{e})

	require.NoError(t, ef.Rollback(chainhash.Hash{}))
	require.Contains(t, ef.observed, e.ID())
	require.Equal(t, int32(mempool.UnminedHeight), ef.observed[e.ID()].MinedAt)
}

func TestEstimatorWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	ef := NewEstimator(10, 0)
	e := newTestEntry(1, 1000, 1, 0)
	ef.ObserveTransaction(e)
	ef.ProcessBlock(2, []*mempool.Entry{e})

	var buf bytes.Buffer
	require.NoError(t, ef.Write(&buf))

	ef2 := NewEstimator(10, 0)
	require.NoError(t, ef2.Read(&buf))
	require.Equal(t, ef.lastKnownHeight, ef2.lastKnownHeight)
	require.Equal(t, ef.numBlocksRegistered, ef2.numBlocksRegistered)
}

func TestEstimatorReadRejectsNewerRequiredVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buf.Write([]byte{0x7f, 0xff, 0xff, 0xff}) // versionRequired far beyond clientVersion
	buf.Write([]byte{0x00, 0x00, 0x00, 0x01})

	ef := NewEstimator(10, 0)
	require.Error(t, ef.Read(&buf))
}

func TestFeeRateToPerKBAndFee(t *testing.T) {
	t.Parallel()

	r := NewFeeRate(btcutil.Amount(250), 500)
	require.Equal(t, 0.5, float64(r))
	require.Equal(t, 500.0, r.ToPerKB())
	require.Equal(t, btcutil.Amount(250), r.Fee(500))
}
