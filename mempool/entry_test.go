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
	"github.com/stretchr/testify/require"
)

// newTestTx returns a transaction spending the given outpoints and
// creating a single output of the given value, with an id derived from
// seed so callers can build distinct transactions cheaply.
func newTestTx(seed byte, value int64, spends ...wire.OutPoint) *wire.Tx {
	msg := &wire.MsgTx{
		TxOut: []*wire.TxOut{{Value: value, PkScript: []byte{seed}}},
	}
	for _, op := range spends {
		msg.TxIn = append(msg.TxIn, &wire.TxIn{PreviousOutPoint: op})
	}
	if len(msg.TxIn) == 0 {
		msg.TxIn = append(msg.TxIn, &wire.TxIn{
			PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{seed}, Index: 0},
		})
	}
	tx := wire.NewTx(msg)
	var h chainhash.Hash
	h[0] = seed
	tx.SetHash(h)
	return tx
}

func newTestEntry(seed byte, fee btcutil.Amount, spends ...wire.OutPoint) *Entry {
	tx := newTestTx(seed, 1000, spends...)
	return NewEntry(tx, fee, time.Unix(0, 0), 0, 1, true, false, 0, 1)
}

func TestEntryFeeRate(t *testing.T) {
	t.Parallel()

	e := newTestEntry(1, 1000)
	require.Greater(t, e.FeeRate(), 0.0)
	require.Equal(t, float64(e.Fee)/float64(e.TxSize), e.FeeRate())
}

func TestEntryPriorityAtGrowsWithHeight(t *testing.T) {
	t.Parallel()

	e := newTestEntry(1, 1000)
	e.Priority = 10

	p0 := e.PriorityAt(e.Height)
	require.Equal(t, e.Priority, p0)

	p10 := e.PriorityAt(e.Height + 10)
	require.Greater(t, p10, p0)
}

func TestEntryPriorityAtNeverNegative(t *testing.T) {
	t.Parallel()

	e := newTestEntry(1, -1000)
	e.Priority = 0

	p := e.PriorityAt(e.Height - 1000)
	require.GreaterOrEqual(t, p, 0.0)
}

// TestCompareDepthAndScoreIgnoresDepth exercises the documented surprise
// (see DESIGN.md): the comparator's name mentions depth, but its
// behavior is driven entirely by score.
func TestCompareDepthAndScoreIgnoresDepth(t *testing.T) {
	t.Parallel()

	a := newTestEntry(1, 2000)
	b := newTestEntry(2, 1000)
	a.Height = 100
	b.Height = 1

	require.True(t, CompareDepthAndScore(a, b))
	require.False(t, CompareDepthAndScore(b, a))
}

func TestCompareDepthAndScoreSizeTiebreak(t *testing.T) {
	t.Parallel()

	a := newTestEntry(1, 1000)
	b := newTestEntry(2, 2000)
	a.TxSize = 100
	b.TxSize = 200

	require.True(t, CompareDepthAndScore(a, b))
}
