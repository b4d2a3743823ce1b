// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func TestPrimaryIndexInsertGetDelete(t *testing.T) {
	t.Parallel()

	idx := newPrimaryIndex()
	e := newTestEntry(1, 1000)

	require.False(t, idx.Has(e.ID()))
	idx.Insert(e)
	require.True(t, idx.Has(e.ID()))

	got, ok := idx.Get(e.ID())
	require.True(t, ok)
	require.Same(t, e, got)

	idx.Delete(e.ID())
	require.False(t, idx.Has(e.ID()))
	require.Equal(t, 0, idx.Len())
}

func TestPrimaryIndexSortedOrder(t *testing.T) {
	t.Parallel()

	idx := newPrimaryIndex()
	low := newTestEntry(1, 100)
	high := newTestEntry(2, 900)
	idx.Insert(low)
	idx.Insert(high)

	sorted := idx.Sorted()
	require.Len(t, sorted, 2)
	require.Equal(t, high.ID(), sorted[0].ID())
	require.Equal(t, low.ID(), sorted[1].ID())
}

func TestPrimaryIndexModifyResorts(t *testing.T) {
	t.Parallel()

	idx := newPrimaryIndex()
	a := newTestEntry(1, 100)
	b := newTestEntry(2, 900)
	idx.Insert(a)
	idx.Insert(b)
	require.Equal(t, b.ID(), idx.Sorted()[0].ID())

	idx.Modify(a.ID(), 10_000)
	require.Equal(t, a.ID(), idx.Sorted()[0].ID())
}

func TestOutpointIndexAddRemoveSpenderOf(t *testing.T) {
	t.Parallel()

	idx := newOutpointIndex()
	parent := newTestTx(1, 1000)
	op := parent.MsgTx().TxIn[0].PreviousOutPoint

	idx.Add(op, *parent.Hash(), 0)
	spender, input, ok := idx.SpenderOf(op)
	require.True(t, ok)
	require.Equal(t, *parent.Hash(), spender)
	require.Equal(t, 0, input)

	idx.Remove(op)
	require.False(t, idx.HasSpender(op))
}

func TestNullifierIndexPanicsOnUnknownProtocol(t *testing.T) {
	t.Parallel()

	idx := newNullifierIndex()
	require.Panics(t, func() {
		idx.Exists(chainhash.Hash{}, 99)
	})
}
