// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire defines the transaction-level domain types shared by the
// pool and its external collaborators: transparent inputs and outputs,
// outpoints, and the three shielded bundle shapes (Sprout, Sapling,
// Orchard). It deliberately does not implement network framing or a wire
// codec for peer-to-peer messages; callers hand the pool already-decoded
// transactions.
package wire

import (
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OutPoint defines a transaction output reference.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new outpoint referencing output Index of
// transaction Hash.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// String returns the outpoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	return o.Hash.String() + ":" + strconv.FormatUint(uint64(o.Index), 10)
}

// TxIn defines a transparent transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// TxOut defines a transparent transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// MsgTx is the decoded transaction body the pool operates on. It carries
// the transparent input/output set alongside the three independent
// shielded bundle shapes; a transaction may populate any subset of them.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32

	// ExpiryHeight is consulted only by the externally-injected expiry
	// predicate; the pool itself never reads it directly.
	ExpiryHeight uint32

	JoinSplits     []*JoinSplitDescription
	ShieldedSpends []*SpendDescription
	Orchard        *OrchardBundle
}

// IsCoinBase determines whether tx is a coinbase transaction: exactly one
// input whose previous outpoint has a zero hash and a max-value index.
func (msg *MsgTx) IsCoinBase() bool {
	if len(msg.TxIn) != 1 {
		return false
	}
	prevOut := &msg.TxIn[0].PreviousOutPoint
	return prevOut.Index == ^uint32(0) && prevOut.Hash == chainhash.Hash{}
}

// ValueOut returns the sum of all transparent output values. It does not
// account for shielded value balances, which are opaque to the pool.
func (msg *MsgTx) ValueOut() int64 {
	var total int64
	for _, out := range msg.TxOut {
		total += out.Value
	}
	return total
}

// SerializeSize returns an approximation of the wire-encoded size of the
// transaction, used as tx_size throughout the pool. It is not a consensus
// serialisation and must not be used to construct block templates.
func (msg *MsgTx) SerializeSize() int64 {
	n := int64(4 + 4) // version + locktime
	for _, in := range msg.TxIn {
		n += 36 + 8 + int64(len(in.SignatureScript))
	}
	for _, out := range msg.TxOut {
		n += 8 + 8 + int64(len(out.PkScript))
	}
	for _, js := range msg.JoinSplits {
		n += 32 + int64(len(js.Nullifiers))*32 + int64(len(js.Commitments))*32
	}
	n += int64(len(msg.ShieldedSpends)) * (32 + 32)
	if msg.Orchard != nil {
		n += int64(len(msg.Orchard.Actions)) * 32
	}
	return n
}

// ModifiedSize approximates the source's fee-neutral "priority size":
// the serialised size with signature scripts (which do not reflect the
// economic content of the transaction) discounted to a fixed per-input
// overhead, mirroring how the original node discounts scriptSig bytes
// when computing priority.
func (msg *MsgTx) ModifiedSize(txSize int64) int64 {
	const perInputOverhead = 41
	n := txSize
	for _, in := range msg.TxIn {
		scriptLen := int64(len(in.SignatureScript))
		if scriptLen > perInputOverhead {
			n -= scriptLen - perInputOverhead
		}
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Tx wraps a MsgTx with its id computed and cached once, mirroring
// btcutil.Tx. Every Entry in the pool owns a *Tx rather than a bare
// *MsgTx so that the (relatively expensive) id computation happens once
// per transaction regardless of how many pool indexes reference it.
type Tx struct {
	msgTx   *MsgTx
	txID    chainhash.Hash
	hasID   bool
	txIndex int // index within a block's transaction list; -1 if unset
}

// NewTx returns a new Tx instance for the transparently-passed MsgTx.
func NewTx(msgTx *MsgTx) *Tx {
	return &Tx{msgTx: msgTx, txIndex: -1}
}

// MsgTx returns the underlying wire transaction.
func (t *Tx) MsgTx() *MsgTx {
	return t.msgTx
}

// Index returns the saved index of the transaction within a block. This
// value is expected to be set via SetIndex, and defaults to -1 when not
// set.
func (t *Tx) Index() int {
	return t.txIndex
}

// SetIndex sets the index of the transaction within a block.
func (t *Tx) SetIndex(index int) {
	t.txIndex = index
}

// Hash returns the cached transaction id, computing and caching it from
// the underlying MsgTx on first use. Because MsgTx has no canonical
// consensus serialisation in this package (that lives in the out-of-scope
// wire codec), callers that need a real cryptographic id must set it
// explicitly via SetHash before the Tx enters the pool; Hash falls back to
// a non-cryptographic XOR mix of the previous-outpoint hashes, signature
// scripts and output scripts. Outpoint indexes and output values are not
// mixed in, so distinct transactions can share a fallback id.
func (t *Tx) Hash() *chainhash.Hash {
	if t.hasID {
		return &t.txID
	}
	t.txID = computeFallbackID(t.msgTx)
	t.hasID = true
	return &t.txID
}

// SetHash overrides the cached transaction id. The mempool never calls
// it; a caller that already knows the consensus id sets it here before
// handing the transaction to the pool, and computeFallbackID is only used
// when no id was set.
func (t *Tx) SetHash(hash chainhash.Hash) {
	t.txID = hash
	t.hasID = true
}

func computeFallbackID(msg *MsgTx) chainhash.Hash {
	h := chainhash.Hash{}
	var acc byte
	mix := func(b []byte) {
		for i, c := range b {
			acc ^= c
			h[(i+int(acc))%chainhash.HashSize] ^= c
		}
	}
	for _, in := range msg.TxIn {
		mix(in.PreviousOutPoint.Hash[:])
		mix(in.SignatureScript)
	}
	for _, out := range msg.TxOut {
		mix(out.PkScript)
	}
	return h
}
