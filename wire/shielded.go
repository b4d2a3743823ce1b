// Copyright (c) 2024 The Koto developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// ShieldedProtocol identifies one of the three independent shielded value
// protocols a transaction may touch. Each protocol maintains its own
// nullifier namespace; a nullifier from one protocol never collides with
// a nullifier from another even if the raw bytes match.
type ShieldedProtocol uint8

const (
	// Sprout is the original shielded protocol, carried in a
	// transaction's JoinSplit descriptions.
	Sprout ShieldedProtocol = iota
	// Sapling is the second-generation shielded protocol, carried in a
	// transaction's Spend/Output description pairs.
	Sapling
	// Orchard is the third-generation bundle protocol.
	Orchard
)

// String implements fmt.Stringer.
func (p ShieldedProtocol) String() string {
	switch p {
	case Sprout:
		return "sprout"
	case Sapling:
		return "sapling"
	case Orchard:
		return "orchard"
	default:
		return "unknown"
	}
}

// JoinSplitDescription is a single Sprout joinsplit: it spends up to two
// shielded notes (publishing their nullifiers) and creates up to two new
// ones (publishing their commitments), anchored to a historical Sprout
// note-commitment tree root.
type JoinSplitDescription struct {
	Anchor      chainhash.Hash
	Nullifiers  []chainhash.Hash
	Commitments []chainhash.Hash
}

// SpendDescription is a single Sapling shielded spend: it publishes one
// nullifier, anchored to a historical Sapling note-commitment tree root.
type SpendDescription struct {
	Anchor    chainhash.Hash
	Nullifier chainhash.Hash
}

// OrchardAction is a single action within an Orchard bundle; like a
// Sapling spend it publishes exactly one nullifier.
type OrchardAction struct {
	Nullifier chainhash.Hash
}

// OrchardBundle groups the actions of an Orchard-protocol shielded
// transfer. Unlike Sprout and Sapling, the source's anchor-invalidation
// driver does not walk Orchard bundles (see Design Notes); the bundle is
// still tracked for nullifier-uniqueness purposes.
type OrchardBundle struct {
	Actions []OrchardAction
}

// Nullifiers returns the nullifiers published by every action in the
// bundle. Returns nil for a nil bundle so callers may range over the
// result unconditionally.
func (b *OrchardBundle) Nullifiers() []chainhash.Hash {
	if b == nil {
		return nil
	}
	out := make([]chainhash.Hash, len(b.Actions))
	for i, a := range b.Actions {
		out[i] = a.Nullifier
	}
	return out
}
