// Copyright (c) 2024 The Koto developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "fmt"

// ErrUnknownProtocol is returned (or panicked with, via
// unknownProtocol) when a caller passes a ShieldedProtocol value this
// package does not recognize.
type ErrUnknownProtocol struct {
	Protocol int
}

func (e ErrUnknownProtocol) Error() string {
	return fmt.Sprintf("mempool: unknown shielded protocol %d", e.Protocol)
}

// unknownProtocol panics with ErrUnknownProtocol. Every call site that
// switches over a ShieldedProtocol falls through to this in its default
// case: an unrecognized protocol is a programmer error in the caller, not
// a condition the pool can recover from, matching the source's behavior
// of throwing on an unknown nullifier-set selector.
func unknownProtocol(p int) {
	panic(ErrUnknownProtocol{Protocol: p})
}

// notRegtest panics when a regtest-only operation is invoked on any other
// network. SetNotifiedSequence and IsFullyNotified exist purely to let
// regtest-mode functional tests synchronize with wallet-notification
// drain and are asserted unreachable elsewhere, exactly as in the source.
func notRegtest(op string) {
	panic(fmt.Sprintf("mempool: %s is only valid on regtest", op))
}

// ErrReadFeeEstimates describes a non-fatal failure to decode a
// previously persisted fee-estimator snapshot. Callers should log and
// continue with a fresh estimator; this is never returned from anything
// that must succeed for correctness.
var ErrReadFeeEstimates = fmt.Errorf("mempool: unable to read fee estimates")

// ErrFeeEstimatorVersion describes a persisted fee-estimator snapshot
// whose required reader version exceeds this package's client version.
type ErrFeeEstimatorVersion struct {
	Required, Have int32
}

func (e ErrFeeEstimatorVersion) Error() string {
	return fmt.Sprintf("mempool: fee estimates file requires version %d, have %d", e.Required, e.Have)
}
