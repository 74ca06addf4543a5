// Package vesting defines the locked-balance snapshot collaborator. The core
// treats snapshots as trusted input; it never recomputes vesting curves.
package vesting

import "context"

// Stream is one investor's vesting stream reference.
type Stream struct {
	Address  string // stream account address
	QuoteATA string // investor's quote token destination
}

// Provider supplies locked-balance snapshots per stream at a timestamp, and
// enumerates a vault's streams so a caller can page deterministically.
type Provider interface {
	// LockedAmount returns the still-locked balance of a stream at ts.
	LockedAmount(ctx context.Context, stream string, ts int64) (uint64, error)

	// ListStreams returns a vault's streams in stable order.
	ListStreams(ctx context.Context, vault string) ([]Stream, error)
}
