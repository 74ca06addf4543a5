// Package solana provides the address helpers the distributor needs:
// base58 pubkey parsing and program-derived-address computation for the
// per-vault policy, progress, treasury and position-owner records.
package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PubkeyLen is the byte length of a Solana public key.
const PubkeyLen = 32

// ParsePubkey decodes a base58 address and checks it is exactly 32 bytes.
func ParsePubkey(addr string) ([]byte, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("decode pubkey %q: %w", addr, err)
	}
	if len(raw) != PubkeyLen {
		return nil, fmt.Errorf("pubkey %q: expected %d bytes, got %d", addr, PubkeyLen, len(raw))
	}
	return raw, nil
}

// IsValidPubkey reports whether addr is a well-formed base58 32-byte key.
func IsValidPubkey(addr string) bool {
	_, err := ParsePubkey(addr)
	return err == nil
}

// isOnCurve reports whether a 32-byte point lies on the ed25519 curve.
// Derived addresses must be off-curve so no private key can exist for them.
func isOnCurve(point []byte) bool {
	if len(point) != PubkeyLen {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
