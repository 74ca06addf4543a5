// Package stub provides an in-memory cpamm.Claimer for tests and
// single-process deployments.
package stub

import (
	"context"
	"sync"

	"star-fee-distributor/internal/domain"
)

// Claimer implements cpamm.Claimer over a map of accrued amounts keyed by
// position. Claim drains the accrual, matching the on-chain semantics where
// claimed fees stop being claimable.
type Claimer struct {
	mu      sync.Mutex
	accrued map[string]domain.ClaimResult
}

// NewClaimer creates a new stub claimer.
func NewClaimer() *Claimer {
	return &Claimer{accrued: make(map[string]domain.ClaimResult)}
}

// Accrue adds unclaimed base/quote fees to a position.
func (c *Claimer) Accrue(position string, base, quote uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc := c.accrued[position]
	acc.BaseAmount += base
	acc.QuoteAmount += quote
	c.accrued[position] = acc
}

// Claim reports the position's accrual. A quote-only accrual is drained; a
// claim carrying base fees is reported but left in place, emulating the host
// transaction rollback that follows a base-fee abort.
func (c *Claimer) Claim(_ context.Context, position string) (domain.ClaimResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc := c.accrued[position]
	if acc.BaseAmount == 0 {
		delete(c.accrued, position)
	}
	return acc, nil
}
