// Package cpamm defines the fee-claim collaborator interface. The concrete
// claim mechanics (CP-AMM program calls) live outside the core; the core
// only consumes the reported base/quote accrual.
package cpamm

import (
	"context"

	"star-fee-distributor/internal/domain"
)

// Claimer claims accrued fees from an honorary LP position.
//
// Contract: Claim reports the exact unclaimed base/quote accrual and must be
// observationally side-effect free until the caller accepts the result — the
// crank aborts the whole call on any nonzero base amount.
type Claimer interface {
	Claim(ctx context.Context, position string) (domain.ClaimResult, error)
}
