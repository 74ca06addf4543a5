package distribution

import (
	"fmt"

	"star-fee-distributor/internal/domain"
)

// ValidateQuoteOnlyPool checks that the pool's token ordering guarantees
// quote-only fee accrual: the expected quote mint must be token B. Enforced
// once at initialization, not per crank.
func ValidateQuoteOnlyPool(cfg domain.PoolConfig, expectedQuoteMint string) error {
	if cfg.TokenB != expectedQuoteMint {
		return fmt.Errorf("%w: pool %s has token B %s, expected quote mint %s",
			ErrInvalidPoolTokenOrder, cfg.PoolID, cfg.TokenB, expectedQuoteMint)
	}
	return nil
}

// DetectBaseFees fails if the claim contains any base-denominated amount.
// This is the single most important safety gate: the distributor must never
// handle an asset it was not designed for.
func DetectBaseFees(claim domain.ClaimResult) error {
	if claim.BaseAmount != 0 {
		return fmt.Errorf("%w: base amount %d", ErrBaseFeeDetected, claim.BaseAmount)
	}
	return nil
}
