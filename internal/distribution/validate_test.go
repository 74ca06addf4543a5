package distribution

import (
	"errors"
	"testing"

	"star-fee-distributor/internal/domain"
)

func TestValidateQuoteOnlyPool(t *testing.T) {
	quote := "QuoteMint111111111111111111111111111111111"
	base := "BaseMint1111111111111111111111111111111111"

	cfg := domain.PoolConfig{TokenA: base, TokenB: quote, PoolID: "pool1"}
	if err := ValidateQuoteOnlyPool(cfg, quote); err != nil {
		t.Errorf("expected quote-as-token-B pool to validate, got %v", err)
	}

	// Reversed ordering cannot guarantee quote-only accrual.
	reversed := domain.PoolConfig{TokenA: quote, TokenB: base, PoolID: "pool1"}
	if err := ValidateQuoteOnlyPool(reversed, quote); !errors.Is(err, ErrInvalidPoolTokenOrder) {
		t.Errorf("expected ErrInvalidPoolTokenOrder, got %v", err)
	}
}

func TestDetectBaseFees(t *testing.T) {
	if err := DetectBaseFees(domain.ClaimResult{BaseAmount: 0, QuoteAmount: 1_000_000}); err != nil {
		t.Errorf("quote-only claim should pass, got %v", err)
	}

	// Any nonzero base amount aborts, regardless of quote amount.
	for _, base := range []uint64{1, 500, 1 << 40} {
		err := DetectBaseFees(domain.ClaimResult{BaseAmount: base, QuoteAmount: 1_000_000})
		if !errors.Is(err, ErrBaseFeeDetected) {
			t.Errorf("base amount %d: expected ErrBaseFeeDetected, got %v", base, err)
		}
	}
}
