// Package distribution holds the pure fee-distribution arithmetic: eligible
// share, fee split, daily cap, pro-rata weights and payouts, page bounds and
// the quote-only safety checks. No state, no I/O.
package distribution

import "errors"

var (
	// ErrMathOverflow indicates an intermediate calculation exceeded the
	// widened integer domain. Unreachable with bounded bps inputs; its
	// appearance means an invariant was violated upstream.
	ErrMathOverflow = errors.New("distribution: math overflow")

	// ErrBaseFeeDetected indicates the claim contained base-denominated
	// fees. The entire crank aborts before any state mutation.
	ErrBaseFeeDetected = errors.New("distribution: base-denominated fees detected, aborting")

	// ErrInvalidPoolTokenOrder indicates the pool cannot guarantee
	// quote-only accrual: the quote mint must be the pool's second token.
	ErrInvalidPoolTokenOrder = errors.New("distribution: quote mint must be the second token in the pool")

	// ErrInvalidPage indicates a zero, stale, or out-of-order page number.
	ErrInvalidPage = errors.New("distribution: invalid page")

	// ErrNoLockedInvestors indicates an empty investor page or a page with
	// zero total locked balance.
	ErrNoLockedInvestors = errors.New("distribution: no locked investors")
)
