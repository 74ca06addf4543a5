package domain

import "errors"

// Basis-point denominator used across all share calculations.
const MaxBps = 10000

// Policy validation errors. Detected once at initialization; a policy is
// never revalidated mid-lifecycle.
var (
	// ErrInvalidFeeShareBps is returned when investor fee share exceeds 10000 bps.
	ErrInvalidFeeShareBps = errors.New("policy: investor fee share basis points cannot exceed 10000")

	// ErrInvalidDailyCap is returned when the daily cap is zero.
	ErrInvalidDailyCap = errors.New("policy: daily cap must be greater than zero")

	// ErrInvalidMinPayout is returned when the minimum payout threshold is zero.
	ErrInvalidMinPayout = errors.New("policy: minimum payout must be greater than zero")

	// ErrInvalidY0 is returned when the total investor allocation is zero.
	ErrInvalidY0 = errors.New("policy: Y0 total allocation must be greater than zero")
)

// Policy is the immutable distribution configuration for a vault.
// Created once at initialization and read-only thereafter.
// Corresponds to the policies table in PostgreSQL.
type Policy struct {
	Vault               string // vault address (primary key)
	InvestorFeeShareBps uint16 // maximum share of claimed fees investors may receive (0-10000)
	DailyCap            uint64 // ceiling on lamports paid to investors per day
	MinPayoutLamports   uint64 // per-investor dust threshold; payouts below it are withheld
	Y0                  uint64 // total investor allocation at TGE, denominator for locked fraction
	QuoteMint           string // quote mint address
	CreatedAt           int64  // Unix timestamp of policy creation
	Bump                uint8  // derived-address bump seed
}

// Validate checks all numeric policy fields. Returns the first violation.
func (p *Policy) Validate() error {
	if p.InvestorFeeShareBps > MaxBps {
		return ErrInvalidFeeShareBps
	}
	if p.DailyCap == 0 {
		return ErrInvalidDailyCap
	}
	if p.MinPayoutLamports == 0 {
		return ErrInvalidMinPayout
	}
	if p.Y0 == 0 {
		return ErrInvalidY0
	}
	return nil
}
