package domain

// InvestorRecord is one investor's snapshot for a single crank page.
// Constructed by the caller per page from the vesting provider, consumed
// once, never persisted.
type InvestorRecord struct {
	Stream       string // vesting stream address the snapshot came from
	QuoteATA     string // payout destination token account
	LockedAmount uint64 // still-locked balance at the call timestamp
	Weight       uint64 // pro-rata weight in bps, filled in during distribution
}

// ClaimResult is the outcome of one fee-claim operation against the
// honorary position. Any nonzero base amount aborts the crank.
type ClaimResult struct {
	BaseAmount  uint64
	QuoteAmount uint64
}

// PoolConfig describes the CP-AMM pool backing the honorary position.
// Quote-only fee accrual requires the quote mint to be token B.
type PoolConfig struct {
	TokenA    string // base mint
	TokenB    string // quote mint
	PoolID    string
	TickLower int32
	TickUpper int32
}
