package domain

// PayoutRecord is one settled investor payout, persisted for audit and
// replay verification. Append-only.
type PayoutRecord struct {
	Vault        string // vault the payout belongs to
	Day          int64  // distribution day index
	Page         uint64 // page the payout was settled in
	Investor     string // destination token account
	Amount       uint64 // lamports paid
	LockedAmount uint64 // locked balance the weight was computed from
	WeightBps    uint64 // pro-rata weight at settlement
	Timestamp    int64  // Unix timestamp of settlement
}
