package domain

// DayDuration is the distribution day length in seconds (24 hours).
const DayDuration = 86400

// Progress is the mutable daily distribution ledger for a vault.
// One live instance per vault, reset on day rollover.
// Corresponds to the progress table in PostgreSQL.
type Progress struct {
	Vault              string // vault address (primary key)
	LastDistributionTS int64  // Unix timestamp of the day's first successful crank
	DistributedToday   uint64 // lamports paid to investors so far today
	CarryOver          uint64 // undistributed remainder carried across pages and days
	PaginationCursor   uint64 // last page number successfully processed
	CurrentDay         int64  // day index, floor(timestamp / 86400)
	ClaimedToday       uint64 // lamports claimed from the position so far today
	DayComplete        bool   // terminal flag; blocks further investor pages until rollover
	Bump               uint8  // derived-address bump seed
}

// NewProgress returns the initial progress record for a vault.
func NewProgress(vault string, bump uint8) *Progress {
	return &Progress{Vault: vault, Bump: bump}
}

// IsNewDay reports whether the 24h window since the day's first crank has
// elapsed, i.e. whether a crank at ts would start a new distribution day.
// The boundary is inclusive: exactly +86400 seconds starts the next day.
func (p *Progress) IsNewDay(ts int64) bool {
	return ts >= p.LastDistributionTS+DayDuration
}

// ResetForNewDay rolls the ledger over to a new day. The carry-over is
// explicitly preserved across the reset.
func (p *Progress) ResetForNewDay(ts int64) {
	p.LastDistributionTS = ts
	p.DistributedToday = 0
	p.ClaimedToday = 0
	p.PaginationCursor = 0
	p.CurrentDay = ts / DayDuration
	p.DayComplete = false
}

// CloseDay marks the day complete and zeroes the carry-over. Called only
// after the creator remainder has been settled.
func (p *Progress) CloseDay() {
	p.DayComplete = true
	p.CarryOver = 0
}

// Clone returns a deep copy, used by stores to avoid aliasing the caller's record.
func (p *Progress) Clone() *Progress {
	c := *p
	return &c
}
