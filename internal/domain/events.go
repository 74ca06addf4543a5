package domain

// Event is a distribution lifecycle event. Events are pure observability:
// they flow through a side-channel sink and never affect control flow.
type Event interface {
	// EventType returns the stable event name used in sinks.
	EventType() string
	// EventVault returns the vault the event belongs to.
	EventVault() string
	// EventTimestamp returns the Unix timestamp the event was produced at.
	EventTimestamp() int64
}

// HonoraryPositionInitialized is emitted when a vault's policy and progress
// records are created.
type HonoraryPositionInitialized struct {
	Vault               string `json:"vault"`
	Position            string `json:"position"`
	QuoteMint           string `json:"quote_mint"`
	Pool                string `json:"pool"`
	InvestorFeeShareBps uint16 `json:"investor_fee_share_bps"`
	DailyCap            uint64 `json:"daily_cap"`
	MinPayoutLamports   uint64 `json:"min_payout_lamports"`
	Y0                  uint64 `json:"y0"`
	Timestamp           int64  `json:"timestamp"`
}

// QuoteFeesClaimed is emitted when quote fees are claimed from the position.
type QuoteFeesClaimed struct {
	Vault     string `json:"vault"`
	Amount    uint64 `json:"amount"`
	Position  string `json:"position"`
	Day       int64  `json:"day"`
	Timestamp int64  `json:"timestamp"`
}

// InvestorPayout is emitted for each investor that receives a payout.
type InvestorPayout struct {
	Vault        string `json:"vault"`
	Investor     string `json:"investor"`
	Amount       uint64 `json:"amount"`
	LockedAmount uint64 `json:"locked_amount"`
	WeightBps    uint64 `json:"weight_bps"`
	Day          int64  `json:"day"`
	Page         uint64 `json:"page"`
	Timestamp    int64  `json:"timestamp"`
}

// InvestorPayoutPage is emitted once per processed page.
type InvestorPayoutPage struct {
	Vault              string `json:"vault"`
	Day                int64  `json:"day"`
	Page               uint64 `json:"page"`
	Distributed        uint64 `json:"distributed"`
	CarryOver          uint64 `json:"carry_over"`
	InvestorsProcessed uint64 `json:"investors_processed"`
	LockedTotal        uint64 `json:"locked_total"`
	EligibleShareBps   uint16 `json:"eligible_share_bps"`
	StateDigest        string `json:"state_digest"`
	Timestamp          int64  `json:"timestamp"`
}

// DailyCapApplied is emitted when the daily cap truncates a payout.
type DailyCapApplied struct {
	Vault           string `json:"vault"`
	Day             int64  `json:"day"`
	RequestedPayout uint64 `json:"requested_payout"`
	CappedPayout    uint64 `json:"capped_payout"`
	CapAmount       uint64 `json:"cap_amount"`
	Timestamp       int64  `json:"timestamp"`
}

// CreatorPayoutDayClosed is emitted when the final page settles the creator
// remainder and closes the day.
type CreatorPayoutDayClosed struct {
	Vault            string `json:"vault"`
	Day              int64  `json:"day"`
	Remainder        uint64 `json:"remainder"`
	TotalDistributed uint64 `json:"total_distributed"`
	TotalClaimed     uint64 `json:"total_claimed"`
	Creator          string `json:"creator"`
	Timestamp        int64  `json:"timestamp"`
}

// DistributionAborted is emitted when a crank aborts on base-fee detection.
type DistributionAborted struct {
	Vault         string `json:"vault"`
	Reason        string `json:"reason"`
	Day           int64  `json:"day"`
	BaseFeeAmount uint64 `json:"base_fee_amount"`
	Timestamp     int64  `json:"timestamp"`
}

func (e HonoraryPositionInitialized) EventType() string { return "honorary_position_initialized" }
func (e QuoteFeesClaimed) EventType() string            { return "quote_fees_claimed" }
func (e InvestorPayout) EventType() string              { return "investor_payout" }
func (e InvestorPayoutPage) EventType() string          { return "investor_payout_page" }
func (e DailyCapApplied) EventType() string             { return "daily_cap_applied" }
func (e CreatorPayoutDayClosed) EventType() string      { return "creator_payout_day_closed" }
func (e DistributionAborted) EventType() string         { return "distribution_aborted" }

func (e HonoraryPositionInitialized) EventVault() string { return e.Vault }
func (e QuoteFeesClaimed) EventVault() string            { return e.Vault }
func (e InvestorPayout) EventVault() string              { return e.Vault }
func (e InvestorPayoutPage) EventVault() string          { return e.Vault }
func (e DailyCapApplied) EventVault() string             { return e.Vault }
func (e CreatorPayoutDayClosed) EventVault() string      { return e.Vault }
func (e DistributionAborted) EventVault() string         { return e.Vault }

func (e HonoraryPositionInitialized) EventTimestamp() int64 { return e.Timestamp }
func (e QuoteFeesClaimed) EventTimestamp() int64            { return e.Timestamp }
func (e InvestorPayout) EventTimestamp() int64              { return e.Timestamp }
func (e InvestorPayoutPage) EventTimestamp() int64          { return e.Timestamp }
func (e DailyCapApplied) EventTimestamp() int64             { return e.Timestamp }
func (e CreatorPayoutDayClosed) EventTimestamp() int64      { return e.Timestamp }
func (e DistributionAborted) EventTimestamp() int64         { return e.Timestamp }
