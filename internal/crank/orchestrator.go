// Package crank coordinates the daily fee distribution: gate the 24h window,
// claim quote fees, split pro-rata across paged investors, enforce the daily
// cap and dust threshold, and settle the creator remainder at day close.
package crank

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"star-fee-distributor/internal/cpamm"
	"star-fee-distributor/internal/distribution"
	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/events"
	"star-fee-distributor/internal/observability"
	"star-fee-distributor/internal/solana"
	"star-fee-distributor/internal/storage"
	"star-fee-distributor/internal/treasury"
)

// Orchestrator executes initialize and crank operations against a vault.
// Flow per crank: gate → claim → split → cap → pay → commit → close.
type Orchestrator struct {
	policies  storage.PolicyStore
	progress  storage.ProgressStore
	committer storage.PageCommitter
	claimer   cpamm.Claimer
	treasury  treasury.Sink
	funder    treasury.Funder
	events    events.Sink
	metrics   *observability.Metrics
	logger    *log.Logger
	now       func() int64
}

// Options for creating an Orchestrator.
type Options struct {
	// Required stores and collaborators
	PolicyStore   storage.PolicyStore
	ProgressStore storage.ProgressStore
	Committer     storage.PageCommitter
	Claimer       cpamm.Claimer
	Treasury      treasury.Sink

	// Optional: credits claimed quote into the vault treasury account. When
	// nil the treasury is assumed to be funded by the claim itself.
	Funder treasury.Funder

	// Optional observability
	Events  events.Sink
	Metrics *observability.Metrics
	Logger  *log.Logger

	// Optional clock override, Unix seconds. Defaults to time.Now.
	Now func() int64
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		policies:  opts.PolicyStore,
		progress:  opts.ProgressStore,
		committer: opts.Committer,
		claimer:   opts.Claimer,
		treasury:  opts.Treasury,
		funder:    opts.Funder,
		events:    opts.Events,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if o.events == nil {
		o.events = events.NopSink{}
	}
	if o.logger == nil {
		o.logger = log.New(os.Stderr, "[crank] ", log.LstdFlags)
	}
	if o.now == nil {
		o.now = func() int64 { return time.Now().Unix() }
	}
	return o
}

// InitializeRequest describes a vault to set up for fee distribution.
type InitializeRequest struct {
	Vault               string
	QuoteMint           string
	Pool                domain.PoolConfig
	InvestorFeeShareBps uint16
	DailyCap            uint64
	MinPayoutLamports   uint64
	Y0                  uint64
}

// InitializeResult carries the created records and derived addresses.
type InitializeResult struct {
	Policy        *domain.Policy
	Progress      *domain.Progress
	PositionOwner string
	Treasury      string
}

// Initialize validates the policy and pool, derives the vault's program
// addresses, and creates the policy and progress records. Idempotent in the
// negative: a second call returns ErrAlreadyInitialized and changes nothing.
func (o *Orchestrator) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if !solana.IsValidPubkey(req.Vault) {
		return nil, fmt.Errorf("%w: vault %q is not a valid address", storage.ErrInvalidInput, req.Vault)
	}
	if !solana.IsValidPubkey(req.QuoteMint) {
		return nil, fmt.Errorf("%w: quote mint %q is not a valid address", storage.ErrInvalidInput, req.QuoteMint)
	}
	if err := distribution.ValidateQuoteOnlyPool(req.Pool, req.QuoteMint); err != nil {
		return nil, err
	}

	_, policyBump, err := solana.DerivePolicyAddress(req.Vault)
	if err != nil {
		return nil, fmt.Errorf("derive policy address: %w", err)
	}
	_, progressBump, err := solana.DeriveProgressAddress(req.Vault)
	if err != nil {
		return nil, fmt.Errorf("derive progress address: %w", err)
	}
	positionOwner, _, err := solana.DerivePositionOwnerAddress(req.Vault)
	if err != nil {
		return nil, fmt.Errorf("derive position owner address: %w", err)
	}
	treasuryAddr, _, err := solana.DeriveTreasuryAddress(req.Vault, req.QuoteMint)
	if err != nil {
		return nil, fmt.Errorf("derive treasury address: %w", err)
	}

	now := o.now()
	policy := &domain.Policy{
		Vault:               req.Vault,
		InvestorFeeShareBps: req.InvestorFeeShareBps,
		DailyCap:            req.DailyCap,
		MinPayoutLamports:   req.MinPayoutLamports,
		Y0:                  req.Y0,
		QuoteMint:           req.QuoteMint,
		CreatedAt:           now,
		Bump:                policyBump,
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	if err := o.policies.Insert(ctx, policy); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInitialized, req.Vault)
		}
		return nil, fmt.Errorf("insert policy: %w", err)
	}
	prog := domain.NewProgress(req.Vault, progressBump)
	if err := o.progress.Insert(ctx, prog); err != nil {
		return nil, fmt.Errorf("insert progress: %w", err)
	}

	o.events.Emit(ctx, domain.HonoraryPositionInitialized{
		Vault:               req.Vault,
		Position:            positionOwner,
		QuoteMint:           req.QuoteMint,
		Pool:                req.Pool.PoolID,
		InvestorFeeShareBps: req.InvestorFeeShareBps,
		DailyCap:            req.DailyCap,
		MinPayoutLamports:   req.MinPayoutLamports,
		Y0:                  req.Y0,
		Timestamp:           now,
	})
	if o.metrics != nil {
		o.metrics.VaultsInitialized.Inc()
	}
	o.logger.Printf("initialized vault %s (quote mint %s, share %d bps, cap %d)",
		req.Vault, req.QuoteMint, req.InvestorFeeShareBps, req.DailyCap)

	return &InitializeResult{
		Policy:        policy,
		Progress:      prog,
		PositionOwner: positionOwner,
		Treasury:      treasuryAddr,
	}, nil
}

// CrankRequest is one page of a vault's daily distribution. Pages are
// 1-indexed; page 1 starts a new day and later pages continue it in order.
type CrankRequest struct {
	Vault          string
	Page           uint64
	PageSize       uint64
	TotalInvestors uint64

	// Investors holds this page's locked-balance snapshots, in the vault's
	// stable stream order.
	Investors []domain.InvestorRecord

	// Creator is the creator quote token account, paid the remainder when
	// the final page closes the day.
	Creator string

	// Position overrides the claim handle; derived from the vault when empty.
	Position string
}

// CrankResult reports the page's outcome.
type CrankResult struct {
	Day              int64
	Page             uint64
	ClaimedQuote     uint64 // quote lamports claimed by this call
	Distributed      uint64 // lamports paid to investors on this page
	CarryOver        uint64 // carry-over after this page
	PayoutCount      int    // investors actually paid
	DayComplete      bool
	CreatorRemainder uint64 // creator payout, nonzero only at day close
	StateDigest      string
}

// Crank executes one distribution page. The whole call aborts before any
// persisted mutation if the claim carries base-denominated fees.
func (o *Orchestrator) Crank(ctx context.Context, req CrankRequest) (*CrankResult, error) {
	start := time.Now()
	res, err := o.crank(ctx, req)
	if o.metrics != nil {
		o.metrics.CrankDuration.Observe(time.Since(start).Seconds())
		o.metrics.CranksTotal.WithLabelValues(crankOutcome(err)).Inc()
	}
	return res, err
}

func (o *Orchestrator) crank(ctx context.Context, req CrankRequest) (*CrankResult, error) {
	if _, _, err := distribution.PageBounds(req.Page, req.PageSize); err != nil {
		return nil, err
	}

	policy, err := o.policies.GetByVault(ctx, req.Vault)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	prog, err := o.progress.GetByVault(ctx, req.Vault)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	now := o.now()
	newDay := prog.IsNewDay(now)
	if err := checkGate(prog, req.Page, newDay, now); err != nil {
		return nil, err
	}

	if len(req.Investors) == 0 {
		return nil, fmt.Errorf("%w: empty investor page", distribution.ErrNoLockedInvestors)
	}

	position := req.Position
	if position == "" {
		position, _, err = solana.DerivePositionOwnerAddress(req.Vault)
		if err != nil {
			return nil, fmt.Errorf("derive position owner address: %w", err)
		}
	}
	treasuryAddr, _, err := solana.DeriveTreasuryAddress(req.Vault, policy.QuoteMint)
	if err != nil {
		return nil, fmt.Errorf("derive treasury address: %w", err)
	}

	// Claim before touching any state so a base-fee abort leaves the vault
	// exactly as it was.
	claim, err := o.claimer.Claim(ctx, position)
	if err != nil {
		return nil, fmt.Errorf("claim fees: %w", err)
	}
	if err := distribution.DetectBaseFees(claim); err != nil {
		day := prog.CurrentDay
		if newDay {
			day = now / domain.DayDuration
		}
		o.events.Emit(ctx, domain.DistributionAborted{
			Vault:         req.Vault,
			Reason:        "base_fees_detected",
			Day:           day,
			BaseFeeAmount: claim.BaseAmount,
			Timestamp:     now,
		})
		if o.metrics != nil {
			o.metrics.BaseFeeAborts.Inc()
		}
		o.logger.Printf("vault %s: aborting, claim carried %d base lamports", req.Vault, claim.BaseAmount)
		return nil, err
	}

	if newDay {
		prog.ResetForNewDay(now)
	}

	prog.ClaimedToday, err = distribution.CheckedAdd(prog.ClaimedToday, claim.QuoteAmount)
	if err != nil {
		return nil, fmt.Errorf("accumulate claimed: %w", err)
	}
	if claim.QuoteAmount > 0 {
		if o.funder != nil {
			o.funder.Credit(treasuryAddr, claim.QuoteAmount)
		}
		o.events.Emit(ctx, domain.QuoteFeesClaimed{
			Vault:     req.Vault,
			Amount:    claim.QuoteAmount,
			Position:  position,
			Day:       prog.CurrentDay,
			Timestamp: now,
		})
	}

	// Split: eligible share from the page's locked fraction, daily cap
	// applied over what was already paid today, carry-over folded in after
	// the cap so retained remainders are never capped twice.
	lockedTotal, err := distribution.TotalLocked(req.Investors)
	if err != nil {
		return nil, fmt.Errorf("sum locked balances: %w", err)
	}
	if lockedTotal == 0 {
		return nil, fmt.Errorf("%w: page has zero locked balance", distribution.ErrNoLockedInvestors)
	}
	eligibleBps, err := distribution.EligibleShareBps(lockedTotal, policy.Y0, policy.InvestorFeeShareBps)
	if err != nil {
		return nil, fmt.Errorf("eligible share: %w", err)
	}
	investorQuote, err := distribution.InvestorFeeQuote(claim.QuoteAmount, eligibleBps)
	if err != nil {
		return nil, fmt.Errorf("investor fee quote: %w", err)
	}
	capped := distribution.ApplyDailyCap(investorQuote, policy.DailyCap, prog.DistributedToday)
	if capped < investorQuote {
		o.events.Emit(ctx, domain.DailyCapApplied{
			Vault:           req.Vault,
			Day:             prog.CurrentDay,
			RequestedPayout: investorQuote,
			CappedPayout:    capped,
			CapAmount:       policy.DailyCap,
			Timestamp:       now,
		})
		if o.metrics != nil {
			o.metrics.DailyCapTruncations.Inc()
		}
	}
	available, err := distribution.CheckedAdd(capped, prog.CarryOver)
	if err != nil {
		return nil, fmt.Errorf("fold carry-over: %w", err)
	}

	// Pay each investor its floor pro-rata share of the capped amount.
	var (
		pagePaid  uint64
		transfers []treasury.Transfer
		payouts   []*domain.PayoutRecord
		payEvents []domain.InvestorPayout
	)
	for i := range req.Investors {
		inv := &req.Investors[i]
		inv.Weight, err = distribution.InvestorWeightBps(inv.LockedAmount, lockedTotal)
		if err != nil {
			return nil, fmt.Errorf("weight for %s: %w", inv.Stream, err)
		}
		amount, err := distribution.InvestorPayout(available, inv.Weight, policy.MinPayoutLamports)
		if err != nil {
			return nil, fmt.Errorf("payout for %s: %w", inv.Stream, err)
		}
		if amount == 0 {
			if inv.LockedAmount > 0 && available > 0 && o.metrics != nil {
				o.metrics.DustWithheldPayouts.Inc()
			}
			continue
		}
		pagePaid, err = distribution.CheckedAdd(pagePaid, amount)
		if err != nil {
			return nil, fmt.Errorf("accumulate page payout: %w", err)
		}
		transfers = append(transfers, treasury.Transfer{From: treasuryAddr, To: inv.QuoteATA, Amount: amount})
		payouts = append(payouts, &domain.PayoutRecord{
			Vault:        req.Vault,
			Day:          prog.CurrentDay,
			Page:         req.Page,
			Investor:     inv.QuoteATA,
			Amount:       amount,
			LockedAmount: inv.LockedAmount,
			WeightBps:    inv.Weight,
			Timestamp:    now,
		})
		payEvents = append(payEvents, domain.InvestorPayout{
			Vault:        req.Vault,
			Investor:     inv.QuoteATA,
			Amount:       amount,
			LockedAmount: inv.LockedAmount,
			WeightBps:    inv.Weight,
			Day:          prog.CurrentDay,
			Page:         req.Page,
			Timestamp:    now,
		})
	}

	// Everything available but unpaid stays in the carry-over: dust below
	// the threshold, floor-division remainders, and cap-truncated amounts.
	prog.CarryOver = available - pagePaid
	prog.DistributedToday, err = distribution.CheckedAdd(prog.DistributedToday, pagePaid)
	if err != nil {
		return nil, fmt.Errorf("accumulate distributed: %w", err)
	}
	prog.PaginationCursor = req.Page

	isLast, err := distribution.IsLastPage(req.Page, req.PageSize, req.TotalInvestors)
	if err != nil {
		return nil, err
	}
	var remainder uint64
	if isLast {
		if prog.ClaimedToday > prog.DistributedToday {
			remainder = prog.ClaimedToday - prog.DistributedToday
		}
		if remainder > 0 {
			if req.Creator == "" {
				return nil, fmt.Errorf("%w: creator account required to close the day", storage.ErrInvalidInput)
			}
			transfers = append(transfers, treasury.Transfer{From: treasuryAddr, To: req.Creator, Amount: remainder})
		}
		prog.CloseDay()
	}

	// Token movement first, persisted state second. ApplyBatch is
	// all-or-nothing, so a failed batch leaves the stores untouched too.
	if len(transfers) > 0 {
		if err := o.treasury.ApplyBatch(ctx, transfers); err != nil {
			return nil, fmt.Errorf("apply transfers: %w", err)
		}
	}
	if err := o.committer.CommitPage(ctx, prog, payouts); err != nil {
		return nil, fmt.Errorf("commit page: %w", err)
	}

	digest, err := prog.StateDigest()
	if err != nil {
		return nil, fmt.Errorf("state digest: %w", err)
	}
	for _, e := range payEvents {
		o.events.Emit(ctx, e)
	}
	o.events.Emit(ctx, domain.InvestorPayoutPage{
		Vault:              req.Vault,
		Day:                prog.CurrentDay,
		Page:               req.Page,
		Distributed:        pagePaid,
		CarryOver:          prog.CarryOver,
		InvestorsProcessed: uint64(len(req.Investors)),
		LockedTotal:        lockedTotal,
		EligibleShareBps:   eligibleBps,
		StateDigest:        digest,
		Timestamp:          now,
	})
	if isLast {
		o.events.Emit(ctx, domain.CreatorPayoutDayClosed{
			Vault:            req.Vault,
			Day:              prog.CurrentDay,
			Remainder:        remainder,
			TotalDistributed: prog.DistributedToday,
			TotalClaimed:     prog.ClaimedToday,
			Creator:          req.Creator,
			Timestamp:        now,
		})
	}

	if o.metrics != nil {
		o.metrics.PagesProcessed.Inc()
		o.metrics.InvestorPayoutsTotal.Add(float64(len(payouts)))
		o.metrics.InvestorPayoutLamports.Add(float64(pagePaid))
		if isLast {
			o.metrics.DaysClosed.Inc()
			o.metrics.CreatorPayoutLamports.Add(float64(remainder))
		}
		o.metrics.ObserveProgress(req.Vault, prog.ClaimedToday, prog.DistributedToday, prog.CarryOver)
	}
	o.logger.Printf("vault %s day %d page %d: paid %d to %d investors, carry %d, complete=%t",
		req.Vault, prog.CurrentDay, req.Page, pagePaid, len(payouts), prog.CarryOver, prog.DayComplete)

	return &CrankResult{
		Day:              prog.CurrentDay,
		Page:             req.Page,
		ClaimedQuote:     claim.QuoteAmount,
		Distributed:      pagePaid,
		CarryOver:        prog.CarryOver,
		PayoutCount:      len(payouts),
		DayComplete:      prog.DayComplete,
		CreatorRemainder: remainder,
		StateDigest:      digest,
	}, nil
}

// checkGate enforces the 24h window and pagination ordering. A new day may
// only start at page 1; within a day, page 1 is too early to repeat and
// every other page must be exactly cursor+1.
func checkGate(prog *domain.Progress, page uint64, newDay bool, now int64) error {
	if newDay {
		if page != 1 {
			return fmt.Errorf("%w: new day must start at page 1, got %d", distribution.ErrInvalidPage, page)
		}
		return nil
	}
	if page == 1 {
		wait := prog.LastDistributionTS + domain.DayDuration - now
		return fmt.Errorf("%w: %ds until the next day opens", ErrDistributionTooEarly, wait)
	}
	if prog.DayComplete {
		return fmt.Errorf("%w: day %d", ErrDistributionAlreadyComplete, prog.CurrentDay)
	}
	if page <= prog.PaginationCursor {
		return fmt.Errorf("%w: page %d already processed (cursor %d)", distribution.ErrInvalidPage, page, prog.PaginationCursor)
	}
	if page != prog.PaginationCursor+1 {
		return fmt.Errorf("%w: expected page %d, got %d", distribution.ErrInvalidPage, prog.PaginationCursor+1, page)
	}
	return nil
}

func crankOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, distribution.ErrBaseFeeDetected):
		return "base_fee_abort"
	case errors.Is(err, ErrDistributionTooEarly):
		return "too_early"
	case errors.Is(err, ErrDistributionAlreadyComplete):
		return "already_complete"
	case errors.Is(err, distribution.ErrInvalidPage):
		return "invalid_page"
	default:
		return "error"
	}
}
