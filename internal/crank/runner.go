package crank

import (
	"context"
	"fmt"

	"star-fee-distributor/internal/distribution"
	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/vesting"
)

// RunOptions configures a full-day run for one vault.
type RunOptions struct {
	Vault    string
	Creator  string
	PageSize uint64
}

// RunDay cranks every page of a vault's distribution day: it enumerates the
// vault's streams, snapshots locked balances per page, and cranks pages in
// order until the day closes. Returns the per-page results; on a mid-day
// failure the results of the pages already committed are returned with the
// error, and a later run resumes from the committed cursor.
func (o *Orchestrator) RunDay(ctx context.Context, provider vesting.Provider, opts RunOptions) ([]*CrankResult, error) {
	if opts.PageSize == 0 {
		return nil, fmt.Errorf("%w: page size must be greater than zero", distribution.ErrInvalidPage)
	}

	streams, err := provider.ListStreams(ctx, opts.Vault)
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	total := uint64(len(streams))
	if total == 0 {
		return nil, fmt.Errorf("%w: vault %s has no streams", distribution.ErrNoLockedInvestors, opts.Vault)
	}
	pages := distribution.PageCount(total, opts.PageSize)

	var results []*CrankResult
	for page := uint64(1); page <= pages; page++ {
		start, end, err := distribution.PageBounds(page, opts.PageSize)
		if err != nil {
			return results, err
		}
		if end > total {
			end = total
		}

		now := o.now()
		investors := make([]domain.InvestorRecord, 0, end-start)
		for _, s := range streams[start:end] {
			locked, err := provider.LockedAmount(ctx, s.Address, now)
			if err != nil {
				return results, fmt.Errorf("locked amount for %s: %w", s.Address, err)
			}
			investors = append(investors, domain.InvestorRecord{
				Stream:       s.Address,
				QuoteATA:     s.QuoteATA,
				LockedAmount: locked,
			})
		}

		res, err := o.Crank(ctx, CrankRequest{
			Vault:          opts.Vault,
			Page:           page,
			PageSize:       opts.PageSize,
			TotalInvestors: total,
			Investors:      investors,
			Creator:        opts.Creator,
		})
		if err != nil {
			return results, fmt.Errorf("page %d: %w", page, err)
		}
		results = append(results, res)
	}
	return results, nil
}
