package postgres

import (
	"context"
	"fmt"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage"
)

// Committer implements storage.PageCommitter over a single transaction: the
// progress update and the page's payout inserts land together or not at all.
type Committer struct {
	pool *Pool
}

// NewCommitter creates a new Committer.
func NewCommitter(pool *Pool) *Committer {
	return &Committer{pool: pool}
}

// Compile-time interface check.
var _ storage.PageCommitter = (*Committer)(nil)

// CommitPage persists one crank page atomically.
func (c *Committer) CommitPage(ctx context.Context, progress *domain.Progress, payouts []*domain.PayoutRecord) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin page commit: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, progressUpdateQuery, progressArgs(progress)...)
	if err != nil {
		return fmt.Errorf("commit progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	for _, p := range payouts {
		if _, err := tx.Exec(ctx, payoutInsertQuery, payoutArgs(p)...); err != nil {
			return fmt.Errorf("commit payout for %s: %w", p.Investor, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit page: %w", err)
	}
	return nil
}
