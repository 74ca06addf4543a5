package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage"
)

// ProgressStore implements storage.ProgressStore using PostgreSQL.
type ProgressStore struct {
	pool *Pool
}

// NewProgressStore creates a new ProgressStore.
func NewProgressStore(pool *Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProgressStore = (*ProgressStore)(nil)

// Insert adds the initial progress record for a vault.
func (s *ProgressStore) Insert(ctx context.Context, p *domain.Progress) error {
	query := `
		INSERT INTO progress (
			vault, last_distribution_ts, distributed_today, carry_over,
			pagination_cursor, current_day, claimed_today, day_complete, bump
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query, progressArgs(p)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

// GetByVault retrieves a vault's progress ledger.
func (s *ProgressStore) GetByVault(ctx context.Context, vault string) (*domain.Progress, error) {
	query := `
		SELECT vault, last_distribution_ts, distributed_today, carry_over,
		       pagination_cursor, current_day, claimed_today, day_complete, bump
		FROM progress
		WHERE vault = $1
	`

	p, err := scanProgress(s.pool.QueryRow(ctx, query, vault))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get progress by vault: %w", err)
	}
	return p, nil
}

// Update overwrites a vault's progress ledger.
func (s *ProgressStore) Update(ctx context.Context, p *domain.Progress) error {
	tag, err := s.pool.Exec(ctx, progressUpdateQuery, progressArgs(p)...)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const progressUpdateQuery = `
	UPDATE progress SET
		last_distribution_ts = $2,
		distributed_today = $3,
		carry_over = $4,
		pagination_cursor = $5,
		current_day = $6,
		claimed_today = $7,
		day_complete = $8,
		bump = $9
	WHERE vault = $1
`

// progressArgs returns the positional arguments shared by insert and update.
func progressArgs(p *domain.Progress) []any {
	return []any{
		p.Vault,
		p.LastDistributionTS,
		int64(p.DistributedToday),
		int64(p.CarryOver),
		int64(p.PaginationCursor),
		p.CurrentDay,
		int64(p.ClaimedToday),
		p.DayComplete,
		int16(p.Bump),
	}
}

// scanProgress scans a single row into a Progress.
func scanProgress(row pgx.Row) (*domain.Progress, error) {
	var (
		p           domain.Progress
		distributed int64
		carry       int64
		cursor      int64
		claimed     int64
		bump        int16
	)
	err := row.Scan(
		&p.Vault,
		&p.LastDistributionTS,
		&distributed,
		&carry,
		&cursor,
		&p.CurrentDay,
		&claimed,
		&p.DayComplete,
		&bump,
	)
	if err != nil {
		return nil, err
	}

	p.DistributedToday = uint64(distributed)
	p.CarryOver = uint64(carry)
	p.PaginationCursor = uint64(cursor)
	p.ClaimedToday = uint64(claimed)
	p.Bump = uint8(bump)
	return &p, nil
}
