package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage"
)

// PayoutStore implements storage.PayoutStore using PostgreSQL.
type PayoutStore struct {
	pool *Pool
}

// NewPayoutStore creates a new PayoutStore.
func NewPayoutStore(pool *Pool) *PayoutStore {
	return &PayoutStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PayoutStore = (*PayoutStore)(nil)

const payoutInsertQuery = `
	INSERT INTO payouts (
		vault, day, page, investor, amount, locked_amount, weight_bps, ts
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// InsertBulk appends a batch of payout records in one round trip.
func (s *PayoutStore) InsertBulk(ctx context.Context, payouts []*domain.PayoutRecord) error {
	if len(payouts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range payouts {
		batch.Queue(payoutInsertQuery, payoutArgs(p)...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range payouts {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert payout batch: %w", err)
		}
	}
	return nil
}

// GetByVaultDay retrieves all payouts for a vault on a day, ordered by
// (page, investor).
func (s *PayoutStore) GetByVaultDay(ctx context.Context, vault string, day int64) ([]*domain.PayoutRecord, error) {
	query := `
		SELECT vault, day, page, investor, amount, locked_amount, weight_bps, ts
		FROM payouts
		WHERE vault = $1 AND day = $2
		ORDER BY page ASC, investor ASC
	`

	rows, err := s.pool.Query(ctx, query, vault, day)
	if err != nil {
		return nil, fmt.Errorf("get payouts by vault day: %w", err)
	}
	defer rows.Close()

	var payouts []*domain.PayoutRecord
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payout row: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payout rows: %w", err)
	}
	return payouts, nil
}

func payoutArgs(p *domain.PayoutRecord) []any {
	return []any{
		p.Vault,
		p.Day,
		int64(p.Page),
		p.Investor,
		int64(p.Amount),
		int64(p.LockedAmount),
		int64(p.WeightBps),
		p.Timestamp,
	}
}

func scanPayout(row pgx.Row) (*domain.PayoutRecord, error) {
	var (
		p      domain.PayoutRecord
		page   int64
		amount int64
		locked int64
		weight int64
	)
	err := row.Scan(
		&p.Vault,
		&p.Day,
		&page,
		&p.Investor,
		&amount,
		&locked,
		&weight,
		&p.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	p.Page = uint64(page)
	p.Amount = uint64(amount)
	p.LockedAmount = uint64(locked)
	p.WeightBps = uint64(weight)
	return &p, nil
}
