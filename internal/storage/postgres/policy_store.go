package postgres

import (
	"context"
	"fmt"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage"
)

// PolicyStore implements storage.PolicyStore using PostgreSQL.
type PolicyStore struct {
	pool *Pool
}

// NewPolicyStore creates a new PolicyStore.
func NewPolicyStore(pool *Pool) *PolicyStore {
	return &PolicyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PolicyStore = (*PolicyStore)(nil)

// Insert adds a new policy. Returns ErrDuplicateKey if the vault exists.
func (s *PolicyStore) Insert(ctx context.Context, p *domain.Policy) error {
	query := `
		INSERT INTO policies (
			vault, investor_fee_share_bps, daily_cap, min_payout_lamports, y0, quote_mint, created_at, bump
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		p.Vault,
		int32(p.InvestorFeeShareBps),
		int64(p.DailyCap),
		int64(p.MinPayoutLamports),
		int64(p.Y0),
		p.QuoteMint,
		p.CreatedAt,
		int16(p.Bump),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

// GetByVault retrieves a vault's policy. Returns ErrNotFound if not exists.
func (s *PolicyStore) GetByVault(ctx context.Context, vault string) (*domain.Policy, error) {
	query := `
		SELECT vault, investor_fee_share_bps, daily_cap, min_payout_lamports, y0, quote_mint, created_at, bump
		FROM policies
		WHERE vault = $1
	`

	var (
		p        domain.Policy
		shareBps int32
		dailyCap int64
		minOut   int64
		y0       int64
		bump     int16
	)
	err := s.pool.QueryRow(ctx, query, vault).Scan(
		&p.Vault,
		&shareBps,
		&dailyCap,
		&minOut,
		&y0,
		&p.QuoteMint,
		&p.CreatedAt,
		&bump,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get policy by vault: %w", err)
	}

	p.InvestorFeeShareBps = uint16(shareBps)
	p.DailyCap = uint64(dailyCap)
	p.MinPayoutLamports = uint64(minOut)
	p.Y0 = uint64(y0)
	p.Bump = uint8(bump)
	return &p, nil
}

// ListVaults returns all initialized vault addresses in insertion order.
func (s *PolicyStore) ListVaults(ctx context.Context) ([]string, error) {
	query := `SELECT vault FROM policies ORDER BY created_at ASC, vault ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	defer rows.Close()

	var vaults []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan vault row: %w", err)
		}
		vaults = append(vaults, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault rows: %w", err)
	}
	return vaults, nil
}
