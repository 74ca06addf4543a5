package storage

import (
	"context"

	"star-fee-distributor/internal/domain"
)

// PolicyStore provides access to per-vault policy records. Policies are
// immutable after creation: there is deliberately no update method.
type PolicyStore interface {
	// Insert adds a new policy. Returns ErrDuplicateKey if the vault is
	// already initialized.
	Insert(ctx context.Context, p *domain.Policy) error

	// GetByVault retrieves a vault's policy. Returns ErrNotFound if the
	// vault was never initialized.
	GetByVault(ctx context.Context, vault string) (*domain.Policy, error)

	// ListVaults returns all initialized vault addresses.
	ListVaults(ctx context.Context) ([]string, error)
}

// ProgressStore provides access to per-vault daily distribution ledgers.
type ProgressStore interface {
	// Insert adds the initial progress record for a vault. Returns
	// ErrDuplicateKey if one exists.
	Insert(ctx context.Context, p *domain.Progress) error

	// GetByVault retrieves a vault's progress ledger. Returns ErrNotFound
	// if the vault was never initialized.
	GetByVault(ctx context.Context, vault string) (*domain.Progress, error)

	// Update overwrites a vault's progress ledger. Returns ErrNotFound if
	// the vault was never initialized.
	Update(ctx context.Context, p *domain.Progress) error
}

// PayoutStore provides access to the append-only investor payout audit log.
type PayoutStore interface {
	// InsertBulk appends a batch of payout records.
	InsertBulk(ctx context.Context, payouts []*domain.PayoutRecord) error

	// GetByVaultDay retrieves all payouts settled for a vault on a day,
	// ordered by (page, investor).
	GetByVaultDay(ctx context.Context, vault string, day int64) ([]*domain.PayoutRecord, error)
}

// PageCommitter atomically persists one crank page: the updated progress
// ledger together with the page's payout records. Either both land or
// neither does, so a crashed crank can always be resumed from the last
// committed cursor without double payment.
type PageCommitter interface {
	CommitPage(ctx context.Context, progress *domain.Progress, payouts []*domain.PayoutRecord) error
}
