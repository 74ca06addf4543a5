package memory

import (
	"context"
	"sort"
	"sync"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage"
)

// PayoutStore is an in-memory implementation of storage.PayoutStore.
type PayoutStore struct {
	mu      sync.RWMutex
	payouts []*domain.PayoutRecord
}

// NewPayoutStore creates a new in-memory payout store.
func NewPayoutStore() *PayoutStore {
	return &PayoutStore{}
}

// InsertBulk appends a batch of payout records.
func (s *PayoutStore) InsertBulk(_ context.Context, payouts []*domain.PayoutRecord) error {
	for _, p := range payouts {
		if p == nil || p.Vault == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range payouts {
		cp := *p
		s.payouts = append(s.payouts, &cp)
	}
	return nil
}

// GetByVaultDay retrieves a vault's payouts for a day, ordered by (page, investor).
func (s *PayoutStore) GetByVaultDay(_ context.Context, vault string, day int64) ([]*domain.PayoutRecord, error) {
	if vault == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PayoutRecord
	for _, p := range s.payouts {
		if p.Vault == vault && p.Day == day {
			cp := *p
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Page != result[j].Page {
			return result[i].Page < result[j].Page
		}
		return result[i].Investor < result[j].Investor
	})
	return result, nil
}

// Committer is an in-memory storage.PageCommitter over a progress and a
// payout store. Commits are serialized by its own mutex; host-level account
// locking already guarantees at most one in-flight crank per vault.
type Committer struct {
	mu       sync.Mutex
	progress *ProgressStore
	payouts  *PayoutStore
}

// NewCommitter creates a page committer over in-memory stores.
func NewCommitter(progress *ProgressStore, payouts *PayoutStore) *Committer {
	return &Committer{progress: progress, payouts: payouts}
}

// CommitPage persists the updated ledger and the page's payout records.
func (c *Committer) CommitPage(ctx context.Context, progress *domain.Progress, payouts []*domain.PayoutRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.progress.Update(ctx, progress); err != nil {
		return err
	}
	return c.payouts.InsertBulk(ctx, payouts)
}
