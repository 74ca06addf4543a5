package memory

import (
	"context"
	"sync"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage"
)

// ProgressStore is an in-memory implementation of storage.ProgressStore.
type ProgressStore struct {
	mu       sync.RWMutex
	progress map[string]*domain.Progress
}

// NewProgressStore creates a new in-memory progress store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{progress: make(map[string]*domain.Progress)}
}

// Insert adds the initial progress record. Returns ErrDuplicateKey if one exists.
func (s *ProgressStore) Insert(_ context.Context, p *domain.Progress) error {
	if p == nil || p.Vault == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.progress[p.Vault]; exists {
		return storage.ErrDuplicateKey
	}

	s.progress[p.Vault] = p.Clone()
	return nil
}

// GetByVault retrieves a vault's progress ledger. Returns ErrNotFound if missing.
func (s *ProgressStore) GetByVault(_ context.Context, vault string) (*domain.Progress, error) {
	if vault == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[vault]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p.Clone(), nil
}

// Update overwrites a vault's progress ledger. Returns ErrNotFound if missing.
func (s *ProgressStore) Update(_ context.Context, p *domain.Progress) error {
	if p == nil || p.Vault == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.progress[p.Vault]; !exists {
		return storage.ErrNotFound
	}

	s.progress[p.Vault] = p.Clone()
	return nil
}
