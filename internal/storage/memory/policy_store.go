package memory

import (
	"context"
	"sort"
	"sync"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage"
)

// PolicyStore is an in-memory implementation of storage.PolicyStore.
type PolicyStore struct {
	mu       sync.RWMutex
	policies map[string]*domain.Policy
}

// NewPolicyStore creates a new in-memory policy store.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{policies: make(map[string]*domain.Policy)}
}

// Insert adds a new policy. Returns ErrDuplicateKey if the vault exists.
func (s *PolicyStore) Insert(_ context.Context, p *domain.Policy) error {
	if p == nil || p.Vault == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[p.Vault]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *p
	s.policies[p.Vault] = &cp
	return nil
}

// GetByVault retrieves a vault's policy. Returns ErrNotFound if missing.
func (s *PolicyStore) GetByVault(_ context.Context, vault string) (*domain.Policy, error) {
	if vault == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[vault]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := *p
	return &cp, nil
}

// ListVaults returns all initialized vault addresses, sorted.
func (s *PolicyStore) ListVaults(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vaults := make([]string, 0, len(s.policies))
	for vault := range s.policies {
		vaults = append(vaults, vault)
	}
	sort.Strings(vaults)
	return vaults, nil
}
