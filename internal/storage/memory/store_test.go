package memory

import (
	"context"
	"errors"
	"testing"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage"
)

func TestPolicyStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewPolicyStore()

	p := &domain.Policy{Vault: "vault1", InvestorFeeShareBps: 5000, DailyCap: 1000, MinPayoutLamports: 1, Y0: 100}
	if err := s.Insert(ctx, p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := s.GetByVault(ctx, "vault1")
	if err != nil {
		t.Fatalf("GetByVault failed: %v", err)
	}
	if got.InvestorFeeShareBps != 5000 {
		t.Errorf("InvestorFeeShareBps = %d, want 5000", got.InvestorFeeShareBps)
	}

	// Policies are create-once.
	if err := s.Insert(ctx, p); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	if _, err := s.GetByVault(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPolicyStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewPolicyStore()
	_ = s.Insert(ctx, &domain.Policy{Vault: "vault1", DailyCap: 1000})

	got, _ := s.GetByVault(ctx, "vault1")
	got.DailyCap = 9999

	again, _ := s.GetByVault(ctx, "vault1")
	if again.DailyCap != 1000 {
		t.Error("mutating a returned policy must not affect the store")
	}
}

func TestPolicyStore_ListVaults(t *testing.T) {
	ctx := context.Background()
	s := NewPolicyStore()
	_ = s.Insert(ctx, &domain.Policy{Vault: "vaultB"})
	_ = s.Insert(ctx, &domain.Policy{Vault: "vaultA"})

	vaults, err := s.ListVaults(ctx)
	if err != nil {
		t.Fatalf("ListVaults failed: %v", err)
	}
	if len(vaults) != 2 || vaults[0] != "vaultA" || vaults[1] != "vaultB" {
		t.Errorf("ListVaults = %v, want sorted [vaultA vaultB]", vaults)
	}
}

func TestProgressStore_UpdateFlow(t *testing.T) {
	ctx := context.Background()
	s := NewProgressStore()

	p := domain.NewProgress("vault1", 255)
	if err := s.Insert(ctx, p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Insert(ctx, p); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	p.ClaimedToday = 777
	if err := s.Update(ctx, p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := s.GetByVault(ctx, "vault1")
	if err != nil {
		t.Fatalf("GetByVault failed: %v", err)
	}
	if got.ClaimedToday != 777 {
		t.Errorf("ClaimedToday = %d, want 777", got.ClaimedToday)
	}

	if err := s.Update(ctx, domain.NewProgress("missing", 0)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPayoutStore_InsertBulkAndQuery(t *testing.T) {
	ctx := context.Background()
	s := NewPayoutStore()

	batch := []*domain.PayoutRecord{
		{Vault: "vault1", Day: 10, Page: 2, Investor: "invB", Amount: 700},
		{Vault: "vault1", Day: 10, Page: 1, Investor: "invA", Amount: 300},
		{Vault: "vault1", Day: 11, Page: 1, Investor: "invA", Amount: 50},
		{Vault: "vault2", Day: 10, Page: 1, Investor: "invC", Amount: 99},
	}
	if err := s.InsertBulk(ctx, batch); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := s.GetByVaultDay(ctx, "vault1", 10)
	if err != nil {
		t.Fatalf("GetByVaultDay failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d payouts, want 2", len(got))
	}
	if got[0].Page != 1 || got[1].Page != 2 {
		t.Errorf("payouts not ordered by page: %+v", got)
	}
}

func TestCommitter_CommitPage(t *testing.T) {
	ctx := context.Background()
	progressStore := NewProgressStore()
	payoutStore := NewPayoutStore()
	committer := NewCommitter(progressStore, payoutStore)

	p := domain.NewProgress("vault1", 255)
	if err := progressStore.Insert(ctx, p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	p.PaginationCursor = 1
	p.DistributedToday = 1000
	payouts := []*domain.PayoutRecord{
		{Vault: "vault1", Day: 0, Page: 1, Investor: "invA", Amount: 1000},
	}
	if err := committer.CommitPage(ctx, p, payouts); err != nil {
		t.Fatalf("CommitPage failed: %v", err)
	}

	got, _ := progressStore.GetByVault(ctx, "vault1")
	if got.PaginationCursor != 1 || got.DistributedToday != 1000 {
		t.Errorf("progress not committed: %+v", got)
	}
	recorded, _ := payoutStore.GetByVaultDay(ctx, "vault1", 0)
	if len(recorded) != 1 || recorded[0].Amount != 1000 {
		t.Errorf("payouts not committed: %+v", recorded)
	}
}

func TestCommitter_UnknownVaultFails(t *testing.T) {
	ctx := context.Background()
	committer := NewCommitter(NewProgressStore(), NewPayoutStore())

	err := committer.CommitPage(ctx, domain.NewProgress("ghost", 0), nil)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
