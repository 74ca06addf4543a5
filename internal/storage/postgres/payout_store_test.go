package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage"
)

func testPayout(vault string, day int64, page uint64, investor string, amount uint64) *domain.PayoutRecord {
	return &domain.PayoutRecord{
		Vault:        vault,
		Day:          day,
		Page:         page,
		Investor:     investor,
		Amount:       amount,
		LockedAmount: amount * 10,
		WeightBps:    2500,
		Timestamp:    1_700_000_000,
	}
}

func TestPayoutStore_InsertBulkAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPayoutStore(pool)

	payouts := []*domain.PayoutRecord{
		testPayout("vault-1", 19676, 2, "ata-c", 300),
		testPayout("vault-1", 19676, 1, "ata-b", 200),
		testPayout("vault-1", 19676, 1, "ata-a", 100),
		testPayout("vault-1", 19677, 1, "ata-a", 999), // other day
	}
	require.NoError(t, store.InsertBulk(ctx, payouts))

	retrieved, err := store.GetByVaultDay(ctx, "vault-1", 19676)
	require.NoError(t, err)
	require.Len(t, retrieved, 3)

	// Ordered by (page, investor).
	assert.Equal(t, "ata-a", retrieved[0].Investor)
	assert.Equal(t, "ata-b", retrieved[1].Investor)
	assert.Equal(t, "ata-c", retrieved[2].Investor)
	assert.Equal(t, uint64(100), retrieved[0].Amount)
}

func TestPayoutStore_InsertBulkEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, NewPayoutStore(pool).InsertBulk(context.Background(), nil))
}

func TestCommitter_CommitPage(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	progressStore := NewProgressStore(pool)
	payoutStore := NewPayoutStore(pool)
	committer := NewCommitter(pool)

	prog := domain.NewProgress("vault-1", 250)
	require.NoError(t, progressStore.Insert(ctx, prog))

	prog.ResetForNewDay(1_700_000_000)
	prog.ClaimedToday = 10_000
	prog.DistributedToday = 4_000
	prog.PaginationCursor = 1
	payouts := []*domain.PayoutRecord{
		testPayout("vault-1", prog.CurrentDay, 1, "ata-a", 1_500),
		testPayout("vault-1", prog.CurrentDay, 1, "ata-b", 2_500),
	}
	require.NoError(t, committer.CommitPage(ctx, prog, payouts))

	retrieved, err := progressStore.GetByVault(ctx, "vault-1")
	require.NoError(t, err)
	assert.Equal(t, prog, retrieved)

	stored, err := payoutStore.GetByVaultDay(ctx, "vault-1", prog.CurrentDay)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestCommitter_CommitPageUnknownVault(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	committer := NewCommitter(pool)

	prog := domain.NewProgress("missing", 0)
	err := committer.CommitPage(ctx, prog, []*domain.PayoutRecord{
		testPayout("missing", 0, 1, "ata-a", 100),
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// The payouts must not have landed either.
	stored, err := NewPayoutStore(pool).GetByVaultDay(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
