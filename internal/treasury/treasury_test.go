package treasury

import (
	"context"
	"errors"
	"testing"
)

func TestLedgerApplyBatch(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	l.Credit("treasury", 1000)

	err := l.ApplyBatch(ctx, []Transfer{
		{From: "treasury", To: "invA", Amount: 300},
		{From: "treasury", To: "invB", Amount: 700},
	})
	if err != nil {
		t.Fatalf("ApplyBatch failed: %v", err)
	}

	if got := l.Balance("treasury"); got != 0 {
		t.Errorf("treasury balance = %d, want 0", got)
	}
	if got := l.Balance("invA"); got != 300 {
		t.Errorf("invA balance = %d, want 300", got)
	}
	if got := l.Balance("invB"); got != 700 {
		t.Errorf("invB balance = %d, want 700", got)
	}
}

func TestLedgerApplyBatch_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	l.Credit("treasury", 500)

	// Second transfer overdraws; the first must not land either.
	err := l.ApplyBatch(ctx, []Transfer{
		{From: "treasury", To: "invA", Amount: 300},
		{From: "treasury", To: "invB", Amount: 300},
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if got := l.Balance("treasury"); got != 500 {
		t.Errorf("treasury balance = %d, want untouched 500", got)
	}
	if got := l.Balance("invA"); got != 0 {
		t.Errorf("invA balance = %d, want 0 after rollback", got)
	}
}

func TestLedgerApplyBatch_ChainedWithinBatch(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	l.Credit("a", 100)

	// b receives then forwards within the same batch.
	err := l.ApplyBatch(ctx, []Transfer{
		{From: "a", To: "b", Amount: 100},
		{From: "b", To: "c", Amount: 100},
	})
	if err != nil {
		t.Fatalf("ApplyBatch failed: %v", err)
	}
	if got := l.Balance("c"); got != 100 {
		t.Errorf("c balance = %d, want 100", got)
	}
}
