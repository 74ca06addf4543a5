// Package treasury abstracts the token movement side of a crank: quote fees
// land in a per-vault treasury account and flow out to investor and creator
// destinations. The core only requires that a page's transfers are atomic
// with its state update.
package treasury

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientFunds is returned when a transfer exceeds the source balance.
var ErrInsufficientFunds = errors.New("treasury: insufficient funds")

// Transfer is one token movement from a source account to a destination.
type Transfer struct {
	From   string
	To     string
	Amount uint64
}

// Funder deposits claimed fees into an account. Implemented by Ledger for
// deployments where the claim does not itself move tokens.
type Funder interface {
	Credit(account string, amount uint64)
}

// Sink executes token transfers.
type Sink interface {
	// ApplyBatch executes a batch of transfers all-or-nothing: either every
	// transfer lands or none does.
	ApplyBatch(ctx context.Context, transfers []Transfer) error
}

// Ledger is an in-memory token ledger implementing Sink. It stands in for
// the on-chain token program in tests and single-process deployments.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]uint64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]uint64)}
}

// Compile-time interface checks.
var (
	_ Sink   = (*Ledger)(nil)
	_ Funder = (*Ledger)(nil)
)

// Credit deposits lamports into an account (e.g. claimed fees into the treasury).
func (l *Ledger) Credit(account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Balance returns an account's current balance.
func (l *Ledger) Balance(account string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// ApplyBatch executes transfers under one lock. Balances are pre-checked
// against the net effect of the whole batch, so a failing batch leaves every
// account untouched.
func (l *Ledger) ApplyBatch(_ context.Context, transfers []Transfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Dry run over a scratch view.
	scratch := make(map[string]uint64, len(transfers)*2)
	balance := func(acct string) uint64 {
		if v, ok := scratch[acct]; ok {
			return v
		}
		return l.balances[acct]
	}
	for _, t := range transfers {
		from := balance(t.From)
		if from < t.Amount {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, t.From, from, t.Amount)
		}
		scratch[t.From] = from - t.Amount
		scratch[t.To] = balance(t.To) + t.Amount
	}

	for acct, bal := range scratch {
		l.balances[acct] = bal
	}
	return nil
}
