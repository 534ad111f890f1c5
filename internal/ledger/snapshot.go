package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"ledger_system/internal/domain"
)

// Snapshot returns the actor's accounts and transactions read under one lock
func (l *Ledger) Snapshot(ctx context.Context, actor *domain.Actor) (Snapshot, error) {
	if err := requireActor(actor); err != nil {
		return Snapshot{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	accounts, err := l.loadAccounts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Accounts:     ownedAccounts(accounts, actor.ID),
		Transactions: ownedTransactions(txs, actor.ID),
	}, nil
}

// Drift describes an account whose stored balance disagrees with its history
type Drift struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Expected  decimal.Decimal `json:"expected"`
}

// VerifyBalances replays every owned account from its initial balance and
// reports the accounts whose stored balance differs. An empty result means
// the ledger is consistent.
func (l *Ledger) VerifyBalances(ctx context.Context, actor *domain.Actor) ([]Drift, error) {
	snap, err := l.Snapshot(ctx, actor)
	if err != nil {
		return nil, err
	}
	expected := make(map[string]decimal.Decimal, len(snap.Accounts))
	for _, a := range snap.Accounts {
		expected[a.ID] = a.InitialBalance
	}
	for _, t := range snap.Transactions {
		if e, ok := expected[t.AccountID]; ok {
			expected[t.AccountID] = e.Add(t.SignedAmount())
		}
	}
	drifts := []Drift{}
	for _, a := range snap.Accounts {
		if !a.Balance.Equal(expected[a.ID]) {
			drifts = append(drifts, Drift{AccountID: a.ID, Balance: a.Balance, Expected: expected[a.ID]})
		}
	}
	return drifts, nil
}
