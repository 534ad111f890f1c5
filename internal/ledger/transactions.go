package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger_system/internal/domain"
)

// NewTransaction holds the fields of AddTransaction
type NewTransaction struct {
	AccountID     string
	Type          domain.TransactionType
	Category      string
	PaymentMethod string
	Amount        decimal.Decimal
	Date          string
	Notes         string
}

// TransactionPatch lists the fields to change; nil fields are left as they
// are. Setting AccountID moves the transaction to another owned account.
type TransactionPatch struct {
	AccountID     *string
	Type          *domain.TransactionType
	Category      *string
	PaymentMethod *string
	Amount        *decimal.Decimal
	Date          *string
	Notes         *string
}

func (p TransactionPatch) apply(t domain.Transaction) (domain.Transaction, error) {
	if p.AccountID != nil && strings.TrimSpace(*p.AccountID) != "" {
		t.AccountID = strings.TrimSpace(*p.AccountID)
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) != "" {
		t.Category = strings.TrimSpace(*p.Category)
	}
	if p.PaymentMethod != nil && strings.TrimSpace(*p.PaymentMethod) != "" {
		t.PaymentMethod = strings.TrimSpace(*p.PaymentMethod)
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		d, err := domain.ParseDate(*p.Date)
		if err != nil {
			return domain.Transaction{}, err
		}
		t.Date = d
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t, t.Validate()
}

// AddTransaction records a transaction and applies its signed amount to the
// referenced account in the same write.
func (l *Ledger) AddTransaction(ctx context.Context, actor *domain.Actor, in NewTransaction) (tx domain.Transaction, err error) {
	start := time.Now()
	fields := logrus.Fields{"account_id": in.AccountID, "amount": in.Amount.String(), "type": in.Type}
	defer func() { l.observe("add_transaction", start, err, fields) }()

	if err = requireActor(actor); err != nil {
		return domain.Transaction{}, err
	}
	fields["user_id"] = actor.ID
	tx, err = domain.NewTransaction(actor.ID, in.AccountID, in.Type, in.Category, in.PaymentMethod,
		in.Amount, in.Date, in.Notes, l.now())
	if err != nil {
		return domain.Transaction{}, err
	}
	fields["transaction_id"] = tx.ID

	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.loadAccounts(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}
	i := findAccount(accounts, actor.ID, tx.AccountID)
	if i < 0 {
		return domain.Transaction{}, domain.NotFound("account not found")
	}
	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}
	txs = append(txs, tx)
	accounts[i].Apply(tx)
	if err = l.saveLedger(ctx, accounts, txs); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// UpdateTransaction patches a transaction. Its old signed effect is reversed
// on the old account before the new effect is applied to the (possibly
// different) new account, so type flips and account moves stay consistent.
func (l *Ledger) UpdateTransaction(ctx context.Context, actor *domain.Actor, id string, patch TransactionPatch) (tx domain.Transaction, err error) {
	start := time.Now()
	fields := logrus.Fields{"transaction_id": id}
	defer func() { l.observe("update_transaction", start, err, fields) }()

	if err = requireActor(actor); err != nil {
		return domain.Transaction{}, err
	}
	fields["user_id"] = actor.ID

	l.mu.Lock()
	defer l.mu.Unlock()
	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}
	ti := findTransaction(txs, actor.ID, id)
	if ti < 0 {
		return domain.Transaction{}, domain.NotFound("transaction not found")
	}
	old := txs[ti]
	updated, err := patch.apply(old)
	if err != nil {
		return domain.Transaction{}, err
	}
	accounts, err := l.loadAccounts(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}
	newIdx := findAccount(accounts, actor.ID, updated.AccountID)
	if newIdx < 0 {
		return domain.Transaction{}, domain.NotFound("account not found")
	}
	fields["account_id"] = updated.AccountID
	fields["amount"] = updated.Amount.String()
	fields["type"] = updated.Type

	// Old account may be missing for records orphaned before deletes were guarded
	if oldIdx := findAccount(accounts, actor.ID, old.AccountID); oldIdx >= 0 {
		accounts[oldIdx].Reverse(old)
	}
	accounts[newIdx].Apply(updated)
	txs[ti] = updated
	if err = l.saveLedger(ctx, accounts, txs); err != nil {
		return domain.Transaction{}, err
	}
	return updated, nil
}

// DeleteTransaction reverses the transaction's effect and removes it
func (l *Ledger) DeleteTransaction(ctx context.Context, actor *domain.Actor, id string) (err error) {
	start := time.Now()
	fields := logrus.Fields{"transaction_id": id}
	defer func() { l.observe("delete_transaction", start, err, fields) }()

	if err = requireActor(actor); err != nil {
		return err
	}
	fields["user_id"] = actor.ID

	l.mu.Lock()
	defer l.mu.Unlock()
	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return err
	}
	ti := findTransaction(txs, actor.ID, id)
	if ti < 0 {
		return domain.NotFound("transaction not found")
	}
	accounts, err := l.loadAccounts(ctx)
	if err != nil {
		return err
	}
	t := txs[ti]
	fields["account_id"] = t.AccountID
	fields["amount"] = t.Amount.String()
	if ai := findAccount(accounts, actor.ID, t.AccountID); ai >= 0 {
		accounts[ai].Reverse(t)
	}
	txs = append(txs[:ti], txs[ti+1:]...)
	return l.saveLedger(ctx, accounts, txs)
}

// GetTransactions returns copies of the actor's transactions in no
// particular order
func (l *Ledger) GetTransactions(ctx context.Context, actor *domain.Actor) ([]domain.Transaction, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return ownedTransactions(txs, actor.ID), nil
}

// GetTransaction returns one owned transaction
func (l *Ledger) GetTransaction(ctx context.Context, actor *domain.Actor, id string) (domain.Transaction, error) {
	txs, err := l.GetTransactions(ctx, actor)
	if err != nil {
		return domain.Transaction{}, err
	}
	for _, t := range txs {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Transaction{}, domain.NotFound("transaction not found")
}

// TransactionsInRange returns owned transactions dated within [from, to].
// Either bound may be empty to leave that side open.
func (l *Ledger) TransactionsInRange(ctx context.Context, actor *domain.Actor, from, to string) ([]domain.Transaction, error) {
	var lo, hi domain.Date
	var err error
	if strings.TrimSpace(from) != "" {
		if lo, err = domain.ParseDate(from); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(to) != "" {
		if hi, err = domain.ParseDate(to); err != nil {
			return nil, err
		}
	}
	if lo != "" && hi != "" && lo > hi {
		return nil, domain.Invalid("range start %s is after end %s", lo, hi)
	}
	txs, err := l.GetTransactions(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := txs[:0]
	for _, t := range txs {
		// YYYY-MM-DD compares correctly as a string
		if (lo == "" || t.Date >= lo) && (hi == "" || t.Date <= hi) {
			out = append(out, t)
		}
	}
	return out, nil
}

func ownedTransactions(all []domain.Transaction, userID string) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(all))
	for _, t := range all {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}
