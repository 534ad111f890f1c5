// Package ledger owns accounts and transactions and keeps every account's
// balance equal to its initial balance plus the signed sum of its
// transactions.
//
// Balances are maintained incrementally: each mutation applies or reverses a
// signed delta instead of replaying history. All collections live in shared
// store slots across users, so one RWMutex guards the full
// read-modify-write of every mutation; reads take the read lock and always see
// a state from fully before or fully after a mutation.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ledger_system/internal/domain"
	"ledger_system/internal/metrics"
	"ledger_system/internal/store"
)

// Ledger is the ledger store
type Ledger struct {
	mu      sync.RWMutex
	store   store.Store
	log     logrus.FieldLogger
	metrics *metrics.Recorder
	now     func() time.Time
}

// New returns a ledger over s. log and rec may be nil.
func New(s store.Store, log logrus.FieldLogger, rec *metrics.Recorder) *Ledger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ledger{store: s, log: log, metrics: rec, now: utcNow}
}

// Snapshot is a consistent copy of one user's ledger
type Snapshot struct {
	Accounts     []domain.Account     `json:"accounts"`
	Transactions []domain.Transaction `json:"transactions"`
}

// utcNow drops the monotonic reading so stored and returned records compare equal
func utcNow() time.Time { return time.Now().UTC().Round(0) }

func requireActor(actor *domain.Actor) error {
	if actor == nil || actor.ID == "" {
		return domain.ErrNotAuthenticated
	}
	return nil
}

func (l *Ledger) loadAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if _, err := l.store.Load(ctx, store.KeyAccounts, &accounts); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return accounts, nil
}

func (l *Ledger) loadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if _, err := l.store.Load(ctx, store.KeyTransactions, &txs); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}

// nonNil keeps empty collections serialized as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (l *Ledger) saveAccounts(ctx context.Context, accounts []domain.Account) error {
	if err := l.store.Save(ctx, store.Slot{Key: store.KeyAccounts, Value: nonNil(accounts)}); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

func (l *Ledger) saveLedger(ctx context.Context, accounts []domain.Account, txs []domain.Transaction) error {
	err := l.store.Save(ctx,
		store.Slot{Key: store.KeyAccounts, Value: nonNil(accounts)},
		store.Slot{Key: store.KeyTransactions, Value: nonNil(txs)},
	)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

func findAccount(accounts []domain.Account, userID, id string) int {
	for i := range accounts {
		if accounts[i].ID == id && accounts[i].UserID == userID {
			return i
		}
	}
	return -1
}

func findTransaction(txs []domain.Transaction, userID, id string) int {
	for i := range txs {
		if txs[i].ID == id && txs[i].UserID == userID {
			return i
		}
	}
	return -1
}

// observe records metrics and logs the outcome of a mutation
func (l *Ledger) observe(op string, start time.Time, err error, fields logrus.Fields) {
	l.metrics.Observe(op, start, err)
	entry := l.log.WithFields(fields).WithField("op", op)
	switch {
	case err == nil:
		entry.WithField("timestamp", l.now().Format(time.RFC3339)).Info("Ledger mutation")
	case domain.KindOf(err) != "":
		entry.WithField("error", err.Error()).Warn("Ledger mutation rejected")
	default:
		entry.WithField("error", err.Error()).Error("Ledger mutation failed")
	}
}
