package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger_system/internal/domain"
	"ledger_system/internal/metrics"
	"ledger_system/internal/store"
)

var (
	alice = &domain.Actor{ID: "user-a", Name: "Alice", Email: "a@x.com"}
	bob   = &domain.Actor{ID: "user-b", Name: "Bob", Email: "b@x.com"}
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(store.NewMemory(), quietLogger(), nil)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ptr[T any](v T) *T { return &v }

func addAccount(t *testing.T, l *Ledger, actor *domain.Actor, name string, initial int64) domain.Account {
	t.Helper()
	a, err := l.AddAccount(context.Background(), actor, NewAccount{BankName: name, AccountType: "Savings", InitialBalance: dec(initial)})
	require.NoError(t, err)
	return a
}

func addTx(t *testing.T, l *Ledger, actor *domain.Actor, accountID string, typ domain.TransactionType, amount int64, category string) domain.Transaction {
	t.Helper()
	tx, err := l.AddTransaction(context.Background(), actor, NewTransaction{
		AccountID: accountID, Type: typ, Category: category, PaymentMethod: "Card",
		Amount: dec(amount), Date: "2024-03-10",
	})
	require.NoError(t, err)
	return tx
}

func balanceOf(t *testing.T, l *Ledger, actor *domain.Actor, id string) decimal.Decimal {
	t.Helper()
	a, err := l.GetAccount(context.Background(), actor, id)
	require.NoError(t, err)
	return a.Balance
}

func assertBalance(t *testing.T, l *Ledger, actor *domain.Actor, id string, want int64) {
	t.Helper()
	got := balanceOf(t, l, actor, id)
	assert.True(t, got.Equal(dec(want)), "balance=%s want=%d", got, want)
}

func assertConsistent(t *testing.T, l *Ledger, actor *domain.Actor) {
	t.Helper()
	drifts, err := l.VerifyBalances(context.Background(), actor)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestRequiresActor(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	_, err := l.AddAccount(ctx, nil, NewAccount{BankName: "Bank1"})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = l.UpdateAccount(ctx, nil, "x", AccountPatch{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.ErrorIs(t, l.DeleteAccount(ctx, nil, "x"), domain.ErrNotAuthenticated)
	_, err = l.AddTransaction(ctx, nil, NewTransaction{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = l.UpdateTransaction(ctx, nil, "x", TransactionPatch{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.ErrorIs(t, l.DeleteTransaction(ctx, nil, "x"), domain.ErrNotAuthenticated)
	_, err = l.GetAccounts(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = l.GetTransactions(ctx, &domain.Actor{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = l.Snapshot(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestAddAccountValidation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	_, err := l.AddAccount(ctx, alice, NewAccount{BankName: "", InitialBalance: dec(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.AddAccount(ctx, alice, NewAccount{BankName: "Bank1", InitialBalance: dec(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	accounts, err := l.GetAccounts(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, accounts, "rejected input must not be persisted")
}

func TestDebitCreditDeleteScenario(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 1000)

	debit := addTx(t, l, alice, acc.ID, domain.Debit, 200, "Food")
	accounts, err := l.GetAccounts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Balance.Equal(dec(800)))
	assert.True(t, accounts[0].InitialBalance.Equal(dec(1000)))

	addTx(t, l, alice, acc.ID, domain.Credit, 500, "Salary")
	assertBalance(t, l, alice, acc.ID, 1300)

	require.NoError(t, l.DeleteTransaction(ctx, alice, debit.ID))
	assertBalance(t, l, alice, acc.ID, 1500)
	assertConsistent(t, l, alice)
}

func TestAddTransactionRejections(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 100)

	cases := []struct {
		name string
		in   NewTransaction
		want error
	}{
		{"zero amount", NewTransaction{AccountID: acc.ID, Type: domain.Debit, Amount: dec(0), Date: "2024-01-01"}, domain.ErrInvalidInput},
		{"missing date", NewTransaction{AccountID: acc.ID, Type: domain.Debit, Amount: dec(5)}, domain.ErrInvalidInput},
		{"bad type", NewTransaction{AccountID: acc.ID, Type: "refund", Amount: dec(5), Date: "2024-01-01"}, domain.ErrInvalidInput},
		{"unknown account", NewTransaction{AccountID: "nope", Type: domain.Debit, Amount: dec(5), Date: "2024-01-01"}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.AddTransaction(ctx, alice, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// Bob cannot post to Alice's account
	_, err := l.AddTransaction(ctx, bob, NewTransaction{AccountID: acc.ID, Type: domain.Debit, Amount: dec(5), Date: "2024-01-01"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assertBalance(t, l, alice, acc.ID, 100)
	txs, err := l.GetTransactions(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestAddThenDeleteRestoresBalance(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 250)
	addTx(t, l, alice, acc.ID, domain.Credit, 75, "Salary")
	before := balanceOf(t, l, alice, acc.ID)

	for _, typ := range []domain.TransactionType{domain.Credit, domain.Debit} {
		tx, err := l.AddTransaction(ctx, alice, NewTransaction{
			AccountID: acc.ID, Type: typ, Amount: decimal.RequireFromString("19.99"), Date: "2024-02-02",
		})
		require.NoError(t, err)
		require.NoError(t, l.DeleteTransaction(ctx, alice, tx.ID))
		assert.True(t, balanceOf(t, l, alice, acc.ID).Equal(before))
	}
}

func TestUpdateTransactionTypeFlip(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 1000)
	tx := addTx(t, l, alice, acc.ID, domain.Debit, 100, "Food")
	before := balanceOf(t, l, alice, acc.ID)

	updated, err := l.UpdateTransaction(ctx, alice, tx.ID, TransactionPatch{Type: ptr(domain.Credit)})
	require.NoError(t, err)
	assert.Equal(t, domain.Credit, updated.Type)

	after := balanceOf(t, l, alice, acc.ID)
	assert.True(t, after.Sub(before).Equal(dec(200)), "delta=%s", after.Sub(before))
	assertConsistent(t, l, alice)
}

func TestUpdateTransactionFields(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 1000)
	tx := addTx(t, l, alice, acc.ID, domain.Debit, 100, "Food")

	updated, err := l.UpdateTransaction(ctx, alice, tx.ID, TransactionPatch{
		Amount:   ptr(dec(300)),
		Category: ptr("Rent"),
		Date:     ptr("2024-04-01"),
		Notes:    ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Rent", updated.Category)
	assert.Equal(t, domain.Date("2024-04-01"), updated.Date)
	assert.Equal(t, "Card", updated.PaymentMethod, "unset fields are kept")
	assertBalance(t, l, alice, acc.ID, 700)

	got, err := l.GetTransaction(ctx, alice, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateTransactionRejectsWithoutSideEffects(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 1000)
	tx := addTx(t, l, alice, acc.ID, domain.Debit, 100, "Food")

	_, err := l.UpdateTransaction(ctx, alice, tx.ID, TransactionPatch{Amount: ptr(dec(-3))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.UpdateTransaction(ctx, alice, tx.ID, TransactionPatch{Type: ptr(domain.TransactionType("x"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.UpdateTransaction(ctx, alice, tx.ID, TransactionPatch{Date: ptr("soon")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.UpdateTransaction(ctx, alice, tx.ID, TransactionPatch{AccountID: ptr("missing")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = l.UpdateTransaction(ctx, alice, "missing", TransactionPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = l.UpdateTransaction(ctx, bob, tx.ID, TransactionPatch{Amount: ptr(dec(1))})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assertBalance(t, l, alice, acc.ID, 900)
	got, err := l.GetTransaction(ctx, alice, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, got)
}

func TestUpdateTransactionMovesAccount(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	from := addAccount(t, l, alice, "Bank1", 1000)
	to := addAccount(t, l, alice, "Bank2", 50)
	tx := addTx(t, l, alice, from.ID, domain.Debit, 100, "Food")

	_, err := l.UpdateTransaction(ctx, alice, tx.ID, TransactionPatch{AccountID: ptr(to.ID), Type: ptr(domain.Credit), Amount: ptr(dec(30))})
	require.NoError(t, err)
	assertBalance(t, l, alice, from.ID, 1000)
	assertBalance(t, l, alice, to.ID, 80)
	assertConsistent(t, l, alice)

	// Bob's account is not a valid destination
	bobs := addAccount(t, l, bob, "BobBank", 0)
	_, err = l.UpdateTransaction(ctx, alice, tx.ID, TransactionPatch{AccountID: ptr(bobs.ID)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assertBalance(t, l, bob, bobs.ID, 0)
}

func TestUpdateAccount(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 10)

	updated, err := l.UpdateAccount(ctx, alice, acc.ID, AccountPatch{BankName: ptr("Bank One"), AccountType: ptr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Bank One", updated.BankName)
	assert.Equal(t, "Savings", updated.AccountType)
	assert.True(t, updated.Balance.Equal(dec(10)))

	_, err = l.UpdateAccount(ctx, bob, acc.ID, AccountPatch{BankName: ptr("Hijack")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAccountPolicy(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 10)
	tx := addTx(t, l, alice, acc.ID, domain.Debit, 5, "Food")

	err := l.DeleteAccount(ctx, alice, acc.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "referenced accounts are refused")
	assert.ErrorIs(t, l.DeleteAccount(ctx, bob, acc.ID), domain.ErrNotFound)
	assert.ErrorIs(t, l.DeleteAccount(ctx, alice, "missing"), domain.ErrNotFound)

	require.NoError(t, l.DeleteTransaction(ctx, alice, tx.ID))
	require.NoError(t, l.DeleteAccount(ctx, alice, acc.ID))
	accounts, err := l.GetAccounts(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.ErrorIs(t, l.DeleteTransaction(ctx, alice, tx.ID), domain.ErrNotFound)
}

func TestOwnershipIsolation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	a := addAccount(t, l, alice, "Bank1", 10)
	b := addAccount(t, l, bob, "Bank2", 20)
	addTx(t, l, alice, a.ID, domain.Debit, 1, "Food")
	addTx(t, l, bob, b.ID, domain.Credit, 2, "Salary")

	snap, err := l.Snapshot(ctx, alice)
	require.NoError(t, err)
	require.Len(t, snap.Accounts, 1)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, a.ID, snap.Accounts[0].ID)

	_, err = l.GetAccount(ctx, alice, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionsInRange(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 1000)
	for _, d := range []string{"2024-01-15", "2024-02-01", "2024-02-29", "2024-03-01"} {
		_, err := l.AddTransaction(ctx, alice, NewTransaction{AccountID: acc.ID, Type: domain.Debit, Amount: dec(1), Date: d})
		require.NoError(t, err)
	}

	got, err := l.TransactionsInRange(ctx, alice, "2024-02-01", "2024-02-29")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = l.TransactionsInRange(ctx, alice, "2024-02-15", "")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = l.TransactionsInRange(ctx, alice, "2024-03-01", "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.TransactionsInRange(ctx, alice, "March", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSnapshotsAreCopies(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 10)

	accounts, err := l.GetAccounts(ctx, alice)
	require.NoError(t, err)
	accounts[0].Balance = dec(999999)
	assertBalance(t, l, alice, acc.ID, 10)
}

// TestBalanceInvariantRandomized drives a random mix of mutations and checks
// the balance invariant after each one.
func TestBalanceInvariantRandomized(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	accounts := []domain.Account{
		addAccount(t, l, alice, "Bank1", 1000),
		addAccount(t, l, alice, "Bank2", 0),
		addAccount(t, l, alice, "Bank3", 12),
	}
	types := []domain.TransactionType{domain.Credit, domain.Debit}
	var live []string

	for i := 0; i < 300; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			amount := decimal.New(int64(rng.Intn(100000)+1), -2)
			tx, err := l.AddTransaction(ctx, alice, NewTransaction{
				AccountID: accounts[rng.Intn(len(accounts))].ID, Type: types[rng.Intn(2)],
				Category: fmt.Sprintf("c%d", rng.Intn(4)), Amount: amount, Date: "2024-05-05",
			})
			require.NoError(t, err)
			live = append(live, tx.ID)
		case op == 1:
			id := live[rng.Intn(len(live))]
			_, err := l.UpdateTransaction(ctx, alice, id, TransactionPatch{
				AccountID: ptr(accounts[rng.Intn(len(accounts))].ID),
				Type:      ptr(types[rng.Intn(2)]),
				Amount:    ptr(decimal.New(int64(rng.Intn(5000)+1), -2)),
			})
			require.NoError(t, err)
		default:
			j := rng.Intn(len(live))
			require.NoError(t, l.DeleteTransaction(ctx, alice, live[j]))
			live = append(live[:j], live[j+1:]...)
		}
		assertConsistent(t, l, alice)
	}
}

func TestConcurrentMutationsKeepInvariant(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	acc := addAccount(t, l, alice, "Bank1", 0)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				tx, err := l.AddTransaction(ctx, alice, NewTransaction{AccountID: acc.ID, Type: domain.Credit, Amount: dec(2), Date: "2024-01-01"})
				if err != nil {
					t.Error(err)
					return
				}
				if i%2 == 0 {
					if err := l.DeleteTransaction(ctx, alice, tx.ID); err != nil {
						t.Error(err)
						return
					}
				}
				if _, err := l.Snapshot(ctx, alice); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	// 8 workers keep 12 of 25 credits each
	assertBalance(t, l, alice, acc.ID, 8*12*2)
	assertConsistent(t, l, alice)
}

type failingStore struct{ store.Store }

func (failingStore) Save(context.Context, ...store.Slot) error { return errors.New("disk full") }

func TestStorageFailureIsNotDomainError(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	l := New(failingStore{store.NewMemory()}, quietLogger(), rec)

	_, err := l.AddAccount(context.Background(), alice, NewAccount{BankName: "Bank1"})
	require.Error(t, err)
	assert.Equal(t, domain.Kind(""), domain.KindOf(err))
	assert.Contains(t, err.Error(), "disk full")

	count, err := testutil.GatherAndCount(reg, "ledger_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
