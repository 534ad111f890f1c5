package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger_system/internal/domain"
)

// NewAccount holds the fields of AddAccount
type NewAccount struct {
	BankName       string
	AccountType    string
	InitialBalance decimal.Decimal
}

// AccountPatch updates display fields. Nil or blank fields are left unchanged;
// balances cannot be set through a patch.
type AccountPatch struct {
	BankName    *string
	AccountType *string
}

// AddAccount creates an account whose balance starts at the initial balance
func (l *Ledger) AddAccount(ctx context.Context, actor *domain.Actor, in NewAccount) (acc domain.Account, err error) {
	start := time.Now()
	fields := logrus.Fields{"bank_name": in.BankName, "amount": in.InitialBalance.String()}
	defer func() { l.observe("add_account", start, err, fields) }()

	if err = requireActor(actor); err != nil {
		return domain.Account{}, err
	}
	fields["user_id"] = actor.ID
	acc, err = domain.NewAccount(actor.ID, in.BankName, in.AccountType, in.InitialBalance, l.now())
	if err != nil {
		return domain.Account{}, err
	}
	fields["account_id"] = acc.ID

	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.loadAccounts(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	accounts = append(accounts, acc)
	if err = l.saveAccounts(ctx, accounts); err != nil {
		return domain.Account{}, err
	}
	return acc, nil
}

// UpdateAccount changes the bank name and/or account type
func (l *Ledger) UpdateAccount(ctx context.Context, actor *domain.Actor, id string, patch AccountPatch) (acc domain.Account, err error) {
	start := time.Now()
	fields := logrus.Fields{"account_id": id}
	defer func() { l.observe("update_account", start, err, fields) }()

	if err = requireActor(actor); err != nil {
		return domain.Account{}, err
	}
	fields["user_id"] = actor.ID

	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.loadAccounts(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	i := findAccount(accounts, actor.ID, id)
	if i < 0 {
		return domain.Account{}, domain.NotFound("account not found")
	}
	if patch.BankName != nil && strings.TrimSpace(*patch.BankName) != "" {
		accounts[i].BankName = strings.TrimSpace(*patch.BankName)
	}
	if patch.AccountType != nil && strings.TrimSpace(*patch.AccountType) != "" {
		accounts[i].AccountType = strings.TrimSpace(*patch.AccountType)
	}
	if err = l.saveAccounts(ctx, accounts); err != nil {
		return domain.Account{}, err
	}
	return accounts[i], nil
}

// DeleteAccount removes an account. Accounts still referenced by a
// transaction are refused; delete or move those transactions first.
func (l *Ledger) DeleteAccount(ctx context.Context, actor *domain.Actor, id string) (err error) {
	start := time.Now()
	fields := logrus.Fields{"account_id": id}
	defer func() { l.observe("delete_account", start, err, fields) }()

	if err = requireActor(actor); err != nil {
		return err
	}
	fields["user_id"] = actor.ID

	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.loadAccounts(ctx)
	if err != nil {
		return err
	}
	i := findAccount(accounts, actor.ID, id)
	if i < 0 {
		return domain.NotFound("account not found")
	}
	txs, err := l.loadTransactions(ctx)
	if err != nil {
		return err
	}
	refs := 0
	for _, t := range txs {
		if t.AccountID == id {
			refs++
		}
	}
	if refs > 0 {
		return domain.Invalid("account still has %d transaction(s)", refs)
	}
	accounts = append(accounts[:i], accounts[i+1:]...)
	return l.saveAccounts(ctx, accounts)
}

// GetAccounts returns copies of the actor's accounts in no particular order
func (l *Ledger) GetAccounts(ctx context.Context, actor *domain.Actor) ([]domain.Account, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	accounts, err := l.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return ownedAccounts(accounts, actor.ID), nil
}

// GetAccount returns one owned account
func (l *Ledger) GetAccount(ctx context.Context, actor *domain.Actor, id string) (domain.Account, error) {
	accounts, err := l.GetAccounts(ctx, actor)
	if err != nil {
		return domain.Account{}, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Account{}, domain.NotFound("account not found")
}

func ownedAccounts(all []domain.Account, userID string) []domain.Account {
	out := make([]domain.Account, 0, len(all))
	for _, a := range all {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}
