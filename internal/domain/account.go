package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account Model
type Account struct {
	ID             string          `json:"id"`              // Primary key
	UserID         string          `json:"user_id"`         // Owning user
	BankName       string          `json:"bank_name"`       // Display name of the bank
	AccountType    string          `json:"account_type"`    // Savings, current, credit card...
	Balance        decimal.Decimal `json:"balance"`         // Current balance
	InitialBalance decimal.Decimal `json:"initial_balance"` // Fixed at creation
	CreatedAt      time.Time       `json:"created_at"`      // Creation time
}

// NewAccount validates the fields and returns an account whose balance equals
// its initial balance.
func NewAccount(userID, bankName, accountType string, initial decimal.Decimal, now time.Time) (Account, error) {
	bankName = strings.TrimSpace(bankName)
	if bankName == "" {
		return Account{}, Invalid("bank name is required")
	}
	if initial.IsNegative() {
		return Account{}, Invalid("initial balance must not be negative")
	}
	return Account{
		ID:             NewID(),
		UserID:         userID,
		BankName:       bankName,
		AccountType:    strings.TrimSpace(accountType),
		Balance:        initial,
		InitialBalance: initial,
		CreatedAt:      now,
	}, nil
}

// Apply adds the transaction's signed effect to the balance
func (a *Account) Apply(t Transaction) {
	a.Balance = a.Balance.Add(t.SignedAmount())
}

// Reverse removes the transaction's signed effect from the balance
func (a *Account) Reverse(t Transaction) {
	a.Balance = a.Balance.Sub(t.SignedAmount())
}
