package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType carries the sign of a transaction
type TransactionType string

const (
	Credit TransactionType = "credit" // Money in
	Debit  TransactionType = "debit"  // Money out
)

// Valid reports whether t is credit or debit
func (t TransactionType) Valid() bool {
	return t == Credit || t == Debit
}

// Categories offered to users when recording a transaction. Other values are
// accepted as well.
var Categories = []string{
	"Food", "Rent", "Travel", "EMI", "Shopping", "Bills",
	"Investment", "Entertainment", "Healthcare", "Education", "Utilities", "Other",
}

// Defaults used when a transaction omits its category or payment method
const (
	DefaultCategory      = "Other"
	DefaultPaymentMethod = "Unknown"
)

// Transaction Model
type Transaction struct {
	ID            string          `json:"id"`                       // Primary key
	UserID        string          `json:"user_id"`                  // Owning user
	AccountID     string          `json:"account_id"`               // Account the balance effect lands on
	Type          TransactionType `json:"type"`                     // credit or debit
	Category      string          `json:"category"`                 // Spending category
	PaymentMethod string          `json:"payment_method,omitempty"` // Cash, card, UPI...
	Amount        decimal.Decimal `json:"amount"`                   // Always positive
	Date          Date            `json:"date"`                     // Calendar date
	Notes         string          `json:"notes"`                    // Free text
	CreatedAt     time.Time       `json:"created_at"`               // Creation time
}

// SignedAmount is +amount for credits and -amount for debits
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == Credit {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Validate checks the fields every stored transaction must satisfy
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return Invalid("transaction type must be credit or debit")
	}
	if !t.Amount.IsPositive() {
		return Invalid("amount must be greater than 0")
	}
	if t.Date == "" {
		return Invalid("date is required")
	}
	if _, err := ParseDate(string(t.Date)); err != nil {
		return err
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return Invalid("account is required")
	}
	return nil
}

// NewTransaction builds and validates a transaction owned by userID
func NewTransaction(userID, accountID string, typ TransactionType, category, paymentMethod string,
	amount decimal.Decimal, date, notes string, now time.Time) (Transaction, error) {
	t := Transaction{
		ID:            NewID(),
		UserID:        userID,
		AccountID:     strings.TrimSpace(accountID),
		Type:          typ,
		Category:      strings.TrimSpace(category),
		PaymentMethod: strings.TrimSpace(paymentMethod),
		Amount:        amount,
		Notes:         notes,
		CreatedAt:     now,
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	if strings.TrimSpace(date) != "" {
		d, err := ParseDate(date)
		if err != nil {
			return Transaction{}, err
		}
		t.Date = d
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}
