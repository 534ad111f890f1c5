// Package analytics derives summaries from a ledger snapshot. Every function
// is pure: it reads its arguments and returns fresh values, so callers may
// run them concurrently on the same snapshot.
package analytics

import (
	"github.com/shopspring/decimal"

	"ledger_system/internal/domain"
)

// NoCategory is the category reported when there is no debit spending
const NoCategory = "N/A"

var hundred = decimal.NewFromInt(100)

// Spending is the credit/debit summary of a transaction set
type Spending struct {
	TotalCredit       decimal.Decimal `json:"total_credit"`
	TotalDebit        decimal.Decimal `json:"total_debit"`
	NetSavings        decimal.Decimal `json:"net_savings"`
	SavingsPercentage decimal.Decimal `json:"savings_percentage"` // Rounded to 2 places, 0 without income
}

// CategoryAmount pairs a category with a summed amount
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// TotalBalance sums the balance of every account
func TotalBalance(accounts []domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// SpendingAnalytics totals credits and debits and derives the savings rate
func SpendingAnalytics(txs []domain.Transaction) Spending {
	s := Spending{TotalCredit: decimal.Zero, TotalDebit: decimal.Zero}
	for _, t := range txs {
		switch t.Type {
		case domain.Credit:
			s.TotalCredit = s.TotalCredit.Add(t.Amount)
		case domain.Debit:
			s.TotalDebit = s.TotalDebit.Add(t.Amount)
		}
	}
	s.NetSavings = s.TotalCredit.Sub(s.TotalDebit)
	s.SavingsPercentage = decimal.Zero
	if s.TotalCredit.IsPositive() {
		s.SavingsPercentage = s.NetSavings.Div(s.TotalCredit).Mul(hundred).Round(2)
	}
	return s
}

// categoryOf falls back to the default category for legacy blank values
func categoryOf(t domain.Transaction) string {
	if t.Category == "" {
		return domain.DefaultCategory
	}
	return t.Category
}

func methodOf(t domain.Transaction) string {
	if t.PaymentMethod == "" {
		return domain.DefaultPaymentMethod
	}
	return t.PaymentMethod
}

// sumDebitsBy groups debit amounts by key and remembers first-seen key order
func sumDebitsBy(txs []domain.Transaction, key func(domain.Transaction) (string, bool)) (map[string]decimal.Decimal, []string) {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, t := range txs {
		if t.Type != domain.Debit {
			continue
		}
		k, ok := key(t)
		if !ok {
			continue
		}
		cur, seen := sums[k]
		if !seen {
			order = append(order, k)
			cur = decimal.Zero
		}
		sums[k] = cur.Add(t.Amount)
	}
	return sums, order
}

// CategoryWiseSpending sums debit amounts per category; credits are ignored
func CategoryWiseSpending(txs []domain.Transaction) map[string]decimal.Decimal {
	sums, _ := sumDebitsBy(txs, func(t domain.Transaction) (string, bool) { return categoryOf(t), true })
	return sums
}

// HighestSpendingCategory returns the category with the largest debit sum.
// Ties keep the category seen first. Without debits it returns
// {NoCategory, 0}.
func HighestSpendingCategory(txs []domain.Transaction) CategoryAmount {
	sums, order := sumDebitsBy(txs, func(t domain.Transaction) (string, bool) { return categoryOf(t), true })
	highest := CategoryAmount{Category: NoCategory, Amount: decimal.Zero}
	for _, c := range order {
		if sums[c].GreaterThan(highest.Amount) {
			highest = CategoryAmount{Category: c, Amount: sums[c]}
		}
	}
	return highest
}

// SpendingByPaymentMethod sums debit amounts per payment method
func SpendingByPaymentMethod(txs []domain.Transaction) map[string]decimal.Decimal {
	sums, _ := sumDebitsBy(txs, func(t domain.Transaction) (string, bool) { return methodOf(t), true })
	return sums
}

// BreakdownRow is one (category, payment method) group of debits
type BreakdownRow struct {
	Category string          `json:"category"`
	Method   string          `json:"method"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// SpendingBreakdown groups debits by category and payment method. Rows come
// in the order each pair was first seen.
func SpendingBreakdown(txs []domain.Transaction) []BreakdownRow {
	type pair struct{ category, method string }
	index := make(map[pair]int)
	rows := []BreakdownRow{}
	for _, t := range txs {
		if t.Type != domain.Debit {
			continue
		}
		p := pair{categoryOf(t), methodOf(t)}
		i, ok := index[p]
		if !ok {
			i = len(rows)
			index[p] = i
			rows = append(rows, BreakdownRow{Category: p.category, Method: p.method, Amount: decimal.Zero})
		}
		rows[i].Amount = rows[i].Amount.Add(t.Amount)
		rows[i].Count++
	}
	return rows
}
