package analytics

import (
	"github.com/shopspring/decimal"

	"ledger_system/internal/domain"
)

// Report bundles every aggregate for one snapshot
type Report struct {
	TotalBalance     decimal.Decimal            `json:"total_balance"`
	Spending         Spending                   `json:"spending"`
	Categories       map[string]decimal.Decimal `json:"categories"`
	Highest          CategoryAmount             `json:"highest_category"`
	PaymentMethods   map[string]decimal.Decimal `json:"payment_methods"`
	Breakdown        []BreakdownRow             `json:"breakdown"`
	Daily            []Bucket                   `json:"daily"`
	Weekly           []Bucket                   `json:"weekly"`
	Monthly          []Bucket                   `json:"monthly"`
	Quarterly        []Bucket                   `json:"quarterly"`
	AccountCount     int                        `json:"account_count"`
	TransactionCount int                        `json:"transaction_count"`
}

// Summarize computes the full report
func Summarize(accounts []domain.Account, txs []domain.Transaction) Report {
	return Report{
		TotalBalance:     TotalBalance(accounts),
		Spending:         SpendingAnalytics(txs),
		Categories:       CategoryWiseSpending(txs),
		Highest:          HighestSpendingCategory(txs),
		PaymentMethods:   SpendingByPaymentMethod(txs),
		Breakdown:        SpendingBreakdown(txs),
		Daily:            Series(DailySpending(txs)),
		Weekly:           Series(WeeklySpending(txs)),
		Monthly:          Series(MonthlySpending(txs)),
		Quarterly:        Series(QuarterlySpending(txs)),
		AccountCount:     len(accounts),
		TransactionCount: len(txs),
	}
}
