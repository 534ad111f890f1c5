// Package insights turns analytics aggregates into short observations.
package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ledger_system/internal/analytics"
	"ledger_system/internal/domain"
)

// Severity of an insight
type Severity string

const (
	Info       Severity = "info"
	Warning    Severity = "warning"
	Suggestion Severity = "suggestion"
)

// Insight is one observation
type Insight struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Thresholds used by the rules
var (
	FoodShareLimit   = decimal.RequireFromString("0.3") // Food above 30% of spending
	SavingsRateFloor = decimal.NewFromInt(20)           // Savings rate below 20%
	SavingsTarget    = 30                               // Suggested savings rate
)

// FoodCategory is the category the food rule watches
const FoodCategory = "Food"

// Evaluate runs every rule in a fixed order and returns all that fire. An
// empty, non-nil slice means nothing to report.
func Evaluate(s analytics.Spending, highest analytics.CategoryAmount, categories map[string]decimal.Decimal) []Insight {
	out := []Insight{}
	hasIncome := s.TotalCredit.IsPositive()

	if highest.Category != analytics.NoCategory {
		out = append(out, Insight{Info, fmt.Sprintf("Highest spending in %s (%s)", highest.Category, highest.Amount.StringFixed(2))})
	}
	if hasIncome && s.TotalDebit.GreaterThan(s.TotalCredit) {
		out = append(out, Insight{Warning, "Your expenses exceed your income. Consider reducing expenses."})
	}
	if hasIncome {
		out = append(out, Insight{Info, fmt.Sprintf("Savings rate: %s%% of income", s.SavingsPercentage.StringFixed(2))})
	}
	if food, ok := categories[FoodCategory]; ok && food.GreaterThan(s.TotalDebit.Mul(FoodShareLimit)) {
		out = append(out, Insight{Suggestion, "Consider reducing food expenses to optimize budget."})
	}
	if hasIncome && s.SavingsPercentage.LessThan(SavingsRateFloor) {
		out = append(out, Insight{Suggestion, fmt.Sprintf("Try to increase savings by at least 10%% to reach %d%% savings rate.", SavingsTarget)})
	}
	return out
}

// ForTransactions computes the aggregates the rules need and evaluates them
func ForTransactions(txs []domain.Transaction) []Insight {
	return Evaluate(
		analytics.SpendingAnalytics(txs),
		analytics.HighestSpendingCategory(txs),
		analytics.CategoryWiseSpending(txs),
	)
}
