package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledger_system/internal/domain"
)

// Period selects how debits are bucketed over time
type Period string

const (
	Daily     Period = "daily"     // YYYY-MM-DD
	Weekly    Period = "weekly"    // Sunday starting the week, YYYY-MM-DD
	Monthly   Period = "monthly"   // YYYY-MM
	Quarterly Period = "quarterly" // YYYY-Q1..Q4
)

// Periods lists every supported period
var Periods = []Period{Daily, Weekly, Monthly, Quarterly}

// ParsePeriod accepts a period name in any case
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	return "", domain.Invalid("unknown period %q: must be daily, weekly, monthly or quarterly", s)
}

// BucketKey returns the bucket a date falls into
func BucketKey(p Period, d domain.Date) (string, error) {
	t, err := d.Time()
	if err != nil {
		return "", err
	}
	switch p {
	case Daily:
		return t.Format(domain.DateLayout), nil
	case Weekly:
		return t.AddDate(0, 0, -int(t.Weekday())).Format(domain.DateLayout), nil
	case Monthly:
		return t.Format("2006-01"), nil
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter(t)), nil
	default:
		return "", domain.Invalid("unknown period %q", p)
	}
}

func quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// SpendingByPeriod sums debit amounts per bucket. Empty buckets are absent and
// transactions with unreadable dates are skipped.
func SpendingByPeriod(txs []domain.Transaction, p Period) map[string]decimal.Decimal {
	sums, _ := sumDebitsBy(txs, func(t domain.Transaction) (string, bool) {
		k, err := BucketKey(p, t.Date)
		return k, err == nil
	})
	return sums
}

// DailySpending buckets debits by calendar date
func DailySpending(txs []domain.Transaction) map[string]decimal.Decimal {
	return SpendingByPeriod(txs, Daily)
}

// WeeklySpending buckets debits by the Sunday that starts their week
func WeeklySpending(txs []domain.Transaction) map[string]decimal.Decimal {
	return SpendingByPeriod(txs, Weekly)
}

// MonthlySpending buckets debits by YYYY-MM
func MonthlySpending(txs []domain.Transaction) map[string]decimal.Decimal {
	return SpendingByPeriod(txs, Monthly)
}

// QuarterlySpending buckets debits by YYYY-Qn
func QuarterlySpending(txs []domain.Transaction) map[string]decimal.Decimal {
	return SpendingByPeriod(txs, Quarterly)
}

// Bucket is one point of a time series
type Bucket struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
}

// Series orders buckets by key, which is chronological for every period
func Series(sums map[string]decimal.Decimal) []Bucket {
	out := make([]Bucket, 0, len(sums))
	for k, v := range sums {
		out = append(out, Bucket{Key: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
