package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SummaryMetrics holds the headline totals computed by the backend.
// The dashboard never recomputes these locally.
type SummaryMetrics struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	TransactionCount int             `json:"transaction_count"`
}

// SpendingByCategory maps a category name to its aggregate spend.
type SpendingByCategory map[string]decimal.Decimal

// CategoryAmount is one row of a sorted spending breakdown.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Sorted returns the breakdown ordered by amount descending, then by name.
func (s SpendingByCategory) Sorted() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(s))
	for name, amount := range s {
		out = append(out, CategoryAmount{Category: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthTotals is the income and expense of a single month.
type MonthTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// TrendsByMonth maps "YYYY-MM" to that month's totals. Map order carries no meaning.
type TrendsByMonth map[string]MonthTotals

// MonthTrend is one entry of a chronologically ordered trends series.
type MonthTrend struct {
	Month string `json:"month"`
	MonthTotals
}

// Months returns the trends sorted chronologically by key.
func (t TrendsByMonth) Months() []MonthTrend {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthTrend, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthTrend{Month: k, MonthTotals: t[k]})
	}
	return out
}

// Latest returns the chronologically last month, if any.
func (t TrendsByMonth) Latest() (MonthTrend, bool) {
	months := t.Months()
	if len(months) == 0 {
		return MonthTrend{}, false
	}
	return months[len(months)-1], true
}

// Merchant is one entry of the server-ranked merchant list.
type Merchant struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// MerchantRanking is ordered by rank; index 0 is the top merchant.
type MerchantRanking []Merchant

// MerchantShare returns the merchant's spend as a percentage of the latest
// month's expense total. ok is false when there is no month or it has no expense.
func MerchantShare(m Merchant, trends TrendsByMonth) (pct decimal.Decimal, ok bool) {
	latest, found := trends.Latest()
	if !found || latest.Expense.IsZero() {
		return decimal.Zero, false
	}
	return m.Value.Div(latest.Expense).Mul(decimal.NewFromInt(100)).Round(1), true
}
