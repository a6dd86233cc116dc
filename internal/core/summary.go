package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UncategorizedName labels the rollup bucket for transactions without a
// resolvable category.
const UncategorizedName = "Uncategorized"

// DateRange is inclusive on both calendar days: Start is matched from
// 00:00:00 and End up to 23:59:59. A nil bound is open.
type DateRange struct {
	Start *Date `json:"startDate"`
	End   *Date `json:"endDate"`
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d Date) bool {
	if r.Start != nil && d.Before(r.Start.StartOfDay().Time) {
		return false
	}
	if r.End != nil && d.After(r.End.EndOfDay().Time) {
		return false
	}
	return true
}

// Before reports whether d precedes the start of the range.
func (r DateRange) Before(d Date) bool {
	return r.Start != nil && d.Before(r.Start.StartOfDay().Time)
}

// PeriodSummary holds signed totals; TotalExpense is negative or zero.
type PeriodSummary struct {
	OpeningBalance   decimal.Decimal `json:"openingBalance"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	NetBalance       decimal.Decimal `json:"netBalance"`
	ClosingBalance   decimal.Decimal `json:"closingBalance"`
	TransactionCount int             `json:"transactionCount"`
}

// BalanceRow pairs a transaction with the balance right after it.
type BalanceRow struct {
	Transaction    TransactionWithNames `json:"transaction"`
	RunningBalance decimal.Decimal      `json:"runningBalance"`
}

// CategoryRollup totals one category. Uncategorized marks the bucket for
// transactions without a resolvable category, which stays apart from a
// real category that happens to share its name.
type CategoryRollup struct {
	Name          string          `json:"name"`
	Uncategorized bool            `json:"uncategorized"`
	Total         decimal.Decimal `json:"total"`
	Count         int             `json:"count"`
}

type rollupKey struct {
	name          string
	uncategorized bool
}

type CategoryRollups struct {
	Revenue []CategoryRollup `json:"revenue"`
	Expense []CategoryRollup `json:"expense"`
}

// Report is the data handed to statement renderers. They format it and
// compute nothing.
type Report struct {
	Period             DateRange       `json:"period"`
	Summary            PeriodSummary   `json:"summary"`
	RunningBalanceRows []BalanceRow    `json:"runningBalanceRows"`
	CategoryRollups    CategoryRollups `json:"categoryRollups"`
}

// CarriedForwardBalance is the balance as of the start of r: the initial
// balance plus every transaction dated before it. Other filters must not be
// applied to all.
func CarriedForwardBalance(initial decimal.Decimal, all []Transaction, r DateRange) decimal.Decimal {
	balance := initial
	for _, t := range all {
		if r.Before(t.Date) {
			balance = balance.Add(t.Value)
		}
	}
	return balance
}

// Summarize totals a period set. Opening and closing balances are left
// for the caller to fill.
func Summarize(period []TransactionWithNames) PeriodSummary {
	s := PeriodSummary{
		OpeningBalance: decimal.Zero,
		TotalRevenue:   decimal.Zero,
		TotalExpense:   decimal.Zero,
	}
	for _, t := range period {
		switch t.Type {
		case Revenue:
			s.TotalRevenue = s.TotalRevenue.Add(t.Value)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Value)
		}
	}
	s.NetBalance = s.TotalRevenue.Add(s.TotalExpense)
	s.ClosingBalance = s.NetBalance
	s.TransactionCount = len(period)
	return s
}

// RunningBalance sorts a copy of period by date ascending (stable) and folds
// opening forward through it.
func RunningBalance(opening decimal.Decimal, period []TransactionWithNames) []BalanceRow {
	sorted := make([]TransactionWithNames, len(period))
	copy(sorted, period)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	rows := make([]BalanceRow, 0, len(sorted))
	balance := opening
	for _, t := range sorted {
		balance = balance.Add(t.Value)
		rows = append(rows, BalanceRow{Transaction: t, RunningBalance: balance})
	}
	return rows
}

// RollupByCategory groups by resolved category name, separately per type,
// ordered by absolute total descending then name.
func RollupByCategory(period []TransactionWithNames) CategoryRollups {
	revenue := map[rollupKey]*CategoryRollup{}
	expense := map[rollupKey]*CategoryRollup{}
	for _, t := range period {
		key := rollupKey{name: UncategorizedName, uncategorized: true}
		if t.CategoryName != nil {
			key = rollupKey{name: *t.CategoryName}
		}
		bucket := revenue
		if t.Type == Expense {
			bucket = expense
		}
		r, ok := bucket[key]
		if !ok {
			r = &CategoryRollup{Name: key.name, Uncategorized: key.uncategorized, Total: decimal.Zero}
			bucket[key] = r
		}
		r.Total = r.Total.Add(t.Value)
		r.Count++
	}
	return CategoryRollups{Revenue: sortedRollups(revenue), Expense: sortedRollups(expense)}
}

func sortedRollups(m map[rollupKey]*CategoryRollup) []CategoryRollup {
	out := make([]CategoryRollup, 0, len(m))
	for _, r := range m {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Abs().Cmp(out[j].Total.Abs()); c != 0 {
			return c > 0
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return !out[i].Uncategorized && out[j].Uncategorized
	})
	return out
}

// BuildReport derives every report figure from one fetched, unfiltered set.
func BuildReport(initial decimal.Decimal, all []TransactionWithNames, r DateRange) Report {
	opening := initial
	period := make([]TransactionWithNames, 0, len(all))
	for _, t := range all {
		switch {
		case r.Before(t.Date):
			opening = opening.Add(t.Value)
		case r.Contains(t.Date):
			period = append(period, t)
		}
	}

	summary := Summarize(period)
	summary.OpeningBalance = opening
	summary.ClosingBalance = opening.Add(summary.NetBalance)

	return Report{
		Period:             r,
		Summary:            summary,
		RunningBalanceRows: RunningBalance(opening, period),
		CategoryRollups:    RollupByCategory(period),
	}
}
