package ledger

import (
	"sort"

	"budget/internal/core"
)

// CategoryTotal represents an amount aggregated by category name.
type CategoryTotal struct {
	Category string
	Amount   core.Amount
}

// TypeTotals holds the sum of amounts per transaction type.
type TypeTotals struct {
	Income  core.Amount
	Expense core.Amount
}

// Net is income minus expenses. It may be negative.
func (t TypeTotals) Net() core.Amount {
	return t.Income.Sub(t.Expense)
}

// MonthTotals is one row of the month x type trend table.
type MonthTotals struct {
	Month   core.Month
	Income  core.Amount
	Expense core.Amount
}

// TotalsByType sums amounts for Income and Expense. Rows carrying any other
// type (possible after a CSV import) count toward neither.
func (l *Ledger) TotalsByType() TypeTotals {
	var out TypeTotals
	for _, t := range l.items {
		switch t.Type {
		case core.Income:
			out.Income = out.Income.Add(t.Amount)
		case core.Expense:
			out.Expense = out.Expense.Add(t.Amount)
		}
	}
	return out
}

// TotalsByCategory sums amounts per category across all types, in the
// order each category first appears.
func (l *Ledger) TotalsByCategory() []CategoryTotal {
	return groupByCategory(l.items, func(core.Transaction) bool { return true })
}

// ExpenseTotalsByCategory sums Expense amounts per category, in first-seen order.
func (l *Ledger) ExpenseTotalsByCategory() []CategoryTotal {
	return groupByCategory(l.items, func(t core.Transaction) bool { return t.Type == core.Expense })
}

// MonthlyTrend sums amounts per calendar month and type. Months are ordered
// chronologically and a type without transactions in a month reads as zero.
func (l *Ledger) MonthlyTrend() []MonthTotals {
	idx := make(map[core.Month]int)
	var out []MonthTotals
	for _, t := range l.items {
		m := t.Date.Month()
		i, ok := idx[m]
		if !ok {
			i = len(out)
			idx[m] = i
			out = append(out, MonthTotals{Month: m})
		}
		switch t.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(t.Amount)
		case core.Expense:
			out[i].Expense = out[i].Expense.Add(t.Amount)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Month.Before(out[b].Month) })
	return out
}

// SortDescending orders totals by amount, largest first. Ties keep their
// relative order.
func SortDescending(totals []CategoryTotal) []CategoryTotal {
	out := append([]CategoryTotal(nil), totals...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	return out
}

// Lookup returns the total for category, or zero when absent.
func Lookup(totals []CategoryTotal, category string) core.Amount {
	for _, ct := range totals {
		if ct.Category == category {
			return ct.Amount
		}
	}
	return core.Zero
}

func groupByCategory(items []core.Transaction, keep func(core.Transaction) bool) []CategoryTotal {
	idx := make(map[string]int)
	var out []CategoryTotal
	for _, t := range items {
		if !keep(t) {
			continue
		}
		i, ok := idx[t.Category]
		if !ok {
			i = len(out)
			idx[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category, Amount: core.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}
