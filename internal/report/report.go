// Package report turns the ledger and goals into plain text lines.
//
// A Report is rebuilt on every call and never persisted; it can be written
// verbatim to a file or published.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"budget/internal/core"
	"budget/internal/goals"
	"budget/internal/ledger"
)

const (
	NoDataLine     = "No data available to generate a report."
	NoExpensesLine = "No expenses recorded."
	NoGoalsLine    = "No budget goals set. Use 'Manage Budget Goals' to create some."
)

// Report is an ordered sequence of text lines.
type Report []string

// String joins the lines with newlines.
func (r Report) String() string {
	return strings.Join(r, "\n")
}

// Build composes the full report. Sections appear in a fixed order: totals,
// top spending categories, budget goals, category breakdown, monthly trend.
// An empty ledger yields only NoDataLine.
func Build(l *ledger.Ledger, g *goals.Store) Report {
	if l == nil || l.IsEmpty() {
		return Report{NoDataLine}
	}

	var r Report
	r = append(r, totalsSection(l.TotalsByType())...)
	expenses := l.ExpenseTotalsByCategory()
	r = append(r, topSpendingSection(expenses)...)
	r = append(r, goalsSection(CompareToGoals(expenses, g))...)
	r = append(r, breakdownSection(l.TotalsByCategory())...)
	r = append(r, trendSection(l.MonthlyTrend())...)
	return r
}

// Summary is the short totals view shown by the "View Budget Summary" menu entry.
func Summary(l *ledger.Ledger) Report {
	if l == nil || l.IsEmpty() {
		return Report{"No data loaded. Please import a CSV first."}
	}
	t := l.TotalsByType()
	return Report{
		"--- Totals Summary ---",
		"Total Income: " + t.Income.Dollars(),
		"Total Expenses: " + t.Expense.Dollars(),
		"Balance: " + t.Net().Dollars(),
	}
}

func totalsSection(t ledger.TypeTotals) []string {
	return []string{
		"Total Income: " + t.Income.Dollars(),
		"Total Expenses: " + t.Expense.Dollars(),
		"Net Balance: " + t.Net().Dollars(),
	}
}

func topSpendingSection(expenses []ledger.CategoryTotal) []string {
	if len(expenses) == 0 {
		return []string{"", NoExpensesLine}
	}
	lines := []string{"", "Top Spending Categories:"}
	for _, ct := range ledger.SortDescending(expenses) {
		lines = append(lines, fmt.Sprintf("  %s: %s", ct.Category, ct.Amount.Dollars()))
	}
	return lines
}

func goalsSection(cmp []GoalComparison) []string {
	if len(cmp) == 0 {
		return []string{"", NoGoalsLine}
	}
	lines := []string{"", "--- Budget Goals Report ---"}
	for _, c := range cmp {
		lines = append(lines, GoalLine(c))
	}
	return lines
}

// GoalLine renders one goal comparison.
func GoalLine(c GoalComparison) string {
	if c.Status == Over {
		return fmt.Sprintf("⚠️ Over budget in %s: Spent %s, Goal was %s, Remaining budget: %s",
			c.Category, c.Actual.Dollars(), c.Goal.Dollars(), c.Remaining.Dollars())
	}
	return fmt.Sprintf("✅ On track in %s: Spent %s, Remaining budget: %s",
		c.Category, c.Actual.Dollars(), c.Remaining.Dollars())
}

func breakdownSection(totals []ledger.CategoryTotal) []string {
	lines := []string{"", "--- Category Breakdown ---"}
	for _, ct := range totals {
		lines = append(lines, fmt.Sprintf("%s: %s", ct.Category, ct.Amount.Dollars()))
	}
	return lines
}

func trendSection(trend []ledger.MonthTotals) []string {
	lines := []string{"", "--- Monthly Trends ---"}
	return append(lines, TrendTable(trend)...)
}

// TrendTable renders the month x type grid, one string per table row.
func TrendTable(trend []ledger.MonthTotals) []string {
	rows := make([][]string, 0, len(trend))
	for _, m := range trend {
		rows = append(rows, []string{m.Month.String(), fixed(m.Expense), fixed(m.Income)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Month", string(core.Expense), string(core.Income)).
		Rows(rows...)
	return strings.Split(t.String(), "\n")
}

func fixed(a core.Amount) string {
	return a.StringFixed(2)
}
