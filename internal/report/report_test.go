package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/goals"
	"budget/internal/ledger"
)

func build(t *testing.T, rows [][4]string) *ledger.Ledger {
	t.Helper()
	l := ledger.New()
	for _, r := range rows {
		_, err := l.Add(r[0], r[1], r[2], r[3])
		require.NoError(t, err)
	}
	return l
}

func indexOf(r Report, line string) int {
	for i, l := range r {
		if l == line {
			return i
		}
	}
	return -1
}

func TestCompareToGoals(t *testing.T) {
	l := build(t, [][4]string{
		{"01-01-2025", "Expense", "Food", "120"},
		{"01-02-2025", "Expense", "Rent", "80"},
		{"01-03-2025", "Expense", "Misc", "5"},
		{"01-04-2025", "Income", "Fun", "999"},
	})
	g := goals.New()
	_, _ = g.Add("food", "100")
	_, _ = g.Add("rent", "100")
	_, _ = g.Add("fun", "10")

	cmp := CompareToGoals(l.ExpenseTotalsByCategory(), g)
	require.Len(t, cmp, 3)

	assert.Equal(t, "Food", cmp[0].Category)
	assert.Equal(t, Over, cmp[0].Status)
	assert.Equal(t, "-20", cmp[0].Remaining.String())

	assert.Equal(t, "Rent", cmp[1].Category)
	assert.Equal(t, OnTrack, cmp[1].Status)
	assert.Equal(t, "20", cmp[1].Remaining.String())

	// income does not count as spending
	assert.Equal(t, OnTrack, cmp[2].Status)
	assert.True(t, cmp[2].Actual.IsZero())
}

func TestCompareToGoalsEqualIsOnTrack(t *testing.T) {
	l := build(t, [][4]string{{"01-01-2025", "Expense", "Food", "100"}})
	g := goals.New()
	_, _ = g.Add("Food", "100")

	cmp := CompareToGoals(l.ExpenseTotalsByCategory(), g)
	assert.Equal(t, OnTrack, cmp[0].Status)
	assert.True(t, cmp[0].Remaining.IsZero())
	assert.Nil(t, CompareToGoals(nil, nil))
}

func TestBuildEmptyLedger(t *testing.T) {
	g := goals.New()
	_, _ = g.Add("Food", "1")

	assert.Equal(t, Report{NoDataLine}, Build(ledger.New(), g))
	assert.Equal(t, Report{NoDataLine}, Build(nil, nil))
}

func TestBuildSectionsInOrder(t *testing.T) {
	l := build(t, [][4]string{
		{"01-05-2025", "Income", "Salary", "100"},
		{"01-10-2025", "Expense", "Food", "10"},
		{"02-03-2025", "Expense", "Rent", "40"},
	})
	g := goals.New()
	_, _ = g.Add("Rent", "30")

	r := Build(l, g)

	assert.Equal(t, "Total Income: $100.00", r[0])
	assert.Equal(t, "Total Expenses: $50.00", r[1])
	assert.Equal(t, "Net Balance: $50.00", r[2])

	top := indexOf(r, "Top Spending Categories:")
	goalsIdx := indexOf(r, "--- Budget Goals Report ---")
	breakdown := indexOf(r, "--- Category Breakdown ---")
	trend := indexOf(r, "--- Monthly Trends ---")
	require.True(t, top > 0 && goalsIdx > top && breakdown > goalsIdx && trend > breakdown, "sections out of order: %v", r)

	assert.Equal(t, "  Rent: $40.00", r[top+1])
	assert.Equal(t, "  Food: $10.00", r[top+2])
	assert.Equal(t, "⚠️ Over budget in Rent: Spent $40.00, Goal was $30.00, Remaining budget: $-10.00", r[goalsIdx+1])
	assert.Equal(t, []string{"Salary: $100.00", "Food: $10.00", "Rent: $40.00"}, []string(r[breakdown+1:breakdown+4]))

	table := strings.Join(r[trend+1:], "\n")
	assert.Contains(t, table, "Month")
	assert.Contains(t, table, "2025-01")
	assert.Contains(t, table, "2025-02")
	assert.Contains(t, table, "100.00")
	assert.Contains(t, table, "0.00")
	assert.Less(t, strings.Index(table, "2025-01"), strings.Index(table, "2025-02"))
}

func TestBuildWithoutExpensesOrGoals(t *testing.T) {
	l := build(t, [][4]string{{"01-05-2025", "Income", "Salary", "100"}})

	r := Build(l, goals.New())
	assert.NotEqual(t, -1, indexOf(r, NoExpensesLine))
	assert.NotEqual(t, -1, indexOf(r, NoGoalsLine))
	assert.Equal(t, -1, indexOf(r, "Top Spending Categories:"))
}

func TestSummary(t *testing.T) {
	l := build(t, [][4]string{
		{"01-05-2025", "Income", "Salary", "100"},
		{"01-10-2025", "Expense", "Food", "40"},
		{"01-11-2025", "Expense", "Food", "10"},
	})
	assert.Equal(t, Report{
		"--- Totals Summary ---",
		"Total Income: $100.00",
		"Total Expenses: $50.00",
		"Balance: $50.00",
	}, Summary(l))
	assert.Len(t, Summary(ledger.New()), 1)
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, Report{"a", "", "b"}))
	assert.Equal(t, "a\n\nb\n", buf.String())
}

func TestExportFileAddsExtension(t *testing.T) {
	dir := t.TempDir()

	path, err := ExportFile(filepath.Join(dir, "report"), Report{"x"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))

	path, err = ExportFile(filepath.Join(dir, "report.log"), Report{"y"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.log"), path)

	_, err = ExportFile(filepath.Join(dir, "missing", "r.txt"), Report{"z"})
	assert.Error(t, err)
}
