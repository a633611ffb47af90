package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/session"
	"budget/internal/sheets/memory"
)

type fakePublisher struct {
	published [][]string
	err       error
	closed    bool
}

func (p *fakePublisher) PublishReport(_ context.Context, lines []string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, lines)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func newTracker(t *testing.T) (*Tracker, *session.FileStore) {
	t.Helper()
	fs := session.NewFileStore(t.TempDir())
	return NewTracker(fs, fs, nil, nil, nil), fs
}

func TestTrackerSaveRefusesEmptySession(t *testing.T) {
	tr, fs := newTracker(t)

	assert.ErrorIs(t, tr.Save(context.Background()), ErrNothingToSave)
	_, err := os.Stat(fs.JSONPath())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTrackerSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	tr, fs := newTracker(t)

	_, err := tr.AddTransaction("01-02-2025", "Expense", "Food", "10")
	require.NoError(t, err)
	_, err = tr.AddGoal("food", "50")
	require.NoError(t, err)
	require.NoError(t, tr.Save(ctx))

	other := NewTracker(fs, fs, nil, nil, nil)
	require.NoError(t, other.Load(ctx))
	assert.Equal(t, 1, other.Transactions().Len())
	assert.Equal(t, 1, other.Goals().Len())
}

func TestTrackerLoadKeepsUsableSessionOnFormatError(t *testing.T) {
	tr, fs := newTracker(t)
	require.NoError(t, os.WriteFile(fs.JSONPath(), []byte("{"), 0o644))

	err := tr.Load(context.Background())
	var fe *session.FormatError
	require.ErrorAs(t, err, &fe)
	assert.NotNil(t, tr.Goals())
	assert.True(t, tr.Transactions().IsEmpty())
}

func TestTrackerImport(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(good, []byte("date,TYPE,Category,amount\n01-01-2025,Income,Pay,5\n01-02-2025,Gift,Aunt,3\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("Date,Type,Category\n01-01-2025,Income,Pay\n"), 0o644))

	tr, _ := newTracker(t)

	res, err := tr.Import(good)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.True(t, res.HasTypeWarning())
	assert.Equal(t, 2, tr.Transactions().Len())

	// unreadable file keeps the current data
	_, err = tr.Import(filepath.Join(dir, "missing.csv"))
	var ioErr *session.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, 2, tr.Transactions().Len())

	// missing column resets to empty
	_, err = tr.Import(bad)
	var mc *session.MissingColumnsError
	require.ErrorAs(t, err, &mc)
	assert.True(t, tr.Transactions().IsEmpty())
}

func TestTrackerImportKeepsLedgerOnUnreadableFile(t *testing.T) {
	// a directory opens but cannot be read as CSV
	broken := t.TempDir()

	tr, _ := newTracker(t)
	_, err := tr.AddTransaction("01-01-2025", "Income", "Pay", "100")
	require.NoError(t, err)

	_, err = tr.Import(broken)
	require.Error(t, err)
	assert.Equal(t, 1, tr.Transactions().Len())
	got, err := tr.Transactions().Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Pay", got.Category)
}

func TestTrackerExportCSV(t *testing.T) {
	ctx := context.Background()
	tr, fs := newTracker(t)

	_, err := tr.ExportCSV(ctx)
	assert.ErrorIs(t, err, ErrNoTransactions)

	_, err = tr.AddTransaction("01-02-2025", "Income", "Pay", "1")
	require.NoError(t, err)
	path, err := tr.ExportCSV(ctx)
	require.NoError(t, err)
	assert.Equal(t, fs.CSVPath(), path)
	_, err = os.Stat(fs.JSONPath())
	assert.True(t, errors.Is(err, os.ErrNotExist), "export must not write the JSON file")
}

func TestTrackerEditAndDelete(t *testing.T) {
	tr, _ := newTracker(t)
	_, err := tr.AddTransaction("01-02-2025", "Income", "Pay", "1")
	require.NoError(t, err)

	_, err = tr.EditTransaction(1, "bad", "", "", "")
	require.Error(t, err)
	tx, err := tr.EditTransaction(1, "01-03-2025", "income", "Salary", "2")
	require.NoError(t, err)
	assert.Equal(t, "Salary", tx.Category)
	assert.Equal(t, "Income", tx.Type.String())

	_, err = tr.DeleteTransaction(2)
	require.Error(t, err)
	_, err = tr.DeleteTransaction(1)
	require.NoError(t, err)
	assert.True(t, tr.Transactions().IsEmpty())

	_, err = tr.AddGoal("fun", "5")
	require.NoError(t, err)
	g, err := tr.EditGoal(1, "games", "")
	require.NoError(t, err)
	assert.Equal(t, "Games", g.Category)
	_, err = tr.DeleteGoal(1)
	require.NoError(t, err)
	assert.True(t, tr.Goals().IsEmpty())
}

func TestTrackerReports(t *testing.T) {
	tr, _ := newTracker(t)
	assert.Len(t, tr.Report(), 1)

	_, err := tr.AddTransaction("01-02-2025", "Expense", "Food", "3")
	require.NoError(t, err)
	assert.Equal(t, "--- Totals Summary ---", tr.Summary()[0])

	path, err := tr.SaveReport(tr.Report(), filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	assert.Equal(t, ".txt", filepath.Ext(path))
}

func TestTrackerPublishReport(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)
	assert.False(t, tr.PublishingEnabled())
	assert.ErrorIs(t, tr.PublishReport(ctx, tr.Report()), ErrPublishingDisabled)

	pub := &fakePublisher{}
	fs := session.NewFileStore(t.TempDir())
	tr = NewTracker(fs, fs, pub, nil, nil)
	require.NoError(t, tr.PublishReport(ctx, tr.Report()))
	require.Len(t, pub.published, 1)

	pub.err = errors.New("broker down")
	assert.ErrorContains(t, tr.PublishReport(ctx, tr.Report()), "broker down")

	cleaned := false
	tr.OnClose(func() error { cleaned = true; return nil })
	require.NoError(t, tr.Close())
	assert.True(t, pub.closed)
	assert.True(t, cleaned)
}

func TestTrackerSyncSheets(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)
	_, err := tr.SyncSheets(ctx)
	assert.ErrorIs(t, err, ErrSheetsDisabled)

	exp := memory.New()
	fs := session.NewFileStore(t.TempDir())
	tr = NewTracker(fs, fs, nil, exp, nil)
	assert.True(t, tr.SheetsEnabled())

	_, err = tr.SyncSheets(ctx)
	assert.ErrorIs(t, err, ErrNoTransactions)

	_, err = tr.AddTransaction("01-02-2025", "Expense", "Food", "3")
	require.NoError(t, err)
	ref, err := tr.SyncSheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mem!A1:D2", ref)
	assert.Len(t, exp.Rows(), 1)

	exp.SetFailing(true)
	_, err = tr.SyncSheets(ctx)
	assert.ErrorIs(t, err, memory.ErrExportFailed)
}
