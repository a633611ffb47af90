package services

import (
	"context"
	"errors"
	"fmt"

	"budget/internal/core"
	"budget/internal/goals"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/report"
	"budget/internal/session"
	"budget/internal/sheets"
)

var (
	ErrNothingToSave      = errors.New("nothing to save")
	ErrNoTransactions     = errors.New("no transactions")
	ErrPublishingDisabled = errors.New("report publishing is not configured")
	ErrSheetsDisabled     = errors.New("google sheets sync is not configured")
)

// ReportPublisher sends a rendered report to a message broker.
type ReportPublisher interface {
	PublishReport(ctx context.Context, lines []string) error
	Close() error
}

// Tracker owns the in-memory session and routes it to the configured
// backend, the CSV export file, the report publisher and the sheet exporter.
// The last two are optional.
type Tracker struct {
	current   session.Session
	store     session.Store
	csv       *session.FileStore
	publisher ReportPublisher
	exporter  sheets.TransactionExporter
	cleanup   []func() error
	logger    *log.Logger
}

// NewTracker starts with an empty session. publisher and exporter may be nil.
func NewTracker(store session.Store, csv *session.FileStore, publisher ReportPublisher, exporter sheets.TransactionExporter, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Discard()
	}
	return &Tracker{
		current:   session.New(),
		store:     store,
		csv:       csv,
		publisher: publisher,
		exporter:  exporter,
		logger:    logger.WithComponent(log.ComponentTracker),
	}
}

// OnClose registers fn to run when the tracker is closed.
func (t *Tracker) OnClose(fn func() error) {
	if fn != nil {
		t.cleanup = append(t.cleanup, fn)
	}
}

func (t *Tracker) Transactions() *ledger.Ledger {
	return t.current.Transactions
}

func (t *Tracker) Goals() *goals.Store {
	return t.current.Goals
}

func (t *Tracker) PublishingEnabled() bool {
	return t.publisher != nil
}

func (t *Tracker) SheetsEnabled() bool {
	return t.exporter != nil
}

func (t *Tracker) AddTransaction(date, txType, category, amount string) (core.Transaction, error) {
	tx, err := t.current.Transactions.Add(date, txType, category, amount)
	if err != nil {
		return tx, err
	}
	t.logger.Debug("Transaction added", log.NewFields().
		WithOperation(log.OpAdd).
		WithTransaction(tx.Date.String(), tx.Type.String(), tx.Category, tx.Amount.String()).
		ToSlice()...)
	return tx, nil
}

func (t *Tracker) EditTransaction(index int, date, txType, category, amount string) (core.Transaction, error) {
	tx, err := t.current.Transactions.Edit(index, date, txType, category, amount)
	if err != nil {
		return tx, err
	}
	t.logger.Debug("Transaction edited", log.FieldOperation, log.OpEdit, log.FieldIndex, index)
	return tx, nil
}

func (t *Tracker) DeleteTransaction(index int) (core.Transaction, error) {
	tx, err := t.current.Transactions.Delete(index)
	if err != nil {
		return tx, err
	}
	t.logger.Debug("Transaction deleted", log.FieldOperation, log.OpDelete, log.FieldIndex, index)
	return tx, nil
}

func (t *Tracker) AddGoal(category, amount string) (goals.Goal, error) {
	g, err := t.current.Goals.Add(category, amount)
	if err != nil {
		return g, err
	}
	t.logger.Debug("Goal set", log.NewFields().
		WithOperation(log.OpAdd).
		WithGoal(g.Category, g.Amount.String()).
		ToSlice()...)
	return g, nil
}

func (t *Tracker) EditGoal(index int, category, amount string) (goals.Goal, error) {
	g, err := t.current.Goals.Edit(index, category, amount)
	if err != nil {
		return g, err
	}
	t.logger.Debug("Goal edited", log.FieldOperation, log.OpEdit, log.FieldIndex, index, log.FieldCategory, g.Category)
	return g, nil
}

func (t *Tracker) DeleteGoal(index int) (goals.Goal, error) {
	g, err := t.current.Goals.Delete(index)
	if err != nil {
		return g, err
	}
	t.logger.Debug("Goal deleted", log.FieldOperation, log.OpDelete, log.FieldCategory, g.Category)
	return g, nil
}

// Import replaces the transactions with the rows of an external CSV file.
// A file without the required columns leaves the ledger empty; any other
// failure keeps the current transactions.
func (t *Tracker) Import(path string) (session.ImportResult, error) {
	l, res, err := session.ImportCSVFile(path)
	var missing *session.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		t.current.Transactions = l
		t.logger.Warn("Import rejected", log.FieldOperation, log.OpImport, log.FieldPath, path, log.FieldError, err)
		return res, err
	case err != nil:
		t.logger.Error("Import failed", log.FieldOperation, log.OpImport, log.FieldPath, path, log.FieldError, err)
		return res, err
	}
	t.current.Transactions = l
	t.logger.Info("Imported transactions", log.FieldOperation, log.OpImport, log.FieldPath, path,
		log.FieldCount, res.Imported, log.FieldSkipped, res.Blank+res.Incomplete+res.Unparseable)
	return res, nil
}

// Load replaces the session with the stored one. The returned error, if
// any, describes data that was skipped; the session is usable either way.
func (t *Tracker) Load(ctx context.Context) error {
	s, err := t.store.Load(ctx)
	t.current = s
	if err != nil {
		t.logger.WarnContext(ctx, "Session loaded with problems", log.FieldOperation, log.OpLoad, log.FieldError, err)
		return err
	}
	t.logger.InfoContext(ctx, "Session loaded", log.FieldOperation, log.OpLoad,
		log.FieldCount, t.current.Transactions.Len())
	return nil
}

// Save writes the session to the backend. An empty session is refused.
func (t *Tracker) Save(ctx context.Context) error {
	if t.current.IsEmpty() {
		return ErrNothingToSave
	}
	if err := t.store.Save(ctx, t.current); err != nil {
		t.logger.ErrorContext(ctx, "Save failed", log.FieldOperation, log.OpSave, log.FieldError, err)
		return err
	}
	t.logger.InfoContext(ctx, "Session saved", log.FieldOperation, log.OpSave,
		log.FieldCount, t.current.Transactions.Len())
	return nil
}

// ExportCSV writes the transactions to the CSV file only. It returns the
// file path.
func (t *Tracker) ExportCSV(ctx context.Context) (string, error) {
	if t.current.Transactions.IsEmpty() {
		return "", ErrNoTransactions
	}
	if err := t.csv.ExportCSV(ctx, t.current.Transactions); err != nil {
		t.logger.ErrorContext(ctx, "CSV export failed", log.FieldOperation, log.OpExport, log.FieldError, err)
		return "", err
	}
	return t.csv.CSVPath(), nil
}

func (t *Tracker) Summary() report.Report {
	return report.Summary(t.current.Transactions)
}

func (t *Tracker) Report() report.Report {
	return report.Build(t.current.Transactions, t.current.Goals)
}

// SaveReport writes r to path and returns the path actually written.
func (t *Tracker) SaveReport(r report.Report, path string) (string, error) {
	written, err := report.ExportFile(path, r)
	if err != nil {
		t.logger.Error("Report export failed", log.FieldOperation, log.OpReport, log.FieldPath, path, log.FieldError, err)
		return "", err
	}
	return written, nil
}

func (t *Tracker) PublishReport(ctx context.Context, r report.Report) error {
	if t.publisher == nil {
		return ErrPublishingDisabled
	}
	if err := t.publisher.PublishReport(ctx, r); err != nil {
		t.logger.ErrorContext(ctx, "Report publish failed", log.FieldOperation, log.OpPublish, log.FieldError, err)
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

// SyncSheets replaces the spreadsheet table with the current transactions
// and returns the updated range.
func (t *Tracker) SyncSheets(ctx context.Context) (string, error) {
	if t.exporter == nil {
		return "", ErrSheetsDisabled
	}
	if t.current.Transactions.IsEmpty() {
		return "", ErrNoTransactions
	}
	ref, err := t.exporter.Export(ctx, t.current.Transactions.Transactions())
	if err != nil {
		t.logger.ErrorContext(ctx, "Sheets sync failed", log.FieldOperation, log.OpSync, log.FieldError, err)
		return "", fmt.Errorf("sync sheets: %w", err)
	}
	return ref, nil
}

// Close closes the publisher and runs registered cleanups.
func (t *Tracker) Close() error {
	var errs []error
	if t.publisher != nil {
		if err := t.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	for _, fn := range t.cleanup {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close tracker: %w", errors.Join(errs...))
	}
	return nil
}
