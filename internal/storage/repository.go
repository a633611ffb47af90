package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget/internal/core"
	"budget/internal/goals"
	"budget/internal/ledger"
	"budget/internal/session"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores a session in a SQLite database. Saving replaces the
// stored session as a whole, mirroring the file store.
type SQLiteRepository struct {
	db      *sql.DB
	path    string
	schema  uint
	queries *Queries
	now     func() time.Time
}

var _ session.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		path:    dbPath,
		schema:  version,
		queries: New(db),
		now:     time.Now,
	}, nil
}

// SchemaVersion is the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schema
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save implements session.Store. Both tables are rewritten in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, s session.Session) error {
	if s.Transactions == nil {
		s.Transactions = ledger.New()
	}
	if s.Goals == nil {
		s.Goals = goals.New()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &session.IOError{Op: "begin", Path: r.path, Err: err}
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteTransactions(ctx); err != nil {
		return &session.IOError{Op: "clear transactions", Path: r.path, Err: err}
	}
	if err := q.DeleteGoals(ctx); err != nil {
		return &session.IOError{Op: "clear goals", Path: r.path, Err: err}
	}

	for _, e := range s.Transactions.List() {
		err := q.InsertTransaction(ctx, TransactionRow{
			Position: int64(e.Number),
			Date:     e.Date.String(),
			Type:     e.Type.String(),
			Category: e.Category,
			Amount:   e.Amount.String(),
		})
		if err != nil {
			return &session.IOError{Op: "insert transaction", Path: r.path, Err: err}
		}
	}
	for _, e := range s.Goals.List() {
		err := q.InsertGoal(ctx, GoalRow{
			Position: int64(e.Number),
			Category: e.Category,
			Amount:   e.Amount.String(),
		})
		if err != nil {
			return &session.IOError{Op: "insert goal", Path: r.path, Err: err}
		}
	}
	if err := q.TouchSession(ctx, r.now()); err != nil {
		return &session.IOError{Op: "stamp session", Path: r.path, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &session.IOError{Op: "commit", Path: r.path, Err: err}
	}

	slog.DebugContext(ctx, "Session saved to SQLite",
		"transactions", s.Transactions.Len(),
		"goals", s.Goals.Len())
	return nil
}

// Load implements session.Store. Rows that no longer parse are skipped and
// reported as a *session.FormatError.
func (r *SQLiteRepository) Load(ctx context.Context) (session.Session, error) {
	sess := session.New()
	var errs []error

	txRows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		errs = append(errs, &session.IOError{Op: "list transactions", Path: r.path, Err: err})
	}
	skipped := 0
	for _, row := range txRows {
		d, derr := core.ParseDate(row.Date)
		a, aerr := core.ParseAmount(row.Amount)
		if derr != nil || aerr != nil {
			skipped++
			continue
		}
		sess.Transactions.Append(core.Transaction{Date: d, Type: core.TxType(row.Type), Category: row.Category, Amount: a})
	}

	goalRows, err := r.queries.ListGoals(ctx)
	if err != nil {
		errs = append(errs, &session.IOError{Op: "list goals", Path: r.path, Err: err})
	}
	for _, row := range goalRows {
		a, aerr := core.ParseAmount(row.Amount)
		if aerr != nil {
			skipped++
			continue
		}
		sess.Goals.Set(row.Category, a)
	}

	if skipped > 0 {
		errs = append(errs, &session.FormatError{Path: r.path, Err: fmt.Errorf("%d unreadable rows skipped", skipped)})
	}
	return sess, errors.Join(errs...)
}

// SavedAt returns when the session was last saved, or the zero time if it
// never was.
func (r *SQLiteRepository) SavedAt(ctx context.Context) (time.Time, error) {
	t, err := r.queries.GetSessionSavedAt(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get session saved_at: %w", err)
	}
	return t, nil
}
