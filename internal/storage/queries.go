package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TransactionRow struct {
	Position int64
	Date     string
	Type     string
	Category string
	Amount   string
}

type GoalRow struct {
	Position int64
	Category string
	Amount   string
}

const deleteTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteTransactions)
	return err
}

const deleteGoals = `DELETE FROM goals`

func (q *Queries) DeleteGoals(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteGoals)
	return err
}

const insertTransaction = `INSERT INTO transactions (position, date, type, category, amount) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, arg TransactionRow) error {
	_, err := q.db.ExecContext(ctx, insertTransaction, arg.Position, arg.Date, arg.Type, arg.Category, arg.Amount)
	return err
}

const insertGoal = `INSERT INTO goals (position, category, amount) VALUES (?, ?, ?)`

func (q *Queries) InsertGoal(ctx context.Context, arg GoalRow) error {
	_, err := q.db.ExecContext(ctx, insertGoal, arg.Position, arg.Category, arg.Amount)
	return err
}

const listTransactions = `SELECT position, date, type, category, amount FROM transactions ORDER BY position`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.Position, &i.Date, &i.Type, &i.Category, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listGoals = `SELECT position, category, amount FROM goals ORDER BY position`

func (q *Queries) ListGoals(ctx context.Context) ([]GoalRow, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GoalRow
	for rows.Next() {
		var i GoalRow
		if err := rows.Scan(&i.Position, &i.Category, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const touchSession = `INSERT INTO sessions (id, saved_at) VALUES (1, ?)
ON CONFLICT (id) DO UPDATE SET saved_at = excluded.saved_at`

func (q *Queries) TouchSession(ctx context.Context, savedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, touchSession, savedAt.UTC().Format(time.RFC3339Nano))
	return err
}

const getSessionSavedAt = `SELECT saved_at FROM sessions WHERE id = 1`

func (q *Queries) GetSessionSavedAt(ctx context.Context) (time.Time, error) {
	row := q.db.QueryRowContext(ctx, getSessionSavedAt)
	var raw string
	if err := row.Scan(&raw); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, raw)
}
