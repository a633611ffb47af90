// Package session persists the in-memory transactions and goals.
//
// A Session is only written or read when the user asks for it. Loading never
// fails hard: a Store returns a usable Session together with an error that
// describes anything it had to skip.
package session

import (
	"context"

	"budget/internal/goals"
	"budget/internal/ledger"
)

// Session pairs the transaction ledger with the goal store.
type Session struct {
	Transactions *ledger.Ledger
	Goals        *goals.Store
}

// New returns an empty session.
func New() Session {
	return Session{Transactions: ledger.New(), Goals: goals.New()}
}

// IsEmpty reports whether there are neither transactions nor goals.
func (s Session) IsEmpty() bool {
	return (s.Transactions == nil || s.Transactions.IsEmpty()) && (s.Goals == nil || s.Goals.IsEmpty())
}

// normalize replaces nil parts with empty ones.
func (s Session) normalize() Session {
	if s.Transactions == nil {
		s.Transactions = ledger.New()
	}
	if s.Goals == nil {
		s.Goals = goals.New()
	}
	return s
}

// Store saves and restores a Session.
type Store interface {
	Save(ctx context.Context, s Session) error
	// Load always returns a usable Session. A non-nil error reports a
	// recoverable problem (missing or malformed data) that was replaced by
	// empty defaults.
	Load(ctx context.Context) (Session, error)
}
