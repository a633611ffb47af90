// Package ledger holds the ordered transaction collection and the
// aggregations computed over it.
//
// Transactions have no persistent identity: they are addressed by their
// 1-based position, and deleting one shifts every later record down by one.
package ledger

import (
	"errors"
	"fmt"

	"budget/internal/core"
)

var ErrIndexOutOfRange = errors.New("invalid transaction number")

// Entry is a transaction paired with its 1-based display number.
type Entry struct {
	Number int
	core.Transaction
}

// Ledger is an ordered list of transactions. The zero value is empty and ready to use.
type Ledger struct {
	items []core.Transaction
}

func New(txs ...core.Transaction) *Ledger {
	l := &Ledger{}
	l.items = append(l.items, txs...)
	return l
}

func (l *Ledger) Len() int {
	return len(l.items)
}

func (l *Ledger) IsEmpty() bool {
	return len(l.items) == 0
}

// Add validates raw input and appends a new transaction.
// On failure the ledger is unchanged and the error is a *core.FieldError.
func (l *Ledger) Add(date, txType, category, amount string) (core.Transaction, error) {
	t, err := core.NewTransaction(date, txType, category, amount)
	if err != nil {
		return core.Transaction{}, err
	}
	l.items = append(l.items, t)
	return t, nil
}

// Append adds an already-built transaction without validating it.
// Persistence and import use it for rows that were checked on the way in.
func (l *Ledger) Append(t core.Transaction) {
	l.items = append(l.items, t)
}

// Get returns the transaction at the 1-based index.
func (l *Ledger) Get(index int) (core.Transaction, error) {
	if err := l.checkIndex(index); err != nil {
		return core.Transaction{}, err
	}
	return l.items[index-1], nil
}

// Edit overwrites all four fields of the transaction at the 1-based index.
// Any validation failure leaves the record untouched.
func (l *Ledger) Edit(index int, date, txType, category, amount string) (core.Transaction, error) {
	if err := l.checkIndex(index); err != nil {
		return core.Transaction{}, err
	}
	t, err := core.NewTransaction(date, txType, category, amount)
	if err != nil {
		return core.Transaction{}, err
	}
	l.items[index-1] = t
	return t, nil
}

// Delete removes the transaction at the 1-based index and compacts the list.
func (l *Ledger) Delete(index int) (core.Transaction, error) {
	if err := l.checkIndex(index); err != nil {
		return core.Transaction{}, err
	}
	removed := l.items[index-1]
	copy(l.items[index-1:], l.items[index:])
	l.items[len(l.items)-1] = core.Transaction{}
	l.items = l.items[:len(l.items)-1]
	return removed, nil
}

// List returns the transactions in order with 1-based numbering.
func (l *Ledger) List() []Entry {
	out := make([]Entry, len(l.items))
	for i, t := range l.items {
		out[i] = Entry{Number: i + 1, Transaction: t}
	}
	return out
}

// Transactions returns a copy of the underlying records.
func (l *Ledger) Transactions() []core.Transaction {
	return append([]core.Transaction(nil), l.items...)
}

func (l *Ledger) checkIndex(index int) error {
	if index < 1 || index > len(l.items) {
		return fmt.Errorf("%w: %d (valid range 1-%d)", ErrIndexOutOfRange, index, len(l.items))
	}
	return nil
}
