package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"budget/internal/core"
	ports "budget/internal/sheets"
)

var ErrExportFailed = errors.New("export failed")

// Exporter keeps the last exported table in memory. Tests use it in place of
// the Google Sheets client; with no spreadsheet configured the tracker has no
// exporter at all.
type Exporter struct {
	mu      sync.Mutex
	rows    []core.Transaction
	exports int
	fail    bool
}

var _ ports.TransactionExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// Export replaces the stored table and returns a synthetic range reference.
func (e *Exporter) Export(_ context.Context, txs []core.Transaction) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail {
		return "", ErrExportFailed
	}
	e.rows = append([]core.Transaction(nil), txs...)
	e.exports++
	return fmt.Sprintf("mem!A1:D%d", len(txs)+1), nil
}

// Rows returns a copy of the last exported transactions.
func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Transaction(nil), e.rows...)
}

// Exports returns how many exports succeeded.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}

// SetFailing makes Export return ErrExportFailed until reset.
func (e *Exporter) SetFailing(fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail = fail
}
