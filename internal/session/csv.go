package session

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"budget/internal/core"
	"budget/internal/ledger"
)

// columnAliases maps a lower-cased header cell to its canonical column.
// It is consulted once per import, on the header row.
var columnAliases = map[string]string{
	"date":     core.ColumnDate,
	"type":     core.ColumnType,
	"category": core.ColumnCategory,
	"amount":   core.ColumnAmount,
}

// ImportResult counts what happened to each data row of an imported file.
type ImportResult struct {
	Imported int
	// Blank rows had no value in any column.
	Blank int
	// Incomplete rows were missing at least one required field.
	Incomplete int
	// Unparseable rows had a date or amount that could not be read.
	Unparseable int
	// UnknownType rows were kept but carry a Type other than Income or Expense.
	UnknownType int
}

// HasTypeWarning reports whether any imported row has a non-standard type.
func (r ImportResult) HasTypeWarning() bool {
	return r.UnknownType > 0
}

// WriteCSV writes the ledger with the canonical header, one row per transaction.
func WriteCSV(w io.Writer, l *ledger.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(core.Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range l.Transactions() {
		if err := cw.Write(t.Record()); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// ImportCSV reads transactions from r.
//
// Header cells are matched case-insensitively against the canonical columns.
// If any canonical column is missing the result is an empty ledger and a
// *MissingColumnsError. Quotes inside unquoted fields are taken literally. Fully blank rows and rows missing a required field
// are dropped. Rows whose Type is not Income or Expense are kept and counted
// in ImportResult.UnknownType.
func ImportCSV(r io.Reader) (*ledger.Ledger, ImportResult, error) {
	var res ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ledger.New(), res, &MissingColumnsError{Columns: append([]string(nil), core.Columns...)}
	}
	if err != nil {
		return ledger.New(), res, fmt.Errorf("reading csv header: %w", err)
	}

	pos, missing := mapHeader(header)
	if len(missing) > 0 {
		return ledger.New(), res, &MissingColumnsError{Columns: missing}
	}

	l := ledger.New()
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ledger.New(), ImportResult{}, fmt.Errorf("reading csv row: %w", err)
		}
		if isBlank(rec) {
			res.Blank++
			continue
		}

		date := field(rec, pos[core.ColumnDate])
		typ := field(rec, pos[core.ColumnType])
		category := field(rec, pos[core.ColumnCategory])
		amount := field(rec, pos[core.ColumnAmount])
		if date == "" || typ == "" || category == "" || amount == "" {
			res.Incomplete++
			continue
		}

		d, err := core.ParseDate(date)
		if err != nil {
			res.Unparseable++
			continue
		}
		a, err := core.ParseAmount(amount)
		if err != nil {
			res.Unparseable++
			continue
		}
		t := core.TxType(typ)
		if !t.Valid() {
			res.UnknownType++
		}
		l.Append(core.Transaction{Date: d, Type: t, Category: category, Amount: a})
		res.Imported++
	}
	return l, res, nil
}

// ImportCSVFile reads an external CSV file. See ImportCSV.
func ImportCSVFile(path string) (*ledger.Ledger, ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ledger.New(), ImportResult{}, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	return ImportCSV(f)
}

// mapHeader returns the column index of every canonical column found in
// header, plus the canonical columns that are absent.
func mapHeader(header []string) (map[string]int, []string) {
	pos := make(map[string]int, len(core.Columns))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := pos[canonical]; !seen {
			pos[canonical] = i
		}
	}
	var missing []string
	for _, c := range core.Columns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	return pos, missing
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
