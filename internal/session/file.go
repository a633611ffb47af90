package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"budget/internal/goals"
	"budget/internal/ledger"
)

const (
	DefaultJSONName = "budget_data.json"
	DefaultCSVName  = "budget_data.csv"
)

// FileStore keeps a session as a JSON file (goals plus a snapshot of the
// transactions) and a CSV file (the transactions) in one directory.
type FileStore struct {
	Dir      string
	JSONName string
	CSVName  string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a FileStore in dir with the default file names.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, JSONName: DefaultJSONName, CSVName: DefaultCSVName}
}

func (s *FileStore) JSONPath() string {
	return filepath.Join(s.Dir, s.JSONName)
}

func (s *FileStore) CSVPath() string {
	return filepath.Join(s.Dir, s.CSVName)
}

// jsonRecord mirrors one CSV row inside budget_data.
type jsonRecord struct {
	Date     string      `json:"Date"`
	Type     string      `json:"Type"`
	Category string      `json:"Category"`
	Amount   json.Number `json:"Amount"`
}

type sessionFile struct {
	BudgetData  []jsonRecord `json:"budget_data"`
	BudgetGoals *goals.Store `json:"budget_goals"`
}

// goalsOnly is decoded on load; budget_data is not read back because the
// CSV file is the source of truth for transactions.
type goalsOnly struct {
	BudgetGoals *goals.Store `json:"budget_goals"`
}

// Save writes the JSON session file and then the CSV transaction file.
func (s *FileStore) Save(_ context.Context, sess Session) error {
	sess = sess.normalize()

	doc := sessionFile{BudgetData: make([]jsonRecord, 0, sess.Transactions.Len()), BudgetGoals: sess.Goals}
	for _, t := range sess.Transactions.Transactions() {
		doc.BudgetData = append(doc.BudgetData, jsonRecord{
			Date:     t.Date.String(),
			Type:     t.Type.String(),
			Category: t.Category,
			Amount:   json.Number(t.Amount.String()),
		})
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return &FormatError{Path: s.JSONPath(), Err: err}
	}
	if err := os.WriteFile(s.JSONPath(), data, 0o644); err != nil {
		return &IOError{Op: "write", Path: s.JSONPath(), Err: err}
	}
	return s.writeCSV(sess.Transactions)
}

// ExportCSV writes only the CSV transaction file.
func (s *FileStore) ExportCSV(_ context.Context, l *ledger.Ledger) error {
	if l == nil {
		l = ledger.New()
	}
	return s.writeCSV(l)
}

func (s *FileStore) writeCSV(l *ledger.Ledger) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, l); err != nil {
		return &IOError{Op: "encode", Path: s.CSVPath(), Err: err}
	}
	if err := os.WriteFile(s.CSVPath(), buf.Bytes(), 0o644); err != nil {
		return &IOError{Op: "write", Path: s.CSVPath(), Err: err}
	}
	return nil
}

// Load reads goals from the JSON file and transactions from the CSV file.
// A missing JSON file yields empty goals without error; a missing CSV file
// yields an empty ledger without error. Malformed content falls back to
// empty and is reported as a *FormatError.
func (s *FileStore) Load(_ context.Context) (Session, error) {
	sess := New()
	var errs []error

	g, err := s.loadGoals()
	if err != nil {
		errs = append(errs, err)
	} else {
		sess.Goals = g
	}

	l, err := s.loadTransactions()
	if err != nil {
		errs = append(errs, err)
	}
	if l != nil {
		sess.Transactions = l
	}

	return sess, errors.Join(errs...)
}

func (s *FileStore) loadGoals() (*goals.Store, error) {
	data, err := os.ReadFile(s.JSONPath())
	if errors.Is(err, fs.ErrNotExist) {
		return goals.New(), nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: s.JSONPath(), Err: err}
	}
	var doc goalsOnly
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &FormatError{Path: s.JSONPath(), Err: err}
	}
	if doc.BudgetGoals == nil {
		return goals.New(), nil
	}
	return doc.BudgetGoals, nil
}

func (s *FileStore) loadTransactions() (*ledger.Ledger, error) {
	f, err := os.Open(s.CSVPath())
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.New(), nil
	}
	if err != nil {
		return nil, &IOError{Op: "open", Path: s.CSVPath(), Err: err}
	}
	defer f.Close()

	l, res, err := ImportCSV(f)
	if err != nil {
		return nil, &FormatError{Path: s.CSVPath(), Err: err}
	}
	if dropped := res.Incomplete + res.Unparseable; dropped > 0 {
		return l, &FormatError{Path: s.CSVPath(), Err: fmt.Errorf("%d unreadable rows skipped", dropped)}
	}
	return l, nil
}
