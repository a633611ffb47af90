package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"
)

// Canonical column names shared by the CSV file and the JSON session file.
const (
	ColumnDate     = "Date"
	ColumnType     = "Type"
	ColumnCategory = "Category"
	ColumnAmount   = "Amount"
)

// Columns is the fixed transaction schema, in file order.
var Columns = []string{ColumnDate, ColumnType, ColumnCategory, ColumnAmount}

const (
	// DateLayout is the canonical MM-DD-YYYY rendering.
	DateLayout = "01-02-2006"
	// parseLayout also accepts unpadded month and day.
	parseLayout = "1-2-2006"
)

type (
	TxType string

	Date struct {
		time.Time
	}

	// Month identifies a calendar month, e.g. 2025-01.
	Month struct {
		Year  int
		Month time.Month
	}

	Transaction struct {
		Date     Date
		Type     TxType
		Category string
		Amount   Amount
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date format, please use MM-DD-YYYY")
	ErrInvalidType    = errors.New("invalid type, must be Income or Expense")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must be non-negative")
)

// FieldError names the transaction field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", strings.ToLower(e.Field), e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ParseDate parses an MM-DD-YYYY string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(parseLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// String renders the date as MM-DD-YYYY.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Month returns the calendar month the date falls in.
func (d Date) Month() Month {
	return Month{Year: d.Year(), Month: d.Time.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before reports whether m is chronologically earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// ParseType capitalizes s and accepts only Income or Expense.
func ParseType(s string) (TxType, error) {
	t := TxType(capitalize(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (t TxType) String() string {
	return string(t)
}

// NewTransaction validates raw field input and builds a Transaction.
// Fields are checked in prompt order: date, type, amount.
func NewTransaction(date, txType, category, amount string) (Transaction, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Transaction{}, &FieldError{Field: ColumnDate, Err: err}
	}
	t, err := ParseType(txType)
	if err != nil {
		return Transaction{}, &FieldError{Field: ColumnType, Err: err}
	}
	a, err := ParseAmount(amount)
	if err != nil {
		return Transaction{}, &FieldError{Field: ColumnAmount, Err: err}
	}
	return Transaction{Date: d, Type: t, Category: category, Amount: a}, nil
}

// Record returns the transaction as a CSV row in Columns order.
func (t Transaction) Record() []string {
	return []string{t.Date.String(), t.Type.String(), t.Category, t.Amount.String()}
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
