// Package core provides the transaction model and its field validation.
//
// This file contains the Amount type used for every monetary value in the
// tracker. Amounts are decimals rather than floats so that group-by sums are
// exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative decimal money value.
type Amount struct {
	decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{Decimal: decimal.Zero}

// Bounds on accepted amounts. Values outside them cannot be formatted in
// reasonable time or space.
const (
	maxIntegerDigits  = 15
	maxFractionDigits = 10
)

// ParseAmount converts user input to an Amount.
//
// It accepts anything decimal.NewFromString accepts (12, 12.5, 1e3) after
// trimming whitespace, as long as the value has at most 15 integer digits
// and 10 decimal places. Non-numeric or out-of-range input yields
// ErrInvalidAmount and negative values yield ErrNegativeAmount. Zero is allowed.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount(" 7 ")   -> 7, nil
//	ParseAmount("-1")    -> ErrNegativeAmount
//	ParseAmount("abc")   -> ErrInvalidAmount
//	ParseAmount("1e400") -> ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	if d.IsZero() {
		return Zero, nil
	}
	if !inRange(d) {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{Decimal: d}, nil
}

// inRange checks the digit bounds from the coefficient and exponent alone,
// so it stays cheap for inputs such as 1e400000000.
func inRange(d decimal.Decimal) bool {
	coeff := d.Coefficient().String()
	exp := int64(d.Exponent())
	if int64(len(coeff))+exp > maxIntegerDigits {
		return false
	}
	// trailing zeros of the coefficient are not decimal places
	zeros := int64(len(coeff) - len(strings.TrimRight(coeff, "0")))
	return -exp-zeros <= maxFractionDigits
}

// MustAmount parses s and panics on error. Intended for tests and constants.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Validate() error {
	if a.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func (a Amount) Add(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Add(b.Decimal)}
}

// Sub may produce a negative result; used for balances and remaining budget.
func (a Amount) Sub(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Sub(b.Decimal)}
}

func (a Amount) GreaterThan(b Amount) bool {
	return a.Decimal.GreaterThan(b.Decimal)
}

func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Equal(b.Decimal)
}

// Dollars formats the amount for display, e.g. $12.50 or $-20.00.
func (a Amount) Dollars() string {
	return "$" + a.StringFixed(2)
}
