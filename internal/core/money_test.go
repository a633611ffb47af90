package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		err error
	}{
		{"1", "1", nil},
		{"1.0", "1", nil},
		{"1.23", "1.23", nil},
		{" 2.50 ", "2.5", nil},
		{"0", "0", nil},
		{"1e3", "1000", nil},
		{"-1", "", ErrNegativeAmount},
		{"abc", "", ErrInvalidAmount},
		{"1.2.3", "", ErrInvalidAmount},
		{"$5", "", ErrInvalidAmount},
		{"", "", ErrInvalidAmount},
		{"0e400000000", "0", nil},
		{"999999999999999", "999999999999999", nil},
		{"1e14", "100000000000000", nil},
		{"1.0000000000000000000", "1", nil},
		{"0.0000000001", "0.0000000001", nil},
		{"1e400000000", "", ErrInvalidAmount},
		{"1e15", "", ErrInvalidAmount},
		{"1000000000000000", "", ErrInvalidAmount},
		{"1e-400000000", "", ErrInvalidAmount},
		{"0.00000000001", "", ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got.String() != tc.out {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got.String(), err)
		}
	}
}

func TestAmountArithmeticAndFormat(t *testing.T) {
	a := MustAmount("80")
	b := MustAmount("100")
	if got := b.Sub(a).Dollars(); got != "$20.00" {
		t.Fatalf("expected $20.00, got %s", got)
	}
	if got := a.Sub(b).Dollars(); got != "$-20.00" {
		t.Fatalf("expected $-20.00, got %s", got)
	}
	if !b.GreaterThan(a) || a.GreaterThan(b) {
		t.Fatalf("comparison is wrong")
	}
	if !Zero.Add(MustAmount("0.1")).Add(MustAmount("0.2")).Equal(MustAmount("0.3")) {
		t.Fatalf("decimal sum should be exact")
	}
	if err := a.Sub(b).Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if got := (Amount{}).Dollars(); got != "$0.00" {
		t.Fatalf("zero value should format as $0.00, got %s", got)
	}
}
