// Package core provides money parsing and handling utilities.
//
// Amounts are signed decimals: revenue is positive, expense is negative.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a decimal rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional sign. Thousands separators are not supported.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("-12,34") -> -12.34
//	ParseAmount("1.005")  -> 1.01
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError("empty amount")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("invalid amount %q", s)
	}
	return d.Round(2), nil
}

// SignFor returns amount with the sign implied by the transaction type,
// whatever sign it was entered with.
func SignFor(t TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == Expense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}
