// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed by a user
// and for accumulating float amounts without drifting.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a float amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Leading and
// trailing spaces are ignored. Zero is accepted, negative values are not.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrNegativeAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	return d.InexactFloat64(), nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// accumulator sums float amounts in decimal space.
type accumulator struct {
	sum decimal.Decimal
}

func (a *accumulator) add(amount float64) {
	a.sum = a.sum.Add(decimal.NewFromFloat(amount))
}

func (a *accumulator) value() float64 {
	return a.sum.InexactFloat64()
}
