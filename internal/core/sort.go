package core

import (
	"cmp"
	"fmt"
	"slices"
)

// SortExpenses orders expenses in place by criteria, ascending. The sort is
// stable, so ties keep their relative order.
func SortExpenses(expenses []Expense, criteria SortCriteria) error {
	var compare func(a, b Expense) int
	switch criteria {
	case SortByDate:
		compare = func(a, b Expense) int { return a.Date.Compare(b.Date) }
	case SortByAmount:
		compare = func(a, b Expense) int { return cmp.Compare(a.Amount, b.Amount) }
	default:
		return fmt.Errorf("sort by %q: %w", criteria, ErrUnknownSort)
	}
	slices.SortStableFunc(expenses, compare)
	return nil
}
