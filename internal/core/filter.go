package core

import (
	"strings"

	"golang.org/x/text/cases"
)

// Query narrows an expense list the way the list screen does.
type Query struct {
	Search   string
	Category string
	Range    *DateRange
}

// FilterByRange keeps expenses dated inside r. A nil range keeps everything.
func FilterByRange(expenses []Expense, r *DateRange) []Expense {
	if r == nil {
		return cloneAll(expenses)
	}
	return keep(expenses, func(e Expense) bool { return r.Contains(e.Date) })
}

// Apply runs the category, text and date stages in that order.
func (q Query) Apply(expenses []Expense) []Expense {
	out := cloneAll(expenses)
	if q.Category != "" && q.Category != AllCategories {
		out = keep(out, func(e Expense) bool { return e.Category == q.Category })
	}
	if q.Search != "" {
		m := newMatcher(q.Search)
		out = keep(out, m.matches)
	}
	return FilterByRange(out, q.Range)
}

// matcher does case-insensitive substring matching with Unicode case folding.
type matcher struct {
	fold cases.Caser
	term string
}

func newMatcher(term string) *matcher {
	m := &matcher{fold: cases.Fold()}
	m.term = m.fold.String(term)
	return m
}

func (m *matcher) contains(s string) bool {
	return strings.Contains(m.fold.String(s), m.term)
}

func (m *matcher) matches(e Expense) bool {
	if m.contains(e.Category) || m.contains(e.Description) || m.contains(e.PaymentMethod) {
		return true
	}
	for _, tag := range e.Tags {
		if m.contains(tag) {
			return true
		}
	}
	return false
}

func keep(expenses []Expense, pred func(Expense) bool) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if pred(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func cloneAll(expenses []Expense) []Expense {
	out := make([]Expense, len(expenses))
	for i, e := range expenses {
		out[i] = e.Clone()
	}
	return out
}
