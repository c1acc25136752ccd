package core

import (
	"strings"
	"time"
)

// ExpenseForm holds the raw text of the add-expense form.
type ExpenseForm struct {
	Category      string
	Amount        string
	Description   string
	Date          time.Time
	PaymentMethod string
	Tags          string
}

// Parse turns the form into an Expense. Every field is required and the
// amount must parse as a number; the first problem found is returned.
func (f ExpenseForm) Parse() (Expense, error) {
	required := []struct {
		field string
		value string
	}{
		{"category", f.Category},
		{"amount", f.Amount},
		{"description", f.Description},
		{"paymentMethod", f.PaymentMethod},
		{"tags", f.Tags},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Expense{}, &ValidationError{Field: r.field, Err: ErrEmptyField}
		}
	}

	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return Expense{}, &ValidationError{Field: "amount", Err: err}
	}

	date := f.Date
	if date.IsZero() {
		date = time.Now()
	}

	e := Expense{
		Category:      f.Category,
		Amount:        amount,
		Description:   f.Description,
		Date:          date,
		PaymentMethod: f.PaymentMethod,
		Tags:          SplitTags(f.Tags),
	}
	return e, e.Validate()
}

// SplitTags splits a comma separated list, trimming blanks and dropping empties.
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags = append(tags, p)
	}
	return tags
}
