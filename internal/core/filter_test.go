package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []Expense {
	return []Expense{
		{ID: "1", Category: "Food", Amount: 12.5, Description: "Lunch", Date: Day(2024, 1, 1), PaymentMethod: "Cash", Tags: []string{"work"}},
		{ID: "2", Category: "Transport", Amount: 3, Description: "Bus ticket", Date: Day(2024, 1, 15), PaymentMethod: "Card", Tags: []string{"commute"}},
		{ID: "3", Category: "Food", Amount: 40, Description: "Groceries", Date: Day(2024, 2, 3), PaymentMethod: "Card", Tags: nil},
		{ID: "4", Category: "Entertainment", Amount: 9.99, Description: "Cinema", Date: Day(2024, 3, 1), PaymentMethod: "Straße Pay", Tags: []string{"Weekend"}},
	}
}

func ids(expenses []Expense) []ExpenseID {
	out := make([]ExpenseID, len(expenses))
	for i, e := range expenses {
		out[i] = e.ID
	}
	return out
}

func TestFilterByRange(t *testing.T) {
	all := sample()

	assert.Equal(t, all, FilterByRange(all, nil))

	r, err := NewDateRange(Day(2024, 1, 1), Day(2024, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, []ExpenseID{"1", "2"}, ids(FilterByRange(all, &r)))

	inverted := DateRange{Start: Day(2024, 2, 1), End: Day(2024, 1, 1)}
	assert.Empty(t, FilterByRange(all, &inverted))
}

func TestQueryApply(t *testing.T) {
	jan, err := NewDateRange(Day(2024, 1, 1), EndOfDay(Day(2024, 1, 31)))
	require.NoError(t, err)

	tests := []struct {
		name  string
		query Query
		want  []ExpenseID
	}{
		{"empty query keeps all", Query{}, []ExpenseID{"1", "2", "3", "4"}},
		{"all sentinel keeps all", Query{Category: AllCategories}, []ExpenseID{"1", "2", "3", "4"}},
		{"category exact match", Query{Category: "Food"}, []ExpenseID{"1", "3"}},
		{"category is case sensitive", Query{Category: "food"}, []ExpenseID{}},
		{"search description", Query{Search: "lunch"}, []ExpenseID{"1"}},
		{"search payment method", Query{Search: "CARD"}, []ExpenseID{"2", "3"}},
		{"search tag", Query{Search: "week"}, []ExpenseID{"4"}},
		{"search category", Query{Search: "transp"}, []ExpenseID{"2"}},
		{"search folds unicode", Query{Search: "STRASSE"}, []ExpenseID{"4"}},
		{"date range", Query{Range: &jan}, []ExpenseID{"1", "2"}},
		{"all stages", Query{Category: "Food", Search: "card", Range: &jan}, []ExpenseID{}},
		{"category and search", Query{Category: "Food", Search: "card"}, []ExpenseID{"3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.query.Apply(sample())))
		})
	}
}

func TestQueryApplyDoesNotMutateInput(t *testing.T) {
	all := sample()
	out := Query{Search: "work"}.Apply(all)
	require.Len(t, out, 1)
	out[0].Tags[0] = "changed"
	assert.Equal(t, "work", all[0].Tags[0])
}

func TestSortExpenses(t *testing.T) {
	items := []Expense{
		{Description: "b", Amount: 2, Date: Day(2024, 1, 3)},
		{Description: "a", Amount: 1, Date: Day(2024, 1, 3)},
		{Description: "c", Amount: 2, Date: Day(2024, 1, 1)},
	}

	require.NoError(t, SortExpenses(items, SortByAmount))
	assert.Equal(t, []string{"a", "b", "c"}, descriptions(items))

	require.NoError(t, SortExpenses(items, SortByDate))
	assert.Equal(t, []string{"c", "a", "b"}, descriptions(items))

	assert.ErrorIs(t, SortExpenses(items, "payee"), ErrUnknownSort)
}

func descriptions(items []Expense) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.Description
	}
	return out
}
