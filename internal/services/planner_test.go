package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/storage/memory"
)

func openPlanner(t *testing.T) (*Planner, *memory.Store) {
	t.Helper()
	slots := memory.New()
	p, err := Open(context.Background(), slots, log.Discard())
	require.NoError(t, err)
	return p, slots
}

func TestPlanner_FirstRun(t *testing.T) {
	p, _ := openPlanner(t)
	assert.Empty(t, p.ListExpenses())
	assert.Equal(t, []string{"Food", "Transport", "Entertainment", "Utilities"}, p.ListCategories())

	s := p.Summary()
	assert.Equal(t, 0.0, s.Total)
	assert.Empty(t, s.ByCategory)
	assert.Empty(t, s.ByPaymentMethod)
	assert.Empty(t, s.ByTag)
}

func TestPlanner_LunchScenario(t *testing.T) {
	p, _ := openPlanner(t)
	_, err := p.AddExpense(context.Background(), core.Expense{
		Category:      "Food",
		Amount:        12.50,
		Description:   "Lunch",
		Date:          core.Day(2024, 1, 1),
		PaymentMethod: "Cash",
		Tags:          []string{"work"},
	})
	require.NoError(t, err)

	s := p.Summary()
	assert.Equal(t, 12.50, s.Total)
	assert.Equal(t, 12.50, s.ByCategory["Food"])
	assert.Equal(t, 12.50, s.ByTag["work"])
}

func TestPlanner_TwoFoodExpenses(t *testing.T) {
	p, _ := openPlanner(t)
	ctx := context.Background()
	_, err := p.AddExpense(ctx, newExpense("Food", 10, 1))
	require.NoError(t, err)
	_, err = p.AddExpense(ctx, newExpense("Food", 5, 2))
	require.NoError(t, err)

	assert.Equal(t, 15.0, p.Summary().ByCategory["Food"])
}

func TestPlanner_ReopenRestoresBothSlots(t *testing.T) {
	p, slots := openPlanner(t)
	ctx := context.Background()

	e, err := p.AddExpense(ctx, newExpense("Food", 3, 1, "a", "b"))
	require.NoError(t, err)
	_, err = p.AddCategory(ctx, "Health")
	require.NoError(t, err)

	reopened, err := Open(ctx, slots, nil)
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{e}, reopened.ListExpenses())
	assert.Contains(t, reopened.ListCategories(), "Health")
}

func TestPlanner_FormEditDelete(t *testing.T) {
	p, _ := openPlanner(t)
	ctx := context.Background()

	_, err := p.AddExpenseForm(ctx, core.ExpenseForm{Category: "Food", Amount: "abc", Description: "x", PaymentMethod: "Cash", Tags: "t"})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, p.ListExpenses())

	e, err := p.AddExpenseForm(ctx, core.ExpenseForm{
		Category: "Food", Amount: "4,20", Description: "Coffee", PaymentMethod: "Card", Tags: "morning, treat", Date: core.Day(2024, 5, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"morning", "treat"}, e.Tags)

	e.Amount = 5
	require.NoError(t, p.EditExpense(ctx, e))
	got, err := p.GetExpense(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Amount)

	e.Description = "Espresso"
	require.NoError(t, p.UpdateExpense(ctx, e))

	require.NoError(t, p.DeleteExpense(ctx, e.ID))
	assert.True(t, core.IsNotFound(p.DeleteExpense(ctx, e.ID)))
	assert.True(t, core.IsNotFound(p.DeleteExpenseAt(ctx, 0)))
}

func TestPlanner_FilterAndSort(t *testing.T) {
	p, _ := openPlanner(t)
	ctx := context.Background()
	big, _ := p.AddExpense(ctx, newExpense("Food", 30, 3, "party"))
	small, _ := p.AddExpense(ctx, newExpense("Transport", 2, 1))
	mid, _ := p.AddExpense(ctx, newExpense("Food", 10, 2))

	require.NoError(t, p.SortExpenses(ctx, core.SortByAmount))
	assert.Equal(t, []core.Expense{small, mid, big}, p.ListExpenses())

	assert.Equal(t, []core.Expense{mid, big}, p.FilterExpenses(core.Query{Category: "Food"}))
	assert.Equal(t, []core.Expense{big}, p.FilterExpenses(core.Query{Search: "PARTY"}))

	r, err := core.NewDateRange(core.Day(2024, 1, 1), core.Day(2024, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{small, mid}, p.ExpensesInRange(&r))
	assert.Equal(t, []core.Expense{mid}, p.FilterExpenses(core.Query{Category: "Food", Range: &r}))
}

func TestPlanner_CategoryOperations(t *testing.T) {
	p, _ := openPlanner(t)
	ctx := context.Background()

	added, err := p.AddCategory(ctx, "Food")
	require.NoError(t, err)
	assert.False(t, added)

	require.NoError(t, p.DeleteCategory(ctx, 0))
	assert.Equal(t, []string{"Transport", "Entertainment", "Utilities"}, p.ListCategories())
	assert.True(t, core.IsNotFound(p.DeleteCategory(ctx, 5)))
}

func TestPlanner_SubscribeCoversBothStores(t *testing.T) {
	p, _ := openPlanner(t)
	ctx := context.Background()

	var kinds []core.ChangeKind
	cancel := p.Subscribe(ObserverFunc(func(_ context.Context, ev core.ChangeEvent) {
		kinds = append(kinds, ev.Kind)
	}))

	_, _ = p.AddExpense(ctx, newExpense("Food", 1, 1))
	_, _ = p.AddCategory(ctx, "Health")
	cancel()
	_, _ = p.AddCategory(ctx, "Rent")

	assert.Equal(t, []core.ChangeKind{core.ChangeAdded, core.ChangeCategories}, kinds)
}

func TestOpen(t *testing.T) {
	_, err := Open(context.Background(), nil, nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Open(ctx, memory.New(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
