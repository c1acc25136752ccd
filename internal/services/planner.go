package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/storage"
)

// Planner is the surface the presentation layer talks to. It routes edits to
// the expense store and the category registry and derives summaries on demand.
type Planner struct {
	expenses   *ExpenseStore
	categories *CategoryRegistry
}

// Open restores both slots and returns a ready Planner. The two slots are
// independent, so they are read concurrently.
func Open(ctx context.Context, slots storage.SlotStore, logger *log.Logger) (*Planner, error) {
	if slots == nil {
		return nil, fmt.Errorf("open planner: nil slot store")
	}

	var (
		expenses   *ExpenseStore
		categories *CategoryRegistry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		expenses = NewExpenseStore(gctx, slots, logger)
		return gctx.Err()
	})
	g.Go(func() error {
		categories = NewCategoryRegistry(gctx, slots, logger)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("open planner: %w", err)
	}

	return NewPlanner(expenses, categories), nil
}

func NewPlanner(expenses *ExpenseStore, categories *CategoryRegistry) *Planner {
	return &Planner{expenses: expenses, categories: categories}
}

func (p *Planner) Expenses() *ExpenseStore {
	return p.expenses
}

func (p *Planner) Categories() *CategoryRegistry {
	return p.categories
}

func (p *Planner) ListExpenses() []core.Expense {
	return p.expenses.List()
}

func (p *Planner) GetExpense(id core.ExpenseID) (core.Expense, error) {
	return p.expenses.Get(id)
}

func (p *Planner) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	return p.expenses.Add(ctx, e)
}

// AddExpenseForm validates raw form input and adds the result.
func (p *Planner) AddExpenseForm(ctx context.Context, form core.ExpenseForm) (core.Expense, error) {
	e, err := form.Parse()
	if err != nil {
		return core.Expense{}, err
	}
	return p.expenses.Add(ctx, e)
}

func (p *Planner) DeleteExpense(ctx context.Context, id core.ExpenseID) error {
	return p.expenses.Delete(ctx, id)
}

func (p *Planner) DeleteExpenseAt(ctx context.Context, positions ...int) error {
	return p.expenses.DeleteAt(ctx, positions...)
}

func (p *Planner) EditExpense(ctx context.Context, e core.Expense) error {
	return p.expenses.Edit(ctx, e)
}

func (p *Planner) UpdateExpense(ctx context.Context, e core.Expense) error {
	return p.expenses.Update(ctx, e)
}

func (p *Planner) SortExpenses(ctx context.Context, criteria core.SortCriteria) error {
	return p.expenses.Sort(ctx, criteria)
}

// FilterExpenses applies the category, search and date stages of q.
func (p *Planner) FilterExpenses(q core.Query) []core.Expense {
	return q.Apply(p.expenses.List())
}

// ExpensesInRange is the store-level date filter.
func (p *Planner) ExpensesInRange(r *core.DateRange) []core.Expense {
	return p.expenses.Filter(r)
}

func (p *Planner) ListCategories() []string {
	return p.categories.List()
}

func (p *Planner) AddCategory(ctx context.Context, label string) (bool, error) {
	return p.categories.Add(ctx, label)
}

func (p *Planner) DeleteCategory(ctx context.Context, position int) error {
	return p.categories.DeleteAt(ctx, position)
}

// Summary aggregates the full, unfiltered collection.
func (p *Planner) Summary() core.Summary {
	return core.Summarize(p.expenses.List())
}

// Subscribe registers obs with both the expense store and the registry.
func (p *Planner) Subscribe(obs Observer) func() {
	cancelExpenses := p.expenses.Subscribe(obs)
	cancelCategories := p.categories.Subscribe(obs)
	return func() {
		cancelExpenses()
		cancelCategories()
	}
}
