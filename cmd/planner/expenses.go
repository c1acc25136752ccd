package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"budgetplanner/internal/core"
	"budgetplanner/internal/report"
)

const dateLayout = "2006-01-02"

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func (a *app) addCmd() *cobra.Command {
	var form core.ExpenseForm
	var date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date != "" {
				d, err := parseDay(date)
				if err != nil {
					return err
				}
				form.Date = d
			}
			e, err := a.planner().AddExpenseForm(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, e.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Category, "category", "c", "", "Category label")
	cmd.Flags().StringVarP(&form.Amount, "amount", "a", "", "Amount, '.' or ',' as decimal separator")
	cmd.Flags().StringVarP(&form.Description, "description", "d", "", "Description")
	cmd.Flags().StringVarP(&form.PaymentMethod, "payment", "p", "", "Payment method")
	cmd.Flags().StringVarP(&form.Tags, "tags", "t", "", "Comma separated tags")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var (
		q        core.Query
		from, to string
		sortBy   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if from != "" || to != "" {
				r, err := rangeFlags(from, to)
				if err != nil {
					return err
				}
				q.Range = &r
			}

			expenses := a.planner().FilterExpenses(q)
			if sortBy != "" {
				criteria, err := core.ParseSortCriteria(sortBy)
				if err != nil {
					return err
				}
				if err := core.SortExpenses(expenses, criteria); err != nil {
					return err
				}
			}
			return report.WriteExpenses(a.out, expenses)
		},
	}

	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "Case-insensitive text to look for")
	cmd.Flags().StringVarP(&q.Category, "category", "c", core.AllCategories, "Only this category")
	cmd.Flags().StringVar(&from, "from", "", "Start date YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "End date YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort the listing by date or amount without saving the order")
	return cmd
}

// rangeFlags builds an inclusive range; a missing bound is open-ended.
func rangeFlags(from, to string) (core.DateRange, error) {
	start := time.Time{}
	end := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	var err error
	if from != "" {
		if start, err = parseDay(from); err != nil {
			return core.DateRange{}, err
		}
	}
	if to != "" {
		if end, err = parseDay(to); err != nil {
			return core.DateRange{}, err
		}
	}
	return core.NewDateRange(start, core.EndOfDay(end))
}

func (a *app) editCmd() *cobra.Command {
	var category, amount, description, payment, tags, date string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseExpenseID(args[0])
			if err != nil {
				return err
			}
			e, err := a.planner().GetExpense(id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("category") {
				e.Category = category
			}
			if flags.Changed("amount") {
				if e.Amount, err = core.ParseAmount(amount); err != nil {
					return &core.ValidationError{Field: "amount", Err: err}
				}
			}
			if flags.Changed("description") {
				e.Description = description
			}
			if flags.Changed("payment") {
				e.PaymentMethod = payment
			}
			if flags.Changed("tags") {
				e.Tags = core.SplitTags(tags)
			}
			if flags.Changed("date") {
				if e.Date, err = parseDay(date); err != nil {
					return err
				}
			}
			return a.planner().EditExpense(cmd.Context(), e)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "New amount")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&payment, "payment", "p", "", "New payment method")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "New comma separated tags, empty to clear")
	cmd.Flags().StringVar(&date, "date", "", "New date YYYY-MM-DD")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|position>...",
		Short: "Delete expenses by id, or by position in the stored order",
		Long: `Delete expenses. When every argument is a number they are treated as
positions in the stored order (as shown by "list" without filters) and
removed together; otherwise each argument is an expense id.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if positions, ok := allPositions(args); ok {
				return a.planner().DeleteExpenseAt(cmd.Context(), positions...)
			}
			for _, arg := range args {
				id, err := core.ParseExpenseID(arg)
				if err != nil {
					return err
				}
				if err := a.planner().DeleteExpense(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func allPositions(args []string) ([]int, bool) {
	out := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func (a *app) sortCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "sort <date|amount>",
		Short:     "Reorder the stored expenses",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(core.SortByDate), string(core.SortByAmount)},
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := core.ParseSortCriteria(args[0])
			if err != nil {
				return err
			}
			return a.planner().SortExpenses(cmd.Context(), criteria)
		},
	}
}
