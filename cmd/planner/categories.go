package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage the category list",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories with their positions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				for i, label := range a.planner().ListCategories() {
					fmt.Fprintf(a.out, "%d\t%s\n", i, label)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <label>",
			Short: "Add a category unless it already exists",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				added, err := a.planner().AddCategory(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(a.out, "%s already exists\n", args[0])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <position>",
			Short: "Delete the category at position",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pos, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid position %q", args[0])
				}
				return a.planner().DeleteCategory(cmd.Context(), pos)
			},
		},
	)
	return cmd
}
