package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"budgetplanner/internal/export"
	"budgetplanner/internal/log"
)

func (a *app) csvOptions() export.Options {
	return export.Options{Delimiter: a.session.Config.Delimiter()}
}

func (a *app) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every expense as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var w io.Writer = a.out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			expenses := a.planner().ListExpenses()
			if err := export.Write(w, expenses, a.csvOptions()); err != nil {
				return err
			}
			log.FromContext(cmd.Context()).DebugContext(cmd.Context(), "Exported expenses",
				log.FieldOperation, log.OpExport, log.FieldCount, len(expenses))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Add expenses from a CSV file; ids already present are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			res, err := export.Import(cmd.Context(), f, a.csvOptions(), a.planner(), log.FromContext(cmd.Context()))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added %d, skipped %d\n", res.Added, res.Skipped)
			return nil
		},
	}
}
