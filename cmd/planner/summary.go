package main

import (
	"github.com/spf13/cobra"

	"budgetplanner/internal/report"
)

func (a *app) summaryCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals by category, payment method and tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return report.WriteSummary(a.out, a.planner().Summary(), f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "Output format: text, json or yaml")
	return cmd
}
