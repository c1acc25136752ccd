package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"budgetplanner/internal/cli"
	"budgetplanner/internal/log"
	"budgetplanner/internal/services"
)

// app holds the state shared by every subcommand for one invocation.
type app struct {
	out     io.Writer
	errOut  io.Writer
	session *cli.Session
}

// execute runs one command line and always releases the session, including
// when the command fails.
func execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{out: out, errOut: errOut}
	root := a.rootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if cerr := a.session.Close(); cerr != nil {
		log.FromContext(root.Context()).Warn("Failed to close session", log.FieldError, cerr.Error())
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planner",
		Short: "Track personal expenses by category, payment method and tag.",
		Long: `planner records expenses, keeps a list of categories and summarises
spending. Data is stored in the backend selected by DATA_BACKEND.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.sortCmd(),
		a.categoriesCmd(),
		a.summaryCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.watchCmd(),
	)
	return root
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, a.errOut)

	ctx := log.NewContext(cmd.Context(), logger)
	cmd.SetContext(ctx)

	a.session, err = cli.OpenSession(ctx, cfg, logger)
	return err
}

func (a *app) planner() *services.Planner {
	return a.session.Planner
}
