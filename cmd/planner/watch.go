package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"budgetplanner/internal/amqp"
	"budgetplanner/internal/cli"
	"budgetplanner/internal/log"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print change events published by other planner processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.FromContext(cmd.Context())
			client := a.session.AMQP
			if client == nil {
				var err error
				if client, err = cli.ConnectAMQP(a.session.Config, logger); err != nil {
					return err
				}
				defer client.Close()
			}

			ctx, stop := cli.ShutdownContext(cmd.Context(), logger)
			defer stop()

			err := client.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
				_, err := fmt.Fprintln(a.out, formatChange(msg))
				return err
			})
			if errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		},
	}
}

func formatChange(msg *amqp.ChangeMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s count=%d", msg.Timestamp.Format("2006-01-02T15:04:05"), msg.Slot, msg.Kind, msg.Count)
	if msg.Label != "" {
		fmt.Fprintf(&b, " label=%s", msg.Label)
	}
	if len(msg.IDs) > 0 {
		fmt.Fprintf(&b, " ids=%s", strings.Join(msg.IDs, ","))
	}
	return b.String()
}
