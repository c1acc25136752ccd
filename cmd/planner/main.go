// Command planner is a terminal front end for the personal budget planner.
package main

import (
	"context"
	"os"

	"budgetplanner/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	if err := execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
