package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"killpath/internal/app"
)

// runKill is the root command: find and terminate every instance of each
// path. Per-target problems are printed and the command still succeeds.
func runKill(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	controller, done, err := controllerFactory()
	if err != nil {
		return err
	}
	defer done()

	spin := spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	spin.Suffix = " Collecting process listings..."
	spin.Start()
	res := controller.Kill(cmd.Context(), app.KillParams{Paths: args, DryRun: flagDryRun})
	spin.Stop()

	out := cmd.OutOrStdout()
	for _, line := range res.Diagnostics() {
		fmt.Fprintln(out, line)
	}
	verb := "requested"
	if flagDryRun {
		verb = "planned"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d termination(s) %s, %d problem(s)\n", res.Requested(), verb, res.Failures())
	return nil
}
