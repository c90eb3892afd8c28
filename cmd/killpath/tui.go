package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"killpath/internal/tui"
)

var tuiDryRun bool

func init() {
	rootCmd.AddCommand(cmdTUI)
	cmdTUI.Flags().BoolVar(&tuiDryRun, "dry-run", false, "Pick processes without terminating them")
}

var cmdTUI = &cobra.Command{
	Use:   "tui <path>...",
	Short: "Pick which running instances to terminate in an interactive terminal UI",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, done, err := controllerFactory()
		if err != nil {
			return err
		}
		defer done()

		if err := tui.Run(controller, args, tuiDryRun); err != nil {
			return fmt.Errorf("tui exited with error: %w", err)
		}
		return nil
	},
}
