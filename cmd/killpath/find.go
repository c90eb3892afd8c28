package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdFind)
}

var cmdFind = &cobra.Command{
	Use:   "find <path>...",
	Short: "Show the running instances of each path without terminating them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, done, err := controllerFactory()
		if err != nil {
			return err
		}
		defer done()

		out := cmd.OutOrStdout()
		for _, path := range args {
			res, err := controller.Find(cmd.Context(), path)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", path, err)
				continue
			}
			if !res.Running() {
				fmt.Fprintf(out, "%s is not running\n", res.Image)
				continue
			}
			for _, rec := range res.Records {
				fmt.Fprintf(out, "pid=%s exe=%s\n", rec.ProcessID, rec.ExecutablePath)
			}
		}
		return nil
	},
}
