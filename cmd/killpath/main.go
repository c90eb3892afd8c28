package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath      string
	flagSource      string
	flagListingFile string
	flagTerminator  string
	flagLogLevel    string
	flagDryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "killpath [path...]",
	Short: "killpath: terminate every process started from a given executable",
	Long: `killpath lists running processes whose image name matches each given path,
keeps the ones whose executable path contains that path (case-insensitive),
and forcefully terminates them. Problems are reported but never change the
exit status.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runKill,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to YAML config file")
	pf.StringVar(&flagSource, "source", "", "Listing source: wmic, powershell or file")
	pf.StringVar(&flagListingFile, "listing-file", "", "Read the process listing from this file instead of running a tool (- for stdin)")
	pf.StringVar(&flagTerminator, "terminator", "", "Terminator: taskkill or native")
	pf.StringVar(&flagLogLevel, "log-level", "", "Diagnostic log level: debug, info, warn or error")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Report what would be terminated without terminating anything")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
