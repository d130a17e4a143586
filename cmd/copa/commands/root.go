package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "copa",
	Short: "Copa - sector competition period lifecycle engine",
	Long: `Copa Unified CLI

Ranks sectors against performance targets, resolves ties and closes
competition periods through a controlled lifecycle.

Usage:
  go run ./cmd/copa [command]

Examples:
  go run ./cmd/copa api
  go run ./cmd/copa ranking 2026-08
  go run ./cmd/copa scheduler start
  go run ./cmd/copa officialize --period 12 --winner 3 --user maria`,
}

// Execute adds all child commands to the root command and runs it.
// Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
