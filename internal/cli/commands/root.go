// Package commands implements the netdiag command line interface.
package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "netdiag",
	Short: "Process-supervised network telemetry session recorder",
	Long: `Netdiag records one network telemetry session: it starts the external
collection agent, drives traffic at a target with a load generator for a
configured duration, stops the agent, and verifies the recorded NDJSON
output.

The agent is a black box configured entirely through environment
variables; netdiag never parses the events it writes.`,
}

// flagStateDir is shared by every command that touches recorded sessions
var flagStateDir string

func init() {
	rootCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", "", "Directory for session records and agent logs (default ~/.netdiag)")
	RegisterLoggerFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
