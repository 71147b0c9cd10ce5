package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Wes1101/T4-1000-netdiag/internal/logger"
)

// Global flags for logging configuration
var (
	flagLogLevel  string
	flagLogFormat string
)

// RegisterLoggerFlags registers global logging flags
func RegisterLoggerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
}

// CreateLogger creates a logger based on CLI flags
func CreateLogger() logger.Logger {
	format := logger.FormatText
	if flagLogFormat == "json" {
		format = logger.FormatJSON
	}

	return logger.New(
		logger.WithLevel(logger.ParseLevel(flagLogLevel)),
		logger.WithFormat(format),
		logger.WithOutput(os.Stderr),
	)
}
