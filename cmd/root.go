package cmd

import (
	"fmt"
	"os"

	"travel-ops/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "travel-ops",
	Short: "Travel Ops Service",
	Long: `Travel Ops keeps package departures in step with their flight lists.
It reconciles ops groups when flights change and migrates stored state snapshots.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level gives ISO8601 timestamps for CLI output
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
