package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "turnkit",
	Short: "Per-turn conversational dispatch toolkit",
	Long:  "TurnKit dispatches send, update, and delete operations through ordered interceptor chains before a transport adapter delivers them.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
