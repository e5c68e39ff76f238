// Package cli defines the cobra commands of the interview-prep binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"interview-prep-simulator/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "interview-prep",
	Short: "Interview prep simulator API",
	Long: `Interview Prep Simulator serves generated interview questions,
scores candidate answers and adapts difficulty across a session.`,
	Version:       telemetry.ServiceVersion,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(smokeCmd)
}
