package cli

import (
	"github.com/spf13/cobra"

	"interview-prep-simulator/internal/smoke"
)

var smokeBaseURL string

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run a full interview round trip against a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return smoke.NewRunner(smokeBaseURL, cmd.OutOrStdout()).Run(cmd.Context())
	},
}

func init() {
	smokeCmd.Flags().StringVar(&smokeBaseURL, "base-url", "http://localhost:8000", "Server base URL")
}
