package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RogueNAND/fleetcommandav/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "fcavctl",
	Short: "FleetCommand AV appliance provisioning CLI",
	Long: `fcavctl brings a FleetCommand AV appliance into its desired state:
host network renderer, containerized service stack, and mesh membership.

Runs are idempotent: converged subsystems are detected and skipped, so
re-running after a partial failure is always safe.

Note: a single run per host is assumed. Two concurrent invocations on
the same host are unsupported.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
}

// Execute runs the CLI. The elapsed-time line is printed on every exit
// path, success or failure.
func Execute() error {
	start := time.Now()
	err := rootCmd.Execute()
	if err != nil {
		logging.UserError("%v", err)
	}
	logging.UserInfo("Finished in %s", time.Since(start).Round(time.Millisecond))
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
