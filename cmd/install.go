package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RogueNAND/fleetcommandav/internal/config"
	"github.com/RogueNAND/fleetcommandav/internal/envfile"
	"github.com/RogueNAND/fleetcommandav/internal/input"
	"github.com/RogueNAND/fleetcommandav/internal/netconf"
	"github.com/RogueNAND/fleetcommandav/internal/profiles"
	"github.com/RogueNAND/fleetcommandav/internal/stack"
	"github.com/RogueNAND/fleetcommandav/internal/system"
)

var (
	installProfiles string
	installReenroll bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Provision the appliance end to end",
	Long: `Brings the appliance to its desired state in order: resolve the
deployment profile set, converge the host network configuration, deploy
the service stack, and enroll the host in the mesh.

Each stage is idempotent, so install can be re-run after a partial
failure. An enrollment that needs manual follow-up (browser approval,
expired key) does not fail the install; the stack stays up and the
remediation steps are printed.`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVarP(&installProfiles, "profiles", "p", "",
		"Comma-separated deployment profiles (overrides the persisted set)")
	installCmd.Flags().BoolVar(&installReenroll, "reenroll", false,
		"Re-run mesh enrollment even when already authenticated")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src := input.Terminal{}

	set, err := resolveProfiles(cmd, cfg, src)
	if err != nil {
		return err
	}
	if !set.Empty() {
		logInfo("Profiles: %s", set)
	}

	logInfo("Checking network configuration...")
	result, err := netconf.NewReconciler(cfg.Network).Reconcile(ctx)
	if err != nil {
		return err
	}
	if result == netconf.Applied {
		logSuccess("Network configuration updated")
	} else {
		logInfo("Network configuration already converged")
	}

	if err := stack.NewDeployer(cfg).Deploy(ctx); err != nil {
		return err
	}
	logSuccess("Service stack running")

	// Enrollment follow-up is manual, never fatal: the stack above is
	// already serving.
	if err := runEnrollment(ctx, cfg, src, installReenroll, false); err != nil {
		return err
	}

	printAccessInfo(cfg)
	return nil
}

func resolveProfiles(cmd *cobra.Command, cfg *config.Config, src input.Source) (profiles.Set, error) {
	store := envfile.NewStore(cfg.EnvFile)
	return profiles.Resolve(store, installProfiles, src, func() ([]string, error) {
		return stack.AvailableProfiles(cmd.Context(), system.DefaultFS(), cfg.ComposeFile())
	})
}
