package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RogueNAND/fleetcommandav/internal/envfile"
	"github.com/RogueNAND/fleetcommandav/internal/input"
	"github.com/RogueNAND/fleetcommandav/internal/mesh"
	"github.com/RogueNAND/fleetcommandav/internal/netconf"
	"github.com/RogueNAND/fleetcommandav/internal/profiles"
	"github.com/RogueNAND/fleetcommandav/internal/stack"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report appliance state without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		persisted, _ := envfile.NewStore(cfg.EnvFile).Get(profiles.Key)
		set := profiles.Parse(persisted)
		if set.Empty() {
			logInfo("Profiles: none (core services only)")
		} else {
			logInfo("Profiles: %s", set)
		}

		facts := netconf.NewReconciler(cfg.Network).Inspect(ctx)
		logInfo("Network: %s", facts.Describe())

		if out, err := stack.NewDeployer(cfg).PS(ctx); err != nil {
			logWarning("Stack state unavailable: %v", err)
		} else {
			logInfo("Stack:")
			fmt.Println(strings.TrimRight(out, "\n"))
		}

		state := mesh.NewEnroller(cfg.Mesh, input.Static{}).Status(ctx)
		logInfo("Mesh: %s", state)

		logInfo("Dashboard: %s", dashboardURL(cfg.DashboardPort))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
