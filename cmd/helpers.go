package cmd

import (
	"fmt"

	"github.com/RogueNAND/fleetcommandav/internal/config"
	"github.com/RogueNAND/fleetcommandav/internal/logging"
	"github.com/RogueNAND/fleetcommandav/internal/netinfo"
	"github.com/RogueNAND/fleetcommandav/internal/system"
)

// loadConfig loads the site configuration from its default location.
func loadConfig() (*config.Config, error) {
	return config.Load(config.DefaultPath, system.DefaultFS())
}

// dashboardURL derives the dashboard address from the host's first
// global IPv4 address, falling back to localhost.
func dashboardURL(port int) string {
	host, err := netinfo.PrimaryIPv4()
	if err != nil {
		logging.Debug("no global IPv4 address", "err", err)
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// printAccessInfo reports how to reach the deployed dashboard.
func printAccessInfo(cfg *config.Config) {
	logSuccess("Appliance ready")
	fmt.Printf("  Dashboard: %s\n", dashboardURL(cfg.DashboardPort))
	fmt.Printf("  Data:      %s\n", cfg.DataDir)
}
