// Package config loads the appliance site configuration.
//
// The site config is an optional TOML file; a missing file yields pure
// defaults so a stock appliance installs with zero configuration.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/RogueNAND/fleetcommandav/internal/errors"
	"github.com/RogueNAND/fleetcommandav/internal/system"
)

// DefaultPath is where the site config lives on the appliance.
const DefaultPath = "/etc/fleetcommandav/config.toml"

// Config is the appliance site configuration.
type Config struct {
	// StackDir holds the compose project (compose.yaml and .env).
	StackDir string `toml:"stack_dir"`

	// DataDir is the stack's persistent data tree. Ownership and modes
	// are re-applied on every deploy.
	DataDir string `toml:"data_dir"`

	// EnvFile is the settings file; defaults to <StackDir>/.env.
	EnvFile string `toml:"env_file"`

	// OwnerUID and OwnerGID own DataDir.
	OwnerUID int `toml:"owner_uid"`
	OwnerGID int `toml:"owner_gid"`

	// DashboardPort is the published port of the dashboard service.
	DashboardPort int `toml:"dashboard_port"`

	Mesh    MeshConfig    `toml:"mesh"`
	Network NetworkConfig `toml:"network"`
}

// MeshConfig configures tailnet enrollment.
type MeshConfig struct {
	// LoginServer overrides the coordination server URL (self-hosted
	// control planes). Empty means the vendor default.
	LoginServer string `toml:"login_server"`

	// AdvertiseExitNode offers this host as an exit node.
	AdvertiseExitNode bool `toml:"advertise_exit_node"`

	// SSH enables mesh SSH on this host.
	SSH bool `toml:"ssh"`
}

// NetworkConfig describes the desired renderer state.
type NetworkConfig struct {
	// UnmanagedPatterns are device globs NetworkManager must leave alone.
	UnmanagedPatterns []string `toml:"unmanaged_patterns"`

	// MountOptions maps fstab mount points to options their entries
	// must carry.
	MountOptions map[string][]string `toml:"mount_options"`
}

// Default returns the stock appliance configuration.
func Default() *Config {
	return &Config{
		StackDir:      "/opt/fleetcommandav",
		DataDir:       "/opt/fleetcommandav/data",
		OwnerUID:      1000,
		OwnerGID:      1000,
		DashboardPort: 8000,
		Network: NetworkConfig{
			UnmanagedPatterns: []string{
				"interface-name:tailscale*",
				"interface-name:docker0",
				"interface-name:veth*",
				"interface-name:br-*",
			},
		},
	}
}

// Load reads the site config at path, overlaying defaults. A missing
// file is not an error.
func Load(path string, filesystem system.FileSystem) (*Config, error) {
	cfg := Default()

	data, err := filesystem.ReadFile(path)
	if err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ConfigError("read site config "+path, err)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.ConfigError("parse site config "+path, err)
	}

	if cfg.EnvFile == "" {
		cfg.EnvFile = filepath.Join(cfg.StackDir, ".env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError("invalid site config "+path, err)
	}
	return cfg, nil
}

// Validate checks invariants the rest of the installer relies on.
func (c *Config) Validate() error {
	if c.StackDir == "" {
		return fmt.Errorf("stack_dir must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.OwnerUID < 0 || c.OwnerGID < 0 {
		return fmt.Errorf("owner_uid/owner_gid must be non-negative")
	}
	if c.DashboardPort < 1 || c.DashboardPort > 65535 {
		return fmt.Errorf("dashboard_port %d out of range", c.DashboardPort)
	}
	return nil
}

// MeshStateDir is the sensitive mesh-state subtree under DataDir.
func (c *Config) MeshStateDir() string {
	return filepath.Join(c.DataDir, "tailscale")
}

// ComposeFile is the stack descriptor path.
func (c *Config) ComposeFile() string {
	return filepath.Join(c.StackDir, "compose.yaml")
}
