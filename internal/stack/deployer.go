// Package stack deploys the appliance's compose service stack.
package stack

import (
	"context"

	"github.com/RogueNAND/fleetcommandav/internal/config"
	"github.com/RogueNAND/fleetcommandav/internal/errors"
	"github.com/RogueNAND/fleetcommandav/internal/logging"
	"github.com/RogueNAND/fleetcommandav/internal/system"
)

// Deployer brings the compose stack to a fresh running state.
//
// Every step is independently idempotent. Teardown and image fetch
// tolerate failure (a cold start has nothing to tear down, and cached
// images survive a registry outage); only the final bring-up is fatal.
type Deployer struct {
	Exec   system.CommandExecutor
	FS     system.FileSystem
	Docker DaemonPinger

	StackDir     string
	DataDir      string
	MeshStateDir string
	OwnerUID     int
	OwnerGID     int
}

// NewDeployer creates a Deployer for the configured stack.
func NewDeployer(cfg *config.Config) *Deployer {
	return &Deployer{
		Exec:         system.DefaultExecutor(),
		FS:           system.DefaultFS(),
		Docker:       NewDockerPinger(),
		StackDir:     cfg.StackDir,
		DataDir:      cfg.DataDir,
		MeshStateDir: cfg.MeshStateDir(),
		OwnerUID:     cfg.OwnerUID,
		OwnerGID:     cfg.OwnerGID,
	}
}

// Deploy runs the full stop-fetch-rebuild-start cycle.
func (d *Deployer) Deploy(ctx context.Context) error {
	if err := d.Docker.Ping(ctx); err != nil {
		return errors.Wrap(errors.ExitDeployFailed, "docker daemon unreachable", err)
	}

	if err := d.applyOwnership(); err != nil {
		return err
	}

	if out, err := d.compose(ctx, "down", "--remove-orphans"); err != nil {
		logging.Debug("stack teardown skipped", "output", string(out), "err", err)
	}

	if out, err := d.compose(ctx, "pull"); err != nil {
		logging.Debug("image fetch failed", "output", string(out))
		logging.UserWarning("Image fetch failed; continuing with locally cached images (%v)", err)
	}

	logging.UserInfo("Starting service stack...")
	if err := d.composeInteractive(ctx, "up", "-d", "--build"); err != nil {
		return errors.DeployFailed(err)
	}

	// Container entrypoints commonly chown their volumes during init;
	// restore the host-side owner after bring-up.
	return d.applyOwnership()
}

// applyOwnership ensures the data tree exists with the configured owner
// and modes, including the restricted mesh-state subtree.
func (d *Deployer) applyOwnership() error {
	if err := d.FS.MkdirAll(d.DataDir, 0755); err != nil {
		return errors.Wrap(errors.ExitDeployFailed, "create data dir "+d.DataDir, err)
	}
	if err := d.FS.MkdirAll(d.MeshStateDir, 0700); err != nil {
		return errors.Wrap(errors.ExitDeployFailed, "create mesh state dir "+d.MeshStateDir, err)
	}
	if err := d.FS.ChownAll(d.DataDir, d.OwnerUID, d.OwnerGID); err != nil {
		return errors.Wrap(errors.ExitDeployFailed, "set owner on "+d.DataDir, err)
	}
	if err := d.FS.Chmod(d.DataDir, 0755); err != nil {
		return errors.Wrap(errors.ExitDeployFailed, "set mode on "+d.DataDir, err)
	}
	if err := d.FS.Chmod(d.MeshStateDir, 0700); err != nil {
		return errors.Wrap(errors.ExitDeployFailed, "set mode on "+d.MeshStateDir, err)
	}
	return nil
}

func (d *Deployer) compose(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"compose", "--project-directory", d.StackDir}, args...)
	return d.Exec.Execute(ctx, "docker", full...)
}

func (d *Deployer) composeInteractive(ctx context.Context, args ...string) error {
	full := append([]string{"compose", "--project-directory", d.StackDir}, args...)
	return d.Exec.ExecuteInteractive(ctx, "docker", full...)
}

// PS returns the stack's container listing for status output.
func (d *Deployer) PS(ctx context.Context) (string, error) {
	out, err := d.compose(ctx, "ps")
	return string(out), err
}
