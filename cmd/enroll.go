package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/RogueNAND/fleetcommandav/internal/config"
	"github.com/RogueNAND/fleetcommandav/internal/errors"
	"github.com/RogueNAND/fleetcommandav/internal/input"
	"github.com/RogueNAND/fleetcommandav/internal/mesh"
)

var enrollReenroll bool

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Enroll the host in the mesh",
	Long: `Runs mesh enrollment standalone: probes the daemon state, starts it
if stopped, and authenticates with a pre-shared key (` + mesh.AuthKeyEnv + `
or prompt) or an interactive browser login.

Unlike install, a failed or incomplete enrollment exits non-zero here.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runEnrollment(cmd.Context(), cfg, input.Terminal{}, enrollReenroll, true)
	},
}

func init() {
	enrollCmd.Flags().BoolVar(&enrollReenroll, "reenroll", false,
		"Re-run enrollment even when already authenticated")
	rootCmd.AddCommand(enrollCmd)
}

// runEnrollment drives the enrollment state machine. With strict set,
// anything short of membership returns a typed error; otherwise pending
// and failed outcomes are reported with remediation steps and tolerated.
func runEnrollment(ctx context.Context, cfg *config.Config, src input.Source, force, strict bool) error {
	e := mesh.NewEnroller(cfg.Mesh, src)

	state := e.Status(ctx)
	switch state {
	case mesh.StateUninstalled:
		logWarning("tailscale is not installed; skipping mesh enrollment")
		if strict {
			return errors.EnrollFailed("tailscale is not installed", nil)
		}
		return nil
	case mesh.StateAuthenticated:
		if !force {
			logSuccess("Host already enrolled in the mesh")
			return nil
		}
		logInfo("Re-running mesh enrollment...")
	case mesh.StateStopped:
		if err := e.EnsureRunning(ctx); err != nil {
			return err
		}
	}

	req, err := e.BuildRequest()
	if err != nil {
		return err
	}

	logInfo("Enrolling in the mesh...")
	outcome, err := e.Enroll(ctx, req)
	if err != nil {
		return err
	}

	switch outcome.Kind {
	case mesh.Authenticated:
		logSuccess("Host enrolled in the mesh")
		return nil
	case mesh.PendingAuthorization:
		logWarning("Mesh membership needs approval. Authorize this host at:")
		logWarning("  %s", outcome.AuthURL)
		logInfo("Enrollment completes once the host is approved")
		if strict {
			return errors.EnrollFailed("mesh membership pending approval", nil)
		}
		return nil
	default:
		logError("Mesh enrollment did not complete")
		if outcome.RawOutput != "" {
			logInfo("Enrollment output:\n%s", outcome.RawOutput)
		}
		if outcome.Hint != "" {
			logInfo("Retry manually with: %s", outcome.Hint)
		}
		if strict {
			return errors.EnrollFailed("mesh enrollment did not complete", nil)
		}
		return nil
	}
}
