package mesh

import (
	"context"
	"regexp"
	"strings"

	"github.com/RogueNAND/fleetcommandav/internal/errors"
	"github.com/RogueNAND/fleetcommandav/internal/logging"
	"github.com/RogueNAND/fleetcommandav/internal/retry"
)

const sysctlPath = "/etc/sysctl.d/99-tailscale.conf"

const sysctlForwarding = "net.ipv4.ip_forward = 1\nnet.ipv6.conf.all.forwarding = 1\n"

// loginConfirmed marks a completed non-interactive login in the
// enrollment command's output.
const loginConfirmed = "Success."

var authURLPattern = regexp.MustCompile(`https://\S+`)

// Enroll invokes the enrollment command for req and classifies the
// result. With an auth key the attempt is non-interactive and the
// combined output is parsed; without one the command talks to the user
// directly and membership is confirmed by a bounded status poll.
func (e *Enroller) Enroll(ctx context.Context, req Request) (Outcome, error) {
	if len(req.AdvertiseRoutes) > 0 {
		// Advertised routes do not carry traffic without forwarding;
		// this is a hard precondition, not best-effort.
		if err := e.enableIPForwarding(ctx); err != nil {
			return Outcome{}, err
		}
	}

	logging.Debug("invoking enrollment", "cmd", req.CommandLine())

	if req.AuthKey != "" {
		out, err := e.Exec.Execute(ctx, "tailscale", req.Args(false)...)
		if err != nil {
			logging.Debug("enrollment command exited nonzero", "err", err)
		}
		return e.classify(string(out), req), nil
	}

	if err := e.Exec.ExecuteInteractive(ctx, "tailscale", req.Args(false)...); err != nil {
		logging.Debug("interactive enrollment exited nonzero", "err", err)
	}

	pollErr := retry.Poll(ctx, e.PollAttempts, e.PollInterval, func(ctx context.Context) (bool, error) {
		return e.Status(ctx) == StateAuthenticated, nil
	})
	if pollErr != nil {
		return Outcome{
			Kind: Failed,
			Hint: req.CommandLine(),
		}, nil
	}
	return Outcome{Kind: Authenticated}, nil
}

// classify maps captured enrollment output to an outcome: confirmed
// login, a pending browser-authorization URL, or failure with the raw
// output for diagnosis.
func (e *Enroller) classify(output string, req Request) Outcome {
	if strings.Contains(output, loginConfirmed) {
		return Outcome{Kind: Authenticated}
	}
	if url := authURLPattern.FindString(output); url != "" {
		return Outcome{Kind: PendingAuthorization, AuthURL: url}
	}
	return Outcome{
		Kind:      Failed,
		RawOutput: output,
		Hint:      req.CommandLine(),
	}
}

// enableIPForwarding persists and loads the forwarding sysctls.
func (e *Enroller) enableIPForwarding(ctx context.Context) error {
	if err := e.FS.WriteFile(sysctlPath, []byte(sysctlForwarding), 0644); err != nil {
		return errors.EnrollFailed("write "+sysctlPath, err)
	}
	if out, err := e.Exec.Execute(ctx, "sysctl", "-p", sysctlPath); err != nil {
		logging.Debug("sysctl load failed", "output", string(out))
		return errors.CommandFailed("sysctl -p "+sysctlPath, err)
	}
	logging.Debug("IP forwarding enabled")
	return nil
}
