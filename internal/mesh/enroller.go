package mesh

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"time"

	"github.com/RogueNAND/fleetcommandav/internal/config"
	"github.com/RogueNAND/fleetcommandav/internal/errors"
	"github.com/RogueNAND/fleetcommandav/internal/input"
	"github.com/RogueNAND/fleetcommandav/internal/logging"
	"github.com/RogueNAND/fleetcommandav/internal/netinfo"
	"github.com/RogueNAND/fleetcommandav/internal/system"
)

// AuthKeyEnv is the environment variable consulted for a pre-shared
// enrollment key before prompting.
const AuthKeyEnv = "FCAV_TS_AUTHKEY"

const daemonUnit = "tailscaled"

// Enroller drives the enrollment state machine.
type Enroller struct {
	Exec  system.CommandExecutor
	FS    system.FileSystem
	Input input.Source

	LoginServer string
	ExitNode    bool
	SSH         bool

	// DetectLAN supplies the default subnet-advertisement CIDR.
	DetectLAN func() (string, error)

	// LookupEnv is os.LookupEnv, injectable for tests.
	LookupEnv func(string) (string, bool)

	PollAttempts int
	PollInterval time.Duration
}

// NewEnroller creates an Enroller from the site mesh config.
func NewEnroller(cfg config.MeshConfig, src input.Source) *Enroller {
	return &Enroller{
		Exec:         system.DefaultExecutor(),
		FS:           system.DefaultFS(),
		Input:        src,
		LoginServer:  cfg.LoginServer,
		ExitNode:     cfg.AdvertiseExitNode,
		SSH:          cfg.SSH,
		DetectLAN:    netinfo.DefaultLANCIDR,
		LookupEnv:    os.LookupEnv,
		PollAttempts: 24,
		PollInterval: 5 * time.Second,
	}
}

// statusReply is the subset of `tailscale status --json` we consume.
type statusReply struct {
	BackendState string `json:"BackendState"`
}

// Status probes the current membership state. Probe failures map to
// StateStopped rather than erroring: a daemon that is not running yet
// is an expected condition, not a fault.
func (e *Enroller) Status(ctx context.Context) State {
	if _, err := e.Exec.LookPath("tailscale"); err != nil {
		return StateUninstalled
	}

	out, err := e.Exec.Execute(ctx, "tailscale", "status", "--json")
	if err != nil {
		logging.Debug("status probe failed", "err", err)
		return StateStopped
	}

	var reply statusReply
	if err := json.Unmarshal(out, &reply); err != nil {
		logging.Debug("unparsable status reply", "err", err)
		return StateStopped
	}

	switch reply.BackendState {
	case "Running":
		return StateAuthenticated
	case "NeedsLogin", "NeedsMachineAuth":
		return StateUnauthenticated
	default:
		return StateStopped
	}
}

// EnsureRunning starts and enables the mesh daemon.
func (e *Enroller) EnsureRunning(ctx context.Context) error {
	logging.Debug("starting mesh daemon", "unit", daemonUnit)
	if out, err := e.Exec.Execute(ctx, "systemctl", "enable", "--now", daemonUnit); err != nil {
		logging.Debug("daemon start failed", "output", string(out))
		return errors.CommandFailed("systemctl enable --now "+daemonUnit, err)
	}
	return nil
}

// BuildRequest gathers the enrollment inputs: the configured login
// server and flags, an optional LAN subnet advertisement (auto-detected
// default, user may override or decline), and the auth key from the
// environment or a no-echo prompt.
func (e *Enroller) BuildRequest() (Request, error) {
	req := Request{
		LoginServer: e.LoginServer,
		ExitNode:    e.ExitNode,
		SSH:         e.SSH,
	}

	lan, err := e.DetectLAN()
	if err != nil {
		logging.Debug("LAN detection failed", "err", err)
		lan = ""
	}
	answer, err := e.Input.Prompt("Advertise LAN subnet (CIDR, empty to skip)", lan)
	if err != nil {
		return Request{}, err
	}
	if answer != "" {
		if _, _, err := net.ParseCIDR(answer); err != nil {
			return Request{}, errors.EnrollFailed("invalid subnet "+answer, err)
		}
		req.AdvertiseRoutes = append(req.AdvertiseRoutes, answer)
	}

	if key, ok := e.LookupEnv(AuthKeyEnv); ok && key != "" {
		logging.Debug("using pre-shared auth key from environment")
		req.AuthKey = key
	} else {
		key, err := e.Input.Secret("Pre-shared auth key (empty for browser login)")
		if err != nil {
			return Request{}, err
		}
		req.AuthKey = key
	}

	return req, nil
}
