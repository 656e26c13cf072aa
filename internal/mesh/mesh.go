// Package mesh drives tailnet membership for the appliance.
//
// Enrollment is a small state machine: probe the daemon's status, start
// it if stopped, and if the host is not yet authenticated run the
// enrollment command, either non-interactively with a pre-shared auth
// key or interactively with a browser-authorization URL and a bounded
// status poll.
//
// The auth key is a secret. It is never persisted and every rendered
// command line replaces it with a fixed placeholder.
package mesh

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// State is the daemon's membership state.
type State int

const (
	// StateUninstalled means the CLI binary is not on the host.
	StateUninstalled State = iota
	// StateStopped means the daemon is installed but not running.
	StateStopped
	// StateUnauthenticated means the daemon runs but the host is not
	// logged in.
	StateUnauthenticated
	// StateAuthenticated means the host is a mesh member.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "uninstalled"
	case StateStopped:
		return "stopped"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// RedactedKey replaces the auth key in every displayed command line.
const RedactedKey = "<redacted>"

// Request holds the inputs of one enrollment attempt. It is built once
// per attempt and never written to disk.
type Request struct {
	AuthKey         string
	LoginServer     string
	AdvertiseRoutes []string
	ExitNode        bool
	SSH             bool
}

// Args renders the enrollment command arguments. With redact set the
// auth key value is replaced by RedactedKey.
func (r Request) Args(redact bool) []string {
	args := []string{"up"}
	if r.LoginServer != "" {
		args = append(args, "--login-server="+r.LoginServer)
	}
	if r.AuthKey != "" {
		key := r.AuthKey
		if redact {
			key = RedactedKey
		}
		args = append(args, "--auth-key="+key)
	}
	if len(r.AdvertiseRoutes) > 0 {
		args = append(args, "--advertise-routes="+strings.Join(r.AdvertiseRoutes, ","))
	}
	if r.ExitNode {
		args = append(args, "--advertise-exit-node")
	}
	if r.SSH {
		args = append(args, "--ssh")
	}
	return args
}

// CommandLine renders the full, redacted command for logs and
// remediation hints.
func (r Request) CommandLine() string {
	return shellquote.Join(append([]string{"tailscale"}, r.Args(true)...)...)
}

// OutcomeKind classifies an enrollment attempt.
type OutcomeKind int

const (
	// Authenticated is terminal success.
	Authenticated OutcomeKind = iota
	// PendingAuthorization means the mesh wants a browser approval at
	// AuthURL; manual follow-up, not a process failure.
	PendingAuthorization
	// Failed is terminal failure requiring manual follow-up.
	Failed
)

// Outcome is the result of one enrollment attempt.
type Outcome struct {
	Kind      OutcomeKind
	AuthURL   string
	RawOutput string
	// Hint is the redacted command to retry manually, set on Failed.
	Hint string
}
