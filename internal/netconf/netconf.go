// Package netconf reconciles the host's network-management configuration.
//
// Desired state: netplan rendering through NetworkManager, with container
// and mesh interfaces excluded from management, and configured fstab
// entries carrying their required mount options. Each fact is checked
// independently; a converged host performs zero mutating actions.
//
// File mutations are the durable success criterion. The live apply step
// (netplan apply) is best-effort with a single retry: first-boot service
// ordering makes it racy, and the OS converges on next boot anyway.
package netconf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RogueNAND/fleetcommandav/internal/config"
	"github.com/RogueNAND/fleetcommandav/internal/errors"
	"github.com/RogueNAND/fleetcommandav/internal/logging"
	"github.com/RogueNAND/fleetcommandav/internal/retry"
	"github.com/RogueNAND/fleetcommandav/internal/system"
)

const (
	rendererPath  = "/etc/netplan/01-network-manager.yaml"
	unmanagedPath = "/etc/NetworkManager/conf.d/10-unmanaged-devices.conf"
	fstabPath     = "/etc/fstab"

	managerUnit   = "NetworkManager"
	competingUnit = "systemd-networkd"
)

// Result reports whether a reconciliation run changed anything.
type Result int

const (
	// Skipped means every fact already held; nothing was mutated.
	Skipped Result = iota
	// Applied means at least one mutation ran.
	Applied
)

func (r Result) String() string {
	if r == Applied {
		return "applied"
	}
	return "skipped"
}

// Facts are the independent conditions the reconciler converges on.
type Facts struct {
	ManagerInstalled bool
	UnmanagedCurrent bool
	RendererCurrent  bool
	ServicesCurrent  bool
	MountsCurrent    bool
}

// Converged reports whether every fact holds.
func (f Facts) Converged() bool {
	return f.ManagerInstalled && f.UnmanagedCurrent && f.RendererCurrent &&
		f.ServicesCurrent && f.MountsCurrent
}

// Reconciler drives the host toward the desired network state.
type Reconciler struct {
	Exec system.CommandExecutor
	FS   system.FileSystem

	UnmanagedPatterns []string
	MountOptions      map[string][]string

	// Activation wait and apply retry tuning.
	ActiveAttempts int
	ActiveInterval time.Duration
	ApplyBackoff   time.Duration
}

// NewReconciler creates a Reconciler for the configured desired state.
func NewReconciler(cfg config.NetworkConfig) *Reconciler {
	return &Reconciler{
		Exec:              system.DefaultExecutor(),
		FS:                system.DefaultFS(),
		UnmanagedPatterns: cfg.UnmanagedPatterns,
		MountOptions:      cfg.MountOptions,
		ActiveAttempts:    10,
		ActiveInterval:    time.Second,
		ApplyBackoff:      3 * time.Second,
	}
}

// Inspect checks every fact without mutating anything.
func (r *Reconciler) Inspect(ctx context.Context) Facts {
	return Facts{
		ManagerInstalled: r.managerInstalled(ctx),
		UnmanagedCurrent: r.unmanagedCurrent(),
		RendererCurrent:  r.rendererCurrent(),
		ServicesCurrent:  r.servicesCurrent(ctx),
		MountsCurrent:    !r.fstabNeedsEdit(),
	}
}

// Reconcile converges the host and returns Skipped when nothing needed
// doing. Only missing facts trigger mutations; if any mutation ran, the
// renderer configuration is applied best-effort afterwards.
func (r *Reconciler) Reconcile(ctx context.Context) (Result, error) {
	mutated := false

	if !r.managerInstalled(ctx) {
		logging.UserInfo("Installing NetworkManager...")
		if out, err := r.Exec.Execute(ctx, "apt-get", "install", "-y", "network-manager"); err != nil {
			logging.Debug("package install failed", "output", string(out))
			return Skipped, errors.CommandFailed("apt-get install -y network-manager", err)
		}
		mutated = true
	}

	if !r.unmanagedCurrent() {
		logging.Debug("writing unmanaged-devices rules", "path", unmanagedPath, "patterns", r.UnmanagedPatterns)
		if err := r.FS.WriteFile(unmanagedPath, []byte(r.renderUnmanaged()), 0644); err != nil {
			return Skipped, errors.NetworkError("write "+unmanagedPath, err)
		}
		mutated = true
	}

	if !r.rendererCurrent() {
		logging.Debug("writing renderer config", "path", rendererPath)
		if err := r.FS.WriteFile(rendererPath, []byte(rendererYAML), 0600); err != nil {
			return Skipped, errors.NetworkError("write "+rendererPath, err)
		}
		mutated = true
	}

	if !r.servicesCurrent(ctx) {
		logging.UserInfo("Switching network management to NetworkManager...")
		if out, err := r.Exec.Execute(ctx, "systemctl", "enable", "--now", managerUnit); err != nil {
			logging.Debug("enable failed", "output", string(out))
			return Skipped, errors.CommandFailed("systemctl enable --now "+managerUnit, err)
		}
		// The competing renderer may not exist on this image at all.
		if out, err := r.Exec.Execute(ctx, "systemctl", "disable", "--now", competingUnit); err != nil {
			logging.Debug("disabling competing renderer failed", "unit", competingUnit, "output", string(out))
		}
		mutated = true
	}

	fstabChanged, err := r.reconcileFstab()
	if err != nil {
		return Skipped, err
	}
	mutated = mutated || fstabChanged

	if !mutated {
		logging.Debug("network configuration already converged")
		return Skipped, nil
	}

	r.apply(ctx)
	return Applied, nil
}

// managerInstalled reports whether the NetworkManager unit exists.
func (r *Reconciler) managerInstalled(ctx context.Context) bool {
	_, err := r.Exec.Execute(ctx, "systemctl", "cat", managerUnit+".service")
	return err == nil
}

func (r *Reconciler) renderUnmanaged() string {
	return "[keyfile]\nunmanaged-devices=" + strings.Join(r.UnmanagedPatterns, ";") + "\n"
}

func (r *Reconciler) unmanagedCurrent() bool {
	data, err := r.FS.ReadFile(unmanagedPath)
	if err != nil {
		return false
	}
	content := string(data)
	for _, pattern := range r.UnmanagedPatterns {
		if !strings.Contains(content, pattern) {
			return false
		}
	}
	return true
}

const rendererYAML = "network:\n  version: 2\n  renderer: NetworkManager\n"

func (r *Reconciler) rendererCurrent() bool {
	data, err := r.FS.ReadFile(rendererPath)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), "renderer: NetworkManager")
}

// servicesCurrent reports whether NetworkManager is active and the
// competing renderer is not.
func (r *Reconciler) servicesCurrent(ctx context.Context) bool {
	if !r.unitActive(ctx, managerUnit) {
		return false
	}
	return !r.unitActive(ctx, competingUnit)
}

func (r *Reconciler) unitActive(ctx context.Context, unit string) bool {
	out, err := r.Exec.Execute(ctx, "systemctl", "is-active", unit)
	return err == nil && strings.TrimSpace(string(out)) == "active"
}

// fstabNeedsEdit reports whether reconcileFstab would change anything,
// without mutating the file.
func (r *Reconciler) fstabNeedsEdit() bool {
	if len(r.MountOptions) == 0 {
		return false
	}
	data, err := r.FS.ReadFile(fstabPath)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		required, ok := r.MountOptions[fields[1]]
		if !ok {
			continue
		}
		if _, edited := mergeOptions(fields[3], required); edited {
			return true
		}
	}
	return false
}

// reconcileFstab merges required mount options into existing fstab
// entries. Mount points without an fstab entry are left alone; the
// installer manages options, not devices.
func (r *Reconciler) reconcileFstab() (bool, error) {
	if len(r.MountOptions) == 0 {
		return false, nil
	}
	data, err := r.FS.ReadFile(fstabPath)
	if err != nil {
		logging.Debug("no fstab to reconcile", "err", err)
		return false, nil
	}

	lines := strings.Split(string(data), "\n")
	changed := false
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 4 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		required, ok := r.MountOptions[fields[1]]
		if !ok {
			continue
		}
		merged, edited := mergeOptions(fields[3], required)
		if !edited {
			continue
		}
		fields[3] = merged
		lines[i] = strings.Join(fields, "\t")
		changed = true
	}
	if !changed {
		return false, nil
	}

	logging.Debug("updating fstab mount options", "path", fstabPath)
	if err := r.FS.WriteFile(fstabPath, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return false, errors.NetworkError("write "+fstabPath, err)
	}
	return true, nil
}

// mergeOptions appends missing required options to an fstab option field.
func mergeOptions(current string, required []string) (string, bool) {
	have := make(map[string]bool)
	for _, opt := range strings.Split(current, ",") {
		have[opt] = true
	}
	merged := current
	edited := false
	for _, opt := range required {
		if !have[opt] {
			merged += "," + opt
			edited = true
		}
	}
	return merged, edited
}

// apply waits for NetworkManager to come up, then applies the renderer
// configuration. Both steps are best-effort: the config files are
// already in their desired state, and the renderer picks them up on the
// next boot if the live apply loses the startup race.
func (r *Reconciler) apply(ctx context.Context) {
	err := retry.Poll(ctx, r.ActiveAttempts, r.ActiveInterval, func(ctx context.Context) (bool, error) {
		return r.unitActive(ctx, managerUnit), nil
	})
	if err != nil {
		logging.Debug("proceeding without active manager service", "err", err)
	}

	for attempt := 1; ; attempt++ {
		out, err := r.Exec.Execute(ctx, "netplan", "apply")
		if err == nil {
			logging.Debug("renderer configuration applied", "attempt", attempt)
			return
		}
		logging.Debug("netplan apply failed", "attempt", attempt, "output", string(out), "err", err)
		if attempt == 2 {
			logging.UserWarning("Could not apply renderer configuration live; it will take effect on next boot (%v)", err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.ApplyBackoff):
		}
	}
}

// Describe renders the desired state for status output.
func (f Facts) Describe() string {
	mark := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "pending"
	}
	return fmt.Sprintf(
		"manager installed: %s, unmanaged rules: %s, renderer: %s, services: %s, mounts: %s",
		mark(f.ManagerInstalled), mark(f.UnmanagedCurrent), mark(f.RendererCurrent),
		mark(f.ServicesCurrent), mark(f.MountsCurrent))
}
