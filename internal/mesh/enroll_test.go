package mesh

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
)

const keyedOutputSuccess = "Success.\n"

const keyedOutputPending = `
To authenticate, visit:

	https://login.tailscale.com/a/abc123def

`

func TestEnroll_WithKeyAuthenticated(t *testing.T) {
	e, exec, _ := newEnroller()
	exec.AddResponse("tailscale up", []byte(keyedOutputSuccess), nil)

	outcome, err := e.Enroll(context.Background(), Request{AuthKey: "tskey-x"})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if outcome.Kind != Authenticated {
		t.Errorf("Kind = %v, want Authenticated", outcome.Kind)
	}
}

func TestEnroll_WithKeyPendingAuthorization(t *testing.T) {
	e, exec, _ := newEnroller()
	exec.AddResponse("tailscale up", []byte(keyedOutputPending), stderrors.New("exit 1"))

	outcome, err := e.Enroll(context.Background(), Request{AuthKey: "tskey-x"})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if outcome.Kind != PendingAuthorization {
		t.Fatalf("Kind = %v, want PendingAuthorization", outcome.Kind)
	}
	if outcome.AuthURL != "https://login.tailscale.com/a/abc123def" {
		t.Errorf("AuthURL = %q", outcome.AuthURL)
	}
}

func TestEnroll_WithKeyFailed(t *testing.T) {
	e, exec, _ := newEnroller()
	exec.AddResponse("tailscale up", []byte("backend error: invalid key\n"), stderrors.New("exit 1"))

	outcome, err := e.Enroll(context.Background(), Request{AuthKey: "tskey-x"})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if outcome.Kind != Failed {
		t.Fatalf("Kind = %v, want Failed", outcome.Kind)
	}
	if !strings.Contains(outcome.RawOutput, "invalid key") {
		t.Errorf("RawOutput = %q", outcome.RawOutput)
	}
	if strings.Contains(outcome.Hint, "tskey-x") {
		t.Errorf("hint leaks the key: %q", outcome.Hint)
	}
}

func TestEnroll_InteractivePollBounded(t *testing.T) {
	e, exec, _ := newEnroller()
	exec.AddResponse("tailscale status", []byte(`{"BackendState":"NeedsLogin"}`), nil)

	outcome, err := e.Enroll(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if outcome.Kind != Failed {
		t.Fatalf("Kind = %v, want Failed after poll exhaustion", outcome.Kind)
	}
	if outcome.Hint == "" {
		t.Error("exhaustion should carry a remediation hint")
	}

	probes := 0
	for _, line := range exec.CommandLines() {
		if strings.HasPrefix(line, "tailscale status") {
			probes++
		}
	}
	if probes != e.PollAttempts {
		t.Errorf("probes = %d, want exactly %d", probes, e.PollAttempts)
	}
}

func TestEnroll_InteractiveSucceedsMidPoll(t *testing.T) {
	e, exec, _ := newEnroller()
	exec.QueueResponse("tailscale status", []byte(`{"BackendState":"NeedsLogin"}`), nil)
	exec.AddResponse("tailscale status", []byte(`{"BackendState":"Running"}`), nil)

	outcome, err := e.Enroll(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if outcome.Kind != Authenticated {
		t.Errorf("Kind = %v, want Authenticated", outcome.Kind)
	}
}

func TestEnroll_RoutesEnableForwarding(t *testing.T) {
	e, exec, fs := newEnroller()
	exec.AddResponse("tailscale up", []byte(keyedOutputSuccess), nil)

	req := Request{AuthKey: "tskey-x", AdvertiseRoutes: []string{"192.168.1.0/24"}}
	if _, err := e.Enroll(context.Background(), req); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	data, ok := fs.GetFile(sysctlPath)
	if !ok || !strings.Contains(string(data), "net.ipv4.ip_forward = 1") {
		t.Errorf("sysctl config = %q, %v", data, ok)
	}

	lines := exec.CommandLines()
	if lines[0] != "sysctl -p "+sysctlPath {
		t.Errorf("forwarding must be enabled before enrollment, commands = %v", lines)
	}
}

func TestEnroll_ForwardingFailureIsFatal(t *testing.T) {
	e, exec, _ := newEnroller()
	exec.AddResponse("sysctl -p", []byte("permission denied"), stderrors.New("exit 1"))

	req := Request{AuthKey: "tskey-x", AdvertiseRoutes: []string{"192.168.1.0/24"}}
	if _, err := e.Enroll(context.Background(), req); err == nil {
		t.Fatal("forwarding is a hard precondition; its failure must propagate")
	}
}

func TestEnroll_NoRoutesSkipsForwarding(t *testing.T) {
	e, exec, fs := newEnroller()
	exec.AddResponse("tailscale up", []byte(keyedOutputSuccess), nil)

	if _, err := e.Enroll(context.Background(), Request{AuthKey: "tskey-x"}); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, ok := fs.GetFile(sysctlPath); ok {
		t.Error("no sysctl file expected without advertised routes")
	}
	for _, line := range exec.CommandLines() {
		if strings.HasPrefix(line, "sysctl") {
			t.Errorf("unexpected sysctl command: %v", line)
		}
	}
}
