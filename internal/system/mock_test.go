package system

import (
	"context"
	"errors"
	"testing"
)

func TestMockExecutor_PrefixMatching(t *testing.T) {
	m := NewMockExecutor()
	m.AddResponse("systemctl is-active", []byte("inactive\n"), errors.New("exit 3"))
	m.AddResponse("systemctl is-active NetworkManager", []byte("active\n"), nil)

	out, err := m.Execute(context.Background(), "systemctl", "is-active", "NetworkManager")
	if err != nil {
		t.Fatalf("longest prefix should win: %v", err)
	}
	if string(out) != "active\n" {
		t.Errorf("out = %q, want %q", out, "active\n")
	}

	_, err = m.Execute(context.Background(), "systemctl", "is-active", "systemd-networkd")
	if err == nil {
		t.Error("shorter prefix response should apply to other units")
	}
}

func TestMockExecutor_NoPartialTokenMatch(t *testing.T) {
	m := NewMockExecutor()
	m.AddResponse("systemctl is-active NetworkManager", []byte("active\n"), nil)

	out, _ := m.Execute(context.Background(), "systemctl", "is-active", "NetworkManager-wait-online")
	if string(out) == "active\n" {
		t.Error("pattern must not match a longer token")
	}
}

func TestMockExecutor_QueuedResponses(t *testing.T) {
	m := NewMockExecutor()
	m.QueueResponse("tailscale status", []byte(`{"BackendState":"NeedsLogin"}`), nil)
	m.QueueResponse("tailscale status", []byte(`{"BackendState":"Running"}`), nil)
	m.AddResponse("tailscale status", []byte(`{"BackendState":"Running"}`), nil)

	out, _ := m.Execute(context.Background(), "tailscale", "status", "--json")
	if string(out) != `{"BackendState":"NeedsLogin"}` {
		t.Errorf("first queued response expected, got %q", out)
	}
	out, _ = m.Execute(context.Background(), "tailscale", "status", "--json")
	if string(out) != `{"BackendState":"Running"}` {
		t.Errorf("second queued response expected, got %q", out)
	}
}

func TestMockExecutor_RecordsCommands(t *testing.T) {
	m := NewMockExecutor()
	_, _ = m.Execute(context.Background(), "netplan", "apply")
	_ = m.ExecuteInteractive(context.Background(), "docker", "compose", "up", "-d")

	lines := m.CommandLines()
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0] != "netplan apply" {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !m.Commands[1].Interactive {
		t.Error("compose up should be recorded as interactive")
	}
}

func TestMockFS_ChownAndMode(t *testing.T) {
	fs := NewMockFS()
	fs.AddDir("/opt/data")

	if err := fs.ChownAll("/opt/data", 1000, 1000); err != nil {
		t.Fatalf("ChownAll: %v", err)
	}
	if len(fs.Chowns) != 1 || fs.Chowns[0].UID != 1000 {
		t.Errorf("Chowns = %+v", fs.Chowns)
	}

	fs.AddFile("/opt/data/.env", []byte("A=1\n"), 0644)
	if err := fs.Chmod("/opt/data/.env", 0600); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	if mode, _ := fs.FileMode("/opt/data/.env"); mode != 0600 {
		t.Errorf("mode = %o, want 0600", mode)
	}
}
