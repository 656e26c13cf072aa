package profiles

import (
	"errors"
	"testing"

	"github.com/RogueNAND/fleetcommandav/internal/envfile"
	"github.com/RogueNAND/fleetcommandav/internal/input"
	"github.com/RogueNAND/fleetcommandav/internal/system"
)

func newStore(persisted string) (*envfile.Store, *system.MockFS) {
	fs := system.NewMockFS()
	if persisted != "" {
		fs.AddFile("/opt/fleetcommandav/.env", []byte(Key+"="+persisted+"\n"), 0644)
	}
	return &envfile.Store{Path: "/opt/fleetcommandav/.env", FS: fs}, fs
}

func noProfiles() ([]string, error) { return nil, nil }

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"news,chat", "news,chat"},
		{" news , chat ", "news,chat"},
		{"news,,chat,", "news,chat"},
		{"news,news,chat", "news,chat"},
		{"", ""},
		{" , ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Parse(tt.in).String(); got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve_CLIValueWins(t *testing.T) {
	store, fs := newStore("old")

	set, err := Resolve(store, "news, chat", &input.Scripted{}, noProfiles)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if set.String() != "news,chat" {
		t.Errorf("set = %q", set.String())
	}

	data, _ := fs.GetFile(store.Path)
	if string(data) != Key+"=news,chat\n" {
		t.Errorf("persisted = %q", data)
	}
}

func TestResolve_NonInteractiveFallsBackToPersisted(t *testing.T) {
	store, _ := newStore("news")

	set, err := Resolve(store, "", input.Static{}, noProfiles)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if set.String() != "news" {
		t.Errorf("set = %q, want persisted value", set.String())
	}
}

func TestResolve_EmptyEverywhereWritesNothing(t *testing.T) {
	store, fs := newStore("")

	set, err := Resolve(store, "", input.Static{}, noProfiles)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !set.Empty() {
		t.Errorf("set = %q, want empty", set.String())
	}
	if _, ok := fs.GetFile(store.Path); ok {
		t.Error("empty resolution must not create the settings file")
	}
}

func TestResolve_InteractivePromptOverrides(t *testing.T) {
	store, fs := newStore("old")
	src := &input.Scripted{Answers: map[string][]string{
		"Profiles to enable (comma-separated)": {"news,chat"},
	}}

	set, err := Resolve(store, "", src, noProfiles)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if set.String() != "news,chat" {
		t.Errorf("set = %q", set.String())
	}

	data, _ := fs.GetFile(store.Path)
	if string(data) != Key+"=news,chat\n" {
		t.Errorf("persisted = %q", data)
	}
}

func TestResolve_InteractiveEmptyResponseKeepsPersisted(t *testing.T) {
	store, _ := newStore("news")
	src := &input.Scripted{Answers: map[string][]string{
		"Profiles to enable (comma-separated)": {""},
	}}

	set, err := Resolve(store, "", src, noProfiles)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if set.String() != "news" {
		t.Errorf("set = %q, want persisted default", set.String())
	}
}

func TestResolve_HintFailureIsNonFatal(t *testing.T) {
	store, _ := newStore("")
	src := &input.Scripted{Answers: map[string][]string{
		"Profiles to enable (comma-separated)": {"chat"},
	}}
	failing := func() ([]string, error) { return nil, errors.New("no compose file") }

	set, err := Resolve(store, "", src, failing)
	if err != nil {
		t.Fatalf("Resolve should survive hint failure: %v", err)
	}
	if set.String() != "chat" {
		t.Errorf("set = %q", set.String())
	}
}
