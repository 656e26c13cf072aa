// Package profiles resolves the active deployment profile set.
//
// Profiles are named optional slices of the compose stack (news ticker,
// chat overlay, ...). The resolved set is persisted under COMPOSE_PROFILES
// in the stack's settings file, where compose picks it up natively.
package profiles

import (
	"strings"
	"unicode"

	"github.com/RogueNAND/fleetcommandav/internal/envfile"
	"github.com/RogueNAND/fleetcommandav/internal/input"
	"github.com/RogueNAND/fleetcommandav/internal/logging"
)

// Key is the settings-file key holding the persisted profile set.
const Key = "COMPOSE_PROFILES"

// Set is an ordered list of unique profile names. Empty is valid and
// means a core-only deployment.
type Set []string

// Parse splits a comma-separated profile list, stripping all whitespace
// and dropping empties and duplicates. Order is preserved.
func Parse(s string) Set {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	var set Set
	seen := make(map[string]bool)
	for _, name := range strings.Split(cleaned, ",") {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		set = append(set, name)
	}
	return set
}

// String renders the set as a comma-joined value for persistence.
func (s Set) String() string {
	return strings.Join(s, ",")
}

// Empty reports whether no profiles are selected.
func (s Set) Empty() bool {
	return len(s) == 0
}

// Resolve determines the active profile set and persists a non-empty
// result to the store.
//
// Precedence: a non-empty CLI value wins verbatim; otherwise a source
// that cannot prompt falls back to the persisted value; otherwise the
// user is prompted with the persisted value as the default, after a
// best-effort hint listing the profiles available in the stack
// descriptor (enumeration failure only suppresses the hint).
func Resolve(store *envfile.Store, cliValue string, src input.Source, available func() ([]string, error)) (Set, error) {
	persisted, _ := store.Get(Key)

	var set Set
	switch {
	case strings.TrimSpace(cliValue) != "":
		set = Parse(cliValue)
	case !src.CanPrompt():
		logging.Debug("no terminal; using persisted profiles", "value", persisted)
		set = Parse(persisted)
	default:
		if names, err := available(); err != nil {
			logging.Debug("could not enumerate available profiles", "err", err)
		} else if len(names) > 0 {
			logging.UserInfo("Available profiles: %s", strings.Join(names, ", "))
		}
		answer, err := src.Prompt("Profiles to enable (comma-separated)", persisted)
		if err != nil {
			return nil, err
		}
		set = Parse(answer)
	}

	if set.Empty() {
		logging.UserInfo("No profiles selected; deploying core services only")
		return set, nil
	}
	if err := store.Set(Key, set.String()); err != nil {
		return nil, err
	}
	return set, nil
}
