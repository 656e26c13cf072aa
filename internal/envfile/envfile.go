// Package envfile persists key/value settings in a flat KEY=VALUE file.
//
// The file doubles as the compose project's .env, so writes must leave
// every unrelated line byte-identical: Set edits the one matching line in
// place (or appends), it never reformats or reorders the rest.
package envfile

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"

	"github.com/RogueNAND/fleetcommandav/internal/errors"
	"github.com/RogueNAND/fleetcommandav/internal/system"
)

const fileMode = 0644

// Store reads and writes settings in a single env file.
type Store struct {
	Path string
	FS   system.FileSystem
}

// NewStore creates a Store over the given env file path.
func NewStore(path string) *Store {
	return &Store{Path: path, FS: system.DefaultFS()}
}

// Set writes key=value into the file, replacing the first existing entry
// for key in place and appending when absent. All other lines are left
// untouched. Calling Set twice with the same arguments produces identical
// file content.
func (s *Store) Set(key, value string) error {
	data, err := s.FS.ReadFile(s.Path)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.EnvFileError("read settings file "+s.Path, err)
	}

	entry := key + "=" + value
	lines := strings.Split(string(data), "\n")

	replaced := false
	for i, line := range lines {
		if keyOf(line) == key {
			if line == entry {
				// Content-stable: nothing to write.
				return nil
			}
			lines[i] = entry
			replaced = true
			break
		}
	}

	var out bytes.Buffer
	if replaced {
		out.WriteString(strings.Join(lines, "\n"))
	} else {
		out.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			out.WriteByte('\n')
		}
		out.WriteString(entry)
		out.WriteByte('\n')
	}

	if err := s.FS.WriteFile(s.Path, out.Bytes(), fileMode); err != nil {
		return errors.EnvFileError("write settings file "+s.Path, err)
	}
	return nil
}

// Get returns the value stored under key and whether it was present.
// A missing file reads as an empty store.
func (s *Store) Get(key string) (string, bool) {
	data, err := s.FS.ReadFile(s.Path)
	if err != nil {
		return "", false
	}
	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	v, ok := vars[key]
	return v, ok
}

// keyOf returns the key of a KEY=VALUE line, or "" for comments and
// lines without an assignment.
func keyOf(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ""
	}
	k, _, found := strings.Cut(trimmed, "=")
	if !found {
		return ""
	}
	return strings.TrimSpace(k)
}
