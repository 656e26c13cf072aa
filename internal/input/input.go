// Package input collects interactive-versus-unattended branching at one
// boundary. Callers ask a Source for values; whether the answer comes
// from a terminal prompt or falls back to the default is the Source's
// concern, not theirs.
package input

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Source supplies user input where a value is optional or has a default.
type Source interface {
	// CanPrompt reports whether the source can ask the user anything.
	CanPrompt() bool

	// Prompt asks for a line of input, showing def as the default.
	// An empty response yields def.
	Prompt(label, def string) (string, error)

	// Secret asks for a sensitive value without echoing it.
	Secret(label string) (string, error)
}

// Terminal is a Source backed by the controlling terminal. Without a TTY
// on stdin it refuses to prompt and hands back defaults.
type Terminal struct{}

func (Terminal) CanPrompt() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (t Terminal) Prompt(label, def string) (string, error) {
	if !t.CanPrompt() {
		return def, nil
	}
	if def != "" {
		fmt.Fprintf(os.Stderr, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(os.Stderr, "%s: ", label)
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (t Terminal) Secret(label string) (string, error) {
	if !t.CanPrompt() {
		return "", nil
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Static is a Source that never prompts; every question yields its
// default. Used for unattended runs and as the test double's base case.
type Static struct{}

func (Static) CanPrompt() bool { return false }

func (Static) Prompt(label, def string) (string, error) { return def, nil }

func (Static) Secret(label string) (string, error) { return "", nil }

// Scripted is a Source for tests: answers are consumed in order per label.
type Scripted struct {
	Answers map[string][]string
	Secrets map[string]string

	// Asked records prompt labels in order.
	Asked []string
}

func (s *Scripted) CanPrompt() bool { return true }

func (s *Scripted) Prompt(label, def string) (string, error) {
	s.Asked = append(s.Asked, label)
	queue := s.Answers[label]
	if len(queue) == 0 {
		return def, nil
	}
	answer := queue[0]
	s.Answers[label] = queue[1:]
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (s *Scripted) Secret(label string) (string, error) {
	s.Asked = append(s.Asked, label)
	return s.Secrets[label], nil
}
