package logging

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// User-facing output functions with styled status prefixes.
// These write to stdout/stderr directly for CLI output,
// separate from the structured debug logging.

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
)

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, accentStyle.Render("●")+" "+format+"\n", args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, successStyle.Render("✓")+" "+format+"\n", args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, warnStyle.Render("!")+" "+format+"\n", args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, errorStyle.Render("✗")+" "+format+"\n", args...)
}
