package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// Exit codes for fcavctl
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitConfigError  = 2
	ExitNetworkError = 3
	ExitDeployFailed = 4
	ExitEnrollFailed = 5
	ExitEnvFileError = 6
)

// InstallError is the base error type for fcavctl
type InstallError struct {
	Code    int
	Message string
	Cause   error
}

func (e *InstallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InstallError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *InstallError) ExitCode() int {
	return e.Code
}

// New creates a new InstallError
func New(code int, message string) *InstallError {
	return &InstallError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an InstallError
func Wrap(code int, message string, cause error) *InstallError {
	return &InstallError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// ConfigError returns an error for site configuration issues
func ConfigError(message string, cause error) *InstallError {
	return Wrap(ExitConfigError, message, cause)
}

// NetworkError returns an error for network reconciliation failures
func NetworkError(message string, cause error) *InstallError {
	return Wrap(ExitNetworkError, message, cause)
}

// DeployFailed returns an error for a failed stack bring-up
func DeployFailed(cause error) *InstallError {
	return Wrap(ExitDeployFailed, "stack bring-up failed", cause)
}

// EnrollFailed returns an error for mesh enrollment failures
func EnrollFailed(message string, cause error) *InstallError {
	return Wrap(ExitEnrollFailed, message, cause)
}

// EnvFileError returns an error for settings-file write failures
func EnvFileError(message string, cause error) *InstallError {
	return Wrap(ExitEnvFileError, message, cause)
}

// CommandFailed wraps a failed external command. The diagnostic names the
// command line, and when the cause carries a child exit status the process
// exits with that original status.
func CommandFailed(cmdline string, cause error) *InstallError {
	code := ExitGeneralError
	var exitErr *exec.ExitError
	if errors.As(cause, &exitErr) && exitErr.ExitCode() > 0 {
		code = exitErr.ExitCode()
	}
	return Wrap(code, fmt.Sprintf("command failed: %s", cmdline), cause)
}

// GetExitCode extracts the exit code from an error chain.
// Returns ExitSuccess for nil and ExitGeneralError for untyped errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.ExitCode()
	}
	return ExitGeneralError
}
