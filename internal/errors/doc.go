// Package errors provides typed errors with exit codes for fcavctl.
//
// # Error Types
//
// InstallError is the base error type that wraps an error with an exit code:
//
//	type InstallError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
// Defined exit codes for different error categories:
//
//	ExitSuccess      = 0  // Success
//	ExitGeneralError = 1  // General/unknown errors
//	ExitConfigError  = 2  // Site configuration error
//	ExitNetworkError = 3  // Network reconciliation failed
//	ExitDeployFailed = 4  // Stack bring-up failed
//	ExitEnrollFailed = 5  // Mesh enrollment failed
//	ExitEnvFileError = 6  // Settings file write failed
//
// CommandFailed is the exception: it propagates the failed child command's
// own exit status so the process terminates with the original code.
//
// # Extracting Exit Codes
//
// Use GetExitCode to extract the exit code from an error chain:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
