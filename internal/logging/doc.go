// Package logging provides logging utilities for fcavctl.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("reconciling renderer", "path", path)
//	logging.Warn("netplan apply failed", "attempt", attempt, "err", err)
//
// # User Output
//
// User-facing messages carry colored status prefixes:
//
//	logging.UserInfo("Deploying service stack...")
//	logging.UserSuccess("Host already enrolled in the tailnet")
//	logging.UserWarning("Image pull failed; continuing with cached images")
//	logging.UserError("Deployment failed: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
package logging
