// Package errors provides structured CLI error types for repocheck.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// so every command reports failures consistently. The verify command's
// exit-code contract depends on Code being carried verbatim to main: a
// failed search propagates the package manager's own exit status, while a
// missing package is always exit code 1.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI errors.
const (
	ExitSuccess = 0  // Successful execution
	ExitMissing = 1  // Search succeeded but a required package was absent
	ExitConfig  = 4  // Configuration error
	ExitUsage   = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// UnknownManager returns an error for an unregistered package manager name.
func UnknownManager(name string, known []string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Unknown package manager: %s", name),
		Hint:    fmt.Sprintf("Supported managers: %v", known),
		Code:    ExitConfig,
	}
}

// ManagerUnavailable returns an error when the package manager binary is
// not on PATH.
func ManagerUnavailable(name string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Package manager not found in PATH: %s", name),
		Hint:    "Run 'repocheck doctor' to inspect the environment",
		Code:    ExitConfig,
	}
}

// SearchFailed returns an error for a failed search command. The package
// manager's own exit status becomes the process exit code.
func SearchFailed(manager string, exitStatus int, cause error) *CLIError {
	code := exitStatus
	if code <= 0 {
		code = 1
	}

	return &CLIError{
		Message: fmt.Sprintf("%s search failed with exit status %d", manager, exitStatus),
		Cause:   cause,
		Code:    code,
	}
}

// PackagesMissing returns an error naming every required package absent
// from the search output.
func PackagesMissing(missing []string) *CLIError {
	msg := "Package not found in repository"
	if len(missing) != 1 {
		msg = fmt.Sprintf("%d packages not found in repository", len(missing))
	}

	return &CLIError{
		Message: msg,
		Hint:    "Check the repository configuration and refresh the package index",
		Code:    ExitMissing,
	}
}

// SuiteInvalid returns an error for an unreadable or malformed suite file.
func SuiteInvalid(path string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid suite file: %s", path),
		Cause:   cause,
		Code:    ExitConfig,
	}
}
