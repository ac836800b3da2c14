// Package check implements the package-presence verification core.
//
// The core primitive is Verify: given the captured output of a package
// manager's search command and an ordered list of required package names,
// it reports which names are absent. Verify is a pure function over
// immutable inputs so it can be unit tested without spawning a real
// package manager; process and I/O concerns live in Runner.
package check

import (
	"strings"
	"time"
)

// Spec describes one verification run. It is fixed at process start and
// never mutated.
type Spec struct {
	// Manager is the registered package manager name ("apt", "zypper").
	Manager string `yaml:"manager" json:"manager"`

	// Query is the search term passed to the package manager.
	Query string `yaml:"query" json:"query"`

	// Required lists package names that must all appear, case-sensitively,
	// in the search command's combined output. Order is preserved in
	// reporting.
	Required []string `yaml:"packages" json:"packages"`

	// BootstrapURL is an optional remote script fetched and executed
	// before the check. The payload is untrusted; see package bootstrap.
	BootstrapURL string `yaml:"bootstrap_url,omitempty" json:"bootstrapURL,omitempty"`

	// SkipRefresh disables the metadata refresh phase.
	SkipRefresh bool `yaml:"skip_refresh,omitempty" json:"skipRefresh,omitempty"`

	// Strict promotes bootstrap and refresh failures from warnings to
	// fatal outcomes.
	Strict bool `yaml:"strict,omitempty" json:"strict,omitempty"`

	// Timeout bounds each external command and the bootstrap fetch.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// Retries bounds bootstrap fetch attempts.
	Retries int `yaml:"retries,omitempty" json:"retries,omitempty"`
}

// CommandResult is the immutable outcome of executing an external command.
type CommandResult struct {
	// CombinedOutput is stdout and stderr merged in arrival order.
	CombinedOutput string `json:"combinedOutput"`

	// ExitStatus is the process exit code.
	ExitStatus int `json:"exitStatus"`
}

// FailureReason classifies why a verification run failed.
type FailureReason string

const (
	// ReasonNone means the run succeeded.
	ReasonNone FailureReason = "none"

	// ReasonCommandFailed means an external command exited non-zero.
	ReasonCommandFailed FailureReason = "command_failed"

	// ReasonPackageMissing means the search succeeded but at least one
	// required package name was absent from its output.
	ReasonPackageMissing FailureReason = "package_missing"
)

// Phase identifies the pipeline phase an outcome refers to.
type Phase string

const (
	PhaseBootstrap Phase = "bootstrap"
	PhaseRefresh   Phase = "refresh"
	PhaseSearch    Phase = "search"
)

// Outcome is the verdict of a verification run, derived deterministically
// from a Spec and a CommandResult.
//
// Invariant: Success is true if and only if ExitStatus == 0 and Missing is
// empty.
type Outcome struct {
	Success bool `json:"success"`

	// Missing lists required package names not found, in declaration order.
	Missing []string `json:"missing,omitempty"`

	Reason FailureReason `json:"reason"`

	// Phase names the failing phase for ReasonCommandFailed outcomes.
	Phase Phase `json:"phase,omitempty"`

	// ExitStatus is the failing command's exit status (0 on success).
	ExitStatus int `json:"exitStatus"`

	// Warnings carries non-fatal bootstrap/refresh diagnostics.
	Warnings []string `json:"warnings,omitempty"`
}

// ExitCode returns the process exit code mandated by the outcome: 0 on
// success, the failing command's own exit status for command failures, and
// 1 for missing packages.
func (o Outcome) ExitCode() int {
	switch {
	case o.Success:
		return 0
	case o.Reason == ReasonCommandFailed && o.ExitStatus != 0:
		return o.ExitStatus
	default:
		return 1
	}
}

// Verify tests every required name for literal, case-sensitive containment
// in the result's combined output. All names are evaluated independently —
// a run reporting on several packages must name each missing one, so there
// is no short-circuit on the first miss.
//
// A non-zero exit status fails the run regardless of output content.
func Verify(res CommandResult, required []string) Outcome {
	if res.ExitStatus != 0 {
		return Outcome{
			Success:    false,
			Reason:     ReasonCommandFailed,
			Phase:      PhaseSearch,
			ExitStatus: res.ExitStatus,
		}
	}

	var missing []string
	for _, name := range required {
		if !strings.Contains(res.CombinedOutput, name) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return Outcome{
			Success: false,
			Missing: missing,
			Reason:  ReasonPackageMissing,
		}
	}

	return Outcome{Success: true, Reason: ReasonNone}
}

// Found reports whether a single required name was present, given the
// outcome produced by Verify. Used for per-package status lines.
func (o Outcome) Found(name string) bool {
	for _, m := range o.Missing {
		if m == name {
			return false
		}
	}
	return true
}
