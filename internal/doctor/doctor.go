// Package doctor provides diagnostic checks for the verifier's host
// environment.
//
// The verify command depends on ambient state it does not control: a
// package manager on PATH, a shell for the bootstrap hook, network access
// for release lookups. Doctor makes each assumption a named check so a
// failing CI host can be diagnosed without rerunning the verification.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/repocheck-dev/repocheck/internal/buildinfo"
	"github.com/repocheck-dev/repocheck/internal/pkgmgr"
	"github.com/repocheck-dev/repocheck/internal/update"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Symbol returns a plain-text marker for the status.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "ok"
	case StatusWarn:
		return "warn"
	default:
		return "fail"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name    string
	Status  Status
	Message string
	Detail  string // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a diagnostic runner with the default checks.
func New() *Runner {
	r := &Runner{}

	for _, name := range pkgmgr.RegisteredNames() {
		mgr, _ := pkgmgr.Lookup(name)
		r.AddCheck(fmt.Sprintf("Package manager (%s)", name), checkManager(mgr))
	}

	r.AddCheck("Shell", checkShell)
	r.AddCheck("CLI Version", checkCLIVersion)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

// checkManager verifies the manager binary is on PATH and probes its
// version. A missing manager is a warning, not a failure: CI images
// usually carry exactly one of apt and zypper.
func checkManager(mgr pkgmgr.Manager) Check {
	return func(ctx context.Context) Result {
		if !mgr.Available() {
			return Result{
				Status:  StatusWarn,
				Message: "Not found in PATH",
			}
		}

		version := probeVersion(ctx, mgr.Name())
		if version == "" {
			return Result{
				Status:  StatusPass,
				Message: "Found",
			}
		}

		return Result{
			Status:  StatusPass,
			Message: version,
		}
	}
}

// checkShell verifies sh exists for the bootstrap hook.
func checkShell(context.Context) Result {
	path, err := exec.LookPath("sh")
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: "sh not found in PATH",
			Detail:  "The bootstrap hook pipes fetched scripts into sh",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: path,
	}
}

// checkCLIVersion compares the running binary against the latest release.
func checkCLIVersion(ctx context.Context) Result {
	if update.IsDisabled() {
		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("%s (update checks disabled)", buildinfo.Version),
		}
	}

	updater, err := update.NewUpdater()
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: buildinfo.Version,
			Detail:  err.Error(),
		}
	}

	info, err := updater.CheckLatest(ctx, buildinfo.Version)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s (release lookup failed)", buildinfo.Version),
			Detail:  err.Error(),
		}
	}

	if info.UpdateAvailable {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s (latest: %s)", info.CurrentVersion, info.LatestVersion),
			Detail:  "Run 'repocheck update' to upgrade",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: info.CurrentVersion,
	}
}

// probeVersion asks the manager binary for its version, first line only.
func probeVersion(ctx context.Context, name string) string {
	binary := name
	if name == "apt" {
		binary = "apt-get"
	}

	out, err := exec.CommandContext(ctx, binary, "--version").Output()
	if err != nil {
		return ""
	}

	version := strings.TrimSpace(string(out))
	if idx := strings.Index(version, "\n"); idx > 0 {
		version = version[:idx]
	}

	return version
}
