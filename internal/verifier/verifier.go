// Package verifier wires the verification pipeline together.
//
// The flow is strictly linear: bootstrap → metadata refresh → search →
// verify → report. Each phase completes before the next starts and the
// raw search output is echoed before any verdict is computed, matching
// what an operator running the package manager by hand would see.
package verifier

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/repocheck-dev/repocheck/internal/bootstrap"
	"github.com/repocheck-dev/repocheck/internal/check"
	clierrors "github.com/repocheck-dev/repocheck/internal/errors"
	"github.com/repocheck-dev/repocheck/internal/output"
	"github.com/repocheck-dev/repocheck/internal/pkgmgr"
	"github.com/repocheck-dev/repocheck/internal/runner"
)

const tracerName = "github.com/repocheck-dev/repocheck/internal/verifier"

// Options configures a Verifier. Zero-value fields fall back to the
// process defaults, so tests can inject fakes for every collaborator.
type Options struct {
	// Out receives human-readable reporting. Defaults to output.Default().
	Out *output.Writer

	// Log receives structured diagnostics. Defaults to slog.Default().
	Log *slog.Logger

	// Hook overrides the bootstrap hook. When nil, a Script hook is
	// built from Spec.BootstrapURL, or Noop when no URL is configured.
	Hook bootstrap.Hook

	// Lookup resolves a package manager by name. Defaults to
	// pkgmgr.Lookup.
	Lookup func(name string) (pkgmgr.Manager, bool)
}

// Verifier runs verification pipelines.
type Verifier struct {
	out    *output.Writer
	log    *slog.Logger
	hook   bootstrap.Hook
	lookup func(name string) (pkgmgr.Manager, bool)
	tracer trace.Tracer
}

// New creates a Verifier from opts.
func New(opts Options) *Verifier {
	v := &Verifier{
		out:    opts.Out,
		log:    opts.Log,
		hook:   opts.Hook,
		lookup: opts.Lookup,
		tracer: otel.Tracer(tracerName),
	}

	if v.out == nil {
		v.out = output.Default()
	}
	if v.log == nil {
		v.log = slog.Default()
	}
	if v.lookup == nil {
		v.lookup = pkgmgr.Lookup
	}

	return v
}

// Run executes one verification pipeline and reports as it goes. The
// returned Outcome carries the exit-code contract; the error return is
// reserved for configuration problems (unknown manager, binary missing)
// and commands that could not be started at all.
func (v *Verifier) Run(ctx context.Context, spec check.Spec) (check.Outcome, error) {
	ctx, span := v.tracer.Start(ctx, "verify.run", trace.WithAttributes(
		attribute.String("pkg.manager", spec.Manager),
		attribute.String("pkg.query", spec.Query),
		attribute.Int("pkg.required", len(spec.Required)),
	))
	defer span.End()

	mgr, ok := v.lookup(spec.Manager)
	if !ok {
		return check.Outcome{}, clierrors.UnknownManager(spec.Manager, pkgmgr.RegisteredNames())
	}
	if !mgr.Available() {
		return check.Outcome{}, clierrors.ManagerUnavailable(mgr.Name())
	}

	var warnings []string

	if outcome, ok := v.runBootstrap(ctx, spec, &warnings); !ok {
		return outcome, nil
	}
	if outcome, ok := v.runRefresh(ctx, spec, mgr, &warnings); !ok {
		return outcome, nil
	}

	res, err := v.runSearch(ctx, spec, mgr)
	if err != nil {
		return check.Outcome{}, err
	}

	outcome := check.Verify(res, spec.Required)
	outcome.Warnings = warnings

	v.report(spec, outcome)
	span.SetAttributes(
		attribute.Bool("verify.success", outcome.Success),
		attribute.Int("verify.missing", len(outcome.Missing)),
	)

	return outcome, nil
}

// runBootstrap executes the pre-check hook. Its payload is untrusted and
// its failure is tolerated unless strict mode is on; equivalent shell
// pipelines never checked the hook's exit status at all.
func (v *Verifier) runBootstrap(ctx context.Context, spec check.Spec, warnings *[]string) (check.Outcome, bool) {
	hook := v.hook
	if hook == nil {
		if spec.BootstrapURL == "" {
			hook = bootstrap.Noop{}
		} else {
			hook = bootstrap.NewScript(spec.BootstrapURL, spec.Timeout, spec.Retries, v.log)
		}
	}

	if _, isNoop := hook.(bootstrap.Noop); isNoop {
		return check.Outcome{}, true
	}

	ctx, span := v.tracer.Start(ctx, "verify.bootstrap")
	defer span.End()

	sp := v.out.Spinner("Running bootstrap hook")
	sp.Start()

	err := hook.Prepare(ctx)
	if err == nil {
		sp.StopWithSuccess("Bootstrap hook completed")
		return check.Outcome{}, true
	}

	v.log.Warn("bootstrap hook failed", "hook", hook.Name(), "error", err)

	if spec.Strict {
		sp.StopWithFailure(fmt.Sprintf("Bootstrap hook failed: %v", err))
		return check.Outcome{
			Reason:     check.ReasonCommandFailed,
			Phase:      check.PhaseBootstrap,
			ExitStatus: 1,
		}, false
	}

	sp.StopWithWarning(fmt.Sprintf("Bootstrap hook failed (continuing): %v", err))
	*warnings = append(*warnings, fmt.Sprintf("bootstrap: %v", err))

	return check.Outcome{}, true
}

// runRefresh updates the package index metadata. Refresh failures are
// warnings by default: the index may be stale but still answer the
// search. Strict mode promotes them to fatal outcomes that name the
// refresh phase, so they cannot be confused with search failures.
func (v *Verifier) runRefresh(ctx context.Context, spec check.Spec, mgr pkgmgr.Manager, warnings *[]string) (check.Outcome, bool) {
	if spec.SkipRefresh {
		return check.Outcome{}, true
	}

	ctx, span := v.tracer.Start(ctx, "verify.refresh")
	defer span.End()

	runCtx, cancel := runner.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	sp := v.out.Spinner(fmt.Sprintf("Refreshing %s metadata", mgr.Name()))
	sp.Start()

	res, err := mgr.Refresh(runCtx)

	switch {
	case err == nil && res.ExitStatus == 0:
		sp.StopWithSuccess(fmt.Sprintf("Refreshed %s metadata", mgr.Name()))
		return check.Outcome{}, true

	case spec.Strict:
		sp.StopWithFailure(fmt.Sprintf("Metadata refresh failed (exit status %d)", res.ExitStatus))
		if res.CombinedOutput != "" {
			v.out.Raw(res.CombinedOutput)
		}
		v.log.Error("metadata refresh failed", "manager", mgr.Name(), "exit_status", res.ExitStatus, "error", err)

		status := res.ExitStatus
		if status == 0 {
			status = 1
		}

		return check.Outcome{
			Reason:     check.ReasonCommandFailed,
			Phase:      check.PhaseRefresh,
			ExitStatus: status,
		}, false

	default:
		sp.StopWithWarning(fmt.Sprintf("Metadata refresh failed (continuing), exit status %d", res.ExitStatus))
		v.log.Warn("metadata refresh failed", "manager", mgr.Name(), "exit_status", res.ExitStatus, "error", err)
		*warnings = append(*warnings, fmt.Sprintf("refresh: exit status %d", res.ExitStatus))

		return check.Outcome{}, true
	}
}

// runSearch executes the search subcommand and unconditionally echoes its
// combined output, before pass/fail is determined.
func (v *Verifier) runSearch(ctx context.Context, spec check.Spec, mgr pkgmgr.Manager) (check.CommandResult, error) {
	ctx, span := v.tracer.Start(ctx, "verify.search")
	defer span.End()

	runCtx, cancel := runner.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	res, err := mgr.Search(runCtx, spec.Query)

	// Diagnostic echo happens even when the command failed; the captured
	// text is usually the only clue to what went wrong.
	v.out.Raw(res.CombinedOutput)

	if err != nil {
		return res, clierrors.SearchFailed(mgr.Name(), res.ExitStatus, err)
	}

	return res, nil
}

// report emits the per-package status lines in declaration order, then
// the overall verdict. Status lines go to stdout; failure diagnostics go
// to stderr so they survive output redirection in CI.
func (v *Verifier) report(spec check.Spec, outcome check.Outcome) {
	if outcome.Reason == check.ReasonCommandFailed {
		v.out.Failure("%s search failed with exit status %d", spec.Manager, outcome.ExitStatus)
		return
	}

	for _, name := range spec.Required {
		if outcome.Found(name) {
			v.out.Success("found: %s", name)
		} else {
			v.out.Print("%s not found: %s\n", output.XMark, name)
		}
	}

	if outcome.Success {
		v.out.Success("All required packages are available via %s", spec.Manager)
		return
	}

	if len(spec.Required) == 1 {
		v.out.Failure("Package not found: %s", spec.Required[0])
		return
	}

	for _, name := range outcome.Missing {
		v.out.Failure("Package not found: %s", name)
	}
}
