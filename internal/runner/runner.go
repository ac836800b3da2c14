// Package runner executes external commands for the verifier.
//
// Commands run with stdout and stderr merged into a single stream, in
// arrival order, because the verification core inspects the combined text
// the same way an operator reading the terminal would. The exit status is
// always recovered: a command that ran and failed is a result, not an
// error. Errors are reserved for commands that could not be started or
// were cut off by the context.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/repocheck-dev/repocheck/internal/check"
)

// Run executes name with args and captures the combined output and exit
// status. The context deadline bounds the whole execution; on expiry the
// command's entire process group is killed so shell children cannot
// outlive the check.
func Run(ctx context.Context, name string, args ...string) (check.CommandResult, error) {
	if _, err := exec.LookPath(name); err != nil {
		return check.CommandResult{}, fmt.Errorf("%s not found in PATH", name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()
	configureProcessGroup(cmd)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()

	res := check.CommandResult{
		CombinedOutput: buf.String(),
		ExitStatus:     exitStatus(err),
	}

	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, fmt.Errorf("%s timed out: %w", name, ctxErr)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Ran and exited non-zero; the status is the answer.
			return res, nil
		}

		return res, fmt.Errorf("start %s: %w", name, err)
	}

	return res, nil
}

// RunShell pipes script into the shell interpreter, inheriting the
// process environment. Used by the bootstrap hook, which executes a
// fetched payload exactly as `curl | sh` would.
func RunShell(ctx context.Context, interpreter string, script []byte) (check.CommandResult, error) {
	if _, err := exec.LookPath(interpreter); err != nil {
		return check.CommandResult{}, fmt.Errorf("%s not found in PATH", interpreter)
	}

	cmd := exec.CommandContext(ctx, interpreter)
	cmd.Env = os.Environ()
	cmd.Stdin = bytes.NewReader(script)
	configureProcessGroup(cmd)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()

	res := check.CommandResult{
		CombinedOutput: buf.String(),
		ExitStatus:     exitStatus(err),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, nil
		}

		return res, fmt.Errorf("start %s: %w", interpreter, err)
	}

	return res, nil
}

// exitStatus extracts the exit code from a Run error, 0 when nil.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	// Could not start or was killed before exiting cleanly.
	return -1
}

// WithTimeout derives a context bounded by timeout when it is positive.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
