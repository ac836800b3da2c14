package main

import (
	"strings"
	"testing"

	"github.com/repocheck-dev/repocheck/internal/check"
	clierrors "github.com/repocheck-dev/repocheck/internal/errors"
)

func runCommand(t *testing.T, args ...string) error {
	t.Helper()

	w, _, _ := testWriter()

	root := newRootCmd(w)
	root.SetOut(w.Out)
	root.SetErr(w.Err)
	root.SetArgs(args)

	return root.Execute()
}

func TestVerifyRequiresManagerOrSuite(t *testing.T) {
	err := runCommand(t, "verify")
	if err == nil {
		t.Fatal("Execute() error = nil, want usage error")
	}

	var cliErr *clierrors.CLIError
	if !clierrors.As(err, &cliErr) {
		t.Fatalf("error = %T, want *CLIError", err)
	}
	if cliErr.Code != clierrors.ExitUsage {
		t.Errorf("Code = %d, want %d", cliErr.Code, clierrors.ExitUsage)
	}
}

func TestVerifyRequiresQuery(t *testing.T) {
	err := runCommand(t, "verify", "--manager", "apt")
	if err == nil {
		t.Fatal("Execute() error = nil, want usage error")
	}

	if !strings.Contains(err.Error(), "--query") {
		t.Errorf("error = %q, want query requirement", err)
	}
}

func TestVerifyUnknownManager(t *testing.T) {
	err := runCommand(t, "verify", "--manager", "pacman", "--query", "openbangla")
	if err == nil {
		t.Fatal("Execute() error = nil, want error")
	}

	var cliErr *clierrors.CLIError
	if !clierrors.As(err, &cliErr) {
		t.Fatalf("error = %T, want *CLIError", err)
	}
	if cliErr.Code != clierrors.ExitConfig {
		t.Errorf("Code = %d, want %d", cliErr.Code, clierrors.ExitConfig)
	}
	if !strings.Contains(cliErr.Message, "pacman") {
		t.Errorf("Message = %q", cliErr.Message)
	}
}

func TestVerifyRejectsPositionalArgs(t *testing.T) {
	if err := runCommand(t, "verify", "stray-arg"); err == nil {
		t.Error("Execute() error = nil, want error for positional args")
	}
}

func TestVerifyMissingSuiteFile(t *testing.T) {
	err := runCommand(t, "verify", "--suite", "/nonexistent/checks.yaml")
	if err == nil {
		t.Fatal("Execute() error = nil, want error")
	}

	var cliErr *clierrors.CLIError
	if !clierrors.As(err, &cliErr) {
		t.Fatalf("error = %T, want *CLIError", err)
	}
	if cliErr.Code != clierrors.ExitConfig {
		t.Errorf("Code = %d, want %d", cliErr.Code, clierrors.ExitConfig)
	}
}

func TestOutcomeError(t *testing.T) {
	tests := []struct {
		name     string
		outcome  check.Outcome
		wantCode int
		wantMsg  string
	}{
		{
			name: "search failure keeps the manager's status",
			outcome: check.Outcome{
				Reason:     check.ReasonCommandFailed,
				Phase:      check.PhaseSearch,
				ExitStatus: 5,
			},
			wantCode: 5,
			wantMsg:  "search command exited with status 5",
		},
		{
			name: "refresh failure names the refresh phase",
			outcome: check.Outcome{
				Reason:     check.ReasonCommandFailed,
				Phase:      check.PhaseRefresh,
				ExitStatus: 7,
			},
			wantCode: 7,
			wantMsg:  "refresh command exited with status 7",
		},
		{
			name: "missing package is exit one",
			outcome: check.Outcome{
				Reason:  check.ReasonPackageMissing,
				Missing: []string{"ibus-openbangla"},
			},
			wantCode: 1,
			wantMsg:  "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := outcomeError(check.Spec{Manager: "apt"}, tt.outcome)

			if err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", err.Code, tt.wantCode)
			}

			if !strings.Contains(err.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want to contain %q", err.Message, tt.wantMsg)
			}
		})
	}
}
