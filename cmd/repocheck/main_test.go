package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	clierrors "github.com/repocheck-dev/repocheck/internal/errors"
	"github.com/repocheck-dev/repocheck/internal/output"
	"github.com/repocheck-dev/repocheck/internal/terminal"
)

func testWriter() (*output.Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	w := output.NewWriter(stdout, stderr, &terminal.Info{NoColor: true, Width: 80})

	return w, stdout, stderr
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStderr string
	}{
		{
			name:       "cli error carries its exit code",
			err:        clierrors.New(clierrors.ExitConfig, "Unknown package manager: pacman"),
			wantCode:   clierrors.ExitConfig,
			wantStderr: "Unknown package manager: pacman",
		},
		{
			name:       "search failure propagates manager status",
			err:        clierrors.SearchFailed("apt", 100, errors.New("boom")),
			wantCode:   100,
			wantStderr: "apt search failed",
		},
		{
			name:       "missing package is exit one",
			err:        clierrors.PackagesMissing([]string{"openbangla-keyboard"}),
			wantCode:   1,
			wantStderr: "Package not found",
		},
		{
			name:       "unknown command is a usage error",
			err:        errors.New(`unknown command "verfy" for "repocheck"`),
			wantCode:   clierrors.ExitUsage,
			wantStderr: "unknown command",
		},
		{
			name:       "plain error falls back to one",
			err:        errors.New("something broke"),
			wantCode:   1,
			wantStderr: "something broke",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, stderr := testWriter()

			code := handleError(w, tt.err)

			if code != tt.wantCode {
				t.Errorf("handleError() = %d, want %d", code, tt.wantCode)
			}

			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestHandleErrorShowsHint(t *testing.T) {
	w, stdout, _ := testWriter()

	err := clierrors.New(clierrors.ExitUsage, "bad flag").WithHint("Run 'repocheck --help'")
	handleError(w, err)

	if !strings.Contains(stdout.String(), "Run 'repocheck --help'") {
		t.Errorf("hint missing from output: %q", stdout.String())
	}
}

func TestPickFlagOrEnv(t *testing.T) {
	t.Setenv("REPOCHECK_TEST_PICK", "from-env")

	if got := pickFlagOrEnv("from-flag", "REPOCHECK_TEST_PICK", "fallback"); got != "from-flag" {
		t.Errorf("flag should win, got %q", got)
	}

	if got := pickFlagOrEnv("", "REPOCHECK_TEST_PICK", "fallback"); got != "from-env" {
		t.Errorf("env should win over fallback, got %q", got)
	}

	if got := pickFlagOrEnv("", "REPOCHECK_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("fallback expected, got %q", got)
	}
}

func TestPickBoolFlagOrEnv(t *testing.T) {
	t.Setenv("REPOCHECK_TEST_BOOL", "true")

	if !pickBoolFlagOrEnv(false, "REPOCHECK_TEST_BOOL") {
		t.Error("truthy env not honored")
	}

	t.Setenv("REPOCHECK_TEST_BOOL", "0")

	if pickBoolFlagOrEnv(false, "REPOCHECK_TEST_BOOL") {
		t.Error("falsy env treated as true")
	}

	if !pickBoolFlagOrEnv(true, "REPOCHECK_TEST_UNSET") {
		t.Error("flag value not honored")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	w, _, _ := testWriter()
	root := newRootCmd(w)

	want := map[string]bool{
		"verify":  false,
		"index":   false,
		"doctor":  false,
		"update":  false,
		"version": false,
	}

	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
