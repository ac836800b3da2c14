//go:build unix

package runner

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		cmd        string
		args       []string
		wantStatus int
		wantOutput string
	}{
		{
			name:       "zero exit",
			cmd:        "sh",
			args:       []string{"-c", "echo hello"},
			wantStatus: 0,
			wantOutput: "hello\n",
		},
		{
			name:       "non-zero exit is a result not an error",
			cmd:        "sh",
			args:       []string{"-c", "echo broken >&2; exit 5"},
			wantStatus: 5,
			wantOutput: "broken\n",
		},
		{
			name:       "stdout and stderr are merged",
			cmd:        "sh",
			args:       []string{"-c", "echo out; echo err >&2"},
			wantStatus: 0,
			wantOutput: "out\nerr\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(context.Background(), tt.cmd, tt.args...)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if res.ExitStatus != tt.wantStatus {
				t.Errorf("ExitStatus = %d, want %d", res.ExitStatus, tt.wantStatus)
			}

			if res.CombinedOutput != tt.wantOutput {
				t.Errorf("CombinedOutput = %q, want %q", res.CombinedOutput, tt.wantOutput)
			}
		})
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), "definitely-not-a-real-binary-name")
	if err == nil {
		t.Fatal("Run() error = nil, want error")
	}

	if !strings.Contains(err.Error(), "not found in PATH") {
		t.Errorf("error = %q", err)
	}
}

func TestRunTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Run(ctx, "sh", "-c", "sleep 10")

	if err == nil {
		t.Fatal("Run() error = nil, want timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error = %q, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("command ran for %v after timeout, process group kill failed", elapsed)
	}
}

func TestRunShell(t *testing.T) {
	res, err := RunShell(context.Background(), "sh", []byte("echo from-script\nexit 0\n"))
	if err != nil {
		t.Fatalf("RunShell() error = %v", err)
	}

	if res.ExitStatus != 0 {
		t.Errorf("ExitStatus = %d, want 0", res.ExitStatus)
	}
	if res.CombinedOutput != "from-script\n" {
		t.Errorf("CombinedOutput = %q", res.CombinedOutput)
	}
}

func TestRunShellScriptFailure(t *testing.T) {
	res, err := RunShell(context.Background(), "sh", []byte("exit 3\n"))
	if err != nil {
		t.Fatalf("RunShell() error = %v", err)
	}

	if res.ExitStatus != 3 {
		t.Errorf("ExitStatus = %d, want 3", res.ExitStatus)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, ok := ctx.Deadline(); !ok {
		t.Error("positive timeout did not set a deadline")
	}

	ctx, cancel = WithTimeout(context.Background(), 0)
	defer cancel()

	if _, ok := ctx.Deadline(); ok {
		t.Error("zero timeout set a deadline")
	}
}
