package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/repocheck-dev/repocheck/internal/terminal"
)

// testTerminal returns a terminal.Info for testing (non-TTY, no color).
func testTerminal() *terminal.Info {
	return &terminal.Info{
		IsTTY:   false,
		NoColor: true,
		Width:   80,
	}
}

func TestWriter_Print(t *testing.T) {
	tests := []struct {
		name   string
		quiet  bool
		format string
		args   []interface{}
		want   string
	}{
		{
			name:   "normal output",
			quiet:  false,
			format: "Checking %s",
			args:   []interface{}{"apt"},
			want:   "Checking apt",
		},
		{
			name:   "quiet mode suppresses output",
			quiet:  true,
			format: "Checking %s",
			args:   []interface{}{"apt"},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			w := NewWriter(&buf, &buf, testTerminal())
			w.Quiet = tt.quiet

			w.Print(tt.format, tt.args...)

			if got := buf.String(); got != tt.want {
				t.Errorf("Print() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_Raw(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		text  string
		want  string
	}{
		{
			name: "text with trailing newline passes through",
			text: "openbangla-keyboard - Bengali input method\n",
			want: "openbangla-keyboard - Bengali input method\n",
		},
		{
			name: "missing trailing newline is added",
			text: "no newline",
			want: "no newline\n",
		},
		{
			name: "empty text writes nothing",
			text: "",
			want: "",
		},
		{
			name:  "quiet mode does not suppress raw output",
			quiet: true,
			text:  "search listing\n",
			want:  "search listing\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			w := NewWriter(&buf, &buf, testTerminal())
			w.Quiet = tt.quiet

			w.Raw(tt.text)

			if got := buf.String(); got != tt.want {
				t.Errorf("Raw() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_FailureGoesToStderr(t *testing.T) {
	var outBuf, errBuf bytes.Buffer

	w := NewWriter(&outBuf, &errBuf, testTerminal())

	w.Failure("Package not found: %s", "openbangla-keyboard")

	if got := errBuf.String(); got != XMark+" Package not found: openbangla-keyboard\n" {
		t.Errorf("Failure() = %q", got)
	}

	if outBuf.Len() > 0 {
		t.Errorf("Failure() should not write to stdout, got %q", outBuf.String())
	}
}

func TestWriter_FailureIgnoresQuiet(t *testing.T) {
	var outBuf, errBuf bytes.Buffer

	w := NewWriter(&outBuf, &errBuf, testTerminal())
	w.Quiet = true

	w.Failure("still shown")

	if errBuf.Len() == 0 {
		t.Error("Failure() was suppressed by quiet mode")
	}
}

func TestWriter_StatusMessages(t *testing.T) {
	var outBuf, errBuf bytes.Buffer

	w := NewWriter(&outBuf, &errBuf, testTerminal())

	w.Success("found: %s", "openbangla-keyboard")
	w.Warning("refresh failed")
	w.Info("checking")

	got := outBuf.String()

	for _, want := range []string{
		CheckMark + " found: openbangla-keyboard\n",
		WarningMark + " refresh failed\n",
		InfoMark + " checking\n",
	} {
		if !bytes.Contains([]byte(got), []byte(want)) {
			t.Errorf("stdout missing %q:\n%s", want, got)
		}
	}

	if errBuf.Len() > 0 {
		t.Errorf("status messages leaked to stderr: %q", errBuf.String())
	}
}

func TestWriter_PrintJSON(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())

	if err := w.PrintJSON(map[string]any{"success": true}); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded["success"] != true {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())

	ctx := w.WithContext(context.Background())

	if got := FromContext(ctx); got != w {
		t.Error("FromContext did not return the stored writer")
	}
}

func TestSpinnerDisabledOnNonTTY(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())

	sp := w.Spinner("Refreshing metadata")
	sp.Start()
	sp.StopWithSuccess("Refreshed metadata")

	got := buf.String()

	if !bytes.Contains([]byte(got), []byte("Refreshing metadata... ")) {
		t.Errorf("fallback text missing: %q", got)
	}
	if !bytes.Contains([]byte(got), []byte(CheckMark+" Refreshed metadata")) {
		t.Errorf("success message missing: %q", got)
	}
}
