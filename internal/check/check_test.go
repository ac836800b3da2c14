package check

import (
	"reflect"
	"testing"
)

const aptSearchOutput = `Reading package lists...
openbangla-keyboard - OpenSource, Unicode compliant Bengali input method
openbangla-keyboard-dbgsym - debug symbols for openbangla-keyboard
`

const zypperSearchOutput = `Loading repository data...
Reading installed packages...

S | Name             | Summary                                  | Type
--+------------------+------------------------------------------+--------
  | fcitx-openbangla | OpenBangla Keyboard engine for Fcitx     | package
  | ibus-openbangla  | OpenBangla Keyboard engine for IBus      | package
`

func TestVerify(t *testing.T) {
	tests := []struct {
		name        string
		result      CommandResult
		required    []string
		wantSuccess bool
		wantMissing []string
		wantReason  FailureReason
	}{
		{
			name:        "single package present",
			result:      CommandResult{CombinedOutput: aptSearchOutput},
			required:    []string{"openbangla-keyboard"},
			wantSuccess: true,
			wantReason:  ReasonNone,
		},
		{
			name:        "single package missing",
			result:      CommandResult{CombinedOutput: "Reading package lists...\n"},
			required:    []string{"openbangla-keyboard"},
			wantSuccess: false,
			wantMissing: []string{"openbangla-keyboard"},
			wantReason:  ReasonPackageMissing,
		},
		{
			name:        "multiple packages all present",
			result:      CommandResult{CombinedOutput: zypperSearchOutput},
			required:    []string{"fcitx-openbangla", "ibus-openbangla"},
			wantSuccess: true,
			wantReason:  ReasonNone,
		},
		{
			name: "one of several missing is named individually",
			result: CommandResult{
				CombinedOutput: "  | fcitx-openbangla | OpenBangla Keyboard engine for Fcitx | package\n",
			},
			required:    []string{"fcitx-openbangla", "ibus-openbangla"},
			wantSuccess: false,
			wantMissing: []string{"ibus-openbangla"},
			wantReason:  ReasonPackageMissing,
		},
		{
			name:        "all missing are reported in declaration order",
			result:      CommandResult{CombinedOutput: "No matches found\n"},
			required:    []string{"fcitx-openbangla", "ibus-openbangla"},
			wantSuccess: false,
			wantMissing: []string{"fcitx-openbangla", "ibus-openbangla"},
			wantReason:  ReasonPackageMissing,
		},
		{
			name:        "containment is case sensitive",
			result:      CommandResult{CombinedOutput: "OpenBangla-Keyboard\n"},
			required:    []string{"openbangla-keyboard"},
			wantSuccess: false,
			wantMissing: []string{"openbangla-keyboard"},
			wantReason:  ReasonPackageMissing,
		},
		{
			name:        "substring match inside a longer token counts",
			result:      CommandResult{CombinedOutput: "openbangla-keyboard-dbgsym\n"},
			required:    []string{"openbangla-keyboard"},
			wantSuccess: true,
			wantReason:  ReasonNone,
		},
		{
			name:        "name found in stderr portion of combined output",
			result:      CommandResult{CombinedOutput: "warning: cache stale\nopenbangla-keyboard\n"},
			required:    []string{"openbangla-keyboard"},
			wantSuccess: true,
			wantReason:  ReasonNone,
		},
		{
			name:        "no required packages succeeds trivially",
			result:      CommandResult{CombinedOutput: ""},
			required:    nil,
			wantSuccess: true,
			wantReason:  ReasonNone,
		},
		{
			name:        "non-zero exit fails regardless of output",
			result:      CommandResult{CombinedOutput: aptSearchOutput, ExitStatus: 5},
			required:    []string{"openbangla-keyboard"},
			wantSuccess: false,
			wantReason:  ReasonCommandFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Verify(tt.result, tt.required)

			if outcome.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", outcome.Success, tt.wantSuccess)
			}

			if !reflect.DeepEqual(outcome.Missing, tt.wantMissing) {
				t.Errorf("Missing = %v, want %v", outcome.Missing, tt.wantMissing)
			}

			if outcome.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", outcome.Reason, tt.wantReason)
			}

			// Success must hold exactly when nothing failed.
			wantInvariant := outcome.ExitStatus == 0 && len(outcome.Missing) == 0
			if outcome.Success != wantInvariant {
				t.Errorf("Success = %v violates exit/missing invariant", outcome.Success)
			}
		})
	}
}

func TestVerifyCommandFailureCarriesExitStatus(t *testing.T) {
	outcome := Verify(CommandResult{CombinedOutput: "boom", ExitStatus: 5}, []string{"pkg"})

	if outcome.Phase != PhaseSearch {
		t.Errorf("Phase = %q, want %q", outcome.Phase, PhaseSearch)
	}

	if outcome.ExitStatus != 5 {
		t.Errorf("ExitStatus = %d, want 5", outcome.ExitStatus)
	}

	if len(outcome.Missing) != 0 {
		t.Errorf("Missing = %v, want empty for command failures", outcome.Missing)
	}
}

func TestOutcomeExitCode(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    int
	}{
		{
			name:    "success is zero",
			outcome: Outcome{Success: true, Reason: ReasonNone},
			want:    0,
		},
		{
			name:    "missing package is one",
			outcome: Outcome{Missing: []string{"a"}, Reason: ReasonPackageMissing},
			want:    1,
		},
		{
			name:    "command failure propagates its own status",
			outcome: Outcome{Reason: ReasonCommandFailed, Phase: PhaseSearch, ExitStatus: 5},
			want:    5,
		},
		{
			name:    "command failure with unknown status falls back to one",
			outcome: Outcome{Reason: ReasonCommandFailed, Phase: PhaseSearch},
			want:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outcome.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOutcomeFound(t *testing.T) {
	outcome := Verify(CommandResult{
		CombinedOutput: "  | fcitx-openbangla | engine | package\n",
	}, []string{"fcitx-openbangla", "ibus-openbangla"})

	if !outcome.Found("fcitx-openbangla") {
		t.Error("Found(fcitx-openbangla) = false, want true")
	}

	if outcome.Found("ibus-openbangla") {
		t.Error("Found(ibus-openbangla) = true, want false")
	}
}
