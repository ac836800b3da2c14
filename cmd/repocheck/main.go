// Package main is the entry point for the repocheck CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/repocheck-dev/repocheck/internal/buildinfo"
	clierrors "github.com/repocheck-dev/repocheck/internal/errors"
	"github.com/repocheck-dev/repocheck/internal/observability"
	"github.com/repocheck-dev/repocheck/internal/output"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	buildinfo.Version = version
	buildinfo.Commit = commit

	out := output.Default()

	rootCmd := newRootCmd(out)
	if err := rootCmd.Execute(); err != nil {
		return handleError(out, err)
	}

	return 0
}

// handleError formats and displays a CLI error, returning the appropriate
// exit code. For CLIError types, it displays the message and hint with
// styled output. For Cobra errors (unknown command, flags), it prints
// them with suggestions.
func handleError(out *output.Writer, err error) int {
	var cliErr *clierrors.CLIError
	if clierrors.As(err, &cliErr) {
		out.Failure("%s", cliErr.Message)

		if cliErr.Hint != "" {
			out.Info("%s", cliErr.Hint)
		}

		return cliErr.Code
	}

	errStr := err.Error()

	// Cobra's unknown command errors carry their own suggestions.
	if strings.HasPrefix(errStr, "unknown command") {
		out.Failure("%s", errStr)

		if !strings.Contains(errStr, "--help") {
			out.Info("Run 'repocheck --help' for usage")
		}

		return clierrors.ExitUsage
	}

	out.Failure("%s", errStr)

	return 1
}

func newRootCmd(out *output.Writer) *cobra.Command {
	var (
		jsonOutput bool
		quiet      bool
		noColor    bool
		logLevel   string
		logFormat  string
		logFile    string
		logStderr  bool
	)

	rootCmd := &cobra.Command{
		Use:   "repocheck",
		Short: "Verify package availability in distribution repositories",
		Long: `Repocheck verifies that published packages are resolvable from a Linux
distribution package repository, and generates the apt/rpm repository
indices those repositories serve.

Get started:
  repocheck verify -m apt -q openbangla-keyboard -p openbangla-keyboard
  repocheck verify --suite checks.yaml
  repocheck index apt --dir ./artifacts --release-version 2.0.0
  repocheck doctor`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			out.JSON = pickBoolFlagOrEnv(jsonOutput, "REPOCHECK_JSON")
			out.Quiet = pickBoolFlagOrEnv(quiet, "REPOCHECK_QUIET")

			if noColor {
				out.SetNoColor(true)
			}

			logCfg := observability.Config{
				Level:     pickFlagOrEnv(logLevel, "REPOCHECK_LOG_LEVEL", "info"),
				Format:    pickFlagOrEnv(logFormat, "REPOCHECK_LOG_FORMAT", "json"),
				LogFile:   pickFlagOrEnv(logFile, "REPOCHECK_LOG_FILE", ""),
				Stderr:    logStderr || pickBoolFlagOrEnv(false, "REPOCHECK_LOG_STDERR"),
				SessionID: uuid.NewString(),
				Version:   version,
				Commit:    commit,
			}

			logger, cleanup, err := observability.NewLogger(&logCfg)
			if err != nil {
				return &clierrors.CLIError{
					Message: fmt.Sprintf("Invalid logging configuration: %v", err),
					Hint:    "Use --log-level (error|warn|info|debug), --log-format (json|text), and/or --log-file",
					Code:    clierrors.ExitUsage,
				}
			}

			slog.SetDefault(logger)

			ctx := out.WithContext(cmd.Context())
			ctx = observability.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if cleanup != nil {
				cmd.PostRunE = wrapPostRunCleanup(cmd.PostRunE, cleanup)
			}

			// Opt-in OTLP tracing (REPOCHECK_OTEL_ENABLED).
			telemetryCfg := &observability.TelemetryConfig{
				Enabled:  pickBoolFlagOrEnv(false, "REPOCHECK_OTEL_ENABLED"),
				Endpoint: os.Getenv("REPOCHECK_OTEL_ENDPOINT"),
				Version:  version,
				Commit:   commit,
			}

			telemetryShutdown, telemetryErr := observability.SetupTelemetry(ctx, telemetryCfg)
			if telemetryErr != nil {
				logger.Warn("telemetry initialization failed", slog.String("error", telemetryErr.Error()))
			}

			if telemetryShutdown != nil {
				cmd.PostRunE = wrapPostRunCleanup(cmd.PostRunE, func() error {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()

					return telemetryShutdown(shutdownCtx)
				})
			}

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Minimal output (for CI)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json, text")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Optional structured log file path")
	rootCmd.PersistentFlags().BoolVar(&logStderr, "log-stderr", false, "Structured logging to stderr")

	rootCmd.SuggestionsMinimumDistance = 2

	// Wrap Cobra's raw flag errors in CLIError so they get styled output
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &clierrors.CLIError{
			Message: err.Error(),
			Hint:    fmt.Sprintf("Run '%s --help' for available flags", cmd.CommandPath()),
			Code:    clierrors.ExitUsage,
		}
	})

	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// pickFlagOrEnv prefers the flag value, then the environment variable,
// then the fallback.
func pickFlagOrEnv(flagValue, envVar, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envVar); envValue != "" {
		return envValue
	}
	return fallback
}

// pickBoolFlagOrEnv is true when the flag is set or the env var is truthy.
func pickBoolFlagOrEnv(flagValue bool, envVar string) bool {
	if flagValue {
		return true
	}
	v := os.Getenv(envVar)
	return v == "1" || strings.EqualFold(v, "true")
}

// wrapPostRunCleanup chains a cleanup function onto an existing PostRunE.
func wrapPostRunCleanup(existing func(*cobra.Command, []string) error, cleanup func() error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var firstErr error
		if existing != nil {
			firstErr = existing(cmd, args)
		}

		if err := cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}

		return firstErr
	}
}
