package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/repocheck-dev/repocheck/internal/check"
	"github.com/repocheck-dev/repocheck/internal/config"
	clierrors "github.com/repocheck-dev/repocheck/internal/errors"
	"github.com/repocheck-dev/repocheck/internal/observability"
	"github.com/repocheck-dev/repocheck/internal/output"
	"github.com/repocheck-dev/repocheck/internal/suite"
	"github.com/repocheck-dev/repocheck/internal/verifier"
)

func newVerifyCmd() *cobra.Command {
	var (
		manager      string
		query        string
		packages     []string
		bootstrapURL string
		suiteFile    string
		skipRefresh  bool
		strict       bool
		timeout      time.Duration
		retries      int
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify packages are resolvable from a repository",
		Long: `Verify that every required package appears in the package manager's
search output.

The pipeline is linear: optional bootstrap hook (fetch a setup script
and pipe it into sh), metadata refresh, search, then a case-sensitive
substring check of each required package name against the combined
search output. The raw search output is always echoed.

Exit codes:
  0   every required package was found
  1   the search succeeded but at least one package was missing
  N   the search command itself failed with exit status N`,
		Example: `  repocheck verify -m apt -q openbangla-keyboard -p openbangla-keyboard
  repocheck verify -m zypper -q openbangla -p fcitx-openbangla -p ibus-openbangla \
      --bootstrap-url https://openbangla.github.io/install.sh
  repocheck verify --suite checks.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			log := observability.FromContext(cmd.Context())
			cfg := config.Load()

			if timeout <= 0 {
				timeout = cfg.Timeout()
			}
			if !cmd.Flags().Changed("retries") {
				retries = cfg.Retries()
			}
			if !cmd.Flags().Changed("strict") {
				strict = cfg.Strict()
			}

			var entries []suite.Entry

			if suiteFile != "" {
				s, err := suite.Load(suiteFile)
				if err != nil {
					return clierrors.SuiteInvalid(suiteFile, err)
				}
				entries = s.Checks
			} else {
				if manager == "" {
					return clierrors.New(clierrors.ExitUsage, "Either --manager or --suite is required").
						WithHint("Run 'repocheck verify --help' for usage")
				}
				if query == "" {
					return clierrors.New(clierrors.ExitUsage, "--query is required").
						WithHint("Pass the search term with -q")
				}
				if len(packages) == 0 {
					// The search term itself is the thing being verified.
					packages = []string{query}
				}

				entries = []suite.Entry{{
					Name: manager,
					Spec: check.Spec{
						Manager:      manager,
						Query:        query,
						Required:     packages,
						BootstrapURL: bootstrapURL,
						SkipRefresh:  skipRefresh,
						Strict:       strict,
					},
				}}
			}

			v := verifier.New(verifier.Options{Out: out, Log: log})

			type namedOutcome struct {
				Name    string        `json:"name"`
				Outcome check.Outcome `json:"outcome"`
			}

			outcomes := make([]namedOutcome, 0, len(entries))

			var failure *clierrors.CLIError

			for _, entry := range entries {
				spec := entry.Spec
				if spec.Timeout <= 0 {
					spec.Timeout = timeout
				}
				if spec.Retries == 0 {
					spec.Retries = retries
				}
				if strict {
					spec.Strict = true
				}

				if len(entries) > 1 {
					out.Info("Checking %s", entry.Name)
				}

				outcome, err := v.Run(cmd.Context(), spec)
				if err != nil {
					return err
				}

				outcomes = append(outcomes, namedOutcome{Name: entry.Name, Outcome: outcome})

				if !outcome.Success && failure == nil {
					failure = outcomeError(spec, outcome)
				}
			}

			if out.JSON {
				if len(outcomes) == 1 {
					if err := out.PrintJSON(outcomes[0].Outcome); err != nil {
						return err
					}
				} else if err := out.PrintJSON(outcomes); err != nil {
					return err
				}
			}

			if failure != nil {
				return failure
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&manager, "manager", "m", "", "Package manager to drive (apt, zypper)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search term passed to the package manager")
	cmd.Flags().StringArrayVarP(&packages, "package", "p", nil, "Required package name (repeatable); defaults to the query")
	cmd.Flags().StringVar(&bootstrapURL, "bootstrap-url", "", "Remote setup script to fetch and execute before the check")
	cmd.Flags().StringVar(&suiteFile, "suite", "", "YAML suite file describing the checks to run")
	cmd.Flags().BoolVar(&skipRefresh, "skip-refresh", false, "Skip the metadata refresh phase")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat bootstrap and refresh failures as fatal")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-command timeout (default 2m)")
	cmd.Flags().IntVar(&retries, "retries", 0, "Bootstrap fetch retries (default 2)")

	return cmd
}

// outcomeError maps a failed outcome onto the exit-code contract.
func outcomeError(spec check.Spec, outcome check.Outcome) *clierrors.CLIError {
	if outcome.Reason == check.ReasonCommandFailed {
		return clierrors.New(outcome.ExitCode(),
			fmt.Sprintf("Verification failed: %s command exited with status %d", outcome.Phase, outcome.ExitStatus))
	}

	return clierrors.PackagesMissing(outcome.Missing)
}
