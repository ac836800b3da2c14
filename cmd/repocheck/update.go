package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/repocheck-dev/repocheck/internal/buildinfo"
	"github.com/repocheck-dev/repocheck/internal/output"
	"github.com/repocheck-dev/repocheck/internal/update"
)

func newUpdateCmd() *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update repocheck to the latest version",
		Long: `Update repocheck to the latest version from GitHub Releases.

Downloads the new binary, verifies its checksum, and replaces the current
executable.

Set REPOCHECK_UPDATE_DISABLED=1 to disable update checks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if update.IsDisabled() {
				out.Warning("Updates are disabled (REPOCHECK_UPDATE_DISABLED is set)")
				return nil
			}

			currentVersion := buildinfo.Version

			// Dev builds can't be updated
			if currentVersion == "dev" {
				out.Warning("Development build — cannot determine current version")
				out.Info("Install a release build: https://github.com/repocheck-dev/repocheck/releases")

				return nil
			}

			updater, err := update.NewUpdater()
			if err != nil {
				return fmt.Errorf("failed to initialize updater: %w", err)
			}

			// Skip spinner in JSON mode to avoid corrupting stdout
			var spin *output.Spinner
			if !out.JSON {
				spin = out.Spinner("Checking for updates")
				spin.Start()
			}

			info, err := updater.CheckLatest(ctx, currentVersion)
			if err != nil {
				if spin != nil {
					spin.StopWithFailure(fmt.Sprintf("Failed to check for updates: %v", err))
				}

				if strings.Contains(err.Error(), "403") {
					out.Info("Set GITHUB_TOKEN to avoid rate limits")
				}

				return fmt.Errorf("update check failed: %w", err)
			}

			if out.JSON {
				return out.PrintJSON(info)
			}

			if !info.UpdateAvailable {
				spin.StopWithSuccess(fmt.Sprintf("Already up to date (v%s)", currentVersion))
				return nil
			}

			spin.StopWithSuccess(fmt.Sprintf("Update available: v%s → v%s", currentVersion, info.LatestVersion))

			if checkOnly {
				return nil
			}

			if info.Release == nil {
				return fmt.Errorf("no release found for this platform")
			}

			spin = out.Spinner(fmt.Sprintf("Downloading v%s", info.LatestVersion))
			spin.Start()

			if err := updater.Apply(ctx, info.Release); err != nil {
				spin.StopWithFailure(fmt.Sprintf("Update failed: %v", err))
				return fmt.Errorf("update failed: %w", err)
			}

			spin.StopWithSuccess(fmt.Sprintf("Updated to v%s", info.LatestVersion))

			if info.ReleaseURL != "" {
				out.Muted("Release notes: %s", info.ReleaseURL)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for a newer version, do not install it")

	return cmd
}
