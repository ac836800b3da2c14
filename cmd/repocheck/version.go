package main

import (
	"github.com/spf13/cobra"

	"github.com/repocheck-dev/repocheck/internal/output"
)

// VersionInfo represents version information for JSON output.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show version information",
		Long:    `Display the repocheck binary version and git commit.`,
		Example: `  repocheck version`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if out.JSON {
				return out.PrintJSON(VersionInfo{
					Version: version,
					Commit:  commit,
				})
			}

			out.Print("repocheck %s\n", version)
			out.Print("  commit: %s\n", commit)

			return nil
		},
	}
}
