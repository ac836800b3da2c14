package pkgmgr

import (
	"context"
	"os/exec"

	"github.com/repocheck-dev/repocheck/internal/check"
	"github.com/repocheck-dev/repocheck/internal/runner"
)

// Apt drives the Debian/Ubuntu package manager. Search goes through
// apt-cache, which is stable for scripted use (plain apt warns that its
// CLI output is not a stable interface).
type Apt struct{}

func init() {
	Register(Apt{})
}

// Name implements Manager.
func (Apt) Name() string { return "apt" }

// Available implements Manager.
func (Apt) Available() bool {
	_, err := exec.LookPath("apt-get")
	return err == nil
}

// Refresh implements Manager by running `apt-get update`.
func (Apt) Refresh(ctx context.Context) (check.CommandResult, error) {
	return runner.Run(ctx, "apt-get", "update")
}

// Search implements Manager by running `apt-cache search`.
func (Apt) Search(ctx context.Context, query string) (check.CommandResult, error) {
	return runner.Run(ctx, "apt-cache", "search", query)
}
