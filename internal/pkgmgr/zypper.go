package pkgmgr

import (
	"context"
	"os/exec"

	"github.com/repocheck-dev/repocheck/internal/check"
	"github.com/repocheck-dev/repocheck/internal/runner"
)

// Zypper drives the openSUSE package manager. Refresh auto-imports
// repository signing keys so a freshly added repository can be searched
// unattended.
type Zypper struct{}

func init() {
	Register(Zypper{})
}

// Name implements Manager.
func (Zypper) Name() string { return "zypper" }

// Available implements Manager.
func (Zypper) Available() bool {
	_, err := exec.LookPath("zypper")
	return err == nil
}

// Refresh implements Manager by running an authenticated refresh.
func (Zypper) Refresh(ctx context.Context) (check.CommandResult, error) {
	return runner.Run(ctx, "zypper", "--non-interactive", "--gpg-auto-import-keys", "refresh")
}

// Search implements Manager by running `zypper search`.
func (Zypper) Search(ctx context.Context, query string) (check.CommandResult, error) {
	return runner.Run(ctx, "zypper", "--non-interactive", "search", query)
}
