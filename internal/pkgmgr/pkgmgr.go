// Package pkgmgr exposes the host package managers the verifier drives.
//
// A Manager wraps exactly the two subcommands the verification workflow
// needs — metadata refresh and index search — and returns raw command
// results without parsing them. Output inspection is the check package's
// job. This is deliberately not a general package-manager abstraction:
// there is no install, remove, or version surface.
package pkgmgr

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/repocheck-dev/repocheck/internal/check"
)

// Manager is a host package manager consumed via its refresh and search
// subcommands.
type Manager interface {
	// Name is the registry identifier ("apt", "zypper").
	Name() string

	// Available reports whether the manager's binary is on PATH.
	Available() bool

	// Refresh updates the package index metadata.
	Refresh(ctx context.Context) (check.CommandResult, error)

	// Search queries the package index for the given term.
	Search(ctx context.Context, query string) (check.CommandResult, error)
}

var (
	registryMu sync.Mutex
	registry   = map[string]Manager{}
)

// Register adds a package manager to the global registry. Panics on
// duplicate names.
func Register(m Manager) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[m.Name()]; dup {
		panic(fmt.Sprintf("pkgmgr: duplicate registration for %q", m.Name()))
	}

	registry[m.Name()] = m
}

// Lookup returns the registered manager for name.
func Lookup(name string) (Manager, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()

	m, ok := registry[name]

	return m, ok
}

// RegisteredNames returns all registered manager names in sorted order.
func RegisteredNames() []string {
	registryMu.Lock()
	defer registryMu.Unlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// AvailableNames returns manager names whose binaries are on PATH, sorted.
func AvailableNames() []string {
	registryMu.Lock()
	defer registryMu.Unlock()

	names := make([]string, 0, len(registry))
	for name, m := range registry {
		if m.Available() {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}
