package pkgmgr

import (
	"context"
	"testing"

	"github.com/repocheck-dev/repocheck/internal/check"
)

type stubManager struct {
	name string
}

func (s stubManager) Name() string    { return s.name }
func (s stubManager) Available() bool { return true }

func (s stubManager) Refresh(context.Context) (check.CommandResult, error) {
	return check.CommandResult{}, nil
}

func (s stubManager) Search(context.Context, string) (check.CommandResult, error) {
	return check.CommandResult{}, nil
}

func TestBuiltinManagersAreRegistered(t *testing.T) {
	names := RegisteredNames()

	want := map[string]bool{"apt": false, "zypper": false}
	for _, name := range names {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("manager %q not registered; registry = %v", name, names)
		}
	}
}

func TestLookup(t *testing.T) {
	mgr, ok := Lookup("apt")
	if !ok {
		t.Fatal("Lookup(apt) = false")
	}
	if mgr.Name() != "apt" {
		t.Errorf("Name() = %q, want apt", mgr.Name())
	}

	if _, ok := Lookup("pacman"); ok {
		t.Error("Lookup(pacman) = true, want false")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register(stubManager{name: "testmgr"})

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()

	Register(stubManager{name: "testmgr"})
}

func TestRegisteredNamesSorted(t *testing.T) {
	names := RegisteredNames()

	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
			break
		}
	}
}
