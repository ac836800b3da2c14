// Package suite loads verification suite files.
//
// A suite file is a YAML document listing verification runs, so the exact
// checks a release pipeline performs live in reviewable configuration
// instead of being hardcoded per distribution:
//
//	checks:
//	  - name: ubuntu
//	    manager: apt
//	    query: openbangla-keyboard
//	    packages: [openbangla-keyboard]
//	    bootstrap_url: https://example.org/install.sh
//	  - name: opensuse
//	    manager: zypper
//	    query: openbangla
//	    packages: [fcitx-openbangla, ibus-openbangla]
package suite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/repocheck-dev/repocheck/internal/check"
)

// Entry is one named verification run in a suite.
type Entry struct {
	// Name labels the entry in output. Defaults to the manager name.
	Name string `yaml:"name"`

	check.Spec `yaml:",inline"`
}

// Suite is a parsed suite file.
type Suite struct {
	Checks []Entry `yaml:"checks"`
}

// Load reads and validates a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if len(s.Checks) == 0 {
		return nil, fmt.Errorf("suite defines no checks")
	}

	for i := range s.Checks {
		e := &s.Checks[i]
		if e.Manager == "" {
			return nil, fmt.Errorf("check %d: manager is required", i+1)
		}
		if e.Query == "" {
			return nil, fmt.Errorf("check %d: query is required", i+1)
		}
		if e.Name == "" {
			e.Name = e.Manager
		}
		if len(e.Required) == 0 {
			// The search term itself is the thing being verified.
			e.Required = []string{e.Query}
		}
	}

	return &s, nil
}
