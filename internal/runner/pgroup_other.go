//go:build !unix

package runner

import "os/exec"

// configureProcessGroup is a no-op on platforms without POSIX process
// groups; exec.CommandContext's default kill applies.
func configureProcessGroup(_ *exec.Cmd) {}
