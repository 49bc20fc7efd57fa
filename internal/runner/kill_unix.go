//go:build !windows

package runner

import (
	"syscall"
)

// killProcess sends a plain SIGTERM to the pid; no process-group kill on
// POSIX.
func killProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
