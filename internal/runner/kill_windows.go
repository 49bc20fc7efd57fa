//go:build windows

package runner

import (
	"os/exec"
	"strconv"
)

// killProcess kills the whole process tree forcefully via taskkill.
func killProcess(pid int) error {
	return exec.Command("taskkill", "/PID", strconv.Itoa(pid), "/T", "/F").Run()
}
