//go:build windows

package slotworker

import "os/exec"

// setProcAttrs is a no-op on Windows; there is no process-group equivalent
// used by this design on that platform.
func setProcAttrs(c *exec.Cmd) {}
