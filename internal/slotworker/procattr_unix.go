//go:build !windows

package slotworker

import (
	"os/exec"
	"syscall"
)

// setProcAttrs places the child in its own process group, matching the
// original setpgid(0, 0) call before exec.
func setProcAttrs(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
