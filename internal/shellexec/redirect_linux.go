//go:build linux

package shellexec

import (
	"os"
	"strings"
)

// StdinRedirected reports whether stdin is a pipe or redirected file rather
// than an interactive terminal, by resolving the /proc/self/fd/0 symlink.
// Any failure to read it (missing /proc, permission, sandboxing) always
// reports false: the safe default is to treat stdin as interactive and not
// block waiting on input that will never arrive.
func StdinRedirected() bool {
	target, err := os.Readlink("/proc/self/fd/0")
	if err != nil {
		return false
	}
	if strings.HasPrefix(target, "/dev/pts") || strings.HasPrefix(target, "/dev/tty") {
		return false
	}
	return true
}
