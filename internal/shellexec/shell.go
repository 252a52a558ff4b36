// Package shellexec selects the user shell used to run substituted command
// strings, matching the original implementation's lazy-static COMMAND table.
package shellexec

import (
	"os"
	"runtime"
)

// Shell returns the interpreter binary and its "run this string" flag: the
// user's $SHELL on POSIX (falling back to /bin/sh), or cmd.exe with /C on
// Windows.
func Shell() (binary string, flag string) {
	if runtime.GOOS == "windows" {
		return "cmd", "/C"
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh, "-c"
	}
	return "/bin/sh", "-c"
}
