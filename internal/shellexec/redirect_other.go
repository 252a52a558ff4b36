//go:build !linux

package shellexec

// StdinRedirected always reports false on non-Linux platforms: there is no
// portable equivalent of reading /proc/self/fd/0 in the dependency set this
// module draws from, so redirected-stdin input is Linux-only.
func StdinRedirected() bool {
	return false
}
