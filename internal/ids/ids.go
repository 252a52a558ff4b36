// Package ids generates trace/request identifiers for structured logging.
package ids

import "github.com/google/uuid"

// New returns a fresh random trace id for correlating log lines across a
// single connection's request/response lifecycle.
func New() string {
	return uuid.NewString()
}
