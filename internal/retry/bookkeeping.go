// Package retry holds the client-side retry side channels: a requeue deque
// of (job_id, input, attempt_count) and a permanently-failed set, plus the
// constant backoff policy adapted from the teacher's pkg/retry.
package retry

import (
	"sync"
	"time"
)

// MaxAttempts bounds per-input retries across any Connection Slot (I5):
// original attempt plus 3 retries.
const MaxAttempts = 4

// Backoff is the fixed 1s delay applied between Connection Slot retries.
const Backoff = time.Second

// Entry is a requeued input carrying its attempt count so far.
type Entry struct {
	JobID   uint64
	Input   string
	Attempt int
}

// Bookkeeping tracks inputs that failed a transient transport attempt and
// either need another try or have exhausted MaxAttempts.
type Bookkeeping struct {
	mu      sync.Mutex
	requeue []Entry
	failed  map[uint64]string
}

// New creates empty retry bookkeeping.
func New() *Bookkeeping {
	return &Bookkeeping{failed: make(map[uint64]string)}
}

// Requeue pushes a failed attempt back for another try, or records it as
// permanently failed once MaxAttempts is reached.
func (b *Bookkeeping) Requeue(jobID uint64, input string, attempt int) (retrying bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if attempt >= MaxAttempts {
		b.failed[jobID] = input
		return false
	}
	b.requeue = append(b.requeue, Entry{JobID: jobID, Input: input, Attempt: attempt})
	return true
}

// PopRequeue removes and returns the head of the requeue deque, if any. The
// Connection Slot consults this before the main Job Queue so retried inputs
// are serviced ahead of fresh ones.
func (b *Bookkeeping) PopRequeue() (Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requeue) == 0 {
		return Entry{}, false
	}
	e := b.requeue[0]
	b.requeue = b.requeue[1:]
	return e, true
}

// TakeFailed removes and returns the permanently-failed input for jobID, if
// any. Consumed by the Ordered Drain as a uniform Outcome source alongside
// the Outcome Map.
func (b *Bookkeeping) TakeFailed(jobID uint64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	input, ok := b.failed[jobID]
	if ok {
		delete(b.failed, jobID)
	}
	return input, ok
}
