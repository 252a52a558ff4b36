// Package outcome implements the keyed rendezvous from job_id to a completed
// Outcome: many writers insert by key, one reader blocks on a specific key
// until it appears (I2: at most one insert per id).
package outcome

import (
	"sync"
	"time"
)

// DefaultPollInterval is the 1ms poll interval named throughout the spec
// for both Job Queue pop and Outcome Map take.
const DefaultPollInterval = time.Millisecond

// Outcome is either a completed subprocess result or a permanent Failed.
type Outcome struct {
	Failed bool
	Status uint8
	Stdout string
	Stderr string
}

// Map is a concurrent job_id -> Outcome rendezvous.
type Map struct {
	mu    sync.Mutex
	items map[uint64]Outcome
}

// New creates an empty Map.
func New() *Map {
	return &Map{items: make(map[uint64]Outcome)}
}

// Insert stores the outcome for id. Callers must ensure at most one Insert
// per id (I2); a second Insert for the same id overwrites silently, which
// should never happen in a correct caller.
func (m *Map) Insert(id uint64, o Outcome) {
	m.mu.Lock()
	m.items[id] = o
	m.mu.Unlock()
}

// TryTake removes and returns the outcome for id if present, without
// blocking.
func (m *Map) TryTake(id uint64) (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if ok {
		delete(m.items, id)
	}
	return o, ok
}

// Take blocks until id is present, then removes and returns it. It polls
// every pollInterval; callers pass 0 to use the default 1ms interval from
// the spec.
func (m *Map) Take(id uint64, pollInterval time.Duration) Outcome {
	if pollInterval <= 0 {
		pollInterval = time.Millisecond
	}
	for {
		if o, ok := m.TryTake(id); ok {
			return o
		}
		time.Sleep(pollInterval)
	}
}
