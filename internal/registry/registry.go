// Package registry implements the server-side Job Registry: a sparse vector
// of registered commands keyed by a small integer handle, with the
// kill_flag/parked_counter bookkeeping that lets "del" drain slots before
// freeing a handle.
package registry

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/concurr/concurr/internal/outcome"
	"github.com/concurr/concurr/internal/queue"
	"github.com/concurr/concurr/internal/template"
)

// Command is the per-registered-command state shared by all of its slots.
type Command struct {
	Handle    uint32
	Template  template.Template
	Jobs      *queue.Queue
	Outcomes  *outcome.Map
	SlotCount int

	killFlag atomic.Bool
	parked   atomic.Int64
}

// Kill sets the kill flag. Slot workers observe it between inputs.
func (c *Command) Kill() { c.killFlag.Store(true) }

// Killed reports whether Kill has been called.
func (c *Command) Killed() bool { return c.killFlag.Load() }

// Park is called by a slot worker when it observes Killed() and exits.
func (c *Command) Park() { c.parked.Add(1) }

// AllParked reports whether every slot has parked.
func (c *Command) AllParked() bool { return c.parked.Load() == int64(c.SlotCount) }

// Summary is a read-only introspection view of one Command.
type Summary struct {
	Handle     uint32
	Template   string
	SlotCount  int
	QueueDepth int
}

// Registry is the sparse vector of live Commands, keyed by handle.
type Registry struct {
	mu       sync.RWMutex
	commands []*Command // nil entries are vacant slots
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register allocates a handle for tpl, reusing the lowest vacant slot (I1:
// a handle is never reused while any reference to the old command exists —
// reuse only ever targets a slot whose prior command was already fully
// freed by Free). slotCount is normally runtime.NumCPU() on the node.
func (r *Registry) Register(tpl template.Template, slotCount int) *Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd := &Command{
		Template:  tpl,
		Jobs:      queue.New(),
		Outcomes:  outcome.New(),
		SlotCount: slotCount,
	}

	for i, existing := range r.commands {
		if existing == nil {
			cmd.Handle = uint32(i)
			r.commands[i] = cmd
			return cmd
		}
	}
	cmd.Handle = uint32(len(r.commands))
	r.commands = append(r.commands, cmd)
	return cmd
}

// Get returns the live Command for handle, or ok=false if vacant/out of
// range.
func (r *Registry) Get(handle uint32) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(handle) >= len(r.commands) {
		return nil, false
	}
	cmd := r.commands[handle]
	return cmd, cmd != nil
}

// Free clears handle back to vacant. Callers must have already confirmed
// AllParked() on the Command.
func (r *Registry) Free(handle uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(handle) < len(r.commands) {
		r.commands[handle] = nil
	}
}

// Snapshot returns a point-in-time summary of every live command, for the
// introspection surface and for "get comms".
func (r *Registry) Snapshot() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Summary
	for i, cmd := range r.commands {
		if cmd == nil {
			continue
		}
		out = append(out, Summary{
			Handle:     uint32(i),
			Template:   cmd.Template.String(),
			SlotCount:  cmd.SlotCount,
			QueueDepth: cmd.Jobs.Len(),
		})
	}
	return out
}

// Cores reports the node's local CPU count, for "get cores".
func Cores() int {
	return runtime.NumCPU()
}

// Comms renders "get comms": "id: template" per live handle, newline
// joined, or "no jobs available" if the registry is empty.
func Comms(r *Registry) string {
	snap := r.Snapshot()
	if len(snap) == 0 {
		return "no jobs available"
	}
	var b strings.Builder
	for i, s := range snap {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.FormatUint(uint64(s.Handle), 10))
		b.WriteString(": ")
		b.WriteString(s.Template)
	}
	return b.String()
}
