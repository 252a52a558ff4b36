// Package dispatch implements the client main loop: it spins up Connection
// Slots for every (node, core) pair, feeds the Job Queue from the configured
// input source, and runs the Ordered Drain.
package dispatch

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/concurr/concurr/internal/connslot"
	"github.com/concurr/concurr/internal/outcome"
	"github.com/concurr/concurr/internal/protocol"
	"github.com/concurr/concurr/internal/queue"
	"github.com/concurr/concurr/internal/registry"
	"github.com/concurr/concurr/internal/retry"
	"github.com/concurr/concurr/internal/slotworker"
	"github.com/concurr/concurr/internal/template"
	"github.com/concurr/concurr/pkg/logging"
)

// Node is one configured remote worker.
type Node struct {
	Address string
	Domain  string
}

// Dispatcher owns the shared Job Queue/Retry/Outcome state and the set of
// Connection Slots feeding from it.
type Dispatcher struct {
	Logger logging.Logger

	Jobs     *queue.Queue
	Retry    *retry.Bookkeeping
	Outcomes *outcome.Map

	slots []*connslot.Slot
}

// New creates a Dispatcher with fresh shared state.
func New(logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		Logger:   logger,
		Jobs:     queue.New(),
		Retry:    retry.New(),
		Outcomes: outcome.New(),
	}
}

// TLSConfigForDomain resolves the pinned TLS config for one node's domain.
type TLSConfigForDomain func(domain string) (*tls.Config, error)

// registerCommand sends "com <template>" over a throwaway connection and
// returns the handle the node assigned, matching the original design's
// single registration call per node (spec §4.7 step 2 analog for "com").
func registerCommand(nodeAddr string, tlsConfig *tls.Config, template string) (uint32, error) {
	conn, err := tls.Dial("tcp", nodeAddr, tlsConfig)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	if err := protocol.WriteRequest(w, protocol.ComRequest{Template: template}); err != nil {
		return 0, err
	}
	info, err := protocol.ReadInfo(r)
	if err != nil {
		return 0, err
	}
	var handle uint32
	if _, err := fmt.Sscanf(info.Line, "%d", &handle); err != nil {
		return 0, fmt.Errorf("malformed handle %q: %w", info.Line, err)
	}
	return handle, nil
}

// Register opens a connection to each node, learns its core count via
// "get cores", registers the command template, and creates one Connection
// Slot per remote core.
func (d *Dispatcher) Register(nodes []Node, tlsConfigFor TLSConfigForDomain, template string) error {
	for _, node := range nodes {
		tlsConfig, err := tlsConfigFor(node.Domain)
		if err != nil {
			return fmt.Errorf("tls material for %s: %w", node.Domain, err)
		}

		cores, err := connslot.Cores(node.Address, tlsConfig)
		if err != nil {
			return fmt.Errorf("get cores from %s: %w", node.Address, err)
		}
		d.Logger.Info("node cores discovered", "node", node.Address, "cores", cores)

		handle, err := registerCommand(node.Address, tlsConfig, template)
		if err != nil {
			return fmt.Errorf("register command on %s: %w", node.Address, err)
		}

		for core := 0; core < cores; core++ {
			d.slots = append(d.slots, &connslot.Slot{
				NodeAddr:  node.Address,
				Domain:    node.Domain,
				Handle:    handle,
				TLSConfig: tlsConfig,
				Jobs:      d.Jobs,
				Retry:     d.Retry,
				Outcomes:  d.Outcomes,
				Logger:    d.Logger,
			})
		}
	}
	return nil
}

// RegisterLocal spawns slots sized to the local CPU count, pulling from and
// reporting into this Dispatcher's shared Job Queue and Outcome Map exactly
// like a remote Connection Slot would — this is "localhost = true" in the
// client config: local execution is just another source of slots racing the
// same queue, not a separate code path.
func (d *Dispatcher) RegisterLocal(tpl string) int {
	cores := runtime.NumCPU()
	cmd := &registry.Command{
		Template:  template.Parse(tpl),
		Jobs:      d.Jobs,
		Outcomes:  d.Outcomes,
		SlotCount: cores,
	}
	for slot := 0; slot < cores; slot++ {
		go slotworker.Run(cmd, slot, d.Logger)
	}
	return cores
}

// Run starts every Connection Slot and blocks until all of them have
// returned, which they do once stop is closed or their own redial fails. It
// returns the first non-nil error any slot returned; a slot that fails does
// not stop the other slots, which keep running until stop is closed.
func (d *Dispatcher) Run(ctx context.Context, stop <-chan struct{}) error {
	g, _ := errgroup.WithContext(ctx)
	for _, slot := range d.slots {
		slot := slot
		g.Go(func() error {
			defer slot.Close()
			return slot.Run(stop)
		})
	}
	return g.Wait()
}

// Feed pushes every input line as a dense job_id starting at 0, returning
// the total count fed.
func Feed(jobs *queue.Queue, inputs []string) uint64 {
	var jobID uint64
	for _, input := range inputs {
		jobs.Push(queue.Item{JobID: jobID, Input: input})
		jobID++
	}
	return jobID
}

// Drain runs the Ordered Drain to completion, writing results to stdout and
// warnings to stderr.
func (d *Dispatcher) Drain(stdout, stderr io.Writer, total uint64) {
	NewDrain(d.Outcomes, d.Retry, stdout, stderr, total).Run()
}
