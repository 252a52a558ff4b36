// Package connslot implements the client-side Connection Slot: one worker
// per (node, remote core), holding a long-lived TLS connection, popping
// inputs, and forwarding outcomes to the Outcome Map.
package connslot

import (
	"bufio"
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/concurr/concurr/internal/outcome"
	"github.com/concurr/concurr/internal/protocol"
	"github.com/concurr/concurr/internal/queue"
	"github.com/concurr/concurr/internal/retry"
	"github.com/concurr/concurr/pkg/logging"
)

// DialRetries is the number of TCP connect / TLS handshake attempts before
// giving up on a single dial (spec §4.7: "up to 3 times each with 1s
// backoff").
const DialRetries = 3

// DialBackoff is the fixed delay between dial retries.
const DialBackoff = time.Second

// Slot is one Connection Slot: one long-lived TLS stream servicing one
// command handle against one node.
type Slot struct {
	NodeAddr string
	Domain   string
	Handle   uint32

	TLSConfig *tls.Config
	Jobs      *queue.Queue
	Retry     *retry.Bookkeeping
	Outcomes  *outcome.Map
	Logger    logging.Logger

	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// dial opens (or reopens) the TLS stream, retrying the connect+handshake up
// to DialRetries times with DialBackoff between attempts.
func (s *Slot) dial() error {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	var lastErr error
	for attempt := 0; attempt < DialRetries; attempt++ {
		conn, err := tls.Dial("tcp", s.NodeAddr, s.TLSConfig)
		if err == nil {
			s.conn = conn
			s.r = bufio.NewReader(conn)
			s.w = bufio.NewWriter(conn)
			return nil
		}
		lastErr = err
		s.Logger.Warn("connection issue", "node", s.NodeAddr, "attempt", attempt+1, "error", err)
		time.Sleep(DialBackoff)
	}
	return lastErr
}

// Run services inputs for this Connection Slot until the Job Queue and
// retry deque are both permanently exhausted (signaled by stop being
// closed) and no more work remains.
func (s *Slot) Run(stop <-chan struct{}) error {
	if err := s.dial(); err != nil {
		return err
	}

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		entry, fromRetry := s.Retry.PopRequeue()
		var jobID uint64
		var input string
		var attempt int
		if fromRetry {
			jobID, input, attempt = entry.JobID, entry.Input, entry.Attempt
		} else {
			item, ok := s.Jobs.Pop()
			if !ok {
				time.Sleep(queue.PollInterval)
				continue
			}
			jobID, input, attempt = item.JobID, item.Input, 0
		}

		if err := s.process(jobID, input, attempt); err != nil {
			s.Logger.Warn("connection issue", "node", s.NodeAddr, "job_id", jobID, "error", err)
			if retrying := s.Retry.Requeue(jobID, input, attempt+1); !retrying {
				s.Logger.Warn("input permanently failed", "job_id", jobID)
			}
			time.Sleep(retry.Backoff)
			if dialErr := s.dial(); dialErr != nil {
				return dialErr
			}
		}
	}
}

func (s *Slot) process(jobID uint64, input string, attempt int) error {
	req := protocol.InpRequest{Handle: s.Handle, JobID: jobID, Input: input}
	if err := protocol.WriteRequest(s.w, req); err != nil {
		return err
	}
	resp, err := protocol.ReadOutputOrError(s.r)
	if err != nil {
		return err
	}

	switch r := resp.(type) {
	case protocol.OutputResponse:
		s.Outcomes.Insert(jobID, outcome.Outcome{Status: r.Status, Stdout: r.Stdout, Stderr: r.Stderr})
	case protocol.ErrorResponse:
		s.Outcomes.Insert(jobID, outcome.Outcome{Failed: true})
	}
	return nil
}

// Close releases the underlying TLS stream.
func (s *Slot) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Cores asks the node for its CPU count via a throwaway "get cores" request,
// used once per node at Dispatcher startup (spec §4.7 step 2).
func Cores(nodeAddr string, tlsConfig *tls.Config) (int, error) {
	conn, err := tls.Dial("tcp", nodeAddr, tlsConfig)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	if err := protocol.WriteRequest(w, protocol.GetRequest{Query: "cores"}); err != nil {
		return 0, err
	}
	info, err := protocol.ReadInfo(r)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(info.Line)
}
