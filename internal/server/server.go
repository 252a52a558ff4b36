// Package server implements the concurr wire-protocol listener: a TCP+TLS
// accept loop dispatching each connection's requests against the shared Job
// Registry.
package server

import (
	"bufio"
	"crypto/tls"
	"net"
	"runtime"
	"strconv"
	"time"

	"github.com/concurr/concurr/internal/outcome"
	"github.com/concurr/concurr/internal/protocol"
	"github.com/concurr/concurr/internal/queue"
	"github.com/concurr/concurr/internal/registry"
	"github.com/concurr/concurr/internal/slotworker"
	"github.com/concurr/concurr/internal/template"
	"github.com/concurr/concurr/pkg/logging"
)

// PollInterval is the sleep between Outcome Map polls inside the inp handler.
const PollInterval = outcome.DefaultPollInterval

// Server owns the shared Job Registry and the listening socket.
type Server struct {
	Registry *registry.Registry
	Logger   logging.Logger
}

// New creates a Server with an empty registry.
func New(logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Server{Registry: registry.New(), Logger: logger}
}

// ListenAndServe accepts TLS connections on addr and serves them until
// Accept returns an error, which it then returns.
func (s *Server) ListenAndServe(addr string, tlsConfig *tls.Config) error {
	ln, err := tls.Listen("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer ln.Close()

	s.Logger.Info("listening", "addr", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	for {
		req, err := protocol.ReadRequest(r)
		if err != nil {
			s.Logger.Debug("closing connection", "remote", conn.RemoteAddr(), "error", err)
			return
		}
		resp := s.dispatch(req)
		if err := protocol.WriteResponse(w, resp); err != nil {
			s.Logger.Debug("write failed, closing connection", "remote", conn.RemoteAddr(), "error", err)
			return
		}
	}
}

func (s *Server) dispatch(req protocol.Request) protocol.Response {
	switch r := req.(type) {
	case protocol.ComRequest:
		return s.handleCom(r)
	case protocol.InpRequest:
		return s.handleInp(r)
	case protocol.GetRequest:
		return s.handleGet(r)
	case protocol.DelRequest:
		return s.handleDel(r)
	default:
		return protocol.InfoResponse{Line: "unrecognized request"}
	}
}

func (s *Server) handleCom(r protocol.ComRequest) protocol.Response {
	tpl := template.Parse(r.Template)
	cmd := s.Registry.Register(tpl, runtime.NumCPU())
	for slot := 0; slot < cmd.SlotCount; slot++ {
		go slotworker.Run(cmd, slot, s.Logger)
	}
	s.Logger.Info("registered command", "handle", cmd.Handle, "template", r.Template, "slots", cmd.SlotCount)
	return protocol.InfoResponse{Line: strconv.FormatUint(uint64(cmd.Handle), 10)}
}

func (s *Server) handleInp(r protocol.InpRequest) protocol.Response {
	cmd, ok := s.Registry.Get(r.Handle)
	if !ok {
		s.Logger.Warn("inp for unknown handle", "handle", r.Handle, "job_id", r.JobID)
		return protocol.InfoResponse{Line: "not found"}
	}

	cmd.Jobs.Push(queue.Item{JobID: r.JobID, Input: r.Input})
	o := cmd.Outcomes.Take(r.JobID, PollInterval)
	if o.Failed {
		return protocol.ErrorResponse{JobID: r.JobID, Message: r.Input}
	}
	return protocol.OutputResponse{JobID: r.JobID, Status: o.Status, Stdout: o.Stdout, Stderr: o.Stderr}
}

func (s *Server) handleGet(r protocol.GetRequest) protocol.Response {
	switch r.Query {
	case "cores":
		return protocol.InfoResponse{Line: strconv.Itoa(registry.Cores())}
	case "comms":
		return protocol.InfoResponse{Line: registry.Comms(s.Registry)}
	default:
		return protocol.InfoResponse{Line: "unrecognized query"}
	}
}

func (s *Server) handleDel(r protocol.DelRequest) protocol.Response {
	cmd, ok := s.Registry.Get(r.Handle)
	if !ok {
		return protocol.InfoResponse{Line: "not found"}
	}
	cmd.Kill()
	for !cmd.AllParked() {
		time.Sleep(PollInterval)
	}
	s.Registry.Free(r.Handle)
	s.Logger.Info("freed command", "handle", r.Handle)
	return protocol.InfoResponse{Line: "deleted job"}
}
