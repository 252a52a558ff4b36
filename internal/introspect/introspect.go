// Package introspect exposes a read-only HTTP/WebSocket view of a running
// worker's Job Registry, bound to its own loopback port so it can be left
// on in production without sharing the wire-protocol listener.
package introspect

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/concurr/concurr/internal/registry"
	"github.com/concurr/concurr/pkg/logging"
)

// PushInterval is how often /ws/registry pushes a fresh snapshot.
const PushInterval = 2 * time.Second

// Server serves the registry snapshot surface.
type Server struct {
	Registry *registry.Registry
	Logger   logging.Logger

	upgrader websocket.Upgrader
}

// New builds an introspection Server over reg.
func New(reg *registry.Registry, logger logging.Logger) *Server {
	return &Server{
		Registry: reg,
		Logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Introspection is loopback-only by convention (internal/server's
			// ListenAndServe binds the wire port separately); same-origin
			// checks aren't meaningful for a local operator tool.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the mux.Router serving /registry and /ws/registry.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/registry", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/ws/registry", s.handleWatch).Methods(http.MethodGet)
	return r
}

// ListenAndServe starts the introspection HTTP server on addr. A caller
// passing port 0 disables introspection entirely and should not call this.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return http.Serve(ln, s.Router())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Registry.Snapshot()); err != nil {
		s.Logger.Error("encoding registry snapshot", "error", err)
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Error("upgrading registry watch connection", "error", err)
		return
	}
	defer conn.Close()

	// Registry watchers are read-only from the client's side; drain and
	// discard incoming frames on their own goroutine so a client-initiated
	// close (or a dead connection) is noticed without blocking the pusher.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(PushInterval)
	defer ticker.Stop()

	for {
		snap := s.Registry.Snapshot()
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
		select {
		case <-ticker.C:
			continue
		case <-closed:
			return
		}
	}
}
