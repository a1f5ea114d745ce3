// Package server provides the HTTP server for the places daemon.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/grovetools/places/internal/daemon/engine"
	"github.com/grovetools/places/internal/daemon/store"
	"github.com/grovetools/places/internal/metrics"
	"github.com/grovetools/places/pkg/places"
	"github.com/grovetools/places/version"
)

// Status is returned by /api/status.
type Status struct {
	PID           int       `json:"pid"`
	Version       string    `json:"version"`
	StartedAt     time.Time `json:"started_at"`
	BookmarksFile string    `json:"bookmarks_file,omitempty"`
	StreamClients int       `json:"stream_clients"`
}

// Server manages the daemon's HTTP server over a Unix socket.
type Server struct {
	logger  *logrus.Entry
	server  *http.Server
	engine  *engine.Engine
	metrics *metrics.Metrics
}

// New creates a new Server instance. metrics may be nil.
func New(eng *engine.Engine, m *metrics.Metrics, logger *logrus.Entry) *Server {
	return &Server{
		logger:  logger,
		engine:  eng,
		metrics: m,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("/api/status", s.instrument("/api/status", s.handleStatus))
	mux.Handle("/api/places", s.instrument("/api/places", s.handleGetPlaces))
	mux.Handle("/api/places/", s.instrument("/api/places/{kind}", s.handleGetPlaces))
	mux.Handle("/api/stream", s.instrument("/api/stream", s.handleStream))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

func (s *Server) instrument(path string, fn http.HandlerFunc) http.Handler {
	return s.metrics.Middleware(path, fn)
}

// ListenAndServe starts the daemon on the given unix socket path.
// It blocks until the server stops or fails.
func (s *Server) ListenAndServe(socketPath string) error {
	// Cleanup stale socket
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.server = &http.Server{
		Handler: h2c.NewHandler(s.Handler(), &http2.Server{}),
	}

	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	err = s.server.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, Status{
		PID:           os.Getpid(),
		Version:       version.GetInfo().Version,
		StartedAt:     s.engine.StartedAt(),
		BookmarksFile: s.engine.Manager().BookmarksFile(),
		StreamClients: s.engine.Store().Subscribers(),
	})
}

// handleGetPlaces serves the whole snapshot at /api/places, and a single
// list at /api/places/{kind}. "all" gives the combined view without network.
func (s *Server) handleGetPlaces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.engine.Store().Get()
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/places"), "/")
	switch name {
	case "":
		writeJSON(w, snap)
		return
	case "all":
		writeJSON(w, nonNil(snap.All()))
		return
	}

	kind, err := places.ParseKind(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, nonNil(snap.List(kind)))
}

func nonNil(views []places.EntryView) []places.EntryView {
	if views == nil {
		return []places.EntryView{}
	}
	return views
}

// handleStream provides Server-Sent Events (SSE) for real-time updates.
// Each manager event becomes one "data:" frame carrying the refreshed list.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	st := s.engine.Store()
	ch := st.Subscribe()
	defer st.Unsubscribe(ch)

	clientID := uuid.NewString()
	logger := s.logger.WithField("client", clientID)
	s.metrics.StreamConnected()
	defer s.metrics.StreamDisconnected()

	fmt.Fprintf(w, ": connected %s\n\n", clientID)
	flusher.Flush()
	logger.Debug("SSE client connected")

	snap := st.Get()
	if !send(w, flusher, store.Update{Type: store.UpdateInitial, Snapshot: &snap}) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			if !send(w, flusher, update) {
				logger.Debug("SSE write failed")
				return
			}
		}
	}
}

func send(w http.ResponseWriter, flusher http.Flusher, u store.Update) bool {
	data, err := json.Marshal(u)
	if err != nil {
		return false
	}
	// SSE format: "data: {json}\n\n"
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return false
	}
	flusher.Flush()
	return true
}
