// Package daemon provides a client for the places daemon (placesd).
// It implements a transparent fallback pattern: if the daemon is running, use
// its HTTP API; if not, build the place lists in-process.
package daemon

import (
	"context"
	"time"

	"github.com/grovetools/places/pkg/places"
)

// Client defines the interface for reading places.
// Both RemoteClient (HTTP) and LocalClient (in-process) implement it.
type Client interface {
	// GetPlaces returns all four lists.
	GetPlaces(ctx context.Context) (places.Snapshot, error)

	// GetPlace returns one list.
	GetPlace(ctx context.Context, kind places.Kind) ([]places.EntryView, error)

	// StreamPlaces subscribes to list changes. The channel is closed when
	// ctx is cancelled or the connection is lost. LocalClient returns an
	// error since streaming needs the daemon.
	StreamPlaces(ctx context.Context) (<-chan Update, error)

	// IsRunning returns true if the daemon is available and responding.
	IsRunning() bool

	// Close cleans up any resources used by the client.
	Close() error
}

// Update is one frame of the daemon's place stream.
type Update struct {
	// UpdateType is "initial", "places" or "config_reload".
	UpdateType string             `json:"update_type"`
	Event      string             `json:"event,omitempty"`
	Kind       string             `json:"kind,omitempty"`
	Places     []places.EntryView `json:"places,omitempty"`
	Snapshot   *places.Snapshot   `json:"snapshot,omitempty"`
	ConfigFile string             `json:"config_file,omitempty"`
}

// Status describes a running daemon.
type Status struct {
	PID           int       `json:"pid"`
	Version       string    `json:"version"`
	StartedAt     time.Time `json:"started_at"`
	BookmarksFile string    `json:"bookmarks_file,omitempty"`
	StreamClients int       `json:"stream_clients"`
}
