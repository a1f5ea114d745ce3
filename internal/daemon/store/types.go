// Package store holds the daemon's current view of the place lists.
package store

import "github.com/grovetools/places/pkg/places"

// UpdateType defines what kind of data changed.
type UpdateType string

const (
	// UpdateInitial is the full snapshot sent to a new stream client.
	UpdateInitial      UpdateType = "initial"
	UpdatePlaces       UpdateType = "places"
	UpdateConfigReload UpdateType = "config_reload"
)

// Update represents a change to the state.
type Update struct {
	Type UpdateType `json:"update_type"`
	// Event is the manager event that caused a places update, e.g. "devices-updated".
	Event string `json:"event,omitempty"`
	// Kind names the list that changed.
	Kind string `json:"kind,omitempty"`
	// Places is the refreshed list for Kind.
	Places []places.EntryView `json:"places,omitempty"`
	// Snapshot is set on initial updates.
	Snapshot *places.Snapshot `json:"snapshot,omitempty"`
	// ConfigFile is set on config reloads.
	ConfigFile string `json:"config_file,omitempty"`
}
