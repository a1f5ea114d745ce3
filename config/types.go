package config

import (
	"fmt"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/grovetools/places/logging"
)

// Config is the places configuration (places.yml / places.toml).
type Config struct {
	// UseSymbolicIcons selects monochrome icon variants for every place.
	UseSymbolicIcons bool `yaml:"use_symbolic_icons" toml:"use_symbolic_icons" mapstructure:"use_symbolic_icons" json:"use_symbolic_icons" jsonschema:"description=Use symbolic (monochrome) icon variants"`

	Bookmarks BookmarksConfig `yaml:"bookmarks" toml:"bookmarks" mapstructure:"bookmarks" json:"bookmarks" jsonschema:"description=Bookmarks file tracking"`
	Mounts    MountsConfig    `yaml:"mounts" toml:"mounts" mapstructure:"mounts" json:"mounts" jsonschema:"description=Drive and mount discovery"`
	Daemon    DaemonConfig    `yaml:"daemon" toml:"daemon" mapstructure:"daemon" json:"daemon" jsonschema:"description=Background daemon"`
	Logging   logging.Config  `yaml:"logging" toml:"logging" mapstructure:"logging" json:"logging" jsonschema:"description=Logging output"`
}

// BookmarksConfig configures the bookmarks list.
type BookmarksConfig struct {
	// Files overrides the bookmarks file candidates. The first existing one is used.
	Files []string `yaml:"files" toml:"files" mapstructure:"files" json:"files,omitempty" jsonschema:"description=Bookmarks files to try in order"`
	// Debounce coalesces bursts of file changes into one reload.
	Debounce Duration `yaml:"debounce" toml:"debounce" mapstructure:"debounce" json:"debounce" jsonschema:"description=Delay before reloading a changed bookmarks file"`
}

// MountsConfig configures the volume monitor.
type MountsConfig struct {
	PollInterval Duration `yaml:"poll_interval" toml:"poll_interval" mapstructure:"poll_interval" json:"poll_interval" jsonschema:"description=How often drives and mounts are rescanned"`
	// Ignore hides mount points matching these patterns.
	Ignore []string `yaml:"ignore" toml:"ignore" mapstructure:"ignore" json:"ignore,omitempty" jsonschema:"description=Mount point patterns to hide (e.g. /mnt/backup*)"`
	// MediaRoots are directories whose sub-mounts are listed.
	MediaRoots []string `yaml:"media_roots" toml:"media_roots" mapstructure:"media_roots" json:"media_roots,omitempty" jsonschema:"description=Directories whose mounts are shown as devices"`
}

// DaemonConfig configures placesd.
type DaemonConfig struct {
	// Socket overrides the unix socket path. Defaults to $XDG_RUNTIME_DIR/places/placesd.sock.
	Socket string `yaml:"socket" toml:"socket" mapstructure:"socket" json:"socket,omitempty" jsonschema:"description=Unix socket path of the daemon"`
}

// Duration is a time.Duration written as a Go duration string ("100ms").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// JSONSchema describes Duration as a duration string.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "string",
		Pattern:  `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Examples: []interface{}{"100ms", "2s"},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Bookmarks: BookmarksConfig{
			Debounce: Duration(100 * time.Millisecond),
		},
		Mounts: MountsConfig{
			PollInterval: Duration(2 * time.Second),
		},
	}
}
