package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/pkg/paths"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLACES"

// FileNames are the config file names looked up in the config directory.
var FileNames = []string{"places.yml", "places.yaml", "places.toml"}

// Loaded is a Config together with where it came from.
type Loaded struct {
	*Config
	// Sources lists the files applied, lowest precedence first.
	Sources []string
	// Raw is the merged file content before decoding, used for validation.
	Raw map[string]interface{}
}

// envOverrides are the settings that can be set from the environment.
// Pointer fields distinguish "unset" from the zero value.
type envOverrides struct {
	SymbolicIcons      *bool          `envconfig:"SYMBOLIC_ICONS"`
	BookmarkFiles      []string       `envconfig:"BOOKMARK_FILES"`
	BookmarksDebounce  *time.Duration `envconfig:"BOOKMARKS_DEBOUNCE"`
	MountsPollInterval *time.Duration `envconfig:"MOUNTS_POLL_INTERVAL"`
	DaemonSocket       string         `envconfig:"DAEMON_SOCKET"`
}

// DefaultPath returns the first existing config file in the config
// directory, or "" if there is none.
func DefaultPath() string {
	dir := paths.ConfigDir()
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load builds the effective configuration: defaults, then the file in the
// config directory, then explicitPath (which must exist if given), then
// PLACES_* environment variables.
func Load(explicitPath string) (*Loaded, error) {
	loaded := &Loaded{Config: Default(), Raw: map[string]interface{}{}}

	var files []string
	if p := DefaultPath(); p != "" {
		files = append(files, p)
	}
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, errors.ConfigNotFound(explicitPath)
		}
		if len(files) == 0 || !sameFile(files[0], explicitPath) {
			files = append(files, explicitPath)
		}
	}

	for _, p := range files {
		raw, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		mergeMaps(loaded.Raw, raw)
		loaded.Sources = append(loaded.Sources, p)
	}

	if err := Decode(loaded.Raw, loaded.Config); err != nil {
		return nil, err
	}
	if err := applyEnv(loaded.Config); err != nil {
		return nil, err
	}
	if err := loaded.Config.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// LoadBytes decodes a single document on top of the defaults. format is
// "yaml" or "toml".
func LoadBytes(data []byte, format string) (*Config, error) {
	raw, err := parse(data, format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse configuration")
	}
	cfg := Default()
	if err := Decode(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile parses a YAML or TOML file into a generic map.
func ReadFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}
	raw, err := parse(data, formatOf(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config file").
			WithDetail("path", path)
	}
	return raw, nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

func parse(data []byte, format string) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	if len(bytes.TrimSpace(data)) == 0 {
		return raw, nil
	}
	var err error
	if format == "toml" {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

// Decode applies raw onto cfg. Keys absent from raw keep cfg's values.
func Decode(raw map[string]interface{}, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		ErrorUnused:      true,
		WeaklyTypedInput: false,
		Result:           cfg,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid configuration")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid environment override")
	}
	if env.SymbolicIcons != nil {
		cfg.UseSymbolicIcons = *env.SymbolicIcons
	}
	if len(env.BookmarkFiles) > 0 {
		cfg.Bookmarks.Files = env.BookmarkFiles
	}
	if env.BookmarksDebounce != nil {
		cfg.Bookmarks.Debounce = Duration(*env.BookmarksDebounce)
	}
	if env.MountsPollInterval != nil {
		cfg.Mounts.PollInterval = Duration(*env.MountsPollInterval)
	}
	if env.DaemonSocket != "" {
		cfg.Daemon.Socket = env.DaemonSocket
	}
	return nil
}

// mergeMaps merges src into dst recursively. Scalars and lists in src
// replace those in dst.
func mergeMaps(dst, src map[string]interface{}) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]interface{})
		dstMap, dstIsMap := dst[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			mergeMaps(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// SocketPath returns the configured daemon socket or the default one.
func (c *Config) SocketPath() string {
	if c.Daemon.Socket != "" {
		return c.Daemon.Socket
	}
	return paths.SocketPath()
}
