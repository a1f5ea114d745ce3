package logging

// Config defines the structure for logging configuration in places.yml.
type Config struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the PLACES_LOG_LEVEL environment variable.
	Level string `yaml:"level" toml:"level" mapstructure:"level" json:"level,omitempty" jsonschema:"enum=,enum=trace,enum=debug,enum=info,enum=warn,enum=warning,enum=error"`

	// ReportCaller, if true, includes the file, line, and function name in the log output.
	// Can be enabled with the PLACES_LOG_CALLER=true environment variable.
	ReportCaller bool `yaml:"report_caller" toml:"report_caller" mapstructure:"report_caller" json:"report_caller,omitempty"`

	// File configures logging to a file.
	File FileSinkConfig `yaml:"file" toml:"file" mapstructure:"file" json:"file"`

	// Format configures the appearance of the log output.
	Format FormatConfig `yaml:"format" toml:"format" mapstructure:"format" json:"format"`
}

// FileSinkConfig configures the file logging sink.
type FileSinkConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled" mapstructure:"enabled" json:"enabled,omitempty"`
	// Path is the full path to the log file. Defaults to <state dir>/places.log.
	Path string `yaml:"path" toml:"path" mapstructure:"path" json:"path,omitempty"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset can be "default" (rich text), "simple" (minimal text), or "json".
	Preset string `yaml:"preset" toml:"preset" mapstructure:"preset" json:"preset,omitempty" jsonschema:"enum=,enum=default,enum=simple,enum=json"`
	// DisableTimestamp disables the timestamp from the "default" and "simple" formats.
	DisableTimestamp bool `yaml:"disable_timestamp" toml:"disable_timestamp" mapstructure:"disable_timestamp" json:"disable_timestamp,omitempty"`
	// DisableComponent disables the component name from the "default" and "simple" formats.
	DisableComponent bool `yaml:"disable_component" toml:"disable_component" mapstructure:"disable_component" json:"disable_component,omitempty"`
	// StructuredToStderr controls when structured logs are sent to stderr.
	// Can be "auto" (default), "always", or "never".
	StructuredToStderr string `yaml:"structured_to_stderr" toml:"structured_to_stderr" mapstructure:"structured_to_stderr" json:"structured_to_stderr,omitempty" jsonschema:"enum=,enum=auto,enum=always,enum=never"`
}
