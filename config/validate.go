package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/moby/patternmatcher"

	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/schema"
)

// MinPollInterval bounds how aggressively mounts may be rescanned.
const MinPollInterval = 100 * time.Millisecond

var (
	validatorOnce sync.Once
	validator     *schema.Validator
	validatorErr  error
)

func schemaValidator() (*schema.Validator, error) {
	validatorOnce.Do(func() {
		data, err := GenerateSchema()
		if err != nil {
			validatorErr = err
			return
		}
		validator, validatorErr = schema.NewValidator("places.schema.json", data)
	})
	return validator, validatorErr
}

// ValidateDocument checks a decoded config file against the schema.
func ValidateDocument(raw map[string]interface{}) error {
	v, err := schemaValidator()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build configuration schema")
	}
	if err := v.Validate(raw); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "configuration does not match schema")
	}
	return nil
}

// ValidateFile reads path and checks it against the schema and the value
// constraints.
func ValidateFile(path string) error {
	raw, err := ReadFile(path)
	if err != nil {
		return err
	}
	if err := ValidateDocument(raw); err != nil {
		return err
	}
	cfg := Default()
	if err := Decode(raw, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks value constraints the schema cannot express.
func (c *Config) Validate() error {
	if c.Bookmarks.Debounce < 0 {
		return errors.New(errors.ErrCodeConfigValidation, "bookmarks.debounce must not be negative").
			WithDetail("value", c.Bookmarks.Debounce.String())
	}
	if c.Mounts.PollInterval.Std() < MinPollInterval {
		return errors.New(errors.ErrCodeConfigValidation,
			fmt.Sprintf("mounts.poll_interval must be at least %s", MinPollInterval)).
			WithDetail("value", c.Mounts.PollInterval.String())
	}
	if len(c.Mounts.Ignore) > 0 {
		if _, err := patternmatcher.New(c.Mounts.Ignore); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid mounts.ignore pattern")
		}
	}
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return errors.New(errors.ErrCodeConfigValidation, "unknown logging.level "+c.Logging.Level)
	}
	switch c.Logging.Format.Preset {
	case "", "default", "simple", "json":
	default:
		return errors.New(errors.ErrCodeConfigValidation, "unknown logging.format.preset "+c.Logging.Format.Preset)
	}
	switch c.Logging.Format.StructuredToStderr {
	case "", "auto", "always", "never":
	default:
		return errors.New(errors.ErrCodeConfigValidation,
			"unknown logging.format.structured_to_stderr "+c.Logging.Format.StructuredToStderr)
	}
	return nil
}
