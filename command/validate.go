package command

import (
	"fmt"
	"regexp"
	"strings"
)

var programName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.+-]*$`)

// ValidateProgram rejects program names that are empty or carry a path
// or shell syntax. Helpers are always resolved through PATH.
func ValidateProgram(name string) error {
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if !programName.MatchString(name) {
		return fmt.Errorf("invalid command name: %s", name)
	}
	return nil
}

// ValidateURIArg ensures a URI or path is safe to pass as a positional
// argument. Values starting with '-' would be read as options.
func ValidateURIArg(uri string) error {
	if uri == "" {
		return fmt.Errorf("uri cannot be empty")
	}
	if strings.HasPrefix(uri, "-") {
		return fmt.Errorf("uri cannot start with '-': %s", uri)
	}
	if strings.ContainsAny(uri, "\x00\n") {
		return fmt.Errorf("uri contains invalid characters")
	}
	return nil
}
