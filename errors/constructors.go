package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *Error {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// NotFound reports a location that does not exist or cannot be queried.
func NotFound(location string, cause error) *Error {
	return Wrap(cause, ErrCodeNotFound, fmt.Sprintf("location not found: %s", location)).
		WithDetail("location", location)
}

// NotSupported reports a query the location's backend cannot answer.
func NotSupported(location, operation string) *Error {
	return New(ErrCodeNotSupported, fmt.Sprintf("%s not supported for %s", operation, location)).
		WithDetail("location", location).
		WithDetail("operation", operation)
}

// NotMounted reports a launch target whose enclosing volume is not mounted.
func NotMounted(uri string) *Error {
	return New(ErrCodeNotMounted, fmt.Sprintf("location is not mounted: %s", uri)).
		WithDetail("uri", uri)
}

// LaunchFailed wraps a default-handler failure.
func LaunchFailed(uri string, err error) *Error {
	return Wrap(err, ErrCodeLaunchFailed, fmt.Sprintf("failed to open %s", uri)).
		WithDetail("uri", uri)
}

// MountFailed wraps a failure to mount the volume enclosing uri.
func MountFailed(uri string, err error) *Error {
	return Wrap(err, ErrCodeMountFailed, fmt.Sprintf("failed to mount %s", uri)).
		WithDetail("uri", uri)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *Error {
	placesErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		placesErr = placesErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return placesErr
}

// DaemonNotRunning reports that no daemon answers on socketPath.
func DaemonNotRunning(socketPath string) *Error {
	return New(ErrCodeDaemonNotRunning, "places daemon is not running").
		WithDetail("socket", socketPath)
}
