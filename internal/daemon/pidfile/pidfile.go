// Package pidfile provides PID file management for the places daemon.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Acquire writes the current PID to the file.
// It returns an error if another instance is already running.
func Acquire(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create pid directory: %w", err)
	}

	if running, pid, err := IsRunning(path); err == nil && running && pid != os.Getpid() {
		return fmt.Errorf("daemon already running with PID %d", pid)
	}
	// Dead or unreadable: the file is stale.
	_ = os.Remove(path)

	pid := os.Getpid()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

// Release removes the PID file if it still belongs to this process.
func Release(path string) error {
	pid, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return os.Remove(path)
	}
	if pid != os.Getpid() {
		return nil
	}
	return os.Remove(path)
}

// Read returns the PID stored in the file.
func Read(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(content)))
}

// IsRunning checks if the daemon described by the pidfile is active.
func IsRunning(path string) (bool, int, error) {
	pid, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return isAlive(pid), pid, nil
}

// Terminate sends SIGTERM to the daemon named in the pidfile. It returns the
// PID signalled, or 0 if no daemon was running.
func Terminate(path string) (int, error) {
	running, pid, err := IsRunning(path)
	if err != nil || !running {
		return 0, err
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0, fmt.Errorf("failed to find daemon process %d: %w", pid, err)
	}
	if err := p.Terminate(); err != nil {
		return 0, fmt.Errorf("failed to stop daemon process %d: %w", pid, err)
	}
	return pid, nil
}

func isAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	exists, err := process.PidExists(int32(pid))
	return err == nil && exists
}
