package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"
)

const (
	// DefaultTimeout bounds helpers such as gio, lsblk and notify-send.
	DefaultTimeout = 30 * time.Second

	// MaxTimeout is the largest timeout a Runner accepts.
	MaxTimeout = 5 * time.Minute
)

// Executor creates exec.Cmd instances. Tests swap it to point PATH at mock
// binaries without touching production code.
type Executor interface {
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
	LookPath(name string) (string, error)
}

// RealExecutor uses os/exec directly.
type RealExecutor struct{}

// CommandContext creates a standard context-aware exec.Cmd.
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// LookPath resolves name against PATH.
func (e *RealExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner runs external helper programs to completion.
type Runner interface {
	// Run executes name with args. env entries are appended to the current
	// environment. A non-zero exit is reported as an error alongside the
	// captured Result.
	Run(ctx context.Context, name string, args []string, env []string) (Result, error)

	// Available reports whether name can be found on PATH.
	Available(name string) bool
}

// ExecRunner is the production Runner.
type ExecRunner struct {
	executor Executor
	timeout  time.Duration
}

// NewRunner returns an ExecRunner using RealExecutor and DefaultTimeout.
func NewRunner() *ExecRunner {
	return NewRunnerWithExecutor(&RealExecutor{})
}

// NewRunnerWithExecutor returns an ExecRunner backed by executor.
func NewRunnerWithExecutor(executor Executor) *ExecRunner {
	return &ExecRunner{executor: executor, timeout: DefaultTimeout}
}

// WithTimeout sets the per-command timeout, capped at MaxTimeout.
func (r *ExecRunner) WithTimeout(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	r.timeout = timeout
	return r
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, env []string) (Result, error) {
	if err := ValidateProgram(name); err != nil {
		return Result{ExitCode: -1}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := r.executor.CommandContext(ctx, name, args...) //nolint:gosec // arguments are validated by callers
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
	}
	return res, err
}

// Available implements Runner.
func (r *ExecRunner) Available(name string) bool {
	_, err := r.executor.LookPath(name)
	return err == nil
}
