package command

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records a single FakeRunner invocation.
type Call struct {
	Name string
	Args []string
	Env  []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeRunner is a scripted Runner for tests. Responses are keyed by the
// command line ("gio open file:///tmp") or by program name alone.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string][]fakeResponse
	missing   map[string]bool
	calls     []Call
}

type fakeResponse struct {
	result Result
	err    error
}

// NewFakeRunner returns an empty FakeRunner. Unscripted commands succeed
// with no output.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		responses: make(map[string][]fakeResponse),
		missing:   make(map[string]bool),
	}
}

// On queues a response for key. Multiple responses for the same key are
// returned in order; the last one repeats.
func (f *FakeRunner) On(key string, result Result, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key] = append(f.responses[key], fakeResponse{result: result, err: err})
	return f
}

// Fail queues a failing response with the given stderr text.
func (f *FakeRunner) Fail(key, stderr string) *FakeRunner {
	return f.On(key, Result{Stderr: []byte(stderr), ExitCode: 1}, fmt.Errorf("exit status 1"))
}

// Missing marks a program as not installed.
func (f *FakeRunner) Missing(name string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
	return f
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, name string, args []string, env []string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Name: name, Args: append([]string(nil), args...), Env: append([]string(nil), env...)}
	f.calls = append(f.calls, call)

	if f.missing[name] {
		return Result{ExitCode: -1}, fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	for _, key := range []string{call.String(), name} {
		queue := f.responses[key]
		if len(queue) == 0 {
			continue
		}
		resp := queue[0]
		if len(queue) > 1 {
			f.responses[key] = queue[1:]
		}
		return resp.result, resp.err
	}
	return Result{}, nil
}

// Available implements Runner.
func (f *FakeRunner) Available(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.missing[name]
}

// Calls returns the invocations made so far.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
