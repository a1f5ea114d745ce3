package command

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProgram(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "gio", false},
		{"with dash", "xdg-open", false},
		{"empty", "", true},
		{"path", "/usr/bin/gio", true},
		{"shell", "gio;rm", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProgram(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "ValidateProgram(%q) = %v", tt.input, err)
		})
	}
}

func TestValidateURIArg(t *testing.T) {
	assert.NoError(t, ValidateURIArg("file:///home/u/My%20Docs"))
	assert.NoError(t, ValidateURIArg("/media/usb"))
	assert.Error(t, ValidateURIArg(""))
	assert.Error(t, ValidateURIArg("--help"))
	assert.Error(t, ValidateURIArg("file:///a\nb"))
}

// pathExecutor resolves programs only inside a fixed directory.
type pathExecutor struct {
	RealExecutor
	dir string
}

func (e *pathExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return e.RealExecutor.CommandContext(ctx, filepath.Join(e.dir, name), args...)
}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body+"\n"), 0755))
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hello", `echo "out $1"; echo "err $PLACES_TEST" >&2`)

	r := NewRunnerWithExecutor(&pathExecutor{dir: dir})
	res, err := r.Run(context.Background(), "hello", []string{"arg"}, []string{"PLACES_TEST=yes"})
	require.NoError(t, err)
	assert.Equal(t, "out arg\n", string(res.Stdout))
	assert.Equal(t, "err yes\n", string(res.Stderr))
	assert.Zero(t, res.ExitCode)
}

func TestExecRunnerReportsExitCode(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "fail", `echo "not mounted" >&2; exit 3`)

	r := NewRunnerWithExecutor(&pathExecutor{dir: dir})
	res, err := r.Run(context.Background(), "fail", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, string(res.Stderr), "not mounted")
}

func TestFakeRunnerScripting(t *testing.T) {
	f := NewFakeRunner().
		Fail("gio open file:///x", "Location is not mounted").
		On("gio", Result{Stdout: []byte("ok")}, nil).
		Missing("xdg-open")

	_, err := f.Run(context.Background(), "gio", []string{"open", "file:///x"}, nil)
	assert.Error(t, err)
	res, err := f.Run(context.Background(), "gio", []string{"mount", "file:///x"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "ok", string(res.Stdout))
	assert.False(t, f.Available("xdg-open"))
	assert.True(t, f.Available("gio"))
	assert.Len(t, f.Calls(), 2)
	assert.Equal(t, "gio mount file:///x", f.Calls()[1].String())
}
