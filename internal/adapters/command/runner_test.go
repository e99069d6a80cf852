package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealRunner_Run_Success(t *testing.T) {
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "hello\n", result.Stdout)
}

func TestRealRunner_Run_Failure(t *testing.T) {
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "false")
	require.NoError(t, err, "non-zero exit is reported in the result")
	assert.False(t, result.Success())
	assert.NotZero(t, result.ExitCode)
}

func TestRealRunner_Run_NotFound(t *testing.T) {
	runner := NewRealRunner()

	_, err := runner.Run(context.Background(), "nonexistent-command-12345")
	assert.Error(t, err)
}

func TestRealRunner_Run_WithStderr(t *testing.T) {
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "sh", "-c", "echo error >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "error\n", result.Stderr)
}

func TestRealRunner_Exec_DirAndEnv(t *testing.T) {
	runner := NewRealRunner()
	dir := t.TempDir()

	result, err := runner.Exec(context.Background(), ports.Invocation{
		Command: "sh",
		Args:    []string{"-c", `pwd; echo "$RUNTIME_VERSION"`},
		Dir:     dir,
		Env:     append(os.Environ(), "RUNTIME_VERSION=gnustep-2.0"),
	})
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved+"\ngnustep-2.0\n", result.Stdout)
}

func TestRealRunner_Exec_TeesLiveOutput(t *testing.T) {
	runner := NewRealRunner()
	var live bytes.Buffer

	result, err := runner.Exec(context.Background(), ports.Invocation{
		Command: "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
		Stdout:  &live,
		Stderr:  &live,
	})
	require.NoError(t, err)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.Contains(t, live.String(), "out\n")
	assert.Contains(t, live.String(), "err\n")
}

func TestRealRunner_Run_ContextCancellation(t *testing.T) {
	runner := NewRealRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, "sleep", "10")
	assert.Error(t, err)
}
