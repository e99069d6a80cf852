package shell

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/felixgeelhaar/srcbuild/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rcPath = "/home/dev/.bashrc"

func TestPersistTask_CreatesFile(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	task := NewPersistTask(fs, rcPath, []string{sourceGNUstep})

	delta, err := task.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, delta)
	assert.Equal(t, sourceGNUstep+"\n", fs.Content(rcPath))
	assert.Equal(t, "persist environment to "+rcPath, task.Name())
	assert.Equal(t, rcPath, task.Path())
	assert.Equal(t, []string{sourceGNUstep}, task.Lines())
}

func TestPersistTask_RunTwice(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile(rcPath, "export EDITOR=vim\n")
	task := NewPersistTask(fs, rcPath, []string{sourceGNUstep})

	_, err := task.Run(context.Background(), nil)
	require.NoError(t, err)
	_, err = task.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "export EDITOR=vim\n"+sourceGNUstep+"\n", fs.Content(rcPath))
}

type failingFS struct {
	*mocks.FileSystem
	readErr  error
	writeErr error
}

func (f failingFS) ReadFile(path string) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.FileSystem.ReadFile(path)
}

func (f failingFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.FileSystem.WriteFile(path, data, perm)
}

var _ ports.FileSystem = failingFS{}

func TestPersistTask_Errors(t *testing.T) {
	t.Parallel()

	readFS := failingFS{FileSystem: mocks.NewFileSystem(), readErr: errors.New("permission denied")}
	_, err := NewPersistTask(readFS, rcPath, []string{sourceGNUstep}).Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")

	writeFS := failingFS{FileSystem: mocks.NewFileSystem(), writeErr: errors.New("read-only file system")}
	_, err = NewPersistTask(writeFS, rcPath, []string{sourceGNUstep}).Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write")
}
