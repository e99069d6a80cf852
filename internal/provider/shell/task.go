package shell

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/ports"
)

// PersistTask appends lines to a startup file unless they are already there.
// It exports no variables.
type PersistTask struct {
	fs    ports.FileSystem
	path  string
	lines []string
}

// NewPersistTask creates a PersistTask for path ("~" is expanded).
func NewPersistTask(fs ports.FileSystem, path string, lines []string) *PersistTask {
	return &PersistTask{
		fs:    fs,
		path:  path,
		lines: lines,
	}
}

// Name describes the task.
func (t *PersistTask) Name() string {
	return "persist environment to " + t.path
}

// Path returns the startup file path as configured.
func (t *PersistTask) Path() string {
	return t.path
}

// Lines returns the lines the task ensures.
func (t *PersistTask) Lines() []string {
	return t.lines
}

// Run ensures the lines are present in the startup file.
func (t *PersistTask) Run(_ context.Context, _ []string) (pipeline.Env, error) {
	path := ports.ExpandPath(t.path)

	var content string
	data, err := t.fs.ReadFile(path)
	switch {
	case err == nil:
		content = string(data)
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated, changed := EnsureLines(content, t.lines)
	if !changed {
		return nil, nil
	}

	mode := os.FileMode(0o644)
	if info, err := t.fs.GetFileInfo(path); err == nil {
		mode = info.Mode.Perm()
	}
	if err := t.fs.WriteFile(path, []byte(updated), mode); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil, nil
}

var _ pipeline.Task = (*PersistTask)(nil)
