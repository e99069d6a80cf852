// Package envscript re-reads a generated environment script so that later
// steps see the variables it defines.
package envscript

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/felixgeelhaar/srcbuild/internal/provider/commandutil"
)

// dumpScript sources $1 and prints the resulting environment NUL-separated.
const dumpScript = `. "$1" && env -0`

// shellVars are maintained by sh itself. Exporting them would pin later
// steps to the child shell's working directory.
var shellVars = []string{"PWD", "OLDPWD", "SHLVL", "_"}

// Reloader is a pipeline task that sources a POSIX shell script and returns
// the variables it added or changed.
type Reloader struct {
	runner ports.CommandRunner
	fs     ports.FileSystem
	step   string
	script string
}

// NewReloader creates a Reloader for script, reported under step on failure.
func NewReloader(runner ports.CommandRunner, fs ports.FileSystem, step, script string) *Reloader {
	return &Reloader{
		runner: runner,
		fs:     fs,
		step:   step,
		script: script,
	}
}

// Name describes the task.
func (r *Reloader) Name() string {
	return ". " + r.script
}

// Script returns the script path.
func (r *Reloader) Script() string {
	return r.script
}

// Run sources the script in a child shell started with environ.
func (r *Reloader) Run(ctx context.Context, environ []string) (pipeline.Env, error) {
	if !r.fs.Exists(r.script) {
		return nil, &pipeline.MissingArtifactError{Step: r.step, Path: r.script}
	}

	result, err := r.runner.Exec(ctx, ports.Invocation{
		Command: "sh",
		Args:    []string{"-c", dumpScript, "sh", r.script},
		Env:     environ,
	})
	if err != nil {
		if status, ok := commandutil.StartStatus(err); ok {
			if status == commandutil.StatusNotFound {
				return nil, fmt.Errorf("no POSIX shell available to source %s: %w", r.script, err)
			}
			return nil, fmt.Errorf("sh cannot be run (status %d) to source %s: %w", status, r.script, err)
		}
		return nil, fmt.Errorf("failed to source %s: %w", r.script, err)
	}
	if !result.Success() {
		return nil, fmt.Errorf("sourcing %s exited with status %d: %s", r.script, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	delta := pipeline.Delta(pipeline.FromEnviron(environ), ParseNulEnviron(result.Stdout))
	for _, name := range shellVars {
		delete(delta, name)
	}
	return delta, nil
}

// ParseNulEnviron parses the output of env -0. Values may contain newlines.
func ParseNulEnviron(out string) pipeline.Env {
	return pipeline.FromEnviron(strings.Split(strings.TrimSuffix(out, "\x00"), "\x00"))
}

var _ pipeline.Task = (*Reloader)(nil)
