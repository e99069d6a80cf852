// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"io"
	"strings"
)

// CommandResult represents the result of executing a shell command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Invocation describes a single process launch.
type Invocation struct {
	Command string
	Args    []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is the full child environment in KEY=VALUE form.
	// Nil inherits the parent environment unchanged.
	Env []string
	// Stdout and Stderr receive live output in addition to the captured copy.
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the invocation as a shell-like command line.
func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Command
	}
	return i.Command + " " + strings.Join(i.Args, " ")
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
	Dir     string
	Env     []string
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
	Exec(ctx context.Context, inv Invocation) (CommandResult, error)
}
