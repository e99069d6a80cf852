// Package pipeline implements the sequential build pipeline driver: an ordered
// list of steps executed one after another, stopping at the first failure.
package pipeline

import (
	"context"
	"strings"
)

// Kind classifies a step for error reporting.
type Kind string

const (
	// KindBuild is a checkout, configure, compile, or install step.
	KindBuild Kind = "build"
	// KindPackages installs OS packages; its failures surface as PackageInstallError.
	KindPackages Kind = "packages"
)

// Command is a single external process invocation.
type Command struct {
	Program string
	Args    []string
}

// Cmd builds a Command from a program and its arguments.
func Cmd(program string, args ...string) Command {
	return Command{Program: program, Args: args}
}

// String renders the command as a shell-like line.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// Task is an in-process action that runs after a step's commands.
// It receives the step's full child environment and returns variables to
// export to every later step.
type Task interface {
	Name() string
	Run(ctx context.Context, environ []string) (Env, error)
}

// Step is one named unit of the pipeline.
type Step struct {
	Name string
	// Dir is the working directory for every command. It must exist.
	Dir      string
	Commands []Command
	// Env is exported before the commands run and stays visible to later
	// steps. Values are expanded against the running environment, so
	// "PATH": "/opt/bin:$PATH" extends rather than replaces.
	Env   Env
	Tasks []Task
	// Interactive forces a checkpoint after this step.
	Interactive bool
	// Optional steps belong to the application builds and run only when
	// Config.BuildApps is set.
	Optional bool
	Kind     Kind
}

// CommandLines returns the step's commands rendered for display.
func (s Step) CommandLines() []string {
	lines := make([]string, 0, len(s.Commands)+len(s.Tasks))
	for _, c := range s.Commands {
		lines = append(lines, c.String())
	}
	for _, t := range s.Tasks {
		lines = append(lines, t.Name())
	}
	return lines
}

func (s Step) kind() Kind {
	if s.Kind == "" {
		return KindBuild
	}
	return s.Kind
}
