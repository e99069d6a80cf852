package pipeline

import (
	"strings"
	"time"
)

// ExecutionResult captures the outcome of a single step. It is created when
// the step starts and finalized when its last command or task finishes or
// fails.
type ExecutionResult struct {
	stepName string
	exitCode int
	commands int
	stdout   strings.Builder
	stderr   strings.Builder
	started  time.Time
	duration time.Duration
	err      error
}

func newExecutionResult(step string, started time.Time) *ExecutionResult {
	return &ExecutionResult{stepName: step, started: started}
}

// StepName returns the name of the step.
func (r *ExecutionResult) StepName() string {
	return r.stepName
}

// ExitCode returns the exit status of the last command that ran.
func (r *ExecutionResult) ExitCode() int {
	return r.exitCode
}

// CommandsRun returns how many commands were started.
func (r *ExecutionResult) CommandsRun() int {
	return r.commands
}

// Stdout returns the captured standard output of all commands.
func (r *ExecutionResult) Stdout() string {
	return r.stdout.String()
}

// Stderr returns the captured standard error of all commands.
func (r *ExecutionResult) Stderr() string {
	return r.stderr.String()
}

// StartedAt returns when the step started.
func (r *ExecutionResult) StartedAt() time.Time {
	return r.started
}

// Duration returns how long the step took.
func (r *ExecutionResult) Duration() time.Duration {
	return r.duration
}

// Error returns the error that stopped the step, if any.
func (r *ExecutionResult) Error() error {
	return r.err
}

// Success returns true if every command and task of the step succeeded.
func (r *ExecutionResult) Success() bool {
	return r.err == nil && r.exitCode == 0
}

func (r *ExecutionResult) record(exitCode int, stdout, stderr string) {
	r.commands++
	r.exitCode = exitCode
	r.stdout.WriteString(stdout)
	r.stderr.WriteString(stderr)
}

func (r *ExecutionResult) finish(now time.Time, err error) {
	r.duration = now.Sub(r.started)
	r.err = err
}

// RunResult is the outcome of a whole pipeline run.
type RunResult struct {
	RunID   string
	State   State
	Results []*ExecutionResult
	// Env holds every variable exported by the steps that completed.
	Env Env
}

// Failed returns the result of the step that stopped the run, or nil.
func (r *RunResult) Failed() *ExecutionResult {
	for _, res := range r.Results {
		if !res.Success() {
			return res
		}
	}
	return nil
}
