// Package mocks provides test doubles for testing.
package mocks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/felixgeelhaar/srcbuild/internal/ports"
)

// CommandRunner is a thread-safe test double for ports.CommandRunner.
type CommandRunner struct {
	mu       sync.RWMutex
	results  map[string]ports.CommandResult
	errors   map[string]error
	hooks    map[string]func(ports.Invocation)
	fallback *ports.CommandResult
	calls    []ports.CommandCall
}

// NewCommandRunner creates a new CommandRunner mock.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		results: make(map[string]ports.CommandResult),
		errors:  make(map[string]error),
		hooks:   make(map[string]func(ports.Invocation)),
		calls:   make([]ports.CommandCall, 0),
	}
}

// AddResult registers an expected command and its result.
func (m *CommandRunner) AddResult(command string, args []string, result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddError registers an expected command that should return an error.
func (m *CommandRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// OnExec registers a side effect that runs when the command is invoked.
func (m *CommandRunner) OnExec(command string, args []string, fn func(ports.Invocation)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[buildKey(command, args)] = fn
}

// SetDefault makes unregistered commands return result instead of an error.
func (m *CommandRunner) SetDefault(result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &result
}

// Run executes a mock command.
func (m *CommandRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	return m.Exec(ctx, ports.Invocation{Command: command, Args: args})
}

// Exec records the invocation and returns the registered result.
func (m *CommandRunner) Exec(_ context.Context, inv ports.Invocation) (ports.CommandResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ports.CommandCall{
		Command: inv.Command,
		Args:    inv.Args,
		Dir:     inv.Dir,
		Env:     inv.Env,
	})
	m.mu.Unlock()

	m.mu.RLock()
	key := buildKey(inv.Command, inv.Args)
	hook := m.hooks[key]
	err, hasErr := m.errors[key]
	result, hasResult := m.results[key]
	fallback := m.fallback
	m.mu.RUnlock()

	if hook != nil {
		hook(inv)
	}
	if hasErr {
		return ports.CommandResult{}, err
	}
	if !hasResult {
		if fallback == nil {
			return ports.CommandResult{}, fmt.Errorf("no mock result for command: %s %v", inv.Command, inv.Args)
		}
		result = *fallback
	}

	writeLive(inv.Stdout, result.Stdout)
	writeLive(inv.Stderr, result.Stderr)
	return result, nil
}

// Calls returns all recorded command invocations.
func (m *CommandRunner) Calls() []ports.CommandCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]ports.CommandCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CommandLines returns recorded invocations rendered as "command arg...".
func (m *CommandRunner) CommandLines() []string {
	calls := m.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, strings.TrimSpace(c.Command+" "+strings.Join(c.Args, " ")))
	}
	return lines
}

// Reset clears all registered results, errors, and recorded calls.
func (m *CommandRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[string]ports.CommandResult)
	m.errors = make(map[string]error)
	m.hooks = make(map[string]func(ports.Invocation))
	m.fallback = nil
	m.calls = make([]ports.CommandCall, 0)
}

func writeLive(w io.Writer, s string) {
	if w == nil || s == "" {
		return
	}
	_, _ = io.WriteString(w, s)
}

// buildKey creates a unique key for a command and its arguments.
func buildKey(command string, args []string) string {
	return command + ":" + strings.Join(args, ":")
}

// Ensure CommandRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*CommandRunner)(nil)
