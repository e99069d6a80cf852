package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"
)

// exitNotFound is reported when a command cannot be started, matching the
// shell's status for an unknown command.
const exitNotFound = 127

// Checkpoint describes the pause between two steps.
type Checkpoint struct {
	Step  string
	Next  string
	Index int
	Total int
}

// Prompter asks the operator whether to continue after a step.
// Returning false or an error cancels the run.
type Prompter interface {
	Confirm(ctx context.Context, cp Checkpoint) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, cp Checkpoint) (bool, error)

// Confirm calls f.
func (f PrompterFunc) Confirm(ctx context.Context, cp Checkpoint) (bool, error) {
	return f(ctx, cp)
}

// Driver runs an ordered list of steps, one at a time.
type Driver struct {
	runner   ports.CommandRunner
	fs       ports.FileSystem
	prompter Prompter
	logger   ports.Logger
	output   io.Writer
	environ  func() []string
	newID    func() string
	now      func() time.Time

	mu     sync.RWMutex
	interp *statekit.Interpreter[machineContext]
}

// Option configures a Driver.
type Option func(*Driver)

// WithPrompter sets the checkpoint prompter.
func WithPrompter(p Prompter) Option {
	return func(d *Driver) {
		d.prompter = p
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithOutput streams command output to w while it is captured.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		d.output = w
	}
}

// WithBaseEnviron sets the parent environment source (default: os.Environ).
func WithBaseEnviron(fn func() []string) Option {
	return func(d *Driver) {
		d.environ = fn
	}
}

// WithRunIDGenerator overrides run ID generation.
func WithRunIDGenerator(fn func() string) Option {
	return func(d *Driver) {
		d.newID = fn
	}
}

// NewDriver creates a Driver.
func NewDriver(runner ports.CommandRunner, fs ports.FileSystem, opts ...Option) *Driver {
	d := &Driver{
		runner:  runner,
		fs:      fs,
		logger:  nopLogger{},
		environ: os.Environ,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the state of the current or last run.
func (d *Driver) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.interp == nil {
		return StateIdle
	}
	return State(d.interp.State().Value)
}

// Run executes steps strictly in order. The first failing command aborts the
// run; nothing after it executes and nothing before it is undone.
// The returned RunResult is never nil, even on error.
func (d *Driver) Run(ctx context.Context, steps []Step, cfg Config) (*RunResult, error) {
	result := &RunResult{
		RunID:   d.newID(),
		State:   StateIdle,
		Results: make([]*ExecutionResult, 0, len(steps)),
		Env:     Env{},
	}

	if d.prompter == nil && needsPrompter(steps, cfg) {
		return result, errors.New("checkpoints are enabled but no prompter is configured")
	}

	interp, err := buildRunMachine()
	if err != nil {
		return result, fmt.Errorf("failed to build state machine: %w", err)
	}
	d.mu.Lock()
	if d.interp != nil {
		d.interp.Stop()
	}
	d.interp = interp
	d.mu.Unlock()

	interp.Start()
	d.send(EventStart)

	log := d.logger.With(ports.F("run_id", result.RunID))
	log.Info(ctx, "pipeline started", ports.F("steps", len(steps)), ports.F("build_dir", cfg.BuildDir))

	base := FromEnviron(d.environ())
	env := Env{}

	for i, step := range steps {
		if ctx.Err() != nil {
			return d.cancel(ctx, log, result, env, ctx.Err())
		}

		log.Info(ctx, "step started", ports.F("step", step.Name), ports.F("index", i+1), ports.F("total", len(steps)))
		res, next, err := d.runStep(ctx, step, env, base)
		result.Results = append(result.Results, res)

		if err != nil {
			if ctx.Err() != nil {
				return d.cancel(ctx, log, result, env, ctx.Err())
			}
			result.Env = env
			result.State = d.send(EventFail)
			log.Error(ctx, "step failed", ports.F("step", step.Name), ports.F("duration", res.Duration()), ports.Err(err))
			return result, err
		}

		env = next
		log.Info(ctx, "step completed", ports.F("step", step.Name), ports.F("duration", res.Duration()))

		if i == len(steps)-1 || !cfg.checkpointAfter(step) {
			continue
		}

		d.send(EventAwait)
		ok, perr := d.prompter.Confirm(ctx, Checkpoint{
			Step:  step.Name,
			Next:  steps[i+1].Name,
			Index: i + 1,
			Total: len(steps),
		})
		if perr != nil || !ok {
			return d.cancel(ctx, log, result, env, perr)
		}
		d.send(EventConfirm)
	}

	result.Env = env
	result.State = d.send(EventComplete)
	log.Info(ctx, "pipeline completed", ports.F("steps", len(result.Results)))
	return result, nil
}

func (d *Driver) cancel(ctx context.Context, log ports.Logger, result *RunResult, env Env, cause error) (*RunResult, error) {
	result.Env = env
	result.State = d.send(EventCancel)
	log.Warn(ctx, "pipeline cancelled", ports.F("completed_steps", len(result.Results)), ports.Err(cause))
	if cause != nil {
		return result, fmt.Errorf("%w: %w", ErrCancelled, cause)
	}
	return result, ErrCancelled
}

func (d *Driver) send(event string) State {
	d.mu.RLock()
	interp := d.interp
	d.mu.RUnlock()
	interp.Send(statekit.Event{Type: statekit.EventType(event)})
	return State(interp.State().Value)
}

// runStep executes one step against env and returns the environment that
// later steps will see.
func (d *Driver) runStep(ctx context.Context, step Step, env, base Env) (*ExecutionResult, Env, error) {
	res := newExecutionResult(step.Name, d.now())
	fail := func(err error) (*ExecutionResult, Env, error) {
		res.finish(d.now(), err)
		return res, nil, err
	}

	if step.Dir == "" || !d.fs.IsDir(step.Dir) {
		return fail(&DirectoryError{Step: step.Name, Dir: step.Dir})
	}

	stepEnv := env.Export(step.Env, base)
	environ := stepEnv.Environ(d.environ())

	for _, c := range step.Commands {
		out, err := d.runner.Exec(ctx, ports.Invocation{
			Command: c.Program,
			Args:    c.Args,
			Dir:     step.Dir,
			Env:     environ,
			Stdout:  d.output,
			Stderr:  d.output,
		})
		if err != nil {
			if ctx.Err() != nil {
				res.record(out.ExitCode, out.Stdout, out.Stderr)
				return fail(ctx.Err())
			}
			res.record(exitNotFound, out.Stdout, out.Stderr)
			return fail(step.failure(c.String(), exitNotFound, err))
		}
		res.record(out.ExitCode, out.Stdout, out.Stderr)
		if !out.Success() {
			return fail(step.failure(c.String(), out.ExitCode, nil))
		}
	}

	for _, task := range step.Tasks {
		delta, err := task.Run(ctx, environ)
		if err != nil {
			var (
				artErr *MissingArtifactError
				dirErr *DirectoryError
			)
			if errors.As(err, &artErr) || errors.As(err, &dirErr) || ctx.Err() != nil {
				return fail(err)
			}
			return fail(step.failure(task.Name(), 1, err))
		}
		stepEnv = stepEnv.Merge(delta)
		environ = stepEnv.Environ(d.environ())
	}

	res.finish(d.now(), nil)
	return res, stepEnv, nil
}

func (s Step) failure(command string, exitCode int, cause error) error {
	err := &StepFailedError{Step: s.Name, Command: command, ExitCode: exitCode, Err: cause}
	if s.kind() == KindPackages {
		return &PackageInstallError{Err: err}
	}
	return err
}

func needsPrompter(steps []Step, cfg Config) bool {
	for i, s := range steps {
		if i < len(steps)-1 && cfg.checkpointAfter(s) {
			return true
		}
	}
	return false
}

// nopLogger keeps the driver usable without a logger.
type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...ports.Field) {}
func (nopLogger) Info(context.Context, string, ...ports.Field)  {}
func (nopLogger) Warn(context.Context, string, ...ports.Field)  {}
func (nopLogger) Error(context.Context, string, ...ports.Field) {}
func (n nopLogger) With(...ports.Field) ports.Logger            { return n }
func (nopLogger) Level() ports.Level                            { return ports.LevelError }
func (nopLogger) SetLevel(ports.Level)                          {}
