// Package report records the outcome of the last pipeline run so that a
// later invocation can show where it stopped.
package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
)

// Version is the current report format.
const Version = 1

// Repository errors.
var (
	ErrReportNotFound = errors.New("run report not found")
	ErrReportCorrupt  = errors.New("run report is corrupt")
	ErrSaveFailed     = errors.New("failed to save run report")
)

// Repository is the port for run report persistence.
type Repository interface {
	// Load returns ErrReportNotFound if nothing was saved at path.
	Load(ctx context.Context, path string) (*Report, error)
	Save(ctx context.Context, path string, r *Report) error
	Exists(ctx context.Context, path string) bool
}

// Path returns where the report of a run in buildDir is stored.
func Path(buildDir string) string {
	return filepath.Join(buildDir, ".srcbuild", "last-run.yaml")
}

// Report is the persisted summary of a run.
type Report struct {
	Version   int          `yaml:"version"`
	RunID     string       `yaml:"run_id"`
	State     string       `yaml:"state"`
	StartedAt time.Time    `yaml:"started_at"`
	Distro    string       `yaml:"distro,omitempty"`
	BuildDir  string       `yaml:"build_dir"`
	Planned   int          `yaml:"planned"`
	Error     string       `yaml:"error,omitempty"`
	ErrorCode string       `yaml:"error_code,omitempty"`
	Steps     []StepReport `yaml:"steps"`
}

// StepReport is the summary of one executed step.
type StepReport struct {
	Name     string        `yaml:"name"`
	ExitCode int           `yaml:"exit_code"`
	Duration time.Duration `yaml:"duration"`
	Commands int           `yaml:"commands"`
	Error    string        `yaml:"error,omitempty"`
}

// Meta carries the run details the driver does not know about.
type Meta struct {
	Distro   string
	BuildDir string
	Planned  int
}

// FromRun builds a report from a finished run. runErr is the error returned
// by the driver; it may be nil.
func FromRun(res *pipeline.RunResult, runErr error, meta Meta) *Report {
	r := &Report{
		Version:  Version,
		RunID:    res.RunID,
		State:    string(res.State),
		Distro:   meta.Distro,
		BuildDir: meta.BuildDir,
		Planned:  meta.Planned,
		Steps:    make([]StepReport, 0, len(res.Results)),
	}
	if runErr != nil {
		r.Error = runErr.Error()
		r.ErrorCode = pipeline.Code(runErr)
	}
	for i, step := range res.Results {
		if i == 0 {
			r.StartedAt = step.StartedAt().UTC().Truncate(time.Second)
		}
		sr := StepReport{
			Name:     step.StepName(),
			ExitCode: step.ExitCode(),
			Duration: step.Duration().Round(time.Millisecond),
			Commands: step.CommandsRun(),
		}
		if err := step.Error(); err != nil {
			sr.Error = err.Error()
		}
		r.Steps = append(r.Steps, sr)
	}
	return r
}

// Validate checks a loaded report.
func (r *Report) Validate() error {
	if r.Version != Version {
		return fmt.Errorf("unsupported report version %d", r.Version)
	}
	if r.RunID == "" {
		return errors.New("missing run_id")
	}
	if st := pipeline.State(r.State); !st.Terminal() && st != pipeline.StateIdle {
		return fmt.Errorf("unknown state %q", r.State)
	}
	return nil
}

// LastStep returns the last step that ran, or nil.
func (r *Report) LastStep() *StepReport {
	if len(r.Steps) == 0 {
		return nil
	}
	return &r.Steps[len(r.Steps)-1]
}

// Completed reports whether every planned step succeeded.
func (r *Report) Completed() bool {
	return pipeline.State(r.State) == pipeline.StateCompleted
}
