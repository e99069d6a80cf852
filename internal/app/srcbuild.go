// Package app assembles the build pipeline and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/srcbuild/internal/adapters/command"
	"github.com/felixgeelhaar/srcbuild/internal/adapters/filesystem"
	"github.com/felixgeelhaar/srcbuild/internal/adapters/logging"
	reportadapter "github.com/felixgeelhaar/srcbuild/internal/adapters/report"
	"github.com/felixgeelhaar/srcbuild/internal/domain/config"
	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/domain/platform"
	"github.com/felixgeelhaar/srcbuild/internal/domain/report"
	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/felixgeelhaar/srcbuild/internal/provider/apt"
	"github.com/felixgeelhaar/srcbuild/internal/provider/shell"
	"github.com/felixgeelhaar/srcbuild/internal/provider/source"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PersistStepName is the name of the step that updates the startup file.
const PersistStepName = "persist environment"

// Srcbuild is the main application orchestrator.
type Srcbuild struct {
	runner   ports.CommandRunner
	fs       ports.FileSystem
	platform *platform.Platform
	reports  report.Repository
	prompter pipeline.Prompter
	logger   ports.Logger
	environ  func() []string
	shell    string
	stream   io.Writer
	out      io.Writer
}

// Deps are the collaborators New wires by default.
type Deps struct {
	Runner   ports.CommandRunner
	FS       ports.FileSystem
	Platform *platform.Platform
	Reports  report.Repository
}

// New creates a Srcbuild backed by the real system.
func New(out io.Writer) *Srcbuild {
	return NewWithDeps(out, Deps{
		Runner:   command.NewRealRunner(),
		FS:       filesystem.NewRealFileSystem(),
		Platform: platform.Detect(),
		Reports:  reportadapter.NewYAMLRepository(),
	})
}

// NewWithDeps creates a Srcbuild with explicit collaborators.
func NewWithDeps(out io.Writer, deps Deps) *Srcbuild {
	return &Srcbuild{
		runner:   deps.Runner,
		fs:       deps.FS,
		platform: deps.Platform,
		reports:  deps.Reports,
		logger:   logging.NewNopLogger(),
		environ:  os.Environ,
		shell:    os.Getenv("SHELL"),
		stream:   out,
		out:      out,
	}
}

// WithPrompter sets the checkpoint prompter.
func (s *Srcbuild) WithPrompter(p pipeline.Prompter) *Srcbuild {
	s.prompter = p
	return s
}

// WithLogger sets the logger.
func (s *Srcbuild) WithLogger(l ports.Logger) *Srcbuild {
	s.logger = l
	return s
}

// log prefers a logger attached to ctx over the configured one.
func (s *Srcbuild) log(ctx context.Context) ports.Logger {
	return ports.LoggerFromContextOr(ctx, s.logger)
}

// WithEnviron sets the parent environment of every build command.
func (s *Srcbuild) WithEnviron(fn func() []string) *Srcbuild {
	s.environ = fn
	return s
}

// WithShell sets the login shell used to pick the startup file.
func (s *Srcbuild) WithShell(name string) *Srcbuild {
	s.shell = name
	return s
}

// WithStream sets where live command output goes. Nil disables streaming.
func (s *Srcbuild) WithStream(w io.Writer) *Srcbuild {
	s.stream = w
	return s
}

// Plan is an assembled, filtered list of steps ready to run.
type Plan struct {
	Settings  config.Settings
	Config    pipeline.Config
	Distro    platform.Distro
	Packages  []apt.Package
	Steps     []pipeline.Step
	Prefix    string
	EnvScript string
	RCFile    string
}

// Plan detects the distribution and compiles the steps for settings.
// An unsupported distribution fails here, before anything runs.
func (s *Srcbuild) Plan(ctx context.Context, settings config.Settings) (*Plan, error) {
	distro, err := s.detectDistro(settings.OSRelease)
	if err != nil {
		return nil, err
	}
	log := s.log(ctx)
	if s.platform != nil {
		log.Debug(ctx, "host detected", ports.F("arch", s.platform.Arch()), ports.F("environment", s.platform.Environment()))
	}
	log.Debug(ctx, "distribution detected", ports.F("distro", distro.ID), ports.F("version", distro.VersionID))

	cfg := settings.PipelineConfig()

	extra := make([]apt.Package, 0, len(settings.ExtraPackages))
	for _, spec := range settings.ExtraPackages {
		pkg, err := apt.ParsePackage(spec)
		if err != nil {
			return nil, fmt.Errorf("extra package %q: %w", spec, err)
		}
		extra = append(extra, pkg)
	}

	pkgs, err := apt.DependenciesFor(distro, cfg.BuildApps)
	if err != nil {
		return nil, err
	}
	aptStep, err := apt.NewProvider(s.runner, s.platform).Compile(distro, cfg.BuildApps, extra, cfg.BuildDir)
	if err != nil {
		return nil, fmt.Errorf("failed to compile dependency step: %w", err)
	}

	components, err := source.WithRefs(source.DefaultCatalog(), settings.Refs)
	if err != nil {
		return nil, fmt.Errorf("failed to apply refs: %w", err)
	}
	compiler := source.NewCompiler(s.runner, s.fs, source.Options{
		BuildDir: cfg.BuildDir,
		Prefix:   settings.Prefix,
		Jobs:     settings.Jobs,
		Root:     s.platform != nil && s.platform.IsRoot(),
	})
	buildSteps, err := compiler.Compile(components)
	if err != nil {
		return nil, fmt.Errorf("failed to compile build steps: %w", err)
	}

	plan := &Plan{
		Settings:  settings,
		Config:    cfg,
		Distro:    distro,
		Packages:  append(pkgs, extra...),
		Prefix:    compiler.Prefix(),
		EnvScript: compiler.EnvScript(),
	}

	steps := append([]pipeline.Step{aptStep}, buildSteps...)
	if !settings.SkipRCUpdate {
		plan.RCFile = s.rcFile(settings)
		lines, err := EnvLines(compiler.EnvScript())
		if err != nil {
			return nil, err
		}
		steps = append(steps, pipeline.Step{
			Name:  PersistStepName,
			Dir:   cfg.BuildDir,
			Tasks: []pipeline.Task{shell.NewPersistTask(s.fs, plan.RCFile, lines)},
		})
	}
	plan.Steps = pipeline.Select(steps, cfg)

	return plan, nil
}

// Run executes plan and records a run report, whatever the outcome.
func (s *Srcbuild) Run(ctx context.Context, plan *Plan) (*pipeline.RunResult, error) {
	if err := s.fs.MkdirAll(plan.Config.BuildDir, 0o755); err != nil {
		return nil, &pipeline.DirectoryError{Step: "prepare build directory", Dir: plan.Config.BuildDir, Err: err}
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(s.log(ctx)),
		pipeline.WithBaseEnviron(s.environ),
	}
	if s.prompter != nil {
		opts = append(opts, pipeline.WithPrompter(s.prompter))
	}
	if s.stream != nil {
		opts = append(opts, pipeline.WithOutput(s.stream))
	}
	driver := pipeline.NewDriver(s.runner, s.fs, opts...)

	res, runErr := driver.Run(ctx, plan.Steps, plan.Config)

	if s.reports != nil {
		rep := report.FromRun(res, runErr, report.Meta{
			Distro:   plan.Distro.String(),
			BuildDir: plan.Config.BuildDir,
			Planned:  len(plan.Steps),
		})
		// The report must not mask the run outcome.
		if err := s.reports.Save(ctx, report.Path(plan.Config.BuildDir), rep); err != nil {
			s.log(ctx).Warn(ctx, "failed to save run report", ports.Err(err))
		}
	}

	return res, runErr
}

// MissingPackages returns the planned packages that are not installed yet.
func (s *Srcbuild) MissingPackages(ctx context.Context, plan *Plan) ([]apt.Package, error) {
	return apt.NewProvider(s.runner, s.platform).MissingPackages(ctx, plan.Packages)
}

// LastReport loads the report of the last run in buildDir.
func (s *Srcbuild) LastReport(ctx context.Context, buildDir string) (*report.Report, error) {
	if s.reports == nil {
		return nil, report.ErrReportNotFound
	}
	return s.reports.Load(ctx, report.Path(ports.ExpandPath(buildDir)))
}

// PersistEnv writes the environment lines for settings to the startup file
// and returns the file path.
func (s *Srcbuild) PersistEnv(ctx context.Context, settings config.Settings) (string, error) {
	lines, err := EnvLines(source.EnvScript(settings.Prefix))
	if err != nil {
		return "", err
	}
	path := s.rcFile(settings)
	if _, err := shell.NewPersistTask(s.fs, path, lines).Run(ctx, nil); err != nil {
		return "", err
	}
	return path, nil
}

// EnvLines returns the startup file lines that reproduce the build
// environment in a login shell: the toolchain exports, then the GNUstep
// environment script.
func EnvLines(envScript string) ([]string, error) {
	toolchain := source.Toolchain()
	lines := make([]string, 0, len(toolchain)+1)
	for _, name := range toolchain.Keys() {
		line, err := shell.ExportLine(name, toolchain[name])
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	src, err := shell.SourceLine(envScript)
	if err != nil {
		return nil, fmt.Errorf("environment script %s: %w", envScript, err)
	}
	return append(lines, src), nil
}

func (s *Srcbuild) detectDistro(path string) (platform.Distro, error) {
	if s.platform != nil && !s.platform.IsLinux() {
		return platform.Distro{}, &pipeline.UnsupportedOSError{ID: string(s.platform.OS())}
	}
	distro, err := platform.ReadDistro(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return platform.Distro{}, &pipeline.UnsupportedOSError{}
		}
		return platform.Distro{}, err
	}
	if !distro.Supported() {
		return platform.Distro{}, &pipeline.UnsupportedOSError{ID: distro.ID}
	}
	return distro, nil
}

func (s *Srcbuild) rcFile(settings config.Settings) string {
	if settings.RCFile != "" {
		return settings.RCFile
	}
	return shell.StartupFile(s.shell)
}

// PrintPlan outputs a human-readable plan summary.
func (s *Srcbuild) PrintPlan(plan *Plan, missing []apt.Package) {
	s.printf("\nBuild Plan\n")
	s.printf("==========\n\n")
	s.printf("Distribution: %s\n", plan.Distro)
	if s.platform != nil {
		s.printf("Host:         %s\n", s.platform)
	}
	s.printf("Build dir:    %s\n", plan.Config.BuildDir)
	s.printf("Prefix:       %s\n", plan.Prefix)
	if plan.RCFile != "" {
		s.printf("Startup file: %s\n", plan.RCFile)
		if s.platform != nil && s.platform.IsDocker() {
			s.printf("              (inside the container, lost when it is removed)\n")
		}
	}
	if missing != nil {
		s.printf("Packages:     %d total, %d to install\n", len(plan.Packages), len(missing))
	}
	s.printf("\n")

	for i, step := range plan.Steps {
		s.printf("  %2d. %s\n", i+1, displayName(step.Name))
		for _, line := range step.CommandLines() {
			s.printf("        %s\n", line)
		}
	}

	s.printf("\nRun 'srcbuild run' to execute this plan.\n")
}

// PrintResults outputs the outcome of every planned step.
func (s *Srcbuild) PrintResults(plan *Plan, res *pipeline.RunResult) {
	s.printf("\nBuild Results\n")
	s.printf("=============\n\n")

	var succeeded, failed int
	for _, r := range res.Results {
		if r.Success() {
			succeeded++
			s.printf("  ✓ %s (%s)\n", displayName(r.StepName()), r.Duration().Round(time.Millisecond))
			continue
		}
		failed++
		s.printf("  ✗ %s: %v\n", displayName(r.StepName()), r.Error())
	}
	notRun := 0
	for _, step := range plan.Steps[len(res.Results):] {
		notRun++
		s.printf("  - %s (not run)\n", displayName(step.Name))
	}

	s.printf("\nSummary: %d succeeded, %d failed, %d not run\n", succeeded, failed, notRun)
	s.printf("State: %s\n", res.State)
	if f := res.Failed(); f != nil {
		s.printf("Stopped at: %s (exit status %d)\n", f.StepName(), f.ExitCode())
	}
}

// PrintReport outputs a saved run report.
func (s *Srcbuild) PrintReport(rep *report.Report) {
	s.printf("Run %s\n", rep.RunID)
	s.printf("  State:    %s\n", rep.State)
	s.printf("  Started:  %s\n", rep.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if rep.Distro != "" {
		s.printf("  Distro:   %s\n", rep.Distro)
	}
	s.printf("  Build dir: %s\n", rep.BuildDir)
	s.printf("  Steps:    %d of %d run\n", len(rep.Steps), rep.Planned)
	if last := rep.LastStep(); last != nil && !rep.Completed() {
		s.printf("  Stopped at: %s (exit %d)\n", displayName(last.Name), last.ExitCode)
	}
	if rep.Error != "" {
		s.printf("  Error:    [%s] %s\n", rep.ErrorCode, rep.Error)
	}
}

// printf is a helper that writes to the output writer, ignoring errors.
func (s *Srcbuild) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// displayName capitalizes the verb of a step name: "fetch libobjc2" becomes
// "Fetch libobjc2".
func displayName(name string) string {
	verb, rest, ok := strings.Cut(name, " ")
	verb = cases.Title(language.English).String(verb)
	if !ok {
		return verb
	}
	return verb + " " + rest
}
