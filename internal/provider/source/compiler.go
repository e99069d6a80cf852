package source

import (
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/felixgeelhaar/srcbuild/internal/provider/envscript"
	"golang.org/x/mod/semver"
)

// Options control how components are compiled into steps.
type Options struct {
	BuildDir string
	// Prefix is the GNUstep installation root. Defaults to DefaultPrefix.
	Prefix string
	// Jobs is the parallel make level. Defaults to the CPU count.
	Jobs int
	// Root skips sudo for install commands.
	Root bool
}

// Compiler turns components into pipeline steps.
type Compiler struct {
	runner ports.CommandRunner
	fs     ports.FileSystem
	opts   Options
}

// NewCompiler creates a Compiler. runner and fs back the reload task.
func NewCompiler(runner ports.CommandRunner, fs ports.FileSystem, opts Options) *Compiler {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	return &Compiler{runner: runner, fs: fs, opts: opts}
}

// Name returns the provider name.
func (c *Compiler) Name() string {
	return "source"
}

// Prefix returns the installation root.
func (c *Compiler) Prefix() string {
	return c.opts.Prefix
}

// EnvScript returns the path of the generated GNUstep.sh.
func (c *Compiler) EnvScript() string {
	return EnvScript(c.opts.Prefix)
}

// EnvScript returns where tools-make installs GNUstep.sh under prefix.
// An empty prefix means DefaultPrefix.
func EnvScript(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return filepath.Join(prefix, "System", "Library", "Makefiles", "GNUstep.sh")
}

// Compile returns a fetch step and a build step for each component, in order.
func (c *Compiler) Compile(components []Component) ([]pipeline.Step, error) {
	steps := make([]pipeline.Step, 0, 2*len(components))
	for _, comp := range components {
		if err := comp.Validate(); err != nil {
			return nil, err
		}
		steps = append(steps, c.fetchStep(comp), c.buildStep(comp))
	}
	return steps, nil
}

// fetchStep deletes any previous checkout and clones afresh.
func (c *Compiler) fetchStep(comp Component) pipeline.Step {
	return pipeline.Step{
		Name: "fetch " + comp.Name,
		Dir:  c.opts.BuildDir,
		Commands: []pipeline.Command{
			pipeline.Cmd("rm", "-rf", comp.Name),
			pipeline.Cmd("git", cloneArgs(comp)...),
		},
		Optional: comp.Optional,
	}
}

func cloneArgs(comp Component) []string {
	args := []string{"clone"}
	if comp.Ref != "" {
		if isReleaseTag(comp.Ref) {
			args = append(args, "--depth", "1")
		}
		args = append(args, "--branch", comp.Ref)
	}
	if comp.Recursive {
		args = append(args, "--recurse-submodules")
	}
	return append(args, comp.Repo, comp.Name)
}

// isReleaseTag reports whether ref is a semver tag such as v2.2.1. Only
// immutable tags are cloned shallow.
func isReleaseTag(ref string) bool {
	return semver.IsValid(ref) && semver.Prerelease(ref) == "" && semver.Build(ref) == ""
}

func (c *Compiler) buildStep(comp Component) pipeline.Step {
	env := Toolchain().Merge(comp.Env)
	jobs := "-j" + strconv.Itoa(c.opts.Jobs)

	var cmds []pipeline.Command
	switch comp.System {
	case SystemCMake:
		configure := append([]string{"-S", ".", "-B", "_build"}, comp.ConfigureArgs...)
		cmds = []pipeline.Command{
			pipeline.Cmd("cmake", configure...),
			pipeline.Cmd("cmake", "--build", "_build", jobs),
			c.privileged("cmake", "--install", "_build"),
		}
	case SystemAutotools:
		configure := comp.ConfigureArgs
		if comp.ReloadEnv {
			configure = append([]string{"--prefix=" + c.Prefix()}, configure...)
		}
		cmds = []pipeline.Command{
			pipeline.Cmd("./configure", configure...),
			pipeline.Cmd("make", jobs),
			c.privileged("make", "install"),
		}
	case SystemGNUstepMake:
		cmds = []pipeline.Command{
			pipeline.Cmd("make", jobs),
			c.privileged("make", "install"),
		}
	}
	if comp.Ldconfig {
		cmds = append(cmds, c.privileged("ldconfig"))
	}

	step := pipeline.Step{
		Name:     "build " + comp.Name,
		Dir:      filepath.Join(c.opts.BuildDir, comp.Name),
		Commands: cmds,
		Env:      env,
		Optional: comp.Optional,
	}
	if comp.ReloadEnv {
		step.Tasks = []pipeline.Task{envscript.NewReloader(c.runner, c.fs, step.Name, c.EnvScript())}
	}
	return step
}

// privileged runs through sudo -E so the exported build variables survive.
func (c *Compiler) privileged(program string, args ...string) pipeline.Command {
	if c.opts.Root {
		return pipeline.Cmd(program, args...)
	}
	return pipeline.Cmd("sudo", append([]string{"-E", program}, args...)...)
}
