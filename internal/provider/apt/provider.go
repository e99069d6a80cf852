package apt

import (
	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/domain/platform"
	"github.com/felixgeelhaar/srcbuild/internal/ports"
)

// StepName is the name of the dependency installation step.
const StepName = "install dependencies"

// Provider compiles the dependency set into a pipeline step.
type Provider struct {
	runner   ports.CommandRunner
	platform *platform.Platform
}

// NewProvider creates a new apt Provider.
func NewProvider(runner ports.CommandRunner, p *platform.Platform) *Provider {
	return &Provider{runner: runner, platform: p}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "apt"
}

// Compile returns the single package step for distro. extra packages are
// appended after the built-in set. dir is the step working directory.
func (p *Provider) Compile(distro platform.Distro, buildApps bool, extra []Package, dir string) (pipeline.Step, error) {
	pkgs, err := DependenciesFor(distro, buildApps)
	if err != nil {
		return pipeline.Step{}, err
	}
	pkgs = append(pkgs, extra...)

	install := []string{"apt-get", "install", "-y", "--no-install-recommends"}
	for _, pkg := range pkgs {
		if err := pkg.Validate(); err != nil {
			return pipeline.Step{}, err
		}
		install = append(install, pkg.FullName())
	}

	return pipeline.Step{
		Name: StepName,
		Dir:  dir,
		Kind: pipeline.KindPackages,
		Commands: []pipeline.Command{
			p.privileged("apt-get", "update"),
			p.privileged(install[0], install[1:]...),
		},
	}, nil
}

// privileged prefixes the command with sudo unless already root.
func (p *Provider) privileged(program string, args ...string) pipeline.Command {
	if p.platform != nil && p.platform.IsRoot() {
		return pipeline.Cmd(program, args...)
	}
	return pipeline.Cmd("sudo", append([]string{program}, args...)...)
}
