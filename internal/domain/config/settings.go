// Package config loads srcbuild settings from YAML or TOML files.
package config

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/felixgeelhaar/srcbuild/internal/validation"
)

// DefaultBuildDir is where sources are checked out.
const DefaultBuildDir = "~/gnustep-build"

// Settings are the user-tunable parameters of a run. The zero values of
// the booleans match the behaviour of a run with no settings file.
type Settings struct {
	PromptAfterSteps bool              `yaml:"prompt_after_steps" toml:"prompt_after_steps"`
	BuildApps        bool              `yaml:"build_apps" toml:"build_apps"`
	BuildDir         string            `yaml:"build_dir" toml:"build_dir"`
	Prefix           string            `yaml:"prefix" toml:"prefix"`
	Jobs             int               `yaml:"jobs" toml:"jobs"`
	RCFile           string            `yaml:"rc_file" toml:"rc_file"`
	SkipRCUpdate     bool              `yaml:"skip_rc_update" toml:"skip_rc_update"`
	ExtraPackages    []string          `yaml:"extra_packages" toml:"extra_packages"`
	Refs             map[string]string `yaml:"refs" toml:"refs"`
	OSRelease        string            `yaml:"os_release" toml:"os_release"`
}

// Defaults returns the settings used when no file is given.
func Defaults() Settings {
	return Settings{
		BuildDir: DefaultBuildDir,
	}
}

// Validate reports every invalid field at once.
func (s Settings) Validate() error {
	errs := NewErrorList()

	if err := validation.ValidatePath(s.BuildDir); err != nil {
		errs.AddValidation("build_dir", err.Error(), "Use an absolute path or one starting with ~/.")
	}
	if s.Prefix != "" {
		if err := validation.ValidatePath(s.Prefix); err != nil {
			errs.AddValidation("prefix", err.Error(), "Use an absolute path such as /usr/GNUstep.")
		}
	}
	if s.Jobs < 0 {
		errs.AddValidation("jobs", fmt.Sprintf("must not be negative, got %d", s.Jobs), "Use 0 for one job per CPU.")
	}
	if s.RCFile != "" {
		if err := validation.ValidatePath(s.RCFile); err != nil {
			errs.AddValidation("rc_file", err.Error(), "Point rc_file at your shell startup file, e.g. ~/.bashrc.")
		}
	}
	for _, pkg := range s.ExtraPackages {
		if err := validation.ValidatePackageName(pkgName(pkg)); err != nil {
			errs.AddValidation("extra_packages", err.Error(), "List plain apt package names, optionally as name=version.")
		}
	}
	for name, ref := range s.Refs {
		if err := validation.ValidateGitRef(ref); err != nil {
			errs.AddValidation("refs."+name, err.Error(), "Use a branch or tag name such as master or v2.2.1.")
		}
	}

	return errs.AsError()
}

// ResolvedBuildDir returns BuildDir with ~ expanded.
func (s Settings) ResolvedBuildDir() string {
	return ports.ExpandPath(s.BuildDir)
}

// PipelineConfig returns the driver configuration.
func (s Settings) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		PromptAfterSteps: s.PromptAfterSteps,
		BuildApps:        s.BuildApps,
		BuildDir:         s.ResolvedBuildDir(),
	}
}

func pkgName(spec string) string {
	name, _, _ := strings.Cut(spec, "=")
	return name
}
