// Package source describes the upstream repositories that make up a GNUstep
// installation and compiles them into fetch and build steps.
package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/validation"
)

// System is the build system a component uses.
type System string

const (
	// SystemCMake configures with cmake into a _build directory.
	SystemCMake System = "cmake"
	// SystemAutotools runs ./configure, make and make install.
	SystemAutotools System = "autotools"
	// SystemGNUstepMake runs make and make install with the GNUstep makefiles.
	SystemGNUstepMake System = "gnustep-make"
)

// DefaultPrefix is where tools-make installs with the gnustep layout.
const DefaultPrefix = "/usr/GNUstep"

// Component is one upstream repository.
type Component struct {
	Name string
	Repo string
	// Ref is a branch or tag. Empty clones the default branch.
	Ref           string
	System        System
	ConfigureArgs []string
	Env           pipeline.Env
	// Recursive clones submodules too.
	Recursive bool
	// Optional components are the application builds.
	Optional bool
	// ReloadEnv marks the component that installs GNUstep.sh. It is
	// configured with the install prefix and the script is re-sourced after
	// install.
	ReloadEnv bool
	// Ldconfig refreshes the linker cache after install.
	Ldconfig bool
}

// Validate checks the fields that become command arguments.
func (c Component) Validate() error {
	if err := validation.ValidateCheckoutName(c.Name); err != nil {
		return fmt.Errorf("component %q: %w", c.Name, err)
	}
	if err := validation.ValidateGitRemoteURL(c.Repo); err != nil {
		return fmt.Errorf("component %q: %w", c.Name, err)
	}
	if err := validation.ValidateGitRef(c.Ref); err != nil {
		return fmt.Errorf("component %q: %w", c.Name, err)
	}
	switch c.System {
	case SystemCMake, SystemAutotools, SystemGNUstepMake:
	default:
		return fmt.Errorf("component %q: unknown build system %q", c.Name, c.System)
	}
	for k := range c.Env {
		if err := validation.ValidateEnvName(k); err != nil {
			return fmt.Errorf("component %q: %w", c.Name, err)
		}
	}
	return nil
}

// Toolchain returns the variables every build step exports. The runtime
// built here needs clang and the gnustep-2.0 ABI.
func Toolchain() pipeline.Env {
	return pipeline.Env{
		"CC":              "clang",
		"CXX":             "clang++",
		"CXXFLAGS":        "-std=c++11",
		"RUNTIME_VERSION": "gnustep-2.0",
		"LDFLAGS":         "-fuse-ld=lld",
		"PKG_CONFIG_PATH": "/usr/local/lib/pkgconfig:$PKG_CONFIG_PATH",
		"LD_LIBRARY_PATH": "/usr/local/lib:$LD_LIBRARY_PATH",
	}
}

// DefaultCatalog returns the components in build order.
func DefaultCatalog() []Component {
	return []Component{
		{
			Name:   "libdispatch",
			Repo:   "https://github.com/apple/swift-corelibs-libdispatch.git",
			System: SystemCMake,
			ConfigureArgs: []string{
				"-DCMAKE_BUILD_TYPE=Release",
				"-DCMAKE_C_COMPILER=clang",
				"-DCMAKE_CXX_COMPILER=clang++",
				"-DINSTALL_PRIVATE_HEADERS=YES",
			},
			Ldconfig: true,
		},
		{
			Name:   "libobjc2",
			Repo:   "https://github.com/gnustep/libobjc2.git",
			System: SystemCMake,
			ConfigureArgs: []string{
				"-DCMAKE_BUILD_TYPE=Release",
				"-DCMAKE_C_COMPILER=clang",
				"-DCMAKE_CXX_COMPILER=clang++",
				"-DTESTS=OFF",
			},
			Recursive: true,
			Ldconfig:  true,
		},
		{
			Name:   "tools-make",
			Repo:   "https://github.com/gnustep/tools-make.git",
			System: SystemAutotools,
			ConfigureArgs: []string{
				"--with-layout=gnustep",
				"--enable-native-objc-exceptions",
				"--enable-objc-arc",
				"--with-library-combo=ng-gnu-gnu",
			},
			ReloadEnv: true,
		},
		{
			Name:     "libs-base",
			Repo:     "https://github.com/gnustep/libs-base.git",
			System:   SystemAutotools,
			Ldconfig: true,
		},
		{
			Name:     "libs-gui",
			Repo:     "https://github.com/gnustep/libs-gui.git",
			System:   SystemAutotools,
			Ldconfig: true,
		},
		{
			Name:          "libs-back",
			Repo:          "https://github.com/gnustep/libs-back.git",
			System:        SystemAutotools,
			ConfigureArgs: []string{"--enable-graphics=cairo"},
			Ldconfig:      true,
		},
		{
			Name:     "apps-gorm",
			Repo:     "https://github.com/gnustep/apps-gorm.git",
			System:   SystemGNUstepMake,
			Optional: true,
		},
		{
			Name:     "apps-projectcenter",
			Repo:     "https://github.com/gnustep/apps-projectcenter.git",
			System:   SystemGNUstepMake,
			Optional: true,
		},
	}
}

// WithRefs returns a copy of components with refs pinned by name.
// Unknown names are an error.
func WithRefs(components []Component, refs map[string]string) ([]Component, error) {
	out := make([]Component, len(components))
	copy(out, components)

	index := make(map[string]int, len(out))
	for i, c := range out {
		index[c.Name] = i
	}

	var unknown []string
	for name, ref := range refs {
		i, ok := index[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out[i].Ref = ref
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown components: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
