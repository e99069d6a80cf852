package source_test

import (
	"testing"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/provider/envscript"
	"github.com/felixgeelhaar/srcbuild/internal/provider/source"
	"github.com/felixgeelhaar/srcbuild/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buildDir = "/home/dev/gnustep-build"

func newCompiler(root bool) *source.Compiler {
	return source.NewCompiler(mocks.NewCommandRunner(), mocks.NewFileSystem(), source.Options{
		BuildDir: buildDir,
		Jobs:     4,
		Root:     root,
	})
}

func TestCompiler_Compile_DefaultCatalog(t *testing.T) {
	t.Parallel()

	c := newCompiler(false)
	steps, err := c.Compile(source.DefaultCatalog())
	require.NoError(t, err)

	var names []string
	for _, s := range steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"fetch libdispatch", "build libdispatch",
		"fetch libobjc2", "build libobjc2",
		"fetch tools-make", "build tools-make",
		"fetch libs-base", "build libs-base",
		"fetch libs-gui", "build libs-gui",
		"fetch libs-back", "build libs-back",
		"fetch apps-gorm", "build apps-gorm",
		"fetch apps-projectcenter", "build apps-projectcenter",
	}, names)

	selected := pipeline.Select(steps, pipeline.Config{})
	assert.Len(t, selected, 12)
}

func TestCompiler_FetchStep(t *testing.T) {
	t.Parallel()

	c := newCompiler(false)
	steps, err := c.Compile([]source.Component{{
		Name:      "libobjc2",
		Repo:      "https://github.com/gnustep/libobjc2.git",
		System:    source.SystemCMake,
		Recursive: true,
	}})
	require.NoError(t, err)
	require.Len(t, steps, 2)

	fetch := steps[0]
	assert.Equal(t, buildDir, fetch.Dir)
	assert.Equal(t, []string{
		"rm -rf libobjc2",
		"git clone --recurse-submodules https://github.com/gnustep/libobjc2.git libobjc2",
	}, fetch.CommandLines())
}

func TestCompiler_CloneRefs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"default branch", "", "git clone https://github.com/gnustep/libs-base.git libs-base"},
		{"release tag is shallow", "v1.30.0", "git clone --depth 1 --branch v1.30.0 https://github.com/gnustep/libs-base.git libs-base"},
		{"prerelease is full", "v1.30.0-rc1", "git clone --branch v1.30.0-rc1 https://github.com/gnustep/libs-base.git libs-base"},
		{"project tag is full", "base-1_30_0", "git clone --branch base-1_30_0 https://github.com/gnustep/libs-base.git libs-base"},
		{"branch is full", "master", "git clone --branch master https://github.com/gnustep/libs-base.git libs-base"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			steps, err := newCompiler(false).Compile([]source.Component{{
				Name:   "libs-base",
				Repo:   "https://github.com/gnustep/libs-base.git",
				Ref:    tt.ref,
				System: source.SystemAutotools,
			}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, steps[0].Commands[1].String())
		})
	}
}

func TestCompiler_BuildSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		comp source.Component
		root bool
		want []string
	}{
		{
			name: "cmake",
			comp: source.Component{Name: "libdispatch", Repo: "https://github.com/apple/swift-corelibs-libdispatch.git", System: source.SystemCMake, ConfigureArgs: []string{"-DCMAKE_BUILD_TYPE=Release"}, Ldconfig: true},
			want: []string{
				"cmake -S . -B _build -DCMAKE_BUILD_TYPE=Release",
				"cmake --build _build -j4",
				"sudo -E cmake --install _build",
				"sudo -E ldconfig",
			},
		},
		{
			name: "autotools",
			comp: source.Component{Name: "libs-base", Repo: "https://github.com/gnustep/libs-base.git", System: source.SystemAutotools},
			want: []string{"./configure", "make -j4", "sudo -E make install"},
		},
		{
			name: "autotools as root",
			comp: source.Component{Name: "libs-back", Repo: "https://github.com/gnustep/libs-back.git", System: source.SystemAutotools, ConfigureArgs: []string{"--enable-graphics=cairo"}, Ldconfig: true},
			root: true,
			want: []string{"./configure --enable-graphics=cairo", "make -j4", "make install", "ldconfig"},
		},
		{
			name: "gnustep-make",
			comp: source.Component{Name: "apps-gorm", Repo: "https://github.com/gnustep/apps-gorm.git", System: source.SystemGNUstepMake, Optional: true},
			want: []string{"make -j4", "sudo -E make install"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			steps, err := newCompiler(tt.root).Compile([]source.Component{tt.comp})
			require.NoError(t, err)

			build := steps[1]
			assert.Equal(t, "build "+tt.comp.Name, build.Name)
			assert.Equal(t, buildDir+"/"+tt.comp.Name, build.Dir)
			assert.Equal(t, tt.want, build.CommandLines())
			assert.Equal(t, tt.comp.Optional, build.Optional)
			assert.Equal(t, tt.comp.Optional, steps[0].Optional)
			assert.Equal(t, "clang", build.Env["CC"])
			assert.Equal(t, "gnustep-2.0", build.Env["RUNTIME_VERSION"])
		})
	}
}

func TestCompiler_ReloadTask(t *testing.T) {
	t.Parallel()

	c := newCompiler(false)
	steps, err := c.Compile([]source.Component{{
		Name:      "tools-make",
		Repo:      "https://github.com/gnustep/tools-make.git",
		System:    source.SystemAutotools,
		ReloadEnv: true,
	}})
	require.NoError(t, err)

	build := steps[1]
	require.Len(t, build.Tasks, 1)
	reloader, ok := build.Tasks[0].(*envscript.Reloader)
	require.True(t, ok)
	assert.Equal(t, "/usr/GNUstep/System/Library/Makefiles/GNUstep.sh", reloader.Script())
	assert.Equal(t, c.EnvScript(), reloader.Script())
	assert.Equal(t, "./configure --prefix=/usr/GNUstep", build.CommandLines()[0])
}

func TestCompiler_CustomPrefixReachesToolsMake(t *testing.T) {
	t.Parallel()

	c := source.NewCompiler(mocks.NewCommandRunner(), mocks.NewFileSystem(), source.Options{
		BuildDir: buildDir,
		Prefix:   "/opt/gs",
		Jobs:     2,
	})
	steps, err := c.Compile(source.DefaultCatalog())
	require.NoError(t, err)

	var toolsMake, libsBase pipeline.Step
	for _, s := range steps {
		switch s.Name {
		case "build tools-make":
			toolsMake = s
		case "build libs-base":
			libsBase = s
		}
	}

	require.NotEmpty(t, toolsMake.Commands)
	configure := toolsMake.Commands[0]
	assert.Equal(t, "./configure", configure.Program)
	assert.Contains(t, configure.Args, "--prefix=/opt/gs")
	assert.Contains(t, configure.Args, "--with-layout=gnustep")

	require.Len(t, toolsMake.Tasks, 1)
	reloader := toolsMake.Tasks[0].(*envscript.Reloader)
	assert.Equal(t, "/opt/gs/System/Library/Makefiles/GNUstep.sh", reloader.Script())

	// Later components take the prefix from the sourced environment.
	require.NotEmpty(t, libsBase.Commands)
	for _, arg := range libsBase.Commands[0].Args {
		assert.NotContains(t, arg, "--prefix")
	}
}

func TestCompiler_ComponentEnvOverridesToolchain(t *testing.T) {
	t.Parallel()

	steps, err := newCompiler(false).Compile([]source.Component{{
		Name:   "libobjc2",
		Repo:   "https://github.com/gnustep/libobjc2.git",
		System: source.SystemCMake,
		Env:    pipeline.Env{"CXXFLAGS": "-std=c++17"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "-std=c++17", steps[1].Env["CXXFLAGS"])
	assert.Equal(t, "clang++", steps[1].Env["CXX"])
}

func TestCompiler_InvalidComponent(t *testing.T) {
	t.Parallel()

	bad := []source.Component{
		{Name: "../etc", Repo: "https://github.com/gnustep/libs-base.git", System: source.SystemAutotools},
		{Name: "libs-base", Repo: "http://insecure.example.com/libs-base.git", System: source.SystemAutotools},
		{Name: "libs-base", Repo: "https://github.com/gnustep/libs-base.git", Ref: "--upload-pack=x", System: source.SystemAutotools},
		{Name: "libs-base", Repo: "https://github.com/gnustep/libs-base.git", System: "meson"},
		{Name: "libs-base", Repo: "https://github.com/gnustep/libs-base.git", System: source.SystemAutotools, Env: pipeline.Env{"BAD NAME": "x"}},
	}

	for _, comp := range bad {
		_, err := newCompiler(false).Compile([]source.Component{comp})
		assert.Error(t, err, "%+v", comp)
	}
}

func TestNewCompiler_Defaults(t *testing.T) {
	t.Parallel()

	c := source.NewCompiler(mocks.NewCommandRunner(), mocks.NewFileSystem(), source.Options{BuildDir: buildDir, Prefix: "/opt/GNUstep"})

	assert.Equal(t, "source", c.Name())
	assert.Equal(t, "/opt/GNUstep/System/Library/Makefiles/GNUstep.sh", c.EnvScript())
}

func TestEnvScript(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/usr/GNUstep/System/Library/Makefiles/GNUstep.sh", source.EnvScript(""))
	assert.Equal(t, "/opt/GNUstep/System/Library/Makefiles/GNUstep.sh", source.EnvScript("/opt/GNUstep"))

	c := source.NewCompiler(mocks.NewCommandRunner(), mocks.NewFileSystem(), source.Options{BuildDir: buildDir})
	assert.Equal(t, source.DefaultPrefix, c.Prefix())
}
