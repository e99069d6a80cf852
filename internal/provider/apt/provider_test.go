package apt_test

import (
	"testing"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/domain/platform"
	"github.com/felixgeelhaar/srcbuild/internal/provider/apt"
	"github.com/felixgeelhaar/srcbuild/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ubuntu = platform.Distro{ID: "ubuntu", VersionID: "24.04"}

func TestProvider_Name(t *testing.T) {
	t.Parallel()

	p := apt.NewProvider(mocks.NewCommandRunner(), nil)
	assert.Equal(t, "apt", p.Name())
}

func TestProvider_Compile(t *testing.T) {
	t.Parallel()

	p := apt.NewProvider(mocks.NewCommandRunner(), platform.New(platform.OSLinux, "amd64", platform.EnvNative, false))

	step, err := p.Compile(ubuntu, false, nil, "/home/dev/gnustep-build")
	require.NoError(t, err)

	assert.Equal(t, apt.StepName, step.Name)
	assert.Equal(t, pipeline.KindPackages, step.Kind)
	assert.Equal(t, "/home/dev/gnustep-build", step.Dir)
	require.Len(t, step.Commands, 2)
	assert.Equal(t, "sudo apt-get update", step.Commands[0].String())

	install := step.Commands[1]
	assert.Equal(t, "sudo", install.Program)
	assert.Equal(t, []string{"apt-get", "install", "-y", "--no-install-recommends"}, install.Args[:4])
	assert.Contains(t, install.Args, "clang")
	assert.Contains(t, install.Args, "libffi-dev")
}

func TestProvider_Compile_AsRoot(t *testing.T) {
	t.Parallel()

	p := apt.NewProvider(mocks.NewCommandRunner(), platform.New(platform.OSLinux, "amd64", platform.EnvDocker, true))

	step, err := p.Compile(ubuntu, false, nil, "/root/gnustep-build")
	require.NoError(t, err)

	assert.Equal(t, "apt-get update", step.Commands[0].String())
	assert.Equal(t, "apt-get", step.Commands[1].Program)
}

func TestProvider_Compile_ExtraPackages(t *testing.T) {
	t.Parallel()

	p := apt.NewProvider(mocks.NewCommandRunner(), nil)

	step, err := p.Compile(ubuntu, false, []apt.Package{{Name: "gdb"}, {Name: "cmake", Version: "3.28.3-1build7"}}, "/tmp")
	require.NoError(t, err)

	args := step.Commands[1].Args
	assert.Equal(t, "gdb", args[len(args)-2])
	assert.Equal(t, "cmake=3.28.3-1build7", args[len(args)-1])
}

func TestProvider_Compile_InvalidExtra(t *testing.T) {
	t.Parallel()

	p := apt.NewProvider(mocks.NewCommandRunner(), nil)

	_, err := p.Compile(ubuntu, false, []apt.Package{{Name: "gdb && reboot"}}, "/tmp")
	require.Error(t, err)
}

func TestProvider_Compile_Unsupported(t *testing.T) {
	t.Parallel()

	p := apt.NewProvider(mocks.NewCommandRunner(), nil)

	_, err := p.Compile(platform.Distro{ID: "arch"}, false, nil, "/tmp")
	assert.ErrorIs(t, err, pipeline.ErrUnsupportedOS)
}
