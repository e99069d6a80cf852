package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/felixgeelhaar/srcbuild/internal/app"
	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/domain/platform"
	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/felixgeelhaar/srcbuild/internal/testutil"
	"github.com/felixgeelhaar/srcbuild/internal/testutil/mocks"
	"github.com/felixgeelhaar/srcbuild/internal/tui"
	"github.com/spf13/cobra"
)

const testBuildDir = "/home/dev/gnustep-build"

type harness struct {
	runner *mocks.CommandRunner
	fs     *mocks.FileSystem
}

// withHarness points the commands at mocks and a settings file with content.
// Tests using it must not run in parallel.
func withHarness(t *testing.T, settings string) *harness {
	t.Helper()

	h := &harness{runner: mocks.NewCommandRunner(), fs: mocks.NewFileSystem()}
	h.fs.AddFile(platform.OSReleasePath, testutil.UbuntuRelease)

	path := testutil.WriteTempFile(t, t.TempDir(), "srcbuild.yaml", settings)

	oldCfg, oldClient, oldPrompter := cfgFile, newSrcbuild, newPrompter
	cfgFile = path
	newSrcbuild = func(out io.Writer, logger ports.Logger, prompter pipeline.Prompter) srcbuildClient {
		a := app.NewWithDeps(out, app.Deps{
			Runner:   h.runner,
			FS:       h.fs,
			Platform: platform.New(platform.OSLinux, "amd64", platform.EnvNative, false),
		}).
			WithLogger(logger).
			WithEnviron(func() []string { return []string{"HOME=/home/dev"} }).
			WithShell("/usr/bin/zsh").
			WithStream(nil)
		if prompter != nil {
			a = a.WithPrompter(prompter)
		}
		return a
	}
	newPrompter = func(bool) pipeline.Prompter { return tui.AutoConfirm() }
	t.Cleanup(func() {
		cfgFile, newSrcbuild, newPrompter = oldCfg, oldClient, oldPrompter
	})

	return h
}

// newTestCommand returns a command carrying the build flags, writing to out.
func newTestCommand(out *bytes.Buffer, withBuildFlags bool) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	if withBuildFlags {
		addBuildFlags(cmd)
	}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	return cmd
}
