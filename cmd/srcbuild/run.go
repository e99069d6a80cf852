package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Install dependencies and build every component",
	Long: `Run installs the apt dependencies, then fetches and builds each component
in order, and finally adds the GNUstep environment to your shell startup file.

With --prompt (or prompt_after_steps in the settings file) srcbuild pauses
after each step. Declining stops the run; completed steps are kept.

A report of the run is written to <build-dir>/.srcbuild/last-run.yaml.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addBuildFlags(runCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx = ports.ContextWithLogger(ctx, logger)

	client := newSrcbuild(cmd.OutOrStdout(), logger, newPrompter(yesFlag))
	plan, err := client.Plan(ctx, settings)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Building %d steps in %s\n\n", len(plan.Steps), plan.Config.BuildDir)

	res, err := client.Run(ctx, plan)
	if res != nil {
		client.PrintResults(plan, res)
	}
	return err
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
