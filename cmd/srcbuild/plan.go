package main

import (
	"fmt"

	"github.com/felixgeelhaar/srcbuild/internal/provider/apt"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the steps a run would execute",
	Long: `Plan detects the distribution and prints every step of a run with its
commands, without executing anything.

With --check-packages it also asks dpkg which dependencies are missing.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

var planCheckPackages bool

func init() {
	rootCmd.AddCommand(planCmd)
	addBuildFlags(planCmd)
	planCmd.Flags().BoolVar(&planCheckPackages, "check-packages", false, "report which apt packages are not installed")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := contextOf(cmd)

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	client := newSrcbuild(cmd.OutOrStdout(), logger, nil)
	plan, err := client.Plan(ctx, settings)
	if err != nil {
		return err
	}

	var missing []apt.Package
	if planCheckPackages {
		missing, err = client.MissingPackages(ctx, plan)
		if err != nil {
			return err
		}
	}

	client.PrintPlan(plan, missing)
	for _, pkg := range missing {
		fmt.Fprintf(cmd.OutOrStdout(), "  missing: %s\n", pkg.FullName())
	}
	return nil
}
