package main

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/srcbuild/internal/domain/config"
	"github.com/felixgeelhaar/srcbuild/internal/domain/report"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome of the last run",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&buildDirFlag, "build-dir", "", "build directory of the run (default: "+config.DefaultBuildDir+")")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	client := newSrcbuild(cmd.OutOrStdout(), logger, nil)
	rep, err := client.LastReport(contextOf(cmd), settings.BuildDir)
	if errors.Is(err, report.ErrReportNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No run recorded in %s\n", settings.ResolvedBuildDir())
		return nil
	}
	if err != nil {
		return err
	}

	client.PrintReport(rep)
	return nil
}
