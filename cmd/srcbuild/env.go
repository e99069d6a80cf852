package main

import (
	"fmt"

	"github.com/felixgeelhaar/srcbuild/internal/app"
	"github.com/felixgeelhaar/srcbuild/internal/provider/source"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the shell lines that set up the GNUstep environment",
	Long: `Env prints the lines a run adds to your shell startup file: the toolchain
exports followed by sourcing GNUstep.sh.

  eval "$(srcbuild env)"

With --persist the lines are appended to the startup file (rc_file in the
settings, or ~/.bashrc / ~/.zshrc from $SHELL). Lines already present are
not added again.`,
	Args: cobra.NoArgs,
	RunE: runEnv,
}

var envPersist bool

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolVar(&envPersist, "persist", false, "append the lines to the shell startup file")
}

func runEnv(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if envPersist {
		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		client := newSrcbuild(cmd.OutOrStdout(), logger, nil)
		path, err := client.PersistEnv(contextOf(cmd), settings)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", path)
		return nil
	}

	lines, err := app.EnvLines(source.EnvScript(settings.Prefix))
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
