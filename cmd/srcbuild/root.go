package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/srcbuild/internal/adapters/filesystem"
	"github.com/felixgeelhaar/srcbuild/internal/adapters/logging"
	"github.com/felixgeelhaar/srcbuild/internal/domain/config"
	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	jsonLog  bool
	logLevel string
	yesFlag  bool

	// Build flags, shared by the root command, run and plan
	promptFlag   bool
	appsFlag     bool
	buildDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "srcbuild",
	Short: "Build and install GNUstep from source",
	Long: `srcbuild installs the build dependencies of GNUstep with apt, then clones,
configures, compiles and installs each upstream component in order:

  libdispatch → libobjc2 → tools-make → libs-base → libs-gui → libs-back

The first failing command stops the run. Nothing is rolled back; running
again deletes each checkout and starts over from the first step.

Without a subcommand srcbuild behaves like 'srcbuild run'.`,
	Args:          cobra.NoArgs,
	RunE:          runBuild,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file, .yaml or .toml (default: "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "minimum log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "answer yes at every checkpoint")

	addBuildFlags(rootCmd)

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	rootCmd.AddCommand(versionCmd)
}

// addBuildFlags registers the flags that override settings for a run.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&promptFlag, "prompt", false, "pause for confirmation after every step")
	cmd.Flags().BoolVar(&appsFlag, "apps", false, "also build the optional applications")
	cmd.Flags().StringVar(&buildDirFlag, "build-dir", "", "where sources are checked out (default: "+config.DefaultBuildDir+")")
	_ = cmd.MarkFlagDirname("build-dir")
}

// loadSettings reads the settings file and applies the flags that were set
// on cmd.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.NewLoader(filesystem.NewRealFileSystem()).LoadOrDefault(cfgFile)
	if err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Lookup("prompt") != nil && flags.Changed("prompt") {
		settings.PromptAfterSteps = promptFlag
	}
	if flags.Lookup("apps") != nil && flags.Changed("apps") {
		settings.BuildApps = appsFlag
	}
	if flags.Lookup("build-dir") != nil && flags.Changed("build-dir") {
		settings.BuildDir = buildDirFlag
	}

	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

// newLogger creates the logger for the global flags. --verbose wins over
// --log-level.
func newLogger(w io.Writer) (ports.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, config.NewInvalidFlagError("log-level", "Use debug, info, warn or error.", err)
	}
	if verbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonLog),
		logging.WithTimestamp(jsonLog || verbose),
		logging.WithLevelLabel(level < ports.LevelWarn || verbose),
	), nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var list *config.ErrorList
	if errors.As(err, &list) {
		if list.Len() != 1 {
			return list.Format()
		}
		err = list.Errors()[0]
	}

	if userErr := config.GetUserError(err); userErr != nil {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	msg := err.Error()
	if code := pipeline.Code(err); code != pipeline.CodeUnknown {
		msg = fmt.Sprintf("[%s] %s", code, msg)
	}
	if s := pipeline.Suggestion(err); s != "" {
		msg += fmt.Sprintf("\n\nSuggestion: %s", s)
	}
	return msg
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
