package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/pentagram/internal/config"
	"github.com/roach88/pentagram/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config and Logger are set by prepare.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the pt CLI.
//
// Besides its subcommands it accepts a bare path: a directory is tested, a
// file is run, and no argument starts the repl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pt [path]",
		Short: "Pentagram - an incremental stack language",
		Long: `Run, test and explore Pentagram programs.

Tests are incremental: a test is only re-run when something it
transitively depends on changed since the last committed run.`,
		Version:       ir.EngineVersion,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLegacy(opts, args, cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "configuration file (.cue or .toml)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewConformCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// prepare validates the format, loads the configuration and builds the
// logger. Commands call it too, so they also work when constructed on
// their own; it only does the work once.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if o.Config == nil {
		cfg, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		o.Config = &cfg
	}
	if o.Logger == nil {
		level := o.Config.SlogLevel()
		if o.Verbose {
			level = slog.LevelDebug
		}
		var w io.Writer = os.Stderr
		if cmd != nil {
			w = cmd.ErrOrStderr()
		}
		o.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return nil
}

// runLegacy implements "pt <path>".
func runLegacy(opts *RootOptions, args []string, cmd *cobra.Command) error {
	if len(args) == 0 {
		return runREPLCommand(opts, cmd)
	}
	info, err := os.Stat(args[0])
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open path", err)
	}
	if info.IsDir() {
		return runTestCommand(&TestOptions{RootOptions: opts}, args[0], cmd)
	}
	return runFile(opts, args[0], cmd)
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
