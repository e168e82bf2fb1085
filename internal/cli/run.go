package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Run a Pentagram file",
		Long: `Run the top-level statements of a file in order, then its main
function if it defines one.

On failure nothing from the file is kept and the error is shown
against the offending source line.

Example:
  pt run hello.penta`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(rootOpts, args[0], cmd)
		},
	}
}

func runFile(opts *RootOptions, path string, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read file", err)
	}

	ctx := commandContext(cmd)
	eng, closeJournal, err := openEngine(ctx, opts)
	if err != nil {
		return err
	}
	defer closeJournal()

	if err := eng.ExecuteFile(ctx, path, string(content), cmd.OutOrStdout()); err != nil {
		return reportBatchError(cmd.ErrOrStderr(), err)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
