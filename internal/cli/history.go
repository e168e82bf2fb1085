package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pentagram/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
	Test  string
}

// HistoryReport is the --format json payload of the history command.
type HistoryReport struct {
	Batches []store.Batch   `json:"batches,omitempty"`
	Runs    []store.TestRun `json:"runs,omitempty"`
}

func (r HistoryReport) String() string {
	var lines []string
	for _, b := range r.Batches {
		lines = append(lines, formatBatch(b))
	}
	for _, run := range r.Runs {
		lines = append(lines, formatRun(run))
	}
	return strings.Join(lines, "\n")
}

// formatRun renders "#seq batch PASS|FAIL executed|reused".
func formatRun(r store.TestRun) string {
	status, how := "PASS", "executed"
	if !r.Passed {
		status = "FAIL"
	}
	if !r.Executed {
		how = "reused"
	}
	return fmt.Sprintf("#%d %s %s %s", r.Seq, r.BatchID, status, how)
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the batch journal",
		Long: `Print the most recent batches recorded in the journal, newest first.

Only a file journal outlives a single pt invocation; set "journal" in
the configuration file to keep one. With --test, print the recorded
outcomes of a single test instead.

Example:
  pt history --config pt.toml -n 5
  pt history --config pt.toml --test math.penta.1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of entries to show (0 for all)")
	cmd.Flags().StringVar(&opts.Test, "test", "", "show the outcomes of one test id")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	if opts.Config.Journal == "" {
		return NewExitError(ExitCommandError, "no journal configured: set \"journal\" in the configuration file")
	}

	st, err := store.Open(opts.Config.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Test != "" {
		runs, err := st.ReadTestHistory(commandContext(cmd), opts.Test, opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		if len(runs) == 0 && !f.JSON() {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "No outcomes recorded for %s.\n", opts.Test)
			return err
		}
		return f.Success(HistoryReport{Runs: runs})
	}

	batches, err := st.ReadBatches(commandContext(cmd), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	if len(batches) == 0 && !f.JSON() {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No batches recorded.")
		return err
	}
	return f.Success(HistoryReport{Batches: batches})
}
