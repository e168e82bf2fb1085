package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/pentagram/internal/engine"
	"github.com/roach88/pentagram/internal/ir"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Watch bool
}

// TestReport summarizes one test run.
type TestReport struct {
	Passed  int              `json:"passed"`
	Failed  int              `json:"failed"`
	Total   int              `json:"total"`
	Results []TestCaseResult `json:"results"`
}

// TestCaseResult is the committed result of one test.
type TestCaseResult struct {
	ID     string `json:"id"`
	Passed bool   `json:"passed"`
	Output string `json:"output,omitempty"`
}

func (r TestReport) String() string {
	return fmt.Sprintf("%d passed, %d failed, %d total", r.Passed, r.Failed, r.Total)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [dir]",
		Short: "Run the tests under a directory",
		Long: `Run every test in the source files under dir (default: the current
directory). Files are selected by the configured extension.

With --watch the tests are re-run whenever a source file changes, and
only tests affected by the change are executed again.

Exit codes:
  0 - All tests passed
  1 - A test failed or a file did not compile
  2 - Command error (invalid paths, etc.)

Examples:
  pt test ./examples
  pt test --watch
  pt test --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runTestCommand(opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "re-run tests when source files change")

	return cmd
}

func runTestCommand(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return WrapExitError(ExitCommandError, "test directory not found", err)
	}

	ctx := commandContext(cmd)
	eng, closeJournal, err := openEngine(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeJournal()

	runOnce := func(ctx context.Context) error {
		return runTestBatch(ctx, opts.RootOptions, eng, dir, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	if !opts.Watch {
		return runOnce(ctx)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runOnce(ctx); err != nil && GetExitCode(err) == ExitCommandError {
		return err
	}
	return watchTests(ctx, dir, opts.Config.Extension, opts.Config.Debounce(), opts.Logger, func(ctx context.Context) {
		fmt.Fprintln(cmd.OutOrStdout(), "--- change detected, re-running tests")
		if err := runOnce(ctx); err != nil && !IsReported(err) {
			opts.Logger.Error("test run failed", "error", err)
		}
	})
}

// runTestBatch collects the sources under dir and runs their tests as one
// batch.
func runTestBatch(ctx context.Context, opts *RootOptions, eng *engine.Engine, dir string, out, errOut io.Writer) error {
	files, err := collectSources(dir, opts.Config.Extension)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to collect sources", err)
	}
	opts.Logger.Debug("running tests", "dir", dir, "files", len(files))

	f := &OutputFormatter{Format: opts.Format, Writer: out}
	sink := out
	if f.JSON() {
		sink = io.Discard
	}
	if err := eng.ExecuteTests(ctx, files, sink); err != nil {
		if f.JSON() {
			_ = f.Failure(string(engine.CodeOf(err)), err.Error(), nil)
			return &ExitError{Code: ExitFailure, Message: "batch failed", Err: err, Reported: true}
		}
		return reportBatchError(errOut, err)
	}

	report := collectReport(eng)
	if report.Failed > 0 {
		msg := fmt.Sprintf("%d test(s) failed", report.Failed)
		if f.JSON() {
			_ = f.Failure("E_TEST_FAILED", msg, report)
		} else {
			fmt.Fprintf(out, "\n%s\n", report)
		}
		return &ExitError{Code: ExitFailure, Message: msg, Reported: true}
	}
	if !f.JSON() {
		fmt.Fprintln(out)
	}
	return f.Success(report)
}

// collectReport reads the committed test results.
func collectReport(eng *engine.Engine) TestReport {
	report := TestReport{Results: []TestCaseResult{}}
	for _, r := range eng.Database().TestResults {
		if r.Generation != ir.OldOnly {
			continue
		}
		report.Results = append(report.Results, TestCaseResult{
			ID:     string(r.ID),
			Passed: r.Passed,
			Output: r.Output,
		})
		if r.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	slices.SortFunc(report.Results, func(a, b TestCaseResult) int {
		return strings.Compare(a.ID, b.ID)
	})
	report.Total = len(report.Results)
	return report
}

// collectSources reads every file under root with the given extension,
// sorted by path. Paths are relative to root and slash-separated so test
// ids do not depend on where pt was started. A root that is a file is
// collected on its own under its base name.
func collectSources(root, ext string) ([]engine.SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		content, err := os.ReadFile(root)
		if err != nil {
			return nil, err
		}
		return []engine.SourceFile{{Path: filepath.Base(root), Content: string(content)}}, nil
	}

	var files []engine.SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, engine.SourceFile{
			Path:    filepath.ToSlash(rel),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(files, func(a, b engine.SourceFile) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}
