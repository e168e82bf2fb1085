package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/pentagram/internal/harness"
)

// ConformOptions holds flags for the conform command.
type ConformOptions struct {
	*RootOptions
	Update bool // regenerate golden files
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// ConformResult holds the overall conformance result.
type ConformResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r ConformResult) String() string {
	return fmt.Sprintf("Conformance: %d passed, %d failed, %d total", r.Passed, r.Failed, r.Total)
}

// NewConformCommand creates the conform command.
func NewConformCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConformOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "conform <scenario-dir>",
		Short: "Run conformance scenarios",
		Long: `Run every YAML scenario in a directory against a fresh engine.

A scenario passes when its expectations and assertions hold and, if
<scenario-dir>/golden/<name>.golden exists, its transcript matches.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenarios)

Examples:
  pt conform ./scenarios
  pt conform ./scenarios --update
  pt conform ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConform(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")

	return cmd
}

func runConform(opts *ConformOptions, dir string, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return WrapExitError(ExitCommandError, "scenario directory not found", err)
	}
	scenarios, err := harness.LoadScenarios(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	w := cmd.OutOrStdout()
	result := ConformResult{Scenarios: []ScenarioResult{}, Total: len(scenarios)}

	for _, s := range scenarios {
		sr := conformScenario(opts, dir, s, cmd)
		if !f.JSON() {
			mark := "✓"
			if !sr.Pass {
				mark = "✗"
			}
			fmt.Fprintf(w, "%s %s\n", mark, sr.Name)
			for _, e := range sr.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if f.JSON() {
			_ = f.Failure("E_SCENARIO_FAILED", msg, result)
		} else {
			fmt.Fprintf(w, "\n%s\n", result)
		}
		return &ExitError{Code: ExitFailure, Message: msg, Reported: true}
	}
	if !f.JSON() {
		fmt.Fprintln(w)
	}
	return f.Success(result)
}

func conformScenario(opts *ConformOptions, dir string, s *harness.Scenario, cmd *cobra.Command) ScenarioResult {
	result, err := harness.Run(commandContext(cmd), s, harness.WithLogger(opts.Logger))
	if err != nil {
		return ScenarioResult{Name: s.Name, Errors: []string{fmt.Sprintf("execution failed: %v", err)}}
	}
	sr := ScenarioResult{Name: s.Name, Pass: result.Pass, Errors: result.Errors}

	transcript := harness.Transcript(result)
	path := goldenFilePath(dir, s.Name)
	if opts.Update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to create golden directory: %v", err))
			return sr
		}
		if err := os.WriteFile(path, []byte(transcript), 0o644); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to write golden file: %v", err))
		}
		return sr
	}

	golden, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return sr
	}
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return sr
	}
	if string(golden) != transcript {
		sr.Pass = false
		sr.Errors = append(sr.Errors, "transcript does not match golden file (run with --update to regenerate)")
	}
	return sr
}

// goldenFilePath returns <dir>/golden/<name>.golden.
func goldenFilePath(dir, name string) string {
	return filepath.Join(dir, "golden", name+".golden")
}
