package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Transcript renders the steps of a result as plain text, one block per
// step: a header, the step's output prefixed with "| ", its error, and for
// committed tests steps the executed and reused test ids.
func Transcript(r *Result) string {
	var sb strings.Builder
	for _, s := range r.Steps {
		fmt.Fprintf(&sb, "step %d %s %s: %s\n", s.Index, s.Kind, s.Target, s.Outcome)
		if s.Output != "" {
			for _, line := range strings.Split(strings.TrimSuffix(s.Output, "\n"), "\n") {
				fmt.Fprintf(&sb, "  | %s\n", line)
			}
		}
		if e := s.Error; e != nil {
			if e.Line > 0 {
				fmt.Fprintf(&sb, "  error %s at %d:%d: %s\n", e.Code, e.Line, e.Column, e.Message)
			} else {
				fmt.Fprintf(&sb, "  error %s: %s\n", e.Code, e.Message)
			}
		}
		if s.Kind == "tests" && s.Error == nil {
			fmt.Fprintf(&sb, "  executed: %s\n", idList(s.Executed))
			fmt.Fprintf(&sb, "  reused: %s\n", idList(s.Reused))
		}
	}
	return sb.String()
}

func idList(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}

// RunWithGolden runs a scenario, fails t if it does not pass, and compares
// its transcript with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	AssertGolden(t, scenario.Name, result)
	return nil
}

// AssertGolden compares the transcript of result with a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(Transcript(result)))
}
