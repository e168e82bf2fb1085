package engine

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/roach88/pentagram/internal/eval"
	"github.com/roach88/pentagram/internal/ir"
	"github.com/roach88/pentagram/internal/store"
)

// runTests brings the test results up to date with the batch.
//
// A test whose dependency record is NewOnly changed or is new, and runs on
// a fresh VM with its output captured. A test whose dependency record is
// NewAndOld depends on nothing that changed; its committed result is
// carried forward verbatim without running it. Results are then reconciled
// against the committed ones.
func (e *Engine) runTests(b *batch) {
	fns := e.functions()
	resolved := make(map[ir.TestID]*ir.ResolvedTestRecord)
	for i := range e.db.ResolvedTests {
		if t := &e.db.ResolvedTests[i]; t.Generation.IsNew() {
			resolved[t.ID] = t
		}
	}

	var (
		ran     []ir.TestResultRecord
		carried []ir.TestResultRecord
	)
	for _, dep := range e.db.TestDeps {
		switch dep.Generation {
		case ir.NewAndOld:
			if prior, ok := e.priorResult(dep.ID); ok {
				prior.Generation = ir.NewOnly
				carried = append(carried, prior)
				continue
			}
			// Confirmed dependencies but no result to reuse: the last
			// batch that ran this test did not commit its result.
			fallthrough
		case ir.NewOnly:
			t, ok := resolved[dep.ID]
			if !ok {
				continue
			}
			ran = append(ran, e.runTest(fns, t))
		}
	}

	for _, r := range ran {
		b.tests = append(b.tests, outcome(r, true))
	}
	for _, r := range carried {
		b.tests = append(b.tests, outcome(r, false))
	}
	reused := e.db.MergeTestResults(append(ran, carried...))
	b.log.Debug("tests run", "executed", len(ran), "carried", len(carried), "results_unchanged", reused)
}

func (e *Engine) priorResult(id ir.TestID) (ir.TestResultRecord, bool) {
	for _, r := range e.db.TestResults {
		if r.ID == id && r.Generation == ir.OldOnly {
			return r, true
		}
	}
	return ir.TestResultRecord{}, false
}

// runTest evaluates one test. A failure becomes part of the captured
// output and never escapes the test.
func (e *Engine) runTest(fns map[ir.FunctionID]eval.Function, t *ir.ResolvedTestRecord) ir.TestResultRecord {
	var out bytes.Buffer
	vm := eval.New(fns, &out, e.vmOptions()...)
	err := vm.Eval(t.FileID, t.Body)
	if err != nil {
		fmt.Fprintln(&out, err)
	}
	passed := err == nil
	return ir.TestResultRecord{
		ID:          t.ID,
		Passed:      passed,
		Output:      out.String(),
		ContentHash: ir.HashTestResult(passed, out.String()),
		Generation:  ir.NewOnly,
	}
}

func outcome(r ir.TestResultRecord, executed bool) store.TestOutcome {
	return store.TestOutcome{
		TestID:   string(r.ID),
		Passed:   r.Passed,
		Executed: executed,
		Output:   r.Output,
	}
}

// report writes one line per test result of the batch, sorted by test id,
// followed by the captured output of failures.
func (e *Engine) report(w io.Writer) error {
	var results []ir.TestResultRecord
	for _, r := range e.db.TestResults {
		if r.Generation.IsNew() {
			results = append(results, r)
		}
	}
	slices.SortFunc(results, func(a, b ir.TestResultRecord) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", status, r.ID); err != nil {
			return err
		}
		if !r.Passed {
			if _, err := io.WriteString(w, r.Output); err != nil {
				return err
			}
		}
	}
	return nil
}
