package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pentagram/internal/db"
	"github.com/roach88/pentagram/internal/engine"
	"github.com/roach88/pentagram/internal/ir"
	"github.com/roach88/pentagram/internal/store"
)

// AssertionError is a failed expectation or assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	// Steps gives the transcript for context; may be nil.
	Steps []StepResult
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Steps) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, s := range e.Steps {
			fmt.Fprintf(&buf, "  [%d] %s %s: %s\n", s.Index, s.Kind, s.Target, s.Outcome)
		}
	}
	return buf.String()
}

// checkExpect compares one step against its expectations and returns a
// message per mismatch.
func checkExpect(sr StepResult, e *Expect) []string {
	var errs []string
	mismatch := func(what, want, got string) {
		errs = append(errs, (&AssertionError{
			Type:     fmt.Sprintf("step %d %s", sr.Index, what),
			Expected: want,
			Actual:   got,
		}).Error())
	}

	if e == nil || e.Error == nil {
		if sr.Error != nil {
			mismatch("outcome", store.OutcomeCommitted, fmt.Sprintf("%s (%s: %s)", sr.Outcome, sr.Error.Code, sr.Error.Message))
		}
	} else {
		if sr.Error == nil {
			mismatch("outcome", store.OutcomeRolledBack, sr.Outcome)
		} else {
			want, got := e.Error, sr.Error
			if want.Code != "" && want.Code != got.Code {
				mismatch("error code", want.Code, got.Code)
			}
			if want.Message != "" && want.Message != got.Message {
				mismatch("error message", quote(want.Message), quote(got.Message))
			}
			if want.Line != 0 && want.Line != got.Line {
				mismatch("error line", fmt.Sprint(want.Line), fmt.Sprint(got.Line))
			}
			if want.Column != 0 && want.Column != got.Column {
				mismatch("error column", fmt.Sprint(want.Column), fmt.Sprint(got.Column))
			}
		}
	}
	if e == nil {
		return errs
	}

	if e.Output != nil && *e.Output != sr.Output {
		mismatch("output", quote(*e.Output), quote(sr.Output))
	}
	if e.Executed != nil && !sameSet(e.Executed, sr.Executed) {
		mismatch("executed tests", fmt.Sprint(sorted(e.Executed)), fmt.Sprint(sr.Executed))
	}
	if e.Reused != nil && !sameSet(e.Reused, sr.Reused) {
		mismatch("reused tests", fmt.Sprint(sorted(e.Reused)), fmt.Sprint(sr.Reused))
	}
	return errs
}

// AssertionContext is what scenario assertions are evaluated against.
type AssertionContext struct {
	Ctx     context.Context
	Engine  *engine.Engine
	Journal *store.Store
	Steps   []StepResult
}

// EvaluateAssertions checks every assertion and returns a message per
// failure.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertCensus:
			err = assertCensus(actx.Engine.Census(), a)
		case AssertJournalOutcome:
			err = assertJournalOutcome(actx, a)
		case AssertTestResult:
			err = assertTestResult(actx.Engine.Database(), a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			if ae, ok := err.(*AssertionError); ok {
				ae.Steps = actx.Steps
			}
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertCensus(census []db.TableCensus, a Assertion) error {
	i := slices.IndexFunc(census, func(c db.TableCensus) bool { return c.Table == a.Table })
	if i < 0 {
		return &AssertionError{
			Type:     AssertCensus,
			Expected: fmt.Sprintf("table %s", a.Table),
			Actual:   "no such table",
		}
	}
	c := census[i]
	got := map[string]int{
		"old_only":    c.OldOnly,
		"new_only":    c.NewOnly,
		"new_and_old": c.NewAndOld,
	}
	for _, k := range censusKeys {
		want, ok := a.Expect[k]
		if ok && got[k] != want {
			return &AssertionError{
				Type:     AssertCensus,
				Expected: fmt.Sprintf("%s.%s = %d", a.Table, k, want),
				Actual:   fmt.Sprintf("%s.%s = %d", a.Table, k, got[k]),
			}
		}
	}
	return nil
}

func assertJournalOutcome(actx *AssertionContext, a Assertion) error {
	id := fmt.Sprintf("%s-%d", BatchPrefix, a.Step)
	b, err := actx.Journal.ReadBatch(actx.Ctx, id)
	if err != nil {
		return &AssertionError{
			Type:     AssertJournalOutcome,
			Expected: fmt.Sprintf("journal entry %s", id),
			Actual:   err.Error(),
		}
	}
	if b.Outcome != a.Outcome {
		return &AssertionError{
			Type:     AssertJournalOutcome,
			Expected: fmt.Sprintf("step %d %s", a.Step, a.Outcome),
			Actual:   fmt.Sprintf("step %d %s", a.Step, b.Outcome),
		}
	}
	return nil
}

// assertTestResult checks the committed result of a test.
func assertTestResult(d *db.Database, a Assertion) error {
	for _, r := range d.TestResults {
		if r.ID != ir.TestID(a.Test) || !r.Generation.IsOld() {
			continue
		}
		if r.Passed != *a.Passed {
			return &AssertionError{
				Type:     AssertTestResult,
				Expected: fmt.Sprintf("%s passed=%t", a.Test, *a.Passed),
				Actual:   fmt.Sprintf("%s passed=%t", a.Test, r.Passed),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertTestResult,
		Expected: fmt.Sprintf("committed result for %s", a.Test),
		Actual:   "no result",
	}
}

func sameSet(want, got []string) bool {
	return slices.Equal(sorted(want), sorted(got))
}

func sorted(s []string) []string {
	c := slices.Clone(s)
	slices.Sort(c)
	return c
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
