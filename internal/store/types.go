package store

import "github.com/roach88/pentagram/internal/db"

// Batch is one journal entry: a single ExecuteFile, ExecuteREPL or
// ExecuteTests call.
type Batch struct {
	ID     string `json:"id"`
	Seq    int64  `json:"seq"`
	Kind   string `json:"kind"`
	Target string `json:"target"`

	// Outcome is OutcomeCommitted or OutcomeRolledBack.
	Outcome string `json:"outcome"`
	// Code and Message describe the failure of a rolled back batch.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	// Census is the database census after the batch ended.
	Census []db.TableCensus `json:"census"`
	Tests  []TestOutcome    `json:"tests,omitempty"`
}

// Batch outcomes.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
)

// TestOutcome is a test result produced by a batch. Executed is false when
// the prior result was reused because nothing the test depends on changed.
type TestOutcome struct {
	TestID   string `json:"test_id"`
	Passed   bool   `json:"passed"`
	Executed bool   `json:"executed"`
	Output   string `json:"output,omitempty"`
}

// TestRun is one outcome of a test together with the batch that produced
// it.
type TestRun struct {
	BatchID string `json:"batch_id"`
	Seq     int64  `json:"seq"`
	TestOutcome
}
