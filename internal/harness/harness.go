package harness

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/pentagram/internal/engine"
	"github.com/roach88/pentagram/internal/store"
	"github.com/roach88/pentagram/internal/testutil"
)

// BatchPrefix prefixes the batch ids of scenario steps: step N runs as
// batch "step-N".
const BatchPrefix = "step"

// Harness runs the steps of one scenario on a fresh engine.
type Harness struct {
	engine  *engine.Engine
	journal *store.Store
	clock   *testutil.DeterministicClock
	logger  *slog.Logger
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes engine logs to l. Default: only errors, discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and checks its expectations and assertions.
//
// The returned error reports a harness failure (the journal could not be
// opened or read). A scenario that does not hold yields a Result with
// Pass false.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: testutil.QuietLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer st.Close()

	clock := testutil.NewDeterministicClock()
	engineOpts := []engine.Option{
		engine.WithLogger(cfg.logger),
		engine.WithJournal(st),
		engine.WithSequencer(clock),
		engine.WithBatchIDs(testutil.NewScriptedBatchIDs(BatchPrefix)),
	}
	if scenario.MaxCallDepth > 0 {
		engineOpts = append(engineOpts, engine.WithMaxCallDepth(scenario.MaxCallDepth))
	}
	eng, err := engine.New(ctx, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{
		engine:  eng,
		journal: st,
		clock:   clock,
		logger:  cfg.logger,
	}

	result := NewResult(scenario.Name)
	for i, step := range scenario.Steps {
		sr, err := h.executeStep(ctx, i+1, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		result.Steps = append(result.Steps, sr)
		for _, msg := range checkExpect(sr, step.Expect) {
			result.AddError(msg)
		}
	}

	actx := &AssertionContext{
		Ctx:     ctx,
		Engine:  eng,
		Journal: st,
		Steps:   result.Steps,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one step as one batch and reads its journal entry back.
func (h *Harness) executeStep(ctx context.Context, index int, step Step) (StepResult, error) {
	var (
		out    bytes.Buffer
		runErr error
	)
	switch {
	case step.REPL != nil:
		runErr = h.engine.ExecuteREPL(ctx, *step.REPL, &out)
	case step.File != nil:
		runErr = h.engine.ExecuteFile(ctx, step.File.Path, step.File.Content, &out)
	default:
		files := make([]engine.SourceFile, len(step.Tests))
		for i, f := range step.Tests {
			files[i] = engine.SourceFile{Path: f.Path, Content: f.Content}
		}
		runErr = h.engine.ExecuteTests(ctx, files, &out)
	}

	batchID := fmt.Sprintf("%s-%d", BatchPrefix, index)
	entry, err := h.journal.ReadBatch(ctx, batchID)
	if err != nil {
		return StepResult{}, fmt.Errorf("read journal: %w", err)
	}

	sr := StepResult{
		Index:   index,
		Kind:    entry.Kind,
		Target:  entry.Target,
		Batch:   entry.ID,
		Outcome: entry.Outcome,
		Output:  out.String(),
	}
	if runErr != nil {
		sr.Error = stepError(runErr)
	}
	for _, t := range entry.Tests {
		if t.Executed {
			sr.Executed = append(sr.Executed, t.TestID)
		} else {
			sr.Reused = append(sr.Reused, t.TestID)
		}
	}

	h.logger.Debug("scenario step completed",
		"step", index,
		"kind", sr.Kind,
		"outcome", sr.Outcome,
		"seq", h.clock.Current(),
	)
	return sr, nil
}

func stepError(err error) *StepError {
	se := &StepError{
		Code:    string(engine.CodeOf(err)),
		Message: err.Error(),
	}
	if d, ok := engine.Diagnostic(err); ok {
		loc := d.Locate()
		se.Line = loc.Line
		se.Column = loc.Column + 1
	}
	return se
}
