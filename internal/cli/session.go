package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/pentagram/internal/diag"
	"github.com/roach88/pentagram/internal/engine"
	"github.com/roach88/pentagram/internal/store"
)

// openEngine creates an engine over the configured journal. The returned
// func closes the journal.
func openEngine(ctx context.Context, opts *RootOptions) (*engine.Engine, func(), error) {
	st, err := store.Open(opts.Config.Journal)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	closeJournal := func() {
		if err := st.Close(); err != nil {
			opts.Logger.Error("error closing journal", "error", err)
		}
	}

	eng, err := engine.New(ctx,
		engine.WithLogger(opts.Logger),
		engine.WithJournal(st),
		engine.WithMaxCallDepth(opts.Config.MaxCallDepth),
	)
	if err != nil {
		closeJournal()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	return eng, closeJournal, nil
}

// reportBatchError shows a rolled-back batch to the user and returns the
// matching exit error. Located errors are rendered against their source
// line.
func reportBatchError(w io.Writer, err error) error {
	if d, ok := engine.Diagnostic(err); ok {
		if rerr := diag.Render(w, d); rerr != nil {
			return errors.Join(err, rerr)
		}
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return &ExitError{Code: ExitFailure, Message: "batch failed", Err: err, Reported: true}
}

// reportREPLError shows a failed repl line. Syntax and runtime errors get a
// caret under the offending input; the rest print as one line.
func reportREPLError(w io.Writer, err error) error {
	if d, ok := engine.Diagnostic(err); ok && (engine.IsSyntaxError(err) || engine.IsRuntimeError(err)) {
		return diag.RenderREPL(w, d)
	}
	_, werr := fmt.Fprintf(w, "Error: %v\n", err)
	return werr
}

// formatBatch renders one journal entry on one line.
func formatBatch(b store.Batch) string {
	line := fmt.Sprintf("#%d %s %s %s %s", b.Seq, b.ID, b.Kind, b.Outcome, b.Target)
	if b.Outcome == store.OutcomeRolledBack {
		line += fmt.Sprintf(" [%s] %s", b.Code, b.Message)
	}
	if n := len(b.Tests); n > 0 {
		executed := 0
		for _, t := range b.Tests {
			if t.Executed {
				executed++
			}
		}
		line += fmt.Sprintf(" (tests: %d executed, %d reused)", executed, n-executed)
	}
	return line
}
