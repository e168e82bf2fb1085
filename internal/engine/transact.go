package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/pentagram/internal/db"
	"github.com/roach88/pentagram/internal/diag"
	"github.com/roach88/pentagram/internal/ir"
	"github.com/roach88/pentagram/internal/store"
)

// batch is the bookkeeping of one in-flight transaction.
type batch struct {
	id     string
	seq    int64
	kind   Kind
	target string
	log    *slog.Logger
	tests  []store.TestOutcome
}

// transact runs fn as one batch: commit if it succeeds, rollback if it
// fails. On failure the error's diagnostic is resolved against the
// database before the rollback can discard the file it points into.
func (e *Engine) transact(ctx context.Context, kind Kind, target string, fn func(*batch) error) error {
	b := &batch{
		id:     e.ids.Generate(),
		seq:    e.seq.Next(),
		kind:   kind,
		target: target,
	}
	b.log = e.log.With("batch", b.id, "kind", string(kind), "target", target)
	b.log.Debug("batch started", "seq", b.seq)

	var failure *Error
	if err := fn(b); err != nil {
		failure = e.settle(b, err)
		e.db.Rollback()
		b.log.Info("batch rolled back", "code", string(failure.Code), "error", failure.Err.Error())
	} else {
		e.db.Commit()
		b.log.Info("batch committed", "tests", len(b.tests))
	}
	census := e.db.Census()
	for _, c := range census {
		b.log.Debug("census", "table", c.Table, "records", c.Total())
	}

	e.record(ctx, b, failure, census)
	if failure != nil {
		return failure
	}
	return nil
}

// settle classifies err and resolves its diagnostic. It must run before
// rollback.
func (e *Engine) settle(b *batch, err error) *Error {
	var failure *Error
	if !errors.As(err, &failure) {
		failure = fail(CodeInternal, err)
	}
	failure.Batch = b.id

	d, ok := ir.AsDiagnostic(failure.Err)
	if !ok {
		return failure
	}
	file, ok := e.db.File(d.FileID)
	if !ok {
		failure.Code = CodeInternal
		failure.Err = errUnknownFile(failure.Err, string(d.FileID))
		return failure
	}
	failure.Err = diag.Resolve(d, file)
	return failure
}

// record appends the batch to the journal. Failures are logged only.
func (e *Engine) record(ctx context.Context, b *batch, failure *Error, census []db.TableCensus) {
	if e.journal == nil {
		return
	}
	entry := store.Batch{
		ID:      b.id,
		Seq:     b.seq,
		Kind:    string(b.kind),
		Target:  b.target,
		Outcome: store.OutcomeCommitted,
		Census:  census,
		Tests:   b.tests,
	}
	if failure != nil {
		entry.Outcome = store.OutcomeRolledBack
		entry.Code = string(failure.Code)
		entry.Message = failure.Error()
		entry.Tests = nil
	}
	if err := e.journal.WriteBatch(ctx, entry); err != nil {
		b.log.Error("journal write failed", "error", err)
	}
}
