package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/pentagram/internal/db"
	"github.com/roach88/pentagram/internal/eval"
	"github.com/roach88/pentagram/internal/store"
)

// ErrNoJournal is returned by History when the engine has no journal.
var ErrNoJournal = errors.New("engine has no journal")

// Engine owns one Database and runs batches against it.
//
// An Engine is not safe for concurrent use. Callers that feed it from
// several goroutines (a file watcher and a REPL, say) must funnel every
// Execute call through a single goroutine.
type Engine struct {
	db       *db.Database
	log      *slog.Logger
	journal  *store.Store
	ids      BatchIDGenerator
	seq      Sequencer
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithJournal records every batch in s. Journal write failures are logged
// and never change a batch's outcome.
func WithJournal(s *store.Store) Option {
	return func(e *Engine) {
		e.journal = s
	}
}

// WithBatchIDs sets the batch id generator. Default: UUIDv7Generator.
func WithBatchIDs(g BatchIDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithSequencer sets the source of batch sequence numbers.
// Default: a Clock resumed from the journal's last seq.
func WithSequencer(s Sequencer) Option {
	return func(e *Engine) {
		e.seq = s
	}
}

// WithMaxCallDepth bounds nested function calls during evaluation.
//
// Default: eval.DefaultMaxDepth.
func WithMaxCallDepth(n int) Option {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// WithDatabase starts the engine from an existing database instead of an
// empty one.
func WithDatabase(d *db.Database) Option {
	return func(e *Engine) {
		e.db = d
	}
}

// New creates an engine over an empty database.
//
// ctx is only used to read the journal's last seq when a journal is set and
// no sequencer is given.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		ids:      UUIDv7Generator{},
		maxDepth: eval.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.db == nil {
		e.db = db.New()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.seq == nil {
		var last int64
		if e.journal != nil {
			var err error
			if last, err = e.journal.LastSeq(ctx); err != nil {
				return nil, err
			}
		}
		e.seq = NewClockAt(last)
	}
	return e, nil
}

// Database returns the engine's database for inspection. Mutating it
// between batches breaks the engine's invariants.
func (e *Engine) Database() *db.Database {
	return e.db
}

// Census returns per-table generation counts.
func (e *Engine) Census() []db.TableCensus {
	return e.db.Census()
}

// History returns up to n journal entries, newest first.
func (e *Engine) History(ctx context.Context, n int) ([]store.Batch, error) {
	if e.journal == nil {
		return nil, ErrNoJournal
	}
	return e.journal.ReadBatches(ctx, n)
}

func (e *Engine) vmOptions() []eval.Option {
	return []eval.Option{eval.WithMaxDepth(e.maxDepth)}
}
