package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrBatchNotFound is returned by ReadBatch for an unknown id.
var ErrBatchNotFound = errors.New("batch not found")

// LastSeq returns the highest batch seq in the journal, or 0 when it is
// empty. The engine resumes its clock from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM batches`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

// ReadBatches returns up to limit batches, newest first, with their test
// outcomes. A limit below 1 returns every batch.
func (s *Store) ReadBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, kind, target, outcome, code, message, census
		FROM batches
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	// Rows must be closed before the outcome queries reuse the single
	// connection.
	rows.Close()

	for i := range batches {
		batches[i].Tests, err = s.ReadTestOutcomes(ctx, batches[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return batches, nil
}

// ReadBatch returns the batch with the given id.
func (s *Store) ReadBatch(ctx context.Context, id string) (Batch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, kind, target, outcome, code, message, census
		FROM batches
		WHERE id = ?
	`, id)
	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	if err != nil {
		return Batch{}, err
	}
	b.Tests, err = s.ReadTestOutcomes(ctx, id)
	if err != nil {
		return Batch{}, err
	}
	return b, nil
}

// ReadTestOutcomes returns the outcomes recorded by a batch, ordered by
// test id.
func (s *Store) ReadTestOutcomes(ctx context.Context, batchID string) ([]TestOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT test_id, passed, executed, output
		FROM test_outcomes
		WHERE batch_id = ?
		ORDER BY test_id COLLATE BINARY ASC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query test outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []TestOutcome
	for rows.Next() {
		var (
			o                TestOutcome
			passed, executed int
			output           []byte
		)
		if err := rows.Scan(&o.TestID, &passed, &executed, &output); err != nil {
			return nil, fmt.Errorf("scan test outcome: %w", err)
		}
		o.Passed = passed != 0
		o.Executed = executed != 0
		o.Output, err = decompressOutput(output)
		if err != nil {
			return nil, fmt.Errorf("decompress output of %s: %w", o.TestID, err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test outcomes: %w", err)
	}
	return outcomes, nil
}

// ReadTestHistory returns up to limit recorded outcomes of one test,
// newest first. A limit below 1 returns every outcome.
func (s *Store) ReadTestHistory(ctx context.Context, testID string, limit int) ([]TestRun, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.seq, t.test_id, t.passed, t.executed, t.output
		FROM test_outcomes t
		JOIN batches b ON b.id = t.batch_id
		WHERE t.test_id = ?
		ORDER BY b.seq DESC
		LIMIT ?
	`, testID, limit)
	if err != nil {
		return nil, fmt.Errorf("query test history: %w", err)
	}
	defer rows.Close()

	var runs []TestRun
	for rows.Next() {
		var (
			r                TestRun
			passed, executed int
			output           []byte
		)
		if err := rows.Scan(&r.BatchID, &r.Seq, &r.TestID, &passed, &executed, &output); err != nil {
			return nil, fmt.Errorf("scan test run: %w", err)
		}
		r.Passed = passed != 0
		r.Executed = executed != 0
		if r.Output, err = decompressOutput(output); err != nil {
			return nil, fmt.Errorf("decompress output of %s: %w", r.TestID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test history: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (Batch, error) {
	var (
		b          Batch
		censusJSON string
	)
	err := row.Scan(&b.ID, &b.Seq, &b.Kind, &b.Target, &b.Outcome, &b.Code, &b.Message, &censusJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Batch{}, err
		}
		return Batch{}, fmt.Errorf("scan batch: %w", err)
	}
	b.Census, err = unmarshalCensus(censusJSON)
	if err != nil {
		return Batch{}, err
	}
	return b, nil
}
