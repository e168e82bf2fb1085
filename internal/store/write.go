package store

import (
	"context"
	"fmt"
)

// WriteBatch appends b and its test outcomes to the journal in one
// transaction. Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the
// same batch twice keeps the first copy.
func (s *Store) WriteBatch(ctx context.Context, b Batch) error {
	censusJSON, err := marshalCensus(b.Census)
	if err != nil {
		return fmt.Errorf("write batch: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO batches
		(id, seq, kind, target, outcome, code, message, census)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		b.ID,
		b.Seq,
		b.Kind,
		b.Target,
		b.Outcome,
		b.Code,
		b.Message,
		censusJSON,
	)
	if err != nil {
		return fmt.Errorf("write batch: insert: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write batch: rows affected: %w", err)
	}
	if inserted == 0 {
		return nil
	}

	for _, o := range b.Tests {
		output, err := compressOutput(o.Output)
		if err != nil {
			return fmt.Errorf("write batch: compress output of %s: %w", o.TestID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO test_outcomes
			(batch_id, test_id, passed, executed, output)
			VALUES (?, ?, ?, ?, ?)
		`,
			b.ID,
			o.TestID,
			boolToInt(o.Passed),
			boolToInt(o.Executed),
			output,
		)
		if err != nil {
			return fmt.Errorf("write batch: insert outcome %s: %w", o.TestID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write batch: commit: %w", err)
	}
	return nil
}
