package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/pentagram/internal/db"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBatch creates a committed batch with minimal required fields.
func createTestBatch(id string, seq int64) Batch {
	return Batch{
		ID:      id,
		Seq:     seq,
		Kind:    "tests",
		Target:  "suite",
		Outcome: OutcomeCommitted,
		Census:  []db.TableCensus{{Table: "files", OldOnly: 1}},
	}
}
