package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Kind names the entry point that opened a batch.
type Kind string

const (
	KindFile  Kind = "file"
	KindREPL  Kind = "repl"
	KindTests Kind = "tests"
)

// BatchIDGenerator names batches.
// Implemented by UUIDv7Generator (production) and SequenceGenerator (tests).
type BatchIDGenerator interface {
	Generate() string
}

// Sequencer hands out strictly increasing batch sequence numbers.
// Implemented by *Clock and testutil.DeterministicClock.
type Sequencer interface {
	Next() int64
}

// UUIDv7Generator generates time-sortable UUIDv7 batch ids.
//
// It is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns "<prefix>-1", "<prefix>-2", ... for
// deterministic journals and golden transcripts.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator numbering from 1.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
