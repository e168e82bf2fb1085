package testutil

import (
	"fmt"
	"sync"
)

// ScriptedBatchIDs hands out a fixed list of batch ids, then falls back to
// "<fallback>-N" numbered from the first id past the list.
//
// It satisfies engine.BatchIDGenerator.
type ScriptedBatchIDs struct {
	mu       sync.Mutex
	ids      []string
	fallback string
	n        int
}

// NewScriptedBatchIDs creates a generator. An empty fallback becomes "batch".
func NewScriptedBatchIDs(fallback string, ids ...string) *ScriptedBatchIDs {
	if fallback == "" {
		fallback = "batch"
	}
	return &ScriptedBatchIDs{ids: ids, fallback: fallback}
}

// Generate returns the next id.
func (g *ScriptedBatchIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	if g.n <= len(g.ids) {
		return g.ids[g.n-1]
	}
	return fmt.Sprintf("%s-%d", g.fallback, g.n)
}
