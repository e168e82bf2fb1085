package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptedBatchIDs(t *testing.T) {
	g := NewScriptedBatchIDs("", "first", "second")

	assert.Equal(t, "first", g.Generate())
	assert.Equal(t, "second", g.Generate())
	assert.Equal(t, "batch-3", g.Generate())
	assert.Equal(t, "batch-4", g.Generate())
}

func TestScriptedBatchIDs_OnlyFallback(t *testing.T) {
	g := NewScriptedBatchIDs("step")

	assert.Equal(t, "step-1", g.Generate())
	assert.Equal(t, "step-2", g.Generate())
}
