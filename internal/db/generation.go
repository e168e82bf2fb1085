package db

import "github.com/roach88/pentagram/internal/ir"

// Commit ends a successful batch. Every record visible to the batch
// survives as OldOnly; everything else is dropped.
func (d *Database) Commit() {
	d.supersededFiles = nil
	d.supersededTokens = nil
	d.normalize(ir.Generation.IsNew)
}

// Rollback ends a failed batch. Every record that predates the batch
// survives as OldOnly; everything the batch produced is dropped. Files and
// token streams replaced during the batch are restored.
func (d *Database) Rollback() {
	for id, prior := range d.supersededFiles {
		if f, ok := d.File(id); ok {
			*f = prior
		} else {
			d.Files = append(d.Files, prior)
		}
	}
	for id, prior := range d.supersededTokens {
		if ts, ok := d.TokenStream(id); ok {
			*ts = prior
		} else {
			d.TokenStreams = append(d.TokenStreams, prior)
		}
	}
	d.supersededFiles = nil
	d.supersededTokens = nil
	d.normalize(ir.Generation.IsOld)
}

func (d *Database) normalize(keep func(ir.Generation) bool) {
	d.Files = retain(d.Files, keep)
	d.TokenStreams = retain(d.TokenStreams, keep)
	d.Functions = retain(d.Functions, keep)
	d.Tests = retain(d.Tests, keep)
	d.Statements = retain(d.Statements, keep)
	d.ResolvedFunctions = retain(d.ResolvedFunctions, keep)
	d.ResolvedTests = retain(d.ResolvedTests, keep)
	d.ResolvedStatements = retain(d.ResolvedStatements, keep)
	d.FunctionDeps = retain(d.FunctionDeps, keep)
	d.TestDeps = retain(d.TestDeps, keep)
	d.TestResults = retain(d.TestResults, keep)
}

// retain filters rs in place, retagging survivors OldOnly.
// An empty result is nil so that a fully drained table compares equal to a
// fresh one.
func retain[R any, P interface {
	*R
	ir.Versioned
}](rs []R, keep func(ir.Generation) bool) []R {
	out := rs[:0]
	for i := range rs {
		gen := P(&rs[i]).GenerationRef()
		if !keep(*gen) {
			continue
		}
		*gen = ir.OldOnly
		out = append(out, rs[i])
	}
	clear(rs[len(out):])
	if len(out) == 0 {
		return nil
	}
	return out
}
