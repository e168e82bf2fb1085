package engine

import (
	"github.com/roach88/pentagram/internal/analyze"
	"github.com/roach88/pentagram/internal/db"
	"github.com/roach88/pentagram/internal/eval"
	"github.com/roach88/pentagram/internal/ir"
	"github.com/roach88/pentagram/internal/resolve"
)

// resolve resolves every syntactic record visible to the batch and
// reconciles the results against the committed resolved records.
func (e *Engine) resolve(b *batch) error {
	out, err := resolve.Module(resolve.Input{
		Functions:  db.NewRecords(e.db.Functions),
		Tests:      db.NewRecords(e.db.Tests),
		Statements: db.NewRecords(e.db.Statements),
	})
	if err != nil {
		return err
	}
	fns := e.db.MergeResolvedFunctions(out.Functions)
	tests := e.db.MergeResolvedTests(out.Tests)
	stmts := e.db.MergeResolvedStatements(out.Statements)
	b.log.Debug("module resolved",
		"functions", len(out.Functions), "functions_reused", fns,
		"tests", len(out.Tests), "tests_reused", tests,
		"statements", len(out.Statements), "statements_reused", stmts,
	)
	return nil
}

// analyze computes transitive hashes for every resolved record visible to
// the batch and reconciles them against the committed dependency records.
func (e *Engine) analyze(b *batch) error {
	out, err := analyze.Graph(analyze.Input{
		Functions: db.NewRecords(e.db.ResolvedFunctions),
		Tests:     db.NewRecords(e.db.ResolvedTests),
	})
	if err != nil {
		return err
	}
	fns := e.db.MergeFunctionDeps(out.Functions)
	tests := e.db.MergeTestDeps(out.Tests)
	b.log.Debug("dependencies analyzed",
		"functions", len(out.Functions), "functions_unchanged", fns,
		"tests", len(out.Tests), "tests_unchanged", tests,
	)
	for _, g := range out.Recursion {
		b.log.Warn("transitive hash is approximate for recursive functions",
			"cycle", g.Message, "members", g.Members)
	}
	return nil
}

// functions returns the callable functions of the batch.
func (e *Engine) functions() map[ir.FunctionID]eval.Function {
	fns := make(map[ir.FunctionID]eval.Function)
	for _, f := range e.db.ResolvedFunctions {
		if f.Generation.IsNew() {
			fns[f.ID] = eval.Function{FileID: f.FileID, Body: f.Body}
		}
	}
	return fns
}
