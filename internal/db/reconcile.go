package db

import (
	"slices"

	"github.com/roach88/pentagram/internal/ir"
)

// Reconcile merges fresh records into existing.
//
// For every existing OldOnly record, the first fresh record for which same
// reports true is consumed and the existing record is promoted to
// NewAndOld. Fresh records left unmatched are appended in order. Existing
// records that are not OldOnly are never matched, so a record can be
// confirmed at most once per batch.
//
// It returns the merged table and the number of promoted records.
func Reconcile[R any, P interface {
	*R
	ir.Versioned
}](existing, fresh []R, same func(old, fresh *R) bool) ([]R, int) {
	fresh = slices.Clone(fresh)
	promoted := 0
	for i := range existing {
		gen := P(&existing[i]).GenerationRef()
		if *gen != ir.OldOnly {
			continue
		}
		for j := range fresh {
			if same(&existing[i], &fresh[j]) {
				*gen = ir.NewAndOld
				fresh = slices.Delete(fresh, j, j+1)
				promoted++
				break
			}
		}
	}
	return append(existing, fresh...), promoted
}

// MergeFunctions reconciles parsed functions by (id, file, index, hash).
func (d *Database) MergeFunctions(fresh []ir.FunctionRecord) int {
	var n int
	d.Functions, n = Reconcile(d.Functions, fresh, func(a, b *ir.FunctionRecord) bool {
		return a.ID == b.ID && a.FileID == b.FileID && a.Index == b.Index && a.ContentHash == b.ContentHash
	})
	return n
}

// MergeTests reconciles parsed tests by (id, file, index, hash).
func (d *Database) MergeTests(fresh []ir.TestRecord) int {
	var n int
	d.Tests, n = Reconcile(d.Tests, fresh, func(a, b *ir.TestRecord) bool {
		return a.ID == b.ID && a.FileID == b.FileID && a.Index == b.Index && a.ContentHash == b.ContentHash
	})
	return n
}

// MergeStatements reconciles parsed statements by (id, file, index, hash).
func (d *Database) MergeStatements(fresh []ir.StatementRecord) int {
	var n int
	d.Statements, n = Reconcile(d.Statements, fresh, func(a, b *ir.StatementRecord) bool {
		return a.ID == b.ID && a.FileID == b.FileID && a.Index == b.Index && a.ContentHash == b.ContentHash
	})
	return n
}

// MergeResolvedFunctions reconciles resolved functions by (id, hash).
func (d *Database) MergeResolvedFunctions(fresh []ir.ResolvedFunctionRecord) int {
	var n int
	d.ResolvedFunctions, n = Reconcile(d.ResolvedFunctions, fresh, func(a, b *ir.ResolvedFunctionRecord) bool {
		return a.ID == b.ID && a.ContentHash == b.ContentHash
	})
	return n
}

// MergeResolvedTests reconciles resolved tests by (id, hash).
func (d *Database) MergeResolvedTests(fresh []ir.ResolvedTestRecord) int {
	var n int
	d.ResolvedTests, n = Reconcile(d.ResolvedTests, fresh, func(a, b *ir.ResolvedTestRecord) bool {
		return a.ID == b.ID && a.ContentHash == b.ContentHash
	})
	return n
}

// MergeResolvedStatements reconciles resolved statements by (id, hash, index).
func (d *Database) MergeResolvedStatements(fresh []ir.ResolvedStatementRecord) int {
	var n int
	d.ResolvedStatements, n = Reconcile(d.ResolvedStatements, fresh, func(a, b *ir.ResolvedStatementRecord) bool {
		return a.ID == b.ID && a.ContentHash == b.ContentHash && a.Index == b.Index
	})
	return n
}

// MergeFunctionDeps reconciles function dependency records by (id, hash).
func (d *Database) MergeFunctionDeps(fresh []ir.FunctionDependencyRecord) int {
	var n int
	d.FunctionDeps, n = Reconcile(d.FunctionDeps, fresh, func(a, b *ir.FunctionDependencyRecord) bool {
		return a.ID == b.ID && a.ContentHash == b.ContentHash
	})
	return n
}

// MergeTestDeps reconciles test dependency records by (id, hash).
func (d *Database) MergeTestDeps(fresh []ir.TestDependencyRecord) int {
	var n int
	d.TestDeps, n = Reconcile(d.TestDeps, fresh, func(a, b *ir.TestDependencyRecord) bool {
		return a.ID == b.ID && a.ContentHash == b.ContentHash
	})
	return n
}

// MergeTestResults reconciles test results by (id, hash).
func (d *Database) MergeTestResults(fresh []ir.TestResultRecord) int {
	var n int
	d.TestResults, n = Reconcile(d.TestResults, fresh, func(a, b *ir.TestResultRecord) bool {
		return a.ID == b.ID && a.ContentHash == b.ContentHash
	})
	return n
}
