package db

import (
	"maps"
	"slices"

	"github.com/roach88/pentagram/internal/ir"
)

// Database is the engine's complete state.
type Database struct {
	Files              []ir.FileRecord
	TokenStreams       []ir.TokenStreamRecord
	Functions          []ir.FunctionRecord
	Tests              []ir.TestRecord
	Statements         []ir.StatementRecord
	ResolvedFunctions  []ir.ResolvedFunctionRecord
	ResolvedTests      []ir.ResolvedTestRecord
	ResolvedStatements []ir.ResolvedStatementRecord
	FunctionDeps       []ir.FunctionDependencyRecord
	TestDeps           []ir.TestDependencyRecord
	TestResults        []ir.TestResultRecord

	// Files and token streams are updated in place to keep one record per
	// id. The committed version they replaced is parked here until the
	// batch ends.
	supersededFiles  map[ir.FileID]ir.FileRecord
	supersededTokens map[ir.FileID]ir.TokenStreamRecord
}

// New returns an empty database.
func New() *Database {
	return &Database{}
}

// Clone returns a copy whose tables can be mutated independently.
// Record bodies are shared; they are never mutated after creation.
func (d *Database) Clone() *Database {
	return &Database{
		Files:              slices.Clone(d.Files),
		TokenStreams:       slices.Clone(d.TokenStreams),
		Functions:          slices.Clone(d.Functions),
		Tests:              slices.Clone(d.Tests),
		Statements:         slices.Clone(d.Statements),
		ResolvedFunctions:  slices.Clone(d.ResolvedFunctions),
		ResolvedTests:      slices.Clone(d.ResolvedTests),
		ResolvedStatements: slices.Clone(d.ResolvedStatements),
		FunctionDeps:       slices.Clone(d.FunctionDeps),
		TestDeps:           slices.Clone(d.TestDeps),
		TestResults:        slices.Clone(d.TestResults),
		supersededFiles:    maps.Clone(d.supersededFiles),
		supersededTokens:   maps.Clone(d.supersededTokens),
	}
}

// File returns the record for id.
func (d *Database) File(id ir.FileID) (*ir.FileRecord, bool) {
	for i := range d.Files {
		if d.Files[i].ID == id {
			return &d.Files[i], true
		}
	}
	return nil, false
}

// PutFile inserts f, or replaces the record with the same id.
func (d *Database) PutFile(f ir.FileRecord) {
	existing, ok := d.File(f.ID)
	if !ok {
		d.Files = append(d.Files, f)
		return
	}
	if existing.Generation.IsOld() {
		if _, parked := d.supersededFiles[f.ID]; !parked {
			if d.supersededFiles == nil {
				d.supersededFiles = make(map[ir.FileID]ir.FileRecord)
			}
			prior := *existing
			prior.Generation = ir.OldOnly
			d.supersededFiles[f.ID] = prior
		}
	}
	*existing = f
}

// TokenStream returns the cached token stream of file.
func (d *Database) TokenStream(file ir.FileID) (*ir.TokenStreamRecord, bool) {
	for i := range d.TokenStreams {
		if d.TokenStreams[i].FileID == file {
			return &d.TokenStreams[i], true
		}
	}
	return nil, false
}

// PutTokenStream inserts ts, or replaces the stream of the same file.
func (d *Database) PutTokenStream(ts ir.TokenStreamRecord) {
	existing, ok := d.TokenStream(ts.FileID)
	if !ok {
		d.TokenStreams = append(d.TokenStreams, ts)
		return
	}
	if existing.Generation.IsOld() {
		if _, parked := d.supersededTokens[ts.FileID]; !parked {
			if d.supersededTokens == nil {
				d.supersededTokens = make(map[ir.FileID]ir.TokenStreamRecord)
			}
			prior := *existing
			prior.Generation = ir.OldOnly
			d.supersededTokens[ts.FileID] = prior
		}
	}
	*existing = ts
}

// PromoteFile marks a file and every item parsed from it as confirmed by
// the current batch. Used when a file is resubmitted byte-identical.
func (d *Database) PromoteFile(id ir.FileID) {
	if f, ok := d.File(id); ok {
		f.Generation = ir.NewAndOld
	}
	if ts, ok := d.TokenStream(id); ok {
		ts.Generation = ir.NewAndOld
	}
	for i := range d.Functions {
		if d.Functions[i].FileID == id {
			d.Functions[i].Generation = ir.NewAndOld
		}
	}
	for i := range d.Tests {
		if d.Tests[i].FileID == id {
			d.Tests[i].Generation = ir.NewAndOld
		}
	}
	for i := range d.Statements {
		if d.Statements[i].FileID == id {
			d.Statements[i].Generation = ir.NewAndOld
		}
	}
}

// FileStatements returns the syntactic statements of file in table order.
func (d *Database) FileStatements(file ir.FileID) []ir.StatementRecord {
	var out []ir.StatementRecord
	for _, s := range d.Statements {
		if s.FileID == file {
			out = append(out, s)
		}
	}
	return out
}

// FileFunctions returns the syntactic functions of file.
func (d *Database) FileFunctions(file ir.FileID) []ir.FunctionRecord {
	var out []ir.FunctionRecord
	for _, f := range d.Functions {
		if f.FileID == file {
			out = append(out, f)
		}
	}
	return out
}

// FileTests returns the syntactic tests of file.
func (d *Database) FileTests(file ir.FileID) []ir.TestRecord {
	var out []ir.TestRecord
	for _, t := range d.Tests {
		if t.FileID == file {
			out = append(out, t)
		}
	}
	return out
}

// NewRecords returns the records of rs visible to the current batch.
func NewRecords[R any, P interface {
	*R
	ir.Versioned
}](rs []R) []R {
	var out []R
	for i := range rs {
		if P(&rs[i]).GenerationRef().IsNew() {
			out = append(out, rs[i])
		}
	}
	return out
}
