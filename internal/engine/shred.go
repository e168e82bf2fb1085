package engine

import (
	"github.com/roach88/pentagram/internal/ir"
	"github.com/roach88/pentagram/internal/lex"
	"github.com/roach88/pentagram/internal/parse"
)

// shredFile ingests the file at path.
//
// A file whose content hash matches the committed version is a cache hit:
// the file, its token stream and every item parsed from it are promoted to
// NewAndOld without lexing or parsing, and the returned module holds only
// the file's statements. Otherwise the file is replaced, lexed and parsed,
// and the parsed items are reconciled against the old ones.
func (e *Engine) shredFile(b *batch, path, content string) (parse.Module, error) {
	id := ir.FileID(path)
	hash := ir.HashSource(content)

	if f, ok := e.db.File(id); ok && f.ContentHash == hash {
		// A NewOnly match means the same file was already shredded in this
		// batch; promoting would make it survive a rollback.
		if f.Generation.IsOld() {
			e.db.PromoteFile(id)
		}
		b.log.Debug("file unchanged", "file", path, "hash", hash.Short())
		return parse.Module{Statements: e.db.FileStatements(id)}, nil
	}

	e.db.PutFile(ir.FileRecord{
		ID:          id,
		Path:        path,
		Source:      content,
		ContentHash: hash,
		Generation:  ir.NewOnly,
	})
	stream := lex.Source(path, content, hash)
	e.db.PutTokenStream(stream)

	mod, err := parse.File(path, content, stream.Tokens)
	if err != nil {
		return parse.Module{}, err
	}
	e.merge(b, path, mod)
	return mod, nil
}

// shredREPL ingests one REPL line.
//
// The REPL file's source is the transcript of every committed line, joined
// by newlines, and each line is lexed at its offset in the transcript. That
// keeps every span of every REPL record pointing into the file's source,
// so a failure inside a function typed on an earlier line still renders
// against that line.
func (e *Engine) shredREPL(b *batch, line string) (parse.Module, error) {
	source := line
	var prior parse.Prior
	if f, ok := e.db.File(ir.ReplFileID); ok {
		if f.Source != "" {
			source = f.Source + "\n" + line
		}
		prior = parse.Prior{
			Functions:  e.db.FileFunctions(ir.ReplFileID),
			Tests:      e.db.FileTests(ir.ReplFileID),
			Statements: e.db.FileStatements(ir.ReplFileID),
		}
	}
	offset := len(source) - len(line)
	hash := ir.HashSource(source)

	e.db.PutFile(ir.FileRecord{
		ID:          ir.ReplFileID,
		Path:        string(ir.ReplFileID),
		Source:      source,
		ContentHash: hash,
		Generation:  ir.NewOnly,
	})
	tokens := lex.Tokens(line)
	for i := range tokens {
		tokens[i].Span = tokens[i].Span.Shift(offset)
	}
	e.db.PutTokenStream(ir.TokenStreamRecord{
		ID:          ir.TokenStreamID(ir.ReplFileID),
		FileID:      ir.ReplFileID,
		Tokens:      tokens,
		ContentHash: hash,
		Generation:  ir.NewOnly,
	})

	mod, err := parse.Repl(source, tokens, prior)
	if err != nil {
		return parse.Module{}, err
	}
	e.merge(b, string(ir.ReplFileID), mod)
	return mod, nil
}

func (e *Engine) merge(b *batch, file string, mod parse.Module) {
	fns := e.db.MergeFunctions(mod.Functions)
	tests := e.db.MergeTests(mod.Tests)
	stmts := e.db.MergeStatements(mod.Statements)
	b.log.Debug("file shredded",
		"file", file,
		"functions", len(mod.Functions), "functions_reused", fns,
		"tests", len(mod.Tests), "tests_reused", tests,
		"statements", len(mod.Statements), "statements_reused", stmts,
	)
}
