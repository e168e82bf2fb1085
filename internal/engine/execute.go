package engine

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/roach88/pentagram/internal/eval"
	"github.com/roach88/pentagram/internal/ir"
)

// MainFunction is run by ExecuteFile after the file's statements.
const MainFunction ir.FunctionID = "main"

// SourceFile is one file handed to ExecuteTests.
type SourceFile struct {
	Path    string
	Content string
}

// ExecuteFile runs the file at path with the given content.
//
// The file's top-level statements run in order on one VM. Then, if the
// batch defines a main function, it runs on a fresh VM. Output goes to out.
func (e *Engine) ExecuteFile(ctx context.Context, path, content string, out io.Writer) error {
	return e.transact(ctx, KindFile, path, func(b *batch) error {
		if _, err := e.shredFile(b, path, content); err != nil {
			return fail(CodeSyntax, err)
		}
		if err := e.resolve(b); err != nil {
			return fail(CodeResolution, err)
		}
		if err := e.analyze(b); err != nil {
			return fail(CodeInternal, err)
		}

		fns := e.functions()
		vm := eval.New(fns, out, e.vmOptions()...)
		if err := e.runStatements(vm, ir.FileID(path)); err != nil {
			return fail(CodeRuntime, err)
		}
		if main, ok := fns[MainFunction]; ok {
			vm := eval.New(fns, out, e.vmOptions()...)
			if err := vm.Eval(main.FileID, main.Body); err != nil {
				return fail(CodeRuntime, err)
			}
		}
		return nil
	})
}

// ExecuteREPL runs one REPL line. Functions and tests defined on earlier
// lines stay visible. If the line leaves values on the stack they are
// written to out as "[ v1 v2 ]".
func (e *Engine) ExecuteREPL(ctx context.Context, line string, out io.Writer) error {
	return e.transact(ctx, KindREPL, string(ir.ReplFileID), func(b *batch) error {
		mod, err := e.shredREPL(b, line)
		if err != nil {
			return fail(CodeSyntax, err)
		}
		if err := e.resolve(b); err != nil {
			return fail(CodeResolution, err)
		}
		if err := e.analyze(b); err != nil {
			return fail(CodeInternal, err)
		}

		vm := eval.New(e.functions(), out, e.vmOptions()...)
		if len(mod.Statements) > 0 {
			if err := e.runStatements(vm, ir.ReplFileID); err != nil {
				return fail(CodeRuntime, err)
			}
		}
		if stack := vm.TakeStack(); len(stack) > 0 {
			if _, err := io.WriteString(out, formatStack(stack)); err != nil {
				return fail(CodeRuntime, fmt.Errorf("write stack: %w", err))
			}
		}
		return nil
	})
}

// ExecuteTests ingests files and brings every test up to date. Only tests
// whose transitive dependencies changed are run; the rest keep their
// committed result. A line "PASS <id>" or "FAIL <id>" is written to out for
// every test, sorted by id, each failure followed by its captured output.
//
// A failing test does not fail the batch.
func (e *Engine) ExecuteTests(ctx context.Context, files []SourceFile, out io.Writer) error {
	return e.transact(ctx, KindTests, testsTarget(files), func(b *batch) error {
		for _, f := range files {
			if _, err := e.shredFile(b, f.Path, f.Content); err != nil {
				return fail(CodeSyntax, err)
			}
		}
		if err := e.resolve(b); err != nil {
			return fail(CodeResolution, err)
		}
		if err := e.analyze(b); err != nil {
			return fail(CodeInternal, err)
		}
		e.runTests(b)
		if err := e.report(out); err != nil {
			return fail(CodeRuntime, fmt.Errorf("write report: %w", err))
		}
		return nil
	})
}

// runStatements runs the batch's statements of file in index order.
func (e *Engine) runStatements(vm *eval.VM, file ir.FileID) error {
	var stmts []ir.ResolvedStatementRecord
	for _, s := range e.db.ResolvedStatements {
		if s.FileID == file && s.Generation.IsNew() {
			stmts = append(stmts, s)
		}
	}
	slices.SortStableFunc(stmts, func(a, b ir.ResolvedStatementRecord) int {
		return cmp.Compare(a.Index, b.Index)
	})
	for _, s := range stmts {
		if err := vm.Eval(s.FileID, s.Body); err != nil {
			return err
		}
	}
	return nil
}

func formatStack(stack []ir.Value) string {
	var sb strings.Builder
	sb.WriteString("[")
	for _, v := range stack {
		sb.WriteString(" ")
		sb.WriteString(v.String())
	}
	sb.WriteString(" ]\n")
	return sb.String()
}

func testsTarget(files []SourceFile) string {
	switch len(files) {
	case 0:
		return ""
	case 1:
		return files[0].Path
	default:
		return fmt.Sprintf("%s (+%d files)", files[0].Path, len(files)-1)
	}
}
