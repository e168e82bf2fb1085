package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pentagram/internal/ir"
	"github.com/roach88/pentagram/internal/lex"
)

func parseSource(t *testing.T, path, src string) (Module, error) {
	t.Helper()
	return File(path, src, lex.Tokens(src))
}

func requireDiagnostic(t *testing.T, err error) *ir.Diagnostic {
	t.Helper()
	require.Error(t, err)
	d, ok := ir.AsDiagnostic(err)
	require.True(t, ok, "expected *ir.Diagnostic, got %T", err)
	return d
}

func TestFileItems(t *testing.T) {
	src := "def main fn 'Hello' say end-fn,\ntest 'Hello' say end-test,\n1, 2"

	mod, err := parseSource(t, "test.penta", src)
	require.NoError(t, err)

	require.Len(t, mod.Functions, 1)
	f := mod.Functions[0]
	assert.Equal(t, ir.FunctionID("main"), f.ID)
	assert.Equal(t, "main", f.Name)
	assert.Equal(t, ir.FileID("test.penta"), f.FileID)
	assert.Equal(t, uint32(0), f.Index)
	assert.Equal(t, ir.NewOnly, f.Generation)
	assert.Equal(t, []ir.Spanned[ir.Term]{
		ir.At[ir.Term](ir.Literal{Value: ir.String("Hello")}, ir.Span{Start: 12, End: 19}),
		ir.At[ir.Term](ir.Word{Name: "say"}, ir.Span{Start: 20, End: 23}),
	}, f.Body)
	assert.Equal(t, ir.HashTerms(f.Body), f.ContentHash)

	require.Len(t, mod.Tests, 1)
	assert.Equal(t, ir.TestID("test.penta.1"), mod.Tests[0].ID)
	assert.Len(t, mod.Tests[0].Body, 2)

	require.Len(t, mod.Statements, 2)
	assert.Equal(t, ir.StatementID("test.penta.2"), mod.Statements[0].ID)
	assert.Equal(t, uint32(0), mod.Statements[0].Index)
	assert.Equal(t, ir.StatementID("test.penta.3"), mod.Statements[1].ID)
	assert.Equal(t, uint32(1), mod.Statements[1].Index)
}

func TestFunctionIndexFollowsStatements(t *testing.T) {
	mod, err := parseSource(t, "a.penta", "1, def a fn end-fn, 2, 3, def b fn end-fn")
	require.NoError(t, err)

	require.Len(t, mod.Functions, 2)
	assert.Equal(t, uint32(1), mod.Functions[0].Index)
	assert.Equal(t, uint32(3), mod.Functions[1].Index)
	assert.Empty(t, mod.Functions[0].Body)
}

func TestCommentsAndNewlinesIgnored(t *testing.T) {
	mod, err := parseSource(t, "a.penta", "-- a comment --\n1\n2")
	require.NoError(t, err)
	assert.Len(t, mod.Statements, 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
		span    ir.Span
	}{
		{"missing fn", "def f 2 end-fn,", "expected 'fn'", ir.Span{Start: 6, End: 7}},
		{"bare fn", "fn", "expected term", ir.Span{Start: 0, End: 2}},
		{"missing name", "def 1 fn end-fn", "expected function name", ir.Span{Start: 4, End: 5}},
		{"unterminated function", "def f fn 1", "Unexpected end of input, expected 'end-fn'", ir.Span{Start: 10, End: 10}},
		{"unterminated test", "test 1", "Unexpected end of input, expected 'end-test'", ir.Span{Start: 6, End: 6}},
		{"wrong closer", "def f fn 1 end-test", "expected 'end-fn'", ir.Span{Start: 11, End: 19}},
		{"unknown character", "[", "Unexpected character: [", ir.Span{Start: 0, End: 1}},
		{"glued tokens", "123a", "expected whitespace or ',' after term", ir.Span{Start: 0, End: 3}},
		{"stray comma", ",", "expected term", ir.Span{Start: 0, End: 1}},
		{"def at eof", "def", "Unexpected end of input, expected function name", ir.Span{Start: 3, End: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSource(t, "test.penta", tt.src)
			d := requireDiagnostic(t, err)
			assert.Equal(t, tt.message, d.Message)
			assert.Equal(t, tt.span, d.Span)
			assert.Equal(t, ir.FileID("test.penta"), d.FileID)
		})
	}
}

func TestReplCarriesPriorDefinitions(t *testing.T) {
	first, err := Repl("def foo fn 42 end-fn, foo", lex.Tokens("def foo fn 42 end-fn, foo"), Prior{})
	require.NoError(t, err)
	require.Len(t, first.Functions, 1)
	require.Len(t, first.Statements, 1)
	assert.Equal(t, ir.StatementID("repl.1"), first.Statements[0].ID)
	assert.Equal(t, ir.FileID("repl"), first.Statements[0].FileID)

	prior := Prior{Functions: first.Functions, Statements: first.Statements}
	second, err := Repl("foo 1 +", lex.Tokens("foo 1 +"), prior)
	require.NoError(t, err)

	require.Len(t, second.Functions, 1, "foo is carried forward")
	assert.Equal(t, first.Functions[0].Index, second.Functions[0].Index)
	require.Len(t, second.Statements, 3)
	assert.Equal(t, ir.StatementID("repl.2"), second.Statements[0].ID)
	assert.Equal(t, uint32(1), second.Statements[0].Index)
	assert.Equal(t, uint32(3), second.Statements[2].Index)
}

func TestReplRedefinitionShadowsPrior(t *testing.T) {
	first, err := Repl("def foo fn 42 end-fn,", lex.Tokens("def foo fn 42 end-fn,"), Prior{})
	require.NoError(t, err)

	line := "def foo fn 100 end-fn, foo"
	second, err := Repl(line, lex.Tokens(line), Prior{Functions: first.Functions})
	require.NoError(t, err)

	require.Len(t, second.Functions, 1)
	assert.Equal(t, ir.Span{Start: 11, End: 14}, second.Functions[0].Body[0].Span)
	assert.Equal(t, uint32(1), second.Functions[0].Index)
	assert.Equal(t, uint32(1), second.Statements[0].Index)
}

func TestReplCarriesTests(t *testing.T) {
	prior := Prior{Tests: []ir.TestRecord{{ID: "repl.4", FileID: ir.ReplFileID, Index: 2, Generation: ir.OldOnly}}}

	mod, err := Repl("1", lex.Tokens("1"), prior)
	require.NoError(t, err)

	require.Len(t, mod.Tests, 1)
	assert.Equal(t, ir.NewOnly, mod.Tests[0].Generation)
	require.Len(t, mod.Statements, 1)
	assert.Equal(t, ir.StatementID("repl.5"), mod.Statements[0].ID)
	assert.Equal(t, uint32(3), mod.Statements[0].Index)
}
