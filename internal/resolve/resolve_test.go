package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pentagram/internal/ir"
)

func words(names ...string) []ir.Spanned[ir.Term] {
	var out []ir.Spanned[ir.Term]
	for i, n := range names {
		out = append(out, ir.At[ir.Term](ir.Word{Name: n}, ir.Span{Start: i * 10, End: i*10 + len(n)}))
	}
	return out
}

func function(name string, file ir.FileID, index uint32, body ...string) ir.FunctionRecord {
	b := words(body...)
	return ir.FunctionRecord{
		ID:          ir.FunctionID(name),
		Name:        name,
		FileID:      file,
		Body:        b,
		ContentHash: ir.HashTerms(b),
		Generation:  ir.NewOnly,
		Index:       index,
	}
}

func statement(file ir.FileID, index uint32, word string) ir.StatementRecord {
	b := words(word)
	return ir.StatementRecord{
		ID:          ir.StatementID("s"),
		FileID:      file,
		Body:        b,
		ContentHash: ir.HashTerms(b),
		Generation:  ir.OldOnly,
		Index:       index,
	}
}

func requireMessage(t *testing.T, err error, want string) *ir.Diagnostic {
	t.Helper()
	require.Error(t, err)
	d, ok := ir.AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, want, d.Message)
	return d
}

func TestBuiltinsResolveFirst(t *testing.T) {
	in := Input{
		Functions: []ir.FunctionRecord{function("say", "a.penta", 0)},
		Tests: []ir.TestRecord{{
			ID: "a.penta.1", FileID: "a.penta", Body: words("+", "eq", "say", "assert"), Generation: ir.NewOnly,
		}},
	}

	out, err := Module(in)
	require.NoError(t, err)

	require.Len(t, out.Tests, 1)
	var targets []ir.ResolvedWord
	for _, term := range out.Tests[0].Body {
		targets = append(targets, term.Value.(ir.WordRef).Target)
	}
	assert.Equal(t, []ir.ResolvedWord{ir.BuiltinAdd, ir.BuiltinEq, ir.BuiltinSay, ir.BuiltinAssert}, targets)
}

func TestLiteralsPassThrough(t *testing.T) {
	body := []ir.Spanned[ir.Term]{ir.At[ir.Term](ir.Literal{Value: ir.Integer(1)}, ir.Span{Start: 9, End: 10})}
	in := Input{Functions: []ir.FunctionRecord{{ID: "a", Name: "a", FileID: "f", Body: body, Generation: ir.NewOnly}}}

	out, err := Module(in)
	require.NoError(t, err)

	require.Len(t, out.Functions, 1)
	want := []ir.Spanned[ir.ResolvedTerm]{ir.At[ir.ResolvedTerm](ir.Literal{Value: ir.Integer(1)}, ir.Span{Start: 9, End: 10})}
	assert.Equal(t, want, out.Functions[0].Body)
	assert.Equal(t, ir.HashResolvedTerms(want), out.Functions[0].ContentHash)
	assert.Equal(t, ir.NewOnly, out.Functions[0].Generation)
}

func TestFunctionBodiesUseSameFileOnly(t *testing.T) {
	in := Input{Functions: []ir.FunctionRecord{
		function("helper", "lib.penta", 0),
		function("main", "app.penta", 0, "helper"),
	}}

	_, err := Module(in)

	d := requireMessage(t, err, "Undefined reference: helper")
	assert.Equal(t, ir.FileID("app.penta"), d.FileID)
	assert.Equal(t, ir.Span{Start: 0, End: 6}, d.Span)
}

func TestFunctionBodiesIgnoreDefinitionOrder(t *testing.T) {
	in := Input{Functions: []ir.FunctionRecord{
		function("main", "a.penta", 0, "helper"),
		function("helper", "a.penta", 3),
	}}

	out, err := Module(in)
	require.NoError(t, err)
	assert.Equal(t, ir.FunctionID("helper"), out.Functions[0].Body[0].Value.(ir.WordRef).Target)
}

func TestTestsSeeEveryFile(t *testing.T) {
	in := Input{
		Functions: []ir.FunctionRecord{function("helper", "lib.penta", 7)},
		Tests:     []ir.TestRecord{{ID: "t.penta.0", FileID: "t.penta", Body: words("helper"), Generation: ir.NewOnly}},
	}

	out, err := Module(in)
	require.NoError(t, err)
	assert.Equal(t, ir.FunctionID("helper"), out.Tests[0].Body[0].Value.(ir.WordRef).Target)
}

func TestStatementScoping(t *testing.T) {
	tests := []struct {
		name    string
		fn      ir.FunctionRecord
		stmt    ir.StatementRecord
		wantErr string
	}{
		{"earlier in same file", function("A", "f.penta", 5), statement("f.penta", 10, "A"), ""},
		{"same index in same file", function("A", "f.penta", 10), statement("f.penta", 10, "A"), ""},
		{"later in same file", function("A", "f.penta", 11), statement("f.penta", 10, "A"), "Undefined reference: A"},
		{"later in other file", function("A", "g.penta", 99), statement("f.penta", 10, "A"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Module(Input{Functions: []ir.FunctionRecord{tt.fn}, Statements: []ir.StatementRecord{tt.stmt}})
			if tt.wantErr != "" {
				requireMessage(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, out.Statements, 1)
			s := out.Statements[0]
			assert.Equal(t, StatementID(tt.stmt.FileID, tt.stmt.Index), s.ID)
			assert.Equal(t, tt.stmt.Index, s.Index)
			assert.Equal(t, ir.NewOnly, s.Generation)
		})
	}
}

func TestRedefinitionFails(t *testing.T) {
	in := Input{Functions: []ir.FunctionRecord{
		function("foo", "test.penta", 0, "foo"),
		function("foo", "test.penta", 1),
	}}

	out, err := Module(in)

	requireMessage(t, err, "Function redefinition: foo")
	assert.Equal(t, Output{}, out, "no partial output on failure")
}

func TestSameNameInTwoFilesIsAmbiguousForTests(t *testing.T) {
	in := Input{
		Functions: []ir.FunctionRecord{function("f", "a.penta", 0), function("f", "b.penta", 0)},
		Tests:     []ir.TestRecord{{ID: "a.penta.1", FileID: "a.penta", Body: words("f"), Generation: ir.NewOnly}},
	}

	_, err := Module(in)
	requireMessage(t, err, "Function redefinition: f")
}

func TestStatementID(t *testing.T) {
	assert.Equal(t, ir.StatementID("repl:3"), StatementID(ir.ReplFileID, 3))
}
