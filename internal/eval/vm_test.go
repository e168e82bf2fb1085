package eval

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pentagram/internal/ir"
)

// prog builds a body from literals (ir.Value) and words (ir.Builtin or
// ir.FunctionID). Each term gets a one-byte span at its position.
func prog(terms ...any) []ir.Spanned[ir.ResolvedTerm] {
	out := make([]ir.Spanned[ir.ResolvedTerm], len(terms))
	for i, t := range terms {
		span := ir.Span{Start: i, End: i + 1}
		switch v := t.(type) {
		case ir.Value:
			out[i] = ir.At[ir.ResolvedTerm](ir.Literal{Value: v}, span)
		case ir.ResolvedWord:
			out[i] = ir.At[ir.ResolvedTerm](ir.WordRef{Target: v}, span)
		}
	}
	return out
}

func run(t *testing.T, functions map[ir.FunctionID]Function, body []ir.Spanned[ir.ResolvedTerm]) (*VM, string, error) {
	t.Helper()
	var out bytes.Buffer
	vm := New(functions, &out)
	err := vm.Eval("test.penta", body)
	return vm, out.String(), err
}

func TestArithmeticAndEquality(t *testing.T) {
	vm, _, err := run(t, nil, prog(ir.Integer(1), ir.Integer(2), ir.BuiltinAdd, ir.Integer(3), ir.BuiltinEq))
	require.NoError(t, err)
	assert.Equal(t, []ir.Value{ir.Boolean(true)}, vm.Stack())
}

func TestEqualityAcrossTypes(t *testing.T) {
	vm, _, err := run(t, nil, prog(ir.Integer(1), ir.String("1"), ir.BuiltinEq))
	require.NoError(t, err)
	assert.Equal(t, []ir.Value{ir.Boolean(false)}, vm.Stack())
}

func TestSayWritesLine(t *testing.T) {
	vm, out, err := run(t, nil, prog(ir.String("Hello"), ir.BuiltinSay, ir.Integer(42), ir.BuiltinSay))
	require.NoError(t, err)
	assert.Equal(t, "Hello\n42\n", out)
	assert.Empty(t, vm.Stack())
}

func TestCallsFunctions(t *testing.T) {
	functions := map[ir.FunctionID]Function{
		"val":  {FileID: "lib.penta", Body: prog(ir.Integer(41))},
		"incr": {FileID: "lib.penta", Body: prog(ir.Integer(1), ir.BuiltinAdd)},
	}

	vm, _, err := run(t, functions, prog(ir.FunctionID("val"), ir.FunctionID("incr")))
	require.NoError(t, err)
	assert.Equal(t, []ir.Value{ir.Integer(42)}, vm.TakeStack())
	assert.Empty(t, vm.Stack())
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    []ir.Spanned[ir.ResolvedTerm]
		message string
		span    ir.Span
	}{
		{"underflow", prog(ir.BuiltinSay), "Stack underflow", ir.Span{Start: 0, End: 1}},
		{"add underflow", prog(ir.Integer(1), ir.BuiltinAdd), "Stack underflow", ir.Span{Start: 1, End: 2}},
		{"add type", prog(ir.Integer(1), ir.String("x"), ir.BuiltinAdd), "Expected integer, got x", ir.Span{Start: 2, End: 3}},
		{"assert false", prog(ir.Integer(1), ir.Integer(2), ir.BuiltinEq, ir.BuiltinAssert), "Assertion failed", ir.Span{Start: 3, End: 4}},
		{"assert type", prog(ir.Integer(1), ir.BuiltinAssert), "Expected boolean for assert, got 1", ir.Span{Start: 1, End: 2}},
		{"missing function", prog(ir.FunctionID("ghost")), "Runtime Error: Function not found: ghost", ir.Span{Start: 0, End: 1}},
		{"overflow", prog(ir.Integer(math.MaxInt64), ir.Integer(1), ir.BuiltinAdd), "Integer overflow", ir.Span{Start: 2, End: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, nil, tt.body)
			require.Error(t, err)
			d, ok := ir.AsDiagnostic(err)
			require.True(t, ok)
			assert.Equal(t, tt.message, d.Message)
			assert.Equal(t, tt.span, d.Span)
			assert.Equal(t, ir.FileID("test.penta"), d.FileID)
		})
	}
}

func TestErrorsReportCalleeFile(t *testing.T) {
	functions := map[ir.FunctionID]Function{
		"check": {FileID: "lib.penta", Body: prog(ir.Boolean(false), ir.BuiltinAssert)},
	}

	_, _, err := run(t, functions, prog(ir.FunctionID("check")))

	d, ok := ir.AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, ir.FileID("lib.penta"), d.FileID)
	assert.Equal(t, ir.Span{Start: 1, End: 2}, d.Span)
}

func TestCallDepthLimit(t *testing.T) {
	functions := map[ir.FunctionID]Function{
		"loop": {FileID: "test.penta", Body: prog(ir.FunctionID("loop"))},
	}
	vm := New(functions, &bytes.Buffer{}, WithMaxDepth(8))

	err := vm.Eval("test.penta", prog(ir.FunctionID("loop")))

	d, ok := ir.AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, "Call depth exceeded: loop", d.Message)
	assert.Zero(t, vm.depth, "depth unwinds after failure")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestSayIOError(t *testing.T) {
	vm := New(nil, failingWriter{})

	err := vm.Eval("test.penta", prog(ir.String("x"), ir.BuiltinSay))

	d, ok := ir.AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, "IO Error: closed pipe", d.Message)
}
