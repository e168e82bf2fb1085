package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pentagram/internal/ir"
)

// fn builds a resolved function whose body pushes lit and calls callees.
func fn(id string, lit int64, callees ...string) ir.ResolvedFunctionRecord {
	body := []ir.Spanned[ir.ResolvedTerm]{ir.At[ir.ResolvedTerm](ir.Literal{Value: ir.Integer(lit)}, ir.Span{Start: 0, End: 1})}
	for i, c := range callees {
		body = append(body, ir.At[ir.ResolvedTerm](ir.WordRef{Target: ir.FunctionID(c)}, ir.Span{Start: 2 + i, End: 3 + i}))
	}
	return ir.ResolvedFunctionRecord{
		ID:          ir.FunctionID(id),
		FileID:      "test.penta",
		Body:        body,
		ContentHash: ir.HashResolvedTerms(body),
		Generation:  ir.NewOnly,
	}
}

func tst(id string, callees ...string) ir.ResolvedTestRecord {
	var body []ir.Spanned[ir.ResolvedTerm]
	for i, c := range callees {
		body = append(body, ir.At[ir.ResolvedTerm](ir.WordRef{Target: ir.FunctionID(c)}, ir.Span{Start: i, End: i + 1}))
	}
	return ir.ResolvedTestRecord{ID: ir.TestID(id), Body: body, ContentHash: ir.HashResolvedTerms(body), Generation: ir.NewOnly}
}

func hashes(t *testing.T, in Input) (map[ir.FunctionID]ir.ContentHash, map[ir.TestID]ir.ContentHash) {
	t.Helper()
	out, err := Graph(in)
	require.NoError(t, err)
	fns := make(map[ir.FunctionID]ir.ContentHash)
	for _, d := range out.Functions {
		assert.Equal(t, ir.NewOnly, d.Generation)
		fns[d.ID] = d.ContentHash
	}
	tests := make(map[ir.TestID]ir.ContentHash)
	for _, d := range out.Tests {
		tests[d.ID] = d.ContentHash
	}
	return fns, tests
}

func TestLeafHashIsFoldOfOwnHash(t *testing.T) {
	a := fn("a", 1)
	fns, _ := hashes(t, Input{Functions: []ir.ResolvedFunctionRecord{a}})

	assert.Equal(t, ir.FoldHashes(a.ContentHash, []ir.ContentHash{}), fns["a"])
}

func TestTransitiveHashSensitivity(t *testing.T) {
	before, _ := hashes(t, Input{Functions: []ir.ResolvedFunctionRecord{fn("a", 1), fn("b", 0, "a")}})
	after, _ := hashes(t, Input{Functions: []ir.ResolvedFunctionRecord{fn("a", 2), fn("b", 0, "a")}})

	assert.NotEqual(t, before["a"], after["a"])
	assert.NotEqual(t, before["b"], after["b"], "b's own body is unchanged but its callee changed")
}

func TestTransitiveHashReachesIndirectCallees(t *testing.T) {
	before, tb := hashes(t, Input{
		Functions: []ir.ResolvedFunctionRecord{fn("a", 1), fn("b", 0, "a"), fn("c", 0, "b")},
		Tests:     []ir.ResolvedTestRecord{tst("t.1", "c")},
	})
	after, ta := hashes(t, Input{
		Functions: []ir.ResolvedFunctionRecord{fn("a", 2), fn("b", 0, "a"), fn("c", 0, "b")},
		Tests:     []ir.ResolvedTestRecord{tst("t.1", "c")},
	})

	assert.NotEqual(t, before["c"], after["c"])
	assert.NotEqual(t, tb["t.1"], ta["t.1"])
}

func TestCalleesFoldInIDOrder(t *testing.T) {
	b := tst("t.1", "b", "a", "b").Body
	assert.Equal(t, []ir.FunctionID{"a", "b"}, directCallees(b))

	a, bf := fn("a", 1), fn("b", 2)
	test := tst("t.1", "b", "a")
	out, err := Graph(Input{Functions: []ir.ResolvedFunctionRecord{bf, a}, Tests: []ir.ResolvedTestRecord{test}})
	require.NoError(t, err)

	leafA := ir.FoldHashes(a.ContentHash, nil)
	leafB := ir.FoldHashes(bf.ContentHash, nil)
	assert.Equal(t, ir.FoldHashes(test.ContentHash, []ir.ContentHash{leafA, leafB}), out.Tests[0].ContentHash)
}

func TestInputOrderDoesNotMatter(t *testing.T) {
	out1, err := Graph(Input{Functions: []ir.ResolvedFunctionRecord{fn("b", 2, "a"), fn("a", 1, "b")}})
	require.NoError(t, err)
	out2, err := Graph(Input{Functions: []ir.ResolvedFunctionRecord{fn("a", 1, "b"), fn("b", 2, "a")}})
	require.NoError(t, err)

	assert.ElementsMatch(t, out1.Functions, out2.Functions)
}

func TestUnchangedGraphIsStable(t *testing.T) {
	in := Input{
		Functions: []ir.ResolvedFunctionRecord{fn("a", 1), fn("b", 0, "a")},
		Tests:     []ir.ResolvedTestRecord{tst("t.1", "b")},
	}
	f1, t1 := hashes(t, in)
	f2, t2 := hashes(t, in)

	assert.Equal(t, f1, f2)
	assert.Equal(t, t1, t2)
}

func TestRecursionTerminates(t *testing.T) {
	in := Input{Functions: []ir.ResolvedFunctionRecord{
		fn("self", 0, "self"),
		fn("even", 0, "odd"),
		fn("odd", 1, "even"),
	}}

	out, err := Graph(in)
	require.NoError(t, err)
	assert.Len(t, out.Functions, 3)

	require.Len(t, out.Recursion, 2)
	assert.Equal(t, []ir.FunctionID{"even", "odd"}, out.Recursion[0].Members)
	assert.Equal(t, []ir.FunctionID{"even", "odd", "even"}, out.Recursion[0].Path)
	assert.Equal(t, "mutually recursive functions: even -> odd -> even", out.Recursion[0].Message)
	assert.Equal(t, []ir.FunctionID{"self", "self"}, out.Recursion[1].Path)
}

func TestRecursionSubstitutesOwnHash(t *testing.T) {
	even := fn("even", 0, "odd")
	odd := fn("odd", 1, "even")

	out, err := Graph(Input{Functions: []ir.ResolvedFunctionRecord{even, odd}})
	require.NoError(t, err)

	// even is visited first; odd sees even in progress and folds even's own hash.
	oddHash := ir.FoldHashes(odd.ContentHash, []ir.ContentHash{even.ContentHash})
	evenHash := ir.FoldHashes(even.ContentHash, []ir.ContentHash{oddHash})
	assert.Equal(t, evenHash, out.Functions[0].ContentHash)
	assert.Equal(t, oddHash, out.Functions[1].ContentHash)
}

func TestNoRecursionInDAG(t *testing.T) {
	out, err := Graph(Input{Functions: []ir.ResolvedFunctionRecord{fn("a", 1), fn("b", 0, "a"), fn("c", 0, "a", "b")}})
	require.NoError(t, err)
	assert.Empty(t, out.Recursion)
}

func TestUnknownCalleeIsError(t *testing.T) {
	_, err := Graph(Input{Functions: []ir.ResolvedFunctionRecord{fn("a", 1, "ghost")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown function "ghost"`)

	_, err = Graph(Input{Tests: []ir.ResolvedTestRecord{tst("t.1", "ghost")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test t.1")
}
