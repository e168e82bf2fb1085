// Package analyze computes transitive content hashes over the call graph.
//
// The transitive hash of a function or test folds its own content hash
// with the transitive hashes of its direct callees in ascending id order.
// Two runs produce the same transitive hash for an item only if nothing
// reachable from it changed, which is what lets the engine skip tests.
//
// Recursion is tolerated: a function revisited while it is still on the
// traversal path contributes its own hash instead of its transitive hash.
// Members of a recursion group are therefore not sensitive to every change
// inside the group; RecursionGroups reports where that approximation
// applies.
package analyze

import (
	"fmt"
	"slices"

	"github.com/roach88/pentagram/internal/ir"
)

// Input is the set of resolved records visible to the current batch.
type Input struct {
	Functions []ir.ResolvedFunctionRecord
	Tests     []ir.ResolvedTestRecord
}

// Output holds fresh NewOnly dependency records, in input order.
type Output struct {
	Functions []ir.FunctionDependencyRecord
	Tests     []ir.TestDependencyRecord
	Recursion []RecursionGroup
}

// Graph computes dependency records for every function and test of in.
func Graph(in Input) (Output, error) {
	g := newCallGraph(in.Functions)

	ids := make([]ir.FunctionID, 0, len(in.Functions))
	for _, f := range in.Functions {
		ids = append(ids, f.ID)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if _, err := g.transitive(id); err != nil {
			return Output{}, err
		}
	}

	var out Output
	for _, f := range in.Functions {
		out.Functions = append(out.Functions, ir.FunctionDependencyRecord{
			ID:          f.ID,
			ContentHash: g.memo[f.ID],
			Generation:  ir.NewOnly,
		})
	}
	for _, t := range in.Tests {
		deps, err := g.fold(directCallees(t.Body))
		if err != nil {
			return Output{}, fmt.Errorf("test %s: %w", t.ID, err)
		}
		out.Tests = append(out.Tests, ir.TestDependencyRecord{
			ID:          t.ID,
			ContentHash: ir.FoldHashes(t.ContentHash, deps),
			Generation:  ir.NewOnly,
		})
	}
	out.Recursion = RecursionGroups(g.edges)
	return out, nil
}

type callGraph struct {
	own        map[ir.FunctionID]ir.ContentHash
	edges      map[ir.FunctionID][]ir.FunctionID
	memo       map[ir.FunctionID]ir.ContentHash
	inProgress map[ir.FunctionID]bool
}

func newCallGraph(fns []ir.ResolvedFunctionRecord) *callGraph {
	g := &callGraph{
		own:        make(map[ir.FunctionID]ir.ContentHash, len(fns)),
		edges:      make(map[ir.FunctionID][]ir.FunctionID, len(fns)),
		memo:       make(map[ir.FunctionID]ir.ContentHash, len(fns)),
		inProgress: make(map[ir.FunctionID]bool),
	}
	for _, f := range fns {
		g.own[f.ID] = f.ContentHash
		g.edges[f.ID] = directCallees(f.Body)
	}
	return g
}

// directCallees returns the distinct callees of body in ascending id order.
func directCallees(body []ir.Spanned[ir.ResolvedTerm]) []ir.FunctionID {
	ids := ir.Callees(body)
	slices.Sort(ids)
	return ids
}

func (g *callGraph) transitive(id ir.FunctionID) (ir.ContentHash, error) {
	if h, ok := g.memo[id]; ok {
		return h, nil
	}
	own, ok := g.own[id]
	if !ok {
		return ir.ContentHash{}, fmt.Errorf("analyze: call to unknown function %q", id)
	}
	if g.inProgress[id] {
		return own, nil
	}
	g.inProgress[id] = true
	deps, err := g.fold(g.edges[id])
	delete(g.inProgress, id)
	if err != nil {
		return ir.ContentHash{}, err
	}
	h := ir.FoldHashes(own, deps)
	g.memo[id] = h
	return h, nil
}

func (g *callGraph) fold(callees []ir.FunctionID) ([]ir.ContentHash, error) {
	deps := make([]ir.ContentHash, 0, len(callees))
	for _, c := range callees {
		h, err := g.transitive(c)
		if err != nil {
			return nil, err
		}
		deps = append(deps, h)
	}
	return deps, nil
}
