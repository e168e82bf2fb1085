package analyze

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pentagram/internal/ir"
)

// RecursionGroup is a set of functions that can reach each other through
// calls. Their transitive hashes are approximations.
type RecursionGroup struct {
	Members []ir.FunctionID `json:"members"` // sorted
	Path    []ir.FunctionID `json:"path"`    // one cycle through the group: [a, b, a]
	Message string          `json:"message"`
}

// RecursionGroups finds strongly connected components of the call graph
// using Tarjan's algorithm. Single functions count only if they call
// themselves. Groups are ordered by their smallest member.
func RecursionGroups(edges map[ir.FunctionID][]ir.FunctionID) []RecursionGroup {
	var groups []RecursionGroup
	for _, scc := range tarjanSCC(edges) {
		if len(scc) > 1 || slices.Contains(edges[scc[0]], scc[0]) {
			groups = append(groups, sccToGroup(scc, edges))
		}
	}
	slices.SortFunc(groups, func(a, b RecursionGroup) int {
		return strings.Compare(string(a.Members[0]), string(b.Members[0]))
	})
	return groups
}

func tarjanSCC(edges map[ir.FunctionID][]ir.FunctionID) [][]ir.FunctionID {
	var (
		index   = 0
		stack   []ir.FunctionID
		indices = make(map[ir.FunctionID]int)
		lowlink = make(map[ir.FunctionID]int)
		onStack = make(map[ir.FunctionID]bool)
		sccs    [][]ir.FunctionID
	)

	var strongConnect func(ir.FunctionID)
	strongConnect = func(v ir.FunctionID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []ir.FunctionID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	// Sorted roots keep the traversal, and so the reported paths, stable.
	nodes := make([]ir.FunctionID, 0, len(edges))
	for n := range edges {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

func sccToGroup(scc []ir.FunctionID, edges map[ir.FunctionID][]ir.FunctionID) RecursionGroup {
	members := slices.Clone(scc)
	slices.Sort(members)

	if len(members) == 1 {
		id := members[0]
		return RecursionGroup{
			Members: members,
			Path:    []ir.FunctionID{id, id},
			Message: fmt.Sprintf("recursive function: %s -> %s", id, id),
		}
	}

	path := cyclePath(members, edges)
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = string(id)
	}
	return RecursionGroup{
		Members: members,
		Path:    path,
		Message: fmt.Sprintf("mutually recursive functions: %s", strings.Join(parts, " -> ")),
	}
}

// cyclePath walks from the smallest member along edges inside the group
// until it returns to the start.
func cyclePath(members []ir.FunctionID, edges map[ir.FunctionID][]ir.FunctionID) []ir.FunctionID {
	inGroup := make(map[ir.FunctionID]bool, len(members))
	for _, m := range members {
		inGroup[m] = true
	}

	start := members[0]
	current := start
	path := []ir.FunctionID{current}
	visited := make(map[ir.FunctionID]bool)
	for {
		visited[current] = true
		var next ir.FunctionID
		for _, n := range edges[current] {
			if inGroup[n] && (!visited[n] || n == start) {
				next = n
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
