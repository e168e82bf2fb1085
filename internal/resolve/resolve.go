// Package resolve rewrites word references into builtin or function
// targets.
//
// Builtins always win. Otherwise a word names a function, looked up by
// name with rules that depend on where the word appears:
//
//   - function body: functions in the same file
//   - test body: functions in any file
//   - top-level statement: functions in the same file defined at or before
//     the statement's index, or functions in any other file
//
// No match is "Undefined reference", more than one is "Function
// redefinition". Either error fails the whole module.
package resolve

import (
	"fmt"

	"github.com/roach88/pentagram/internal/ir"
)

// Input is the set of syntactic records visible to the current batch.
type Input struct {
	Functions  []ir.FunctionRecord
	Tests      []ir.TestRecord
	Statements []ir.StatementRecord
}

// Output holds freshly resolved records, all NewOnly.
type Output struct {
	Functions  []ir.ResolvedFunctionRecord
	Tests      []ir.ResolvedTestRecord
	Statements []ir.ResolvedStatementRecord
}

// Module resolves every record of in.
func Module(in Input) (Output, error) {
	byName := make(map[string][]*ir.FunctionRecord)
	for i := range in.Functions {
		f := &in.Functions[i]
		byName[f.Name] = append(byName[f.Name], f)
	}

	var out Output
	for _, f := range in.Functions {
		body, err := resolveBody(f.FileID, f.Body, func(name string) []*ir.FunctionRecord {
			return filter(byName[name], func(c *ir.FunctionRecord) bool { return c.FileID == f.FileID })
		})
		if err != nil {
			return Output{}, err
		}
		out.Functions = append(out.Functions, ir.ResolvedFunctionRecord{
			ID:          f.ID,
			FileID:      f.FileID,
			Body:        body,
			ContentHash: ir.HashResolvedTerms(body),
			Generation:  ir.NewOnly,
		})
	}

	for _, t := range in.Tests {
		body, err := resolveBody(t.FileID, t.Body, func(name string) []*ir.FunctionRecord {
			return byName[name]
		})
		if err != nil {
			return Output{}, err
		}
		out.Tests = append(out.Tests, ir.ResolvedTestRecord{
			ID:          t.ID,
			FileID:      t.FileID,
			Body:        body,
			ContentHash: ir.HashResolvedTerms(body),
			Generation:  ir.NewOnly,
		})
	}

	for _, s := range in.Statements {
		body, err := resolveBody(s.FileID, s.Body, func(name string) []*ir.FunctionRecord {
			return filter(byName[name], func(c *ir.FunctionRecord) bool {
				return c.FileID != s.FileID || c.Index <= s.Index
			})
		})
		if err != nil {
			return Output{}, err
		}
		out.Statements = append(out.Statements, ir.ResolvedStatementRecord{
			ID:          StatementID(s.FileID, s.Index),
			FileID:      s.FileID,
			Body:        body,
			ContentHash: ir.HashResolvedTerms(body),
			Generation:  ir.NewOnly,
			Index:       s.Index,
		})
	}
	return out, nil
}

// StatementID names a resolved statement by file and index.
func StatementID(file ir.FileID, index uint32) ir.StatementID {
	return ir.StatementID(fmt.Sprintf("%s:%d", file, index))
}

func resolveBody(file ir.FileID, body []ir.Spanned[ir.Term], candidates func(string) []*ir.FunctionRecord) ([]ir.Spanned[ir.ResolvedTerm], error) {
	out := make([]ir.Spanned[ir.ResolvedTerm], 0, len(body))
	for _, t := range body {
		switch term := t.Value.(type) {
		case ir.Literal:
			out = append(out, ir.At[ir.ResolvedTerm](term, t.Span))
		case ir.Word:
			if b, ok := ir.ParseBuiltin(term.Name); ok {
				out = append(out, ir.At[ir.ResolvedTerm](ir.WordRef{Target: b}, t.Span))
				continue
			}
			matches := candidates(term.Name)
			switch {
			case len(matches) > 1:
				return nil, ir.Errorf(file, t.Span, "Function redefinition: %s", term.Name)
			case len(matches) == 0:
				return nil, ir.Errorf(file, t.Span, "Undefined reference: %s", term.Name)
			}
			out = append(out, ir.At[ir.ResolvedTerm](ir.WordRef{Target: matches[0].ID}, t.Span))
		default:
			return nil, fmt.Errorf("resolve: unexpected term %T", t.Value)
		}
	}
	return out, nil
}

func filter(fs []*ir.FunctionRecord, keep func(*ir.FunctionRecord) bool) []*ir.FunctionRecord {
	var out []*ir.FunctionRecord
	for _, f := range fs {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
