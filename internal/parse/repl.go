package parse

import (
	"strconv"
	"strings"

	"github.com/roach88/pentagram/internal/ir"
)

// Prior is the REPL state committed by earlier lines.
type Prior struct {
	Functions  []ir.FunctionRecord
	Tests      []ir.TestRecord
	Statements []ir.StatementRecord
}

// Repl parses one REPL line. source is the REPL transcript ending with
// the line, and tokens are the line's tokens with spans relative to source.
//
// Counters continue after the prior records so a new line never reuses an
// id or index. Prior functions are carried into the module unless the line
// redefines a function of the same name; prior tests are always carried.
func Repl(source string, tokens []ir.Spanned[ir.Token], prior Prior) (Module, error) {
	mod, err := parseItems(ir.ReplFileID, source, tokens, prior.next())
	if err != nil {
		return Module{}, err
	}

	redefined := make(map[string]bool, len(mod.Functions))
	for _, f := range mod.Functions {
		redefined[f.Name] = true
	}
	var carried []ir.FunctionRecord
	for _, f := range prior.Functions {
		if redefined[f.Name] {
			continue
		}
		f.Generation = ir.NewOnly
		carried = append(carried, f)
	}
	mod.Functions = append(carried, mod.Functions...)

	tests := make([]ir.TestRecord, 0, len(prior.Tests)+len(mod.Tests))
	for _, t := range prior.Tests {
		t.Generation = ir.NewOnly
		tests = append(tests, t)
	}
	mod.Tests = append(tests, mod.Tests...)
	return mod, nil
}

func (p Prior) next() Start {
	var s Start
	bump := func(index uint32, id string) {
		if index+1 > s.Index {
			s.Index = index + 1
		}
		if n, ok := itemNumber(id); ok && n+1 > s.Item {
			s.Item = n + 1
		}
	}
	for _, f := range p.Functions {
		bump(f.Index, "")
	}
	for _, t := range p.Tests {
		bump(t.Index, string(t.ID))
	}
	for _, st := range p.Statements {
		bump(st.Index, string(st.ID))
	}
	return s
}

// itemNumber extracts n from an id of the form "repl.<n>".
func itemNumber(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, string(ir.ReplFileID)+".")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}
