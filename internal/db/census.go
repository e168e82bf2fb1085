package db

import "github.com/roach88/pentagram/internal/ir"

// TableCensus counts the records of one table by generation.
type TableCensus struct {
	Table     string `json:"table"`
	OldOnly   int    `json:"old_only"`
	NewOnly   int    `json:"new_only"`
	NewAndOld int    `json:"new_and_old"`
}

// Total returns the number of records in the table.
func (c TableCensus) Total() int {
	return c.OldOnly + c.NewOnly + c.NewAndOld
}

// Census reports per-table generation counts, in a fixed table order.
func (d *Database) Census() []TableCensus {
	return []TableCensus{
		count("files", d.Files),
		count("token_streams", d.TokenStreams),
		count("functions", d.Functions),
		count("tests", d.Tests),
		count("statements", d.Statements),
		count("resolved_functions", d.ResolvedFunctions),
		count("resolved_tests", d.ResolvedTests),
		count("resolved_statements", d.ResolvedStatements),
		count("function_deps", d.FunctionDeps),
		count("test_deps", d.TestDeps),
		count("test_results", d.TestResults),
	}
}

func count[R any, P interface {
	*R
	ir.Versioned
}](table string, rs []R) TableCensus {
	c := TableCensus{Table: table}
	for i := range rs {
		switch *P(&rs[i]).GenerationRef() {
		case ir.OldOnly:
			c.OldOnly++
		case ir.NewOnly:
			c.NewOnly++
		case ir.NewAndOld:
			c.NewAndOld++
		}
	}
	return c
}
