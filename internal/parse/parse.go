// Package parse builds syntactic records from a token stream.
//
// A file is a sequence of items:
//
//	def <name> fn <term>... end-fn [,]
//	test <term>... end-test [,]
//	<term> [,]
//
// Function ids are the function name. Test and statement ids are
// "<file>.<n>" where n counts every item in the file. Statements carry a
// running index; functions and tests record the index of the next
// statement, which is what statement scoping compares against.
package parse

import (
	"fmt"

	"github.com/roach88/pentagram/internal/ir"
)

// Module is the output of parsing one file or REPL line.
type Module struct {
	Functions  []ir.FunctionRecord
	Tests      []ir.TestRecord
	Statements []ir.StatementRecord
}

// Empty reports whether the module has no items.
func (m Module) Empty() bool {
	return len(m.Functions) == 0 && len(m.Tests) == 0 && len(m.Statements) == 0
}

// Start positions the id and index counters. The zero value starts a file
// from scratch.
type Start struct {
	Index uint32
	Item  int
}

// File parses the tokens of the file at path.
func File(path, source string, tokens []ir.Spanned[ir.Token]) (Module, error) {
	return parseItems(ir.FileID(path), source, tokens, Start{})
}

func parseItems(file ir.FileID, source string, tokens []ir.Spanned[ir.Token], start Start) (Module, error) {
	p := &parser{
		file:  file,
		end:   len(source),
		index: start.Index,
		item:  start.Item,
	}
	for _, t := range tokens {
		if !t.Value.Skippable() {
			p.toks = append(p.toks, t)
		}
	}
	for !p.eof() {
		if err := p.parseItem(); err != nil {
			return Module{}, err
		}
		p.item++
	}
	return p.mod, nil
}

type parser struct {
	file  ir.FileID
	toks  []ir.Spanned[ir.Token]
	pos   int
	end   int
	index uint32
	item  int
	mod   Module
}

func (p *parser) eof() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peek() ir.Spanned[ir.Token] {
	return p.toks[p.pos]
}

func (p *parser) isKeyword(k ir.Keyword) bool {
	return !p.eof() && p.peek().Value.Kind == ir.TokenKeyword && p.peek().Value.Keyword == k
}

func (p *parser) skipComma() {
	if !p.eof() && p.peek().Value.Kind == ir.TokenComma {
		p.pos++
	}
}

// fail reports what was expected at the current token, or at end of input.
func (p *parser) fail(expected string) error {
	if p.eof() {
		return ir.Errorf(p.file, ir.Span{Start: p.end, End: p.end}, "Unexpected end of input, expected %s", expected)
	}
	return ir.Errorf(p.file, p.peek().Span, "expected %s", expected)
}

func (p *parser) nextID() string {
	return fmt.Sprintf("%s.%d", p.file, p.item)
}

func (p *parser) parseItem() error {
	switch {
	case p.isKeyword(ir.KeywordDef):
		return p.parseFunction()
	case p.isKeyword(ir.KeywordTest):
		return p.parseTest()
	default:
		return p.parseStatement()
	}
}

func (p *parser) parseFunction() error {
	p.pos++ // def
	if p.eof() || p.peek().Value.Kind != ir.TokenIdentifier {
		return p.fail("function name")
	}
	name := p.peek().Value.Text
	p.pos++
	if !p.isKeyword(ir.KeywordFn) {
		return p.fail("'fn'")
	}
	p.pos++
	body, err := p.parseBody(ir.KeywordEndFn, "'end-fn'")
	if err != nil {
		return err
	}
	p.mod.Functions = append(p.mod.Functions, ir.FunctionRecord{
		ID:          ir.FunctionID(name),
		Name:        name,
		FileID:      p.file,
		Body:        body,
		ContentHash: ir.HashTerms(body),
		Generation:  ir.NewOnly,
		Index:       p.index,
	})
	return nil
}

func (p *parser) parseTest() error {
	p.pos++ // test
	body, err := p.parseBody(ir.KeywordEndTest, "'end-test'")
	if err != nil {
		return err
	}
	p.mod.Tests = append(p.mod.Tests, ir.TestRecord{
		ID:          ir.TestID(p.nextID()),
		FileID:      p.file,
		Body:        body,
		ContentHash: ir.HashTerms(body),
		Generation:  ir.NewOnly,
		Index:       p.index,
	})
	return nil
}

func (p *parser) parseStatement() error {
	t, err := p.parseTerm()
	if err != nil {
		return err
	}
	p.skipComma()
	body := []ir.Spanned[ir.Term]{t}
	p.mod.Statements = append(p.mod.Statements, ir.StatementRecord{
		ID:          ir.StatementID(p.nextID()),
		FileID:      p.file,
		Body:        body,
		ContentHash: ir.HashTerms(body),
		Generation:  ir.NewOnly,
		Index:       p.index,
	})
	p.index++
	return nil
}

// parseBody reads comma-separated terms up to and including the closing
// keyword, then an optional trailing comma.
func (p *parser) parseBody(closer ir.Keyword, expected string) ([]ir.Spanned[ir.Term], error) {
	var body []ir.Spanned[ir.Term]
	for {
		if p.eof() {
			return nil, p.fail(expected)
		}
		if p.isKeyword(closer) {
			p.pos++
			break
		}
		if p.peek().Value.Kind == ir.TokenKeyword {
			return nil, p.fail(expected)
		}
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		body = append(body, t)
		p.skipComma()
	}
	if err := p.checkTermination(); err != nil {
		return nil, err
	}
	p.skipComma()
	return body, nil
}

func (p *parser) parseTerm() (ir.Spanned[ir.Term], error) {
	if p.eof() {
		return ir.Spanned[ir.Term]{}, p.fail("term")
	}
	tok := p.peek()
	var term ir.Term
	switch tok.Value.Kind {
	case ir.TokenLiteral:
		term = ir.Literal{Value: tok.Value.Literal}
	case ir.TokenIdentifier:
		term = ir.Word{Name: tok.Value.Text}
	case ir.TokenUnknown:
		return ir.Spanned[ir.Term]{}, ir.Errorf(p.file, tok.Span, "Unexpected character: %s", tok.Value.Text)
	case ir.TokenTrivia:
		return ir.Spanned[ir.Term]{}, ir.Errorf(p.file, tok.Span, "expected whitespace or ',' after term")
	default:
		return ir.Spanned[ir.Term]{}, p.fail("term")
	}
	p.pos++
	if err := p.checkTermination(); err != nil {
		return ir.Spanned[ir.Term]{}, err
	}
	return ir.At(term, tok.Span), nil
}

// checkTermination rejects a token glued to the one before it.
func (p *parser) checkTermination() error {
	if p.eof() {
		return nil
	}
	tok := p.peek()
	if tok.Value.Kind == ir.TokenTrivia && tok.Value.Trivia == ir.TriviaInvalidTermination {
		return ir.Errorf(p.file, tok.Span, "expected whitespace or ',' after term")
	}
	return nil
}
