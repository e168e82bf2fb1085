// Package lex turns Pentagram source text into tokens.
//
// Lexing is total: malformed input becomes TokenUnknown tokens, which the
// parser reports. Spans are byte offsets into the source.
package lex

import (
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/pentagram/internal/ir"
)

// Source lexes source into a NewOnly token stream for the file at path.
// hash is the content hash of source and is stored on the stream as is.
func Source(path, source string, hash ir.ContentHash) ir.TokenStreamRecord {
	return ir.TokenStreamRecord{
		ID:          ir.TokenStreamID(path),
		FileID:      ir.FileID(path),
		Tokens:      Tokens(source),
		ContentHash: hash,
		Generation:  ir.NewOnly,
	}
}

// Tokens lexes source into spanned tokens, trivia included.
func Tokens(source string) []ir.Spanned[ir.Token] {
	c := newCursor(source)
	var out []ir.Spanned[ir.Token]

	for !c.eof() {
		start := c.offset
		head := c.head

		var tok ir.Token
		checkTermination := true
		switch {
		case unicode.IsSpace(head):
			tok = c.whitespace()
			checkTermination = false
		case head == ',':
			c.advance()
			tok = ir.Token{Kind: ir.TokenComma}
			checkTermination = false
		case head == '-':
			tok = c.hyphen(start)
		case head == '+':
			tok = c.plus(start)
		case head == '\'':
			tok = c.str(start)
		case isASCIIDigit(head):
			tok = c.integer(start, 1)
		default:
			tok = c.word(start)
		}

		span := ir.Span{Start: start, End: c.offset}
		out = append(out, ir.At(tok, span))

		if checkTermination && !c.eof() && c.head != ',' && !unicode.IsSpace(c.head) {
			out = append(out, ir.At(ir.Token{Kind: ir.TokenTrivia, Trivia: ir.TriviaInvalidTermination}, span))
		}
	}
	return out
}

// cursor walks source one rune at a time.
type cursor struct {
	src    string
	offset int
	head   rune
	width  int
}

func newCursor(src string) *cursor {
	c := &cursor{src: src}
	c.decode()
	return c
}

func (c *cursor) decode() {
	if c.offset >= len(c.src) {
		c.head, c.width = 0, 0
		return
	}
	c.head, c.width = utf8.DecodeRuneInString(c.src[c.offset:])
}

func (c *cursor) eof() bool {
	return c.width == 0
}

func (c *cursor) advance() {
	if c.eof() {
		return
	}
	c.offset += c.width
	c.decode()
}

func (c *cursor) slice(start int) string {
	return c.src[start:c.offset]
}

func (c *cursor) unknown(start int) ir.Token {
	return ir.Token{Kind: ir.TokenUnknown, Text: c.slice(start)}
}

func (c *cursor) whitespace() ir.Token {
	for !c.eof() && unicode.IsSpace(c.head) {
		c.advance()
	}
	return ir.Token{Kind: ir.TokenTrivia, Trivia: ir.TriviaWhitespace}
}

func (c *cursor) hyphen(start int) ir.Token {
	c.advance()
	switch {
	case !c.eof() && c.head == '-':
		c.advance()
		return c.comment(start)
	case !c.eof() && isASCIIDigit(c.head):
		return c.integer(start, -1)
	default:
		return c.wordAfterPrefix(start, '-')
	}
}

func (c *cursor) plus(start int) ir.Token {
	c.advance()
	if !c.eof() && isASCIIDigit(c.head) {
		return c.integer(start, 1)
	}
	return c.wordAfterPrefix(start, '+')
}

// comment lexes a block comment whose two opening dashes were consumed.
// The closing dash run must be exactly as long as the opening run.
func (c *cursor) comment(start int) ir.Token {
	opener := 2
	for !c.eof() && c.head == '-' {
		opener++
		c.advance()
	}
	for !c.eof() {
		if c.head != '-' {
			c.advance()
			continue
		}
		closer := 0
		for !c.eof() && c.head == '-' {
			closer++
			c.advance()
		}
		if closer == opener {
			return ir.Token{Kind: ir.TokenTrivia, Trivia: ir.TriviaComment, Text: c.slice(start)}
		}
		if closer > opener {
			return c.unknown(start)
		}
	}
	return c.unknown(start)
}

// str lexes a string delimited by runs of N single quotes.
func (c *cursor) str(start int) ir.Token {
	opener := 0
	for !c.eof() && c.head == '\'' {
		opener++
		c.advance()
	}
	contentStart := c.offset
	for !c.eof() {
		if c.head != '\'' {
			c.advance()
			continue
		}
		closerStart := c.offset
		closer := 0
		for !c.eof() && c.head == '\'' {
			closer++
			c.advance()
		}
		if closer == opener {
			return ir.Token{Kind: ir.TokenLiteral, Literal: ir.String(c.src[contentStart:closerStart])}
		}
		if closer > opener {
			return c.unknown(start)
		}
	}
	return c.unknown(start)
}

// integer accumulates digits with sign applied per digit so that the
// minimum int64 is representable. Overflow consumes the remaining digits
// and yields an unknown token.
func (c *cursor) integer(start int, sign int64) ir.Token {
	var val int64
	for !c.eof() && isASCIIDigit(c.head) {
		digit := int64(c.head-'0') * sign
		if (sign > 0 && val > (math.MaxInt64-digit)/10) || (sign < 0 && val < (math.MinInt64-digit)/10) {
			for !c.eof() && isASCIIDigit(c.head) {
				c.advance()
			}
			return c.unknown(start)
		}
		val = val*10 + digit
		c.advance()
	}
	return ir.Token{Kind: ir.TokenLiteral, Literal: ir.Integer(val)}
}

func (c *cursor) word(start int) ir.Token {
	var w wordState
	w.accept(c.head)
	c.advance()
	if w.invalid {
		return c.unknown(start)
	}
	return c.wordRest(start, &w)
}

func (c *cursor) wordAfterPrefix(start int, prefix rune) ir.Token {
	var w wordState
	w.accept(prefix)
	return c.wordRest(start, &w)
}

func (c *cursor) wordRest(start int, w *wordState) ir.Token {
	for !c.eof() && (isAlphanumeric(c.head) || c.head == '-' || c.head == '_') {
		w.accept(c.head)
		c.advance()
	}
	text := c.slice(start)
	if w.invalid || !w.started {
		return c.unknown(start)
	}
	if kw, ok := ir.LookupKeyword(text); ok {
		return ir.Token{Kind: ir.TokenKeyword, Keyword: kw}
	}
	return ir.Token{Kind: ir.TokenIdentifier, Text: text}
}

// wordState validates identifier characters as they are consumed.
// Operator words (* / + -) are exactly one character long; other words
// start with a letter or underscore and never contain a double hyphen.
type wordState struct {
	started    bool
	first      rune
	invalid    bool
	lastHyphen bool
}

func (w *wordState) accept(r rune) {
	if !w.started {
		w.started = true
		w.first = r
		if !unicode.IsLetter(r) && !isOperator(r) && r != '_' {
			w.invalid = true
		}
		w.lastHyphen = r == '-'
		return
	}
	if isOperator(w.first) {
		w.invalid = true
	}
	switch {
	case r == '-':
		if w.lastHyphen {
			w.invalid = true
		}
		w.lastHyphen = true
	case r == '_' || isAlphanumeric(r):
		w.lastHyphen = false
	default:
		w.invalid = true
	}
}

func isOperator(r rune) bool {
	return r == '*' || r == '/' || r == '+' || r == '-'
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Describe renders tokens compactly, one per line. Used by tests and the
// repl's :tokens command.
func Describe(tokens []ir.Spanned[ir.Token]) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Value.String() + "@" + strconv.Itoa(t.Span.Start) + ".." + strconv.Itoa(t.Span.End)
	}
	return out
}
