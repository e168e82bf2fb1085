package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pentagram/internal/ir"
)

func values(input string) []ir.Token {
	toks := Tokens(input)
	out := make([]ir.Token, len(toks))
	for i, t := range toks {
		out[i] = t.Value
	}
	return out
}

func ident(s string) ir.Token   { return ir.Token{Kind: ir.TokenIdentifier, Text: s} }
func integer(i int64) ir.Token  { return ir.Token{Kind: ir.TokenLiteral, Literal: ir.Integer(i)} }
func str(s string) ir.Token     { return ir.Token{Kind: ir.TokenLiteral, Literal: ir.String(s)} }
func unknown(s string) ir.Token { return ir.Token{Kind: ir.TokenUnknown, Text: s} }
func keyword(k ir.Keyword) ir.Token {
	return ir.Token{Kind: ir.TokenKeyword, Keyword: k}
}
func comment(s string) ir.Token {
	return ir.Token{Kind: ir.TokenTrivia, Trivia: ir.TriviaComment, Text: s}
}

var (
	ws          = ir.Token{Kind: ir.TokenTrivia, Trivia: ir.TriviaWhitespace}
	comma       = ir.Token{Kind: ir.TokenComma}
	invalidTerm = ir.Token{Kind: ir.TokenTrivia, Trivia: ir.TriviaInvalidTermination}
)

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ir.Token
	}{
		{"basic sequence", "123 'hello' world", []ir.Token{integer(123), ws, str("hello"), ws, ident("world")}},
		{"function def", "def foo fn end-fn", []ir.Token{
			keyword(ir.KeywordDef), ws, ident("foo"), ws, keyword(ir.KeywordFn), ws, keyword(ir.KeywordEndFn),
		}},
		{"test block", "test end-test", []ir.Token{keyword(ir.KeywordTest), ws, keyword(ir.KeywordEndTest)}},
		{"mixed values", "a, 1, 'b'", []ir.Token{ident("a"), comma, ws, integer(1), comma, ws, str("b")}},
		{"word invalid termination", "foo[bar]", []ir.Token{
			ident("foo"), invalidTerm, unknown("["), invalidTerm, ident("bar"), invalidTerm, unknown("]"),
		}},
		{"integer invalid termination", "123a", []ir.Token{integer(123), invalidTerm, ident("a")}},
		{"string invalid termination", "'foo'bar", []ir.Token{str("foo"), invalidTerm, ident("bar")}},
		{"comment invalid termination", "-- foo --bar", []ir.Token{comment("-- foo --"), invalidTerm, ident("bar")}},
		{"plus word", "+", []ir.Token{ident("+")}},
		{"minus word", "- 1", []ir.Token{ident("-"), ws, integer(1)}},
		{"operator words are one char", "+a", []ir.Token{unknown("+a")}},
		{"hyphenated word", "end-of-line", []ir.Token{ident("end-of-line")}},
		{"double hyphen rejected", "a--b", []ir.Token{unknown("a--b")}},
		{"underscore word", "_tmp1", []ir.Token{ident("_tmp1")}},
		{"unicode word", "größe", []ir.Token{ident("größe")}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := values(tt.input)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got, "input %q", tt.input)
		})
	}
}

func TestIntegers(t *testing.T) {
	tests := []struct {
		input string
		want  ir.Token
	}{
		{"12345", integer(12345)},
		{"+12345", integer(12345)},
		{"-12345", integer(-12345)},
		{"9223372036854775807", integer(9223372036854775807)},
		{"-9223372036854775808", integer(-9223372036854775808)},
		{"9223372036854775808", unknown("9223372036854775808")},
		{"-9223372036854775809", unknown("-9223372036854775809")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := values(tt.input)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		want  ir.Token
	}{
		{"'hello'", str("hello")},
		{"'''it's'''", str("it's")},
		{"''''", unknown("''''")},
		{"'hello''", unknown("'hello''")},
		{"'hello world", unknown("'hello world")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := values(tt.input)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestComments(t *testing.T) {
	assert.Equal(t, []ir.Token{comment("-- hello --"), ws}, values("-- hello -- "))
	assert.Equal(t, []ir.Token{comment("-- a\nb --"), ws}, values("-- a\nb -- "))
	assert.Equal(t, []ir.Token{comment("--- a -- b ---"), ws}, values("--- a -- b --- "))
	assert.Equal(t, []ir.Token{unknown("-- hello ---"), ws}, values("-- hello --- "))
	assert.Equal(t, []ir.Token{unknown("--- hello -- next")}, values("--- hello -- next"))
}

func TestSpansAreByteOffsets(t *testing.T) {
	toks := Tokens("'é' x")
	require.Len(t, toks, 3)
	assert.Equal(t, ir.Span{Start: 0, End: 4}, toks[0].Span)
	assert.Equal(t, ir.Span{Start: 4, End: 5}, toks[1].Span)
	assert.Equal(t, ir.Span{Start: 5, End: 6}, toks[2].Span)
}

func TestInvalidTerminationSharesSpan(t *testing.T) {
	toks := Tokens("123a")
	require.Len(t, toks, 3)
	assert.Equal(t, toks[0].Span, toks[1].Span)
}

func TestSource(t *testing.T) {
	h := ir.HashSource("1")
	rec := Source("a.penta", "1", h)

	assert.Equal(t, ir.TokenStreamID("a.penta"), rec.ID)
	assert.Equal(t, ir.FileID("a.penta"), rec.FileID)
	assert.Equal(t, h, rec.ContentHash)
	assert.Equal(t, ir.NewOnly, rec.Generation)
	assert.Equal(t, []string{"literal(1)@0..1"}, Describe(rec.Tokens))
}
