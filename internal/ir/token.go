package ir

import "fmt"

// TokenKind classifies a lexed token.
type TokenKind uint8

const (
	TokenKeyword TokenKind = iota + 1
	TokenComma
	TokenLiteral
	TokenIdentifier
	TokenTrivia
	TokenUnknown
)

// Keyword enumerates reserved words.
type Keyword uint8

const (
	KeywordDef Keyword = iota + 1
	KeywordFn
	KeywordEndFn
	KeywordTest
	KeywordEndTest
)

var keywords = map[string]Keyword{
	"def":      KeywordDef,
	"fn":       KeywordFn,
	"end-fn":   KeywordEndFn,
	"test":     KeywordTest,
	"end-test": KeywordEndTest,
}

// LookupKeyword returns the keyword spelled s, if any.
func LookupKeyword(s string) (Keyword, bool) {
	k, ok := keywords[s]
	return k, ok
}

var keywordNames = [...]string{
	KeywordDef:     "def",
	KeywordFn:      "fn",
	KeywordEndFn:   "end-fn",
	KeywordTest:    "test",
	KeywordEndTest: "end-test",
}

func (k Keyword) String() string {
	if k >= KeywordDef && k <= KeywordEndTest {
		return keywordNames[k]
	}
	return fmt.Sprintf("Keyword(%d)", uint8(k))
}

// Trivia enumerates tokens the parser does not treat as terms.
type Trivia uint8

const (
	TriviaWhitespace Trivia = iota + 1
	TriviaComment
	// TriviaInvalidTermination marks a term that runs straight into another
	// token without a comma or whitespace in between.
	TriviaInvalidTermination
)

// Token is a single lexed token. Which fields are set depends on Kind:
// Keyword for TokenKeyword, Literal for TokenLiteral, Text for
// TokenIdentifier, TokenUnknown and comment trivia, Trivia for TokenTrivia.
type Token struct {
	Kind    TokenKind
	Keyword Keyword
	Literal Value
	Text    string
	Trivia  Trivia
}

// Skippable reports whether the parser ignores this token.
func (t Token) Skippable() bool {
	return t.Kind == TokenTrivia && (t.Trivia == TriviaWhitespace || t.Trivia == TriviaComment)
}

func (t Token) String() string {
	switch t.Kind {
	case TokenKeyword:
		return t.Keyword.String()
	case TokenComma:
		return ","
	case TokenLiteral:
		return fmt.Sprintf("literal(%s)", t.Literal)
	case TokenIdentifier:
		return fmt.Sprintf("ident(%s)", t.Text)
	case TokenTrivia:
		switch t.Trivia {
		case TriviaWhitespace:
			return "whitespace"
		case TriviaComment:
			return "comment"
		default:
			return "invalid_termination"
		}
	case TokenUnknown:
		return fmt.Sprintf("unknown(%s)", t.Text)
	default:
		return "token(?)"
	}
}
