package ir

import (
	"fmt"
	"strconv"
)

// FileID identifies a source file by path, or the synthetic REPL file.
type FileID string

// FunctionID identifies a function. It is the function's name.
type FunctionID string

// TestID identifies a test as "<path>.<item-index>".
type TestID string

// StatementID identifies a top-level statement.
type StatementID string

// TokenStreamID identifies the cached token stream of a file.
type TokenStreamID string

// ReplFileID is the synthetic file that accumulates REPL definitions.
const ReplFileID FileID = "repl"

// Span is a half-open byte range [Start, End) into a file's source.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Len returns the span width in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Shift moves the span by delta bytes.
func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Spanned pairs a value with the source range it was read from.
type Spanned[T any] struct {
	Value T
	Span  Span
}

// At wraps v with span s.
func At[T any](v T, s Span) Spanned[T] {
	return Spanned[T]{Value: v, Span: s}
}

// Value is a runtime value of the language. The variant set is closed:
// Integer, String and Boolean.
//
// Values are comparable with ==; values of different variants are never
// equal.
type Value interface {
	isValue()
	String() string
}

// Integer is a signed 64-bit integer value.
type Integer int64

// String is a string value.
type String string

// Boolean is a boolean value.
type Boolean bool

func (Integer) isValue() {}
func (String) isValue()  {}
func (Boolean) isValue() {}

func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }
func (v String) String() string  { return string(v) }
func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }

// Term is an unresolved syntax term: a Literal or a Word.
type Term interface {
	isTerm()
}

// ResolvedTerm is a term after name resolution: a Literal or a WordRef.
type ResolvedTerm interface {
	isResolvedTerm()
}

// Literal pushes a constant value.
type Literal struct {
	Value Value
}

// Word is a reference to a builtin or function, by name.
type Word struct {
	Name string
}

// WordRef is a word whose target has been resolved.
type WordRef struct {
	Target ResolvedWord
}

func (Literal) isTerm()         {}
func (Word) isTerm()            {}
func (Literal) isResolvedTerm() {}
func (WordRef) isResolvedTerm() {}

// ResolvedWord is the target of a resolved word: a Builtin or a FunctionID.
type ResolvedWord interface {
	isResolvedWord()
}

func (Builtin) isResolvedWord()    {}
func (FunctionID) isResolvedWord() {}

// Builtin enumerates the fixed operations of the language.
type Builtin uint8

const (
	BuiltinAdd Builtin = iota + 1
	BuiltinEq
	BuiltinSay
	BuiltinAssert
)

var builtinNames = map[string]Builtin{
	"+":      BuiltinAdd,
	"eq":     BuiltinEq,
	"say":    BuiltinSay,
	"assert": BuiltinAssert,
}

// ParseBuiltin returns the builtin spelled name, if any.
func ParseBuiltin(name string) (Builtin, bool) {
	b, ok := builtinNames[name]
	return b, ok
}

func (b Builtin) String() string {
	switch b {
	case BuiltinAdd:
		return "+"
	case BuiltinEq:
		return "eq"
	case BuiltinSay:
		return "say"
	case BuiltinAssert:
		return "assert"
	default:
		return fmt.Sprintf("Builtin(%d)", uint8(b))
	}
}

// Callees returns the distinct function ids referenced by body, in first
// occurrence order. Builtins are not calls.
func Callees(body []Spanned[ResolvedTerm]) []FunctionID {
	var out []FunctionID
	seen := make(map[FunctionID]bool)
	for _, t := range body {
		ref, ok := t.Value.(WordRef)
		if !ok {
			continue
		}
		id, ok := ref.Target.(FunctionID)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
