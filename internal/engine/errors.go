package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/pentagram/internal/diag"
)

// Error is returned by every Execute method when a batch rolls back.
//
// Err is a *diag.ResolvedDiagnostic whenever the failure was located in
// source; otherwise it is the underlying error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Batch is the id of the batch that rolled back.
	Batch string

	Err error
}

// ErrorCode categorizes batch failures.
type ErrorCode string

const (
	// CodeSyntax is a lex or parse failure.
	CodeSyntax ErrorCode = "SYNTAX_ERROR"

	// CodeResolution is an undefined reference or a redefinition.
	CodeResolution ErrorCode = "RESOLUTION_ERROR"

	// CodeRuntime is an evaluation failure, including failure to write to
	// the output sink.
	CodeRuntime ErrorCode = "RUNTIME_ERROR"

	// CodeInternal is a broken invariant inside the engine.
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error returns the underlying message, so a resolved diagnostic prints as
// its bare message.
func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(code ErrorCode, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf returns the category of err, or "" if err did not come from a
// batch.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsSyntaxError reports whether err is a lex or parse failure.
func IsSyntaxError(err error) bool { return CodeOf(err) == CodeSyntax }

// IsResolutionError reports whether err is a name resolution failure.
func IsResolutionError(err error) bool { return CodeOf(err) == CodeResolution }

// IsRuntimeError reports whether err is an evaluation failure.
func IsRuntimeError(err error) bool { return CodeOf(err) == CodeRuntime }

// Diagnostic extracts the resolved diagnostic carried by err.
func Diagnostic(err error) (*diag.ResolvedDiagnostic, bool) {
	var d *diag.ResolvedDiagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// errUnknownFile is reported when a diagnostic names a file the database
// does not hold, which means a phase produced a diagnostic against the
// wrong file id.
func errUnknownFile(err error, file string) error {
	return fmt.Errorf("diagnostic for unknown file %q: %w", file, err)
}
