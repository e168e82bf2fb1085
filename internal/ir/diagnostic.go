package ir

import (
	"errors"
	"fmt"
)

// Diagnostic is an error located at a byte span in a file. Lexing, parsing,
// resolution and evaluation all report failures as diagnostics.
type Diagnostic struct {
	FileID  FileID
	Span    Span
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("Error in %s at %s: %s", d.FileID, d.Span, d.Message)
}

// Errorf builds a diagnostic with a formatted message.
func Errorf(file FileID, span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{FileID: file, Span: span, Message: fmt.Sprintf(format, args...)}
}

// AsDiagnostic extracts a diagnostic from err's chain.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
