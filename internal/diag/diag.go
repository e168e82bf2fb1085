// Package diag turns span-located diagnostics into self-contained reports
// and renders them against their source text.
//
// Spans are byte offsets. Columns are counted in characters, and carets
// are padded by display width so that wide runes line up in a terminal.
package diag

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/roach88/pentagram/internal/ir"
)

// replIndent is the width of the REPL prompt gutter that carets and
// messages are indented by.
const replIndent = "      "

// ResolvedDiagnostic is a diagnostic bundled with the source it points
// into. It needs no database access to be rendered.
type ResolvedDiagnostic struct {
	Path    string
	Source  string
	Span    ir.Span
	Message string
}

// Error returns the bare message.
func (d *ResolvedDiagnostic) Error() string {
	return d.Message
}

// Resolve attaches file's path and source to d.
func Resolve(d *ir.Diagnostic, file *ir.FileRecord) *ResolvedDiagnostic {
	return &ResolvedDiagnostic{
		Path:    file.Path,
		Source:  file.Source,
		Span:    d.Span,
		Message: d.Message,
	}
}

// Location is the line a span starts on.
type Location struct {
	// Line is 1-based.
	Line int
	// Column counts characters from the start of the line, 0-based.
	Column int
	// Text is the full line without its newline.
	Text string
}

// Locate finds the line containing byte offset in source. An offset at the
// end of source, or one that does not fall on a character boundary, is
// placed after the last character scanned.
func Locate(source string, offset int) Location {
	line, lineStart, column := 0, 0, 0
	for i, r := range source {
		if i == offset {
			break
		}
		if r == '\n' {
			line++
			lineStart = i + 1
			column = 0
			continue
		}
		column++
	}
	end := strings.IndexByte(source[lineStart:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += lineStart
	}
	return Location{Line: line + 1, Column: column, Text: source[lineStart:end]}
}

// Locate returns where d starts.
func (d *ResolvedDiagnostic) Locate() Location {
	return Locate(d.Source, d.Span.Start)
}

// Render writes d in the file style:
//
//	Error in main.penta:2:5: Undefined reference: foo
//	    foo
//	    ^
func Render(w io.Writer, d *ResolvedDiagnostic) error {
	loc := d.Locate()
	_, err := fmt.Fprintf(w, "Error in %s:%d:%d: %s\n%s\n%s^\n",
		d.Path, loc.Line, loc.Column+1, d.Message, loc.Text, pad(loc))
	return err
}

// RenderREPL writes d as a caret under the line the user just typed,
// followed by the message. Diagnostics pointing at an earlier line of the
// session fall back to the file style.
func RenderREPL(w io.Writer, d *ResolvedDiagnostic) error {
	loc := d.Locate()
	if loc.Line != strings.Count(d.Source, "\n")+1 {
		return Render(w, d)
	}
	_, err := fmt.Fprintf(w, "%s%s^\n%s%s\n", replIndent, pad(loc), replIndent, d.Message)
	return err
}

// pad returns spaces covering the display width of the first loc.Column
// characters of loc.Text.
func pad(loc Location) string {
	cells := 0
	n := 0
	for _, r := range loc.Text {
		if n == loc.Column {
			break
		}
		cells += cellWidth(r)
		n++
	}
	// A caret past the end of the line sits just after it.
	cells += loc.Column - n
	return strings.Repeat(" ", cells)
}

func cellWidth(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
