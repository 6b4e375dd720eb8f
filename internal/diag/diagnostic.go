package diag

import (
	"fmt"

	"shaderpp/internal/source"
)

// Note points at a secondary location, e.g. an "included from" frame.
type Note struct {
	Loc source.Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Location
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Location, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// Errorf builds an error diagnostic with a formatted message.
func Errorf(code Code, primary source.Location, format string, args ...any) Diagnostic {
	return New(SevError, code, primary, fmt.Sprintf(format, args...))
}

// WithNote returns a copy of d with one more note.
func (d Diagnostic) WithNote(loc source.Location, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Loc: loc, Msg: msg})
	return d
}

type identity struct {
	code Code
	sev  Severity
	loc  source.Location
	msg  string
}

// identity is what two diagnostics must share to count as duplicates.
// Notes are not part of it.
func (d Diagnostic) identity() identity {
	return identity{code: d.Code, sev: d.Severity, loc: d.Primary, msg: d.Message}
}
