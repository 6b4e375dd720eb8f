// Package translate rewrites compiler diagnostics that point into a merged
// compilation unit so they point at the fragment the author wrote.
//
// Every input line produces exactly one Translated value: lines are never
// dropped and never merged, even when several refer to the same merged line.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shaderpp/internal/diag"
	"shaderpp/internal/source"
	"shaderpp/internal/srcmap"
	"shaderpp/internal/trace"
)

// ErrTranslationIncomplete reports that at least one diagnostic referred to a
// line outside the merged output. It is informational: the raw diagnostic is
// still part of the result.
var ErrTranslationIncomplete = errors.New("translation incomplete")

// Status says how a diagnostic line was handled.
type Status uint8

const (
	// Mapped lines now point at an original fragment.
	Mapped Status = iota
	// OutOfRange lines named a merged line the unit does not have; kept raw.
	OutOfRange
	// Unlocated lines carried no recognisable line number; kept raw.
	Unlocated
)

func (s Status) String() string {
	switch s {
	case Mapped:
		return "mapped"
	case OutOfRange:
		return "out_of_range"
	default:
		return "unlocated"
	}
}

// Translated is one compiler diagnostic after translation.
type Translated struct {
	Status   Status
	Format   Format
	Severity diag.Severity
	// Level is the severity word as the compiler wrote it, empty for plain logs.
	Level   string
	Message string
	Raw     string
	// MergedLine is the line the compiler reported; 0 when unlocated or too large.
	MergedLine uint32
	Loc        source.Location
	Origin     srcmap.Origin

	lineText string
}

// String renders the diagnostic the way it is shown to users.
func (t Translated) String() string {
	switch t.Status {
	case Mapped:
		if t.Level != "" {
			return fmt.Sprintf("%s: %s: %s", t.Loc, t.Level, t.Message)
		}
		return fmt.Sprintf("%s: %s", t.Loc, t.Message)
	case OutOfRange:
		return t.Raw + " (" + t.note() + ")"
	default:
		return t.Raw
	}
}

func (t Translated) note() string {
	line := t.lineText
	if line == "" {
		line = fmt.Sprint(t.MergedLine)
	}
	return "translation not possible: line " + line + " is outside the merged output"
}

// Diagnostic converts t into the shared diagnostic model.
func (t Translated) Diagnostic() diag.Diagnostic {
	switch t.Status {
	case Mapped:
		return diag.New(t.Severity, compilerCode(t.Severity), t.Loc, t.Message)
	case OutOfRange:
		return diag.New(t.Severity, diag.TRTranslationIncomplete, source.Location{}, t.Raw).
			WithNote(source.Location{}, t.note())
	default:
		return diag.New(t.Severity, diag.TRUnlocated, source.Location{}, t.Raw)
	}
}

func compilerCode(sev diag.Severity) diag.Code {
	switch sev {
	case diag.SevWarning:
		return diag.CmpWarning
	case diag.SevInfo:
		return diag.CmpNote
	default:
		return diag.CmpError
	}
}

// Result holds every translated line in input order.
type Result struct {
	Items []Translated
}

// Incomplete counts diagnostics that could not be mapped because their line was out of range.
func (r *Result) Incomplete() int {
	n := 0
	for i := range r.Items {
		if r.Items[i].Status == OutOfRange {
			n++
		}
	}
	return n
}

// Err returns ErrTranslationIncomplete (wrapped with a count) when some lines were out of range.
func (r *Result) Err() error {
	if n := r.Incomplete(); n > 0 {
		return fmt.Errorf("%w: %d diagnostic(s) outside the merged output", ErrTranslationIncomplete, n)
	}
	return nil
}

// Messages returns the user-facing strings, one per diagnostic.
func (r *Result) Messages() []string {
	out := make([]string, len(r.Items))
	for i, t := range r.Items {
		out[i] = t.String()
	}
	return out
}

// Diagnostics converts every item.
func (r *Result) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(r.Items))
	for i, t := range r.Items {
		out[i] = t.Diagnostic()
	}
	return out
}

// Report forwards every item to rep.
func (r *Result) Report(rep diag.Reporter) {
	for _, d := range r.Diagnostics() {
		rep.Report(d)
	}
}

// HasErrors reports whether any item has error severity.
func (r *Result) HasErrors() bool {
	for i := range r.Items {
		if r.Items[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Translator maps diagnostics through one unit's source map. It only reads the
// map and may be shared between goroutines.
type Translator struct {
	m *srcmap.Map
}

// New returns a translator for m.
func New(m *srcmap.Map) *Translator {
	return &Translator{m: m}
}

// Translate processes a whole compiler log. Blank lines are skipped.
func (t *Translator) Translate(ctx context.Context, log string) *Result {
	_, span := trace.Start(ctx, trace.ScopeUnit, "translate")

	normalized, _ := source.Normalize([]byte(log))
	res := &Result{}
	for _, line := range source.SplitLines(string(normalized)) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		res.Items = append(res.Items, t.Line(line))
	}

	span.WithExtra("incomplete", fmt.Sprint(res.Incomplete())).End(fmt.Sprintf("%d diagnostics", len(res.Items)))
	return res
}

// Line translates a single diagnostic line.
func (t *Translator) Line(text string) Translated {
	text = strings.TrimRight(text, "\r\n")
	p := parseLine(text)
	tr := Translated{
		Format:     p.format,
		Level:      p.level,
		Severity:   diag.ParseSeverity(p.level),
		Message:    p.msg,
		Raw:        text,
		MergedLine: p.line,
		lineText:   p.lineText,
	}
	if p.format == FormatNone {
		tr.Status = Unlocated
		return tr
	}

	origin, origLine, ok := t.m.Lookup(p.line)
	if !ok {
		tr.Status = OutOfRange
		return tr
	}
	tr.Status = Mapped
	tr.Origin = origin
	tr.Loc = source.Location{Path: origin.String(), Line: origLine, Col: p.col}
	return tr
}
