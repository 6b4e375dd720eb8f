package diag

import (
	"cmp"
	"slices"
	"strings"

	"shaderpp/internal/source"
)

// LineOpts controls FormatLines.
type LineOpts struct {
	// Notes emits each note as its own "note" line after its diagnostic.
	Notes bool
	// Sorted orders lines by location for stable golden output. Otherwise
	// lines keep the input order, which for translated logs is the compiler's.
	Sorted bool
}

type line struct {
	label string
	code  Code
	loc   source.Location
	text  string
}

func (l line) String() string {
	return l.label + " " + l.code.ID() + " " + l.loc.String() + " " + OneLine(l.text)
}

// FormatLines renders one line per diagnostic:
//
//	<severity> <CODE> <path>:<line>[:<col>] <message>
func FormatLines(diags []Diagnostic, opts LineOpts) string {
	var out []line
	for _, d := range diags {
		out = append(out, line{label: d.Severity.Label(), code: d.Code, loc: d.Primary, text: d.Message})
		if !opts.Notes {
			continue
		}
		for _, n := range d.Notes {
			out = append(out, line{label: "note", code: d.Code, loc: n.Loc, text: n.Msg})
		}
	}
	if opts.Sorted {
		slices.SortStableFunc(out, func(a, b line) int {
			return cmp.Or(
				cmp.Compare(a.loc.Path, b.loc.Path),
				cmp.Compare(a.loc.Line, b.loc.Line),
				cmp.Compare(a.loc.Col, b.loc.Col),
				cmp.Compare(a.label, b.label),
				cmp.Compare(a.code, b.code),
				cmp.Compare(a.text, b.text),
			)
		})
	}
	rendered := make([]string, len(out))
	for i, l := range out {
		rendered[i] = l.String()
	}
	return strings.Join(rendered, "\n")
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// OneLine folds a multi-line message onto one line.
func OneLine(msg string) string {
	return strings.TrimSpace(lineBreaks.Replace(msg))
}
