package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"shaderpp/internal/diag"
	"shaderpp/internal/source"
)

type palette struct {
	err, warn, info, loc, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		loc:    color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.loc, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() в текущем порядке. Для каждой диагностики:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строки исходника из fs (если фрагмент известен) с ^ под колонкой,
// затем Notes. fs может быть nil.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := formatLocation(d.Primary, opts.PathMode)
		p.loc.Fprint(w, loc.String())
		fmt.Fprint(w, ": ")
		p.severity(d.Severity).Fprintf(w, "%s %s", d.Severity, d.Code.ID())
		fmt.Fprintf(w, ": %s\n", d.Message)

		if fs != nil && d.Primary.Known() {
			if f, ok := fs.LookupDisplay(d.Primary.Path); ok {
				printContext(w, p, f, d.Primary, int(opts.Context))
			}
		}

		if opts.ShowNotes {
			for _, n := range d.Notes {
				p.note.Fprint(w, "  = note: ")
				if n.Loc.Path != "" {
					fmt.Fprintf(w, "%s: ", formatLocation(n.Loc, opts.PathMode))
				}
				fmt.Fprintln(w, n.Msg)
			}
		}
	}
}

func printContext(w io.Writer, p palette, f *source.File, loc source.Location, ctxLines int) {
	first := int(loc.Line) - ctxLines
	last := int(loc.Line) + ctxLines
	first = max(first, 1)
	last = min(last, int(f.LineCount()))
	if first > last {
		return
	}
	width := len(strconv.Itoa(last))

	for n := first; n <= last; n++ {
		text := f.GetLine(uint32(n)) //nolint:gosec // 1 <= n <= LineCount
		p.gutter.Fprintf(w, "%*d | ", width, n)
		fmt.Fprintln(w, text)
		if n == int(loc.Line) && loc.Col > 0 {
			p.gutter.Fprintf(w, "%*s | ", width, "")
			p.caret.Fprintln(w, strings.Repeat(" ", caretOffset(text, loc.Col))+"^")
		}
	}
}

// caretOffset converts a 1-based byte column into display cells so the caret
// lines up under tabs and wide runes.
func caretOffset(line string, col uint32) int {
	end := min(int(col-1), len(line))
	prefix := line[:end]
	cells := 0
	for _, r := range prefix {
		if r == '\t' {
			cells += 4 - cells%4
			continue
		}
		cells += runewidth.RuneWidth(r)
	}
	return cells
}
