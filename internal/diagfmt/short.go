package diagfmt

import (
	"fmt"
	"io"

	"shaderpp/internal/diag"
)

// Short prints one line per diagnostic in bag order.
func Short(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	items := make([]diag.Diagnostic, len(bag.Items()))
	for i, d := range bag.Items() {
		d.Primary = formatLocation(d.Primary, opts.PathMode)
		items[i] = d
	}
	out := diag.FormatLines(items, diag.LineOpts{Notes: opts.ShowNotes})
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
