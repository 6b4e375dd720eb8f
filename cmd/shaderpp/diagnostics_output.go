package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shaderpp/internal/diag"
	"shaderpp/internal/diagfmt"
	"shaderpp/internal/source"
)

func addDiagnosticFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "diagnostic format (pretty|short|json)")
	cmd.Flags().String("path-mode", "auto", "how file names are printed (auto|basename)")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
}

type diagOutput struct {
	format  string
	pretty  diagfmt.PrettyOpts
	json    diagfmt.JSONOpts
	maxDiag int
}

func readDiagOutput(cmd *cobra.Command) (diagOutput, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return diagOutput{}, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json":
	default:
		return diagOutput{}, fmt.Errorf("unknown format %q (expected pretty|short|json)", format)
	}
	pm, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return diagOutput{}, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := diagfmt.ParsePathMode(pm)
	if !ok {
		return diagOutput{}, fmt.Errorf("invalid --path-mode %q (expected auto|basename)", pm)
	}
	notes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return diagOutput{}, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	maxDiag := maxDiagnostics(cmd)
	return diagOutput{
		format: format,
		pretty: diagfmt.PrettyOpts{
			Color:     useColor(),
			Context:   1,
			PathMode:  pathMode,
			ShowNotes: notes,
		},
		json:    diagfmt.JSONOpts{PathMode: pathMode, Max: maxDiag, IncludeNotes: notes},
		maxDiag: maxDiag,
	}, nil
}

// render prints bag; fs supplies source context for pretty output and may be nil.
func (o diagOutput) render(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		if o.format == "json" {
			return diagfmt.JSON(w, diag.NewBag(0), o.json)
		}
		return nil
	}
	switch o.format {
	case "json":
		return diagfmt.JSON(w, bag, o.json)
	case "short":
		if err := diagfmt.Short(w, bag, o.pretty); err != nil {
			return err
		}
	default:
		diagfmt.Pretty(w, bag, fs, o.pretty)
	}
	if n := bag.Dropped(); n > 0 {
		_, err := fmt.Fprintf(w, "%d more diagnostic(s) not shown (--max-diagnostics)\n", n)
		return err
	}
	return nil
}
