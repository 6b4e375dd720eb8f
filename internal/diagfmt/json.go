package diagfmt

import (
	"encoding/json"
	"io"

	"shaderpp/internal/diag"
	"shaderpp/internal/source"
)

// JSONLocation is a file position; zero fields are omitted.
type JSONLocation struct {
	File   string `json:"file,omitempty"`
	Line   uint32 `json:"line,omitempty"`
	Column uint32 `json:"column,omitempty"`
}

type JSONNote struct {
	Message  string       `json:"message"`
	Location JSONLocation `json:"location"`
}

type JSONDiagnostic struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location JSONLocation `json:"location"`
	Notes    []JSONNote   `json:"notes,omitempty"`
}

// JSONReport is the document written by JSON.
type JSONReport struct {
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
	// Truncated counts diagnostics left out by JSONOpts.Max or the bag limit.
	Truncated int `json:"truncated,omitempty"`
}

func jsonLocation(loc source.Location, mode PathMode) JSONLocation {
	loc = formatLocation(loc, mode)
	return JSONLocation{File: loc.Path, Line: loc.Line, Column: loc.Col}
}

// NewJSONReport converts bag without encoding it.
func NewJSONReport(bag *diag.Bag, opts JSONOpts) JSONReport {
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	r := JSONReport{
		Diagnostics: make([]JSONDiagnostic, 0, len(items)),
		Truncated:   bag.Len() - len(items) + bag.Dropped(),
	}
	for _, d := range items {
		entry := JSONDiagnostic{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: jsonLocation(d.Primary, opts.PathMode),
		}
		// у таймингов всё содержимое в заметках
		if opts.IncludeNotes || d.Code == diag.ObsTimings {
			for _, n := range d.Notes {
				entry.Notes = append(entry.Notes, JSONNote{Message: n.Msg, Location: jsonLocation(n.Loc, opts.PathMode)})
			}
		}
		switch d.Severity {
		case diag.SevError:
			r.Errors++
		case diag.SevWarning:
			r.Warnings++
		}
		r.Diagnostics = append(r.Diagnostics, entry)
	}
	r.Count = len(r.Diagnostics)
	return r
}

// JSON writes bag as an indented JSONReport.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewJSONReport(bag, opts))
}
