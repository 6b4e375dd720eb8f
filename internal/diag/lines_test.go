package diag

import (
	"testing"

	"shaderpp/internal/source"
)

func TestFormatLines(t *testing.T) {
	diags := []Diagnostic{
		NewError(PPCyclicInclude, source.Location{Path: "b.glsl", Line: 2}, "first line\nsecond").
			WithNote(source.Location{Path: "a.glsl", Line: 2}, "included from here"),
		New(SevWarning, CmpWarning, source.Location{Path: "a.glsl", Line: 7, Col: 3}, "another"),
		New(SevError, TRUnlocated, source.Location{}, "linker said no"),
	}

	golden := "error TR2002 <unknown> linker said no\n" +
		"note PP1004 a.glsl:2 included from here\n" +
		"warning CMP3002 a.glsl:7:3 another\n" +
		"error PP1004 b.glsl:2 first line second"
	if got := FormatLines(diags, LineOpts{Notes: true, Sorted: true}); got != golden {
		t.Fatalf("sorted lines:\nwant:\n%s\n\ngot:\n%s", golden, got)
	}

	inOrder := "error PP1004 b.glsl:2 first line second\n" +
		"warning CMP3002 a.glsl:7:3 another\n" +
		"error TR2002 <unknown> linker said no"
	if got := FormatLines(diags, LineOpts{}); got != inOrder {
		t.Fatalf("input-order lines:\n%s", got)
	}
	if FormatLines(nil, LineOpts{Notes: true}) != "" {
		t.Fatal("no diagnostics should render nothing")
	}
}

func TestOneLine(t *testing.T) {
	if got := OneLine(" a\r\nb\rc\n"); got != "a b c" {
		t.Fatalf("OneLine = %q", got)
	}
}
