package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"shaderpp/internal/diag"
	"shaderpp/internal/source"
)

func sampleBag() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	fs.AddText("local:///p/shaders/main.vert", "shaders/main.vert", "#version 330\nvec3 p = foo;\nvoid main() {}\n")

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.CmpError, source.Location{Path: "shaders/main.vert", Line: 2, Col: 10}, "'foo' : undeclared identifier").
		WithNote(source.Location{Path: "shaders/main.vert", Line: 2}, "merged line 5"))
	bag.Add(diag.New(diag.SevWarning, diag.TRUnlocated, source.Location{}, "WARNING: 1 compilation warning"))
	return bag, fs
}

func TestPretty(t *testing.T) {
	bag, fs := sampleBag()
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowNotes: true})
	out := buf.String()

	for _, want := range []string{
		"shaders/main.vert:2:10: ERROR CMP3001: 'foo' : undeclared identifier",
		"1 | #version 330",
		"2 | vec3 p = foo;",
		"  |          ^",
		"3 | void main() {}",
		"= note: shaders/main.vert:2: merged line 5",
		"<unknown>: WARNING TR2002: WARNING: 1 compilation warning",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes with Color=false:\n%q", out)
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected colour codes with Color=true")
	}
}

func TestPrettyWithoutFileSet(t *testing.T) {
	bag, _ := sampleBag()
	var buf bytes.Buffer
	Pretty(&buf, bag, nil, PrettyOpts{PathMode: PathModeBasename})
	if !strings.HasPrefix(buf.String(), "main.vert:2:10: ERROR") {
		t.Fatalf("output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "|") {
		t.Fatalf("no context expected without a FileSet:\n%s", buf.String())
	}
}

func TestCaretOffset(t *testing.T) {
	cases := []struct {
		line string
		col  uint32
		want int
	}{
		{"abc", 1, 0},
		{"abc", 3, 2},
		{"\tx", 2, 4},
		{"日本x", 7, 4},
		{"ab", 10, 2},
	}
	for _, tc := range cases {
		if got := caretOffset(tc.line, tc.col); got != tc.want {
			t.Errorf("caretOffset(%q, %d) = %d, want %d", tc.line, tc.col, got, tc.want)
		}
	}
}

func TestShort(t *testing.T) {
	bag, _ := sampleBag()
	var buf bytes.Buffer
	if err := Short(&buf, bag, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	want := "error CMP3001 main.vert:2:10 'foo' : undeclared identifier\n" +
		"warning TR2002 <unknown> WARNING: 1 compilation warning\n"
	if buf.String() != want {
		t.Fatalf("short:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestJSON(t *testing.T) {
	bag, _ := sampleBag()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, JSONOpts{Max: 1, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out JSONReport
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 || out.Truncated != 1 || out.Errors != 1 {
		t.Fatalf("report = %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Severity != "error" || d.Code != "CMP3001" || d.Location.File != "shaders/main.vert" || d.Location.Line != 2 || d.Location.Column != 10 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if len(d.Notes) != 1 {
		t.Fatalf("notes = %+v", d.Notes)
	}
	if _, ok := ParsePathMode("weird"); ok {
		t.Fatal("ParsePathMode accepted junk")
	}
}
