package translate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"shaderpp/internal/diag"
	"shaderpp/internal/loader"
	"shaderpp/internal/preprocess"
	"shaderpp/internal/source"
	"shaderpp/internal/srcmap"
)

// scenarioMap: lines 1-2 from common.glsl (10-11), lines 3-5 from main.vert (1-3)
func scenarioMap() *srcmap.Map {
	b := srcmap.NewBuilder("vertex")
	common := b.Origin(srcmap.Origin{Protocol: "local", Path: "/s/common.glsl", Display: "common.glsl"})
	main := b.Origin(srcmap.Origin{Protocol: "local", Path: "/s/main.vert", Display: "main.vert"})
	b.Append(common, 10)
	b.Append(common, 11)
	for i := uint32(1); i <= 3; i++ {
		b.Append(main, i)
	}
	return b.Map()
}

func TestTranslateScenario(t *testing.T) {
	res := New(scenarioMap()).Translate(context.Background(), "4: undeclared identifier\n")
	if len(res.Items) != 1 {
		t.Fatalf("items = %d", len(res.Items))
	}
	got := res.Items[0]
	if got.Status != Mapped || got.Loc.Path != "main.vert" || got.Loc.Line != 2 {
		t.Fatalf("translated to %+v, want main.vert:2", got)
	}
	if got.String() != "main.vert:2: undeclared identifier" {
		t.Fatalf("String() = %q", got.String())
	}
	if res.Err() != nil {
		t.Fatalf("Err() = %v", res.Err())
	}
}

func TestOutOfRangeIsKept(t *testing.T) {
	res := New(scenarioMap()).Translate(context.Background(), "9: too far\n0: zero line\n4294967296: huge\n0:4294967299(2): error: huge too\n")
	if len(res.Items) != 4 {
		t.Fatalf("diagnostics dropped: %+v", res.Items)
	}
	for _, it := range res.Items {
		if it.Status != OutOfRange {
			t.Fatalf("%q status = %v", it.Raw, it.Status)
		}
		if !strings.HasPrefix(it.String(), it.Raw) || !strings.Contains(it.String(), "translation not possible") {
			t.Fatalf("String() = %q", it.String())
		}
	}
	err := res.Err()
	if !errors.Is(err, ErrTranslationIncomplete) || res.Incomplete() != 4 {
		t.Fatalf("Err() = %v", err)
	}
	d := res.Items[0].Diagnostic()
	if d.Code != diag.TRTranslationIncomplete || d.Message != "9: too far" || len(d.Notes) != 1 {
		t.Fatalf("diagnostic = %+v", d)
	}
	huge := res.Items[2]
	if huge.Format != FormatPlain || huge.MergedLine != 0 || !strings.Contains(huge.String(), "line 4294967296 is outside") {
		t.Fatalf("overflowing line = %+v, %q", huge, huge.String())
	}
	if res.Items[3].Format != FormatMesa || res.Items[3].Severity != diag.SevError {
		t.Fatalf("overflowing mesa line = %+v", res.Items[3])
	}
}

func TestNoDeduplication(t *testing.T) {
	log := "0:3(1): error: a\n0:3(1): error: a\n0:3(7): warning: b\n"
	res := New(scenarioMap()).Translate(context.Background(), log)
	if len(res.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(res.Items))
	}
	for _, it := range res.Items {
		if it.Loc.Path != "main.vert" || it.Loc.Line != 1 {
			t.Fatalf("%q -> %v", it.Raw, it.Loc)
		}
	}
	if res.Items[2].Severity != diag.SevWarning || res.Items[2].Loc.Col != 7 {
		t.Fatalf("third = %+v", res.Items[2])
	}

	// dedup is the caller's choice
	bag := diag.NewBag(10)
	res.Report(diag.Dedup(diag.BagReporter{Bag: bag}))
	if bag.Len() != 2 {
		t.Fatalf("deduplicated bag has %d items", bag.Len())
	}
}

func TestDialects(t *testing.T) {
	m := scenarioMap()
	cases := []struct {
		line   string
		format Format
		status Status
		sev    diag.Severity
		loc    string
		msg    string
	}{
		{"0:4(12): error: `foo' undeclared", FormatMesa, Mapped, diag.SevError, "main.vert:2:12", "`foo' undeclared"},
		{"ERROR: 0:1: 'x' : undeclared identifier", FormatGlslang, Mapped, diag.SevError, "common.glsl:10", "'x' : undeclared identifier"},
		{"WARNING: 0:2: unused", FormatGlslang, Mapped, diag.SevWarning, "common.glsl:11", "unused"},
		{"0(5) : error C1008: undefined variable \"v\"", FormatNvidia, Mapped, diag.SevError, "main.vert:3", "undefined variable \"v\""},
		{"  5 : plain", FormatPlain, Mapped, diag.SevError, "main.vert:3", "plain"},
		{"ERROR: 2 compilation errors.  No code generated.", FormatNone, Unlocated, diag.SevError, "<unknown>", ""},
		{"warning: something global", FormatNone, Unlocated, diag.SevWarning, "<unknown>", ""},
		{"0:99(1): error: beyond", FormatMesa, OutOfRange, diag.SevError, "<unknown>", ""},
	}
	tr := New(m)
	for _, tc := range cases {
		got := tr.Line(tc.line)
		if got.Format != tc.format || got.Status != tc.status || got.Severity != tc.sev {
			t.Errorf("%q: format=%v status=%v sev=%v", tc.line, got.Format, got.Status, got.Severity)
			continue
		}
		if got.Loc.String() != tc.loc {
			t.Errorf("%q: loc = %s, want %s", tc.line, got.Loc, tc.loc)
		}
		if tc.msg != "" && got.Message != tc.msg {
			t.Errorf("%q: message = %q, want %q", tc.line, got.Message, tc.msg)
		}
		if got.Raw != tc.line {
			t.Errorf("%q: raw = %q", tc.line, got.Raw)
		}
	}
}

func TestDiagnosticsCodes(t *testing.T) {
	res := New(scenarioMap()).Translate(context.Background(), "0:1(1): warning: w\r\n\r\n0:1(1): note: n\r\nlinker failed\r\n")
	ds := res.Diagnostics()
	want := []diag.Code{diag.CmpWarning, diag.CmpNote, diag.TRUnlocated}
	var got []diag.Code
	for _, d := range ds {
		got = append(got, d.Code)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if !res.HasErrors() {
		t.Fatal("unlocated line without level counts as an error")
	}
	if msgs := res.Messages(); msgs[0] != "common.glsl:10:1: warning: w" {
		t.Fatalf("messages = %q", msgs)
	}
}

func TestRoundTripThroughEngine(t *testing.T) {
	r := loader.NewRegistry()
	if err := r.Register("mem", loader.NewMemory(map[string]string{
		"main.vert":   "#version 330\n#include_once common.glsl\nvoid main() {\n#include_once body.glsl\n}\n",
		"common.glsl": "uniform mat4 mvp;\n#include_once consts.glsl\nvec3 f();\n",
		"consts.glsl": "const float PI = 3.14;\n",
		"body.glsl":   "#include_once consts.glsl\ngl_Position = vec4(0);\n",
	})); err != nil {
		t.Fatal(err)
	}
	u, err := preprocess.NewEngine(r).Expand(context.Background(), "mem://main.vert", preprocess.StageVertex)
	if err != nil {
		t.Fatal(err)
	}

	var log strings.Builder
	for i := 1; i <= u.LineCount(); i++ {
		fmt.Fprintf(&log, "%d: synthetic\n", i)
	}
	res := New(u.Map).Translate(context.Background(), log.String())
	if len(res.Items) != u.LineCount() {
		t.Fatalf("items = %d, lines = %d", len(res.Items), u.LineCount())
	}

	merged := source.SplitLines(u.Text)
	for i, it := range res.Items {
		if it.Status != Mapped {
			t.Fatalf("line %d not mapped", i+1)
		}
		f, ok := u.FileSet().LookupDisplay(it.Loc.Path)
		if !ok {
			t.Fatalf("line %d maps to unknown fragment %s", i+1, it.Loc.Path)
		}
		if got := f.GetLine(it.Loc.Line); got != merged[i] {
			t.Fatalf("line %d: %s is %q, merged has %q", i+1, it.Loc, got, merged[i])
		}
	}
	if res.Items[0].Loc.String() != "mem://main.vert:1" || res.Items[2].Loc.String() != "mem://consts.glsl:1" {
		t.Fatalf("lines 1/3 -> %s / %s", res.Items[0].Loc, res.Items[2].Loc)
	}
}
