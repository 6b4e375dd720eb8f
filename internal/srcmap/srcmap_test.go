package srcmap

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

// buildScenario: lines 1-2 from common.glsl (10-11), lines 3-5 from main.vert (1-3)
func buildScenario() *Map {
	b := NewBuilder("vertex")
	common := b.Origin(Origin{Protocol: "local", Path: "/s/common.glsl", Display: "common.glsl"})
	main := b.Origin(Origin{Protocol: "local", Path: "/s/main.vert", Display: "main.vert"})
	b.Append(common, 10)
	b.Append(common, 11)
	b.Append(main, 1)
	b.Append(main, 2)
	b.Append(main, 3)
	return b.Map()
}

func TestLookup(t *testing.T) {
	m := buildScenario()
	if m.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", m.Len())
	}
	o, line, ok := m.Lookup(4)
	if !ok || o.Display != "main.vert" || line != 2 {
		t.Fatalf("Lookup(4) = %v:%d ok=%v, want main.vert:2", o, line, ok)
	}
	o, line, ok = m.Lookup(1)
	if !ok || o.String() != "common.glsl" || line != 10 {
		t.Fatalf("Lookup(1) = %v:%d", o, line)
	}
	for _, bad := range []uint32{0, 6, 100} {
		if _, _, ok := m.Lookup(bad); ok {
			t.Errorf("Lookup(%d) should be out of range", bad)
		}
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBuilderInternsOrigins(t *testing.T) {
	b := NewBuilder("")
	o := Origin{Protocol: "mem", Path: "a.glsl"}
	if b.Origin(o) != b.Origin(o) {
		t.Fatal("same origin must intern to one index")
	}
	if b.Origin(Origin{Path: "<stdin>"}) != 1 {
		t.Fatal("distinct origin should get the next index")
	}
	m := b.Map()
	if len(m.Origins) != 2 || m.Len() != 0 {
		t.Fatalf("unexpected map %+v", m)
	}
	if !m.Origins[1].Raw() || m.Origins[1].String() != "<stdin>" {
		t.Fatalf("raw origin rendered as %q", m.Origins[1])
	}
	if m.Origins[0].String() != "mem://a.glsl" {
		t.Fatalf("origin without display rendered as %q", m.Origins[0])
	}
}

func TestValidateRejectsBrokenMaps(t *testing.T) {
	cases := map[string]*Map{
		"gap":        {Schema: SchemaVersion, Origins: []Origin{{Path: "x"}}, Entries: []Entry{{Line: 1, OrigLine: 1}, {Line: 3, OrigLine: 2}}},
		"bad origin": {Schema: SchemaVersion, Origins: []Origin{{Path: "x"}}, Entries: []Entry{{Line: 1, Origin: 4, OrigLine: 1}}},
		"zero line":  {Schema: SchemaVersion, Origins: []Origin{{Path: "x"}}, Entries: []Entry{{Line: 1, OrigLine: 0}}},
	}
	for name, m := range cases {
		if err := m.Validate(); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: Validate() = %v, want ErrMalformed", name, err)
		}
	}
}

func TestSidecarRoundTrip(t *testing.T) {
	m := buildScenario()
	path := filepath.Join(t.TempDir(), "out", SidecarPath("basic.vert"))
	if err := WriteFile(path, m); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, m)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "tmp-*"))
	if len(matches) != 0 {
		t.Fatalf("temporary files left behind: %v", matches)
	}
}

func TestDecodeRejectsSchema(t *testing.T) {
	m := buildScenario()
	m.Schema = SchemaVersion + 1
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrSchema) {
		t.Fatalf("Decode error = %v, want ErrSchema", err)
	}
}
