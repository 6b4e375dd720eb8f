package preprocess

import (
	"errors"
	"testing"

	"shaderpp/internal/ref"
)

func TestMatchDirective(t *testing.T) {
	cases := []struct {
		line string
		raw  string
		ok   bool
		bad  bool
	}{
		{"#include_once a.glsl", "a.glsl", true, false},
		{"  \t#include_once   a.glsl  ", "a.glsl", true, false},
		{`#include_once "dir/a b.glsl"`, "dir/a b.glsl", true, false},
		{"#include_once <lib/noise.glsl>", "lib/noise.glsl", true, false},
		{`#include_once"a.glsl"`, "a.glsl", true, false},
		{"#pragma include_once a.glsl", "a.glsl", true, false},
		{"# include_once a.glsl // shared", "a.glsl", true, false},
		{"#include_once a.glsl//shared", "a.glsl//shared", true, false},
		{"#include_once a//b.glsl", "a//b.glsl", true, false},
		{"#include_once ./lib//common.glsl // shared", "./lib//common.glsl", true, false},
		{`#include_once "a.glsl"// shared`, "a.glsl", true, false},
		{"#include_once <lib/a.glsl>//shared", "lib/a.glsl", true, false},
		{"#include_once custom://lib/a.glsl", "custom://lib/a.glsl", true, false},
		{"#include_once", "", true, true},
		{"#include_once \"a.glsl", "", true, true},
		{"#include_once a.glsl b.glsl", "", true, true},
		{"#include_once <>", "", true, true},
		{"#include a.glsl", "", false, false},
		{"#include_oncea.glsl", "", false, false},
		{"x = 1; #include_once a.glsl", "", false, false},
		{"", "", false, false},
	}
	for _, tc := range cases {
		raw, ok, err := matchDirective(tc.line)
		if ok != tc.ok {
			t.Errorf("%q: ok = %v, want %v", tc.line, ok, tc.ok)
			continue
		}
		if tc.bad {
			if !errors.Is(err, ref.ErrInvalidReference) {
				t.Errorf("%q: err = %v, want ErrInvalidReference", tc.line, err)
			}
			continue
		}
		if err != nil || raw != tc.raw {
			t.Errorf("%q: got (%q, %v), want %q", tc.line, raw, err, tc.raw)
		}
	}
}

func TestStages(t *testing.T) {
	for _, in := range []string{"vertex", "vert", ".vert", " VERTEX "} {
		if s, err := ParseStage(in); err != nil || s != StageVertex {
			t.Errorf("ParseStage(%q) = %v, %v", in, s, err)
		}
	}
	if _, err := ParseStage("pixel"); err == nil {
		t.Error("ParseStage(pixel) should fail")
	}
	if s, ok := StageFromPath(`shaders\basic.TESE`); !ok || s != StageTessEvaluation {
		t.Errorf("StageFromPath = %v, %v", s, ok)
	}
	if _, ok := StageFromPath("common.glsl"); ok {
		t.Error("glsl is not a stage extension")
	}
	if StageUnknown.String() != "unknown" || StageCompute.Ext() != ".comp" {
		t.Error("stage helpers")
	}
}
