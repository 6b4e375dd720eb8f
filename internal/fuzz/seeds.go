package fuzztests

import "testing"

const maxFuzzInput = 1 << 16 // 64 KiB

var referenceSeeds = []string{
	"common.glsl",
	"lib://noise.glsl",
	"mem://a/../b.glsl",
	`dir\sub\file.glsl`,
	"C:/shaders/x.frag",
	"://x",
	"bad:/x",
	"",
	"   ",
	"mem://",
	"a/./b//c/../d.glsl",
	"e\u0301.glsl",
}

var sourceSeeds = []string{
	"#include_once a.glsl\nvoid main() {}\n",
	"#pragma include_once \"b.glsl\"\n#include_once <a.glsl>\n",
	"#include_once\n",
	"#include_once \"unterminated\n",
	"  #  include_once a.glsl // trailing\r\n",
	"\ufeff#version 450\r\n#include_once c.glsl\r\n",
	"#include_once x://nope\n",
	"#include_once self.glsl\n",
	"no directives at all",
	"",
}

var logSeeds = []string{
	"4: undeclared identifier\n",
	"0:3(12): error: `x' undeclared\n",
	"ERROR: 0:2: 'y' : syntax error\n",
	"0(7) : error C1008: undefined variable \"z\"\n",
	"WARNING: 0:999999999999: overflow\n",
	"0: zero\n",
	"linker error without location\n",
	"\r\n\r\n",
}

// files every harness can include; loop1 and loop2 include each other.
var fuzzFiles = map[string]string{
	"a.glsl":     "#include_once b.glsl\nfloat a;\n",
	"b.glsl":     "#include_once c.glsl\nfloat b;\n",
	"c.glsl":     "float c;\n",
	"self.glsl":  "#include_once self.glsl\n",
	"loop1.glsl": "#include_once loop2.glsl\n",
	"loop2.glsl": "#include_once loop1.glsl\n",
}

func addStringSeeds(f *testing.F, seeds []string) {
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

func clip(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
