package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"shaderpp/internal/preprocess"
	"shaderpp/internal/ref"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[package]\nname = \"demo\"\n")
	nested := filepath.Join(root, "shaders", "lib")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.Abs(filepath.Join(root, ManifestName))
	if got != want {
		t.Fatalf("manifest = %q, want %q", got, want)
	}

	// a directory with the manifest's name is not a manifest
	if err := os.MkdirAll(filepath.Join(nested, ManifestName), 0o755); err != nil {
		t.Fatal(err)
	}
	if got, _, _ := FindManifest(nested); got != want {
		t.Fatalf("manifest dir was taken for a file: %q", got)
	}
}

func TestFindManifestMissing(t *testing.T) {
	_, ok, err := FindManifest(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// TempDir may live under a directory with a manifest only in very odd setups
	if ok {
		t.Skip("found a manifest above the temp dir")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
		substr  string
	}{
		{name: "no package", content: "[output]\ndir = \"out\"\n", want: ErrPackageSectionMissing},
		{name: "no name", content: "[package]\n", want: ErrPackageNameMissing},
		{name: "blank name", content: "[package]\nname = \"  \"\n", want: ErrPackageNameMissing},
		{name: "unknown key", content: "[package]\nname = \"x\"\nflavour = 1\n", want: ErrUnknownKey, substr: "package.flavour"},
		{name: "protocol without root", content: "[package]\nname = \"x\"\n[protocols.lib]\n", substr: "[protocols.lib].root"},
		{name: "local redefined", content: "[package]\nname = \"x\"\n[protocols.local]\nroot = \"a\"\n", substr: "[protocols.local]"},
		{name: "empty program", content: "[package]\nname = \"x\"\n[programs.p]\n", substr: "has no stages"},
		{name: "negative depth", content: "[package]\nname = \"x\"\n[preprocess]\nmax_depth = -1\n", substr: "max_depth"},
		{name: "bad toml", content: "[package\n", substr: "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tc.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if tc.substr != "" && !strings.Contains(err.Error(), tc.substr) {
				t.Fatalf("err = %v, want substring %q", err, tc.substr)
			}
		})
	}
}

func TestLoadFullManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[package]
name = "demo"

[preprocess]
base = "shaders"
max_depth = 8

[protocols.lib]
root = "vendor/glsl"

[programs.basic]
vertex = "basic.vert"
fragment = "basic.frag"

[programs.blur]
compute = "blur.comp"

[output]
dir = "out"
sourcemap = false

[compiler]
command = ["glslc", "-fshader-stage={stage}", "{file}"]
`)
	writeFile(t, filepath.Join(root, "shaders", "basic.vert"), "#include_once lib://noise.glsl\nvoid main() {}\n")
	writeFile(t, filepath.Join(root, "vendor", "glsl", "noise.glsl"), "float noise();\n")

	m, err := Load(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	if m.Base() != filepath.Join(root, "shaders") {
		t.Fatalf("Base = %q", m.Base())
	}
	if m.OutputDir() != filepath.Join(root, "out") {
		t.Fatalf("OutputDir = %q", m.OutputDir())
	}
	if m.WriteSourceMaps() {
		t.Fatal("sourcemap = false was ignored")
	}
	if got := m.ProgramNames(); !reflect.DeepEqual(got, []string{"basic", "blur"}) {
		t.Fatalf("ProgramNames = %v", got)
	}
	stages, err := m.Program("basic")
	if err != nil {
		t.Fatal(err)
	}
	want := []StageRef{
		{Stage: preprocess.StageVertex, Ref: "basic.vert"},
		{Stage: preprocess.StageFragment, Ref: "basic.frag"},
	}
	if !reflect.DeepEqual(stages, want) {
		t.Fatalf("stages = %+v", stages)
	}
	if _, err := m.Program("nope"); !errors.Is(err, ErrUnknownProgram) {
		t.Fatalf("Program(nope) err = %v", err)
	}

	reg, err := m.Registry()
	if err != nil {
		t.Fatal(err)
	}
	if got := reg.Protocols(); !reflect.DeepEqual(got, []string{"lib", ref.LocalProtocol}) {
		t.Fatalf("Protocols = %v", got)
	}
	eng := preprocess.NewEngine(reg, preprocess.WithMaxDepth(m.Config.Preprocess.MaxDepth))
	unit, err := eng.Expand(context.Background(), "basic.vert", preprocess.StageVertex)
	if err != nil {
		t.Fatal(err)
	}
	if unit.Text != "float noise();\nvoid main() {}\n" {
		t.Fatalf("Text = %q", unit.Text)
	}
}

func TestDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[package]\nname = \"x\"\n")
	m, ok, err := Discover(root)
	if err != nil || !ok {
		t.Fatalf("Discover: ok=%v err=%v", ok, err)
	}
	if m.Base() != m.Root {
		t.Fatalf("Base = %q, want root", m.Base())
	}
	if m.OutputDir() != filepath.Join(m.Root, "build") {
		t.Fatalf("OutputDir = %q", m.OutputDir())
	}
	if !m.WriteSourceMaps() {
		t.Fatal("source maps should default to on")
	}
}

func TestTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, Template("demo"))
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Config.Package.Name != "demo" {
		t.Fatalf("name = %q", m.Config.Package.Name)
	}
	if _, err := m.Program("demo"); err != nil {
		t.Fatal(err)
	}
}
