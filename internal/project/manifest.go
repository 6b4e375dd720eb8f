// Package project reads the shaderpp.toml manifest: include base, extra
// protocols, named programs and where build output goes.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"shaderpp/internal/loader"
	"shaderpp/internal/preprocess"
)

var (
	ErrPackageSectionMissing = errors.New("missing [package]")
	ErrPackageNameMissing    = errors.New("missing [package].name")
	ErrUnknownKey            = errors.New("unknown manifest key")
	ErrUnknownProgram        = errors.New("unknown program")
)

type Config struct {
	Package    PackageConfig             `toml:"package"`
	Preprocess PreprocessConfig          `toml:"preprocess"`
	Protocols  map[string]ProtocolConfig `toml:"protocols"`
	Programs   map[string]ProgramConfig  `toml:"programs"`
	Output     OutputConfig              `toml:"output"`
	Compiler   CompilerConfig            `toml:"compiler"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type PreprocessConfig struct {
	Base     string `toml:"base"`      // корень для local://, относительно манифеста
	MaxDepth int    `toml:"max_depth"` // 0 = preprocess.DefaultMaxDepth
}

// ProtocolConfig mounts a directory under a protocol name.
type ProtocolConfig struct {
	Root string `toml:"root"`
}

// ProgramConfig names the source of each stage; empty fields are absent stages.
type ProgramConfig struct {
	Vertex         string `toml:"vertex"`
	TessControl    string `toml:"tess_control"`
	TessEvaluation string `toml:"tess_evaluation"`
	Geometry       string `toml:"geometry"`
	Fragment       string `toml:"fragment"`
	Compute        string `toml:"compute"`
}

type OutputConfig struct {
	Dir       string `toml:"dir"`
	SourceMap *bool  `toml:"sourcemap"`
}

type CompilerConfig struct {
	Command []string `toml:"command"`
}

// StageRef is one stage of a program.
type StageRef struct {
	Stage preprocess.Stage
	Ref   string
}

// Stages returns the configured stages in pipeline order.
func (p ProgramConfig) Stages() []StageRef {
	byStage := map[preprocess.Stage]string{
		preprocess.StageVertex:         p.Vertex,
		preprocess.StageTessControl:    p.TessControl,
		preprocess.StageTessEvaluation: p.TessEvaluation,
		preprocess.StageGeometry:       p.Geometry,
		preprocess.StageFragment:       p.Fragment,
		preprocess.StageCompute:        p.Compute,
	}
	var out []StageRef
	for _, st := range preprocess.Stages {
		if ref := strings.TrimSpace(byStage[st]); ref != "" {
			out = append(out, StageRef{Stage: st, Ref: ref})
		}
	}
	return out
}

// Manifest is a decoded shaderpp.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Load decodes and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	for name, p := range cfg.Protocols {
		if name == "local" {
			return nil, fmt.Errorf("%s: [protocols.local] cannot be redefined; use [preprocess].base", path)
		}
		if strings.TrimSpace(p.Root) == "" {
			return nil, fmt.Errorf("%s: missing [protocols.%s].root", path, name)
		}
	}
	for name, p := range cfg.Programs {
		if len(p.Stages()) == 0 {
			return nil, fmt.Errorf("%s: [programs.%s] has no stages", path, name)
		}
	}
	if cfg.Preprocess.MaxDepth < 0 {
		return nil, fmt.Errorf("%s: [preprocess].max_depth must not be negative", path)
	}
	if len(cfg.Compiler.Command) > 0 && strings.TrimSpace(cfg.Compiler.Command[0]) == "" {
		return nil, fmt.Errorf("%s: [compiler].command has an empty program name", path)
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// Discover finds and loads the manifest above startDir. ok is false when there is none.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func (m *Manifest) resolve(p string) string {
	if p == "" {
		return m.Root
	}
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// Base returns the absolute directory local references are resolved against.
func (m *Manifest) Base() string {
	return m.resolve(m.Config.Preprocess.Base)
}

// OutputDir returns the absolute build output directory (default "build").
func (m *Manifest) OutputDir() string {
	if m.Config.Output.Dir == "" {
		return m.resolve("build")
	}
	return m.resolve(m.Config.Output.Dir)
}

// WriteSourceMaps reports whether build writes .map sidecars (default true).
func (m *Manifest) WriteSourceMaps() bool {
	return m.Config.Output.SourceMap == nil || *m.Config.Output.SourceMap
}

// Registry builds the protocol table: local at Base plus every [protocols.*] directory.
func (m *Manifest) Registry() (*loader.Registry, error) {
	r := loader.NewDefaultRegistry(m.Base())
	names := make([]string, 0, len(m.Config.Protocols))
	for name := range m.Config.Protocols {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.Register(name, loader.NewDir(m.resolve(m.Config.Protocols[name].Root))); err != nil {
			return nil, fmt.Errorf("%s: [protocols.%s]: %w", m.Path, name, err)
		}
	}
	return r, nil
}

// Program returns the named program's stages.
func (m *Manifest) Program(name string) ([]StageRef, error) {
	p, ok := m.Config.Programs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownProgram, name, strings.Join(m.ProgramNames(), ", "))
	}
	return p.Stages(), nil
}

// ProgramNames lists configured programs in sorted order.
func (m *Manifest) ProgramNames() []string {
	names := make([]string, 0, len(m.Config.Programs))
	for name := range m.Config.Programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns the manifest written by `shaderpp init`.
func Template(name string) string {
	return fmt.Sprintf(`[package]
name = %q

[preprocess]
base = "shaders"
# max_depth = 256

# Mount a directory under its own protocol: #include_once lib://noise.glsl
# [protocols.lib]
# root = "vendor/glsl"

[programs.%s]
vertex = "%s.vert"
fragment = "%s.frag"

[output]
dir = "build"
sourcemap = true

# External compiler; {file} and {stage} are substituted.
# [compiler]
# command = ["glslangValidator", "-S", "{stage}", "{file}"]
`, name, name, name, name)
}
