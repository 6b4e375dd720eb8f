package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shaderpp/internal/ref"
)

// Local reads files from disk. Relative paths are anchored at Base.
type Local struct {
	base string
}

// NewLocal creates a Local loader; an empty base means the working directory.
func NewLocal(base string) *Local {
	return &Local{base: base}
}

// Base returns the directory relative paths are resolved against.
func (l *Local) Base() string {
	if l.base == "" {
		// как FileSet.BaseDir: по умолчанию текущая директория
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return l.base
}

// Canonicalize resolves symlinks when the file exists and falls back to a
// lexically cleaned absolute path when it does not.
func (l *Local) Canonicalize(path string) (string, error) {
	p := filepath.FromSlash(path)
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.Base(), p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return filepath.ToSlash(filepath.Clean(abs)), nil
}

// Load reads the file at path.
func (l *Local) Load(path string) (string, error) {
	// #nosec G304 -- path comes from an include directive the user wrote
	data, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return "", fmt.Errorf("file loading error: %w", err)
	}
	return string(data), nil
}

// Display shows paths under Base relative to it and everything else absolute.
func (l *Local) Display(path string) string {
	base := l.Base()
	if base == "" {
		return path
	}
	if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}
	if real, err := filepath.EvalSymlinks(base); err == nil {
		base = real
	}
	rel, err := filepath.Rel(base, filepath.FromSlash(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// Dir serves a directory tree under a protocol name, e.g. `lib://noise.glsl`
// with Root pointing at a vendored shader library. Paths never escape Root,
// neither through ".." nor through symlinks.
type Dir struct {
	Root string
}

// NewDir creates a Dir loader rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Canonicalize cleans path lexically and makes it root-relative.
func (d *Dir) Canonicalize(path string) (string, error) {
	return strings.TrimPrefix(ref.Clean(path), "/"), nil
}

// Load reads Root/path through os.Root, which refuses symlinks leading out of Root.
func (d *Dir) Load(path string) (string, error) {
	root, err := os.OpenRoot(d.Root)
	if err != nil {
		return "", fmt.Errorf("open protocol root: %w", err)
	}
	defer root.Close()
	data, err := root.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return "", fmt.Errorf("file loading error: %w", err)
	}
	return string(data), nil
}
