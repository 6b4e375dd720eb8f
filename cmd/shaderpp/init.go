package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"shaderpp/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new shaderpp project",
	Long: `Create a project manifest (shaderpp.toml) and a minimal vertex/fragment
program under shaders/. If [path|name] is omitted, initializes the current
directory. A non-existing path is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var projectNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

const (
	initCommon = "// shared declarations\nconst float PI = 3.14159265;\n"
	initVert   = "#version 450\n#include_once common.glsl\n\nlayout(location = 0) in vec3 inPos;\n\nvoid main() {\n    gl_Position = vec4(inPos, 1.0);\n}\n"
	initFrag   = "#version 450\n#include_once common.glsl\n\nlayout(location = 0) out vec4 outColor;\n\nvoid main() {\n    outColor = vec4(vec3(PI / 4.0), 1.0);\n}\n"
)

// runInit resolves the target directory, refuses to overwrite an existing
// manifest and writes the manifest plus starter shaders that are missing.
func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if !projectNameRe.MatchString(name) {
		name = "shaders"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	created := []string{manifestPath}
	if err := os.WriteFile(manifestPath, []byte(project.Template(name)), 0o644); err != nil { //nolint:gosec // manifest is meant to be readable
		return fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}

	shaderDir := filepath.Join(target, "shaders")
	if err := os.MkdirAll(shaderDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", shaderDir, err)
	}
	starters := []struct{ file, text string }{
		{"common.glsl", initCommon},
		{name + ".vert", initVert},
		{name + ".frag", initFrag},
	}
	for _, s := range starters {
		path := filepath.Join(shaderDir, s.file)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(s.text), 0o644); err != nil { //nolint:gosec // sources are meant to be readable
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		created = append(created, path)
	}

	if !quiet(cmd) {
		for _, p := range created {
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", p)
		}
	}
	return nil
}
