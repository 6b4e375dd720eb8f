// Package compiler hands merged units to an external shader compiler and
// collects its log for translation.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"shaderpp/internal/preprocess"
	"shaderpp/internal/trace"
)

var (
	// ErrCompileFailed means the compiler ran and rejected the unit; the log explains why.
	ErrCompileFailed = errors.New("compilation failed")
	ErrNoCommand     = errors.New("no compiler command configured")
)

// Compiler turns a merged unit into a driver log. A nil error with a
// non-empty log means warnings only.
type Compiler interface {
	Compile(ctx context.Context, unit *preprocess.Unit) (log string, err error)
}

// Func adapts a function to Compiler.
type Func func(ctx context.Context, unit *preprocess.Unit) (string, error)

func (f Func) Compile(ctx context.Context, unit *preprocess.Unit) (string, error) {
	return f(ctx, unit)
}

// Exec runs a command-line compiler on a temporary copy of the unit.
//
// Command is an argv template: "{file}" is replaced by the temp file path and
// "{stage}" by the short stage name ("vert", "frag", ...). Without a "{file}"
// argument the path is appended.
type Exec struct {
	Command []string
	// TmpDir holds the temporary sources; "" means os.TempDir.
	TmpDir string
	// Echo, when set, receives each command line before it runs.
	Echo io.Writer
	Env  []string
}

// Args expands the command template for one unit file.
func (e *Exec) Args(file string, stage preprocess.Stage) ([]string, error) {
	if len(e.Command) == 0 || strings.TrimSpace(e.Command[0]) == "" {
		return nil, ErrNoCommand
	}
	short := strings.TrimPrefix(stage.Ext(), ".")
	args := make([]string, 0, len(e.Command)+1)
	sawFile := false
	for _, a := range e.Command {
		if strings.Contains(a, "{file}") {
			sawFile = true
		}
		a = strings.ReplaceAll(a, "{file}", file)
		a = strings.ReplaceAll(a, "{stage}", short)
		args = append(args, a)
	}
	if !sawFile {
		args = append(args, file)
	}
	return args, nil
}

func (e *Exec) Compile(ctx context.Context, unit *preprocess.Unit) (string, error) {
	if unit == nil {
		return "", errors.New("nil unit")
	}
	_, span := trace.Start(ctx, trace.ScopeUnit, "compile")
	span.WithExtra("stage", unit.Stage.String())

	file, cleanup, err := e.writeTemp(unit)
	if err != nil {
		span.Fail(err)
		return "", err
	}
	defer cleanup()

	args, err := e.Args(file, unit.Stage)
	if err != nil {
		span.Fail(err)
		return "", err
	}
	if e.Echo != nil {
		if _, err := fmt.Fprintln(e.Echo, strings.Join(args, " ")); err != nil {
			span.Fail(err)
			return "", fmt.Errorf("failed to print command: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	runErr := cmd.Run()
	log := out.String()

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		span.WithExtra("log_bytes", fmt.Sprint(len(log))).End("ok")
		return log, nil
	case errors.As(runErr, &exitErr):
		span.WithExtra("exit", fmt.Sprint(exitErr.ExitCode())).End("failed")
		if strings.TrimSpace(log) == "" {
			return log, fmt.Errorf("%w: %s exited with status %d and no output", ErrCompileFailed, args[0], exitErr.ExitCode())
		}
		return log, fmt.Errorf("%w: %s exited with status %d", ErrCompileFailed, args[0], exitErr.ExitCode())
	default:
		span.Fail(runErr)
		return log, fmt.Errorf("run %s: %w", args[0], runErr)
	}
}

// writeTemp stores the merged text under a name with the stage extension so
// compilers that infer the stage from it keep working.
func (e *Exec) writeTemp(unit *preprocess.Unit) (string, func(), error) {
	dir, err := os.MkdirTemp(e.TmpDir, "shaderpp-")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	name := baseName(unit.Root)
	ext := unit.Stage.Ext()
	if ext == "" {
		ext = ".glsl"
	}
	path := filepath.Join(dir, name+ext)
	if err := os.WriteFile(path, []byte(unit.Text), 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write %s: %w", path, err)
	}
	return path, cleanup, nil
}

func baseName(root string) string {
	root = strings.ReplaceAll(root, `\`, "/")
	if i := strings.Index(root, "://"); i >= 0 {
		root = root[i+3:]
	}
	if i := strings.LastIndexByte(root, '/'); i >= 0 {
		root = root[i+1:]
	}
	if i := strings.IndexByte(root, '.'); i > 0 {
		root = root[:i]
	}
	if root == "" || strings.ContainsAny(root, "<>") {
		return "unit"
	}
	return root
}
