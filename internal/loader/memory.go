package loader

import (
	"fmt"
	"os"
	"strings"

	"shaderpp/internal/ref"
)

// Memory serves sources held in memory. Keys are canonicalized the same way
// lookups are, so "a//b.glsl" and "a/b.glsl" address one entry.
type Memory struct {
	files map[string]string
}

// NewMemory builds a Memory loader from path -> text.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: make(map[string]string, len(files))}
	for path, text := range files {
		m.files[memoryKey(path)] = text
	}
	return m
}

func memoryKey(path string) string {
	return strings.TrimPrefix(ref.Clean(path), "/")
}

// Canonicalize cleans path lexically.
func (m *Memory) Canonicalize(path string) (string, error) {
	return memoryKey(path), nil
}

// Load returns the text stored under path.
func (m *Memory) Load(path string) (string, error) {
	text, ok := m.files[memoryKey(path)]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return text, nil
}
