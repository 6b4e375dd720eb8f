// Package testkit holds invariant checks shared by tests of several packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"shaderpp/internal/source"
	"shaderpp/internal/srcmap"
)

// CheckMapInvariants verifies a merged text against its source map:
// 1) the map is structurally valid (contiguous, origins in range)
// 2) there is exactly one entry per merged line
// 3) when fs is given, every merged line equals the original line it maps to
func CheckMapInvariants(text string, m *srcmap.Map, fs *source.FileSet) error {
	if m == nil {
		return fmt.Errorf("nil source map")
	}
	if err := m.Validate(); err != nil {
		return err
	}

	lines := source.SplitLines(text)
	if len(lines) != m.Len() {
		return fmt.Errorf("merged text has %d lines, map has %d entries", len(lines), m.Len())
	}
	if fs == nil {
		return nil
	}

	for i, got := range lines {
		n, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			return fmt.Errorf("line overflow: %w", err)
		}
		origin, origLine, ok := m.Lookup(n)
		if !ok {
			return fmt.Errorf("line %d is unmapped", n)
		}
		name := origin.Path
		if !origin.Raw() {
			name = origin.Key().String()
		}
		f, ok := fs.Lookup(name)
		if !ok {
			return fmt.Errorf("line %d maps to %s which was never loaded", n, name)
		}
		if want := f.GetLine(origLine); want != got {
			return fmt.Errorf("line %d = %q, but %s:%d is %q", n, got, origin, origLine, want)
		}
	}
	return nil
}
