package preprocess

import (
	"shaderpp/internal/source"
	"shaderpp/internal/srcmap"
)

// Unit is one merged compilation unit. It is immutable once returned by the engine.
type Unit struct {
	Stage Stage
	// Root is the display name of the reference the unit was expanded from.
	Root string
	Text string
	Map  *srcmap.Map

	files *source.FileSet
}

// LineCount returns the number of merged lines.
func (u *Unit) LineCount() int {
	return u.Map.Len()
}

// Files returns every fragment loaded for the unit in load order.
func (u *Unit) Files() []*source.File {
	if u.files == nil {
		return nil
	}
	n := u.files.Len()
	out := make([]*source.File, 0, n)
	for i := range n {
		out = append(out, u.files.Get(source.FileID(i))) //nolint:gosec // i < n <= MaxUint32
	}
	return out
}

// FileSet exposes the fragments for renderers that quote original lines.
func (u *Unit) FileSet() *source.FileSet {
	return u.files
}
