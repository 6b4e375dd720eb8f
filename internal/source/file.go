package source

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type (
	// FileID indexes a fragment within its FileSet.
	FileID uint32
	// FileFlags records how a fragment's bytes were obtained.
	FileFlags uint8
)

const (
	// FileVirtual marks text that no loader produced: stdin, tests, merged output.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one stored fragment. Name is the canonical key (`protocol://path`)
// or a virtual name; Display is what diagnostics print.
type File struct {
	ID      FileID
	Name    string
	Display string
	Content []byte
	// LineIdx holds the byte offset of every '\n' in Content.
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("source: %w", err))
	}
	return v
}

func newlineOffsets(content []byte) []uint32 {
	var out []uint32
	for i, b := range content {
		if b == '\n' {
			out = append(out, mustU32(i))
		}
	}
	return out
}

// Position converts a byte offset into a line/column pair.
func (f *File) Position(off uint32) LineCol {
	// newlines strictly before off
	before, _ := slices.BinarySearch(f.LineIdx, off)
	var lineStart uint32
	if before > 0 {
		lineStart = f.LineIdx[before-1] + 1
	}
	return LineCol{Line: mustU32(before + 1), Col: off - lineStart + 1}
}

// LineCount returns the number of lines; a trailing newline does not open a new one.
func (f *File) LineCount() uint32 {
	n := mustU32(len(f.LineIdx))
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// GetLine returns line n (1-based) without its newline, or "" when out of range.
func (f *File) GetLine(n uint32) string {
	if n == 0 || n > f.LineCount() {
		return ""
	}
	var start uint32
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end := mustU32(len(f.Content))
	if int(n) <= len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	return string(f.Content[start:end])
}
