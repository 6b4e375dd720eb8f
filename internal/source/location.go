package source

import "fmt"

// Location points at a line (and optionally a column) of a named fragment.
// Path is a display name, not a canonical key.
type Location struct {
	Path string
	Line uint32 // 1-based, 0 = unknown
	Col  uint32 // 1-based, 0 = unknown
}

// Known reports whether the location carries a line number.
func (l Location) Known() bool {
	return l.Path != "" && l.Line > 0
}

func (l Location) String() string {
	switch {
	case l.Path == "":
		return "<unknown>"
	case l.Line == 0:
		return l.Path
	case l.Col == 0:
		return fmt.Sprintf("%s:%d", l.Path, l.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Col)
	}
}
