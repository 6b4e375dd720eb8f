package diagfmt

// PathMode specifies how fragment names are displayed.
type PathMode uint8

const (
	// PathModeAuto prints the display name the loader chose.
	PathModeAuto PathMode = iota
	// PathModeBasename prints only the last path segment.
	PathModeBasename
)

// ParsePathMode accepts "auto" and "basename".
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "auto":
		return PathModeAuto, true
	case "basename":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строк контекста вокруг основной строки
	PathMode  PathMode
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}
