package trace

import (
	"fmt"
	"strings"
)

// Scope is the granularity of an event. Coarser scopes have smaller values.
type Scope uint8

const (
	// ScopeCommand covers one CLI command or one program build.
	ScopeCommand Scope = iota + 1
	// ScopeUnit covers one compilation unit: a stage build, a compile or a translation.
	ScopeUnit
	// ScopeFragment covers one loaded fragment.
	ScopeFragment
	// ScopeDirective covers a single #include_once.
	ScopeDirective
)

var scopeNames = [...]string{
	ScopeCommand:   "command",
	ScopeUnit:      "unit",
	ScopeFragment:  "fragment",
	ScopeDirective: "directive",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // only crash dumps
	LevelPhase        // commands and units
	LevelDetail       // plus fragments
	LevelDebug        // plus directives
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// finest scope emitted per level; 0 emits nothing
var levelMaxScope = [...]Scope{
	LevelOff:    0,
	LevelError:  0,
	LevelPhase:  ScopeUnit,
	LevelDetail: ScopeFragment,
	LevelDebug:  ScopeDirective,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == want {
			return Level(l), nil //nolint:gosec // l < len(levelNames)
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelMaxScope) {
		return false
	}
	finest := levelMaxScope[l]
	return finest != 0 && scope <= finest
}
