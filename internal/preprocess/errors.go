package preprocess

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCyclicInclude reports an include of a file that is still being expanded.
	ErrCyclicInclude = errors.New("cyclic include")
	// ErrIncludeDepth reports an include chain deeper than the engine allows.
	ErrIncludeDepth = errors.New("include depth limit exceeded")
)

// Frame is one step of an include chain: the fragment and the line of its
// directive that was being processed.
type Frame struct {
	Ref  string
	Line uint32
}

func (f Frame) String() string {
	if f.Line == 0 {
		return f.Ref
	}
	return fmt.Sprintf("%s:%d", f.Ref, f.Line)
}

// CycleError lists the fragments forming the cycle; the first and last entries name the same fragment.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return "cyclic include: " + strings.Join(e.Cycle, " -> ")
}

// Is makes errors.Is(err, ErrCyclicInclude) work.
func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicInclude
}

// IncludeError attaches the active include chain to an expansion failure.
// Chain is ordered from the root outward; the last frame holds the failing directive.
type IncludeError struct {
	Chain []Frame
	Err   error
}

func (e *IncludeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	for i := len(e.Chain) - 1; i >= 0; i-- {
		sb.WriteString("\n\tincluded from ")
		sb.WriteString(e.Chain[i].String())
	}
	return sb.String()
}

func (e *IncludeError) Unwrap() error {
	return e.Err
}
