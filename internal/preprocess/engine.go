// Package preprocess expands `#include_once` directives into a single
// compilation unit and records where every merged line came from.
//
// Expansion walks the include graph depth-first with an explicit stack, so
// cycle detection and the depth limit do not depend on the goroutine stack.
// An Engine holds no per-run state and may expand several units concurrently
// over one shared, read-only loader.Registry.
package preprocess

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"shaderpp/internal/loader"
	"shaderpp/internal/ref"
	"shaderpp/internal/source"
	"shaderpp/internal/srcmap"
	"shaderpp/internal/trace"
)

// DefaultMaxDepth bounds the include stack when no explicit limit is set.
const DefaultMaxDepth = 256

// Engine expands references through a loader registry.
type Engine struct {
	registry *loader.Registry
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth sets the maximum include nesting; n <= 0 selects DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// NewEngine creates an engine over registry.
func NewEngine(registry *loader.Registry, opts ...Option) *Engine {
	e := &Engine{registry: registry, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the engine resolves through.
func (e *Engine) Registry() *loader.Registry {
	return e.registry
}

// MaxDepth returns the include nesting limit.
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// Expand builds the unit rooted at reference raw. ctx carries the tracer only;
// loaders are called synchronously and expansion is never interrupted.
func (e *Engine) Expand(ctx context.Context, raw string, stage Stage) (*Unit, error) {
	parsed, err := ref.Parse(raw)
	if err != nil {
		return nil, err
	}
	protocol, path := ref.Join(ref.Key{}, parsed)
	key, err := e.registry.Canonicalize(protocol, path)
	if err != nil {
		return nil, err
	}
	text, err := e.registry.Load(key)
	if err != nil {
		return nil, err
	}

	r := e.newRun(ctx, stage)
	r.push(key, r.display(key), text, 0)
	return r.finish(e.registry.Display(key))
}

// ExpandString builds a unit from text that did not come from a loader (stdin).
// Its own lines map to a raw origin called name; bare includes inside it are
// resolved like top-level references.
func (e *Engine) ExpandString(ctx context.Context, name, text string, stage Stage) (*Unit, error) {
	if name == "" {
		name = "<string>"
	}
	r := e.newRun(ctx, stage)
	r.push(ref.Key{}, name, text, 0)
	return r.finish(name)
}

// frame is one entry of the expansion stack.
type frame struct {
	key     ref.Key // zero for a raw-string root
	display string
	origin  uint32
	lines   []string
	next    int // index of the next line to scan
	span    *trace.Span
}

// run is the state of a single expansion; it is never shared.
type run struct {
	e      *Engine
	tracer trace.Tracer
	parent uint64
	stage  Stage

	stack  []*frame
	active map[ref.Key]bool
	seen   map[ref.Key]bool
	out    []string
	smap   *srcmap.Builder
	files  *source.FileSet
}

func (e *Engine) newRun(ctx context.Context, stage Stage) *run {
	return &run{
		e:      e,
		tracer: trace.FromContext(ctx),
		parent: trace.CurrentSpan(ctx),
		stage:  stage,
		active: make(map[ref.Key]bool),
		seen:   make(map[ref.Key]bool),
		smap:   srcmap.NewBuilder(string(stage)),
		files:  source.NewFileSet(),
	}
}

func (r *run) display(key ref.Key) string {
	return r.e.registry.Display(key)
}

func (r *run) push(key ref.Key, display, text string, at uint32) {
	var (
		origin     srcmap.Origin
		normalized string
	)
	if key.IsZero() {
		origin = srcmap.Origin{Path: display, Display: display}
		id := r.files.AddVirtual(display, []byte(text))
		normalized = string(r.files.Get(id).Content)
	} else {
		origin = srcmap.Origin{Protocol: key.Protocol, Path: key.Path, Display: display}
		r.active[key] = true
		_, normalized = r.files.AddText(key.String(), display, text)
	}

	parent := r.parent
	if n := len(r.stack); n > 0 {
		parent = r.stack[n-1].span.ID()
	}
	span := trace.Begin(r.tracer, trace.ScopeFragment, "file:"+display, parent)
	if at > 0 {
		span.WithExtra("from_line", strconv.FormatUint(uint64(at), 10))
	}

	r.stack = append(r.stack, &frame{
		key:     key,
		display: display,
		origin:  r.smap.Origin(origin),
		lines:   source.SplitLines(normalized),
		span:    span,
	})
}

func (r *run) pop() {
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	if !top.key.IsZero() {
		delete(r.active, top.key)
		r.seen[top.key] = true
	}
	top.span.End(fmt.Sprintf("%d lines", len(top.lines)))
}

// chain snapshots the stack for error reporting.
func (r *run) chain() []Frame {
	out := make([]Frame, len(r.stack))
	for i, f := range r.stack {
		line, err := safecast.Conv[uint32](f.next)
		if err != nil {
			line = 0
		}
		out[i] = Frame{Ref: f.display, Line: line}
	}
	return out
}

// fail aborts the run: open spans are closed and err gets the include chain.
func (r *run) fail(err error) error {
	chain := r.chain()
	for i := len(r.stack) - 1; i >= 0; i-- {
		r.stack[i].span.Fail(err)
	}
	r.stack = nil
	return &IncludeError{Chain: chain, Err: err}
}

func (r *run) finish(root string) (*Unit, error) {
	for len(r.stack) > 0 {
		top := r.stack[len(r.stack)-1]
		if top.next >= len(top.lines) {
			r.pop()
			continue
		}
		line := top.lines[top.next]
		top.next++

		raw, ok, err := matchDirective(line)
		if err != nil {
			return nil, r.fail(err)
		}
		if !ok {
			origLine, err := safecast.Conv[uint32](top.next)
			if err != nil {
				return nil, r.fail(err)
			}
			r.out = append(r.out, line)
			r.smap.Append(top.origin, origLine)
			continue
		}
		if err := r.include(top, raw); err != nil {
			return nil, r.fail(err)
		}
	}

	text := ""
	if len(r.out) > 0 {
		text = strings.Join(r.out, "\n") + "\n"
	}
	return &Unit{
		Stage: r.stage,
		Root:  root,
		Text:  text,
		Map:   r.smap.Map(),
		files: r.files,
	}, nil
}

// include handles one directive found in top.
func (r *run) include(top *frame, raw string) error {
	parsed, err := ref.Parse(raw)
	if err != nil {
		return err
	}
	protocol, path := ref.Join(top.key, parsed)
	key, err := r.e.registry.Canonicalize(protocol, path)
	if err != nil {
		return err
	}

	if r.active[key] {
		return &CycleError{Cycle: r.cycle(key)}
	}
	if r.seen[key] {
		trace.Point(r.tracer, trace.ScopeDirective, "skip:"+r.display(key), "already included", top.span.ID())
		return nil
	}
	if len(r.stack) >= r.e.maxDepth {
		return fmt.Errorf("%w (%d)", ErrIncludeDepth, r.e.maxDepth)
	}

	text, err := r.e.registry.Load(key)
	if err != nil {
		return err
	}
	at, err := safecast.Conv[uint32](top.next)
	if err != nil {
		return err
	}
	r.push(key, r.display(key), text, at)
	return nil
}

// cycle lists the stack from the first occurrence of key, closed by key itself.
func (r *run) cycle(key ref.Key) []string {
	start := 0
	for i, f := range r.stack {
		if f.key == key {
			start = i
			break
		}
	}
	out := make([]string, 0, len(r.stack)-start+1)
	for _, f := range r.stack[start:] {
		out = append(out, f.display)
	}
	return append(out, r.display(key))
}
