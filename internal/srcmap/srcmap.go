// Package srcmap records, for every line of a merged compilation unit, which
// fragment and which original line it came from.
package srcmap

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"shaderpp/internal/ref"
)

// SchemaVersion is bumped whenever the encoded layout of Map changes.
const SchemaVersion uint16 = 1

// ErrMalformed reports a map that violates the one-entry-per-line invariant.
var ErrMalformed = errors.New("malformed source map")

// Origin identifies where a run of lines came from. Raw origins (text handed
// to the engine directly, e.g. stdin) have an empty Protocol.
type Origin struct {
	Protocol string `msgpack:"protocol"`
	Path     string `msgpack:"path"`
	Display  string `msgpack:"display"`
}

// Raw reports whether the origin is a raw string rather than a loaded resource.
func (o Origin) Raw() bool {
	return o.Protocol == ""
}

// Key returns the canonical key of a loaded origin.
func (o Origin) Key() ref.Key {
	return ref.Key{Protocol: o.Protocol, Path: o.Path}
}

func (o Origin) String() string {
	if o.Display != "" {
		return o.Display
	}
	if o.Raw() {
		return o.Path
	}
	return o.Key().String()
}

// Entry maps one merged line to (origin, original line). Both line numbers are 1-based.
type Entry struct {
	Line     uint32 `msgpack:"line"`
	Origin   uint32 `msgpack:"origin"`
	OrigLine uint32 `msgpack:"orig_line"`
}

// Map is the per-unit line table. Entries[i].Line == i+1 always holds.
type Map struct {
	Schema  uint16   `msgpack:"schema"`
	Stage   string   `msgpack:"stage,omitempty"`
	Origins []Origin `msgpack:"origins"`
	Entries []Entry  `msgpack:"entries"`
}

// Len returns the number of mapped merged lines.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Entry returns the entry for merged line (1-based).
func (m *Map) Entry(line uint32) (Entry, bool) {
	if m == nil || line == 0 || int(line) > len(m.Entries) {
		return Entry{}, false
	}
	return m.Entries[line-1], true
}

// Lookup resolves merged line to its origin and original line.
func (m *Map) Lookup(line uint32) (Origin, uint32, bool) {
	e, ok := m.Entry(line)
	if !ok {
		return Origin{}, 0, false
	}
	return m.Origins[e.Origin], e.OrigLine, true
}

// Validate checks the structural invariants: contiguous lines starting at 1,
// origin indexes in range, original lines positive.
func (m *Map) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil map", ErrMalformed)
	}
	for i, e := range m.Entries {
		want, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if e.Line != want {
			return fmt.Errorf("%w: entry %d has line %d", ErrMalformed, i, e.Line)
		}
		if int(e.Origin) >= len(m.Origins) {
			return fmt.Errorf("%w: line %d refers to origin %d of %d", ErrMalformed, e.Line, e.Origin, len(m.Origins))
		}
		if e.OrigLine == 0 {
			return fmt.Errorf("%w: line %d has no original line", ErrMalformed, e.Line)
		}
	}
	return nil
}

// Builder grows a Map one merged line at a time. It is owned by a single run.
type Builder struct {
	m     Map
	index map[Origin]uint32
}

// NewBuilder returns an empty builder for stage (may be empty).
func NewBuilder(stage string) *Builder {
	return &Builder{
		m:     Map{Schema: SchemaVersion, Stage: stage},
		index: make(map[Origin]uint32),
	}
}

// Origin interns o and returns its index.
func (b *Builder) Origin(o Origin) uint32 {
	if idx, ok := b.index[o]; ok {
		return idx
	}
	idx, err := safecast.Conv[uint32](len(b.m.Origins))
	if err != nil {
		panic(fmt.Errorf("origin count overflow: %w", err))
	}
	b.m.Origins = append(b.m.Origins, o)
	b.index[o] = idx
	return idx
}

// Append records the next merged line and returns its 1-based number.
func (b *Builder) Append(origin, origLine uint32) uint32 {
	line, err := safecast.Conv[uint32](len(b.m.Entries) + 1)
	if err != nil {
		panic(fmt.Errorf("merged line overflow: %w", err))
	}
	b.m.Entries = append(b.m.Entries, Entry{Line: line, Origin: origin, OrigLine: origLine})
	return line
}

// Map returns the finished map. The builder must not be used afterwards.
func (b *Builder) Map() *Map {
	m := b.m
	if m.Origins == nil {
		m.Origins = []Origin{}
	}
	if m.Entries == nil {
		m.Entries = []Entry{}
	}
	return &m
}
