package diag

import (
	"cmp"
	"slices"
)

// Bag is an ordered, bounded collection of diagnostics.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

// NewBag creates a bag that keeps at most limit diagnostics.
func NewBag(limit int) *Bag {
	limit = max(limit, 0)
	return &Bag{items: make([]Diagnostic, 0, min(limit, 64)), limit: limit}
}

// Add appends d. Once the limit is reached it counts d as dropped and
// returns false.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int { return len(b.items) }

// Limit is the capacity the bag was created with, grown by Merge.
func (b *Bag) Limit() int { return b.limit }

// Dropped counts diagnostics refused because the bag was full.
func (b *Bag) Dropped() int { return b.dropped }

// Items возвращает внутренний срез, не модифицировать.
func (b *Bag) Items() []Diagnostic { return b.items }

// Worst returns the highest severity in the bag and false when it is empty.
func (b *Bag) Worst() (Severity, bool) {
	if len(b.items) == 0 {
		return SevInfo, false
	}
	worst := b.items[0].Severity
	for _, d := range b.items[1:] {
		worst = max(worst, d.Severity)
	}
	return worst, true
}

func (b *Bag) HasErrors() bool {
	s, ok := b.Worst()
	return ok && s >= SevError
}

func (b *Bag) HasWarnings() bool {
	s, ok := b.Worst()
	return ok && s >= SevWarning
}

// Merge appends other's diagnostics, growing the limit so that none are lost.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.limit = max(b.limit, len(b.items)+len(other.items))
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort orders by path, line and column, then by severity (worst first) and
// code. Diagnostics without a file go last.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		px, py := x.Primary, y.Primary
		if (px.Path == "") != (py.Path == "") {
			if px.Path == "" {
				return 1
			}
			return -1
		}
		return cmp.Or(
			cmp.Compare(px.Path, py.Path),
			cmp.Compare(px.Line, py.Line),
			cmp.Compare(px.Col, py.Col),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup keeps the first diagnostic of each code, severity, location and message.
func (b *Bag) Dedup() {
	seen := make(map[identity]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		id := d.identity()
		if _, dup := seen[id]; dup {
			return true
		}
		seen[id] = struct{}{}
		return false
	})
}
