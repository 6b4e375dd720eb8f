// Package observ measures the phases of a command for --timings.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"shaderpp/internal/diag"
	"shaderpp/internal/source"
)

type lap struct {
	name    string
	started time.Time
	took    time.Duration
	note    string
}

func (l lap) ended() time.Time { return l.started.Add(l.took) }

// Timer collects named laps. It is safe for concurrent use.
type Timer struct {
	mu   sync.Mutex
	laps []lap
}

// NewTimer returns an empty Timer.
func NewTimer() *Timer { return &Timer{} }

// Lap is a running measurement started by Timer.Start.
type Lap struct {
	t   *Timer
	idx int
}

// Start opens a lap named name. The lap counts as zero until stopped.
func (t *Timer) Start(name string) Lap {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.laps = append(t.laps, lap{name: name, started: time.Now()})
	return Lap{t: t, idx: len(t.laps) - 1}
}

// Stop closes the lap. Stopping twice keeps the later measurement.
func (l Lap) Stop(note string) {
	if l.t == nil {
		return
	}
	l.t.mu.Lock()
	defer l.t.mu.Unlock()
	rec := &l.t.laps[l.idx]
	rec.took = time.Since(rec.started)
	rec.note = note
}

// Record adds a lap measured elsewhere, ending now.
func (t *Timer) Record(name string, d time.Duration, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.laps = append(t.laps, lap{name: name, started: time.Now().Add(-d), took: d, note: note})
}

// LapReport is one lap in a Report.
type LapReport struct {
	Name  string  `json:"name"`
	MS    float64 `json:"duration_ms"`
	Share float64 `json:"share"`
	Note  string  `json:"note,omitempty"`
}

// Report is a snapshot of a Timer.
type Report struct {
	// WallMS spans the earliest start to the latest end, so overlapping
	// laps are not summed twice.
	WallMS float64     `json:"total_ms"`
	Laps   []LapReport `json:"phases"`
}

// Empty reports whether no lap was recorded.
func (r Report) Empty() bool { return len(r.Laps) == 0 }

// Report snapshots the recorded laps.
func (t *Timer) Report() Report {
	t.mu.Lock()
	laps := append([]lap(nil), t.laps...)
	t.mu.Unlock()

	if len(laps) == 0 {
		return Report{}
	}
	from, to := laps[0].started, laps[0].ended()
	for _, l := range laps[1:] {
		if l.started.Before(from) {
			from = l.started
		}
		if e := l.ended(); e.After(to) {
			to = e
		}
	}
	wall := to.Sub(from)
	r := Report{WallMS: millis(wall), Laps: make([]LapReport, 0, len(laps))}
	for _, l := range laps {
		lr := LapReport{Name: l.name, MS: millis(l.took), Note: l.note}
		if wall > 0 {
			lr.Share = float64(l.took) / float64(wall)
		}
		r.Laps = append(r.Laps, lr)
	}
	return r
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, l := range r.Laps {
		fmt.Fprintf(&sb, "  %-20s %8.2f ms %4.0f%%", l.Name, l.MS, l.Share*100)
		if l.Note != "" {
			sb.WriteString("  " + l.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %8.2f ms\n", "wall", r.WallMS)
	return sb.String()
}

// Diagnostic packs the report into an info diagnostic with a note per lap.
func (t *Timer) Diagnostic() diag.Diagnostic {
	r := t.Report()
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Location{}, fmt.Sprintf("wall %.2f ms", r.WallMS))
	for _, l := range r.Laps {
		msg := fmt.Sprintf("%s: %.2f ms", l.Name, l.MS)
		if l.Note != "" {
			msg += ", " + l.Note
		}
		d = d.WithNote(source.Location{}, msg)
	}
	return d
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
