package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	outer := Begin(tr, ScopeUnit, "stage:vertex", 0)
	inner := Begin(tr, ScopeFragment, "file:a.glsl", outer.ID())
	inner.End("")
	outer.End("3 lines")

	out := buf.String()
	if strings.Contains(out, "file:a.glsl") {
		t.Fatalf("fragment span leaked at phase level:\n%s", out)
	}
	if strings.Count(out, "stage:vertex") != 2 {
		t.Fatalf("expected begin and end for stage span:\n%s", out)
	}
	if !strings.Contains(out, "(3 lines)") {
		t.Fatalf("detail missing:\n%s", out)
	}
	if inner.ID() != 0 {
		t.Fatal("filtered span must be disabled")
	}
}

func TestShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeCommand, false},
		{LevelError, ScopeCommand, false},
		{LevelPhase, ScopeUnit, true},
		{LevelPhase, ScopeFragment, false},
		{LevelDetail, ScopeFragment, true},
		{LevelDetail, ScopeDirective, false},
		{LevelDebug, ScopeDirective, true},
		{Level(42), ScopeCommand, false},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestNDJSONAndExtra(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Begin(tr, ScopeDirective, "include", 7).WithExtra("ref", "b.glsl").End("skipped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 events, got %d", len(lines))
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev["kind"] != "end" || ev["scope"] != "directive" || ev["detail"] != "skipped" || ev["parent_id"].(float64) != 7 {
		t.Fatalf("unexpected end event %v", ev)
	}
	if extra, _ := ev["extra"].(map[string]any); extra["ref"] != "b.glsl" {
		t.Fatalf("extra = %v", ev["extra"])
	}
}

func TestStartPropagatesParent(t *testing.T) {
	r := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), r)

	ctx, outer := Start(ctx, ScopeCommand, "build:basic")
	if CurrentSpan(ctx) != outer.ID() || outer.ID() == 0 {
		t.Fatalf("current span = %d, want %d", CurrentSpan(ctx), outer.ID())
	}
	inner := Begin(FromContext(ctx), ScopeFragment, "file:a.glsl", CurrentSpan(ctx))
	inner.Fail(errors.New("boom"))
	inner.End("again")
	outer.End("")

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("want 4 events (End after Fail is ignored), got %+v", snap)
	}
	if snap[1].ParentID != outer.ID() {
		t.Fatalf("inner parent = %d, want %d", snap[1].ParentID, outer.ID())
	}
	if snap[2].Detail != "boom" || snap[2].Extra["error"] != "true" {
		t.Fatalf("fail event = %+v", snap[2])
	}

	// filtered scope keeps the context as is
	same, span := Start(ctx, ScopeDirective, "x")
	if same != ctx || span.ID() != 0 {
		t.Fatal("filtered span must not change the context")
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeCommand, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Name != "c" || snap[2].Name != "e" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestMultiAndContext(t *testing.T) {
	r1 := NewRingTracer(8, LevelDebug)
	r2 := NewRingTracer(8, LevelDebug)
	m := NewMultiTracer(LevelDebug, r1, r2)

	ctx := WithTracer(context.Background(), m)
	Point(FromContext(ctx), ScopeCommand, "x", "", 0)
	if len(r1.Snapshot()) != 1 || len(r2.Snapshot()) != 1 {
		t.Fatal("multi tracer did not fan out")
	}
	if FindRing(m) != r1 || FindRing(Nop) != nil {
		t.Fatal("FindRing should return the first ring")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer must resolve to Nop")
	}
	if Begin(Nop, ScopeCommand, "x", 0).End("") != 0 {
		t.Fatal("nop span should report zero duration")
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewModes(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	if _, err := New(Config{Level: LevelPhase, Mode: StorageMode(99)}); err == nil {
		t.Fatal("unknown mode must fail")
	}
	var buf bytes.Buffer
	both, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Point(both, ScopeUnit, "p", "", 0)
	if FindRing(both) == nil || buf.Len() == 0 {
		t.Fatal("both mode must stream and keep a ring")
	}
	if formatForPath("t.ndjson") != FormatNDJSON || formatForPath("-") != FormatText {
		t.Fatal("format detection by path")
	}
}

func TestHeartbeatReportsOpenSpans(t *testing.T) {
	r := NewRingTracer(64, LevelPhase)
	span := Begin(r, ScopeUnit, "stuck", 0)
	h := StartHeartbeat(r, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	h.Stop()
	h.Stop()
	span.End("")

	var beat *Event
	for _, ev := range r.Snapshot() {
		if ev.Kind == KindHeartbeat {
			beat = &ev
			break
		}
	}
	if beat == nil {
		t.Fatal("no heartbeat recorded")
	}
	if !strings.Contains(beat.Detail, "open") {
		t.Fatalf("heartbeat detail = %q", beat.Detail)
	}
	if StartHeartbeat(r, 0) != nil {
		t.Fatal("zero interval must not start a heartbeat")
	}
}

func TestTextFormatShowsDuration(t *testing.T) {
	ev := &Event{Kind: KindSpanEnd, Scope: ScopeFragment, Name: "file:a.glsl", ParentID: 1, Duration: 1500 * time.Microsecond}
	line := string(FormatEvent(ev, FormatText))
	if !strings.Contains(line, "  ← fragment file:a.glsl [1.5ms]") {
		t.Fatalf("line = %q", line)
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(Detail) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("invalid level accepted")
	}
	if m, err := ParseMode("BOTH"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(BOTH) = %v, %v", m, err)
	}
	if _, err := ParseMode(""); err == nil {
		t.Fatal("empty mode accepted")
	}
}
