package observ

import (
	"strings"
	"sync"
	"testing"
	"time"

	"shaderpp/internal/diag"
)

func TestTimerLaps(t *testing.T) {
	tm := NewTimer()
	lap := tm.Start("expand")
	lap.Stop("3 files")
	Lap{}.Stop("ignored")

	var wg sync.WaitGroup
	for _, name := range []string{"stage:vertex", "stage:fragment"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			tm.Record(name, 5*time.Millisecond, "")
		}(name)
	}
	wg.Wait()

	r := tm.Report()
	if len(r.Laps) != 3 || r.Laps[0].Name != "expand" || r.Laps[0].Note != "3 files" {
		t.Fatalf("report = %+v", r)
	}
	if r.WallMS < 5 || r.WallMS > 1000 {
		t.Fatalf("wall = %.2f ms", r.WallMS)
	}
	for _, l := range r.Laps {
		if l.Share < 0 || l.Share > 1.0001 {
			t.Fatalf("share of %s = %v", l.Name, l.Share)
		}
	}

	s := tm.Summary()
	for _, want := range []string{"expand", "3 files", "wall", "%"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary lacks %q:\n%s", want, s)
		}
	}
	d := tm.Diagnostic()
	if d.Code != diag.ObsTimings || len(d.Notes) != 3 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if !NewTimer().Report().Empty() {
		t.Fatal("empty timer should report nothing")
	}
}
