package buildpipeline

import "time"

// Phase describes a step of building one shader stage.
type Phase string

const (
	// PhasePreprocess expands includes into a merged unit.
	PhasePreprocess Phase = "preprocess"
	// PhaseWrite stores the merged unit and its source map.
	PhaseWrite Phase = "write"
	// PhaseCompile runs the external compiler.
	PhaseCompile Phase = "compile"
	// PhaseTranslate maps the compiler log back to original files.
	PhaseTranslate Phase = "translate"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhasePreprocess, PhaseWrite, PhaseCompile, PhaseTranslate}

// Status captures progress state within a phase.
type Status string

const (
	// StatusQueued indicates the stage is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the phase is running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished without errors.
	StatusDone Status = "done"
	// StatusError indicates the stage failed.
	StatusError Status = "error"
)

// Event reports progress for a stage source (or for the whole program when File is empty).
type Event struct {
	File    string
	Phase   Phase
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Build calls it from several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds phase durations.
type Timings struct {
	phases map[Phase]time.Duration
}

func (t *Timings) ensure() {
	if t.phases == nil {
		t.phases = make(map[Phase]time.Duration)
	}
}

// Set stores a duration for the given phase.
func (t *Timings) Set(phase Phase, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.phases[phase] = dur
}

// Add accumulates a duration for phase.
func (t *Timings) Add(phase Phase, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.phases[phase] += dur
}

// Has reports whether a duration for phase is recorded.
func (t Timings) Has(phase Phase) bool {
	if t.phases == nil {
		return false
	}
	_, ok := t.phases[phase]
	return ok
}

// Duration returns the recorded duration for phase.
func (t Timings) Duration(phase Phase) time.Duration {
	if t.phases == nil {
		return 0
	}
	return t.phases[phase]
}

// Sum returns the sum of durations across the provided phases.
func (t Timings) Sum(phases ...Phase) time.Duration {
	if t.phases == nil {
		return 0
	}
	var total time.Duration
	for _, phase := range phases {
		total += t.phases[phase]
	}
	return total
}
