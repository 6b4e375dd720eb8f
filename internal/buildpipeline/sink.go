package buildpipeline

import (
	"sync"
	"time"
)

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

// ChannelSink sends every event on Ch and blocks while the channel is full.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

// RecordingSink keeps every event in arrival order.
type RecordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *RecordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of the recorded events.
func (s *RecordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Last returns the most recent event recorded for file.
func (s *RecordingSink) Last(file string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].File == file {
			return s.events[i], true
		}
	}
	return Event{}, false
}

// progress sends the events of one stage (or of the program when ref is "").
type progress struct {
	sink ProgressSink
	ref  string
}

func (p progress) send(phase Phase, status Status, err error, elapsed time.Duration) {
	if p.sink != nil {
		p.sink.OnEvent(Event{File: p.ref, Phase: phase, Status: status, Err: err, Elapsed: elapsed})
	}
}
