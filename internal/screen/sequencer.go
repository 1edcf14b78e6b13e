package screen

import (
	"sync"
	"time"
)

// DefaultStages is the number of logo stages on the flash screen.
const DefaultStages = 5

// SequencerEvent is emitted on every transition.
type SequencerEvent struct {
	Stage  int  `json:"stage"`
	Hidden bool `json:"hidden"`
}

// Sequencer walks Stage(0)..Stage(N), one stage per duration, then emits a
// single hidden event and stops. At most one timer is armed at a time.
type Sequencer struct {
	duration time.Duration
	stages   int
	sched    Scheduler
	emit     func(SequencerEvent)

	mu      sync.Mutex
	stage   int
	hidden  bool
	running bool
	timer   Timer
	gen     int
}

// NewSequencer builds a sequencer; emit receives every stage and the final
// hidden event. emit is called without the sequencer's lock held.
func NewSequencer(duration time.Duration, stages int, sched Scheduler, emit func(SequencerEvent)) *Sequencer {
	if stages < 0 {
		stages = 0
	}
	return &Sequencer{
		duration: duration,
		stages:   stages,
		sched:    sched,
		emit:     emit,
	}
}

// Start (re)starts the sequence from Stage(0). Stage(0) is emitted before
// the first timer is armed.
func (s *Sequencer) Start() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.stage = 0
	s.hidden = false
	s.running = true
	gen := s.gen
	s.mu.Unlock()

	s.emit(SequencerEvent{Stage: 0})

	s.mu.Lock()
	if s.running && gen == s.gen {
		s.timer = s.sched.AfterFunc(s.duration, func() { s.tick(gen) })
	}
	s.mu.Unlock()
}

// Stop cancels the pending timer. Progress halts where it is.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.running = false
	s.gen++
}

// State returns the current stage and whether the screen is hidden.
func (s *Sequencer) State() (stage int, hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage, s.hidden
}

func (s *Sequencer) tick(gen int) {
	s.mu.Lock()
	if !s.running || gen != s.gen {
		s.mu.Unlock()
		return
	}

	s.timer = nil
	var ev SequencerEvent
	if s.stage < s.stages {
		s.stage++
		ev = SequencerEvent{Stage: s.stage}
	} else {
		s.hidden = true
		s.running = false
		ev = SequencerEvent{Stage: s.stage, Hidden: true}
	}
	s.mu.Unlock()

	s.emit(ev)
	if ev.Hidden {
		return
	}

	s.mu.Lock()
	if s.running && gen == s.gen {
		s.timer = s.sched.AfterFunc(s.duration, func() { s.tick(gen) })
	}
	s.mu.Unlock()
}
