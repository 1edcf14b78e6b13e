package screen

import (
	"sync"
	"time"
)

// RotationState is one of the three redirect page states.
type RotationState int

const (
	Initial RotationState = iota
	Next
	Final
)

var rotationNames = [...]string{"initial", "next", "final"}

func (r RotationState) String() string {
	return rotationNames[r]
}

// Advance returns the state after r, wrapping final to initial.
func (r RotationState) Advance() RotationState {
	return (r + 1) % 3
}

// StateAfter returns the state after k ticks from Initial.
func StateAfter(k int) RotationState {
	return RotationState(k % 3)
}

// CeilingPolicy decides what reaching the elapsed ceiling does.
type CeilingPolicy int

const (
	// StopAtCeiling stops rotating once elapsed reaches the ceiling.
	StopAtCeiling CeilingPolicy = iota
	// RotateForever keeps counting elapsed time but never stops.
	RotateForever
)

// RotatorConfig holds the rotator timing.
type RotatorConfig struct {
	Interval time.Duration // between rotations
	Step     int           // elapsed units added per tick
	Ceiling  int           // elapsed units
	Policy   CeilingPolicy
}

// DefaultRotatorConfig matches the redirect page: rotate every 3s, 3 units
// per tick, stop at 120.
func DefaultRotatorConfig() RotatorConfig {
	return RotatorConfig{
		Interval: 3 * time.Second,
		Step:     3,
		Ceiling:  120,
		Policy:   StopAtCeiling,
	}
}

// RotatorEvent is emitted on every rotation.
type RotatorEvent struct {
	State   RotationState `json:"-"`
	Name    string        `json:"state"`
	Elapsed int           `json:"elapsed"`
	Slide   Slide         `json:"slide"`
	Done    bool          `json:"done"`
}

// Rotator cycles initial → next → final on a fixed tick. Elapsed and state
// change together in one callback.
type Rotator struct {
	cfg   RotatorConfig
	sched Scheduler
	emit  func(RotatorEvent)

	mu      sync.Mutex
	state   RotationState
	elapsed int
	running bool
	timer   Timer
	gen     int
}

func NewRotator(cfg RotatorConfig, sched Scheduler, emit func(RotatorEvent)) *Rotator {
	return &Rotator{cfg: cfg, sched: sched, emit: emit}
}

// Start (re)starts from Initial with nothing elapsed.
func (r *Rotator) Start() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
	r.state = Initial
	r.elapsed = 0
	r.running = true
	gen := r.gen
	ev := r.event(false)
	r.mu.Unlock()

	r.emit(ev)

	r.mu.Lock()
	if r.running && gen == r.gen {
		r.arm(gen)
	}
	r.mu.Unlock()
}

// Stop cancels the pending tick.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.running = false
	r.gen++
}

// State returns the current rotation state and elapsed units.
func (r *Rotator) State() (RotationState, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.elapsed
}

// Running reports whether a tick is armed.
func (r *Rotator) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Rotator) arm(gen int) {
	r.timer = r.sched.AfterFunc(r.cfg.Interval, func() { r.tick(gen) })
}

func (r *Rotator) tick(gen int) {
	r.mu.Lock()
	if !r.running || gen != r.gen {
		r.mu.Unlock()
		return
	}

	r.timer = nil
	r.elapsed += r.cfg.Step
	r.state = r.state.Advance()

	done := r.cfg.Policy == StopAtCeiling && r.elapsed >= r.cfg.Ceiling
	if done {
		r.running = false
	}
	ev := r.event(done)
	r.mu.Unlock()

	r.emit(ev)
	if done {
		return
	}

	r.mu.Lock()
	if r.running && gen == r.gen {
		r.arm(gen)
	}
	r.mu.Unlock()
}

func (r *Rotator) event(done bool) RotatorEvent {
	return RotatorEvent{
		State:   r.state,
		Name:    r.state.String(),
		Elapsed: r.elapsed,
		Slide:   SlideFor(r.state),
		Done:    done,
	}
}
