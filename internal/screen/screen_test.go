package screen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencer_VisitsEveryStageOnce(t *testing.T) {
	for _, tc := range []struct {
		d time.Duration
		n int
	}{
		{500 * time.Millisecond, DefaultStages},
		{time.Second, 0},
		{10 * time.Millisecond, 9},
	} {
		sched := NewManualScheduler()
		var events []SequencerEvent
		seq := NewSequencer(tc.d, tc.n, sched, func(ev SequencerEvent) {
			events = append(events, ev)
		})

		seq.Start()
		for i := 0; i < tc.n+5; i++ {
			sched.Advance(tc.d)
		}

		require.Len(t, events, tc.n+2)
		for i := 0; i <= tc.n; i++ {
			assert.Equal(t, SequencerEvent{Stage: i}, events[i])
		}
		assert.Equal(t, SequencerEvent{Stage: tc.n, Hidden: true}, events[tc.n+1])
		assert.Equal(t, 0, sched.Pending())

		stage, hidden := seq.State()
		assert.Equal(t, tc.n, stage)
		assert.True(t, hidden)
	}
}

func TestSequencer_OneStagePerDuration(t *testing.T) {
	sched := NewManualScheduler()
	var last SequencerEvent
	seq := NewSequencer(time.Second, DefaultStages, sched, func(ev SequencerEvent) { last = ev })

	seq.Start()
	sched.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, last.Stage)

	sched.Advance(time.Millisecond)
	assert.Equal(t, 1, last.Stage)
	assert.Equal(t, 1, sched.Pending())
}

func TestSequencer_StopCancelsPendingTimer(t *testing.T) {
	sched := NewManualScheduler()
	var events []SequencerEvent
	seq := NewSequencer(time.Second, DefaultStages, sched, func(ev SequencerEvent) {
		events = append(events, ev)
	})

	seq.Start()
	sched.Advance(2 * time.Second)
	seq.Stop()
	sched.Advance(time.Minute)

	assert.Len(t, events, 3)
	assert.Equal(t, 0, sched.Pending())

	stage, hidden := seq.State()
	assert.Equal(t, 2, stage)
	assert.False(t, hidden)
}

func TestSequencer_RestartFromZero(t *testing.T) {
	sched := NewManualScheduler()
	var events []SequencerEvent
	seq := NewSequencer(time.Second, DefaultStages, sched, func(ev SequencerEvent) {
		events = append(events, ev)
	})

	seq.Start()
	sched.Advance(3 * time.Second)
	seq.Start()

	stage, _ := seq.State()
	assert.Equal(t, 0, stage)
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, SequencerEvent{Stage: 0}, events[len(events)-1])
}

func TestRotationState(t *testing.T) {
	assert.Equal(t, "initial", Initial.String())
	assert.Equal(t, Next, Initial.Advance())
	assert.Equal(t, Final, Next.Advance())
	assert.Equal(t, Initial, Final.Advance())

	want := []RotationState{Initial, Next, Final}
	for k := 0; k < 30; k++ {
		assert.Equal(t, want[k%3], StateAfter(k))
	}
}

func TestRotator_StateAfterTicks(t *testing.T) {
	sched := NewManualScheduler()
	cfg := DefaultRotatorConfig()
	cfg.Policy = RotateForever

	var events []RotatorEvent
	r := NewRotator(cfg, sched, func(ev RotatorEvent) { events = append(events, ev) })
	r.Start()

	for k := 1; k <= 100; k++ {
		sched.Advance(cfg.Interval)
		state, elapsed := r.State()
		assert.Equal(t, StateAfter(k), state)
		assert.Equal(t, 3*k, elapsed)
	}

	assert.True(t, r.Running())
	assert.Len(t, events, 101)
	assert.Equal(t, "initial", events[0].Name)
	assert.Equal(t, "Donut worry, be happy and eat more donuts!", events[1].Slide.Message)
}

func TestRotator_StopAtCeiling(t *testing.T) {
	sched := NewManualScheduler()
	cfg := DefaultRotatorConfig()

	var events []RotatorEvent
	r := NewRotator(cfg, sched, func(ev RotatorEvent) { events = append(events, ev) })
	r.Start()

	for i := 0; i < 60; i++ {
		sched.Advance(cfg.Interval)
	}

	// 120 / 3 = 40 ticks, plus the initial event
	require.Len(t, events, 41)
	last := events[len(events)-1]
	assert.True(t, last.Done)
	assert.Equal(t, 120, last.Elapsed)
	assert.Equal(t, StateAfter(40), last.State)
	assert.False(t, r.Running())
	assert.Equal(t, 0, sched.Pending())
}

func TestRotator_Stop(t *testing.T) {
	sched := NewManualScheduler()
	cfg := DefaultRotatorConfig()

	var n int
	r := NewRotator(cfg, sched, func(RotatorEvent) { n++ })
	r.Start()
	sched.Advance(cfg.Interval)
	r.Stop()
	sched.Advance(10 * cfg.Interval)

	assert.Equal(t, 2, n)
	assert.False(t, r.Running())
}

func TestRealScheduler_Stop(t *testing.T) {
	fired := make(chan struct{}, 1)
	timer := RealScheduler.AfterFunc(time.Hour, func() { fired <- struct{}{} })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	assert.Empty(t, fired)
}
