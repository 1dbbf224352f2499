// Package debounce delays an action until its input has been quiet for a
// fixed period.
//
// A Timer never sleeps or spawns goroutines itself. Trigger returns a tea.Cmd
// that emits Elapsed after the delay; the owner feeds Elapsed back through its
// update loop and calls Fire. Only the most recently triggered token fires,
// so a burst of triggers produces a single action carrying the last payload.
package debounce

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the quiet period used when none is configured
const DefaultDelay = 300 * time.Millisecond

// TickFunc schedules fn after d. tea.Tick satisfies it; tests substitute an
// immediate version.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Elapsed is emitted when a trigger's quiet period ends
type Elapsed[P any] struct {
	Seq     uint64
	Payload P
}

// Timer is a value-type debounce timer. The zero value is unusable; build one
// with New.
type Timer[P any] struct {
	delay   time.Duration
	seq     uint64
	pending bool
	tick    TickFunc
}

// New returns a timer with the given quiet period. A non-positive delay falls
// back to DefaultDelay.
func New[P any](delay time.Duration) Timer[P] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return Timer[P]{delay: delay, tick: tea.Tick}
}

// WithTick replaces the scheduler
func (t Timer[P]) WithTick(tick TickFunc) Timer[P] {
	t.tick = tick
	return t
}

// Delay returns the configured quiet period
func (t Timer[P]) Delay() time.Duration { return t.delay }

// Pending reports whether a trigger is waiting to fire
func (t Timer[P]) Pending() bool { return t.pending }

// Trigger restarts the quiet period for payload. Every earlier trigger is
// superseded and will be ignored by Fire.
func (t Timer[P]) Trigger(payload P) (Timer[P], tea.Cmd) {
	t.seq++
	t.pending = true
	seq := t.seq
	tick := t.tick
	if tick == nil {
		tick = tea.Tick
	}
	return t, tick(t.delay, func(time.Time) tea.Msg {
		return Elapsed[P]{Seq: seq, Payload: payload}
	})
}

// Cancel supersedes any pending trigger without scheduling a new one
func (t Timer[P]) Cancel() Timer[P] {
	t.seq++
	t.pending = false
	return t
}

// IsCurrent reports whether msg belongs to the latest trigger
func (t Timer[P]) IsCurrent(msg Elapsed[P]) bool {
	return t.pending && msg.Seq == t.seq
}

// Fire consumes msg. ok is true only for the latest pending trigger, in which
// case the caller should perform the debounced action with msg.Payload.
func (t Timer[P]) Fire(msg Elapsed[P]) (Timer[P], bool) {
	if !t.IsCurrent(msg) {
		return t, false
	}
	t.pending = false
	return t, true
}
