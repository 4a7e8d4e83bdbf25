// Package timebase provides the engine's single source of wall-clock truth
// (spec §4.1). No other component calls time.Now directly.
package timebase

import "time"

// maxDt is the frame-time clamp: a tickFrame report larger than this is
// treated as exactly this much, so a throttled tab or a GC pause never
// triggers a catch-up burst downstream.
const maxDt = 100 * time.Millisecond

// TimeBase is the engine's monotonic clock with pause/resume semantics.
type TimeBase struct {
	clockNow func() time.Time // overridable for deterministic tests

	last    time.Time
	paused  bool
	pauseAt time.Time
	started bool
}

// New creates a TimeBase anchored to the current wall-clock instant.
func New() *TimeBase {
	return NewWithClock(time.Now)
}

// NewWithClock lets callers (tests, deterministic replay harnesses) supply
// their own monotonic clock function instead of time.Now.
func NewWithClock(clockNow func() time.Time) *TimeBase {
	now := clockNow()
	return &TimeBase{clockNow: clockNow, last: now, started: true}
}

// Now returns the current monotonic instant. While paused it is frozen at
// the pause instant.
func (t *TimeBase) Now() time.Time {
	if t.paused {
		return t.pauseAt
	}
	return t.clockNow()
}

// TickFrame returns the clamped seconds elapsed since the previous call.
// Returns 0 while paused.
func (t *TimeBase) TickFrame() float64 {
	if t.paused {
		return 0
	}
	now := t.clockNow()
	dt := now.Sub(t.last)
	t.last = now
	if dt < 0 {
		dt = 0
	}
	if dt > maxDt {
		dt = maxDt
	}
	return dt.Seconds()
}

// Pause freezes the clock. Idempotent: pausing an already-paused clock is a
// no-op (spec §8 pause idempotence law).
func (t *TimeBase) Pause() {
	if t.paused {
		return
	}
	t.paused = true
	t.pauseAt = t.clockNow()
}

// Resume reattaches the clock to wall time without back-dating: the next
// TickFrame call measures only time elapsed after Resume, never the time
// spent paused. Idempotent.
func (t *TimeBase) Resume() {
	if !t.paused {
		return
	}
	t.paused = false
	t.last = t.clockNow()
}

// Paused reports whether the clock is currently frozen.
func (t *TimeBase) Paused() bool {
	return t.paused
}
