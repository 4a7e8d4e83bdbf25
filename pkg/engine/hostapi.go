package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/fernglow/mascotcore/pkg/affect"
	"github.com/fernglow/mascotcore/pkg/body"
	"github.com/fernglow/mascotcore/pkg/gesture"
	"github.com/fernglow/mascotcore/pkg/mascoterr"
	"github.com/fernglow/mascotcore/pkg/rhythm"
)

// submit enqueues cmd for application at the start of the next tick. A
// full queue drops the command and increments a diagnostics metric rather
// than blocking the caller or erroring — the same silent-pressure-metric
// posture the spec takes toward particle overflow and tempo rejection.
func (e *Engine) submit(cmd Command) {
	select {
	case e.commands <- cmd:
	default:
		e.diag.DroppedCommands++
	}
}

// SetEmotion retargets emotion and undertone over duration (spec §4.9).
// Validation happens here, synchronously, so a failure never mutates
// state and never silently enters the queue (spec §7 propagation policy).
func (e *Engine) SetEmotion(emotion affect.Emotion, undertone affect.Undertone, duration time.Duration) error {
	if !emotion.Valid() || !undertone.Valid() {
		return mascoterr.NewCommandError("setEmotion", "emotion", mascoterr.ErrInvalidAffect)
	}
	e.submit(SetEmotionCommand{Emotion: emotion, Undertone: undertone, Duration: duration})
	return nil
}

// SetUndertone retargets only the undertone (spec §4.9).
func (e *Engine) SetUndertone(undertone affect.Undertone, duration time.Duration) error {
	if !undertone.Valid() {
		return mascoterr.NewCommandError("setUndertone", "undertone", mascoterr.ErrInvalidAffect)
	}
	e.submit(SetUndertoneCommand{Undertone: undertone, Duration: duration})
	return nil
}

// TriggerGesture admits a gesture descriptor (spec §4.9). The family must
// be registered; admission itself (displacement, queuing, rejection)
// happens at tick time per spec §4.4 and is reported via events, not a
// returned error.
func (e *Engine) TriggerGesture(desc gesture.Descriptor) error {
	if !e.scheduler.FamilyKnown(desc.Family) {
		return mascoterr.NewCommandError("triggerGesture", "family", mascoterr.ErrUnknownGestureFamily)
	}
	e.submit(TriggerGestureCommand{Descriptor: desc})
	return nil
}

// CancelGesture cancels a gesture by id; unknown ids are a no-op (spec §4.4).
func (e *Engine) CancelGesture(id uuid.UUID) {
	e.submit(CancelGestureCommand{ID: id})
}

// CancelGestureFamily cancels every active or pending gesture in family.
func (e *Engine) CancelGestureFamily(family gesture.Family) {
	e.submit(CancelGestureFamilyCommand{Family: family})
}

// SetShape begins a body morph toward shape (spec §4.9).
func (e *Engine) SetShape(shape body.Shape, duration time.Duration) error {
	if !shape.Valid() {
		return mascoterr.NewCommandError("setShape", "shape", mascoterr.ErrInvalidShape)
	}
	e.submit(SetShapeCommand{Shape: shape, Duration: duration})
	return nil
}

// SetBpm updates tempo, preserving phase01 (spec §4.3, §4.9).
func (e *Engine) SetBpm(bpm float64) error {
	if bpm < rhythm.MinBPM || bpm > rhythm.MaxBPM {
		return mascoterr.NewCommandError("setBpm", "bpm", mascoterr.ErrInvalidBpm)
	}
	e.submit(SetBpmCommand{BPM: bpm})
	return nil
}

// EnableRhythm turns the RhythmClock on.
func (e *Engine) EnableRhythm() { e.submit(EnableRhythmCommand{}) }

// DisableRhythm turns the RhythmClock off.
func (e *Engine) DisableRhythm() { e.submit(DisableRhythmCommand{}) }

// Play resumes the TimeBase.
func (e *Engine) Play() { e.submit(PlayCommand{}) }

// Pause freezes the TimeBase.
func (e *Engine) Pause() { e.submit(PauseCommand{}) }

// SeedRng reseeds the ParticlePool's PRNG (spec §4.9).
func (e *Engine) SeedRng(seed uint64) { e.submit(SeedRngCommand{Seed: seed}) }

// Resize updates the particle bounding box / canvas size (spec §4.9).
func (e *Engine) Resize(width, height int) {
	e.submit(ResizeCommand{Width: width, Height: height})
}
