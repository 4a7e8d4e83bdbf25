package engine

import (
	"github.com/fernglow/mascotcore/pkg/affect"
	"github.com/fernglow/mascotcore/pkg/body"
)

// Snapshot is the persisted-state surface from spec §6: enough to resume an
// engine in its targeted (not mid-transition) state, including the PRNG
// position so replayed particle sequences stay deterministic.
type Snapshot struct {
	Emotion       affect.Emotion
	Undertone     affect.Undertone
	Shape         body.Shape
	BPM           float64
	RhythmEnabled bool
	RngSeed       uint64
	RngStep       uint64
}

// Snapshot captures the engine's current targeted state. In-flight
// crossfades and morphs are not captured: RestoreSnapshot resumes at rest
// on the targeted emotion/shape rather than replaying a partial transition.
func (e *Engine) Snapshot() Snapshot {
	affectSnap := e.affectMdl.Snapshot()
	return Snapshot{
		Emotion:       affectSnap.Emotion,
		Undertone:     affectSnap.Undertone,
		Shape:         e.bodyState.TargetShape(),
		BPM:           e.clock.BPM(),
		RhythmEnabled: e.clock.Enabled(),
		RngSeed:       e.rngSeed,
		RngStep:       e.particles.RNG().Step(),
	}
}

// RestoreSnapshot puts the engine at rest on the given snapshot: emotion,
// undertone, and shape are applied instantaneously (no crossfade/morph),
// and the particle PRNG is reseeded and fast-forwarded to the recorded
// step so subsequent emissions continue the same deterministic sequence.
func (e *Engine) RestoreSnapshot(s Snapshot) error {
	if err := e.affectMdl.SetEmotion(s.Emotion, s.Undertone, 0); err != nil {
		return err
	}
	e.affectMdl.Advance(affect.DefaultCrossfadeDuration.Seconds())
	if err := e.bodyState.SetShape(s.Shape, 0); err != nil {
		return err
	}
	e.bodyState.Advance(body.DefaultMorphDuration.Seconds())
	if err := e.clock.SetBpm(s.BPM); err != nil {
		return err
	}
	if s.RhythmEnabled {
		e.clock.Enable()
	} else {
		e.clock.Disable()
	}
	e.particles.RNG().Seed(s.RngSeed)
	e.particles.RNG().FastForward(s.RngStep)
	e.rngSeed = s.RngSeed
	return nil
}
