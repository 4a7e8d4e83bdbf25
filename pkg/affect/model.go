package affect

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fernglow/mascotcore/internal/mathutil"
	"github.com/fernglow/mascotcore/pkg/mascoterr"
)

// DefaultCrossfadeDuration is the configurable default used when SetEmotion
// is called without an explicit duration (spec §4.2, §9).
const DefaultCrossfadeDuration = 400 * time.Millisecond

// resolved is an emotion+undertone combination's fully evaluated visual
// parameters, the quantity the crossfade interpolates between.
type resolved struct {
	color       colorful.Color
	glow        float64
	emissionMul float64
	motionStyle MotionStyle
}

func resolve(reg *Registry, e Emotion, u Undertone) (resolved, error) {
	def, ok := reg.Defaults(e)
	if !ok {
		return resolved{}, mascoterr.ErrInvalidAffect
	}
	delta, ok := reg.Delta(u)
	if !ok {
		return resolved{}, mascoterr.ErrInvalidAffect
	}

	c := colorful.Color{
		R: mathutil.Clamp01(def.Color.R + delta.ColorDelta[0]),
		G: mathutil.Clamp01(def.Color.G + delta.ColorDelta[1]),
		B: mathutil.Clamp01(def.Color.B + delta.ColorDelta[2]),
	}

	return resolved{
		color:       c,
		glow:        mathutil.Clamp(def.Glow+delta.GlowDelta, 0, 2),
		emissionMul: mathutil.Clamp(1+delta.EmissionMulDelta, 0, 4),
		motionStyle: def.MotionStyle,
	}, nil
}

// Model is the AffectModel: current/target emotion and undertone, with a
// running crossfade toward resolved visual parameters (spec §4.2).
type Model struct {
	reg *Registry

	targetEmotion   Emotion
	targetUndertone Undertone

	from, to resolved
	elapsed  float64
	duration float64

	defaultDuration float64
}

// NewModel constructs an AffectModel at rest on the given initial
// emotion/undertone (no crossfade in progress).
func NewModel(reg *Registry, initial Emotion, initialUndertone Undertone) (*Model, error) {
	r, err := resolve(reg, initial, initialUndertone)
	if err != nil {
		return nil, err
	}
	return &Model{
		reg:             reg,
		targetEmotion:   initial,
		targetUndertone: initialUndertone,
		from:            r,
		to:              r,
		elapsed:         0,
		duration:        0,
		defaultDuration: DefaultCrossfadeDuration.Seconds(),
	}, nil
}

// SetDefaultCrossfadeDuration overrides the duration used when SetEmotion
// is called with duration <= 0.
func (m *Model) SetDefaultCrossfadeDuration(d time.Duration) {
	m.defaultDuration = d.Seconds()
}

// SetEmotion retargets the model, beginning a crossfade of the given
// duration (or the configured default if duration <= 0). If called mid
// crossfade, the current interpolated value becomes the new "previous"
// value — no snap (spec §4.2). Setting the same emotion+undertone already
// targeted is a no-op. Fails with ErrInvalidAffect (state unchanged) for
// an unknown emotion or undertone.
func (m *Model) SetEmotion(emotion Emotion, undertone Undertone, duration time.Duration) error {
	if emotion == m.targetEmotion && undertone == m.targetUndertone {
		// still validate, so an invalid no-op reports the same error it
		// would if it weren't a no-op
		if !emotion.Valid() || !undertone.Valid() {
			return mascoterr.ErrInvalidAffect
		}
		return nil
	}

	to, err := resolve(m.reg, emotion, undertone)
	if err != nil {
		return err
	}

	m.from = m.currentResolved()
	m.to = to
	m.elapsed = 0
	if duration > 0 {
		m.duration = duration.Seconds()
	} else {
		m.duration = m.defaultDuration
	}
	m.targetEmotion = emotion
	m.targetUndertone = undertone
	return nil
}

// Advance steps the crossfade forward by dt seconds. On completion, the
// fade becomes inert (from == to).
func (m *Model) Advance(dt float64) {
	if m.duration <= 0 {
		m.from = m.to
		return
	}
	m.elapsed += dt
	if m.elapsed >= m.duration {
		m.elapsed = m.duration
		m.from = m.to
	}
}

// currentResolved returns the interpolated value at the current fade
// position without mutating state.
func (m *Model) currentResolved() resolved {
	t := 1.0
	if m.duration > 0 {
		t = mathutil.Clamp01(m.elapsed / m.duration)
	}
	return resolved{
		color:       m.from.color.BlendRgb(m.to.color, t),
		glow:        mathutil.Lerp(m.from.glow, m.to.glow, t),
		emissionMul: mathutil.Lerp(m.from.emissionMul, m.to.emissionMul, t),
		motionStyle: m.to.motionStyle,
	}
}

// Snapshot returns the resolved interpolated AffectSnapshot (spec §4.2).
func (m *Model) Snapshot() AffectSnapshot {
	r := m.currentResolved()
	return AffectSnapshot{
		Emotion:           m.targetEmotion,
		Undertone:         m.targetUndertone,
		InterpolatedColor: r.color,
		InterpolatedGlow:  r.glow,
		EmissionRateMul:   r.emissionMul,
		MotionStyle:       r.motionStyle,
	}
}

// Registry exposes the model's emotion/undertone table, so the Compositor
// can look up rhythm profiles for the current target emotion.
func (m *Model) Registry() *Registry { return m.reg }
