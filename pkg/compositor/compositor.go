// Package compositor implements the Compositor (spec §4.7): the pure,
// stateless fold of AffectSnapshot, RhythmClock state, active gestures, and
// BodyState into the directives the ParticlePool and Rasterizer consume.
package compositor

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fernglow/mascotcore/pkg/affect"
	"github.com/fernglow/mascotcore/pkg/body"
	"github.com/fernglow/mascotcore/pkg/gesture"
	"github.com/fernglow/mascotcore/pkg/particle"
	"github.com/fernglow/mascotcore/pkg/rhythm"
)

// pulseDecay controls how quickly a rhythm-profile accent fades across a
// subdivision step; higher values produce a sharper, shorter-lived pulse.
const pulseDecay = 3.0

// BodyDirective is the per-tick outline the Rasterizer draws (spec §4.7).
type BodyDirective struct {
	FromShape     body.Shape
	ToShape       body.Shape
	MorphT        float64
	Scale         float64
	Orientation   float64
	GlowColor     colorful.Color
	GlowIntensity float64
}

// Input is everything the Compositor needs for one fold; it holds no
// state of its own between calls.
type Input struct {
	Affect         affect.AffectSnapshot
	RhythmProfile  map[rhythm.Subdivision]float64
	Phase          rhythm.BeatPhase
	ActiveGestures []gesture.ActiveGesture
	Body           body.Directive

	// EmissionRateBase is the emotion's base particles/sec at the
	// reference tempo (affect.Defaults.EmissionRate), before the
	// AffectSnapshot's EmissionRateMul and gesture modulators apply.
	EmissionRateBase float64
	SpawnPosition    [2]float64
	BoundsMin        [2]float64
	BoundsMax        [2]float64
	Drag             float64
	GravityBias      [2]float64
}

// Output bundles the directives the rest of the tick pipeline consumes.
type Output struct {
	Body             BodyDirective
	EmissionRate     float64
	SpawnParams      particle.SpawnParams
	KinematicsParams particle.KinematicsParams
}

// Compositor folds Input into Output. It carries no state across calls.
type Compositor struct{}

// New constructs a Compositor. There is nothing to configure; the type
// exists so the engine can hold it alongside its other managers uniformly.
func New() *Compositor { return &Compositor{} }

// Compose performs the fold described in spec §4.7.
func (c *Compositor) Compose(in Input) Output {
	amp := rhythmAmplitude(in.RhythmProfile, in.Phase)

	rate := gesture.ReduceScalar(in.EmissionRateBase*in.Affect.EmissionRateMul, in.ActiveGestures, "emission_rate")
	glowIntensity := gesture.ReduceScalar(in.Affect.InterpolatedGlow, in.ActiveGestures, "glow_intensity")
	bodyScale := gesture.ReduceScalar(in.Body.Scale, in.ActiveGestures, "body_scale")
	orientation := gesture.ReduceAdditive(in.Body.Orientation, in.ActiveGestures, "orientation_bias")

	out := Output{
		Body: BodyDirective{
			FromShape:     in.Body.FromShape,
			ToShape:       in.Body.ToShape,
			MorphT:        in.Body.MorphT,
			Scale:         bodyScale,
			Orientation:   orientation,
			GlowColor:     in.Affect.InterpolatedColor,
			GlowIntensity: glowIntensity,
		},
		EmissionRate: math.Max(0, rate),
		SpawnParams: particle.SpawnParams{
			Position:       in.SpawnPosition,
			VelocityBase:   motionStyleVelocity(in.Affect.MotionStyle),
			VelocityJitter: [2]float64{0.3, 0.3},
			Size:           1.0,
			SizeJitter:     0.2,
			Lifetime:       1.5,
			LifetimeJitter: 0.3,
			Color:          in.Affect.InterpolatedColor,
			SourceID:       in.Affect.Emotion.String(),
		},
		KinematicsParams: particle.KinematicsParams{
			Drag:            in.Drag,
			GravityBias:     in.GravityBias,
			RhythmAmplitude: amp,
			BoundsMin:       in.BoundsMin,
			BoundsMax:       in.BoundsMax,
		},
	}
	return out
}

// rhythmAmplitude evaluates an emotion's rhythm profile at the clock's
// current position: each subdivision contributes a triangular pulse that
// peaks at its grid crossing and decays linearly to zero over the first
// 1/pulseDecay of the step, staying at zero for the rest of it, so particle
// motion visibly breathes with the beat (spec §4.7).
func rhythmAmplitude(profile map[rhythm.Subdivision]float64, phase rhythm.BeatPhase) float64 {
	pos := float64(phase.Beat) + phase.Phase01
	amp := 1.0
	for sub, weight := range profile {
		step := sub.BeatsPerStep()
		if step <= 0 {
			continue
		}
		sinceCrossing := math.Mod(pos, step)
		pulse := math.Max(0, 1-sinceCrossing/step*pulseDecay)
		amp += weight * pulse
	}
	return amp
}

// motionStyleVelocity maps a motion style tag to a base spawn velocity.
// Styles unknown to this table fall back to a gentle upward drift.
func motionStyleVelocity(style affect.MotionStyle) [2]float64 {
	switch style {
	case "burst":
		return [2]float64{0, -2.0}
	case "drift":
		return [2]float64{0, -0.4}
	case "settle":
		return [2]float64{0, 0.2}
	case "jitter":
		return [2]float64{0, -1.0}
	default:
		return [2]float64{0, -0.6}
	}
}
