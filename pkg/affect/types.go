// Package affect implements the engine's emotion/undertone state machine
// (spec §4.2): a closed enumeration of 14 emotions, a small closed set of
// undertone modifiers, and a crossfading AffectModel resolving both into
// an AffectSnapshot each tick.
package affect

import "github.com/lucasb-eyer/go-colorful"

// Emotion is drawn from the closed 14-state enumeration (spec §3).
type Emotion int

const (
	Joy Emotion = iota
	Love
	Excited
	Euphoria
	Calm
	Focused
	Resting
	Sadness
	Anger
	Fear
	Surprise
	Suspicion
	Disgust
	Neutral

	emotionCount
)

var emotionNames = [...]string{
	Joy: "joy", Love: "love", Excited: "excited", Euphoria: "euphoria",
	Calm: "calm", Focused: "focused", Resting: "resting", Sadness: "sadness",
	Anger: "anger", Fear: "fear", Surprise: "surprise", Suspicion: "suspicion",
	Disgust: "disgust", Neutral: "neutral",
}

// String returns the emotion's stable identifier.
func (e Emotion) String() string {
	if e < 0 || int(e) >= len(emotionNames) {
		return "unknown"
	}
	return emotionNames[e]
}

// Valid reports whether e is a member of the closed enumeration.
func (e Emotion) Valid() bool { return e >= 0 && e < emotionCount }

// Undertone is an optional additive modifier on top of an Emotion.
// UndertoneNone represents "no undertone" (spec §3's Option<Undertone>).
type Undertone int

const (
	UndertoneNone Undertone = iota
	Intense
	Subdued
	Nervous
	Tired
	Confident

	undertoneCount
)

var undertoneNames = [...]string{
	UndertoneNone: "", Intense: "intense", Subdued: "subdued",
	Nervous: "nervous", Tired: "tired", Confident: "confident",
}

// String returns the undertone's stable identifier ("" for UndertoneNone).
func (u Undertone) String() string {
	if u < 0 || int(u) >= len(undertoneNames) {
		return "unknown"
	}
	return undertoneNames[u]
}

// Valid reports whether u is a member of the closed set (including None).
func (u Undertone) Valid() bool { return u >= 0 && u < undertoneCount }

// MotionStyle is an opaque tag describing how an emotion's particles move;
// the Compositor maps it to a spawn velocity, this package only carries it.
type MotionStyle string

// AffectSnapshot is the AffectModel's externally visible value at an instant.
type AffectSnapshot struct {
	Emotion           Emotion
	Undertone         Undertone
	InterpolatedColor colorful.Color
	InterpolatedGlow  float64
	EmissionRateMul   float64
	MotionStyle       MotionStyle
}
