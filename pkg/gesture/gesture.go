// Package gesture implements the engine's declarative animation overlays
// (spec §4.4): beat-aligned admission, exclusivity-class displacement, and
// per-parameter modulator composition, surfaced to the Compositor each tick.
package gesture

import (
	"github.com/google/uuid"

	"github.com/fernglow/mascotcore/pkg/rhythm"
)

// Family identifies a registered gesture pattern (e.g. "bounce", "shake").
type Family string

// Curve evaluates a modulator's value at normalized gesture time t in [0,1].
type Curve interface {
	Eval(t float64) float64
}

// ConstantCurve is a Curve that never varies over the gesture's lifetime.
type ConstantCurve float64

func (c ConstantCurve) Eval(float64) float64 { return float64(c) }

// Keyframe is one control point of a LinearCurve.
type Keyframe struct {
	T float64
	V float64
}

// LinearCurve piecewise-linearly interpolates between ordered keyframes.
// Keyframes must be sorted by T; T outside [first,last] clamps to the
// nearest endpoint value.
type LinearCurve []Keyframe

func (c LinearCurve) Eval(t float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if t <= c[0].T {
		return c[0].V
	}
	last := c[len(c)-1]
	if t >= last.T {
		return last.V
	}
	for i := 1; i < len(c); i++ {
		if t <= c[i].T {
			prev := c[i-1]
			span := c[i].T - prev.T
			if span <= 0 {
				return c[i].V
			}
			frac := (t - prev.T) / span
			return prev.V + (c[i].V-prev.V)*frac
		}
	}
	return last.V
}

// ParamModulator biases one named render parameter over a gesture's life.
type ParamModulator struct {
	Target string
	Curve  Curve
}

// ExclusivityKind is the closed enumeration of exclusivity classes (spec §4.4).
type ExclusivityKind int

const (
	Solo ExclusivityKind = iota
	FamilyExclusive
	Overlay
	Ambient
)

// Exclusivity describes how a gesture composes with other active gestures.
// FamilyExclusive and Ambient conflict-check against the gesture's own
// Family field; there is no separate family parameter to carry here.
type Exclusivity struct {
	Kind ExclusivityKind
}

// Descriptor is the declarative gesture record a caller submits to
// enqueue (spec §4.3's Gesture record).
type Descriptor struct {
	Family           Family
	Element          string
	DurationBeats    float64
	Exclusivity      Exclusivity
	Modulators       []ParamModulator
	BeatAligned      bool
	AlignSubdivision rhythm.Subdivision
}

// lifecycleState is the per-gesture state machine (spec §4.4).
type lifecycleState int

const (
	statePendingConflict lifecycleState = iota // queued behind an incumbent
	statePendingBeat                           // queued for a beat-aligned start
	stateActive
	stateRetiring
	stateDone
	stateCancelled
)

type instance struct {
	id       uuid.UUID
	desc     Descriptor
	priority int
	state    lifecycleState
	normTime float64

	// valid only in statePendingBeat
	targetBeat    uint64
	targetPhase01 float64
}

// ActiveGesture is the live, read-only snapshot the Compositor folds into
// its per-parameter reduction (spec §4.4 activeGestures).
type ActiveGesture struct {
	ID             uuid.UUID
	Family         Family
	Exclusivity    Exclusivity
	NormalizedTime float64
	Modulators     []ParamModulator
}

// EventKind identifies which gesture lifecycle event occurred.
type EventKind int

const (
	EventStarted EventKind = iota
	EventEnded
	EventCancelled
	EventRejected
)

// Event is a gesture lifecycle notification the engine relays onto the
// event bus (spec §4.9).
type Event struct {
	Kind   EventKind
	ID     uuid.UUID
	Family Family
	Reason error // set for EventCancelled/EventRejected
}

// FamilyConfig registers a known gesture family with its fixed admission
// priority and per-class pending-queue depth (spec §4.4: "priority is a
// fixed per-family value").
type FamilyConfig struct {
	Priority   int
	QueueDepth int
}

const defaultQueueDepth = 4

// Scheduler is the GestureScheduler: admits, displaces, retires, and
// surfaces active gestures every tick.
type Scheduler struct {
	families map[Family]FamilyConfig
	active   []*instance
	pending  []*instance
}

// NewScheduler constructs a Scheduler with the given known families.
func NewScheduler(families map[Family]FamilyConfig) *Scheduler {
	f := make(map[Family]FamilyConfig, len(families))
	for k, v := range families {
		if v.QueueDepth <= 0 {
			v.QueueDepth = defaultQueueDepth
		}
		f[k] = v
	}
	return &Scheduler{families: f}
}
