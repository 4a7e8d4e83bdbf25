// Package body implements BodyState (spec §4.3): the mascot's shape, scale,
// orientation, and morph progress, independent of the particle field and
// affect color.
package body

import (
	"time"

	"github.com/fernglow/mascotcore/internal/mathutil"
	"github.com/fernglow/mascotcore/pkg/mascoterr"
)

// Shape is drawn from the closed shape enumeration (spec §3).
type Shape int

const (
	Circle Shape = iota
	Star
	Heart
	Moon
	Sun
	Square
	Triangle
	Diamond
	Crystal

	shapeCount
)

var shapeNames = [...]string{
	Circle: "circle", Star: "star", Heart: "heart", Moon: "moon", Sun: "sun",
	Square: "square", Triangle: "triangle", Diamond: "diamond", Crystal: "crystal",
}

// String returns the shape's stable identifier.
func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}
	return shapeNames[s]
}

// Valid reports whether s is a member of the closed enumeration.
func (s Shape) Valid() bool { return s >= 0 && s < shapeCount }

// DefaultMorphDuration is used when SetShape is called with duration <= 0.
const DefaultMorphDuration = 350 * time.Millisecond

// Directive is the resolved per-tick outline the Compositor folds into a
// BodyDirective: the morph-interpolated shape blend plus scale/orientation.
type Directive struct {
	FromShape   Shape
	ToShape     Shape
	MorphT      float64 // 0 == FromShape, 1 == ToShape
	Scale       float64
	Orientation float64 // radians
}

// State is the BodyState state machine: current shape with an in-flight,
// no-snap morph toward a target shape, plus scale and orientation that the
// engine or gestures can drive directly.
type State struct {
	targetShape Shape

	fromShape Shape
	toShape   Shape
	elapsed   float64
	duration  float64

	scale       float64
	orientation float64
}

// New constructs a State at rest on the given initial shape, unit scale,
// and zero orientation.
func New(initial Shape) (*State, error) {
	if !initial.Valid() {
		return nil, mascoterr.ErrInvalidShape
	}
	return &State{
		targetShape: initial,
		fromShape:   initial,
		toShape:     initial,
		scale:       1,
		orientation: 0,
	}, nil
}

// SetShape retargets the body toward newShape over duration (or
// DefaultMorphDuration if duration <= 0). A mid-morph retarget starts the
// new morph from whichever of the two blended shapes is nearer at that
// moment: fromShape before the halfway point, toShape from it on. The
// partial blend itself is not carried over, so the outline can jump at the
// retarget. Setting the shape already targeted is a no-op.
func (s *State) SetShape(newShape Shape, duration time.Duration) error {
	if !newShape.Valid() {
		return mascoterr.ErrInvalidShape
	}
	if newShape == s.targetShape {
		return nil
	}

	// A morph can only blend between two discrete shapes at once, so a
	// mid-morph retarget snaps forward to whichever shape is currently
	// closer in the blend and starts a fresh morph from there.
	if s.morphT() >= 0.5 {
		s.fromShape = s.toShape
	}
	s.toShape = newShape
	s.elapsed = 0
	if duration > 0 {
		s.duration = duration.Seconds()
	} else {
		s.duration = DefaultMorphDuration.Seconds()
	}
	s.targetShape = newShape
	return nil
}

// SetScale sets the body's scale directly (no transition; spec leaves scale
// changes instantaneous, unlike shape/color).
func (s *State) SetScale(scale float64) {
	if scale < 0 {
		scale = 0
	}
	s.scale = scale
}

// SetOrientation sets the body's orientation in radians directly.
func (s *State) SetOrientation(radians float64) {
	s.orientation = radians
}

// Advance steps the morph forward by dt seconds.
func (s *State) Advance(dt float64) {
	if s.duration <= 0 {
		s.fromShape = s.toShape
		s.elapsed = 0
		return
	}
	s.elapsed += dt
	if s.elapsed >= s.duration {
		s.elapsed = s.duration
		s.fromShape = s.toShape
	}
}

func (s *State) morphT() float64 {
	if s.duration <= 0 {
		return 1
	}
	return mathutil.Clamp01(s.elapsed / s.duration)
}

// Morphing reports whether a shape transition is currently in flight.
func (s *State) Morphing() bool { return s.fromShape != s.toShape }

// TargetShape returns the shape most recently requested via SetShape.
func (s *State) TargetShape() Shape { return s.targetShape }

// Snapshot returns the resolved Directive for the current tick.
func (s *State) Snapshot() Directive {
	return Directive{
		FromShape:   s.fromShape,
		ToShape:     s.toShape,
		MorphT:      s.morphT(),
		Scale:       s.scale,
		Orientation: s.orientation,
	}
}
