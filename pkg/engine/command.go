package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/fernglow/mascotcore/pkg/affect"
	"github.com/fernglow/mascotcore/pkg/body"
	"github.com/fernglow/mascotcore/pkg/gesture"
)

// Command is the closed discriminated union of HostAPI commands (spec
// §4.9): every host mutation enters the engine as one of these concrete
// types rather than a dynamic/dictionary payload, so the tick-start apply
// switch is exhaustive and compiler-checked.
type Command interface {
	isCommand()
}

// SetEmotionCommand retargets the AffectModel's emotion and/or undertone.
type SetEmotionCommand struct {
	Emotion   affect.Emotion
	Undertone affect.Undertone
	Duration  time.Duration
}

// SetUndertoneCommand retargets only the undertone, preserving the
// currently targeted emotion.
type SetUndertoneCommand struct {
	Undertone affect.Undertone
	Duration  time.Duration
}

// TriggerGestureCommand admits a new gesture via the GestureScheduler.
type TriggerGestureCommand struct {
	Descriptor gesture.Descriptor
}

// CancelGestureCommand cancels a gesture by id (no-op if unknown).
type CancelGestureCommand struct {
	ID uuid.UUID
}

// CancelGestureFamilyCommand cancels every active or pending gesture in a family.
type CancelGestureFamilyCommand struct {
	Family gesture.Family
}

// SetShapeCommand begins a body morph toward Shape.
type SetShapeCommand struct {
	Shape    body.Shape
	Duration time.Duration
}

// SetBpmCommand updates the RhythmClock's tempo directly, preserving phase01.
type SetBpmCommand struct {
	BPM float64
}

// EnableRhythmCommand turns the RhythmClock on.
type EnableRhythmCommand struct{}

// DisableRhythmCommand turns the RhythmClock off.
type DisableRhythmCommand struct{}

// PlayCommand resumes the TimeBase.
type PlayCommand struct{}

// PauseCommand freezes the TimeBase.
type PauseCommand struct{}

// SeedRngCommand reseeds the ParticlePool's PRNG.
type SeedRngCommand struct {
	Seed uint64
}

// ResizeCommand updates the engine's particle bounding box / canvas size.
type ResizeCommand struct {
	Width, Height int
}

func (SetEmotionCommand) isCommand()          {}
func (SetUndertoneCommand) isCommand()        {}
func (TriggerGestureCommand) isCommand()      {}
func (CancelGestureCommand) isCommand()       {}
func (CancelGestureFamilyCommand) isCommand() {}
func (SetShapeCommand) isCommand()            {}
func (SetBpmCommand) isCommand()              {}
func (EnableRhythmCommand) isCommand()        {}
func (DisableRhythmCommand) isCommand()       {}
func (PlayCommand) isCommand()                {}
func (PauseCommand) isCommand()               {}
func (SeedRngCommand) isCommand()        {}
func (ResizeCommand) isCommand()         {}
