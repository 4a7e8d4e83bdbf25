// Package rhythm implements the engine's musical clock (spec §4.3): BPM,
// beat phase, subdivision crossings, and tempo adoption from an external
// tap. It never touches the wall clock directly — TimeBase supplies dt.
package rhythm

import (
	"math"

	"github.com/fernglow/mascotcore/internal/mathutil"
	"github.com/fernglow/mascotcore/pkg/mascoterr"
)

const (
	// MinBPM and MaxBPM bound the clock's tempo (spec §4.3).
	MinBPM = 30.0
	MaxBPM = 300.0

	// adoptionDeadZone is the minimum BPM delta before an external tempo
	// estimate is adopted at all.
	adoptionDeadZone = 1.5

	// adoptionConfidenceThreshold is the minimum confidence an estimate must
	// carry before it is considered.
	adoptionConfidenceThreshold = 0.6

	// adoptionSmoothBeats is how many beats the adoption smooths over, so a
	// tempo-tap estimate never produces an audible/visible snap.
	adoptionSmoothBeats = 8
)

// Subdivision identifies a musical grid resolution.
type Subdivision int

const (
	Whole Subdivision = iota
	Half
	Quarter
	Eighth
	Sixteenth
	TripletEighth
)

// BeatsPerStep returns the grid spacing of a subdivision, in beats. Exposed
// for components (e.g. the Compositor's rhythm-profile evaluation) that
// need to reason about grid spacing without re-deriving it.
func (s Subdivision) BeatsPerStep() float64 { return s.beatsPerStep() }

// beatsPerStep returns the grid spacing of a subdivision, in beats.
func (s Subdivision) beatsPerStep() float64 {
	switch s {
	case Whole:
		return 4.0
	case Half:
		return 2.0
	case Quarter:
		return 1.0
	case Eighth:
		return 0.5
	case Sixteenth:
		return 0.25
	case TripletEighth:
		return 1.0 / 3.0
	default:
		return 1.0
	}
}

// BeatPhase is the clock's externally visible musical position.
type BeatPhase struct {
	Beat    uint64
	Phase01 float64
}

// MusicalInstant is a future grid point returned by NextBoundary.
type MusicalInstant struct {
	Beat    uint64
	Phase01 float64
}

// BeatEvent marks a beat crossing.
type BeatEvent struct {
	Beat uint64
}

// SubdivEvent marks a subdivision grid crossing.
type SubdivEvent struct {
	Beat        uint64
	Subdivision Subdivision
}

// TempoEstimate is a tempo/confidence pair pushed by an AudioTap.
type TempoEstimate struct {
	BPM        float64
	Confidence float64
}

// allSubdivisions is the fixed set subdivisionEvents scans each step.
var allSubdivisions = []Subdivision{Whole, Half, Quarter, Eighth, Sixteenth, TripletEighth}

// Clock is the musical clock: BPM, beat/phase, and subdivision crossings.
type Clock struct {
	bpm     float64
	beat    uint64
	phase01 float64
	enabled bool

	// tempo adoption smoothing state
	smoothTarget    float64
	smoothBeatsLeft int

	// lastSubdivs caches the subdivision crossings computed by the most
	// recent Advance call, returned by SubdivisionEvents.
	lastSubdivs []SubdivEvent
}

// New creates a Clock at the given initial BPM, enabled by default.
func New(bpm float64) *Clock {
	return &Clock{
		bpm:     mathutil.Clamp(bpm, MinBPM, MaxBPM),
		enabled: true,
	}
}

// Enabled reports whether the clock currently advances.
func (c *Clock) Enabled() bool { return c.enabled }

// Enable turns the clock on. Phase and beat are left untouched.
func (c *Clock) Enable() { c.enabled = true }

// Disable turns the clock off; Advance becomes a no-op until re-enabled.
func (c *Clock) Disable() { c.enabled = false }

// BPM returns the current tempo.
func (c *Clock) BPM() float64 { return c.bpm }

// Phase returns the current BeatPhase.
func (c *Clock) Phase() BeatPhase {
	return BeatPhase{Beat: c.beat, Phase01: c.phase01}
}

// SetBpm updates the tempo, preserving phase01 exactly (spec §8 BPM
// preservation law). Cancels any in-flight tempo-adoption smoothing, since
// an explicit host command takes precedence.
func (c *Clock) SetBpm(bpm float64) error {
	if bpm < MinBPM || bpm > MaxBPM {
		return mascoterr.ErrInvalidBpm
	}
	c.bpm = bpm
	c.smoothBeatsLeft = 0
	return nil
}

// Advance steps the clock forward by dt seconds. It is a no-op while
// disabled. Returns the BeatEvents crossed (more than one is possible for a
// large dt) and, as a side effect, caches the SubdivEvents crossed for
// retrieval via SubdivisionEvents in the same tick.
func (c *Clock) Advance(dt float64) []BeatEvent {
	if !c.enabled {
		c.lastSubdivs = nil
		return nil
	}

	startPos := float64(c.beat) + c.phase01
	deltaBeats := dt * c.bpm / 60.0
	endPos := startPos + deltaBeats

	var beats []BeatEvent
	newBeat := uint64(math.Floor(endPos))
	for b := c.beat + 1; b <= newBeat; b++ {
		beats = append(beats, BeatEvent{Beat: b})
		c.stepSmoothing()
	}

	c.beat = newBeat
	c.phase01 = mathutil.Wrap01(endPos - float64(newBeat))

	c.lastSubdivs = c.subdivisionsCrossed(startPos, endPos)

	return beats
}

// SubdivisionEvents returns the subdivision crossings from the most recent
// Advance call. dt is accepted for interface symmetry with spec §4.3 but is
// not re-consumed; callers must invoke Advance(dt) first in the same tick.
func (c *Clock) SubdivisionEvents(dt float64) []SubdivEvent {
	if !c.enabled {
		return nil
	}
	return c.lastSubdivs
}

// subdivisionsCrossed scans the fixed subdivision set for grid points in
// (startPos, endPos], ordered by subdivision then occurrence.
func (c *Clock) subdivisionsCrossed(startPos, endPos float64) []SubdivEvent {
	var out []SubdivEvent
	for _, sub := range allSubdivisions {
		step := sub.beatsPerStep()
		firstIdx := math.Floor(startPos/step) + 1
		for idx := firstIdx; idx*step <= endPos+1e-9; idx++ {
			pos := idx * step
			out = append(out, SubdivEvent{
				Beat:        uint64(math.Floor(pos)),
				Subdivision: sub,
			})
		}
	}
	return out
}

// NextBoundary returns the next grid point for the given subdivision,
// strictly after the current position.
func (c *Clock) NextBoundary(sub Subdivision) MusicalInstant {
	pos := float64(c.beat) + c.phase01
	step := sub.beatsPerStep()
	idx := math.Floor(pos/step) + 1
	next := idx * step
	return MusicalInstant{Beat: uint64(math.Floor(next)), Phase01: next - math.Floor(next)}
}

// BeatAlignedDelay returns the seconds until the next such grid boundary at
// the current BPM. Returns 0 (fire immediately) while disabled.
func (c *Clock) BeatAlignedDelay(sub Subdivision) float64 {
	if !c.enabled {
		return 0
	}
	pos := float64(c.beat) + c.phase01
	step := sub.beatsPerStep()
	idx := math.Floor(pos/step) + 1
	next := idx * step
	deltaBeats := next - pos
	return deltaBeats * 60.0 / c.bpm
}

// AdoptTempoEstimate considers an externally supplied tempo estimate
// (spec §4.3). It is silently ignored — a metric, never an error — unless
// confidence clears the threshold and the estimate differs from the
// current BPM by more than the dead-zone. Adoption smooths over several
// beats and never snaps phase01.
func (c *Clock) AdoptTempoEstimate(est TempoEstimate) (adopted bool) {
	if est.Confidence < adoptionConfidenceThreshold {
		return false
	}
	if math.Abs(est.BPM-c.bpm) <= adoptionDeadZone {
		return false
	}
	target := mathutil.Clamp(est.BPM, MinBPM, MaxBPM)
	c.smoothTarget = target
	c.smoothBeatsLeft = adoptionSmoothBeats
	return true
}

// stepSmoothing nudges BPM one step toward an in-flight adoption target.
// Called once per beat crossed inside Advance, never touching phase01.
func (c *Clock) stepSmoothing() {
	if c.smoothBeatsLeft <= 0 {
		return
	}
	frac := 1.0 / float64(c.smoothBeatsLeft)
	c.bpm = mathutil.Lerp(c.bpm, c.smoothTarget, frac)
	c.smoothBeatsLeft--
	if c.smoothBeatsLeft == 0 {
		c.bpm = c.smoothTarget
	}
}
