package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernglow/mascotcore/pkg/affect"
	"github.com/fernglow/mascotcore/pkg/body"
	"github.com/fernglow/mascotcore/pkg/eventbus"
	"github.com/fernglow/mascotcore/pkg/gesture"
	"github.com/fernglow/mascotcore/pkg/particle"
	"github.com/fernglow/mascotcore/pkg/rhythm"
)

func testFamilies() map[gesture.Family]gesture.FamilyConfig {
	return map[gesture.Family]gesture.FamilyConfig{
		"bounce": {Priority: 10, QueueDepth: 2},
		"shake":  {Priority: 20, QueueDepth: 2},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{
		InitialEmotion: affect.Neutral,
		InitialBPM:     120,
		Families:       testFamilies(),
		RngSeed:        1,
	})
	require.NoError(t, err)
	return e
}

// S1: crossfade — retargeting emotion mid-fade doesn't snap; the value
// before and after a partial Advance moves monotonically toward target.
func TestScenario_EmotionCrossfadeNoSnap(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetEmotion(affect.Joy, affect.UndertoneNone, 200*time.Millisecond))
	e.Tick(0.05)
	midGlow := e.affectMdl.Snapshot().InterpolatedGlow

	require.NoError(t, e.SetEmotion(affect.Calm, affect.UndertoneNone, 200*time.Millisecond))
	e.Tick(0.01)
	afterRetarget := e.affectMdl.Snapshot().InterpolatedGlow

	assert.NotEqual(t, midGlow, afterRetarget, "retarget should start blending from the interpolated value, not snap")
	assert.InDelta(t, midGlow, afterRetarget, 0.02, "one 10ms tick after retarget must stay near the pre-retarget value")
}

// S2: a beat-aligned gesture activates only once its boundary is crossed.
func TestScenario_BeatAlignedGestureActivatesOnBoundary(t *testing.T) {
	e := newTestEngine(t)
	err := e.TriggerGesture(gesture.Descriptor{
		Family:        "bounce",
		Exclusivity:   gesture.Exclusivity{Kind: gesture.Solo},
		DurationBeats: 1,
		BeatAligned:   true,
	})
	require.NoError(t, err)

	e.Tick(0.001)
	assert.Empty(t, e.scheduler.ActiveGestures(), "should not activate before the next beat boundary")

	for i := 0; i < 200; i++ {
		e.Tick(0.01)
	}
	assert.NotEmpty(t, e.scheduler.ActiveGestures(), "should have activated by the next whole-note boundary (beat 4; AlignSubdivision's zero value is Whole)")
}

// S3: a higher-priority Solo gesture displaces the active incumbent.
func TestScenario_SoloDisplacement(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.TriggerGesture(gesture.Descriptor{
		Family: "bounce", Exclusivity: gesture.Exclusivity{Kind: gesture.Solo}, DurationBeats: 4,
	}))
	e.Tick(0.01)
	require.Len(t, e.scheduler.ActiveGestures(), 1)
	firstID := e.scheduler.ActiveGestures()[0].ID

	require.NoError(t, e.TriggerGesture(gesture.Descriptor{
		Family: "shake", Exclusivity: gesture.Exclusivity{Kind: gesture.Solo}, DurationBeats: 4,
	}))
	e.Tick(0.01)

	active := e.scheduler.ActiveGestures()
	require.Len(t, active, 1)
	assert.NotEqual(t, firstID, active[0].ID, "higher-priority family should displace the incumbent")
	assert.Equal(t, gesture.Family("shake"), active[0].Family)
}

// S4: particle emission never exceeds capacity; overflow is tracked, not errored.
func TestScenario_ParticleSaturationTracksOverflow(t *testing.T) {
	e, err := New(Config{InitialBPM: 120, ParticleCapacity: 4, RngSeed: 1})
	require.NoError(t, err)

	spawn := particle.SpawnParams{Lifetime: 5, Size: 1}
	for i := 0; i < 50; i++ {
		e.particles.Emit(1000, 1.0, spawn)
	}
	assert.LessOrEqual(t, e.LiveParticleCount(), 4)
	assert.Greater(t, e.Diagnostics().ParticleOverflow, uint64(0))
}

// S5: pausing preserves affect/shape/rhythm state across ticks.
func TestScenario_PausePreservesState(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetEmotion(affect.Joy, affect.UndertoneNone, 100*time.Millisecond))
	e.Tick(0.05)
	before := e.affectMdl.Snapshot()

	e.Pause()
	e.Tick(0.05)
	e.Tick(0.05)
	after := e.affectMdl.Snapshot()

	assert.Equal(t, before, after, "paused ticks must not advance affect state")
}

// S6: a tempo estimate within the adoption dead zone is rejected; a
// confident, divergent estimate is adopted.
func TestScenario_TempoAdoptionGate(t *testing.T) {
	e := newTestEngine(t)
	adopted := e.clock.AdoptTempoEstimate(rhythm.TempoEstimate{BPM: 120.1, Confidence: 0.9})
	assert.False(t, adopted, "near-identical tempo should stay in the dead zone")

	adopted = e.clock.AdoptTempoEstimate(rhythm.TempoEstimate{BPM: 140, Confidence: 0.95})
	assert.True(t, adopted, "confident, divergent estimate should be adopted")
}

func TestSetEmotion_InvalidRejectedBeforeMutation(t *testing.T) {
	e := newTestEngine(t)
	before := e.affectMdl.Snapshot()
	err := e.SetEmotion(affect.Emotion(999), affect.UndertoneNone, 0)
	assert.Error(t, err)
	assert.Equal(t, before, e.affectMdl.Snapshot())
}

func TestTriggerGesture_UnknownFamilyRejected(t *testing.T) {
	e := newTestEngine(t)
	err := e.TriggerGesture(gesture.Descriptor{Family: "nope"})
	assert.Error(t, err)
	assert.Empty(t, e.scheduler.ActiveGestures())
}

func TestSetShape_PublishesEvent(t *testing.T) {
	e := newTestEngine(t)
	var got eventbus.Event
	e.Bus().Subscribe(eventbus.ShapeMorphed, func(ev eventbus.Event) error {
		got = ev
		return nil
	})
	require.NoError(t, e.SetShape(body.Star, 0))
	e.Tick(0.01)
	assert.Equal(t, eventbus.ShapeMorphed, got.Kind)
	assert.Equal(t, body.Star, got.Payload)
}

func TestPlayPause_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	var pauseCount, resumeCount int
	e.Bus().Subscribe(eventbus.Paused, func(eventbus.Event) error { pauseCount++; return nil })
	e.Bus().Subscribe(eventbus.Resumed, func(eventbus.Event) error { resumeCount++; return nil })

	e.Pause()
	e.Tick(0.01)
	e.Pause()
	e.Tick(0.01)
	assert.Equal(t, 1, pauseCount, "a second Pause while already paused must not re-publish")

	e.Play()
	e.Tick(0.01)
	e.Play()
	e.Tick(0.01)
	assert.Equal(t, 1, resumeCount)
}

func TestSnapshotRestore_RoundTrips(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetEmotion(affect.Excited, affect.Intense, 10*time.Millisecond))
	require.NoError(t, e.SetShape(body.Heart, 10*time.Millisecond))
	require.NoError(t, e.SetBpm(140))
	e.DisableRhythm()
	for i := 0; i < 5; i++ {
		e.Tick(0.01)
	}
	snap := e.Snapshot()

	other := newTestEngine(t)
	require.NoError(t, other.RestoreSnapshot(snap))
	assert.Equal(t, snap, other.Snapshot())
}
