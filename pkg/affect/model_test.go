package affect

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fernglow/mascotcore/pkg/mascoterr"
)

func TestNewModel_InvalidEmotion(t *testing.T) {
	reg := NewDefaultRegistry()
	if _, err := NewModel(reg, Emotion(999), UndertoneNone); err == nil {
		t.Fatal("expected error for invalid emotion")
	}
}

func TestSetEmotion_SameIsNoop(t *testing.T) {
	reg := NewDefaultRegistry()
	m, err := NewModel(reg, Neutral, UndertoneNone)
	if err != nil {
		t.Fatal(err)
	}
	before := m.Snapshot()
	if err := m.SetEmotion(Neutral, UndertoneNone, 0); err != nil {
		t.Fatalf("no-op SetEmotion should not error: %v", err)
	}
	after := m.Snapshot()
	if before != after {
		t.Errorf("expected no change on no-op SetEmotion")
	}
}

func TestSetEmotion_InvalidLeavesStateUnchanged(t *testing.T) {
	reg := NewDefaultRegistry()
	m, err := NewModel(reg, Neutral, UndertoneNone)
	if err != nil {
		t.Fatal(err)
	}
	before := m.Snapshot()
	err = m.SetEmotion(Emotion(999), UndertoneNone, 0)
	if err == nil {
		t.Fatal("expected InvalidAffect error")
	}
	if !errors.Is(err, mascoterr.ErrInvalidAffect) {
		t.Errorf("expected ErrInvalidAffect, got %v", err)
	}
	if after := m.Snapshot(); before != after {
		t.Error("state must be unchanged after a failed SetEmotion")
	}
}

func TestCrossfade_MidpointAndCompletion(t *testing.T) {
	reg := NewDefaultRegistry()
	m, err := NewModel(reg, Neutral, UndertoneNone)
	if err != nil {
		t.Fatal(err)
	}

	neutralColor := m.Snapshot().InterpolatedColor
	if err := m.SetEmotion(Joy, UndertoneNone, 400*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	m.Advance(0.2) // halfway
	mid := m.Snapshot()

	joyDefaults, _ := reg.Defaults(Joy)
	wantR := (neutralColor.R + joyDefaults.Color.R) / 2
	if math.Abs(mid.InterpolatedColor.R-wantR) > 0.02 {
		t.Errorf("expected ~midpoint R channel, got %v want ~%v", mid.InterpolatedColor.R, wantR)
	}

	m.Advance(0.2) // completes
	final := m.Snapshot()
	if math.Abs(final.InterpolatedColor.R-joyDefaults.Color.R) > 1e-9 {
		t.Errorf("expected exact joy color after fade completes, got %v want %v", final.InterpolatedColor.R, joyDefaults.Color.R)
	}
}

func TestCrossfade_MidFadeRetargetDoesNotSnap(t *testing.T) {
	reg := NewDefaultRegistry()
	m, err := NewModel(reg, Neutral, UndertoneNone)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetEmotion(Joy, UndertoneNone, 400*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	m.Advance(0.2) // halfway to joy
	midJoy := m.Snapshot().InterpolatedColor

	if err := m.SetEmotion(Anger, UndertoneNone, 400*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	// Immediately after retargeting, interpolated value must still equal
	// the pre-retarget interpolated value (elapsed=0, from=midJoy).
	now := m.Snapshot().InterpolatedColor
	if math.Abs(now.R-midJoy.R) > 1e-9 || math.Abs(now.G-midJoy.G) > 1e-9 || math.Abs(now.B-midJoy.B) > 1e-9 {
		t.Errorf("expected no snap on mid-fade retarget: got %v want %v", now, midJoy)
	}
}

func TestCrossfade_StaysWithinConvexHull(t *testing.T) {
	reg := NewDefaultRegistry()
	m, err := NewModel(reg, Calm, UndertoneNone)
	if err != nil {
		t.Fatal(err)
	}
	fromColor := m.Snapshot().InterpolatedColor
	if err := m.SetEmotion(Anger, UndertoneNone, 1*time.Second); err != nil {
		t.Fatal(err)
	}
	toColor, _ := reg.Defaults(Anger)

	for i := 0; i <= 10; i++ {
		m.Advance(0.1)
		c := m.Snapshot().InterpolatedColor
		lo, hi := math.Min(fromColor.R, toColor.Color.R), math.Max(fromColor.R, toColor.Color.R)
		if c.R < lo-1e-9 || c.R > hi+1e-9 {
			t.Fatalf("R channel left convex hull: %v not in [%v,%v]", c.R, lo, hi)
		}
	}
}

func TestUndertone_ComposesAdditively(t *testing.T) {
	reg := NewDefaultRegistry()
	m, err := NewModel(reg, Joy, UndertoneNone)
	if err != nil {
		t.Fatal(err)
	}
	baseGlow := m.Snapshot().InterpolatedGlow

	if err := m.SetEmotion(Joy, Intense, 0); err != nil {
		t.Fatal(err)
	}
	m.Advance(1.0) // force-complete the default 400ms fade
	withUndertone := m.Snapshot().InterpolatedGlow

	if withUndertone <= baseGlow {
		t.Errorf("expected Intense to raise glow: base=%v withUndertone=%v", baseGlow, withUndertone)
	}
}
