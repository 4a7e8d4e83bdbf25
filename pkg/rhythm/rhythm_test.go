package rhythm

import (
	"math"
	"testing"
)

func TestAdvance_BeatCountsAreMonotonic(t *testing.T) {
	c := New(120)
	var total uint64
	dts := []float64{0.1, 0.3, 0.05, 0.6, 0.01}
	for _, dt := range dts {
		events := c.Advance(dt)
		total += uint64(len(events))
		if c.Phase().Beat < total-uint64(len(events)) {
			t.Fatalf("beat count went backwards")
		}
	}
	if c.Phase().Beat != total {
		t.Errorf("expected beat=%d, got %d", total, c.Phase().Beat)
	}
}

func TestAdvance_LargeDtCrossesMultipleBeats(t *testing.T) {
	c := New(120) // 2 beats/sec
	events := c.Advance(3.0)
	if len(events) != 6 {
		t.Fatalf("expected 6 beat events for 3s at 120bpm, got %d", len(events))
	}
}

func TestSetBpm_PreservesPhase(t *testing.T) {
	c := New(120)
	c.Advance(0.125) // quarter of a beat in
	p := c.Phase().Phase01

	if err := c.SetBpm(200); err != nil {
		t.Fatalf("SetBpm: %v", err)
	}
	if math.Abs(c.Phase().Phase01-p) > 1e-9 {
		t.Errorf("expected phase01 preserved across BPM change: before=%v after=%v", p, c.Phase().Phase01)
	}
}

func TestSetBpm_OutOfRange(t *testing.T) {
	c := New(120)
	if err := c.SetBpm(20); err == nil {
		t.Error("expected error for bpm below range")
	}
	if err := c.SetBpm(400); err == nil {
		t.Error("expected error for bpm above range")
	}
	if c.BPM() != 120 {
		t.Errorf("state should be unchanged after rejected SetBpm, got %v", c.BPM())
	}
}

func TestDisabled_AdvanceAndSubdivisionsNoop(t *testing.T) {
	c := New(120)
	c.Disable()
	events := c.Advance(10.0)
	if events != nil {
		t.Errorf("expected nil beat events while disabled, got %v", events)
	}
	if subs := c.SubdivisionEvents(10.0); subs != nil {
		t.Errorf("expected nil subdivisions while disabled, got %v", subs)
	}
	if d := c.BeatAlignedDelay(Quarter); d != 0 {
		t.Errorf("expected 0 delay while disabled, got %v", d)
	}
}

func TestSubdivisionEvents_QuarterFiresEveryBeat(t *testing.T) {
	c := New(120)
	c.Advance(1.0) // exactly 2 beats
	subs := c.SubdivisionEvents(1.0)
	count := 0
	for _, s := range subs {
		if s.Subdivision == Quarter {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 quarter crossings in 1s at 120bpm, got %d", count)
	}
}

func TestNextBoundary_AndBeatAlignedDelay(t *testing.T) {
	c := New(120) // 0.5s/beat
	c.Advance(0.125) // quarter beat in, phase01=0.25
	if next := c.NextBoundary(Quarter); next.Beat != 1 || next.Phase01 != 0 {
		t.Errorf("expected next quarter boundary at beat 1 phase 0, got %+v", next)
	}
	delay := c.BeatAlignedDelay(Quarter)
	// remaining to next beat boundary: 0.75 beats * 0.5s/beat = 0.375s
	if math.Abs(delay-0.375) > 1e-6 {
		t.Errorf("expected delay ~0.375s, got %v", delay)
	}
}

func TestAdoptTempoEstimate_RejectsLowConfidenceAndSmallDelta(t *testing.T) {
	c := New(120)
	if c.AdoptTempoEstimate(TempoEstimate{BPM: 140, Confidence: 0.1}) {
		t.Error("expected low-confidence estimate to be rejected")
	}
	if c.AdoptTempoEstimate(TempoEstimate{BPM: 120.5, Confidence: 0.9}) {
		t.Error("expected within-dead-zone estimate to be rejected")
	}
}

func TestAdoptTempoEstimate_SmoothsWithoutPhaseJump(t *testing.T) {
	c := New(120)
	if !c.AdoptTempoEstimate(TempoEstimate{BPM: 140, Confidence: 0.9}) {
		t.Fatal("expected estimate to be adopted")
	}
	prevPhase := c.Phase().Phase01
	for i := 0; i < adoptionSmoothBeats+2; i++ {
		bpmBefore := c.BPM()
		c.Advance(0.5)
		// SetBpm preserves phase exactly; smoothing must too, each beat:
		// the phase moves by exactly dt at the tempo in force before the step.
		want := math.Mod(prevPhase+0.5*bpmBefore/60.0, 1)
		if got := c.Phase().Phase01; math.Abs(got-want) > 1e-9 {
			t.Fatalf("phase jumped during smoothing at step %d: got %v want %v", i, got, want)
		}
		prevPhase = c.Phase().Phase01
	}
	if math.Abs(c.BPM()-140) > 1e-6 {
		t.Errorf("expected bpm to converge to 140 after smoothing window, got %v", c.BPM())
	}
}
