package compositor

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fernglow/mascotcore/pkg/affect"
	"github.com/fernglow/mascotcore/pkg/body"
	"github.com/fernglow/mascotcore/pkg/gesture"
	"github.com/fernglow/mascotcore/pkg/rhythm"
)

func baseInput() Input {
	return Input{
		Affect: affect.AffectSnapshot{
			Emotion:           affect.Joy,
			InterpolatedColor: colorful.Color{R: 1, G: 0.5, B: 0},
			InterpolatedGlow:  0.5,
			EmissionRateMul:   1.0,
			MotionStyle:       "burst",
		},
		RhythmProfile:    map[rhythm.Subdivision]float64{rhythm.Quarter: 0.5},
		Phase:            rhythm.BeatPhase{Beat: 0, Phase01: 0},
		Body:             body.Directive{FromShape: body.Circle, ToShape: body.Circle, MorphT: 1, Scale: 1, Orientation: 0},
		EmissionRateBase: 10,
		BoundsMin:        [2]float64{-100, -100},
		BoundsMax:        [2]float64{100, 100},
		Drag:             0.1,
	}
}

func TestCompose_BaselineNoGestures(t *testing.T) {
	c := New()
	out := c.Compose(baseInput())
	if out.EmissionRate != 10 {
		t.Errorf("expected base emission rate 10 with no modulators, got %v", out.EmissionRate)
	}
	if out.Body.GlowIntensity != 0.5 {
		t.Errorf("expected glow passthrough, got %v", out.Body.GlowIntensity)
	}
	if out.KinematicsParams.RhythmAmplitude <= 1.0 {
		t.Errorf("expected amplitude boosted at a beat crossing, got %v", out.KinematicsParams.RhythmAmplitude)
	}
}

func TestCompose_RhythmAmplitudeDecaysAwayFromBeat(t *testing.T) {
	c := New()
	in := baseInput()
	in.Phase = rhythm.BeatPhase{Beat: 0, Phase01: 0.9} // nearly a full beat away from the quarter crossing
	out := c.Compose(in)
	inOnBeat := baseInput()
	onBeat := c.Compose(inOnBeat)
	if out.KinematicsParams.RhythmAmplitude >= onBeat.KinematicsParams.RhythmAmplitude {
		t.Errorf("expected amplitude away from the beat (%v) to be lower than on-beat (%v)",
			out.KinematicsParams.RhythmAmplitude, onBeat.KinematicsParams.RhythmAmplitude)
	}
}

func TestCompose_OverlayGestureBoostsEmission(t *testing.T) {
	c := New()
	in := baseInput()
	in.ActiveGestures = []gesture.ActiveGesture{
		{
			Exclusivity: gesture.Exclusivity{Kind: gesture.Overlay},
			Modulators:  []gesture.ParamModulator{{Target: "emission_rate", Curve: gesture.ConstantCurve(0.5)}},
		},
	}
	out := c.Compose(in)
	if out.EmissionRate != 15 { // 10 * (1+0.5)
		t.Errorf("expected emission rate boosted to 15, got %v", out.EmissionRate)
	}
}

func TestCompose_SoloGestureAddsOrientationBias(t *testing.T) {
	c := New()
	in := baseInput()
	in.Body.Orientation = 0.1
	in.ActiveGestures = []gesture.ActiveGesture{
		{
			Exclusivity: gesture.Exclusivity{Kind: gesture.Solo},
			Modulators:  []gesture.ParamModulator{{Target: "orientation_bias", Curve: gesture.ConstantCurve(0.4)}},
		},
	}
	out := c.Compose(in)
	if got, want := out.Body.Orientation, 0.5; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("expected orientation 0.1+0.4=0.5, got %v", got)
	}
}
