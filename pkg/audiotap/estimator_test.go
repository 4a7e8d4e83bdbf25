package audiotap

import (
	"math"
	"testing"
)

// synthesizeClick builds PCM samples containing periodic energy bursts at
// bpm beats per minute, so the estimator has an unambiguous period to find.
func synthesizeClick(bpm, sampleRate float64, seconds float64) []float64 {
	n := int(sampleRate * seconds)
	samples := make([]float64, n)
	period := sampleRate * 60.0 / bpm
	burstLen := int(sampleRate * 0.03)
	for beat := 0; beat*int(period) < n; beat++ {
		start := beat * int(period)
		for i := 0; i < burstLen && start+i < n; i++ {
			samples[start+i] = math.Sin(2 * math.Pi * 440 * float64(i) / sampleRate)
		}
	}
	return samples
}

func TestEstimateTempo_RecoversSyntheticBPM(t *testing.T) {
	const sampleRate = 16000.0
	const wantBPM = 120.0
	samples := synthesizeClick(wantBPM, sampleRate, 4.0)

	bpm, confidence, ok := estimateTempo(samples, sampleRate)
	if !ok {
		t.Fatal("expected estimator to produce a result on a clean periodic signal")
	}
	if math.Abs(bpm-wantBPM) > 10 {
		t.Errorf("expected bpm near %v, got %v (confidence %v)", wantBPM, bpm, confidence)
	}
}

func TestEstimateTempo_TooShortReturnsNotOk(t *testing.T) {
	samples := make([]float64, 10)
	if _, _, ok := estimateTempo(samples, 16000); ok {
		t.Error("expected not-ok for a too-short sample buffer")
	}
}

func TestOnsetEnvelope_EmptyInput(t *testing.T) {
	if env := onsetEnvelope(nil); env != nil {
		t.Errorf("expected nil envelope for empty input, got %v", env)
	}
}
