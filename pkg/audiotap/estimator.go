package audiotap

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// envelopeBlockSize is the number of PCM samples per onset-envelope
	// bucket; at 48kHz this is a ~5.3ms frame.
	envelopeBlockSize = 256

	minTempoHz = 30.0 / 60.0
	maxTempoHz = 300.0 / 60.0
)

// onsetEnvelope reduces a PCM buffer to a short-time energy envelope: one
// RMS value per envelopeBlockSize-sample block. Beat periodicity shows up
// as a low-frequency component of this envelope.
func onsetEnvelope(samples []float64) []float64 {
	n := len(samples) / envelopeBlockSize
	if n == 0 {
		return nil
	}
	env := make([]float64, n)
	for i := 0; i < n; i++ {
		block := samples[i*envelopeBlockSize : (i+1)*envelopeBlockSize]
		var sumSq float64
		for _, s := range block {
			sumSq += s * s
		}
		env[i] = math.Sqrt(sumSq / float64(len(block)))
	}
	return env
}

// estimateTempo runs an FFT over the onset envelope and picks the
// strongest spectral peak within the [30, 300] BPM range, converting bin
// frequency to BPM. Confidence is the peak's share of total spectral
// energy in that range — a rough but serviceable proxy for periodicity
// strength.
func estimateTempo(samples []float64, sampleRate float64) (bpm, confidence float64, ok bool) {
	env := onsetEnvelope(samples)
	if len(env) < 8 {
		return 0, 0, false
	}

	// Remove DC bias so the zero-frequency bin doesn't dominate.
	var mean float64
	for _, v := range env {
		mean += v
	}
	mean /= float64(len(env))
	for i := range env {
		env[i] -= mean
	}

	spectrum := fft.FFTReal(env)
	envelopeRate := sampleRate / envelopeBlockSize

	var bestMag, totalMag float64
	var bestBin int
	for i := 1; i < len(spectrum)/2; i++ {
		freqHz := float64(i) * envelopeRate / float64(len(spectrum))
		if freqHz < minTempoHz || freqHz > maxTempoHz {
			continue
		}
		mag := cmplx.Abs(spectrum[i])
		totalMag += mag
		if mag > bestMag {
			bestMag = mag
			bestBin = i
		}
	}
	if bestBin == 0 || totalMag == 0 {
		return 0, 0, false
	}

	freqHz := float64(bestBin) * envelopeRate / float64(len(spectrum))
	bpm = freqHz * 60.0
	confidence = bestMag / totalMag
	return bpm, confidence, true
}
