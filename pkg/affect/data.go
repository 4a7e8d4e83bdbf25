package affect

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fernglow/mascotcore/pkg/rhythm"
)

//go:embed data/emotions.json
var embeddedData embed.FS

// rawEmotion mirrors the on-disk JSON shape for one emotion entry.
type rawEmotion struct {
	Color         string             `json:"color"`
	Glow          float64            `json:"glow"`
	EmissionRate  float64            `json:"emission_rate"`
	MotionStyle   string             `json:"motion_style"`
	RhythmProfile map[string]float64 `json:"rhythm_profile"`
}

type rawUndertone struct {
	ColorDelta       [3]float64 `json:"color_delta"`
	GlowDelta        float64    `json:"glow_delta"`
	EmissionMulDelta float64    `json:"emission_mul_delta"`
}

type rawFile struct {
	Emotions   map[string]rawEmotion  `json:"emotions"`
	Undertones map[string]rawUndertone `json:"undertones"`
}

// Defaults holds an emotion's immutable base visual parameters.
type Defaults struct {
	Color         colorful.Color
	Glow          float64
	EmissionRate  float64 // particles/sec at the 120 BPM reference tempo
	MotionStyle   MotionStyle
	RhythmProfile map[rhythm.Subdivision]float64
}

// Delta holds an undertone's additive modification on top of a Defaults.
type Delta struct {
	ColorDelta       [3]float64
	GlowDelta        float64
	EmissionMulDelta float64
}

// Registry is the resolved, immutable table of emotion defaults and
// undertone deltas, loaded once from the embedded data file — the same
// go:embed-a-data-file-then-parse-once shape audio/control.go uses for
// its title-screen template, adapted from a text/template asset to a
// JSON parameter table.
type Registry struct {
	emotions   [emotionCount]Defaults
	undertones [undertoneCount]Delta
}

var subdivisionNames = map[string]rhythm.Subdivision{
	"whole": rhythm.Whole, "half": rhythm.Half, "quarter": rhythm.Quarter,
	"eighth": rhythm.Eighth, "sixteenth": rhythm.Sixteenth,
	"triplet_eighth": rhythm.TripletEighth,
}

var nameToEmotion = func() map[string]Emotion {
	m := make(map[string]Emotion, len(emotionNames))
	for e, n := range emotionNames {
		m[n] = Emotion(e)
	}
	return m
}()

var nameToUndertone = func() map[string]Undertone {
	m := make(map[string]Undertone, len(undertoneNames))
	for u, n := range undertoneNames {
		if n == "" {
			continue
		}
		m[n] = Undertone(u)
	}
	return m
}()

// NewDefaultRegistry loads the embedded emotion/undertone table. It panics
// on malformed embedded data, which would indicate a build-time defect,
// not a runtime condition.
func NewDefaultRegistry() *Registry {
	data, err := embeddedData.ReadFile("data/emotions.json")
	if err != nil {
		panic(fmt.Errorf("affect: reading embedded data: %w", err))
	}

	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		panic(fmt.Errorf("affect: parsing embedded data: %w", err))
	}

	reg := &Registry{}
	for name, re := range raw.Emotions {
		e, ok := nameToEmotion[name]
		if !ok {
			panic(fmt.Errorf("affect: embedded data names unknown emotion %q", name))
		}
		color, err := colorful.Hex(re.Color)
		if err != nil {
			panic(fmt.Errorf("affect: emotion %q: %w", name, err))
		}
		profile := make(map[rhythm.Subdivision]float64, len(re.RhythmProfile))
		for subName, amp := range re.RhythmProfile {
			sub, ok := subdivisionNames[subName]
			if !ok {
				panic(fmt.Errorf("affect: emotion %q names unknown subdivision %q", name, subName))
			}
			profile[sub] = amp
		}
		reg.emotions[e] = Defaults{
			Color:         color,
			Glow:          re.Glow,
			EmissionRate:  re.EmissionRate,
			MotionStyle:   MotionStyle(re.MotionStyle),
			RhythmProfile: profile,
		}
	}

	for name, ru := range raw.Undertones {
		u, ok := nameToUndertone[name]
		if !ok {
			panic(fmt.Errorf("affect: embedded data names unknown undertone %q", name))
		}
		reg.undertones[u] = Delta{
			ColorDelta:       ru.ColorDelta,
			GlowDelta:        ru.GlowDelta,
			EmissionMulDelta: ru.EmissionMulDelta,
		}
	}

	return reg
}

// Defaults returns the base visual parameters for an emotion.
func (r *Registry) Defaults(e Emotion) (Defaults, bool) {
	if !e.Valid() {
		return Defaults{}, false
	}
	return r.emotions[e], true
}

// Delta returns the additive modifier for an undertone. UndertoneNone
// always resolves to the zero Delta.
func (r *Registry) Delta(u Undertone) (Delta, bool) {
	if !u.Valid() {
		return Delta{}, false
	}
	return r.undertones[u], true
}
