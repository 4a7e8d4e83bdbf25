// Package rasterizer defines the Rasterizer contract (spec §4.8): an
// external collaborator the engine dispatches per-frame draw directives to.
// The engine makes no assumption about pixel format, backend, or color
// space beyond sRGB-ish; concrete implementations live outside this module.
package rasterizer

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/fernglow/mascotcore/pkg/compositor"
)

// ParticleView is a read-only projection of one live particle, valid only
// for the duration of the drawParticles call it was passed to.
type ParticleView struct {
	Position [2]float64
	Size     float64
	Color    colorful.Color
	Alpha    float64
}

// Surface is an opaque backend-owned render target handle; the engine
// never inspects it, only passes it through to BeginFrame.
type Surface any

// Rasterizer is the engine's external drawing collaborator.
type Rasterizer interface {
	BeginFrame(surface Surface)
	EndFrame()
	DrawBody(directive compositor.BodyDirective)
	DrawParticles(particles []ParticleView)
	Resize(width, height int)
}

// Null is a no-op Rasterizer: it satisfies the interface and discards every
// call. Useful as the default collaborator for a headless engine instance
// (diagnostics-only tests, the command-line demo) and as a base to embed
// when only a subset of the interface needs overriding.
type Null struct{}

func (Null) BeginFrame(Surface)               {}
func (Null) EndFrame()                        {}
func (Null) DrawBody(compositor.BodyDirective) {}
func (Null) DrawParticles([]ParticleView)     {}
func (Null) Resize(int, int)                  {}
