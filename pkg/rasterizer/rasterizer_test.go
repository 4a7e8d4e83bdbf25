package rasterizer

import "testing"

func TestNull_SatisfiesRasterizer(t *testing.T) {
	var r Rasterizer = Null{}
	r.BeginFrame(nil)
	r.DrawParticles(nil)
	r.Resize(100, 100)
	r.EndFrame()
}
