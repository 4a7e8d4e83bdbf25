package particle

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func testParams() SpawnParams {
	return SpawnParams{
		Position:       [2]float64{0, 0},
		VelocityBase:   [2]float64{0, -1},
		VelocityJitter: [2]float64{0.1, 0.1},
		Size:           1,
		SizeJitter:     0,
		Lifetime:       1,
		LifetimeJitter: 0,
		Color:          colorful.Color{R: 1, G: 1, B: 1},
		SourceID:       "test",
	}
}

func testKin() KinematicsParams {
	return KinematicsParams{
		Drag:            0.1,
		GravityBias:     [2]float64{0, 0.5},
		RhythmAmplitude: 1,
		BoundsMin:       [2]float64{-1000, -1000},
		BoundsMax:       [2]float64{1000, 1000},
	}
}

func TestNewPool_InvalidCapacity(t *testing.T) {
	if _, err := NewPool(0, 1, 60); err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if _, err := NewPool(-5, 1, 60); err == nil {
		t.Fatal("expected error for negative capacity")
	}
}

func TestLiveCountInvariant(t *testing.T) {
	pool, err := NewPool(100, 1, 60)
	if err != nil {
		t.Fatal(err)
	}
	pool.Emit(1000, 1.0, testParams())
	if pool.LiveCount()+pool.FreeCount() != pool.Capacity() {
		t.Fatalf("invariant broken: live=%d free=%d cap=%d", pool.LiveCount(), pool.FreeCount(), pool.Capacity())
	}
}

func TestSaturation_OverflowMetricNoError(t *testing.T) {
	pool, err := NewPool(100, 1, 60)
	if err != nil {
		t.Fatal(err)
	}
	emitted := pool.Emit(1000, 1.0, testParams())
	if emitted != 100 {
		t.Errorf("expected exactly capacity emitted, got %d", emitted)
	}
	if pool.LiveCount() != 100 {
		t.Errorf("expected 100 live particles, got %d", pool.LiveCount())
	}
	if pool.OverflowCount() < 800 {
		t.Errorf("expected overflow ~900, got %d", pool.OverflowCount())
	}
}

func TestEmit_FractionalAccumulator(t *testing.T) {
	pool, err := NewPool(100, 1, 60)
	if err != nil {
		t.Fatal(err)
	}
	// 2.5/sec * 0.1s = 0.25 per tick: needs 4 ticks to emit exactly 1.
	total := 0
	for i := 0; i < 4; i++ {
		total += pool.Emit(2.5, 0.1, testParams())
	}
	if total != 1 {
		t.Errorf("expected 1 particle emitted across 4 sub-unit ticks, got %d", total)
	}
}

func TestIntegrate_FreesExpiredParticles(t *testing.T) {
	pool, err := NewPool(10, 1, 60)
	if err != nil {
		t.Fatal(err)
	}
	params := testParams()
	params.Lifetime = 0.05
	pool.Emit(1, 1.0, params) // emit exactly one

	if pool.LiveCount() != 1 {
		t.Fatalf("expected 1 live, got %d", pool.LiveCount())
	}

	pool.Integrate(0.1, testKin()) // advance past lifetime

	if pool.LiveCount() != 0 {
		t.Errorf("expected particle to be freed after lifetime elapses, got live=%d", pool.LiveCount())
	}
	if pool.FreeCount() != pool.Capacity() {
		t.Errorf("expected all slots free, got %d", pool.FreeCount())
	}
}

func TestDeterminism_SameSeedSameSequence(t *testing.T) {
	run := func() []Particle {
		pool, _ := NewPool(20, 42, 60)
		pool.Emit(5, 1.0, testParams())
		for i := 0; i < 5; i++ {
			pool.Integrate(1.0/60, testKin())
		}
		var out []Particle
		pool.Live(func(p *Particle) { out = append(out, *p) })
		return out
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("expected same live count, got %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("particle %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}
