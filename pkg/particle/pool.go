// Package particle implements the fixed-capacity particle allocator (spec
// §4.5): emission, kinematic integration, eviction, and the engine's single
// shared PRNG.
package particle

import (
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/fernglow/mascotcore/internal/mathutil"
	"github.com/fernglow/mascotcore/pkg/mascoterr"
)

// Particle is one live slot's visible state.
type Particle struct {
	Position [2]float64
	Velocity [2]float64
	Age      float64
	Lifetime float64
	Size     float64
	BaseSize float64
	Color    colorful.Color
	Alpha    float64
	SourceID string
}

// SpawnParams describes the initial distribution particles are drawn from
// for one Emit call; the pool's own RNG supplies the jitter so kinematics
// stay reproducible under spec §4.5's determinism law.
type SpawnParams struct {
	Position       [2]float64
	VelocityBase   [2]float64
	VelocityJitter [2]float64 // +/- half-width applied per axis
	Size           float64
	SizeJitter     float64
	Lifetime       float64
	LifetimeJitter float64
	Color          colorful.Color
	SourceID       string
}

// KinematicsParams are the per-frame integration parameters the
// Compositor derives from affect/rhythm/gesture state each tick.
type KinematicsParams struct {
	Drag            float64    // fraction of velocity damped per second
	GravityBias     [2]float64 // constant acceleration
	RhythmAmplitude float64    // target multiplier on the GravityBias acceleration
	BoundsMin       [2]float64
	BoundsMax       [2]float64
}

// Pool is the fixed-capacity particle allocator.
type Pool struct {
	capacity int
	slots    []Particle
	alive    []bool
	free     []int // stack of free slot indices
	liveCnt  int

	rng *RNG

	emitAccumulator float64
	overflowCount   uint64
	ampSpring       harmonica.Spring
	ampPos, ampVel  float64
	ampSpringInit   bool
}

// NewPool constructs a Pool with the given slot capacity and RNG seed.
// capacity must be positive (spec §7 InvalidParticleCapacity).
func NewPool(capacity int, seed uint64, frameRate float64) (*Pool, error) {
	if capacity <= 0 {
		return nil, mascoterr.ErrInvalidParticleCapacity
	}
	if frameRate <= 0 {
		frameRate = 60
	}
	p := &Pool{
		capacity: capacity,
		slots:    make([]Particle, capacity),
		alive:    make([]bool, capacity),
		free:     make([]int, capacity),
		rng:      NewRNG(seed),
	}
	for i := 0; i < capacity; i++ {
		p.free[i] = capacity - 1 - i
	}
	p.ampSpring = harmonica.NewSpring(time.Second/time.Duration(frameRate), 6.0, 1.0)
	return p, nil
}

// Capacity returns the pool's fixed slot count.
func (p *Pool) Capacity() int { return p.capacity }

// LiveCount returns the number of currently occupied slots.
func (p *Pool) LiveCount() int { return p.liveCnt }

// FreeCount returns the number of currently unoccupied slots. Invariant
// (spec §8): LiveCount()+FreeCount() == Capacity() at every frame boundary.
func (p *Pool) FreeCount() int { return len(p.free) }

// OverflowCount returns the cumulative number of emissions silently
// dropped because the pool was full (spec §4.5: a metric, never an error).
func (p *Pool) OverflowCount() uint64 { return p.overflowCount }

// RNG exposes the pool's PRNG for serialization (seed/step) and for the
// engine's seedRng command.
func (p *Pool) RNG() *RNG { return p.rng }

// Live calls fn for every currently live particle, in slot order. fn must
// not retain the passed-in pointer past the call (spec §5 immutable-view
// rule): the Rasterizer's drawParticles contract is built on this.
func (p *Pool) Live(fn func(*Particle)) {
	for i, a := range p.alive {
		if a {
			fn(&p.slots[i])
		}
	}
}

// Emit spawns floor(rate*dt + accumulator) particles, carrying the
// fractional remainder to the next call (spec §4.5). Silently drops
// emissions once the pool is full.
func (p *Pool) Emit(rate, dt float64, params SpawnParams) int {
	p.emitAccumulator += rate * dt
	n := int(p.emitAccumulator)
	p.emitAccumulator -= float64(n)

	emitted := 0
	for i := 0; i < n; i++ {
		if len(p.free) == 0 {
			p.overflowCount += uint64(n - i)
			break
		}
		idx := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]

		vx := params.VelocityBase[0] + p.rng.Range(-params.VelocityJitter[0], params.VelocityJitter[0])
		vy := params.VelocityBase[1] + p.rng.Range(-params.VelocityJitter[1], params.VelocityJitter[1])
		size := params.Size + p.rng.Range(-params.SizeJitter, params.SizeJitter)
		lifetime := params.Lifetime + p.rng.Range(-params.LifetimeJitter, params.LifetimeJitter)
		if lifetime <= 0 {
			lifetime = 0.001
		}

		p.slots[idx] = Particle{
			Position: params.Position,
			Velocity: [2]float64{vx, vy},
			Age:      0,
			Lifetime: lifetime,
			Size:     size,
			BaseSize: size,
			Color:    params.Color,
			Alpha:    1,
			SourceID: params.SourceID,
		}
		p.alive[idx] = true
		p.liveCnt++
		emitted++
	}
	return emitted
}

// Integrate advances every live particle by dt and frees any that expired
// or left the bounding box (spec §4.5). The rhythm-driven amplitude
// multiplier is smoothed through a critically-damped spring so a beat
// accent never snaps the visible motion discontinuously frame to frame.
func (p *Pool) Integrate(dt float64, kin KinematicsParams) {
	if !p.ampSpringInit {
		p.ampPos = kin.RhythmAmplitude
		p.ampSpringInit = true
	}
	p.ampPos, p.ampVel = p.ampSpring.Update(p.ampPos, p.ampVel, kin.RhythmAmplitude)
	amp := p.ampPos

	dragFactor := 1 - mathutil.Clamp01(kin.Drag*dt)

	for i := range p.slots {
		if !p.alive[i] {
			continue
		}
		s := &p.slots[i]

		s.Velocity[0] = (s.Velocity[0] + kin.GravityBias[0]*dt*amp) * dragFactor
		s.Velocity[1] = (s.Velocity[1] + kin.GravityBias[1]*dt*amp) * dragFactor

		s.Position[0] += s.Velocity[0] * dt
		s.Position[1] += s.Velocity[1] * dt
		s.Age += dt

		lifeFrac := mathutil.Clamp01(s.Age / s.Lifetime)
		s.Alpha = 1 - lifeFrac
		s.Size = s.BaseSize * (1 - 0.3*lifeFrac)

		expired := s.Age >= s.Lifetime
		outOfBounds := s.Position[0] < kin.BoundsMin[0] || s.Position[0] > kin.BoundsMax[0] ||
			s.Position[1] < kin.BoundsMin[1] || s.Position[1] > kin.BoundsMax[1]

		if expired || outOfBounds {
			p.alive[i] = false
			p.liveCnt--
			p.free = append(p.free, i)
		}
	}
}
