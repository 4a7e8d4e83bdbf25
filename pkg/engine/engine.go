// Package engine wires TimeBase, RhythmClock, GestureScheduler, AffectModel,
// BodyState, Compositor, and ParticlePool into the fixed-order, single-
// threaded cooperative tick loop described in spec §5, and exposes the
// HostAPI command/event surface from spec §4.9.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/fernglow/mascotcore/pkg/affect"
	"github.com/fernglow/mascotcore/pkg/audiotap"
	"github.com/fernglow/mascotcore/pkg/body"
	"github.com/fernglow/mascotcore/pkg/compositor"
	"github.com/fernglow/mascotcore/pkg/eventbus"
	"github.com/fernglow/mascotcore/pkg/gesture"
	"github.com/fernglow/mascotcore/pkg/mascoterr"
	"github.com/fernglow/mascotcore/pkg/particle"
	"github.com/fernglow/mascotcore/pkg/rasterizer"
	"github.com/fernglow/mascotcore/pkg/rhythm"
	"github.com/fernglow/mascotcore/pkg/timebase"
)

// commandQueueDepth bounds the host command queue (spec §5). Beyond this,
// Submit silently drops the command and increments a diagnostics metric,
// the same posture the spec takes toward particle overflow.
const commandQueueDepth = 256

// Config configures a new Engine. Zero-value fields fall back to sane
// defaults documented per field.
type Config struct {
	InitialEmotion   affect.Emotion
	InitialUndertone affect.Undertone
	InitialShape     body.Shape
	InitialBPM       float64 // defaults to 120 if zero
	ParticleCapacity int     // defaults to 300 if zero
	RngSeed          uint64
	FrameRate        float64 // defaults to 60 if zero
	Width, Height    int     // defaults to 800x600 if zero
	Drag             float64 // defaults to 0.6 if zero
	GravityBias      [2]float64

	Families   map[gesture.Family]gesture.FamilyConfig
	Rasterizer rasterizer.Rasterizer // defaults to rasterizer.Null{}
	AudioTap   audiotap.Tap          // optional
	Now        func() time.Time      // overridable clock, for deterministic tests
}

// Engine is the mascot engine core: owns all components and advances them
// in the fixed order TimeBase -> RhythmClock -> GestureScheduler ->
// AffectModel -> BodyState -> Compositor -> ParticlePool -> Rasterizer.
type Engine struct {
	tb         *timebase.TimeBase
	clock      *rhythm.Clock
	scheduler  *gesture.Scheduler
	affectMdl  *affect.Model
	bodyState  *body.State
	compositor *compositor.Compositor
	particles  *particle.Pool
	rasterizer rasterizer.Rasterizer
	bus        *eventbus.Bus
	audioTap   audiotap.Tap

	commands chan Command
	rngSeed  uint64

	width, height int
	drag          float64
	gravityBias   [2]float64

	diag Diagnostics
}

// New constructs an Engine. Construction failures abort construction and
// return a non-nil error without partially constructing components
// (spec §7 propagation policy).
func New(cfg Config) (*Engine, error) {
	if cfg.InitialBPM == 0 {
		cfg.InitialBPM = 120
	}
	if cfg.ParticleCapacity == 0 {
		cfg.ParticleCapacity = 300
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = 60
	}
	if cfg.Width == 0 {
		cfg.Width = 800
	}
	if cfg.Height == 0 {
		cfg.Height = 600
	}
	if cfg.Drag == 0 {
		cfg.Drag = 0.6
	}
	if cfg.Rasterizer == nil {
		cfg.Rasterizer = rasterizer.Null{}
	}

	reg := affect.NewDefaultRegistry()
	affectMdl, err := affect.NewModel(reg, cfg.InitialEmotion, cfg.InitialUndertone)
	if err != nil {
		return nil, err
	}
	bodyState, err := body.New(cfg.InitialShape)
	if err != nil {
		return nil, err
	}
	pool, err := particle.NewPool(cfg.ParticleCapacity, cfg.RngSeed, cfg.FrameRate)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		tb:          timebase.NewWithClock(orDefaultClock(cfg.Now)),
		clock:       rhythm.New(cfg.InitialBPM),
		scheduler:   gesture.NewScheduler(cfg.Families),
		affectMdl:   affectMdl,
		bodyState:   bodyState,
		compositor:  compositor.New(),
		particles:   pool,
		rasterizer:  cfg.Rasterizer,
		bus:         eventbus.New(cfg.Now),
		audioTap:    cfg.AudioTap,
		commands:    make(chan Command, commandQueueDepth),
		rngSeed:     cfg.RngSeed,
		width:       cfg.Width,
		height:      cfg.Height,
		drag:        cfg.Drag,
		gravityBias: cfg.GravityBias,
	}
	e.bus.OnFault(e.recordFault)
	return e, nil
}

func orDefaultClock(now func() time.Time) func() time.Time {
	if now != nil {
		return now
	}
	return time.Now
}

// Bus exposes the event bus for subscription (spec §4.9 events).
func (e *Engine) Bus() *eventbus.Bus { return e.bus }

// Tick advances every component exactly one frame in the fixed order
// required by spec §5: TimeBase has already measured dt (passed in here by
// the host's frame loop, or derived via AdvanceFrame), commands are
// drained first, then RhythmClock, GestureScheduler, AffectModel,
// BodyState, Compositor, ParticlePool, and finally Rasterizer dispatch.
func (e *Engine) Tick(dt float64) {
	start := time.Now()

	e.drainCommands()
	e.drainAudioTap()

	// Pause freezes every clock, including a dt the host passes in directly.
	if e.tb.Paused() {
		dt = 0
	}

	beatEvents := e.clock.Advance(dt)
	for _, be := range beatEvents {
		e.bus.Publish(eventbus.BeatTick, be)
	}

	gestureEvents := e.scheduler.Tick(dt, e.clock)
	e.publishGestureEvents(gestureEvents)

	e.affectMdl.Advance(dt)
	e.bodyState.Advance(dt)

	affectSnap := e.affectMdl.Snapshot()
	defaults, _ := e.affectMdl.Registry().Defaults(affectSnap.Emotion)

	out := e.compositor.Compose(compositor.Input{
		Affect:           affectSnap,
		RhythmProfile:    defaults.RhythmProfile,
		Phase:            e.clock.Phase(),
		ActiveGestures:   e.scheduler.ActiveGestures(),
		Body:             e.bodyState.Snapshot(),
		EmissionRateBase: defaults.EmissionRate,
		BoundsMin:        [2]float64{-float64(e.width) / 2, -float64(e.height) / 2},
		BoundsMax:        [2]float64{float64(e.width) / 2, float64(e.height) / 2},
		Drag:             e.drag,
		GravityBias:      e.gravityBias,
	})

	e.particles.Emit(out.EmissionRate, dt, out.SpawnParams)
	e.particles.Integrate(dt, out.KinematicsParams)

	e.dispatchRasterizer(out)

	e.diag.TickCount++
	e.diag.LastTickDuration = time.Since(start)
}

// AdvanceFrame measures elapsed wall-clock time via the engine's TimeBase
// and ticks by that amount; a convenience for hosts that don't want to
// manage dt themselves.
func (e *Engine) AdvanceFrame() {
	dt := e.tb.TickFrame()
	e.Tick(dt)
}

func (e *Engine) dispatchRasterizer(out compositor.Output) {
	defer func() {
		if r := recover(); r != nil {
			e.recordFault(mascoterr.Fault("rasterizer", r))
		}
	}()

	e.rasterizer.BeginFrame(nil)
	e.rasterizer.DrawBody(out.Body)

	var views []rasterizer.ParticleView
	e.particles.Live(func(p *particle.Particle) {
		views = append(views, rasterizer.ParticleView{
			Position: p.Position,
			Size:     p.Size,
			Color:    p.Color,
			Alpha:    p.Alpha,
		})
	})
	e.rasterizer.DrawParticles(views)
	e.rasterizer.EndFrame()
}

func (e *Engine) drainAudioTap() {
	if e.audioTap == nil {
		return
	}
	for _, est := range e.audioTap.Drain() {
		if !e.clock.AdoptTempoEstimate(est) {
			e.diag.RejectedTempoEsts++
			continue
		}
		e.bus.Publish(eventbus.TempoChanged, est)
	}
}

func (e *Engine) publishGestureEvents(events []gesture.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case gesture.EventStarted:
			e.bus.Publish(eventbus.GestureStarted, ev)
		case gesture.EventEnded:
			e.bus.Publish(eventbus.GestureEnded, ev)
		case gesture.EventCancelled:
			e.bus.Publish(eventbus.GestureCancelled, ev)
		case gesture.EventRejected:
			e.bus.Publish(eventbus.GestureRejected, ev)
		}
	}
}

// Diagnostics. LiveParticleCount exposes the pool's live count for
// external monitoring without reaching into the particle package directly.
func (e *Engine) LiveParticleCount() int { return e.particles.LiveCount() }

// AffectSnapshot exposes the current resolved affect state for external
// monitoring (e.g. a telemetry server), without reaching into pkg/affect directly.
func (e *Engine) AffectSnapshot() affect.AffectSnapshot { return e.affectMdl.Snapshot() }

// BodySnapshot exposes the current body directive for external monitoring.
func (e *Engine) BodySnapshot() body.Directive { return e.bodyState.Snapshot() }

// GestureID re-exports uuid.UUID for callers constructing CancelGestureCommand
// without importing google/uuid directly.
type GestureID = uuid.UUID
