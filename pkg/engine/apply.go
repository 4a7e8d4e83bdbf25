package engine

import "github.com/fernglow/mascotcore/pkg/eventbus"

// drainCommands applies every command queued since the last tick, in FIFO
// order, before any other component advances (spec §5: "no command
// observes a partially-advanced frame").
func (e *Engine) drainCommands() {
	for {
		select {
		case cmd := <-e.commands:
			e.apply(cmd)
		default:
			return
		}
	}
}

func (e *Engine) apply(cmd Command) {
	switch c := cmd.(type) {
	case SetEmotionCommand:
		before := e.affectMdl.Snapshot()
		if err := e.affectMdl.SetEmotion(c.Emotion, c.Undertone, c.Duration); err == nil {
			if before.Emotion != c.Emotion {
				e.bus.Publish(eventbus.EmotionChanged, c.Emotion)
			}
			if before.Undertone != c.Undertone {
				e.bus.Publish(eventbus.UndertoneChanged, c.Undertone)
			}
		}

	case SetUndertoneCommand:
		current := e.affectMdl.Snapshot().Emotion
		if err := e.affectMdl.SetEmotion(current, c.Undertone, c.Duration); err == nil {
			e.bus.Publish(eventbus.UndertoneChanged, c.Undertone)
		}

	case TriggerGestureCommand:
		_, events, err := e.scheduler.Enqueue(c.Descriptor, e.clock)
		if err == nil {
			e.publishGestureEvents(events)
		}

	case CancelGestureCommand:
		events := e.scheduler.Cancel(c.ID)
		e.publishGestureEvents(events)

	case CancelGestureFamilyCommand:
		events := e.scheduler.CancelFamily(c.Family)
		e.publishGestureEvents(events)

	case SetShapeCommand:
		if err := e.bodyState.SetShape(c.Shape, c.Duration); err == nil {
			e.bus.Publish(eventbus.ShapeMorphed, c.Shape)
		}

	case SetBpmCommand:
		if err := e.clock.SetBpm(c.BPM); err == nil {
			e.bus.Publish(eventbus.TempoChanged, c.BPM)
		}

	case EnableRhythmCommand:
		e.clock.Enable()

	case DisableRhythmCommand:
		e.clock.Disable()

	case PlayCommand:
		wasPaused := e.tb.Paused()
		e.tb.Resume()
		if wasPaused {
			e.bus.Publish(eventbus.Resumed, nil)
		}

	case PauseCommand:
		wasPaused := e.tb.Paused()
		e.tb.Pause()
		if !wasPaused {
			e.bus.Publish(eventbus.Paused, nil)
		}

	case SeedRngCommand:
		e.particles.RNG().Seed(c.Seed)
		e.rngSeed = c.Seed

	case ResizeCommand:
		e.width = c.Width
		e.height = c.Height
		e.rasterizer.Resize(c.Width, c.Height)
	}
}
