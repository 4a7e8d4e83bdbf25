package gesture

import (
	"github.com/google/uuid"

	"github.com/fernglow/mascotcore/pkg/mascoterr"
	"github.com/fernglow/mascotcore/pkg/rhythm"
)

// conflict returns the active instance g would conflict with under the
// exclusivity rules of spec §4.4, or nil if none.
func (s *Scheduler) conflict(g Descriptor) *instance {
	for _, a := range s.active {
		if a.state != stateActive && a.state != stateRetiring {
			continue
		}
		switch g.Exclusivity.Kind {
		case Solo:
			if a.desc.Exclusivity.Kind == Solo {
				return a
			}
		case FamilyExclusive:
			if a.desc.Exclusivity.Kind == FamilyExclusive && a.desc.Family == g.Family {
				return a
			}
		case Ambient:
			if a.desc.Exclusivity.Kind == Ambient && a.desc.Family == g.Family {
				return a
			}
		case Overlay:
			// Overlay never conflicts.
		}
	}
	return nil
}

func (s *Scheduler) pendingCountForClass(kind ExclusivityKind, family Family) int {
	n := 0
	for _, p := range s.pending {
		if p.desc.Exclusivity.Kind != kind {
			continue
		}
		if kind == FamilyExclusive || kind == Ambient {
			if p.desc.Family != family {
				continue
			}
		}
		n++
	}
	return n
}

// FamilyKnown reports whether f is registered, so a caller (the engine's
// HostAPI) can validate a triggerGesture command before it is even queued.
func (s *Scheduler) FamilyKnown(f Family) bool {
	_, ok := s.families[f]
	return ok
}

// Enqueue admits g per the spec §4.4 admission algorithm: priority-based
// displacement, then beat alignment or immediate activation, then per-class
// queue-depth rejection. Returns the new gesture's id.
func (s *Scheduler) Enqueue(g Descriptor, clock *rhythm.Clock) (uuid.UUID, []Event, error) {
	cfg, ok := s.families[g.Family]
	if !ok {
		return uuid.UUID{}, nil, mascoterr.ErrUnknownGestureFamily
	}

	inst := &instance{id: uuid.New(), desc: g, priority: cfg.Priority}
	var events []Event

	if c := s.conflict(g); c != nil {
		if inst.priority > c.priority {
			c.state = stateCancelled
			events = append(events, Event{Kind: EventCancelled, ID: c.id, Family: c.desc.Family, Reason: mascoterr.ErrGestureCancelled})
			s.activateOrQueueBeat(inst, clock)
			if inst.state == stateActive {
				s.active = append(s.active, inst)
				events = append(events, Event{Kind: EventStarted, ID: inst.id, Family: inst.desc.Family})
			} else {
				s.pending = append(s.pending, inst)
			}
			return inst.id, events, nil
		}

		if g.Exclusivity.Kind == Ambient {
			events = append(events, Event{Kind: EventRejected, ID: inst.id, Family: g.Family, Reason: mascoterr.ErrGestureSuperseded})
			return inst.id, events, nil
		}

		if s.pendingCountForClass(g.Exclusivity.Kind, g.Family) >= cfg.QueueDepth {
			events = append(events, Event{Kind: EventRejected, ID: inst.id, Family: g.Family, Reason: mascoterr.ErrGestureQueueFull})
			return inst.id, events, nil
		}
		inst.state = statePendingConflict
		s.pending = append(s.pending, inst)
		return inst.id, events, nil
	}

	if g.BeatAligned && clock.Enabled() {
		if s.pendingCountForClass(g.Exclusivity.Kind, g.Family) >= cfg.QueueDepth {
			events = append(events, Event{Kind: EventRejected, ID: inst.id, Family: g.Family, Reason: mascoterr.ErrGestureQueueFull})
			return inst.id, events, nil
		}
		s.activateOrQueueBeat(inst, clock)
		s.pending = append(s.pending, inst)
		return inst.id, events, nil
	}

	inst.state = stateActive
	s.active = append(s.active, inst)
	events = append(events, Event{Kind: EventStarted, ID: inst.id, Family: inst.desc.Family})
	return inst.id, events, nil
}

// activateOrQueueBeat sets inst to statePendingBeat with its target
// boundary if beat-aligned and the clock is enabled, else activates it
// immediately in place.
func (s *Scheduler) activateOrQueueBeat(inst *instance, clock *rhythm.Clock) {
	if inst.desc.BeatAligned && clock.Enabled() {
		next := clock.NextBoundary(inst.desc.AlignSubdivision)
		inst.state = statePendingBeat
		inst.targetBeat = next.Beat
		inst.targetPhase01 = next.Phase01
		return
	}
	inst.state = stateActive
}

// Cancel stops an active or pending gesture at its next frame. Unknown ids
// are a no-op (spec §4.4 failure semantics).
func (s *Scheduler) Cancel(id uuid.UUID) []Event {
	for _, a := range s.active {
		if a.id == id && (a.state == stateActive || a.state == statePendingBeat) {
			fam := a.desc.Family
			a.state = stateCancelled
			return []Event{{Kind: EventCancelled, ID: id, Family: fam, Reason: mascoterr.ErrGestureCancelled}}
		}
	}
	for _, p := range s.pending {
		if p.id == id {
			fam := p.desc.Family
			p.state = stateCancelled
			return []Event{{Kind: EventCancelled, ID: id, Family: fam, Reason: mascoterr.ErrGestureCancelled}}
		}
	}
	return nil
}

// CancelFamily cancels every active or pending gesture in family f.
func (s *Scheduler) CancelFamily(f Family) []Event {
	var events []Event
	for _, a := range s.active {
		if a.desc.Family == f && (a.state == stateActive || a.state == statePendingBeat) {
			a.state = stateCancelled
			events = append(events, Event{Kind: EventCancelled, ID: a.id, Family: f, Reason: mascoterr.ErrGestureCancelled})
		}
	}
	for _, p := range s.pending {
		if p.desc.Family == f && p.state != stateCancelled {
			p.state = stateCancelled
			events = append(events, Event{Kind: EventCancelled, ID: p.id, Family: f, Reason: mascoterr.ErrGestureCancelled})
		}
	}
	return events
}

// ActiveGestures returns a live read-only snapshot for the Compositor.
func (s *Scheduler) ActiveGestures() []ActiveGesture {
	var out []ActiveGesture
	for _, a := range s.active {
		if a.state != stateActive && a.state != stateRetiring {
			continue
		}
		out = append(out, ActiveGesture{
			ID:             a.id,
			Family:         a.desc.Family,
			Exclusivity:    a.desc.Exclusivity,
			NormalizedTime: a.normTime,
			Modulators:     a.desc.Modulators,
		})
	}
	return out
}

// Tick advances musical time for active gestures, retires those past 1.0,
// and promotes queued gestures whose condition has been met (spec §4.4).
func (s *Scheduler) Tick(dt float64, clock *rhythm.Clock) []Event {
	var events []Event

	phase := clock.Phase()
	for _, p := range s.pending {
		if p.state == statePendingBeat {
			if phase.Beat > p.targetBeat || (phase.Beat == p.targetBeat && phase.Phase01 >= p.targetPhase01) {
				p.state = stateActive
				s.active = append(s.active, p)
				events = append(events, Event{Kind: EventStarted, ID: p.id, Family: p.desc.Family})
			}
		}
	}

	events = append(events, s.promotePendingConflicts()...)

	var stillActive []*instance
	for _, a := range s.active {
		switch a.state {
		case stateActive:
			if a.desc.DurationBeats > 0 {
				beatsElapsed := dt * clock.BPM() / 60.0
				a.normTime += beatsElapsed / a.desc.DurationBeats
			}
			if a.normTime >= 1.0 {
				a.normTime = 1.0
				a.state = stateRetiring
			}
			stillActive = append(stillActive, a)
		case stateRetiring:
			a.state = stateDone
			events = append(events, Event{Kind: EventEnded, ID: a.id, Family: a.desc.Family})
		case stateCancelled:
			// already emitted at cancellation time; drop from active list
		case stateDone:
			// drop
		default:
			stillActive = append(stillActive, a)
		}
	}
	s.active = stillActive

	var stillPending []*instance
	for _, p := range s.pending {
		if p.state == statePendingConflict || p.state == statePendingBeat {
			stillPending = append(stillPending, p)
		}
	}
	s.pending = stillPending

	return events
}

// promotePendingConflicts activates any conflict-queued gesture whose
// incumbent has vacated its exclusivity class.
func (s *Scheduler) promotePendingConflicts() []Event {
	var events []Event
	for _, p := range s.pending {
		if p.state != statePendingConflict {
			continue
		}
		if s.conflict(p.desc) == nil {
			p.state = stateActive
			s.active = append(s.active, p)
			events = append(events, Event{Kind: EventStarted, ID: p.id, Family: p.desc.Family})
		}
	}
	return events
}
