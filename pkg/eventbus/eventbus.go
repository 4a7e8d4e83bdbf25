// Package eventbus implements the engine's internal event bus: synchronous,
// in-tick dispatch to subscribers with fault isolation. A panicking or
// erroring subscriber never corrupts engine state or interrupts the tick.
// The registration map and recover-per-subscriber shape mirrors the
// signaling server's Room/Peer registry (server/main.go), adapted from
// an async, per-peer channel fan-out to inline dispatch, since events
// fire synchronously within a single-threaded tick.
package eventbus

import (
	"sync"
	"time"

	"github.com/fernglow/mascotcore/pkg/mascoterr"
)

// Kind identifies which of the closed set of engine events occurred.
type Kind int

const (
	EmotionChanged Kind = iota
	UndertoneChanged
	GestureStarted
	GestureEnded
	GestureCancelled
	GestureRejected
	ShapeMorphed
	BeatTick
	TempoChanged
	Paused
	Resumed
)

var kindNames = [...]string{
	EmotionChanged: "EmotionChanged", UndertoneChanged: "UndertoneChanged",
	GestureStarted: "GestureStarted", GestureEnded: "GestureEnded",
	GestureCancelled: "GestureCancelled", GestureRejected: "GestureRejected",
	ShapeMorphed: "ShapeMorphed", BeatTick: "BeatTick",
	TempoChanged: "TempoChanged", Paused: "Paused", Resumed: "Resumed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Event is one bus notification: a fixed kind, a monotonic sequence
// number, an engine-local timestamp, and a kind-specific payload
// (spec §6's event schema).
type Event struct {
	Kind      Kind
	Seq       uint64
	Timestamp time.Duration // time elapsed since the Bus was constructed (with the engine)
	Payload   any
}

// Subscriber receives events synchronously during tick dispatch. A
// returned error (or a recovered panic) is converted to ErrSubscriberFault
// and reported to the Bus's fault sink without interrupting dispatch.
type Subscriber func(Event) error

// Bus is the synchronous, fault-isolating event dispatcher.
type Bus struct {
	mu          sync.Mutex
	subscribers map[Kind][]Subscriber
	all         []Subscriber
	seq         uint64
	epoch       time.Time
	clockNow    func() time.Time
	onFault     func(error)
}

// New constructs a Bus. now is the wall-clock source used to compute each
// event's engine-local timestamp (time.Now in production, an injected
// fake in tests).
func New(now func() time.Time) *Bus {
	if now == nil {
		now = time.Now
	}
	return &Bus{
		subscribers: make(map[Kind][]Subscriber),
		clockNow:    now,
		epoch:       now(),
	}
}

// OnFault registers a sink for SubscriberFault errors (the diagnostics
// sink in the engine). Nil is valid and simply drops faults.
func (b *Bus) OnFault(fn func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onFault = fn
}

// Subscribe registers fn for events of the given kind only.
func (b *Bus) Subscribe(kind Kind, fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[kind] = append(b.subscribers[kind], fn)
}

// SubscribeAll registers fn for every event kind.
func (b *Bus) SubscribeAll(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, fn)
}

// Publish dispatches an event of the given kind synchronously to every
// subscriber of that kind plus every catch-all subscriber, assigning the
// next sequence number and current engine-local timestamp. Subscriber
// panics and errors are recovered, converted via mascoterr.Fault, and
// handed to the fault sink; dispatch continues to the remaining
// subscribers regardless.
func (b *Bus) Publish(kind Kind, payload any) Event {
	b.mu.Lock()
	b.seq++
	ev := Event{
		Kind:      kind,
		Seq:       b.seq,
		Timestamp: b.clockNow().Sub(b.epoch),
		Payload:   payload,
	}
	subs := append([]Subscriber{}, b.subscribers[kind]...)
	subs = append(subs, b.all...)
	onFault := b.onFault
	b.mu.Unlock()

	for _, sub := range subs {
		b.dispatchOne(sub, ev, onFault)
	}
	return ev
}

func (b *Bus) dispatchOne(sub Subscriber, ev Event, onFault func(error)) {
	defer func() {
		if r := recover(); r != nil {
			if onFault != nil {
				onFault(mascoterr.Fault(ev.Kind.String(), r))
			}
		}
	}()
	if err := sub(ev); err != nil && onFault != nil {
		onFault(mascoterr.Fault(ev.Kind.String(), err))
	}
}
