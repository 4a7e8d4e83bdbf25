// Package audiotap implements the optional AudioTap (spec §4.3, §5): an
// external PCM producer that estimates tempo and pushes TempoEstimate
// values into a small single-producer/single-consumer queue the engine
// drains at the start of each tick. The tap never calls into the engine
// directly.
package audiotap

import "github.com/fernglow/mascotcore/pkg/rhythm"

// Tap is anything that can be started, stopped, and drained for tempo
// estimates. Concrete implementations (e.g. WebSocketTap) own their own
// producer goroutine; Drain is the only method the engine's tick loop
// calls, and it never blocks.
type Tap interface {
	Start() error
	Close() error
	Drain() []rhythm.TempoEstimate
}
