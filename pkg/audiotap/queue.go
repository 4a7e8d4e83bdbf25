package audiotap

import (
	"sync"

	"github.com/fernglow/mascotcore/pkg/rhythm"
)

const defaultQueueCapacity = 8

// Queue is a bounded single-producer/single-consumer queue of tempo
// estimates (spec §5). Push drops the oldest entry when full rather than
// block the producer; Drain returns and clears everything buffered, which
// the engine calls once per tick.
type Queue struct {
	mu       sync.Mutex
	items    []rhythm.TempoEstimate
	capacity int
}

// NewQueue constructs a Queue with the given capacity. A non-positive
// capacity falls back to defaultQueueCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &Queue{capacity: capacity}
}

// Push enqueues an estimate, dropping the oldest if the queue is full.
func (q *Queue) Push(est rhythm.TempoEstimate) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, est)
}

// Drain returns every buffered estimate in push order and empties the queue.
func (q *Queue) Drain() []rhythm.TempoEstimate {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
