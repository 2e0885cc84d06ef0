// Package bus implements a typed pub/sub bus: publishing an event copies it
// into every queue currently subscribed to its origin.
package bus

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ysw/core/internal/event"
)

// DefaultQueueSize is the default bounded depth of a subscriber queue.
const DefaultQueueSize = 16

// DefaultPublishTimeout bounds how long Publish waits on a full subscriber
// queue before dropping the event for that subscriber only.
const DefaultPublishTimeout = 50 * time.Millisecond

// Queue is a bounded, multi-producer single-consumer channel of events. A
// full queue degrades Send to event-drop after the bus's publish timeout.
type Queue struct {
	ch        chan event.Event
	overflows atomic.Uint64
}

// NewQueue allocates a queue with the given depth.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan event.Event, size)}
}

// C exposes the receive side for a worker's select loop.
func (q *Queue) C() <-chan event.Event {
	return q.ch
}

// Overflows reports how many sends to this queue have timed out.
func (q *Queue) Overflows() uint64 {
	return q.overflows.Load()
}

// Send attempts to enqueue ev, blocking up to timeout. It returns false and
// increments the overflow counter if the queue stayed full for the whole
// timeout.
func (q *Queue) Send(ev event.Event, timeout time.Duration) bool {
	select {
	case q.ch <- ev:
		return true
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case q.ch <- ev:
		return true
	case <-timer.C:
		q.overflows.Add(1)
		return false
	}
}

// Config configures a Bus.
type Config struct {
	// PublishTimeout bounds how long Publish waits on each subscriber's
	// queue. Zero selects DefaultPublishTimeout.
	PublishTimeout time.Duration
	Logger         *slog.Logger
}

// Bus copies each published event into every queue subscribed to its
// origin. Delivery is at-most-once per subscription and preserves
// per-publisher ordering per origin; cross-origin ordering is not
// guaranteed.
type Bus struct {
	mu             sync.RWMutex
	subscribers    [event.Count][]*Queue
	publishTimeout time.Duration
	log            *slog.Logger
}

// New creates a Bus.
func New(cfg Config) *Bus {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Bus{publishTimeout: timeout, log: log}
}

// Subscribe registers q to receive events published to origin.
func (b *Bus) Subscribe(origin event.Origin, q *Queue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[origin] = append(b.subscribers[origin], q)
}

// Unsubscribe removes q from origin's subscriber list, if present.
func (b *Bus) Unsubscribe(origin event.Origin, q *Queue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[origin] = removeQueue(b.subscribers[origin], q)
}

// DeleteQueue removes q from every origin's subscriber list.
func (b *Bus) DeleteQueue(q *Queue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for origin := range b.subscribers {
		b.subscribers[origin] = removeQueue(b.subscribers[origin], q)
	}
}

func removeQueue(queues []*Queue, target *Queue) []*Queue {
	for i, q := range queues {
		if q == target {
			queues[i] = queues[len(queues)-1]
			return queues[:len(queues)-1]
		}
	}
	return queues
}

// Publish snapshots origin's subscriber list and sends ev to each queue,
// outside the bus lock, so a slow subscriber cannot stall Subscribe or
// Unsubscribe on other origins. A full queue drops the event for that
// subscriber only, after PublishTimeout.
func (b *Bus) Publish(origin event.Origin, ev event.Event) {
	ev.Origin = origin

	b.mu.RLock()
	snapshot := make([]*Queue, len(b.subscribers[origin]))
	copy(snapshot, b.subscribers[origin])
	b.mu.RUnlock()

	for _, q := range snapshot {
		if !q.Send(ev, b.publishTimeout) {
			b.log.Warn("bus: publish timed out, event dropped for subscriber",
				"origin", origin, "type", ev.Type)
		}
	}
}
