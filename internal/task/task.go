// Package task implements the worker harness: a goroutine bound to one bus
// queue, with a periodic wake the handler can reset on every call.
package task

import (
	"context"
	"time"

	"github.com/ysw/core/internal/bus"
	"github.com/ysw/core/internal/event"
)

// Forever tells Run to wait on the queue with no timeout until the next
// event arrives.
const Forever time.Duration = -1

// Handler processes one event, or nil on a periodic-wait timeout, and
// returns the next wait duration: 0 to re-enter immediately, Forever to
// block until the next event, or any other duration to wake after that long
// even with nothing queued.
type Handler func(ev *event.Event) time.Duration

// Config configures a Worker.
type Config struct {
	Name         string
	Bus          *bus.Bus
	QueueSize    int
	Handler      Handler
	Initializer  func()
	InitialWait  time.Duration // defaults to Forever
}

// Worker is a single goroutine bound to one bus queue.
type Worker struct {
	name    string
	bus     *bus.Bus
	queue   *bus.Queue
	handler Handler
	init    func()
	wait    time.Duration
}

// New creates a Worker and its bus queue, but does not start its goroutine
// or subscribe it to any origin.
func New(cfg Config) *Worker {
	size := cfg.QueueSize
	if size <= 0 {
		size = bus.DefaultQueueSize
	}
	wait := cfg.InitialWait
	if wait == 0 {
		wait = Forever
	}
	return &Worker{
		name:    cfg.Name,
		bus:     cfg.Bus,
		queue:   bus.NewQueue(size),
		handler: cfg.Handler,
		init:    cfg.Initializer,
		wait:    wait,
	}
}

// Subscribe registers this worker's queue to receive events from origin.
func (w *Worker) Subscribe(origin event.Origin) {
	w.bus.Subscribe(origin, w.queue)
}

// Run executes the worker loop until ctx is canceled, at which point the
// worker deregisters its queue from the bus and returns. It blocks the
// calling goroutine; callers run it with `go w.Run(ctx)`.
func (w *Worker) Run(ctx context.Context) {
	defer w.bus.DeleteQueue(w.queue)

	if w.init != nil {
		w.init()
	}

	for {
		var timer *time.Timer
		var timeoutC <-chan time.Time
		if w.wait >= 0 {
			timer = time.NewTimer(w.wait)
			timeoutC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev := <-w.queue.C():
			if timer != nil {
				timer.Stop()
			}
			w.wait = w.handler(&ev)
		case <-timeoutC:
			w.wait = w.handler(nil)
		}
	}
}
