package bus

import (
	"testing"
	"time"

	"github.com/ysw/core/internal/event"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New(Config{})
	q := NewQueue(4)
	b.Subscribe(event.OriginSequencer, q)

	b.Publish(event.OriginSequencer, event.Event{Type: event.TypeIdle})

	select {
	case ev := <-q.C():
		if ev.Type != event.TypeIdle {
			t.Errorf("got type %v, want TypeIdle", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishDoesNotCrossOrigins(t *testing.T) {
	b := New(Config{})
	q := NewQueue(4)
	b.Subscribe(event.OriginSequencer, q)

	b.Publish(event.OriginEditor, event.Event{Type: event.TypeIdle})

	select {
	case ev := <-q.C():
		t.Fatalf("unexpected delivery: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFullQueueDropsAfterTimeout(t *testing.T) {
	b := New(Config{PublishTimeout: 10 * time.Millisecond})
	q := NewQueue(1)
	b.Subscribe(event.OriginSequencer, q)

	b.Publish(event.OriginSequencer, event.Event{Type: event.TypeIdle}) // fills the one-deep queue
	if q.Overflows() != 0 {
		t.Fatalf("unexpected overflow before queue is full: %d", q.Overflows())
	}

	// Nobody drains the queue, so this publish must time out and drop.
	b.Publish(event.OriginSequencer, event.Event{Type: event.TypeIdle})
	if q.Overflows() == 0 {
		t.Error("expected an overflow once the queue stays full past the timeout")
	}
}

func TestDeleteQueueUnsubscribesFromEveryOrigin(t *testing.T) {
	b := New(Config{})
	q := NewQueue(4)
	b.Subscribe(event.OriginSequencer, q)
	b.Subscribe(event.OriginEditor, q)

	b.DeleteQueue(q)

	b.Publish(event.OriginSequencer, event.Event{Type: event.TypeIdle})
	b.Publish(event.OriginEditor, event.Event{Type: event.TypeIdle})

	select {
	case ev := <-q.C():
		t.Fatalf("unexpected delivery after DeleteQueue: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
