// Package keystate debounces raw key press/release signals into
// KEY_DOWN / KEY_PRESSED (with auto-repeat) / KEY_UP events with durations.
package keystate

import (
	"time"

	"github.com/ysw/core/internal/bus"
	"github.com/ysw/core/internal/event"
)

// repeatIntervalMillis is the auto-repeat threshold unit: the nth repeat
// fires once the key has been down past n*repeatIntervalMillis.
const repeatIntervalMillis = 100

type keyState struct {
	down        bool
	downTime    uint64
	repeatCount uint32
}

// Tracker holds per-scan-code debounce state. The zero value is not usable;
// construct with New.
type Tracker struct {
	bus   *bus.Bus
	now   func() uint64
	state [256]keyState
}

// New creates a Tracker publishing to bus. nowMillis defaults to a
// monotonic wall-clock millisecond source if nil.
func New(b *bus.Bus, nowMillis func() uint64) *Tracker {
	if nowMillis == nil {
		start := time.Now()
		nowMillis = func() uint64 {
			return uint64(time.Since(start).Milliseconds())
		}
	}
	return &Tracker{bus: b, now: nowMillis}
}

// OnPress handles a raw press signal for scanCode.
func (t *Tracker) OnPress(scanCode uint8) {
	s := &t.state[scanCode]
	current := t.now()
	switch {
	case !s.down:
		s.down = true
		s.repeatCount = 0
		s.downTime = current
		t.bus.Publish(event.OriginKeyboard, event.Event{
			Type:    event.TypeKeyDown,
			KeyDown: event.KeyDown{ScanCode: scanCode, Time: s.downTime},
		})
	case s.downTime+uint64(s.repeatCount+1)*repeatIntervalMillis < current:
		s.repeatCount++
		t.bus.Publish(event.OriginKeyboard, event.Event{
			Type: event.TypeKeyPressed,
			KeyPressed: event.KeyPressed{
				ScanCode:    scanCode,
				Time:        s.downTime,
				Duration:    current - s.downTime,
				RepeatCount: s.repeatCount,
			},
		})
	}
}

// OnRelease handles a raw release signal for scanCode. If no KEY_PRESSED has
// fired yet for this press, a synthetic one is emitted first so every
// logical tap produces exactly one press event.
func (t *Tracker) OnRelease(scanCode uint8) {
	s := &t.state[scanCode]
	if !s.down {
		return
	}
	current := t.now()
	duration := current - s.downTime
	if s.repeatCount == 0 {
		t.bus.Publish(event.OriginKeyboard, event.Event{
			Type: event.TypeKeyPressed,
			KeyPressed: event.KeyPressed{
				ScanCode:    scanCode,
				Time:        s.downTime,
				Duration:    duration,
				RepeatCount: s.repeatCount,
			},
		})
	}
	t.bus.Publish(event.OriginKeyboard, event.Event{
		Type: event.TypeKeyUp,
		KeyUp: event.KeyUp{
			ScanCode:    scanCode,
			Time:        s.downTime,
			Duration:    duration,
			RepeatCount: s.repeatCount,
		},
	})
	s.down = false
}
