// Package sequencer plays a clip (a tempo-tagged note timeline), emitting
// the minimal stream of NOTE_ON/NOTE_OFF/PROGRAM_CHANGE/NOTE_STATUS events
// so that, scaled by its speed percentage, the clip sounds in real time with
// bounded polyphony.
package sequencer

import (
	"context"
	"log/slog"
	"time"

	"github.com/ysw/core/internal/bus"
	"github.com/ysw/core/internal/event"
	"github.com/ysw/core/internal/note"
	"github.com/ysw/core/internal/task"
)

// MaxPolyphony bounds the number of simultaneously active notes.
const MaxPolyphony = 64

// DefaultSpeedPercent is the playback speed percentage used when not
// otherwise set.
const DefaultSpeedPercent = 100

type activeNote struct {
	channel   uint8
	midiNote  uint8
	endMillis int64
}

// Config configures a Sequencer.
type Config struct {
	Bus *bus.Bus
	// NowMillis supplies the current wall-clock time in milliseconds;
	// defaults to a real monotonic clock. Tests inject a fake clock.
	NowMillis func() int64
	Logger    *slog.Logger
}

// Sequencer holds all playback state for one clip plus a FIFO of clips
// queued to play next.
type Sequencer struct {
	bus    *bus.Bus
	worker *task.Worker
	now    func() int64
	log    *slog.Logger

	clip          note.Clip
	hasClip       bool
	playList      []note.Clip
	activeNotes   []activeNote
	programs      [note.MaxChannels]uint8
	nextNote     int
	startMillis  int64 // 0 means paused/stopped
	loop         bool
	speedPercent uint8
}

// New creates a Sequencer and its worker, subscribed to COMMAND events.
func New(cfg Config) *Sequencer {
	now := cfg.NowMillis
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Sequencer{
		bus:          cfg.Bus,
		now:          now,
		log:          log,
		speedPercent: DefaultSpeedPercent,
	}
	s.worker = task.New(task.Config{
		Name:    "sequencer",
		Bus:     cfg.Bus,
		Handler: s.handle,
	})
	s.worker.Subscribe(event.OriginCommand)
	return s
}

// Run executes the sequencer's worker loop until ctx is canceled.
func (s *Sequencer) Run(ctx context.Context) {
	s.worker.Run(ctx)
}

func (s *Sequencer) isClipPlaying() bool {
	return s.startMillis != 0
}

func (s *Sequencer) ticksToMillis(ticks uint32) int64 {
	return int64(note.TicksToMillis(ticks, s.clip.BPM))
}

func (s *Sequencer) releaseActiveNotes() {
	for _, a := range s.activeNotes {
		s.bus.Publish(event.OriginSequencer, event.Event{
			Type:    event.TypeNoteOff,
			NoteOff: event.NoteOff{Channel: a.channel, MIDINote: a.midiNote},
		})
	}
	s.activeNotes = s.activeNotes[:0]
}

func (s *Sequencer) freeClip() {
	s.clip = note.Clip{}
	s.hasClip = false
}

// adjustStartMillis recomputes startMillis from nextNote so that pause,
// resume, a speed change, or installing a new clip can all be modeled as
// "recompute where virtual tick 0 would fall".
func (s *Sequencer) adjustStartMillis() {
	var tick uint32
	if s.nextNote != 0 && s.nextNote < len(s.clip.Notes) {
		tick = s.clip.Notes[s.nextNote].Start
	}
	oldElapsed := s.ticksToMillis(tick)
	newElapsed := (100 * oldElapsed) / int64(s.speedPercent)
	s.startMillis = s.now() - newElapsed
}

func (s *Sequencer) currentPlaybackMillis() int64 {
	elapsed := s.now() - s.startMillis
	return (elapsed * int64(s.speedPercent)) / 100
}

func (s *Sequencer) installClip(clip note.Clip) {
	if s.isClipPlaying() {
		s.releaseActiveNotes()
	}
	if s.hasClip {
		s.freeClip()
	}
	s.clip = clip
	s.hasClip = true
	s.nextNote = 0
	s.adjustStartMillis()
}

func (s *Sequencer) pause() {
	if s.isClipPlaying() {
		s.releaseActiveNotes()
	} else {
		// Hitting PAUSE twice is like STOP: the next RESUME restarts at
		// the beginning.
		s.nextNote = 0
	}
	s.startMillis = 0
}

func (s *Sequencer) stop() {
	if s.isClipPlaying() {
		s.releaseActiveNotes()
	}
	if s.hasClip {
		s.freeClip()
	}
	s.nextNote = 0
	s.startMillis = 0
}

func (s *Sequencer) resume() {
	if s.hasClip {
		s.adjustStartMillis()
	}
}

func (s *Sequencer) setTempo(bpm uint8) {
	s.clip.BPM = bpm
}

func (s *Sequencer) setLoop(on bool) {
	s.loop = on
}

func (s *Sequencer) setSpeed(percent uint8) {
	s.speedPercent = percent
	if s.isClipPlaying() {
		s.adjustStartMillis()
	}
}

func (s *Sequencer) playListAvailable() bool {
	return len(s.playList) > 0
}

func (s *Sequencer) popPlayList() note.Clip {
	clip := s.playList[0]
	s.playList = s.playList[1:]
	return clip
}

func (s *Sequencer) onPlay(p event.Play) {
	if p.Mode == event.PlayNow || !s.isClipPlaying() {
		s.installClip(p.Clip)
		return
	}
	if p.Mode == event.PlayStage {
		s.playList = nil
	}
	s.playList = append(s.playList, p.Clip)
}

// playNote fires PROGRAM_CHANGE (if needed) and NOTE_ON/NOTE_STATUS for n,
// reusing reuseIndex (an already-sounding slot for the same channel/note,
// or -1) rather than always allocating a fresh polyphony slot.
func (s *Sequencer) playNote(n note.Note, reuseIndex int) {
	if n.Program != s.programs[n.Channel] {
		s.bus.Publish(event.OriginEditor, event.Event{
			Type:          event.TypeProgramChange,
			ProgramChange: event.ProgramChange{Channel: n.Channel, Program: n.Program},
		})
		s.programs[n.Channel] = n.Program
	}

	slot := reuseIndex
	if slot != -1 {
		s.bus.Publish(event.OriginSequencer, event.Event{
			Type:    event.TypeNoteOff,
			NoteOff: event.NoteOff{Channel: n.Channel, MIDINote: n.MIDINote},
		})
	} else if len(s.activeNotes) < MaxPolyphony {
		slot = len(s.activeNotes)
		s.activeNotes = append(s.activeNotes, activeNote{})
	}

	if slot != -1 {
		s.bus.Publish(event.OriginSequencer, event.Event{
			Type:   event.TypeNoteOn,
			NoteOn: event.NoteOn{Channel: n.Channel, MIDINote: n.MIDINote, Velocity: n.Velocity},
		})
		s.activeNotes[slot] = activeNote{
			channel:   n.Channel,
			midiNote:  n.MIDINote,
			endMillis: s.ticksToMillis(n.Start) + s.ticksToMillis(uint32(n.Duration)),
		}
		s.bus.Publish(event.OriginSequencer, event.Event{
			Type:       event.TypeNoteStatus,
			NoteStatus: event.NoteStatus{Note: n},
		})
	} else {
		s.log.Warn("sequencer: maximum polyphony exceeded", "active", len(s.activeNotes))
	}
}

// processNotes advances playback by one step and returns the next wait
// duration: 0 to re-enter immediately, task.Forever to wait for the next
// event with no timeout, or a positive duration to wake at the next note
// boundary.
func (s *Sequencer) processNotes() time.Duration {
	playbackMillis := s.currentPlaybackMillis()

	var next *note.Note
	if s.nextNote < len(s.clip.Notes) {
		next = &s.clip.Notes[s.nextNote]
	}

	reuseIndex := -1
	var earliestOff *activeNote
	i := 0
	for i < len(s.activeNotes) {
		a := &s.activeNotes[i]
		if a.endMillis <= playbackMillis {
			s.bus.Publish(event.OriginSequencer, event.Event{
				Type:    event.TypeNoteOff,
				NoteOff: event.NoteOff{Channel: a.channel, MIDINote: a.midiNote},
			})
			last := len(s.activeNotes) - 1
			s.activeNotes[i] = s.activeNotes[last]
			s.activeNotes = s.activeNotes[:last]
			continue // don't advance i: a replacement note now sits here
		}
		if earliestOff == nil || a.endMillis < earliestOff.endMillis {
			earliestOff = a
		}
		if next != nil && next.Channel == a.channel && next.MIDINote == a.midiNote {
			reuseIndex = i
		}
		i++
	}

	if next != nil {
		startMillis := s.ticksToMillis(next.Start)
		if startMillis <= playbackMillis {
			s.playNote(*next, reuseIndex)
			s.nextNote++
			return 0
		}
		nextEvent := startMillis
		if earliestOff != nil && earliestOff.endMillis < startMillis {
			nextEvent = earliestOff.endMillis
		}
		return time.Duration(nextEvent-playbackMillis) * time.Millisecond
	}

	if earliestOff != nil {
		return time.Duration(earliestOff.endMillis-playbackMillis) * time.Millisecond
	}
	if s.loop {
		s.bus.Publish(event.OriginSequencer, event.Event{Type: event.TypeLoopDone})
		s.nextNote = 0
		s.resume()
		return 0
	}
	if s.playListAvailable() {
		s.installClip(s.popPlayList())
		return 0
	}
	s.nextNote = 0
	s.startMillis = 0
	s.bus.Publish(event.OriginSequencer, event.Event{Type: event.TypePlayDone})
	return task.Forever
}

func (s *Sequencer) handle(ev *event.Event) time.Duration {
	if ev != nil {
		switch ev.Type {
		case event.TypePlay:
			s.onPlay(ev.Play)
		case event.TypePause:
			s.pause()
		case event.TypeResume:
			s.resume()
		case event.TypeStop:
			s.stop()
		case event.TypeTempo:
			s.setTempo(ev.Tempo.BPM)
		case event.TypeLoop:
			s.setLoop(ev.Loop.On)
		case event.TypeSpeed:
			s.setSpeed(ev.Speed.Percent)
		}
	}

	wait := task.Forever
	if s.isClipPlaying() {
		wait = s.processNotes()
		if wait == task.Forever {
			s.bus.Publish(event.OriginSequencer, event.Event{Type: event.TypeIdle})
		}
	}
	return wait
}
