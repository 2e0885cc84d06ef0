package synth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ysw/core/internal/bus"
	"github.com/ysw/core/internal/event"
	"github.com/ysw/core/internal/note"
	"github.com/ysw/core/internal/task"
)

// SampleType selects the PCM encoding Fill writes.
type SampleType uint8

const (
	SampleI16Signed SampleType = iota
	SampleI16Unsigned
)

// Config tunes the two open-question knobs carried over from the original
// implementation (see DESIGN.md): which fixed-point shift reads sample data
// relative to the Q21.11 position, and whether the asymmetric stereo
// crosstalk step runs. SampleReadShift defaults to the original's 10;
// StereoSeparation and Filter are off unless set to true.
type Config struct {
	Bus *bus.Bus

	// SampleReadShift is the right-shift applied to samplePos to index
	// into Sample.Data. The original uses 10, one less than the 11 used
	// for loop bookkeeping; set to 11 to use the "straight" Amiga/MOD
	// reading instead.
	SampleReadShift uint
	// StereoSeparation enables the crosstalk mixing step; set it to true
	// to match the original's stereo_separation=1. The zero value leaves
	// it off.
	StereoSeparation bool
	// Filter enables the one-pole average filter across consecutive
	// output frames. The zero value leaves it off.
	Filter bool

	Logger *slog.Logger
}

// Synth is a polyphonic wavetable sample mixer. The voice arrays and the
// (channel, midiNote)→voice lookup table are guarded by mu; the mixing loop
// (Fill) holds it for the duration of a buffer, event handlers hold it only
// for their O(1)-or-O(MaxVoices) critical section.
type Synth struct {
	mu sync.Mutex

	voices    [MaxVoices]voice
	voiceCount int
	voiceTime  uint64
	noteVoice  [note.MaxChannels][128]uint8

	channelPrograms [note.MaxChannels]uint8
	provider        SampleProvider

	sampleReadShift  uint
	stereoSeparation bool
	filter           bool

	lastLeft  int32
	lastRight int32

	worker *task.Worker
	bus    *bus.Bus
	log    *slog.Logger
}

// New creates a Synth backed by provider, wired to a worker subscribed to
// the EDITOR, SEQUENCER, SAMPLER, and SINK origins (matching the original
// mod synth task's subscriptions) plus COMMAND, for the STOP-resets-filter
// behavior documented in DESIGN.md.
func New(cfg Config, provider SampleProvider) *Synth {
	readShift := cfg.SampleReadShift
	if readShift == 0 {
		readShift = 10
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Synth{
		provider:         provider,
		sampleReadShift:  readShift,
		stereoSeparation: cfg.StereoSeparation,
		filter:           cfg.Filter,
		bus:              cfg.Bus,
		log:              log,
	}
	s.worker = task.New(task.Config{
		Name:    "synth",
		Bus:     cfg.Bus,
		Handler: s.handle,
	})
	s.worker.Subscribe(event.OriginEditor)
	s.worker.Subscribe(event.OriginSequencer)
	s.worker.Subscribe(event.OriginSampler)
	s.worker.Subscribe(event.OriginSink)
	s.worker.Subscribe(event.OriginCommand)
	return s
}

// Run executes the synth's worker loop until ctx is canceled.
func (s *Synth) Run(ctx context.Context) {
	s.worker.Run(ctx)
}

func (s *Synth) handle(ev *event.Event) time.Duration {
	if ev == nil {
		return task.Forever
	}
	switch ev.Type {
	case event.TypeNoteOn:
		s.onNoteOn(ev.NoteOn)
	case event.TypeNoteOff:
		s.onNoteOff(ev.NoteOff)
	case event.TypeProgramChange:
		s.onProgramChange(ev.ProgramChange)
	case event.TypeStop:
		s.mu.Lock()
		s.lastLeft, s.lastRight = 0, 0
		s.mu.Unlock()
	}
	return task.Forever
}

func (s *Synth) onNoteOn(n event.NoteOn) {
	program := s.channelPrograms[n.Channel]
	sample := s.provider.GetSample(program, n.MIDINote)
	if sample == nil {
		s.log.Debug("synth: no sample for note", "program", program, "midi_note", n.MIDINote)
		return
	}

	period := periodFor(n.MIDINote)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.allocateVoice(n.Channel, n.MIDINote)
	v := &s.voices[idx]
	v.sample = sample
	v.length = sample.Length
	v.loopPnt = sample.LoopStart
	if sample.LoopType != LoopNone {
		v.loopLen = sample.LoopEnd - sample.LoopStart
	} else {
		v.loopLen = 0
	}
	v.volume = n.Velocity / 2
	v.period = period
	v.sampleInc = sampleIncFor(period)
	v.samplePos = 0
	v.time = s.voiceTime
	s.voiceTime++
}

func (s *Synth) onNoteOff(n event.NoteOff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freeVoice(n.Channel, n.MIDINote)
}

func (s *Synth) onProgramChange(p event.ProgramChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelPrograms[p.Channel] = p.Program
}

// allocateVoice returns a voice slot for (channel, midiNote): an unused
// slot if one exists, otherwise the slot with the smallest time (the
// oldest allocation). Callers must hold mu.
func (s *Synth) allocateVoice(channel, midiNote uint8) int {
	var idx int
	if s.voiceCount < MaxVoices {
		idx = s.voiceCount
		s.voiceCount++
	} else {
		oldest := uint64(1<<64 - 1)
		for i := 0; i < s.voiceCount; i++ {
			if s.voices[i].time < oldest {
				oldest = s.voices[i].time
				idx = i
			}
		}
	}
	s.voices[idx].channel = channel
	s.voices[idx].midiNote = midiNote
	s.noteVoice[channel][midiNote] = uint8(idx)
	return idx
}

// freeVoice releases the voice bound to (channel, midiNote), if the binding
// is still current (stealing or an earlier release may have invalidated
// it). Callers must hold mu.
func (s *Synth) freeVoice(channel, midiNote uint8) {
	idx := s.noteVoice[channel][midiNote]
	v := &s.voices[idx]
	if v.period == 0 || v.channel != channel || v.midiNote != midiNote {
		return // stolen or already released; nothing to do
	}
	s.voiceCount--
	if int(idx) != s.voiceCount {
		s.voices[idx] = s.voices[s.voiceCount]
		moved := &s.voices[idx]
		s.noteVoice[moved.channel][moved.midiNote] = idx
	}
	s.voices[s.voiceCount].period = 0
}
