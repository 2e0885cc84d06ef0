package synth

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ysw/core/internal/bus"
	"github.com/ysw/core/internal/event"
)

func testSample() *Sample {
	data := make([]int8, 64)
	for i := range data {
		data[i] = int8(i - 32)
	}
	return &Sample{
		Data:      data,
		Length:    64,
		LoopStart: 0,
		LoopEnd:   64,
		LoopType:  LoopContinuous,
		Volume:    63,
		Pan:       PanCenter,
	}
}

func newTestSynth() *Synth {
	b := bus.New(bus.Config{})
	sample := testSample()
	provider := SampleProviderFunc(func(program, midiNote uint8) *Sample { return sample })
	return New(Config{Bus: b, StereoSeparation: true, Filter: true}, provider)
}

// P1: NOTE_ON for midi_note=m yields a voice with
// sample_inc = sampleTicksConst / period_table[m].
func TestP1SampleIncMatchesPeriodTable(t *testing.T) {
	s := newTestSynth()
	s.onNoteOn(event.NoteOn{Channel: 0, MIDINote: 40, Velocity: 100})

	if s.voiceCount != 1 {
		t.Fatalf("voiceCount = %d, want 1", s.voiceCount)
	}
	v := &s.voices[0]
	want := sampleIncFor(periodFor(40))
	if v.sampleInc != want {
		t.Errorf("sampleInc = %d, want %d", v.sampleInc, want)
	}
}

// P2: NOTE_OFF releases exactly one voice; a subsequent NOTE_ON may reuse
// the freed slot.
func TestP2NoteOffReleasesExactlyOneVoice(t *testing.T) {
	s := newTestSynth()
	s.onNoteOn(event.NoteOn{Channel: 0, MIDINote: 40, Velocity: 100})
	s.onNoteOn(event.NoteOn{Channel: 0, MIDINote: 50, Velocity: 100})
	if s.voiceCount != 2 {
		t.Fatalf("voiceCount = %d, want 2", s.voiceCount)
	}

	s.onNoteOff(event.NoteOff{Channel: 0, MIDINote: 40})
	if s.voiceCount != 1 {
		t.Fatalf("voiceCount after NOTE_OFF = %d, want 1", s.voiceCount)
	}

	s.onNoteOn(event.NoteOn{Channel: 0, MIDINote: 60, Velocity: 100})
	if s.voiceCount != 2 {
		t.Fatalf("voiceCount after reuse = %d, want 2", s.voiceCount)
	}
}

// P3: with no active voices, Fill outputs stereo 0 for the entire buffer.
func TestP3SilenceWithNoVoices(t *testing.T) {
	s := newTestSynth()
	buf := make([]int16, 200)
	n := s.Fill(buf, SampleI16Signed)
	if n != 100 {
		t.Fatalf("Fill returned %d frames, want 100", n)
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %d, want 0", i, v)
		}
	}
}

// Invariant 8: voice-allocation determinism — identical NOTE_ON sequences
// with no stealing pressure produce identical voice state.
func TestPropertyVoiceAllocationIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("identical NOTE_ON sequences yield identical voice assignments", prop.ForAll(
		func(notes []uint8) bool {
			run := func() []uint16 {
				s := newTestSynth()
				var periods []uint16
				for i, n := range notes {
					ch := uint8(i % 16)
					s.onNoteOn(event.NoteOn{Channel: ch, MIDINote: n % 128, Velocity: 100})
					periods = append(periods, s.voices[s.noteVoice[ch][n%128]].period)
				}
				return periods
			}
			a, b := run(), run()
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(20, gen.UInt8Range(0, 120)),
	))

	properties.TestingRun(t)
}

// Invariant 9: stealing policy — once voices exceed MaxVoices, the
// oldest-allocated voice is the one replaced.
func TestPropertyStealingPicksOldestVoice(t *testing.T) {
	s := newTestSynth()
	for i := 0; i < MaxVoices; i++ {
		s.onNoteOn(event.NoteOn{Channel: 0, MIDINote: uint8(i), Velocity: 100})
	}
	if s.voiceCount != MaxVoices {
		t.Fatalf("voiceCount = %d, want %d", s.voiceCount, MaxVoices)
	}

	// One more NOTE_ON must steal the voice allocated first (MIDINote 0).
	s.onNoteOn(event.NoteOn{Channel: 0, MIDINote: 200 % 128, Velocity: 100})
	if s.voiceCount != MaxVoices {
		t.Fatalf("voiceCount after stealing = %d, want %d (bounded)", s.voiceCount, MaxVoices)
	}
	for _, v := range s.voices[:s.voiceCount] {
		if v.channel == 0 && v.midiNote == 0 {
			t.Fatal("expected the oldest voice (midiNote=0) to have been stolen")
		}
	}
}

// Invariant 10: mixer clipping — every emitted sample stays in range after
// optional unsigned conversion.
func TestPropertyMixerClipping(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Fill never emits out-of-range samples", prop.ForAll(
		func(notes []uint8, unsigned bool) bool {
			s := newTestSynth()
			for i, n := range notes {
				s.onNoteOn(event.NoteOn{Channel: uint8(i % 16), MIDINote: n % 128, Velocity: 127})
			}
			buf := make([]int16, 64)
			sampleType := SampleI16Signed
			if unsigned {
				sampleType = SampleI16Unsigned
			}
			s.Fill(buf, sampleType)
			for _, v := range buf {
				if unsigned {
					if uint16(v) > 65535 {
						return false
					}
				}
				// int16 is always in [-32768, 32767] by construction; the
				// real assertion is that Fill doesn't panic on extremes.
				_ = v
			}
			return true
		},
		gen.SliceOfN(16, gen.UInt8Range(0, 120)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
