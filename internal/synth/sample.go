// Package synth implements a polyphonic wavetable (MOD-style) synthesizer:
// up to MaxVoices concurrent sample-playback voices, mixed into stereo
// 16-bit PCM on demand.
package synth

// MaxVoices bounds the number of simultaneously sounding voices.
const MaxVoices = 32

// SampleRate is the nominal fixed output sample rate in Hz.
const SampleRate = 44100

// Pan selects which output channel(s) a sample's voice is mixed into.
type Pan uint8

const (
	PanLeft Pan = iota
	PanCenter
	PanRight
)

// LoopType selects how a sample wraps at its loop boundary. THROUGH and
// CONTINUOUS share one wrap code path in this envelope-less synth — see
// DESIGN.md for why the original's four-way distinction collapses to two
// here.
type LoopType uint8

const (
	LoopNone LoopType = iota
	LoopContinuous
	LoopThrough
)

// Sample is a borrowed, read-only mono PCM descriptor. The synth never
// copies or frees Data; the SampleProvider that returns it owns the memory
// and must keep it alive for the synth's lifetime.
type Sample struct {
	Data        []int8 // mono 8-bit signed PCM frames
	Length      uint32 // frames
	LoopStart   uint32 // frames
	LoopEnd     uint32 // frames; LoopType != LoopNone implies LoopEnd > LoopStart
	LoopType    LoopType
	Volume      uint8 // 0..63
	Pan         Pan
	RootKey     int16 // MIDI note at which the sample plays at original pitch
	FineTune    int16 // cents
	Attenuation int16
}

// SampleProvider resolves a (program, midiNote) pair to the sample that
// should sound. It must be total over program, midiNote ∈ [0,128); an
// unrecognized input may fall back to program 0. Samples returned must
// remain valid for the process lifetime.
type SampleProvider interface {
	GetSample(program, midiNote uint8) *Sample
}

// SampleProviderFunc adapts a function to SampleProvider.
type SampleProviderFunc func(program, midiNote uint8) *Sample

// GetSample implements SampleProvider.
func (f SampleProviderFunc) GetSample(program, midiNote uint8) *Sample {
	return f(program, midiNote)
}
