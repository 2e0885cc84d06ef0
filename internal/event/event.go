// Package event defines the fixed-record event types that flow across the
// bus: a small closed set of origins and payloads shared by the sequencer,
// the synth, and their collaborators.
package event

import "github.com/ysw/core/internal/note"

// Origin is the small closed set of publishers a Bus routes by.
type Origin uint8

const (
	OriginCommand Origin = iota
	OriginKeyboard
	OriginEditor
	OriginSequencer
	OriginNote
	OriginSampler
	OriginChooser
	OriginSoftkey
	OriginSink
	originCount // sentinel, not a real origin
)

// Count is the number of real origins; callers size per-origin tables with it.
const Count = int(originCount)

func (o Origin) String() string {
	switch o {
	case OriginCommand:
		return "COMMAND"
	case OriginKeyboard:
		return "KEYBOARD"
	case OriginEditor:
		return "EDITOR"
	case OriginSequencer:
		return "SEQUENCER"
	case OriginNote:
		return "NOTE"
	case OriginSampler:
		return "SAMPLER"
	case OriginChooser:
		return "CHOOSER"
	case OriginSoftkey:
		return "SOFTKEY"
	case OriginSink:
		return "SINK"
	default:
		return "UNKNOWN"
	}
}

// Type tags which payload field of Event is populated.
type Type uint8

const (
	TypePlay Type = iota
	TypePause
	TypeResume
	TypeStop
	TypeTempo
	TypeLoop
	TypeSpeed
	TypeNoteOn
	TypeNoteOff
	TypeProgramChange
	TypeNoteStatus
	TypeLoopDone
	TypePlayDone
	TypeIdle
	TypeKeyDown
	TypeKeyPressed
	TypeKeyUp
)

func (t Type) String() string {
	switch t {
	case TypePlay:
		return "PLAY"
	case TypePause:
		return "PAUSE"
	case TypeResume:
		return "RESUME"
	case TypeStop:
		return "STOP"
	case TypeTempo:
		return "TEMPO"
	case TypeLoop:
		return "LOOP"
	case TypeSpeed:
		return "SPEED"
	case TypeNoteOn:
		return "NOTE_ON"
	case TypeNoteOff:
		return "NOTE_OFF"
	case TypeProgramChange:
		return "PROGRAM_CHANGE"
	case TypeNoteStatus:
		return "NOTE_STATUS"
	case TypeLoopDone:
		return "LOOP_DONE"
	case TypePlayDone:
		return "PLAY_DONE"
	case TypeIdle:
		return "IDLE"
	case TypeKeyDown:
		return "KEY_DOWN"
	case TypeKeyPressed:
		return "KEY_PRESSED"
	case TypeKeyUp:
		return "KEY_UP"
	default:
		return "UNKNOWN"
	}
}

// PlayMode selects how a PLAY event's clip interacts with what is already
// playing and with the pending play list.
type PlayMode uint8

const (
	PlayNow   PlayMode = iota // replace whatever is playing
	PlayStage                 // clear the pending play list and append
	PlayQueue                 // append to the pending play list
)

// Play carries a clip to play and how it should be scheduled.
type Play struct {
	Clip note.Clip
	Mode PlayMode
}

// Tempo changes the bpm of the clip currently playing.
type Tempo struct {
	BPM uint8
}

// Loop toggles whether the sequencer replays the clip when it ends; a
// looping clip emits LOOP_DONE at each end instead of PLAY_DONE.
type Loop struct {
	On bool
}

// Speed scales playback wall-clock speed, 100 == normal.
type Speed struct {
	Percent uint8
}

// NoteOn requests a voice for (Channel, MIDINote) at Velocity.
type NoteOn struct {
	Channel  uint8
	MIDINote uint8
	Velocity uint8
}

// NoteOff releases the voice for (Channel, MIDINote).
type NoteOff struct {
	Channel  uint8
	MIDINote uint8
}

// ProgramChange selects the timbre a channel's subsequent notes will use.
type ProgramChange struct {
	Channel uint8
	Program uint8
}

// NoteStatus mirrors a played note to the bus for UI-side playback tracking.
type NoteStatus struct {
	Note note.Note
}

// KeyDown fires on the first raw press of a scan code.
type KeyDown struct {
	ScanCode uint8
	Time     uint64
}

// KeyPressed fires on auto-repeat, or synthetically once on release if no
// repeat threshold was crossed, so every logical tap yields exactly one.
type KeyPressed struct {
	ScanCode    uint8
	Time        uint64
	Duration    uint64
	RepeatCount uint32
}

// KeyUp fires on release.
type KeyUp struct {
	ScanCode    uint8
	Time        uint64
	Duration    uint64
	RepeatCount uint32
}

// Event is a tagged union: Origin and Type identify which payload field, if
// any, is populated. LOOP_DONE/PLAY_DONE/IDLE/PAUSE/RESUME/STOP carry no
// payload at all.
type Event struct {
	Origin Origin
	Type   Type

	Play          Play
	Tempo         Tempo
	Loop          Loop
	Speed         Speed
	NoteOn        NoteOn
	NoteOff       NoteOff
	ProgramChange ProgramChange
	NoteStatus    NoteStatus
	KeyDown       KeyDown
	KeyPressed    KeyPressed
	KeyUp         KeyUp
}
