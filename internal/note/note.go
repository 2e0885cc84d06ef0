// Package note defines the sequencer's input element and the clip it
// travels in.
package note

import "sort"

// TicksPerQuarter is the sequencer's fixed tick base; rendering helpers and
// the sequencer must agree on it.
const TicksPerQuarter = 100

// StatusChannel is reserved for notes that must be surfaced as NOTE_STATUS
// without being sounded by the synth.
const StatusChannel = 15

// MaxChannels is the number of MIDI channels a program table is indexed by.
const MaxChannels = 16

// Note is one element of a Clip's timeline. Start values across a Clip's
// Notes must be sorted non-decreasing.
type Note struct {
	Start    uint32 // ticks from timeline origin
	Duration uint16 // ticks; 0 is valid only for status-only notes
	Channel  uint8  // 0..15
	MIDINote uint8  // 0..127
	Velocity uint8  // 0..127
	Program  uint8  // 0..127
}

// Clip is a timeline of notes at a fixed tempo. While playing, the
// sequencer owns Notes.
type Clip struct {
	Notes []Note
	BPM   uint8
}

// TicksToMillis converts a tick count to milliseconds at the given bpm,
// using the fixed TicksPerQuarter base: ms = ticks * 60000 / (bpm * tpqn).
func TicksToMillis(ticks uint32, bpm uint8) uint32 {
	if bpm == 0 {
		return 0
	}
	return (ticks * 60000) / (uint32(bpm) * TicksPerQuarter)
}

// SortByStart stable-sorts notes by Start ascending, satisfying the
// sequencer's sort-order input invariant.
func SortByStart(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Start < notes[j].Start
	})
}
