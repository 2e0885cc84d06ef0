// Package render converts domain objects (melody, chord, rhythm, section)
// into the sorted note.Clip timelines the sequencer consumes. It holds no
// state and performs no I/O.
package render

import (
	"github.com/ysw/core/internal/note"
)

// Melody is a sequence of pitches played one after another, each held for
// its corresponding duration.
type Melody struct {
	Pitches   []uint8
	Durations []uint16
	Start     uint32
}

// RenderMelody appends one note per pitch, advancing start by each note's
// duration so notes never overlap. len(m.Durations) must equal
// len(m.Pitches); a short Durations slice reuses its last entry.
func RenderMelody(m Melody, channel, program uint8) []note.Note {
	notes := make([]note.Note, 0, len(m.Pitches))
	start := m.Start
	for i, pitch := range m.Pitches {
		duration := lastOr(m.Durations, i)
		notes = append(notes, note.Note{
			Start:    start,
			Duration: duration,
			Channel:  channel,
			MIDINote: pitch,
			Velocity: defaultVelocity,
			Program:  program,
		})
		start += uint32(duration)
	}
	return notes
}

// Chord is a set of pitches that sound together.
type Chord struct {
	Pitches  []uint8
	Start    uint32
	Duration uint16
}

// RenderChord appends one simultaneous note per pitch, all sharing Start
// and Duration. Distinct pitches on the same channel never collide as
// active-note slots, satisfying the non-overlap invariant trivially.
func RenderChord(c Chord, channel, program uint8) []note.Note {
	notes := make([]note.Note, 0, len(c.Pitches))
	for _, pitch := range c.Pitches {
		notes = append(notes, note.Note{
			Start:    c.Start,
			Duration: c.Duration,
			Channel:  channel,
			MIDINote: pitch,
			Velocity: defaultVelocity,
			Program:  program,
		})
	}
	return notes
}

// Rhythm is a step grid: one note fires for each true entry in Steps, every
// StepTicks ticks apart, starting at Start.
type Rhythm struct {
	Steps     []bool
	Note      uint8
	Start     uint32
	StepTicks uint16
}

// RenderRhythm appends one note per active step.
func RenderRhythm(r Rhythm, channel, program uint8) []note.Note {
	notes := make([]note.Note, 0, len(r.Steps))
	for i, on := range r.Steps {
		if !on {
			continue
		}
		notes = append(notes, note.Note{
			Start:    r.Start + uint32(i)*uint32(r.StepTicks),
			Duration: r.StepTicks,
			Channel:  channel,
			MIDINote: r.Note,
			Velocity: defaultVelocity,
			Program:  program,
		})
	}
	return notes
}

// Section is a collection of already-rendered parts (e.g. one per
// instrument channel) to be combined into a single clip.
type Section struct {
	Parts []note.Clip
	BPM   uint8
}

// RenderComposition concatenates every part's notes and stable-sorts the
// result by start tick, so notes from different parts interleave correctly
// regardless of render order.
func RenderComposition(s Section) note.Clip {
	var notes []note.Note
	for _, part := range s.Parts {
		notes = append(notes, part.Notes...)
	}
	note.SortByStart(notes)
	return note.Clip{Notes: notes, BPM: s.BPM}
}

const defaultVelocity = 100

func lastOr(durations []uint16, i int) uint16 {
	if i < len(durations) {
		return durations[i]
	}
	if len(durations) == 0 {
		return 0
	}
	return durations[len(durations)-1]
}
