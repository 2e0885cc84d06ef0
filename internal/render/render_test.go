package render

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ysw/core/internal/note"
)

func TestRenderMelodyAdvancesStart(t *testing.T) {
	notes := RenderMelody(Melody{
		Pitches:   []uint8{60, 62, 64},
		Durations: []uint16{10, 20, 30},
		Start:     100,
	}, 0, 5)

	if len(notes) != 3 {
		t.Fatalf("got %d notes, want 3", len(notes))
	}
	wantStarts := []uint32{100, 110, 130}
	for i, n := range notes {
		if n.Start != wantStarts[i] {
			t.Errorf("note %d: Start = %d, want %d", i, n.Start, wantStarts[i])
		}
		if n.Program != 5 {
			t.Errorf("note %d: Program = %d, want 5", i, n.Program)
		}
	}
}

func TestRenderChordSharesStart(t *testing.T) {
	notes := RenderChord(Chord{Pitches: []uint8{60, 64, 67}, Start: 50, Duration: 20}, 2, 0)
	if len(notes) != 3 {
		t.Fatalf("got %d notes, want 3", len(notes))
	}
	for _, n := range notes {
		if n.Start != 50 || n.Duration != 20 || n.Channel != 2 {
			t.Errorf("note %+v does not match chord start/duration/channel", n)
		}
	}
	seen := map[uint8]bool{}
	for _, n := range notes {
		if seen[n.MIDINote] {
			t.Errorf("duplicate MIDINote %d in chord", n.MIDINote)
		}
		seen[n.MIDINote] = true
	}
}

func TestRenderRhythmSkipsInactiveSteps(t *testing.T) {
	notes := RenderRhythm(Rhythm{
		Steps:     []bool{true, false, true, false},
		Note:      36,
		Start:     0,
		StepTicks: 25,
	}, 9, 0)

	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if notes[0].Start != 0 || notes[1].Start != 50 {
		t.Errorf("unexpected starts: %+v", notes)
	}
}

// Property 1: RenderComposition always yields a Start-sorted timeline,
// regardless of how many parts are concatenated or in what order.
func TestPropertyRenderCompositionIsSorted(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("RenderComposition output is Start-sorted", prop.ForAll(
		func(starts [][]uint32) bool {
			var parts []note.Clip
			for _, partStarts := range starts {
				var notes []note.Note
				for _, s := range partStarts {
					notes = append(notes, note.Note{Start: s})
				}
				parts = append(parts, note.Clip{Notes: notes})
			}
			clip := RenderComposition(Section{Parts: parts, BPM: 100})
			return sort.SliceIsSorted(clip.Notes, func(i, j int) bool {
				return clip.Notes[i].Start < clip.Notes[j].Start
			})
		},
		gen.SliceOf(gen.SliceOf(gen.UInt32Range(0, 10000))),
	))

	properties.TestingRun(t)
}
