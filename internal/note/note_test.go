package note

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestTicksToMillisZeroBPM(t *testing.T) {
	if got := TicksToMillis(1000, 0); got != 0 {
		t.Errorf("TicksToMillis(1000, 0) = %d, want 0", got)
	}
}

func TestTicksToMillisKnownValue(t *testing.T) {
	// At 120 BPM, one quarter note (100 ticks) is 500ms.
	got := TicksToMillis(TicksPerQuarter, 120)
	if got != 500 {
		t.Errorf("TicksToMillis(%d, 120) = %d, want 500", TicksPerQuarter, got)
	}
}

// Property: SortByStart always leaves a slice sorted non-decreasing by
// Start, regardless of input order.
func TestPropertySortByStartIsSorted(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("SortByStart leaves Start non-decreasing", prop.ForAll(
		func(starts []uint32) bool {
			notes := make([]Note, len(starts))
			for i, s := range starts {
				notes[i] = Note{Start: s}
			}
			SortByStart(notes)
			return sort.SliceIsSorted(notes, func(i, j int) bool {
				return notes[i].Start < notes[j].Start
			})
		},
		gen.SliceOf(gen.UInt32Range(0, 100000)),
	))

	properties.TestingRun(t)
}

// Property: SortByStart is stable — notes sharing a Start keep their
// relative order.
func TestPropertySortByStartIsStable(t *testing.T) {
	notes := []Note{
		{Start: 5, MIDINote: 1},
		{Start: 5, MIDINote: 2},
		{Start: 5, MIDINote: 3},
		{Start: 1, MIDINote: 4},
	}
	SortByStart(notes)
	want := []uint8{4, 1, 2, 3}
	for i, n := range notes {
		if n.MIDINote != want[i] {
			t.Fatalf("index %d: got MIDINote %d, want %d", i, n.MIDINote, want[i])
		}
	}
}
