package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/ebitengine/oto/v3"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/ysw/core/internal/bus"
	"github.com/ysw/core/internal/event"
	"github.com/ysw/core/internal/note"
	"github.com/ysw/core/internal/sequencer"
	"github.com/ysw/core/internal/synth"
)

var playLoop bool

var playCmd = &cobra.Command{
	Use:   "play <file.mid>",
	Short: "Play a Standard MIDI File through the wavetable synth",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playLoop, "loop", false, "loop playback")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	clip, err := loadClip(args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	b := bus.New(bus.Config{Logger: slog.Default()})
	seq := sequencer.New(sequencer.Config{Bus: b, Logger: slog.Default()})
	syn := synth.New(synth.Config{
		Bus:              b,
		StereoSeparation: true,
		Filter:           true,
		Logger:           slog.Default(),
	}, newSampleBank())

	done := make(chan struct{})
	doneQueue := bus.NewQueue(4)
	b.Subscribe(event.OriginSequencer, doneQueue)
	defer b.DeleteQueue(doneQueue)
	go func() {
		for ev := range doneQueue.C() {
			if ev.Type == event.TypePlayDone || ev.Type == event.TypeIdle {
				close(done)
				return
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go seq.Run(ctx)
	go syn.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   synth.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(&synthReader{synth: syn})
	player.Play()
	defer player.Close()

	if playLoop {
		b.Publish(event.OriginCommand, event.Event{Type: event.TypeLoop, Loop: event.Loop{On: true}})
	}
	b.Publish(event.OriginCommand, event.Event{
		Type: event.TypePlay,
		Play: event.Play{Clip: clip, Mode: event.PlayNow},
	})

	select {
	case <-done:
	case <-sigCh:
	}
	return nil
}

// synthReader adapts synth.Synth.Fill to io.Reader for oto.
type synthReader struct {
	synth *synth.Synth
}

func (r *synthReader) Read(buf []byte) (int, error) {
	frames := len(buf) / 4 // 2 channels * 2 bytes
	samples := make([]int16, frames*2)
	r.synth.Fill(samples, synth.SampleI16Signed)
	for i, s := range samples {
		buf[2*i] = byte(s)
		buf[2*i+1] = byte(s >> 8)
	}
	return frames * 4, nil
}

// loadClip parses a Standard MIDI File into a note.Clip, rescaling its
// ticks-per-quarter-note resolution to the sequencer's fixed
// note.TicksPerQuarter.
func loadClip(path string) (note.Clip, error) {
	rd, err := smf.ReadFile(path)
	if err != nil {
		return note.Clip{}, err
	}

	bpm := uint8(120)
	if tempos := rd.TempoChanges(); len(tempos) > 0 {
		bpm = uint8(tempos[0].BPM)
	}

	metric, ok := rd.TimeFormat.(smf.MetricTicks)
	fileTicksPerQuarter := uint32(960)
	if ok {
		fileTicksPerQuarter = uint32(metric.Resolution())
	}

	var notes []note.Note
	activeOn := map[[2]uint8]uint32{} // (channel, key) -> start tick, rescaled
	programs := [16]uint8{}

	closeNote := func(channel, key uint8, rescaled uint32) {
		start, ok := activeOn[[2]uint8{channel, key}]
		if !ok {
			return
		}
		delete(activeOn, [2]uint8{channel, key})
		duration := rescaled - start
		if duration == 0 {
			duration = 1
		}
		notes = append(notes, note.Note{
			Start:    start,
			Duration: uint16(duration),
			Channel:  channel,
			MIDINote: key,
			Velocity: 100,
			Program:  programs[channel],
		})
	}

	for _, track := range rd.Tracks {
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			rescaled := rescaleTicks(tick, fileTicksPerQuarter)

			var channel, key, velocity, program uint8
			switch {
			case ev.Message.GetNoteOn(&channel, &key, &velocity):
				if velocity > 0 {
					activeOn[[2]uint8{channel, key}] = rescaled
				} else {
					closeNote(channel, key, rescaled)
				}
			case ev.Message.GetNoteOff(&channel, &key, &velocity):
				closeNote(channel, key, rescaled)
			case ev.Message.GetProgramChange(&channel, &program):
				programs[channel] = program
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Start < notes[j].Start })
	return note.Clip{Notes: notes, BPM: bpm}, nil
}

// rescaleTicks converts a tick value expressed in the file's resolution to
// the sequencer's fixed TicksPerQuarter resolution.
func rescaleTicks(tick, fileTicksPerQuarter uint32) uint32 {
	if fileTicksPerQuarter == 0 {
		return tick
	}
	return tick * note.TicksPerQuarter / fileTicksPerQuarter
}
