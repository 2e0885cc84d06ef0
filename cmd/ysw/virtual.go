package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ebitengine/oto/v3"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/ysw/core/internal/bus"
	"github.com/ysw/core/internal/event"
	"github.com/ysw/core/internal/synth"
)

var virtualDeviceName string

var virtualCmd = &cobra.Command{
	Use:   "virtual",
	Short: "Expose a virtual MIDI input device wired directly to the synth",
	Long: `Open a virtual MIDI input port that other software can connect to.
Incoming NOTE_ON/NOTE_OFF/PROGRAM_CHANGE messages are published straight to
the bus, bypassing the sequencer, which is for pre-recorded clips rather
than live input.`,
	RunE: runVirtual,
}

func init() {
	virtualCmd.Flags().StringVarP(&virtualDeviceName, "name", "n", "ysw Virtual Synth", "name for the virtual MIDI device")
	rootCmd.AddCommand(virtualCmd)
}

func runVirtual(cmd *cobra.Command, args []string) error {
	b := bus.New(bus.Config{Logger: slog.Default()})
	syn := synth.New(synth.Config{
		Bus:              b,
		StereoSeparation: true,
		Filter:           true,
		Logger:           slog.Default(),
	}, newSampleBank())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syn.Run(ctx)

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

	driver, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("opening MIDI driver: %w", err)
	}
	defer driver.Close()

	port, err := driver.OpenVirtualIn(virtualDeviceName)
	if err != nil {
		return fmt.Errorf("creating virtual MIDI port %q: %w", virtualDeviceName, err)
	}
	defer port.Close()

	stop, err := port.Listen(func(data []byte, timestampMs int32) {
		handleRawMIDI(b, data)
	}, drivers.ListenConfig{})
	if err != nil {
		return fmt.Errorf("listening on %q: %w", virtualDeviceName, err)
	}
	defer stop()

	slog.Info("virtual MIDI device ready", "name", virtualDeviceName, "port", port.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}

// handleRawMIDI translates a raw channel-voice MIDI message into the
// corresponding bus event, matching the MIDI status-byte encoding (high
// nibble = message type, low nibble = channel).
func handleRawMIDI(b *bus.Bus, data []byte) {
	if len(data) < 1 {
		return
	}
	status := data[0]
	msgType := status & 0xF0
	channel := status & 0x0F

	switch msgType {
	case 0x90: // note on (velocity 0 means note off, per the MIDI spec)
		if len(data) < 3 {
			return
		}
		key, velocity := data[1], data[2]
		if velocity > 0 {
			b.Publish(event.OriginSink, event.Event{
				Type:   event.TypeNoteOn,
				NoteOn: event.NoteOn{Channel: channel, MIDINote: key, Velocity: velocity},
			})
		} else {
			b.Publish(event.OriginSink, event.Event{
				Type:    event.TypeNoteOff,
				NoteOff: event.NoteOff{Channel: channel, MIDINote: key},
			})
		}
	case 0x80: // note off
		if len(data) < 3 {
			return
		}
		b.Publish(event.OriginSink, event.Event{
			Type:    event.TypeNoteOff,
			NoteOff: event.NoteOff{Channel: channel, MIDINote: data[1]},
		})
	case 0xC0: // program change
		if len(data) < 2 {
			return
		}
		b.Publish(event.OriginSink, event.Event{
			Type:          event.TypeProgramChange,
			ProgramChange: event.ProgramChange{Channel: channel, Program: data[1]},
		})
	}
}
