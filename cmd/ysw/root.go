// Command ysw is a demonstration CLI for the embedded music workstation
// core: it plays Standard MIDI Files through the wavetable synth, exposes a
// virtual MIDI input for live playing, and offers a terminal status
// monitor, all driven by the same internal bus.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ysw",
	Short: "Embedded music workstation core, as a CLI",
	Long: `ysw plays back Standard MIDI Files and live MIDI input through a
polyphonic wavetable synthesizer built around a publish/subscribe event bus,
the same architecture an embedded music workstation's UI, sequencer, and
synth tasks communicate over.`,
}

// Execute runs the root command (subcommands register themselves in their
// init functions) and exits with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
