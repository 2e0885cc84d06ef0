package main

import (
	"math"

	"github.com/ysw/core/internal/synth"
)

// waveformLength is the number of frames in one procedurally generated
// cycle; the synth's period-driven resampling takes care of pitch, so a
// short looping cycle is all a sample needs to represent a waveform.
const waveformLength = 256

// newSampleBank builds a synth.SampleProvider over four procedurally
// generated waveforms, chosen by program number modulo four, since no
// persistent sample-bank file format is specified (see SPEC_FULL.md §6). Samples
// are loop-continuous over their full length, pan-center, at the
// synthesizer's nominal volume.
func newSampleBank() synth.SampleProvider {
	waveforms := []func(int) int8{sineWave, squareWave, sawWave, triangleWave}
	samples := make([]*synth.Sample, len(waveforms))
	for i, wave := range waveforms {
		data := make([]int8, waveformLength)
		for n := range data {
			data[n] = wave(n)
		}
		samples[i] = &synth.Sample{
			Data:      data,
			Length:    waveformLength,
			LoopStart: 0,
			LoopEnd:   waveformLength,
			LoopType:  synth.LoopContinuous,
			Volume:    63,
			Pan:       synth.PanCenter,
		}
	}

	return synth.SampleProviderFunc(func(program, midiNote uint8) *synth.Sample {
		idx := int(program) % len(samples)
		return samples[idx]
	})
}

func sineWave(n int) int8 {
	phase := 2 * math.Pi * float64(n) / float64(waveformLength)
	return int8(127 * math.Sin(phase))
}

func squareWave(n int) int8 {
	if n < waveformLength/2 {
		return 100
	}
	return -100
}

func sawWave(n int) int8 {
	return int8(127*2*float64(n)/float64(waveformLength) - 127)
}

func triangleWave(n int) int8 {
	half := waveformLength / 2
	if n < half {
		return int8(127*2*float64(n)/float64(half) - 127)
	}
	return int8(127 - 127*2*float64(n-half)/float64(half))
}
