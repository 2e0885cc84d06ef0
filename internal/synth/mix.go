package synth

// Fill writes stereo 16-bit frames into buf (interleaved L,R) until buf is
// exhausted, and returns the number of frames written (always len(buf)/2).
// It advances every active voice's sample position, mixes them, and applies
// the filter and stereo-separation steps — bit-for-bit as the original
// ysw_mod_generate_samples, including its quirks (see DESIGN.md):
//
//   - A non-looping voice that reaches the end of its sample does not free
//     itself; length/reppnt/samppos reset to 0 and it keeps "playing"
//     sample.Data[0] at volume until explicitly stopped.
//   - The stereo-separation step feeds the just-updated left into right's
//     computation, not the pre-update value — an asymmetric crosstalk.
//   - last_left/last_right for the next call are the pre-filter,
//     int16-truncated sums, not the post-filter values.
func (s *Synth) Fill(buf []int16, sampleType SampleType) int {
	frames := len(buf) / 2

	s.mu.Lock()
	defer s.mu.Unlock()

	lastLeft := s.lastLeft
	lastRight := s.lastRight

	for i := 0; i < frames; i++ {
		var left, right int32

		for j := 0; j < s.voiceCount; j++ {
			v := &s.voices[j]
			if v.period == 0 {
				continue
			}

			v.samplePos += v.sampleInc

			if v.loopLen < 2 {
				if (v.samplePos >> 11) >= v.length {
					v.length = 0
					v.loopPnt = 0
					v.samplePos = 0
				}
			} else {
				span := v.loopLen + v.loopPnt
				if (v.samplePos >> 11) >= span {
					v.samplePos = (v.loopPnt << 11) + v.samplePos%(span<<11)
				}
			}

			k := v.samplePos >> s.sampleReadShift
			if int(k) >= len(v.sample.Data) {
				continue // defensive: original's C has no bounds check here
			}
			sample := int32(v.sample.Data[k]) * int32(v.volume)

			switch v.sample.Pan {
			case PanLeft:
				left += sample
			case PanRight:
				right += sample
			default:
				left += sample
				right += sample
			}
		}

		tempLeft := int32(int16(left))
		tempRight := int32(int16(right))

		if s.filter {
			left = (left + lastLeft) >> 1
			right = (right + lastRight) >> 1
		}

		if s.stereoSeparation {
			left = left + (right >> 1)
			right = right + (left >> 1)
		}

		left = clipInt16(left)
		right = clipInt16(right)

		if sampleType == SampleI16Unsigned {
			left += 32768
			right += 32768
		}

		buf[2*i] = int16(uint16(left))
		buf[2*i+1] = int16(uint16(right))

		lastLeft = tempLeft
		lastRight = tempRight
	}

	s.lastLeft = lastLeft
	s.lastRight = lastRight

	return frames
}

func clipInt16(v int32) int32 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}
