package synth

// voice is one sounding instance of a sample. A voice is free iff period
// is zero.
type voice struct {
	sample    *Sample
	samplePos uint32 // Q21.11 fixed-point position into sample.Data
	sampleInc uint32 // per-frame position advance
	period    uint16
	time      uint64 // allocation order, for LRU stealing
	volume    uint8  // velocity/2
	channel   uint8
	midiNote  uint8

	length  uint32 // frames; degrades to 0 at end of a non-looping sample
	loopPnt uint32 // reppnt: loop start, in frames
	loopLen uint32 // replen: loop length in frames; <2 means "no loop"
}
