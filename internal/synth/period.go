package synth

// periodTable maps a MIDI note to an Amiga-tradition integer period. Index
// directly by MIDI note (0..127); the table's last row runs four entries
// past MIDI note 127, matching the original's literal table.
var periodTable = [...]uint16{
	/*  0 */ 13696, 12928, 12192, 11520, 10848, 10240, 9664, 9120, 8606, 8128, 7680, 7248,
	/*  1 */ 6848, 6464, 6096, 5760, 5424, 5120, 4832, 4560, 4304, 4064, 3840, 3624,
	/*  2 */ 3424, 3232, 3048, 2880, 2712, 2560, 2416, 2280, 2152, 2032, 1920, 1812,
	/*  3 */ 1712, 1616, 1524, 1440, 1356, 1280, 1208, 1140, 1076, 1016, 960, 906,
	/*  4 */ 856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480, 453,
	/*  5 */ 428, 404, 381, 360, 339, 320, 302, 285, 269, 254, 240, 226,
	/*  6 */ 214, 202, 190, 180, 170, 160, 151, 143, 135, 127, 120, 113,
	/*  7 */ 107, 101, 95, 90, 85, 80, 75, 71, 67, 63, 60, 56,
	/*  8 */ 53, 50, 47, 45, 42, 40, 37, 35, 33, 31, 30, 28,
	/*  9 */ 27, 25, 24, 22, 21, 20, 19, 18, 17, 16, 15, 14,
	/* 10 */ 13, 13, 12, 11, 11, 10, 9, 9, 8, 8, 7, 7,
}

// sampleTicksConst is derived once from SampleRate, matching the original's
// ((3_546_894 * 16) / playrate) << 6.
const sampleTicksConst = ((3_546_894 * 16) / SampleRate) << 6

// periodFor returns the table period for midiNote, or 0 if out of range
// (the period table's defined domain).
func periodFor(midiNote uint8) uint16 {
	if int(midiNote) >= len(periodTable) {
		return 0
	}
	return periodTable[midiNote]
}

// sampleIncFor derives the per-frame fixed-point position increment for a
// note from its period: sample_inc = sampleTicksConst / period.
func sampleIncFor(period uint16) uint32 {
	if period == 0 {
		return 0
	}
	return sampleTicksConst / uint32(period)
}
