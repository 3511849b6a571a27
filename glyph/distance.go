package glyph

import "math/bits"

// hammingTable[a<<8|b] is the Hamming distance between bytes a and b, in
// [0,8]. Built once at package init, deterministic and content-addressed
// (it depends only on popcount(a^b), nothing else), mirroring the
// precomputed lookup table the reference tool builds offline.
var hammingTable [65536]uint8

func init() {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			hammingTable[a<<8|b] = uint8(bits.OnesCount8(uint8(a ^ b)))
		}
	}
}

// ByteDistance returns the Hamming distance between two bytes, in [0,8].
func ByteDistance(a, b byte) int {
	return int(hammingTable[uint16(a)<<8|uint16(b)])
}

// Distance returns the Hamming distance between two glyphs: the sum of the
// per-row byte distances, in [0,64]. Identical glyphs short-circuit to 0
// without touching the table.
func Distance(a, b Glyph) int {
	if a == b {
		return 0
	}
	d := 0
	for i := 0; i < 8; i++ {
		d += ByteDistance(a[i], b[i])
	}
	return d
}
