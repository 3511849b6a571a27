/*
NAME
  rle.go

DESCRIPTION
  rle.go implements the bounded run-length codec used inside the block
  differ for per-block fills. Runs are capped at MaxRun; a longer run is
  split across consecutive (count, value) pairs. This is a separate
  codec from the full-screen RLE strategy in package pack, which uses a
  255 end-marker and a 254 run cap instead — the two intentionally do
  not share an implementation.
*/

// Package rle implements a bounded run-length encoding used for per-block
// fills inside the animation packer.
package rle

import "github.com/pkg/errors"

// MaxRun is the largest count a single (count, value) pair can carry.
const MaxRun = 64

// ErrMalformed is returned by Decode when given an odd-length input.
var ErrMalformed = errors.New("rle: malformed encoded data")

// Encode run-length encodes data into a sequence of (count, value) byte
// pairs, each count in [1,MaxRun]. A run longer than MaxRun is split into
// consecutive pairs of the same value.
func Encode(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}

	out := make([]byte, 0, len(data))
	count := byte(1)
	current := data[0]

	flush := func() {
		out = append(out, count, current)
	}

	for _, v := range data[1:] {
		if v == current && count < MaxRun {
			count++
			continue
		}
		flush()
		count = 1
		current = v
	}
	flush()

	return out
}

// Decode is the inverse of Encode. It returns ErrMalformed if encoded has
// an odd length.
func Decode(encoded []byte) ([]byte, error) {
	if len(encoded)%2 != 0 {
		return nil, errors.Wrapf(ErrMalformed, "odd length %d", len(encoded))
	}

	var out []byte
	for i := 0; i < len(encoded); i += 2 {
		count, value := encoded[i], encoded[i+1]
		for j := byte(0); j < count; j++ {
			out = append(out, value)
		}
	}
	return out, nil
}
