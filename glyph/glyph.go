/*
NAME
  glyph.go

DESCRIPTION
  glyph.go defines the 8x8 monochrome glyph value type and the Hamming
  distance primitives used by the charset reducer and the closest-glyph
  fallback.
*/

// Package glyph provides the immutable 8x8 monochrome character value type
// shared by the charset reducer, the screen ingestion adapters and the
// packer.
package glyph

// Glyph is an immutable 8x8 monochrome bit-pattern: 8 rows, one byte per
// row, MSB-first within a row. Equality is bit-identity; fuzzy equality
// (Hamming distance <= t) is never implemented on Glyph itself, it is an
// explicit mode passed by callers in package charset.
type Glyph [8]byte

// BLANK is the all-zero glyph.
var BLANK = Glyph{}

// FULL is the all-one glyph.
var FULL = Glyph{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// IsBlank reports whether g is the BLANK glyph.
func (g Glyph) IsBlank() bool { return g == BLANK }

// Bytes returns the 8 row bytes of g, row-major, MSB-first, matching the
// on-disk charset persistence grammar (no header).
func (g Glyph) Bytes() [8]byte { return g }

// FromBytes builds a Glyph from 8 row bytes.
func FromBytes(b [8]byte) Glyph { return Glyph(b) }
