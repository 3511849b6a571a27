/*
NAME
  screen.go

DESCRIPTION
  screen.go defines the Screen and Sequence types that the core pipeline
  is built around: a screen-code grid, a color grid, a reference to the
  charset it was built from (by small integer id, per the arena
  re-architecture note), and optional border/background state.
*/

// Package screen defines the Screen/Sequence data model and the external
// ingestion adapters (frame dump, petmate JSON, raster) that populate it.
// The core pipeline (charset reduction, packing, validation) is agnostic
// to which adapter produced a Sequence.
package screen

import "github.com/muhmi/c64anim/glyph"

// Cells is the fixed number of character cells in a screen (40x25).
const Cells = 1000

// NoCharset is the CharsetID sentinel meaning "not yet assigned".
const NoCharset = -1

// Screen is one frame: a 1000-byte screen-code grid, a parallel 1000-byte
// color grid, a reference (by id) to the charset it indexes into, and
// optional border/background color.
type Screen struct {
	Index int

	ScreenCodes [Cells]byte
	ColorData   [Cells]byte

	// CharsetID indexes into the caller-owned charset arena. NoCharset
	// means the screen has not yet been assigned a charset.
	CharsetID int

	Border     *byte
	Background *byte

	// InitialGlyphs is the screen's own per-frame charset as produced by
	// ingestion, before the global charset reducer (package charset) has
	// run. It is consulted only by the reducer's phase A and is nil once
	// reduction completes (the screen then only carries CharsetID).
	InitialGlyphs []glyph.Glyph
}

// NewScreen returns an empty Screen with no charset assigned.
func NewScreen(index int) *Screen {
	return &Screen{Index: index, CharsetID: NoCharset}
}

// Sequence is an ordered list of Screens.
type Sequence []*Screen

// PrevCodes returns the screen-code grid of the previous screen in the
// sequence, or all-zero for the first frame (spec.md §4.7: "the previous
// screen for frame 0 is a 1000-byte all-zero array").
func (s Sequence) PrevCodes(i int) [Cells]byte {
	if i == 0 {
		return [Cells]byte{}
	}
	return s[i-1].ScreenCodes
}

// PrevColors returns the color grid of the previous screen in the
// sequence, or all-zero for the first frame.
func (s Sequence) PrevColors(i int) [Cells]byte {
	if i == 0 {
		return [Cells]byte{}
	}
	return s[i-1].ColorData
}
