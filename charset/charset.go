/*
NAME
  charset.go

DESCRIPTION
  charset.go defines the Charset value (an ordered list of up to 256
  glyphs) and the small-int-id arena that screens reference charsets
  through, per the "charset sharing by reference" re-architecture note:
  charsets are interned and addressed by id so ownership stays
  unambiguous and copies stay cheap.
*/

// Package charset implements the charset reducer: mapping the glyphs
// drawn from every input frame into a small number of 256-entry charsets,
// with exact deduplication (phase A) and a similarity-driven fallback
// when the configured charset limit forces merging (phase B).
package charset

import (
	"github.com/pkg/errors"

	"github.com/muhmi/c64anim/glyph"
)

// MaxSize is the largest number of glyphs a single charset may hold.
const MaxSize = 256

// ErrTooManyGlyphs is returned when constructing a Charset with more than
// MaxSize glyphs.
var ErrTooManyGlyphs = errors.New("charset: too many glyphs")

// Charset is an ordered, immutable-once-built sequence of up to 256
// glyphs. The index of a glyph inside its charset is the byte written
// into a screen cell.
type Charset struct {
	ID     int
	Glyphs []glyph.Glyph

	index map[glyph.Glyph]int
}

// New builds a Charset from an ordered glyph slice, assigning it id.
func New(id int, glyphs []glyph.Glyph) (*Charset, error) {
	if len(glyphs) > MaxSize {
		return nil, errors.Wrapf(ErrTooManyGlyphs, "%d glyphs", len(glyphs))
	}
	c := &Charset{ID: id, Glyphs: append([]glyph.Glyph(nil), glyphs...)}
	c.buildIndex()
	return c, nil
}

func (c *Charset) buildIndex() {
	c.index = make(map[glyph.Glyph]int, len(c.Glyphs))
	for i, g := range c.Glyphs {
		if _, ok := c.index[g]; !ok {
			c.index[g] = i
		}
	}
}

// Len returns the number of glyphs in c.
func (c *Charset) Len() int { return len(c.Glyphs) }

// IndexOf returns the exact index of g in c, or -1 if absent.
func (c *Charset) IndexOf(g glyph.Glyph) int {
	if i, ok := c.index[g]; ok {
		return i
	}
	return -1
}

// Closest returns the index of the glyph in c closest to g by Hamming
// distance (the closest-glyph fallback used whenever an exact match is
// unavailable), and that distance. Exact matches short-circuit via
// glyph.Distance's own early exit. c must be non-empty.
func (c *Charset) Closest(g glyph.Glyph) (index, distance int) {
	best := -1
	bestDist := 65
	for i, cand := range c.Glyphs {
		d := glyph.Distance(g, cand)
		if d < bestDist {
			bestDist = d
			best = i
			if d == 0 {
				break
			}
		}
	}
	return best, bestDist
}

// Bytes serializes c as the on-disk charset persistence grammar: 8 bytes
// per glyph, row-major, MSB-first, no header.
func (c *Charset) Bytes() []byte {
	out := make([]byte, 0, len(c.Glyphs)*8)
	for _, g := range c.Glyphs {
		b := g.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// FromBytes parses the on-disk charset persistence grammar into a
// Charset with id.
func FromBytes(id int, data []byte) (*Charset, error) {
	if len(data)%8 != 0 {
		return nil, errors.Errorf("charset: data length %d not a multiple of 8", len(data))
	}
	n := len(data) / 8
	if n > MaxSize {
		return nil, errors.Wrapf(ErrTooManyGlyphs, "%d glyphs", n)
	}
	glyphs := make([]glyph.Glyph, n)
	for i := 0; i < n; i++ {
		var b [8]byte
		copy(b[:], data[i*8:i*8+8])
		glyphs[i] = glyph.FromBytes(b)
	}
	return New(id, glyphs)
}
