/*
NAME
  raster.go

DESCRIPTION
  raster.go ingests a multi-frame GIF into Screens by splitting each
  frame into 8x8 cells and reducing each cell to a glyph. Full-color
  palette mapping (choosing a target-machine color index for a cell's
  foreground) is out of scope for the core (spec.md §1: "image decoding
  and palette mapping" are external collaborators); this adapter only
  performs the in-scope part: bi-level pixel reduction into 8x8 glyphs,
  using the same closest-glyph fallback the charset reducer uses
  elsewhere (spec.md §4.3).
*/

package screen

import (
	"image"
	"image/gif"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/muhmi/c64anim/glyph"
)

// RasterOptions configures ReadRaster.
type RasterOptions struct {
	// Threshold is the luminance cutoff (0-255) above which a pixel is
	// considered "on". Matches petscii.py's `point(lambda x: 0 if x<=1
	// else 255, "1")` bi-level conversion.
	Threshold uint8

	// Cleanup is the maximum number of "on" pixels in a cell for it to
	// be collapsed to BLANK (or FULL when Inverse), matching the
	// original tool's cleanup parameter.
	Cleanup int

	// Inverse swaps the on/off bit sense.
	Inverse bool

	// DefaultCharset, if non-nil, pins ingestion to a fixed charset: new
	// cells are matched to the closest glyph in it rather than growing a
	// fresh per-frame charset.
	DefaultCharset []glyph.Glyph
}

// ReadRaster decodes a multi-frame GIF and reduces it to a Sequence. Each
// screen's InitialGlyphs holds the charset discovered for that frame. When
// opts.DefaultCharset is given, screen codes index into it and
// InitialGlyphs is left nil.
func ReadRaster(r io.Reader, opts RasterOptions) (Sequence, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "screen: decoding gif")
	}

	threshold := opts.Threshold
	if threshold == 0 {
		threshold = 1
	}

	var seq Sequence
	canvas := image.NewGray(image.Rect(0, 0, g.Config.Width, g.Config.Height))
	for idx, frame := range g.Image {
		drawOnto(canvas, frame)

		scr := NewScreen(idx)

		var charset []glyph.Glyph
		pinned := opts.DefaultCharset != nil
		if pinned {
			charset = opts.DefaultCharset
		} else {
			charset = append(charset, glyph.BLANK, glyph.FULL)
		}

		width, height := canvas.Bounds().Dx(), canvas.Bounds().Dy()
		for y := 0; y < height; y += 8 {
			for x := 0; x < width; x += 8 {
				row, col := y/8, x/8
				off := row*40 + col
				if off >= Cells {
					continue
				}

				cell, onCount := sampleCell(canvas, x, y, threshold, opts.Inverse)
				if onCount <= opts.Cleanup {
					if opts.Inverse {
						cell = glyph.FULL
					} else {
						cell = glyph.BLANK
					}
				}

				var code int
				switch {
				case pinned:
					if idx := indexOf(charset, cell); idx >= 0 {
						code = idx
					} else {
						code, _ = closest(charset, cell)
					}
				default:
					if idx := indexOf(charset, cell); idx >= 0 {
						code = idx
					} else {
						code = len(charset)
						charset = append(charset, cell)
					}
				}

				scr.ScreenCodes[off] = byte(code)
				if cell.IsBlank() {
					scr.ColorData[off] = 0
				} else {
					scr.ColorData[off] = 1
				}
			}
		}

		if !pinned {
			scr.InitialGlyphs = charset
		}
		seq = append(seq, scr)
	}

	return seq, nil
}

func drawOnto(dst *image.Gray, src *image.Paletted) {
	draw.Draw(dst, src.Bounds(), src, src.Bounds().Min, draw.Over)
}

func sampleCell(img *image.Gray, x0, y0 int, threshold uint8, inverse bool) (glyph.Glyph, int) {
	var g glyph.Glyph
	onCount := 0
	for i := 0; i < 8; i++ {
		var row byte
		for j := 0; j < 8; j++ {
			px, py := x0+j, y0+i
			on := false
			if px < img.Bounds().Dx() && py < img.Bounds().Dy() {
				on = img.GrayAt(px, py).Y > threshold
			}
			if inverse {
				on = !on
			}
			if on {
				onCount++
				row |= 1 << (7 - j)
			}
		}
		g[i] = row
	}
	return g, onCount
}

func indexOf(gs []glyph.Glyph, g glyph.Glyph) int {
	for i, c := range gs {
		if c == g {
			return i
		}
	}
	return -1
}

func closest(gs []glyph.Glyph, g glyph.Glyph) (int, int) {
	best, bestDist := -1, 65
	for i, c := range gs {
		d := glyph.Distance(g, c)
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return best, bestDist
}
