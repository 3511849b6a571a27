/*
NAME
  petmate.go

DESCRIPTION
  petmate.go reads the structured JSON "petmate" container: a
  "framebufs" list of per-cell {code,color} entries, plus optional
  "customFonts" charsets addressed by name.
*/

package screen

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/muhmi/c64anim/glyph"
)

// PetmateCell is one cell of a petmate framebuf row.
type PetmateCell struct {
	Code  int `json:"code"`
	Color int `json:"color"`
}

// PetmateFrame is one entry of the petmate "framebufs" list.
type PetmateFrame struct {
	Charset         string          `json:"charset"`
	BorderColor     json.Number     `json:"borderColor"`
	BackgroundColor json.Number     `json:"backgroundColor"`
	Framebuf        [][]PetmateCell `json:"framebuf"`
}

// PetmateFont is a custom font entry under "customFonts".
type PetmateFont struct {
	Name string `json:"name"`
	Font struct {
		Bits []int `json:"bits"`
	} `json:"font"`
}

// PetmateDoc is the top-level petmate JSON document.
type PetmateDoc struct {
	Framebufs   []PetmateFrame         `json:"framebufs"`
	CustomFonts map[string]PetmateFont `json:"customFonts"`
}

// CharsetFromFont decodes a PetmateFont's flat bit array into glyphs, 8
// bytes (64 bits) per glyph.
func CharsetFromFont(f PetmateFont) ([]glyph.Glyph, error) {
	if len(f.Font.Bits)%8 != 0 {
		return nil, errors.Errorf("petmate: font %q bit count %d not a multiple of 8", f.Name, len(f.Font.Bits))
	}
	n := len(f.Font.Bits) / 8
	glyphs := make([]glyph.Glyph, n)
	for i := 0; i < n; i++ {
		var row [8]byte
		for j := 0; j < 8; j++ {
			v := f.Font.Bits[i*8+j]
			if v < 0 || v > 255 {
				return nil, errors.Errorf("petmate: font %q byte %d out of range: %d", f.Name, i*8+j, v)
			}
			row[j] = byte(v)
		}
		glyphs[i] = glyph.FromBytes(row)
	}
	return glyphs, nil
}

// PetmateCharset is one named charset discovered while reading a petmate
// document, in first-use order across the framebufs. Index is the
// CharsetID ReadPetmate assigned every screen that referenced it, so a
// caller can build its charset arena in the same order.
type PetmateCharset struct {
	Name   string
	Index  int
	Glyphs []glyph.Glyph
}

// ReadPetmate parses the petmate JSON document into a Sequence, plus the
// charsets its frames reference. A frame's charset name is looked up in
// customFonts and in builtins (a customFonts entry wins over a builtin of
// the same name); built-in fonts such as petmate's "upper" are found only
// if the caller passes them in builtins, and an unknown name is an error.
// Each screen's CharsetID is assigned by first-use order of its frame's
// named charset; the returned slice lists those charsets in that same
// order, ready for a caller to build an arena (package charset) from.
func ReadPetmate(r io.Reader, builtins map[string][]glyph.Glyph) (Sequence, []PetmateCharset, error) {
	var doc PetmateDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, errors.Wrap(err, "screen: decoding petmate json")
	}

	fonts := make(map[string][]glyph.Glyph, len(builtins)+len(doc.CustomFonts))
	for name, g := range builtins {
		fonts[name] = g
	}
	for name, f := range doc.CustomFonts {
		g, err := CharsetFromFont(f)
		if err != nil {
			return nil, nil, err
		}
		if len(g) > 256 {
			return nil, nil, errors.Errorf("petmate: custom font %q has %d glyphs, max 256", name, len(g))
		}
		fonts[name] = g
	}

	var seq Sequence
	var charsets []PetmateCharset
	index := make(map[string]int)

	for idx, frame := range doc.Framebufs {
		charsetName := frame.Charset
		glyphs, ok := fonts[charsetName]
		if !ok {
			return nil, nil, errors.Errorf("petmate: frame %d references unknown charset %q", idx, charsetName)
		}
		csIdx, seen := index[charsetName]
		if !seen {
			csIdx = len(charsets)
			index[charsetName] = csIdx
			charsets = append(charsets, PetmateCharset{Name: charsetName, Index: csIdx, Glyphs: glyphs})
		}

		scr := NewScreen(idx)
		scr.CharsetID = csIdx
		border, err := frame.BorderColor.Int64()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "petmate: frame %d borderColor", idx)
		}
		bg, err := frame.BackgroundColor.Int64()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "petmate: frame %d backgroundColor", idx)
		}
		b, g := byte(border), byte(bg)
		scr.Border = &b
		scr.Background = &g

		for row, rowData := range frame.Framebuf {
			for col, cell := range rowData {
				off := row*40 + col
				if off >= Cells {
					continue
				}
				scr.ScreenCodes[off] = byte(cell.Code)
				scr.ColorData[off] = byte(cell.Color)
			}
		}
		seq = append(seq, scr)
	}

	return seq, charsets, nil
}
