/*
NAME
  strategy.go

DESCRIPTION
  strategy.go implements the four frame-differ strategies of spec.md
  §4.6 as an interface, mirroring the teacher's interface-based filter
  selection (filter.Filter): each strategy is a value that knows only
  how to encode itself, and differ.Diff evaluates and picks the
  shortest.
*/

package pack

import (
	"github.com/pkg/errors"

	"github.com/muhmi/c64anim/geometry"
	"github.com/muhmi/c64anim/opcode"
	"github.com/muhmi/c64anim/rle"
)

// Strategy produces one candidate frame body. Unlike the teacher's
// io.WriteCloser-shaped filter.Filter, Encode returns its bytes directly
// since a strategy is pure (no destination to write through) — but it
// keeps the same "methods return error" idiom, since building a body can
// fail (opcode space exhausted while lazily registering a FILL_RLE op).
type Strategy interface {
	Encode() ([]byte, error)
}

func allSameByte(data []byte) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}

func blockSame(prev, cur [geometry.ScreenCells]byte, offsets []int) bool {
	for _, off := range offsets {
		if prev[off] != cur[off] {
			return false
		}
	}
	return true
}

// encodeBlock implements the per-block body selection of spec.md §4.6:
// FILL_SAME when constant, FILL_RLE when the bounded RLE codec beats raw
// copy by more than 2 bytes, otherwise FILL.
func encodeBlock(cur [geometry.ScreenCells]byte, offsets []int, table *opcode.Table) ([]byte, error) {
	data := make([]byte, len(offsets))
	for i, off := range offsets {
		data[i] = cur[off]
	}

	if allSameByte(data) {
		return []byte{table.Byte(opcode.FillSameName(len(data))), data[0]}, nil
	}

	encoded := rle.Encode(data)
	if len(encoded) < len(data)-2 {
		op, err := table.AddRLE(len(encoded), len(data))
		if err != nil {
			return nil, errors.Wrap(err, "pack: registering FILL_RLE op")
		}
		return append([]byte{op}, encoded...), nil
	}

	return append([]byte{table.Byte(opcode.FillName(len(data)))}, data...), nil
}

// blockDiffStrategy is the primary body: per differing block in geometry
// order, SET_DEST_PTR followed by the block's encoded body.
type blockDiffStrategy struct {
	geo       *geometry.Geometry
	table     *opcode.Table
	prev, cur [geometry.ScreenCells]byte
}

func (s *blockDiffStrategy) Encode() ([]byte, error) {
	var out []byte
	for idx, b := range s.geo.AllBlocks() {
		offsets := s.geo.Offsets(b)
		if len(offsets) == 0 || blockSame(s.prev, s.cur, offsets) {
			continue
		}
		out = append(out, s.table.Byte(opcode.SetDestPtr), byte(idx))
		body, err := encodeBlock(s.cur, offsets, s.table)
		if err != nil {
			return nil, err
		}
		out = append(out, body...)
	}
	return out, nil
}

// macroBlockStrategy is the FULL_SCREEN_2x2_BLOCKS body: one bitmap byte
// per macro-block (bit k set iff its k-th block changed), followed by the
// raw changed-block cells in block order.
type macroBlockStrategy struct {
	geo       *geometry.Geometry
	table     *opcode.Table
	prev, cur [geometry.ScreenCells]byte
}

func (s *macroBlockStrategy) Encode() ([]byte, error) {
	out := []byte{s.table.Byte(opcode.FullScreen2x2Blocks)}
	for _, mb := range s.geo.MacroBlocks() {
		var bitmap byte
		var changed []byte
		for bit, b := range s.geo.Blocks(mb) {
			offsets := s.geo.Offsets(b)
			if len(offsets) == 0 || blockSame(s.prev, s.cur, offsets) {
				continue
			}
			bitmap |= 1 << uint(bit)
			for _, off := range offsets {
				changed = append(changed, s.cur[off])
			}
		}
		out = append(out, bitmap)
		out = append(out, changed...)
	}
	return out, nil
}

// perRowStrategy is the PER_ROW_CHANGES body: per row, a sequence of
// singleton (x, value) or run (100+count, x_start, value) entries,
// terminated by byte 200.
type perRowStrategy struct {
	prev, cur [geometry.ScreenCells]byte
	table     *opcode.Table
}

// perRowEndMarker and perRowRunOffset are the reserved control bytes of
// spec.md §4.6/§9: screen codes fit in 0..255 and x < 40, so 100 as an
// x-coordinate is unreachable — asserted below, not merely assumed.
const (
	perRowRunOffset  = 100
	perRowEndMarker  = 200
	perRowMinRunLen  = 3
	perRowMaxRunSpan = geometry.ScreenWidth * 2
)

type rowChange struct {
	x     int
	value byte
}

func (s *perRowStrategy) Encode() ([]byte, error) {
	out := []byte{s.table.Byte(opcode.PerRowChanges)}

	for y := 0; y < geometry.ScreenHeight; y++ {
		var changes []rowChange
		for x := 0; x < geometry.ScreenWidth; x++ {
			off := y*geometry.ScreenWidth + x
			if off >= geometry.ScreenCells {
				break
			}
			if s.prev[off] != s.cur[off] {
				if x >= perRowRunOffset {
					return nil, errors.Errorf("pack: x-coordinate %d collides with the per-row run marker", x)
				}
				changes = append(changes, rowChange{x: x, value: s.cur[off]})
			}
		}

		i := 0
		for i < len(changes) {
			runStart := i
			runLen := 1
			for i+1 < len(changes) &&
				changes[i+1].x == changes[i].x+1 &&
				changes[i+1].value == changes[i].value &&
				runLen < perRowMaxRunSpan {
				i++
				runLen++
			}

			if runLen > perRowMinRunLen {
				out = append(out, byte(perRowRunOffset+runLen), byte(changes[runStart].x), changes[runStart].value)
				i++
			} else {
				for j := runStart; j <= i; j++ {
					out = append(out, byte(changes[j].x), changes[j].value)
				}
				i++
			}
		}

		out = append(out, perRowEndMarker)
	}

	return out, nil
}

// fullScreenRLEStrategy is the FULL_SCREEN_RLE body: (count, value) pairs
// over all 1000 cells, count capped at 254 (255 is the reserved end
// marker — a different cap and framing from package rle's block codec,
// intentionally, per spec.md §9).
type fullScreenRLEStrategy struct {
	cur   [geometry.ScreenCells]byte
	table *opcode.Table
}

const (
	fullScreenRLEMax = 254
	fullScreenRLEEnd = 255
)

func (s *fullScreenRLEStrategy) Encode() ([]byte, error) {
	out := []byte{s.table.Byte(opcode.FullScreenRLE)}

	count := 1
	current := s.cur[0]
	flush := func() {
		out = append(out, byte(count), current)
	}
	for _, v := range s.cur[1:] {
		if v == current && count < fullScreenRLEMax {
			count++
			continue
		}
		flush()
		count = 1
		current = v
	}
	flush()

	out = append(out, fullScreenRLEEnd)
	return out, nil
}
