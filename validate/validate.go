/*
NAME
  validate.go

DESCRIPTION
  validate.go implements the reference interpreter (C8): a table-driven
  bytecode interpreter that reproduces each frame's screen-code and
  color arrays from an all-zero start and compares them against the
  source sequence, reporting the first divergence. Grounded on
  original_source/packer.py's `unpack`, restructured as a table-driven
  state machine in the style of the teacher's codec/h264 bitstream
  interpreters.
*/

// Package validate implements the packed-stream validator: it replays a
// stream produced by package pack and checks it reproduces the source
// screen sequence exactly.
package validate

import (
	"github.com/pkg/errors"

	"github.com/muhmi/c64anim/geometry"
	"github.com/muhmi/c64anim/opcode"
	"github.com/muhmi/c64anim/pack"
	"github.com/muhmi/c64anim/rle"
	"github.com/muhmi/c64anim/screen"
)

// ErrMismatch is returned when the replayed arrays diverge from the
// source sequence.
var ErrMismatch = errors.New("validate: reproduced screen diverges from source")

// Mismatch carries the required diagnostic (spec.md §7): the first
// diverging frame, the byte offset within it, and the expected/actual
// values.
type Mismatch struct {
	Frame    int
	Offset   int
	Expected byte
	Actual   byte
	Color    bool // true if the divergence was in the color array, not screen codes.
}

func (m Mismatch) Error() string {
	channel := "screen"
	if m.Color {
		channel = "color"
	}
	return errors.Wrapf(ErrMismatch, "frame %d, %s offset %d: expected %d, got %d",
		m.Frame, channel, m.Offset, m.Expected, m.Actual).Error()
}

// Unwrap lets errors.Is(err, ErrMismatch) succeed for a Mismatch value.
func (m Mismatch) Unwrap() error { return ErrMismatch }

// reader is a cursor over the packed stream.
type reader struct {
	stream []byte
	offset int
}

func (r *reader) next() (byte, error) {
	if r.offset >= len(r.stream) {
		return 0, errors.New("validate: stream truncated")
	}
	b := r.stream[r.offset]
	r.offset++
	return b, nil
}

// Run replays stream against geo/table and checks it reproduces seq
// exactly (both channels when useColor is set, screen codes only
// otherwise).
func Run(stream []byte, table *opcode.Table, geo *geometry.Geometry, seq screen.Sequence, useColor bool) error {
	r := &reader{stream: stream}

	var screenArr, colorArr [geometry.ScreenCells]byte
	var blockPtr geometry.Block
	writingScreen := true

	for frame := 0; ; {
		op, err := r.next()
		if err != nil {
			return err
		}
		name := table.Name(op)
		if name == opcode.Error {
			return errors.Wrapf(pack.ErrUnknownOpcode, "frame %d, offset %d, op %d", frame, r.offset-1, op)
		}

		switch {
		case name == opcode.FrameEnd:
			if err := compareFrame(seq, frame, screenArr, colorArr, useColor); err != nil {
				return err
			}
			frame++
			continue

		case name == opcode.Restart:
			return nil

		case name == opcode.FullScreen2x2Blocks:
			if err := readMacroBitmap(r, geo, &screenArr, &colorArr, writingScreen); err != nil {
				return err
			}

		case name == opcode.SetDestPtr:
			idx, err := r.next()
			if err != nil {
				return err
			}
			blocks := geo.AllBlocks()
			if int(idx) >= len(blocks) {
				return errors.Errorf("validate: block index %d out of range", idx)
			}
			blockPtr = blocks[idx]

		case name == opcode.SetAnimSlowdown:
			if _, err := r.next(); err != nil {
				return err
			}

		case table.IsFillSame(op):
			value, err := r.next()
			if err != nil {
				return err
			}
			for _, off := range geo.Offsets(blockPtr) {
				writeCell(&screenArr, &colorArr, off, value, writingScreen)
			}

		case isFillRLE(table, op):
			sizes, _ := table.IsFillRLE(op)
			encoded := make([]byte, sizes.Encoded)
			for i := range encoded {
				b, err := r.next()
				if err != nil {
					return err
				}
				encoded[i] = b
			}
			decoded, err := rle.Decode(encoded)
			if err != nil {
				return err
			}
			offsets := geo.Offsets(blockPtr)
			for i, off := range offsets {
				if i >= len(decoded) {
					break
				}
				writeCell(&screenArr, &colorArr, off, decoded[i], writingScreen)
			}

		case table.IsFill(op):
			for _, off := range geo.Offsets(blockPtr) {
				b, err := r.next()
				if err != nil {
					return err
				}
				writeCell(&screenArr, &colorArr, off, b, writingScreen)
			}

		case name == opcode.FullScreenRLE:
			if err := readFullScreenRLE(r, &screenArr, &colorArr, writingScreen); err != nil {
				return err
			}

		case name == opcode.PerRowChanges:
			if err := readPerRow(r, &screenArr, &colorArr, writingScreen); err != nil {
				return err
			}

		case name == opcode.Clear:
			value, err := r.next()
			if err != nil {
				return err
			}
			fillAll(&screenArr, &colorArr, value, writingScreen)

		case name == opcode.ClearColor:
			value, err := r.next()
			if err != nil {
				return err
			}
			for i := range colorArr {
				colorArr[i] = value
			}

		case name == opcode.SetBorder, name == opcode.SetBackground, name == opcode.SetCharset:
			if _, err := r.next(); err != nil {
				return err
			}

		case name == opcode.SetColorMode:
			writingScreen = false

		case name == opcode.SetScreenMode:
			writingScreen = true

		default:
			return errors.Wrapf(pack.ErrUnknownOpcode, "frame %d, offset %d, op %d (%s)", frame, r.offset-1, op, name)
		}
	}
}

func writeCell(screenArr, colorArr *[geometry.ScreenCells]byte, off int, value byte, writingScreen bool) {
	if writingScreen {
		screenArr[off] = value
	} else {
		colorArr[off] = value
	}
}

func fillAll(screenArr, colorArr *[geometry.ScreenCells]byte, value byte, writingScreen bool) {
	if writingScreen {
		for i := range screenArr {
			screenArr[i] = value
		}
	} else {
		for i := range colorArr {
			colorArr[i] = value
		}
	}
}

func isFillRLE(table *opcode.Table, op byte) bool {
	_, ok := table.IsFillRLE(op)
	return ok
}

func readMacroBitmap(r *reader, geo *geometry.Geometry, screenArr, colorArr *[geometry.ScreenCells]byte, writingScreen bool) error {
	for _, mb := range geo.MacroBlocks() {
		bitmap, err := r.next()
		if err != nil {
			return err
		}
		for bit, b := range geo.Blocks(mb) {
			if bitmap&(1<<uint(bit)) == 0 {
				continue
			}
			for _, off := range geo.Offsets(b) {
				v, err := r.next()
				if err != nil {
					return err
				}
				writeCell(screenArr, colorArr, off, v, writingScreen)
			}
		}
	}
	return nil
}

const (
	fullScreenRLEEnd = 255
	perRowRunOffset  = 100
	perRowEndMarker  = 200
)

func readFullScreenRLE(r *reader, screenArr, colorArr *[geometry.ScreenCells]byte, writingScreen bool) error {
	off := 0
	for {
		count, err := r.next()
		if err != nil {
			return err
		}
		if count == fullScreenRLEEnd {
			return nil
		}
		value, err := r.next()
		if err != nil {
			return err
		}
		for i := byte(0); i < count; i++ {
			if off >= geometry.ScreenCells {
				return errors.New("validate: full-screen RLE overruns the screen")
			}
			writeCell(screenArr, colorArr, off, value, writingScreen)
			off++
		}
	}
}

func readPerRow(r *reader, screenArr, colorArr *[geometry.ScreenCells]byte, writingScreen bool) error {
	for y := 0; y < geometry.ScreenHeight; y++ {
		for {
			code, err := r.next()
			if err != nil {
				return err
			}
			if code == perRowEndMarker {
				break
			}
			if int(code) > perRowRunOffset {
				count := int(code) - perRowRunOffset
				x, err := r.next()
				if err != nil {
					return err
				}
				value, err := r.next()
				if err != nil {
					return err
				}
				for i := 0; i < count; i++ {
					off := y*geometry.ScreenWidth + int(x) + i
					if off < geometry.ScreenCells {
						writeCell(screenArr, colorArr, off, value, writingScreen)
					}
				}
			} else {
				x := code
				value, err := r.next()
				if err != nil {
					return err
				}
				off := y*geometry.ScreenWidth + int(x)
				if off < geometry.ScreenCells {
					writeCell(screenArr, colorArr, off, value, writingScreen)
				}
			}
		}
	}
	return nil
}

func compareFrame(seq screen.Sequence, frame int, screenArr, colorArr [geometry.ScreenCells]byte, useColor bool) error {
	if frame >= len(seq) {
		return errors.Errorf("validate: stream has more frames than the source sequence (frame %d)", frame)
	}
	src := seq[frame]
	for off := range screenArr {
		if screenArr[off] != src.ScreenCodes[off] {
			return Mismatch{Frame: frame, Offset: off, Expected: src.ScreenCodes[off], Actual: screenArr[off]}
		}
	}
	if useColor {
		for off := range colorArr {
			if colorArr[off] != src.ColorData[off] {
				return Mismatch{Frame: frame, Offset: off, Expected: src.ColorData[off], Actual: colorArr[off], Color: true}
			}
		}
	}
	return nil
}
