/*
NAME
  packer.go

DESCRIPTION
  packer.go implements the packer driver (C7): per-frame state carried
  across the stream (previous border/background/charset), the 7-step
  emission order of spec.md §4.7, and the used-block/used-macro-block
  bookkeeping original_source/packer.py exposes for downstream player
  tooling (write_player). Grounded on the same per-frame state + prelude-
  then-body emission shape as the teacher's container/mts encoder.
*/

package pack

import (
	"github.com/pkg/errors"

	"github.com/muhmi/c64anim/geometry"
	"github.com/muhmi/c64anim/opcode"
	"github.com/muhmi/c64anim/screen"
)

// ErrUnknownOpcode is surfaced by package validate when it encounters an
// opcode byte the table never registered — an internal packer/opcode-
// table inconsistency.
var ErrUnknownOpcode = errors.New("pack: unknown opcode")

// Logger is the narrow logging surface the packer needs.
type Logger interface {
	Debug(msg string, args ...interface{})
}

// Options configures a Packer, mirroring the config.Config fields that
// govern emission (as opposed to geometry or reduction).
type Options struct {
	UseColor                bool
	OnlyPerRowMode          bool
	RLEEncoderEnabled       bool
	OnlyColorMode           bool
	InitColorBetweenAnims   bool
	AnimChangeScreenIndexes map[int]bool
	AnimSlowdownTable       []byte
}

// Packer implements C7: the per-frame emission state machine that
// produces a Stream from a Sequence, given a fixed geometry and opcode
// table.
type Packer struct {
	Geo   *geometry.Geometry
	Table *opcode.Table
	Opts  Options
	log   Logger

	UsedBlocks      map[geometry.Block]bool
	UsedMacroBlocks map[geometry.Block]bool
}

// New builds a Packer over geo with a fresh opcode table sized for it.
func New(geo *geometry.Geometry, opts Options, log Logger) (*Packer, error) {
	table, err := opcode.New(geo)
	if err != nil {
		return nil, err
	}
	return &Packer{Geo: geo, Table: table, Opts: opts, log: log}, nil
}

func (p *Packer) debugf(msg string, args ...interface{}) {
	if p.log != nil {
		p.log.Debug(msg, args...)
	}
}

// Pack emits the stream for seq, per spec.md §4.7's 7-step order, ending
// with RESTART.
func (p *Packer) Pack(seq screen.Sequence) ([]byte, error) {
	p.computeUsedBlocks(seq)

	var out []byte
	prevBorder, prevBackground := byte(0), byte(0)
	prevCharset := screen.NoCharset
	slowdownIdx := 0

	diffOpts := DiffOptions{
		OnlyPerRowMode:    p.Opts.OnlyPerRowMode,
		UseColor:          p.Opts.UseColor,
		RLEEncoderEnabled: p.Opts.RLEEncoderEnabled,
	}

	for i, scr := range seq {
		// 1. Border.
		if scr.Border != nil && *scr.Border != prevBorder {
			out = append(out, p.Table.Byte(opcode.SetBorder), *scr.Border)
			prevBorder = *scr.Border
		}

		// 2. Background.
		if scr.Background != nil && *scr.Background != prevBackground {
			out = append(out, p.Table.Byte(opcode.SetBackground), *scr.Background)
			prevBackground = *scr.Background
		}

		// 3. Charset.
		if scr.CharsetID != screen.NoCharset && scr.CharsetID != prevCharset {
			p.debugf("frame %d, charset change %d -> %d", scr.Index, prevCharset, scr.CharsetID)
			out = append(out, p.Table.Byte(opcode.SetCharset), byte(scr.CharsetID))
			prevCharset = scr.CharsetID
		}

		// 4. Screen-code body (unless color-only mode).
		if !p.Opts.OnlyColorMode {
			body, err := Diff(seq.PrevCodes(i), scr.ScreenCodes, p.Geo, p.Table, diffOpts)
			if err != nil {
				return nil, errors.Wrapf(err, "pack: frame %d screen body", scr.Index)
			}
			out = append(out, body...)
		}

		// 5. Color body, or color-memory init between source animations.
		if p.Opts.UseColor {
			out = append(out, p.Table.Byte(opcode.SetColorMode))
			body, err := Diff(seq.PrevColors(i), scr.ColorData, p.Geo, p.Table, diffOpts)
			if err != nil {
				return nil, errors.Wrapf(err, "pack: frame %d color body", scr.Index)
			}
			out = append(out, body...)
			out = append(out, p.Table.Byte(opcode.SetScreenMode))
		} else if p.Opts.InitColorBetweenAnims && p.Opts.AnimChangeScreenIndexes[scr.Index] {
			p.debugf("frame %d, clear color memory to %d", scr.Index, scr.ColorData[0])
			out = append(out, p.Table.Byte(opcode.ClearColor), scr.ColorData[0])
		}

		// 6. Animation slowdown.
		if len(p.Opts.AnimSlowdownTable) > 0 {
			out = append(out, p.Table.Byte(opcode.SetAnimSlowdown), p.Opts.AnimSlowdownTable[slowdownIdx])
			slowdownIdx = (slowdownIdx + 1) % len(p.Opts.AnimSlowdownTable)
		}

		// 7. Frame end.
		out = append(out, p.Table.Byte(opcode.FrameEnd))
	}

	out = append(out, p.Table.Byte(opcode.Restart))
	return out, nil
}

// computeUsedBlocks walks every frame transition once, recording which
// blocks and macro-blocks ever changed — used by downstream player
// tooling to drop dead blocks from generated assembly (out of scope
// here, but the sets are still computed per original_source/packer.py's
// write_player consumer).
func (p *Packer) computeUsedBlocks(seq screen.Sequence) {
	p.UsedBlocks = make(map[geometry.Block]bool)
	p.UsedMacroBlocks = make(map[geometry.Block]bool)

	for i, scr := range seq {
		prevCodes := seq.PrevCodes(i)
		prevColors := seq.PrevColors(i)
		for _, mb := range p.Geo.MacroBlocks() {
			for _, b := range p.Geo.Blocks(mb) {
				offsets := p.Geo.Offsets(b)
				if len(offsets) == 0 {
					continue
				}
				if !blockSame(prevCodes, scr.ScreenCodes, offsets) {
					p.UsedBlocks[b] = true
					p.UsedMacroBlocks[mb] = true
				}
				if p.Opts.UseColor && !blockSame(prevColors, scr.ColorData, offsets) {
					p.UsedBlocks[b] = true
					p.UsedMacroBlocks[mb] = true
				}
			}
		}
	}
}
