/*
NAME
  differ.go

DESCRIPTION
  differ.go selects among the four frame-differ strategies of spec.md
  §4.6: a single-value CLEAR collapse checked first, then strictly
  shortest of block-diff / macro-block / per-row / full-screen-RLE,
  ties broken in that declared order. Unlike the reference tool (which
  only ever considers per-row delta when ONLY_PER_ROW_MODE forces it),
  this evaluates all four whenever none of the mode flags rule one out,
  per spec.md §4.6's literal "compute four candidate bodies ... pick the
  shortest" — a resolved ambiguity, recorded in DESIGN.md.
*/

package pack

import (
	"github.com/muhmi/c64anim/geometry"
	"github.com/muhmi/c64anim/opcode"
)

// DiffOptions configures Diff's strategy selection, mirroring
// config.Config's OnlyPerRowMode/RLEEncoderEnabled/UseColor fields.
type DiffOptions struct {
	OnlyPerRowMode    bool
	UseColor          bool
	RLEEncoderEnabled bool
}

// Diff computes the shortest frame body transforming prev into cur, per
// spec.md §4.6.
func Diff(prev, cur [geometry.ScreenCells]byte, geo *geometry.Geometry, table *opcode.Table, opts DiffOptions) ([]byte, error) {
	if opts.OnlyPerRowMode {
		return (&perRowStrategy{prev: prev, cur: cur, table: table}).Encode()
	}

	if allSameByte(cur[:]) {
		return []byte{table.Byte(opcode.Clear), cur[0]}, nil
	}

	tooManyBlocks := len(geo.AllBlocks()) > opcode.MaxOpCodes

	var candidates [][]byte

	if !tooManyBlocks {
		body, err := (&blockDiffStrategy{geo: geo, table: table, prev: prev, cur: cur}).Encode()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, body)
	}

	if !opts.UseColor || tooManyBlocks {
		body, err := (&macroBlockStrategy{geo: geo, table: table, prev: prev, cur: cur}).Encode()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, body)
	}

	perRow, err := (&perRowStrategy{prev: prev, cur: cur, table: table}).Encode()
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, perRow)

	if opts.RLEEncoderEnabled {
		full, err := (&fullScreenRLEStrategy{cur: cur, table: table}).Encode()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, full)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(best) {
			best = c
		}
	}
	return best, nil
}
