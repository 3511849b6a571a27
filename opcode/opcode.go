/*
NAME
  opcode.go

DESCRIPTION
  opcode.go implements the dynamic, two-way opcode table built fresh for
  every packer instance: a fixed core is registered first, then a
  FILL{n}/FILL_SAME{n} pair per distinct block-offsets size in the
  current geometry, then FILL_RLE{enc}_{dec} variants lazily on first
  use. Freezing the table keeps only the opcodes that were looked up
  during packing. Package pack's Diff looks up the opcodes of every
  candidate body it builds, so this set also holds opcodes of candidate
  bodies that were built and then discarded.
*/

// Package opcode implements the packer's dynamic opcode table: a two-way
// map between symbolic op names and the single byte values allocated to
// them for a particular geometry.
package opcode

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/muhmi/c64anim/geometry"
)

// MaxOpCodes is the largest number of live opcodes a table may hold.
const MaxOpCodes = 255

// ErrSpaceExhausted is returned when registering an opcode would exceed
// MaxOpCodes live entries.
var ErrSpaceExhausted = errors.New("opcode: space exhausted")

// Fixed core opcode names, registered in this exact order starting at
// byte 0.
const (
	Error               = "ERROR"
	SetBorder           = "SET_BORDER"
	SetBackground       = "SET_BACKGROUND"
	FrameEnd            = "FRAME_END"
	SetCharset          = "SET_CHARSET"
	Restart             = "RESTART"
	SetDestPtr          = "SET_DEST_PTR"
	SetColorMode        = "SET_COLOR_MODE"
	SetScreenMode       = "SET_SCREEN_MODE"
	FullScreenRLE       = "FULL_SCREEN_RLE"
	Clear               = "CLEAR"
	ClearColor          = "CLEAR_COLOR"
	FullScreen2x2Blocks = "FULL_SCREEN_2x2_BLOCKS"
	PerRowChanges       = "PER_ROW_CHANGES"
	SetAnimSlowdown     = "SET_ANIM_SLOWDOWN"
)

var fixedCore = []string{
	Error, SetBorder, SetBackground, FrameEnd, SetCharset, Restart,
	SetDestPtr, SetColorMode, SetScreenMode, FullScreenRLE, Clear,
	ClearColor, FullScreen2x2Blocks, PerRowChanges, SetAnimSlowdown,
}

// FillName returns the symbolic name of the FILL{n} opcode for a block of
// n cells.
func FillName(n int) string { return fmt.Sprintf("FILL%d", n) }

// FillSameName returns the symbolic name of the FILL_SAME{n} opcode for a
// block of n cells.
func FillSameName(n int) string { return fmt.Sprintf("FILL_SAME%d", n) }

// FillRLEName returns the symbolic name of the FILL_RLE{enc}_{dec} opcode
// for an encoded payload of encLen bytes decoding to decLen bytes.
func FillRLEName(encLen, decLen int) string { return fmt.Sprintf("FILL_RLE%d_%d", encLen, decLen) }

// RLESizes records the encoded/decoded byte counts for a lazily-registered
// FILL_RLE opcode.
type RLESizes struct {
	Encoded, Decoded int
}

// Table is the two-way opcode <-> symbolic-name map for a single packer
// instance.
type Table struct {
	byteToName [256]string
	nameToByte map[string]byte
	used       map[string]bool
	next       int

	rleSizes map[byte]RLESizes
	rleOrder []byte
}

// New builds a Table for the given geometry: the fixed core, then one
// FILL{n}/FILL_SAME{n} pair per distinct offsets-size present in geo, in
// the order geo.OffsetSizes() returns them.
func New(geo *geometry.Geometry) (*Table, error) {
	t := &Table{
		nameToByte: make(map[string]byte),
		used:       make(map[string]bool),
		rleSizes:   make(map[byte]RLESizes),
	}
	for i := range t.byteToName {
		t.byteToName[i] = Error
	}

	for _, name := range fixedCore {
		if _, err := t.add(name); err != nil {
			return nil, err
		}
	}

	for _, sz := range geo.OffsetSizes() {
		if _, err := t.add(FillName(sz)); err != nil {
			return nil, err
		}
		if _, err := t.add(FillSameName(sz)); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Table) add(name string) (byte, error) {
	if t.next >= MaxOpCodes {
		return 0, errors.Wrapf(ErrSpaceExhausted, "registering %q at %d ops", name, t.next)
	}
	op := byte(t.next)
	t.next++
	t.byteToName[op] = name
	t.nameToByte[name] = op
	return op, nil
}

// Byte returns the byte value assigned to name, marking it used. A lookup
// counts as a use whether or not the caller's bytes end up in the stream
// (pack.Diff looks up opcodes for every candidate body, including the
// ones it discards). It panics if name
// was never registered, since every caller site only looks up names it
// (or New) has already registered.
func (t *Table) Byte(name string) byte {
	b, ok := t.nameToByte[name]
	if !ok {
		panic("opcode: unregistered name " + name)
	}
	t.used[name] = true
	return b
}

// Name returns the symbolic name assigned to op.
func (t *Table) Name(op byte) string { return t.byteToName[op] }

// IsFill reports whether op is one of the FILL{n} family (not FILL_SAME or
// FILL_RLE).
func (t *Table) IsFill(op byte) bool {
	name := t.byteToName[op]
	return strings.HasPrefix(name, "FILL") && !strings.HasPrefix(name, "FILL_")
}

// IsFillSame reports whether op is one of the FILL_SAME{n} family.
func (t *Table) IsFillSame(op byte) bool {
	return strings.HasPrefix(t.byteToName[op], "FILL_SAME")
}

// IsFillRLE reports whether op is a lazily-registered FILL_RLE{enc}_{dec}
// opcode, and if so its encoded/decoded sizes.
func (t *Table) IsFillRLE(op byte) (RLESizes, bool) {
	sz, ok := t.rleSizes[op]
	return sz, ok
}

// AddRLE lazily registers a FILL_RLE{enc}_{dec} opcode the first time an
// encoder selects that (encoded,decoded) size pair. It is idempotent:
// calling it again with the same sizes returns the already-registered
// byte.
func (t *Table) AddRLE(encLen, decLen int) (byte, error) {
	name := FillRLEName(encLen, decLen)
	if b, ok := t.nameToByte[name]; ok {
		t.used[name] = true
		return b, nil
	}
	b, err := t.add(name)
	if err != nil {
		return 0, err
	}
	t.rleSizes[b] = RLESizes{Encoded: encLen, Decoded: decLen}
	t.rleOrder = append(t.rleOrder, b)
	t.used[name] = true
	return b, nil
}

// MarkUsed records that name was actually emitted into a stream. Used by
// Freeze to determine which entries survive.
func (t *Table) MarkUsed(name string) {
	t.used[name] = true
}

// Freeze resets every registered-but-unused entry to the ERROR sentinel
// name, keeping the byte<->name map limited to opcodes marked used by
// Byte, AddRLE or MarkUsed during the packer run. It must be called once, after packing completes and
// before the companion table is reported to external consumers.
func (t *Table) Freeze() {
	for op, name := range t.byteToName {
		if name == Error {
			continue
		}
		if !t.used[name] {
			t.byteToName[op] = Error
		}
	}
}

// Dump returns a byte->name snapshot of the table, suitable for reporting
// alongside the packed stream.
func (t *Table) Dump() map[byte]string {
	out := make(map[byte]string, t.next)
	for op := 0; op < t.next; op++ {
		out[byte(op)] = t.byteToName[op]
	}
	return out
}

// Len returns the number of opcodes registered so far (live ops).
func (t *Table) Len() int { return t.next }
