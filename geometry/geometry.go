/*
NAME
  geometry.go

DESCRIPTION
  geometry.go implements the block/macro-block layout over the fixed
  40x25 character grid that the packer and validator share read-only.
*/

// Package geometry implements the block and macro-block layout over the
// 40x25 screen grid used by the frame differ, the packer driver and the
// validator.
package geometry

// ScreenWidth and ScreenHeight are the fixed dimensions of a screen in
// character cells.
const (
	ScreenWidth  = 40
	ScreenHeight = 25
	ScreenCells  = ScreenWidth * ScreenHeight
)

// Size is a 2D extent in character cells.
type Size struct {
	X, Y int
}

// Block is a rectangle over the screen grid.
type Block struct {
	X, Y, W, H int
}

// CandidateBlockSizes is the fixed list of block geometries the search (C9)
// tries, in the order ties are broken.
var CandidateBlockSizes = []Size{
	{2, 2}, {2, 3}, {3, 2}, {3, 3}, {3, 4}, {4, 3}, {4, 4}, {4, 5},
}

// DefaultMacroBlockSize is the default macro-block factor (2x4 blocks per
// macro-block).
var DefaultMacroBlockSize = Size{2, 4}

// Geometry is an immutable block layout for a given block size and
// macro-block factor. It is built once and shared read-only by the packer
// and the validator.
type Geometry struct {
	blockSize      Size
	macroBlockSize Size
	xStep, yStep   int

	macroBlocks []Block
	blocksByMB  map[Block][]Block
	allBlocks   []Block
	offsets     map[Block][]int
}

// New builds a Geometry for the given block size and macro-block factor.
func New(blockSize, macroBlockSize Size) *Geometry {
	g := &Geometry{
		blockSize:      blockSize,
		macroBlockSize: macroBlockSize,
		xStep:          macroBlockSize.X * blockSize.X,
		yStep:          macroBlockSize.Y * blockSize.Y,
		blocksByMB:     make(map[Block][]Block),
		offsets:        make(map[Block][]int),
	}

	for my := 0; my < ScreenHeight; my += g.yStep {
		for mx := 0; mx < ScreenWidth; mx += g.xStep {
			mb := Block{mx, my, g.xStep, g.yStep}
			g.macroBlocks = append(g.macroBlocks, mb)

			var blocks []Block
			for y := mb.Y; y < mb.Y+g.yStep; y += blockSize.Y {
				for x := mb.X; x < mb.X+g.xStep; x += blockSize.X {
					if x > ScreenWidth || y > ScreenHeight {
						continue
					}
					b := Block{x, y, blockSize.X, blockSize.Y}
					blocks = append(blocks, b)
					g.allBlocks = append(g.allBlocks, b)
				}
			}
			g.blocksByMB[mb] = blocks
		}
	}

	for _, b := range g.allBlocks {
		g.offsets[b] = computeOffsets(b)
	}

	return g
}

func computeOffsets(b Block) []int {
	var offsets []int
	for y := b.Y; y < b.Y+b.H; y++ {
		for x := b.X; x < b.X+b.W; x++ {
			off := y*ScreenWidth + x
			if off < ScreenCells {
				offsets = append(offsets, off)
			}
		}
	}
	return offsets
}

// BlockSize returns the configured block size.
func (g *Geometry) BlockSize() Size { return g.blockSize }

// MacroBlockSize returns the configured macro-block factor.
func (g *Geometry) MacroBlockSize() Size { return g.macroBlockSize }

// MacroBlocks returns the macro-blocks in row-major order.
func (g *Geometry) MacroBlocks() []Block { return g.macroBlocks }

// Blocks returns the blocks belonging to the given macro-block, in the
// fixed row-major order used during emission.
func (g *Geometry) Blocks(mb Block) []Block { return g.blocksByMB[mb] }

// AllBlocks returns every block in the geometry, in the flattened
// macro-block-major, block-minor order used to index SET_DEST_PTR.
func (g *Geometry) AllBlocks() []Block { return g.allBlocks }

// Offsets returns the linear screen offsets covered by block b, clipped to
// the 1000-cell screen.
func (g *Geometry) Offsets(b Block) []int { return g.offsets[b] }

// OffsetSizes returns the distinct block-offset-list sizes present in this
// geometry, in first-seen order. Used by package opcode to enumerate the
// FILL{n}/FILL_SAME{n} op family up front.
func (g *Geometry) OffsetSizes() []int {
	seen := make(map[int]bool)
	var sizes []int
	for _, b := range g.allBlocks {
		sz := len(g.offsets[b])
		if sz > 0 && !seen[sz] {
			seen[sz] = true
			sizes = append(sizes, sz)
		}
	}
	return sizes
}

// Descriptor is the block-geometry descriptor produced alongside the
// packed stream (spec.md §6) so external consumers can resolve
// SET_DEST_PTR indices.
type Descriptor struct {
	BlockSize      Size
	MacroBlockSize Size
	Blocks         []BlockOffsets
}

// BlockOffsets pairs a block with its clipped linear offsets, in emission
// order.
type BlockOffsets struct {
	Block   Block
	Offsets []int
}

// Describe returns the block-geometry descriptor for g.
func (g *Geometry) Describe() Descriptor {
	d := Descriptor{BlockSize: g.blockSize, MacroBlockSize: g.macroBlockSize}
	for _, b := range g.allBlocks {
		d.Blocks = append(d.Blocks, BlockOffsets{Block: b, Offsets: g.offsets[b]})
	}
	return d
}
