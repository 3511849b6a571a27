package geometry

import "testing"

func TestAllBlocksOffsetsClipped(t *testing.T) {
	g := New(Size{3, 3}, DefaultMacroBlockSize)
	for _, b := range g.AllBlocks() {
		for _, off := range g.Offsets(b) {
			if off < 0 || off >= ScreenCells {
				t.Fatalf("offset %d out of range for block %+v", off, b)
			}
		}
	}
}

func TestMacroBlockCoversAllItsBlocks(t *testing.T) {
	g := New(Size{2, 2}, DefaultMacroBlockSize)
	for _, mb := range g.MacroBlocks() {
		blocks := g.Blocks(mb)
		if len(blocks) == 0 {
			t.Fatalf("macro-block %+v has no blocks", mb)
		}
		for _, b := range blocks {
			if b.X < mb.X || b.Y < mb.Y || b.X+b.W > mb.X+mb.W || b.Y+b.H > mb.Y+mb.H {
				t.Errorf("block %+v lies outside macro-block %+v", b, mb)
			}
		}
	}
}

func TestOffsetSizesFirstSeenOrder(t *testing.T) {
	g := New(Size{4, 5}, DefaultMacroBlockSize)
	sizes := g.OffsetSizes()
	if len(sizes) == 0 {
		t.Fatal("expected at least one offset size")
	}
	if first := len(g.Offsets(g.AllBlocks()[0])); sizes[0] != first {
		t.Errorf("sizes[0] = %d, want the first block's size %d", sizes[0], first)
	}
	for _, sz := range sizes {
		if sz <= 0 || sz > 20 {
			t.Errorf("unexpected block size %d", sz)
		}
	}
}

func TestCandidateBlockSizesFixedOrder(t *testing.T) {
	want := []Size{{2, 2}, {2, 3}, {3, 2}, {3, 3}, {3, 4}, {4, 3}, {4, 4}, {4, 5}}
	if len(CandidateBlockSizes) != len(want) {
		t.Fatalf("got %d candidate sizes, want %d", len(CandidateBlockSizes), len(want))
	}
	for i, s := range want {
		if CandidateBlockSizes[i] != s {
			t.Errorf("candidate[%d] = %+v, want %+v", i, CandidateBlockSizes[i], s)
		}
	}
}
