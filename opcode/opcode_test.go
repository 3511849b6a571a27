package opcode

import (
	"testing"

	"github.com/muhmi/c64anim/geometry"
)

func TestFixedCoreOrder(t *testing.T) {
	geo := geometry.New(geometry.Size{3, 3}, geometry.DefaultMacroBlockSize)
	tbl, err := New(geo)
	if err != nil {
		t.Fatal(err)
	}
	for i, name := range fixedCore {
		if tbl.Name(byte(i)) != name {
			t.Errorf("op %d = %q, want %q", i, tbl.Name(byte(i)), name)
		}
	}
}

func TestFillOpsRegisteredPerSize(t *testing.T) {
	geo := geometry.New(geometry.Size{3, 3}, geometry.DefaultMacroBlockSize)
	tbl, err := New(geo)
	if err != nil {
		t.Fatal(err)
	}
	for _, sz := range geo.OffsetSizes() {
		if _, ok := tbl.nameToByte[FillName(sz)]; !ok {
			t.Errorf("missing FILL%d", sz)
		}
		if _, ok := tbl.nameToByte[FillSameName(sz)]; !ok {
			t.Errorf("missing FILL_SAME%d", sz)
		}
	}
}

func TestAddRLEIdempotent(t *testing.T) {
	geo := geometry.New(geometry.Size{3, 3}, geometry.DefaultMacroBlockSize)
	tbl, err := New(geo)
	if err != nil {
		t.Fatal(err)
	}
	before := tbl.Len()
	b1, err := tbl.AddRLE(4, 9)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := tbl.AddRLE(4, 9)
	if err != nil {
		t.Fatal(err)
	}
	if b1 != b2 {
		t.Errorf("AddRLE not idempotent: %d != %d", b1, b2)
	}
	if tbl.Len() != before+1 {
		t.Errorf("Len() = %d, want %d", tbl.Len(), before+1)
	}
	sz, ok := tbl.IsFillRLE(b1)
	if !ok || sz.Encoded != 4 || sz.Decoded != 9 {
		t.Errorf("IsFillRLE(%d) = %+v, %v", b1, sz, ok)
	}
}

func TestFreezeResetsUnusedOps(t *testing.T) {
	geo := geometry.New(geometry.Size{3, 3}, geometry.DefaultMacroBlockSize)
	tbl, err := New(geo)
	if err != nil {
		t.Fatal(err)
	}
	tbl.MarkUsed(SetBorder)
	tbl.Freeze()
	if tbl.Name(tbl.Byte(SetBorder)) != SetBorder {
		t.Error("used op was reset")
	}
	fillByte := tbl.Byte(FillName(geo.OffsetSizes()[0]))
	if tbl.Name(fillByte) != Error {
		t.Error("unused op should have been reset to ERROR")
	}
}

func TestSpaceExhausted(t *testing.T) {
	geo := geometry.New(geometry.Size{3, 3}, geometry.DefaultMacroBlockSize)
	tbl, err := New(geo)
	if err != nil {
		t.Fatal(err)
	}
	var lastErr error
	for i := 0; i < 256; i++ {
		_, lastErr = tbl.AddRLE(i+1, i+100)
		if lastErr != nil {
			break
		}
	}
	if lastErr == nil {
		t.Fatal("expected ErrSpaceExhausted eventually")
	}
}
