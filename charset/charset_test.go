package charset_test

import (
	"testing"

	"github.com/muhmi/c64anim/charset"
	"github.com/muhmi/c64anim/glyph"
)

func TestNewRejectsTooManyGlyphs(t *testing.T) {
	glyphs := make([]glyph.Glyph, charset.MaxSize+1)
	_, err := charset.New(0, glyphs)
	if err == nil {
		t.Fatal("expected ErrTooManyGlyphs")
	}
}

func TestIndexOfAndClosest(t *testing.T) {
	a := glyph.Glyph{0xff, 0, 0, 0, 0, 0, 0, 0}
	b := glyph.Glyph{0, 0xff, 0, 0, 0, 0, 0, 0}
	cs, err := charset.New(0, []glyph.Glyph{glyph.BLANK, a, b})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if idx := cs.IndexOf(a); idx != 1 {
		t.Errorf("IndexOf(a) = %d, want 1", idx)
	}
	if idx := cs.IndexOf(glyph.FULL); idx != -1 {
		t.Errorf("IndexOf(FULL) = %d, want -1", idx)
	}

	near := glyph.Glyph{0xff, 0, 0, 0, 0, 0, 0, 1}
	idx, dist := cs.Closest(near)
	if idx != 1 {
		t.Errorf("Closest(near) index = %d, want 1", idx)
	}
	if dist != 1 {
		t.Errorf("Closest(near) distance = %d, want 1", dist)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	a := glyph.Glyph{1, 2, 3, 4, 5, 6, 7, 8}
	cs, err := charset.New(5, []glyph.Glyph{glyph.BLANK, a, glyph.FULL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	back, err := charset.FromBytes(5, cs.Bytes())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if back.Len() != cs.Len() {
		t.Fatalf("Len mismatch: %d != %d", back.Len(), cs.Len())
	}
	for i := range cs.Glyphs {
		if cs.Glyphs[i] != back.Glyphs[i] {
			t.Errorf("glyph %d mismatch: %v != %v", i, cs.Glyphs[i], back.Glyphs[i])
		}
	}
}

func TestFromBytesRejectsBadLength(t *testing.T) {
	_, err := charset.FromBytes(0, []byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected an error for a non-multiple-of-8 byte length")
	}
}
