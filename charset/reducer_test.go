package charset

import (
	"testing"

	"github.com/muhmi/c64anim/glyph"
	"github.com/muhmi/c64anim/screen"
)

func glyphAt(n byte) glyph.Glyph {
	var g glyph.Glyph
	g[0] = n
	return g
}

// buildScreen returns a screen whose charset is glyphs and whose first
// len(glyphs) cells cycle through them.
func buildScreen(idx int, glyphs []glyph.Glyph) *screen.Screen {
	scr := screen.NewScreen(idx)
	scr.InitialGlyphs = glyphs
	for i := range scr.ScreenCodes {
		scr.ScreenCodes[i] = byte(i % len(glyphs))
	}
	return scr
}

func TestReduceStaysWithinBudgetWhenFewGlyphs(t *testing.T) {
	glyphs := []glyph.Glyph{glyph.BLANK, glyph.FULL, glyphAt(1), glyphAt(2)}
	seq := screen.Sequence{buildScreen(0, glyphs), buildScreen(1, glyphs), buildScreen(2, glyphs)}

	r := NewReducer(nil)
	res, err := r.Reduce(seq, Config{NMax: 4, StartThreshold: 2})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(res.Charsets) > 4 {
		t.Fatalf("got %d charsets, want <= 4", len(res.Charsets))
	}
	for _, scr := range seq {
		if scr.CharsetID < 0 || scr.CharsetID >= len(res.Charsets) {
			t.Fatalf("screen %d has out-of-range CharsetID %d", scr.Index, scr.CharsetID)
		}
	}
}

func TestReduceSharesSeedAcrossFrames(t *testing.T) {
	shared := []glyph.Glyph{glyph.BLANK, glyph.FULL, glyphAt(1)}
	var seq screen.Sequence
	for i := 0; i < 5; i++ {
		glyphs := append(append([]glyph.Glyph(nil), shared...), glyphAt(byte(10+i)))
		seq = append(seq, buildScreen(i, glyphs))
	}

	r := NewReducer(nil)
	res, err := r.Reduce(seq, Config{NMax: 1, StartThreshold: 2})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(res.Charsets) != 1 {
		t.Fatalf("got %d charsets, want exactly 1 for NMax=1", len(res.Charsets))
	}
	for _, g := range shared {
		if res.Charsets[0].IndexOf(g) < 0 {
			t.Fatalf("shared glyph %v missing from the single merged charset", g)
		}
	}
}

func TestReduceBoundsEveryCharsetSize(t *testing.T) {
	// buildScreen needs >255 unique glyphs in a single frame to force an
	// in-loop shrink.
	unique := make([]glyph.Glyph, 0, 256)
	seen := map[glyph.Glyph]bool{}
	for i := 0; i < 256; i++ {
		var g glyph.Glyph
		g[0] = byte(i % 256)
		g[1] = byte(i / 256)
		if !seen[g] {
			seen[g] = true
			unique = append(unique, g)
		}
	}

	seq := screen.Sequence{buildScreen(0, unique)}
	r := NewReducer(nil)
	res, err := r.Reduce(seq, Config{NMax: 8, StartThreshold: 2})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	for _, c := range res.Charsets {
		if c.Len() > MaxSize {
			t.Fatalf("charset %d has %d glyphs, want <= %d", c.ID, c.Len(), MaxSize)
		}
	}
}

func TestReduceRejectsEmptyInitialGlyphs(t *testing.T) {
	// Mirrors screen.ReadDump's output: real frame data, no per-frame
	// charset. Reduce must fail loudly instead of zeroing the screen.
	scr := screen.NewScreen(0)
	scr.ScreenCodes[0] = 7
	scr.ScreenCodes[1] = 3

	r := NewReducer(nil)
	_, err := r.Reduce(screen.Sequence{scr}, Config{NMax: 4, StartThreshold: 2})
	if err == nil {
		t.Fatal("expected ErrNoInitialGlyphs for a screen with no InitialGlyphs")
	}
	if scr.ScreenCodes[0] != 7 || scr.ScreenCodes[1] != 3 {
		t.Fatal("Reduce must not mutate ScreenCodes when it rejects the input")
	}
}

func TestReduceRejectsOversizedSingleFrame(t *testing.T) {
	unique := make([]glyph.Glyph, 0, 300)
	for i := 0; i < 300; i++ {
		var g glyph.Glyph
		g[0] = byte(i % 256)
		g[1] = byte(i / 256)
		unique = append(unique, g)
	}
	scr := screen.NewScreen(0)
	scr.InitialGlyphs = unique

	r := NewReducer(nil)
	_, err := r.Reduce(screen.Sequence{scr}, Config{NMax: 8, StartThreshold: 2})
	if err == nil {
		t.Fatalf("expected ErrLimitInfeasible for a 300-glyph frame")
	}
}
