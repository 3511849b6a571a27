package screen_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muhmi/c64anim/charset"
	"github.com/muhmi/c64anim/glyph"
	"github.com/muhmi/c64anim/screen"
)

func TestReadDumpRoundTrip(t *testing.T) {
	var src strings.Builder
	src.WriteString("unsigned char frame0001[]={// border,bg,chars,colors\n")
	src.WriteString("2, 6,\n")
	for i := 0; i < 2*screen.Cells; i += 40 {
		for j := 0; j < 40; j++ {
			src.WriteString("0,")
		}
		src.WriteString("\n")
	}
	src.WriteString("};\n")

	seq, err := screen.ReadDump(strings.NewReader(src.String()))
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if len(seq) != 1 {
		t.Fatalf("len(seq) = %d, want 1", len(seq))
	}
	if seq[0].Index != 1 {
		t.Errorf("Index = %d, want 1", seq[0].Index)
	}
	if *seq[0].Border != 2 || *seq[0].Background != 6 {
		t.Errorf("Border/Background = %d/%d, want 2/6", *seq[0].Border, *seq[0].Background)
	}

	var out bytes.Buffer
	if err := screen.WriteDump(&out, seq); err != nil {
		t.Fatalf("WriteDump: %v", err)
	}
	roundTripped, err := screen.ReadDump(&out)
	if err != nil {
		t.Fatalf("ReadDump(WriteDump(seq)): %v", err)
	}
	if *roundTripped[0].Border != 2 || *roundTripped[0].Background != 6 {
		t.Errorf("round-tripped Border/Background = %d/%d, want 2/6", *roundTripped[0].Border, *roundTripped[0].Background)
	}
}

// TestReadDumpBindsExternalCharset exercises the composition
// cmd/packtool performs for -format dump: ReadDump's output carries no
// InitialGlyphs of its own, so the caller must bind an external charset
// by CharsetID rather than route the sequence through charset.Reducer.
func TestReadDumpBindsExternalCharset(t *testing.T) {
	var src strings.Builder
	src.WriteString("unsigned char frame0000[]={// border,bg,chars,colors\n")
	src.WriteString("0, 0,\n")
	for i := 0; i < screen.Cells; i += 40 {
		for j := 0; j < 40; j++ {
			if i == 0 && j == 0 {
				src.WriteString("1,")
			} else {
				src.WriteString("0,")
			}
		}
		src.WriteString("\n")
	}
	for i := 0; i < screen.Cells; i += 40 {
		for j := 0; j < 40; j++ {
			src.WriteString("0,")
		}
		src.WriteString("\n")
	}
	src.WriteString("};\n")

	seq, err := screen.ReadDump(strings.NewReader(src.String()))
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if seq[0].InitialGlyphs != nil {
		t.Fatal("ReadDump must leave InitialGlyphs nil; charset binding is the caller's job")
	}

	a := glyph.Glyph{0xff, 0, 0, 0, 0, 0, 0, 0}
	cs, err := charset.New(0, []glyph.Glyph{glyph.BLANK, a})
	if err != nil {
		t.Fatalf("charset.New: %v", err)
	}
	for _, scr := range seq {
		scr.CharsetID = cs.ID
	}

	if seq[0].CharsetID != cs.ID {
		t.Fatalf("CharsetID = %d, want %d", seq[0].CharsetID, cs.ID)
	}
	if got := cs.Glyphs[seq[0].ScreenCodes[0]]; got != a {
		t.Fatalf("resolved glyph = %v, want %v", got, a)
	}
}

func TestReadDumpRejectsMalformed(t *testing.T) {
	_, err := screen.ReadDump(strings.NewReader("not a frame dump"))
	if err == nil {
		t.Fatal("expected ErrMalformedDump")
	}
}
