package pack_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/muhmi/c64anim/geometry"
	"github.com/muhmi/c64anim/opcode"
	"github.com/muhmi/c64anim/pack"
	"github.com/muhmi/c64anim/screen"
	"github.com/muhmi/c64anim/validate"
)

func newTestGeo() *geometry.Geometry {
	return geometry.New(geometry.Size{X: 2, Y: 2}, geometry.DefaultMacroBlockSize)
}

func newTestPacker(t *testing.T, opts pack.Options) *pack.Packer {
	t.Helper()
	p, err := pack.New(newTestGeo(), opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

// TestScenarioSingleConstantFrame is spec.md §8 scenario 1.
func TestScenarioSingleConstantFrame(t *testing.T) {
	scr := screen.NewScreen(0)
	scr.CharsetID = 0
	p := newTestPacker(t, pack.Options{RLEEncoderEnabled: true})

	stream, err := p.Pack(screen.Sequence{scr})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	want := []byte{
		p.Table.Byte(opcode.SetCharset), 0,
		p.Table.Byte(opcode.Clear), 0,
		p.Table.Byte(opcode.FrameEnd),
		p.Table.Byte(opcode.Restart),
	}
	if diff := cmp.Diff(want, stream); diff != "" {
		t.Fatalf("stream mismatch (-want +got):\n%s", diff)
	}
}

// TestPackerRoundTrip is P4/P6: the validator reproduces screen codes
// exactly, and packing twice yields byte-identical streams.
func TestPackerRoundTrip(t *testing.T) {
	var seq screen.Sequence
	s0 := screen.NewScreen(0)
	seq = append(seq, s0)

	s1 := screen.NewScreen(1)
	s1.ScreenCodes = s0.ScreenCodes
	s1.ScreenCodes[0] = 1
	seq = append(seq, s1)

	s2 := screen.NewScreen(2)
	s2.ScreenCodes = s1.ScreenCodes
	for i := 500; i < 1000; i++ {
		s2.ScreenCodes[i] = 9
	}
	seq = append(seq, s2)

	opts := pack.Options{RLEEncoderEnabled: true}
	p1 := newTestPacker(t, opts)
	stream1, err := p1.Pack(seq)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	p2 := newTestPacker(t, opts)
	stream2, err := p2.Pack(seq)
	if err != nil {
		t.Fatalf("Pack (2nd run): %v", err)
	}
	if diff := cmp.Diff(stream1, stream2); diff != "" {
		t.Fatalf("P6 idempotent repack violated (-first +second):\n%s", diff)
	}

	if err := validate.Run(stream1, p1.Table, p1.Geo, seq, false); err != nil {
		t.Fatalf("P4 validator round-trip: %v", err)
	}
}

// TestPackerRoundTripColor is P5: color channel round-trips too.
func TestPackerRoundTripColor(t *testing.T) {
	var seq screen.Sequence
	s0 := screen.NewScreen(0)
	seq = append(seq, s0)

	s1 := screen.NewScreen(1)
	s1.ColorData[10] = 3
	seq = append(seq, s1)

	opts := pack.Options{UseColor: true, RLEEncoderEnabled: true}
	p := newTestPacker(t, opts)
	stream, err := p.Pack(seq)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if err := validate.Run(stream, p.Table, p.Geo, seq, true); err != nil {
		t.Fatalf("P5 validator round-trip (color): %v", err)
	}
}

// TestScenarioFullScreenRLEWins is spec.md §8 scenario 3.
func TestScenarioFullScreenRLEWins(t *testing.T) {
	var seq screen.Sequence
	s0 := screen.NewScreen(0)
	seq = append(seq, s0)

	s1 := screen.NewScreen(1)
	for i := 500; i < 1000; i++ {
		s1.ScreenCodes[i] = 1
	}
	seq = append(seq, s1)

	p := newTestPacker(t, pack.Options{RLEEncoderEnabled: true})
	stream, err := p.Pack(seq)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if err := validate.Run(stream, p.Table, p.Geo, seq, false); err != nil {
		t.Fatalf("validator: %v", err)
	}

	body, err := pack.Diff(seq.PrevCodes(1), s1.ScreenCodes, p.Geo, p.Table, pack.DiffOptions{RLEEncoderEnabled: true})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if body[0] != p.Table.Byte(opcode.FullScreenRLE) {
		t.Fatalf("expected full-screen RLE to win, got first byte %d", body[0])
	}
}

// TestValidatorCatchesCorruption is spec.md §8 scenario 5.
func TestValidatorCatchesCorruption(t *testing.T) {
	var seq screen.Sequence
	s0 := screen.NewScreen(0)
	seq = append(seq, s0)
	s1 := screen.NewScreen(1)
	s1.ScreenCodes[5] = 7
	seq = append(seq, s1)

	p := newTestPacker(t, pack.Options{RLEEncoderEnabled: true})
	stream, err := p.Pack(seq)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	corrupted := append([]byte(nil), stream...)
	for i := range corrupted {
		if corrupted[i] == 7 {
			corrupted[i] = 8
			break
		}
	}

	if err := validate.Run(corrupted, p.Table, p.Geo, seq, false); err == nil {
		t.Fatalf("expected ValidatorMismatch on corrupted stream")
	}
}

// TestOpcodeBudgetNeverExceeded is P8.
func TestOpcodeBudgetNeverExceeded(t *testing.T) {
	p := newTestPacker(t, pack.Options{RLEEncoderEnabled: true})
	if p.Table.Len() > opcode.MaxOpCodes {
		t.Fatalf("opcode table has %d live ops, want <= %d", p.Table.Len(), opcode.MaxOpCodes)
	}
}
