package glyph

import "testing"

func TestDistanceSymmetryAndRange(t *testing.T) {
	samples := []Glyph{
		BLANK,
		FULL,
		{0xff, 0x00, 0xff, 0x00, 0xff, 0x00, 0xff, 0x00},
		{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80},
	}
	for _, a := range samples {
		if d := Distance(a, a); d != 0 {
			t.Errorf("Distance(%v,%v) = %d, want 0", a, a, d)
		}
		for _, b := range samples {
			dab := Distance(a, b)
			dba := Distance(b, a)
			if dab != dba {
				t.Errorf("Distance(a,b)=%d != Distance(b,a)=%d", dab, dba)
			}
			if dab < 0 || dab > 64 {
				t.Errorf("Distance out of range: %d", dab)
			}
		}
	}
}

func TestByteDistanceSpotChecks(t *testing.T) {
	cases := []struct {
		a, b byte
		want int
	}{
		{0, 0, 0},
		{0xFF, 0x00, 8},
		{0b10101010, 0b01010101, 8},
		{0b11110000, 0b00001111, 8},
		{0b11111111, 0b11111110, 1},
		{0x0F, 0x00, 4},
	}
	for _, c := range cases {
		if got := ByteDistance(c.a, c.b); got != c.want {
			t.Errorf("ByteDistance(%#02x,%#02x) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestBlankAndFullAreOpposite(t *testing.T) {
	if d := Distance(BLANK, FULL); d != 64 {
		t.Errorf("Distance(BLANK,FULL) = %d, want 64", d)
	}
}
