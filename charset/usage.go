package charset

import "github.com/muhmi/c64anim/glyph"

// UsageLocation names one cell a glyph was used in: a particular screen,
// row and column. Held externally from Glyph (which is a plain value
// type) per the re-architecture note in spec.md §9.
type UsageLocation struct {
	ScreenIndex, Row, Col int
}

// usageInfo tracks, for one glyph discovered during phase A, every cell
// it was used in and the index of the screen it was first seen in (used
// to break usage-count ties deterministically, spec.md §4.3).
type usageInfo struct {
	glyph       glyph.Glyph
	locations   []UsageLocation
	screens     map[int]bool
	firstScreen int
}

func (u *usageInfo) useCount() int { return len(u.locations) }

// glyphTable walks screens once, in order, building one usageInfo per
// distinct glyph in insertion (first-seen) order. Determinism requirement
// (spec.md §5): this is the single place the reducer turns per-screen
// charsets into a globally ordered structure.
type glyphTable struct {
	order []glyph.Glyph
	info  map[glyph.Glyph]*usageInfo
}

func newGlyphTable() *glyphTable {
	return &glyphTable{info: make(map[glyph.Glyph]*usageInfo)}
}

func (t *glyphTable) add(g glyph.Glyph, screenIdx, row, col int) {
	info, ok := t.info[g]
	if !ok {
		info = &usageInfo{glyph: g, screens: make(map[int]bool), firstScreen: screenIdx}
		t.info[g] = info
		t.order = append(t.order, g)
	}
	info.locations = append(info.locations, UsageLocation{screenIdx, row, col})
	info.screens[screenIdx] = true
}

// ordered returns the distinct glyphs in first-seen order.
func (t *glyphTable) ordered() []glyph.Glyph { return t.order }

func (t *glyphTable) usage(g glyph.Glyph) *usageInfo { return t.info[g] }
