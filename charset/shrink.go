/*
NAME
  shrink.go

DESCRIPTION
  shrink.go implements the per-charset shrink helper (spec.md §4.3):
  when a charset being built by phase A grows past 255 glyphs, it must
  be cut down to 253 (BLANK and FULL are re-added by the caller to reach
  255). The strategy is chosen by the reduction ratio; the aggressive
  O(n^2) similarity-merge tier present in earlier revisions of the
  reference tool is deliberately not implemented (spec.md §4.3: "the
  aggressive ... merge originally present in earlier source revisions is
  not part of this spec").
*/

package charset

import (
	"sort"

	"github.com/muhmi/c64anim/glyph"
)

// weighted pairs a glyph with its usage count and the index of the
// screen it was first seen in, for stable tie-breaking.
type weighted struct {
	g           glyph.Glyph
	count       int
	firstScreen int
}

// shrinkCharset reduces glyphs (already known to be unique and longer
// than target) down to exactly target entries, per the three-tier
// strategy of spec.md §4.3. Ties in usage count are broken by first-seen
// order (stable sort).
func shrinkCharset(glyphs []weighted, target int) []glyph.Glyph {
	if len(glyphs) <= target {
		out := make([]glyph.Glyph, len(glyphs))
		for i, w := range glyphs {
			out[i] = w.g
		}
		return out
	}

	ratio := float64(len(glyphs)) / float64(target)

	byUsage := append([]weighted(nil), glyphs...)
	sort.SliceStable(byUsage, func(i, j int) bool {
		if byUsage[i].count != byUsage[j].count {
			return byUsage[i].count > byUsage[j].count
		}
		return byUsage[i].firstScreen < byUsage[j].firstScreen
	})

	switch {
	case ratio < 1.5:
		// Keep the most-used glyphs outright.
		out := make([]glyph.Glyph, target)
		for i := 0; i < target; i++ {
			out[i] = byUsage[i].g
		}
		return out

	default:
		// 1.5 <= ratio (both the medium and aggressive tiers, per
		// spec.md §4.3: the aggressive tier is "same as the medium
		// tier" in this spec): preserve BLANK and FULL, then fill by
		// descending usage.
		out := make([]glyph.Glyph, 0, target)
		haveBlank, haveFull := false, false
		for _, w := range byUsage {
			if w.g == glyph.BLANK && !haveBlank {
				out = append(out, w.g)
				haveBlank = true
			} else if w.g == glyph.FULL && !haveFull {
				out = append(out, w.g)
				haveFull = true
			}
			if haveBlank && haveFull {
				break
			}
		}
		for _, w := range byUsage {
			if len(out) >= target {
				break
			}
			if w.g == glyph.BLANK || w.g == glyph.FULL {
				continue
			}
			out = append(out, w.g)
		}
		return out[:target]
	}
}
