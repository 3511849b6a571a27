/*
NAME
  eqset.go

DESCRIPTION
  eqset.go implements glyph membership testing under either exact or
  fuzzy (Hamming-threshold) equality. The reference tool threads this
  choice through a process-global hack (GLOBAL_CHAR_EQUALITY_THRESHOLD_HACK);
  here it is an explicit per-call parameter, per the re-architecture note
  in spec.md §9.
*/

package charset

import "github.com/muhmi/c64anim/glyph"

// eqSet tests glyph membership against a fixed list, either by exact
// equality (threshold == 0) or by Hamming distance <= threshold.
type eqSet struct {
	members   []glyph.Glyph
	exact     map[glyph.Glyph]int
	threshold int
}

func newEqSet(members []glyph.Glyph, threshold int) *eqSet {
	s := &eqSet{
		members:   append([]glyph.Glyph(nil), members...),
		exact:     make(map[glyph.Glyph]int, len(members)),
		threshold: threshold,
	}
	for i, g := range members {
		if _, ok := s.exact[g]; !ok {
			s.exact[g] = i
		}
	}
	return s
}

func (s *eqSet) add(g glyph.Glyph) {
	if _, ok := s.exact[g]; ok {
		return
	}
	s.exact[g] = len(s.members)
	s.members = append(s.members, g)
}

// contains reports whether g is equal (under the set's threshold) to any
// member.
func (s *eqSet) contains(g glyph.Glyph) bool {
	return s.indexOf(g) >= 0
}

// indexOf returns the index of the first member exactly equal to g or,
// when there is none and the threshold is positive, the index of the
// first member within the threshold; -1 if neither exists.
func (s *eqSet) indexOf(g glyph.Glyph) int {
	if idx, ok := s.exact[g]; ok {
		return idx
	}
	if s.threshold <= 0 {
		return -1
	}
	for i, m := range s.members {
		if glyph.Distance(g, m) <= s.threshold {
			return i
		}
	}
	return -1
}
