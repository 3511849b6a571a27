/*
NAME
  reducer.go

DESCRIPTION
  reducer.go implements the two-phase charset reducer of spec.md §4.3:
  phase A (exact merge, building a seed charset shared by every frame
  and growing per-frame charsets from it) and phase B (raising the
  fuzzy-equality threshold and re-running phase A until the charset
  count is within budget).
*/

package charset

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/muhmi/c64anim/glyph"
	"github.com/muhmi/c64anim/screen"
)

// seedCap is the maximum size of the seed charset built from the glyphs
// shared by every frame plus the most-used remaining glyphs.
const seedCap = 31

// shrinkTarget is the size a charset is shrunk to when it exceeds 255
// entries (BLANK and FULL are then re-added to reach 255).
const shrinkTarget = 253

// ErrLimitInfeasible is returned when a single frame's own glyph set
// cannot be represented even as one full charset.
var ErrLimitInfeasible = errors.New("charset: limit infeasible")

// ErrNoInitialGlyphs is returned when a screen reaches Reduce with no
// per-frame charset to reduce. This is the normal state for sequences
// that already carry an externally-bound charset (e.g. screen.ReadDump
// output bound via CharsetID) — such sequences must never be passed to
// Reduce, since every per-cell guard here degrades silently instead of
// failing when InitialGlyphs is empty.
var ErrNoInitialGlyphs = errors.New("charset: screen has no InitialGlyphs to reduce")

// Diagnostics reports the bounded, non-fatal degradation the reducer
// performed: how many frames needed a closest-glyph substitution instead
// of an exact match, and the largest Hamming error any single
// substitution introduced.
type Diagnostics struct {
	AffectedFrames int
	MaxError       int
	Threshold      int // the fuzzy-equality threshold phase B settled on, 0 if phase A alone sufficed.
}

// Config mirrors the reducer-relevant fields of package config.Config,
// kept narrow here to avoid a dependency from charset on config.
type Config struct {
	NMax           int
	StartThreshold int
	MaxAllowedError int // 0 disables the guard (original tool's unbounded behavior).
}

// Result is the output of Reduce: the (mutated in place) screens, the
// charset arena, and the degradation diagnostics.
type Result struct {
	Screens     screen.Sequence
	Charsets    []*Charset
	Diagnostics Diagnostics
}

// Reducer runs the charset reduction pipeline.
type Reducer struct {
	log Logger
}

// Logger is the narrow logging surface the reducer needs, satisfied by
// github.com/ausocean/utils/logging.Logger.
type Logger interface {
	Debug(msg string, args ...interface{})
	Warning(msg string, args ...interface{})
}

// NewReducer builds a Reducer. log may be nil, in which case diagnostics
// are only returned, never logged.
func NewReducer(log Logger) *Reducer {
	return &Reducer{log: log}
}

func (r *Reducer) debugf(msg string, args ...interface{}) {
	if r.log != nil {
		r.log.Debug(msg, args...)
	}
}

func (r *Reducer) warnf(msg string, args ...interface{}) {
	if r.log != nil {
		r.log.Warning(msg, args...)
	}
}

// Reduce rewrites seq in place so every screen's CharsetID refers to one
// of at most cfg.NMax returned Charsets, per spec.md §4.3.
func (r *Reducer) Reduce(seq screen.Sequence, cfg Config) (*Result, error) {
	for _, scr := range seq {
		if len(scr.InitialGlyphs) == 0 {
			return nil, errors.Wrapf(ErrNoInitialGlyphs, "frame %d", scr.Index)
		}
		if len(scr.InitialGlyphs) > MaxSize {
			return nil, errors.Wrapf(ErrLimitInfeasible, "frame %d has %d glyphs", scr.Index, len(scr.InitialGlyphs))
		}
	}

	attempt, err := mergeCharsets(seq, 0)
	if err != nil {
		return nil, err
	}

	threshold := cfg.StartThreshold
	if threshold <= 0 {
		threshold = 2
	}

	for len(attempt.charsets) > cfg.NMax {
		r.debugf("compressing charsets, threshold=%d charsets=%d", threshold, len(attempt.charsets))
		attempt, err = mergeCharsets(seq, threshold)
		if err != nil {
			return nil, err
		}
		attempt.diagnostics.Threshold = threshold
		threshold++
	}

	if attempt.diagnostics.AffectedFrames > 0 {
		r.warnf("charset reduction degraded %d frame(s), max Hamming error %d",
			attempt.diagnostics.AffectedFrames, attempt.diagnostics.MaxError)
		if cfg.MaxAllowedError > 0 && attempt.diagnostics.MaxError > cfg.MaxAllowedError {
			return nil, errors.Wrapf(ErrLimitInfeasible,
				"max substitution error %d exceeds MaxAllowedError %d", attempt.diagnostics.MaxError, cfg.MaxAllowedError)
		}
	}

	arena := make([]*Charset, len(attempt.charsets))
	for i, glyphs := range attempt.charsets {
		c, err := New(i, glyphs)
		if err != nil {
			return nil, err
		}
		arena[i] = c
	}

	for i, scr := range seq {
		scr.CharsetID = attempt.screenCharsetIdx[i]
		scr.InitialGlyphs = nil
	}

	return &Result{Screens: seq, Charsets: arena, Diagnostics: attempt.diagnostics}, nil
}

type mergeAttempt struct {
	charsets         [][]glyph.Glyph
	screenCharsetIdx []int
	diagnostics      Diagnostics
}

// mergeCharsets implements spec.md §4.3 phase A. threshold == 0 means
// exact equality; threshold > 0 widens equality to Hamming distance <=
// threshold, scoped to this single call (never a package global, per the
// re-architecture note in spec.md §9).
func mergeCharsets(seq screen.Sequence, threshold int) (*mergeAttempt, error) {
	table := newGlyphTable()
	for _, scr := range seq {
		for row := 0; row < 25; row++ {
			for col := 0; col < 40; col++ {
				off := row*40 + col
				code := int(scr.ScreenCodes[off])
				if code >= len(scr.InitialGlyphs) {
					continue
				}
				table.add(scr.InitialGlyphs[code], scr.Index, row, col)
			}
		}
	}

	// Glyphs present in every frame form the seed charset's mandatory
	// core.
	var seed []glyph.Glyph
	for _, g := range table.ordered() {
		if len(table.usage(g).screens) == len(seq) {
			seed = append(seed, g)
		}
	}

	byUsage := append([]glyph.Glyph(nil), table.ordered()...)
	sort.SliceStable(byUsage, func(i, j int) bool {
		return table.usage(byUsage[i]).useCount() > table.usage(byUsage[j]).useCount()
	})

	seedSet := newEqSet(seed, threshold)
	for _, g := range byUsage {
		if len(seed) >= seedCap {
			break
		}
		if !seedSet.contains(g) {
			seed = append(seed, g)
			seedSet.add(g)
		}
	}

	var charsets [][]glyph.Glyph
	screenCharsetIdx := make([]int, len(seq))

	charset := append([]glyph.Glyph(nil), seed...)
	cs := newEqSet(charset, threshold)

	diag := Diagnostics{}

	for i, scr := range seq {
		// Simulate adding this frame's glyphs; if that would exceed 255,
		// close the in-progress charset and restart from the seed.
		missing := 0
		for _, g := range scr.InitialGlyphs {
			if !cs.contains(g) {
				missing++
			}
		}
		if len(charset)+missing > MaxSize-1 {
			charsets = append(charsets, charset)
			charset = append([]glyph.Glyph(nil), seed...)
			cs = newEqSet(charset, threshold)
		}

		for _, g := range scr.InitialGlyphs {
			if !cs.contains(g) {
				charset = append(charset, g)
				cs.add(g)
			}
		}

		if len(charset) > MaxSize-1 {
			weights := make([]weighted, len(charset))
			for j, g := range charset {
				u := table.usage(g)
				count, first := 0, i
				if u != nil {
					count, first = u.useCount(), u.firstScreen
				}
				weights[j] = weighted{g: g, count: count, firstScreen: first}
			}
			shrunk := shrinkCharset(weights, shrinkTarget)
			charset = append([]glyph.Glyph{glyph.BLANK, glyph.FULL}, shrunk...)
			cs = newEqSet(charset, threshold)
		}

		screenCharsetIdx[i] = len(charsets)

		remapped, degraded, maxErr := remapScreen(scr, charset, threshold)
		scr.ScreenCodes = remapped
		if degraded {
			diag.AffectedFrames++
			if maxErr > diag.MaxError {
				diag.MaxError = maxErr
			}
		}
	}
	charsets = append(charsets, charset)

	return &mergeAttempt{charsets: charsets, screenCharsetIdx: screenCharsetIdx, diagnostics: diag}, nil
}

// remapScreen rewrites scr's screen codes against newCharset, using an
// exact match when available and the closest-glyph fallback otherwise
// (spec.md §4.3 "Closest-glyph fallback"). It also rewrites
// scr.InitialGlyphs to newCharset so the next phase-B attempt (if any)
// starts from this round's result, matching the reference tool's
// in-place mutation across successive compress_charsets calls.
func remapScreen(scr *screen.Screen, newCharset []glyph.Glyph, threshold int) (codes [screen.Cells]byte, degraded bool, maxErr int) {
	eq := newEqSet(newCharset, threshold)

	for off, code := range scr.ScreenCodes {
		if int(code) >= len(scr.InitialGlyphs) {
			continue
		}
		g := scr.InitialGlyphs[code]
		if idx := eq.indexOf(g); idx >= 0 {
			codes[off] = byte(idx)
			continue
		}
		idx, dist := closestIn(newCharset, g)
		codes[off] = byte(idx)
		degraded = true
		if dist > maxErr {
			maxErr = dist
		}
	}

	scr.InitialGlyphs = newCharset
	return codes, degraded, maxErr
}

func closestIn(cs []glyph.Glyph, g glyph.Glyph) (int, int) {
	best, bestDist := 0, 65
	for i, c := range cs {
		d := glyph.Distance(g, c)
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return best, bestDist
}
