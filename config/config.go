/*
NAME
  config.go

DESCRIPTION
  config.go defines the plain Config struct the pipeline is parameterized
  by. No YAML or CLI parsing lives here — that is cmd/packtool's job —
  matching revid/config/config.go's shape (a struct of tunables plus a
  Validate method, no file-format awareness).
*/

// Package config defines the tunables the charset reducer, packer and
// block-size search are parameterized by.
package config

import (
	"github.com/pkg/errors"

	"github.com/muhmi/c64anim/geometry"
)

// Config holds every knob spec.md names plus the supplemented features
// from original_source (animation slowdown, color-memory init between
// source animations) and the resolved MaxAllowedError open question.
type Config struct {
	// NMax is the charset budget (spec.md §4.3 phase B termination).
	NMax int

	// StartThreshold is phase B's initial fuzzy-equality threshold
	// (default 2, valid range 1..7 per spec.md §4.3).
	StartThreshold int

	// MaxAllowedError resolves spec.md §9's open question: when > 0, a
	// phase-A substitution whose Hamming error exceeds it fails the run
	// instead of being silently accepted. 0 preserves the original
	// tool's unbounded, log-only degradation.
	MaxAllowedError int

	// BlockSizes are the candidate geometries the search (C9) tries, in
	// order. Defaults to geometry.CandidateBlockSizes.
	BlockSizes []geometry.Size

	// MacroBlockSize is the macro-block factor (default (2,4)).
	MacroBlockSize geometry.Size

	// UseColor enables the color-channel pass (SET_COLOR_MODE /
	// SET_SCREEN_MODE) and excludes block size (2,2) from the search.
	UseColor bool

	// OnlyColorMode suppresses screen-code body emission entirely
	// (spec.md §4.7 step 4's "color-only mode").
	OnlyColorMode bool

	// OnlyPerRowMode forces every frame body through the per-row delta
	// strategy.
	OnlyPerRowMode bool

	// RLEEncoderEnabled toggles the full-screen RLE candidate.
	RLEEncoderEnabled bool

	// InitColorBetweenAnims and AnimChangeScreenIndexes reproduce
	// INIT_COLOR_MEM_BETWEEN_ANIMATIONS / ANIM_CHANGE_SCREEN_INDEXES.
	InitColorBetweenAnims   bool
	AnimChangeScreenIndexes map[int]bool

	// AnimSlowdownTable reproduces ANIM_SLOWDOWN_TABLE: cycles modulo
	// its length across frames, emitting SET_ANIM_SLOWDOWN each frame.
	AnimSlowdownTable []byte
}

// Default returns a Config with the reference tool's defaults.
func Default() Config {
	return Config{
		NMax:              4,
		StartThreshold:    2,
		BlockSizes:        append([]geometry.Size(nil), geometry.CandidateBlockSizes...),
		MacroBlockSize:    geometry.DefaultMacroBlockSize,
		RLEEncoderEnabled: true,
	}
}

// Validate checks the invariants the rest of the pipeline assumes hold.
func (c Config) Validate() error {
	if c.NMax <= 0 {
		return errors.Errorf("config: NMax must be positive, got %d", c.NMax)
	}
	if c.StartThreshold < 1 || c.StartThreshold > 7 {
		return errors.Errorf("config: StartThreshold must be in 1..7, got %d", c.StartThreshold)
	}
	if len(c.BlockSizes) == 0 {
		return errors.New("config: BlockSizes must not be empty")
	}
	return nil
}
