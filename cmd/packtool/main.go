/*
NAME
  packtool

DESCRIPTION
  packtool is the CLI driver for the animation packer: it reads a frame
  sequence (frame dump, petmate JSON, or a raster GIF), reduces its
  charsets to a small shared set, searches for the best block geometry,
  packs the result into a bytecode stream, and validates the stream
  against the source sequence before writing it out. Flag/logging/
  lumberjack wiring follows cmd/rv/main.go's shape.
*/

// Package main implements the packtool command.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/muhmi/c64anim/charset"
	"github.com/muhmi/c64anim/config"
	"github.com/muhmi/c64anim/geometry"
	"github.com/muhmi/c64anim/pack"
	"github.com/muhmi/c64anim/screen"
	"github.com/muhmi/c64anim/validate"
)

const version = "v0.1.0"

// Logging configuration, matching cmd/rv/main.go's constants.
const (
	logMaxSize   = 10 // MB
	logMaxBackup = 3
	logMaxAge    = 28 // days
)

const pkg = "packtool: "

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version")
		format      = flag.String("format", "dump", "input format: dump, petmate or raster")
		inPath      = flag.String("in", "", "input file path")
		outPath     = flag.String("out", "out.bin", "output stream file path")
		logPath     = flag.String("log", "packtool.log", "log file path")
		logLevel    = flag.Int("log-level", int(logging.Info), "log verbosity (0=Debug .. 4=Fatal)")

		nMax            = flag.Int("nmax", 4, "maximum number of charsets")
		startThreshold  = flag.Int("threshold", 2, "starting fuzzy-equality threshold for charset reduction")
		maxAllowedError = flag.Int("max-error", 0, "fail if any charset substitution exceeds this Hamming error (0 disables the check)")
		blockSizesFlag  = flag.String("block-sizes", "", "comma-separated WxH candidate block sizes, e.g. 2x2,3x3 (default: the built-in candidate list)")
		macroBlockFlag  = flag.String("macro-block-size", "2x4", "macro-block factor, WxH")
		useColor        = flag.Bool("color", false, "emit the color channel alongside screen codes")
		onlyPerRow      = flag.Bool("only-per-row", false, "force every frame body through the per-row delta strategy")
		rleEnabled      = flag.Bool("rle", true, "enable the full-screen RLE differ candidate")
		parallel        = flag.Int("parallel", 1, "number of geometry-search workers (1 = sequential)")

		rasterThreshold = flag.Int("raster-threshold", 128, "raster ingestion: luminance cutoff for bi-level reduction")
		rasterCleanup   = flag.Int("raster-cleanup", 0, "raster ingestion: max 'on' pixel count in a cell before it's collapsed to blank")
		rasterInverse   = flag.Bool("raster-inverse", false, "raster ingestion: invert the on/off pixel sense")

		charsetPath = flag.String("charset", "", "dump ingestion: path to an external charset file (8 bytes/glyph) every frame shares; required for -format dump")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(int8(*logLevel), io.MultiWriter(fileLog, os.Stderr), true)

	if err := run(log, runOptions{
		format:          *format,
		inPath:          *inPath,
		outPath:         *outPath,
		nMax:            *nMax,
		startThreshold:  *startThreshold,
		maxAllowedError: *maxAllowedError,
		blockSizesFlag:  *blockSizesFlag,
		macroBlockFlag:  *macroBlockFlag,
		useColor:        *useColor,
		onlyPerRow:      *onlyPerRow,
		rleEnabled:      *rleEnabled,
		parallel:        *parallel,
		rasterThreshold: *rasterThreshold,
		rasterCleanup:   *rasterCleanup,
		rasterInverse:   *rasterInverse,
		charsetPath:     *charsetPath,
	}); err != nil {
		log.Fatal(pkg+"failed", "error", err.Error())
	}
}

type runOptions struct {
	format, inPath, outPath string
	nMax, startThreshold     int
	maxAllowedError          int
	blockSizesFlag           string
	macroBlockFlag           string
	useColor, onlyPerRow     bool
	rleEnabled               bool
	parallel                 int
	rasterThreshold          int
	rasterCleanup            int
	rasterInverse            bool
	charsetPath              string
}

func run(log logging.Logger, opts runOptions) error {
	if opts.inPath == "" {
		return fmt.Errorf("%s-in is required", pkg)
	}

	in, err := os.Open(opts.inPath)
	if err != nil {
		return fmt.Errorf("%sopening input: %w", pkg, err)
	}
	defer in.Close()

	log.Info(pkg+"reading input", "format", opts.format, "path", opts.inPath)

	var (
		seq      screen.Sequence
		charsets []*charset.Charset
	)

	switch opts.format {
	case "dump":
		// Frame dumps carry raw screen codes against a charset the caller
		// already knows about (original tool's read_petscii never builds
		// one) — bind it via -charset instead of running it through the
		// reducer, which rejects screens with empty InitialGlyphs
		// (charset.ErrNoInitialGlyphs).
		seq, err = screen.ReadDump(in)
		if err != nil {
			return fmt.Errorf("%sreading dump: %w", pkg, err)
		}
		cs, err := loadCharset(opts.charsetPath)
		if err != nil {
			return err
		}
		for _, scr := range seq {
			scr.CharsetID = cs.ID
		}
		charsets = []*charset.Charset{cs}

	case "raster":
		seq, err = screen.ReadRaster(in, screen.RasterOptions{
			Threshold: byte(opts.rasterThreshold),
			Cleanup:   opts.rasterCleanup,
			Inverse:   opts.rasterInverse,
		})
		if err != nil {
			return fmt.Errorf("%sreading raster: %w", pkg, err)
		}
		seq, charsets, err = reduceCharsets(log, seq, opts)
		if err != nil {
			return err
		}

	case "petmate":
		var petCharsets []screen.PetmateCharset
		seq, petCharsets, err = screen.ReadPetmate(in, nil)
		if err != nil {
			return fmt.Errorf("%sreading petmate: %w", pkg, err)
		}
		for _, pc := range petCharsets {
			cs, err := charset.New(pc.Index, pc.Glyphs)
			if err != nil {
				return fmt.Errorf("%sbuilding charset %q: %w", pkg, pc.Name, err)
			}
			charsets = append(charsets, cs)
		}

	default:
		return fmt.Errorf("%sunknown format %q", pkg, opts.format)
	}

	log.Info(pkg+"reduced charsets", "frames", len(seq), "charsets", len(charsets))

	blockSizes, err := parseSizes(opts.blockSizesFlag)
	if err != nil {
		return err
	}
	if len(blockSizes) == 0 {
		blockSizes = append([]geometry.Size(nil), geometry.CandidateBlockSizes...)
	}
	macroBlockSize, err := parseSize(opts.macroBlockFlag)
	if err != nil {
		return err
	}

	cfg := config.Config{
		NMax:              opts.nMax,
		StartThreshold:    opts.startThreshold,
		MaxAllowedError:   opts.maxAllowedError,
		BlockSizes:        blockSizes,
		MacroBlockSize:    macroBlockSize,
		UseColor:          opts.useColor,
		OnlyPerRowMode:    opts.onlyPerRow,
		RLEEncoderEnabled: opts.rleEnabled,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%sinvalid configuration: %w", pkg, err)
	}

	packOpts := pack.Options{
		UseColor:          cfg.UseColor,
		OnlyPerRowMode:    cfg.OnlyPerRowMode,
		RLEEncoderEnabled: cfg.RLEEncoderEnabled,
		OnlyColorMode:     cfg.OnlyColorMode,
	}

	log.Info(pkg+"searching block geometries", "candidates", len(cfg.BlockSizes), "workers", opts.parallel)

	var result *pack.Result
	if opts.parallel > 1 {
		result, err = pack.SearchParallel(seq, cfg.BlockSizes, cfg.MacroBlockSize, packOpts, packLogAdapter{log}, opts.parallel)
	} else {
		result, err = pack.Search(seq, cfg.BlockSizes, cfg.MacroBlockSize, packOpts, packLogAdapter{log})
	}
	if err != nil {
		return fmt.Errorf("%ssearching geometries: %w", pkg, err)
	}

	log.Info(pkg+"packed stream", "bytes", len(result.Stream), "block-size", result.Geo.BlockSize())

	if err := validate.Run(result.Stream, result.Table, result.Geo, seq, cfg.UseColor); err != nil {
		return fmt.Errorf("%svalidation failed: %w", pkg, err)
	}
	log.Info(pkg + "validation passed")

	if err := os.WriteFile(opts.outPath, result.Stream, 0o644); err != nil {
		return fmt.Errorf("%swriting output: %w", pkg, err)
	}
	log.Info(pkg+"wrote output", "path", opts.outPath)

	return nil
}

// loadCharset reads and parses the external charset file required by
// -format dump (screen.ReadDump never builds one itself).
func loadCharset(path string) (*charset.Charset, error) {
	if path == "" {
		return nil, fmt.Errorf("%s-charset is required for -format dump", pkg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%sreading charset: %w", pkg, err)
	}
	cs, err := charset.FromBytes(0, data)
	if err != nil {
		return nil, fmt.Errorf("%sparsing charset %q: %w", pkg, path, err)
	}
	return cs, nil
}

func reduceCharsets(log logging.Logger, seq screen.Sequence, opts runOptions) (screen.Sequence, []*charset.Charset, error) {
	reducer := charset.NewReducer(reducerLogAdapter{log})
	result, err := reducer.Reduce(seq, charset.Config{
		NMax:            opts.nMax,
		StartThreshold:  opts.startThreshold,
		MaxAllowedError: opts.maxAllowedError,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%sreducing charsets: %w", pkg, err)
	}
	return result.Screens, result.Charsets, nil
}

func parseSize(s string) (geometry.Size, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return geometry.Size{}, fmt.Errorf("%sbad size %q, want WxH", pkg, s)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return geometry.Size{}, fmt.Errorf("%sbad size %q: %w", pkg, s, err)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return geometry.Size{}, fmt.Errorf("%sbad size %q: %w", pkg, s, err)
	}
	return geometry.Size{X: x, Y: y}, nil
}

func parseSizes(s string) ([]geometry.Size, error) {
	if s == "" {
		return nil, nil
	}
	var out []geometry.Size
	for _, tok := range strings.Split(s, ",") {
		sz, err := parseSize(strings.TrimSpace(tok))
		if err != nil {
			return nil, err
		}
		out = append(out, sz)
	}
	return out, nil
}

// packLogAdapter narrows logging.Logger to the Debug-only surface
// pack.Logger needs.
type packLogAdapter struct{ log logging.Logger }

func (a packLogAdapter) Debug(msg string, args ...interface{}) { a.log.Debug(msg, args...) }

// reducerLogAdapter narrows logging.Logger to the Debug/Warning surface
// charset.Logger needs.
type reducerLogAdapter struct{ log logging.Logger }

func (a reducerLogAdapter) Debug(msg string, args ...interface{}) { a.log.Debug(msg, args...) }
func (a reducerLogAdapter) Warning(msg string, args ...interface{}) {
	a.log.Warning(msg, args...)
}
