/*
NAME
  search.go

DESCRIPTION
  search.go implements the block-size search (C9): run the packer driver
  across each candidate geometry, keep the minimum-length stream, then
  re-run that geometry once more to produce the final stream (spec.md
  §4.9). A sequential and a goroutine-pool variant are both provided —
  geometries are independent, immutable inputs, so evaluation order never
  affects the result, but the merge (minimum length, declared tie-break
  order) stays deterministic regardless of which finishes first, per
  spec.md §5.
*/

package pack

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/muhmi/c64anim/geometry"
	"github.com/muhmi/c64anim/opcode"
	"github.com/muhmi/c64anim/screen"
)

// Result is the outcome of a block-size search: the winning geometry,
// its frozen opcode table, and the final stream.
type Result struct {
	Geo    *geometry.Geometry
	Table  *opcode.Table
	Stream []byte
}

// candidate pairs a geometry index with its packed stream, for
// deterministic tie-break during a parallel search merge.
type candidate struct {
	index  int
	geo    *geometry.Geometry
	packer *Packer
	stream []byte
	err    error
}

// Search runs Pack across blockSizes (skipping (2,2) when UseColor is
// set, per spec.md §4.9), keeps the minimum-length stream, and re-runs
// that geometry once more for the final result.
func Search(seq screen.Sequence, blockSizes []geometry.Size, macroBlockSize geometry.Size, opts Options, log Logger) (*Result, error) {
	candidates := evalSequential(seq, blockSizes, macroBlockSize, opts, log)
	return finalize(seq, candidates, opts, log)
}

// SearchParallel is Search's goroutine-pool variant: n workers evaluate
// candidate geometries concurrently. The merge is identical to Search's —
// minimum length, ties broken by candidate index (the order blockSizes
// were declared in) — so the result does not depend on scheduling.
func SearchParallel(seq screen.Sequence, blockSizes []geometry.Size, macroBlockSize geometry.Size, opts Options, log Logger, n int) (*Result, error) {
	if n <= 0 {
		n = 1
	}

	jobs := make(chan int, len(blockSizes))
	results := make([]candidate, len(blockSizes))
	var wg sync.WaitGroup

	for w := 0; w < n; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = evalOne(seq, idx, blockSizes[idx], macroBlockSize, opts, log)
			}
		}()
	}
	for idx, bs := range blockSizes {
		if bs == (geometry.Size{X: 2, Y: 2}) && opts.UseColor {
			results[idx] = candidate{index: idx, err: errSkip}
			continue
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	var live []candidate
	for _, c := range results {
		if c.err == errSkip {
			continue
		}
		live = append(live, c)
	}
	return finalize(seq, live, opts, log)
}

var errSkip = errors.New("pack: geometry skipped")

func evalSequential(seq screen.Sequence, blockSizes []geometry.Size, macroBlockSize geometry.Size, opts Options, log Logger) []candidate {
	var out []candidate
	for idx, bs := range blockSizes {
		if bs == (geometry.Size{X: 2, Y: 2}) && opts.UseColor {
			continue
		}
		out = append(out, evalOne(seq, idx, bs, macroBlockSize, opts, log))
	}
	return out
}

func evalOne(seq screen.Sequence, idx int, bs, macroBlockSize geometry.Size, opts Options, log Logger) candidate {
	geo := geometry.New(bs, macroBlockSize)
	packer, err := New(geo, opts, log)
	if err != nil {
		return candidate{index: idx, geo: geo, err: err}
	}
	stream, err := packer.Pack(seq)
	if err != nil {
		return candidate{index: idx, geo: geo, err: err}
	}
	return candidate{index: idx, geo: geo, packer: packer, stream: stream}
}

// finalize picks the minimum-length candidate (ties broken by declared
// index order), then re-runs that geometry once more for the reported
// result, per spec.md §4.9.
func finalize(seq screen.Sequence, candidates []candidate, opts Options, log Logger) (*Result, error) {
	var best *candidate
	for i := range candidates {
		c := &candidates[i]
		if c.err != nil {
			return nil, errors.Wrapf(c.err, "pack: search candidate %d", c.index)
		}
		if best == nil || len(c.stream) < len(best.stream) ||
			(len(c.stream) == len(best.stream) && c.index < best.index) {
			best = c
		}
	}
	if best == nil {
		return nil, errors.New("pack: no candidate geometry evaluated")
	}

	finalPacker, err := New(best.geo, opts, log)
	if err != nil {
		return nil, err
	}
	finalStream, err := finalPacker.Pack(seq)
	if err != nil {
		return nil, err
	}
	finalPacker.Table.Freeze()

	return &Result{Geo: best.geo, Table: finalPacker.Table, Stream: finalStream}, nil
}
