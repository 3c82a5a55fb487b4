// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package matmul

import (
	"github.com/ajroetker/go-locality/cacheinfo"
	"github.com/ajroetker/go-locality/matrix"
	"github.com/ajroetker/go-locality/workerpool"
)

// ResolveThreads turns a requested thread count into the number of workers
// actually used. requested <= 0 means cacheinfo.HardwareConcurrency. The
// result is clamped to [1, limit], where limit is the number of
// independently schedulable row units (rows, or block rows).
func ResolveThreads(requested, limit int) int {
	threads := requested
	if threads <= 0 {
		threads = cacheinfo.HardwareConcurrency()
	}
	return max(min(threads, limit), 1)
}

// RowRanges splits rows [0, m) into at most threads contiguous ranges of
// ceil(m/threads) rows each. threads is clamped to [1, m]. The last range
// may be shorter; empty ranges are omitted.
func RowRanges(m, threads int) []workerpool.Range {
	if m <= 0 {
		return nil
	}
	threads = max(min(threads, m), 1)
	rowsPerThread := (m + threads - 1) / threads
	ranges := make([]workerpool.Range, 0, threads)
	for t := range threads {
		start := t * rowsPerThread
		end := min(start+rowsPerThread, m)
		if start >= end {
			break
		}
		ranges = append(ranges, workerpool.Range{Start: start, End: end})
	}
	return ranges
}

// BlockRowRanges splits rows [0, m) on block-row boundaries. The
// ceil(m/block) block rows are dealt out ceil(blockRows/threads) at a time,
// so every range starts at a multiple of block and only the last range can
// end mid-block (at m).
func BlockRowRanges(m, block, threads int) []workerpool.Range {
	if m <= 0 {
		return nil
	}
	block = max(block, 1)
	blockRows := (m + block - 1) / block
	threads = max(min(threads, blockRows), 1)
	blocksPerThread := (blockRows + threads - 1) / threads
	step := blocksPerThread * block
	ranges := make([]workerpool.Range, 0, threads)
	for t := range threads {
		start := t * step
		end := min(start+step, m)
		if start >= end {
			break
		}
		ranges = append(ranges, workerpool.Range{Start: start, End: end})
	}
	return ranges
}

// Parallel runs the kernels with their output rows partitioned across
// workers. The zero value spawns fresh goroutines on every call and joins
// them before returning; set Executor to a *workerpool.Pool to reuse
// workers across calls. The choice of executor never changes the partition
// and so never changes the result.
type Parallel struct {
	Executor workerpool.Executor
}

func (p Parallel) executor() workerpool.Executor {
	if p.Executor == nil {
		return workerpool.Spawn{}
	}
	return p.Executor
}

// Naive is the parallel form of the package-level Naive. threads <= 0
// means hardware concurrency; one resolved thread runs Naive directly.
func (p Parallel) Naive(a, b, c *matrix.Matrix, threads int) error {
	if err := validate(a, b, c); err != nil {
		return err
	}
	m, n, pc := a.Rows(), a.Cols(), b.Cols()
	threads = ResolveThreads(threads, m)
	if threads <= 1 {
		return Naive(a, b, c)
	}

	aData, bData, cData := a.Data(), b.Data(), c.Data()
	p.executor().Execute(RowRanges(m, threads), func(start, end int) {
		naiveRows(aData, bData, cData, n, pc, start, end)
	})
	return nil
}

// Transpose is the parallel form of the package-level Transpose. B^T is
// built once on the calling goroutine before any worker starts.
func (p Parallel) Transpose(a, b, c *matrix.Matrix, threads int) error {
	if err := validate(a, b, c); err != nil {
		return err
	}
	m, n, pc := a.Rows(), a.Cols(), b.Cols()
	threads = ResolveThreads(threads, m)
	if threads <= 1 {
		return Transpose(a, b, c)
	}

	bt := transposed(b)
	aData, btData, cData := a.Data(), bt.Data(), c.Data()
	p.executor().Execute(RowRanges(m, threads), func(start, end int) {
		transposeRows(aData, btData, cData, n, pc, start, end)
	})
	return nil
}

// Blocked is the parallel form of the package-level Blocked. Work is split
// on block-row boundaries (see BlockRowRanges) and the thread count is
// clamped to the number of block rows.
//
// If blockSize <= 0 the tile edge comes from cacheinfo.L1BlockSize, which
// differs from the line-size heuristic the sequential Blocked uses by
// default.
func (p Parallel) Blocked(a, b, c *matrix.Matrix, blockSize, threads int) error {
	if err := validate(a, b, c); err != nil {
		return err
	}
	if blockSize <= 0 {
		blockSize = cacheinfo.L1BlockSize()
	}
	m, n, pc := a.Rows(), a.Cols(), b.Cols()
	blockRows := (m + blockSize - 1) / blockSize
	threads = ResolveThreads(threads, blockRows)
	if threads <= 1 {
		return Blocked(a, b, c, blockSize)
	}

	c.Zero()
	aData, bData, cData := a.Data(), b.Data(), c.Data()
	p.executor().Execute(BlockRowRanges(m, blockSize, threads), func(start, end int) {
		blockedRows(aData, bData, cData, n, pc, blockSize, start, end)
	})
	return nil
}

// NaiveParallel runs Parallel{}.Naive: fresh goroutines per call.
func NaiveParallel(a, b, c *matrix.Matrix, threads int) error {
	return Parallel{}.Naive(a, b, c, threads)
}

// TransposeParallel runs Parallel{}.Transpose: fresh goroutines per call.
func TransposeParallel(a, b, c *matrix.Matrix, threads int) error {
	return Parallel{}.Transpose(a, b, c, threads)
}

// BlockedParallel runs Parallel{}.Blocked: fresh goroutines per call.
func BlockedParallel(a, b, c *matrix.Matrix, blockSize, threads int) error {
	return Parallel{}.Blocked(a, b, c, blockSize, threads)
}
