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

// Package bench times the matmul kernels against each other and checks
// that every variant produces the same product.
//
// Run compares each kernel's sequential form with its parallel form at one
// size. Profile walks several sizes and records every phase (allocation,
// initialization, each multiplication, release) in a profiler.Profiler.
// Divergence between variants is logged, not returned: both are
// measurement tools and a numeric mismatch is a diagnostic.
package bench

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/ajroetker/go-locality/matmul"
	"github.com/ajroetker/go-locality/matrix"
)

// Result is the outcome for one kernel in Run.
type Result struct {
	Method       matmul.Method
	SequentialMs float64
	ConcurrentMs float64
	Speedup      float64
	Threads      int

	// MaxDiff is the largest absolute element difference between the
	// sequential and concurrent outputs.
	MaxDiff float64

	// ReferenceDiff is the largest difference against gonum; only set when
	// Config.VerifyReference is on.
	ReferenceDiff float64
}

// Diverged reports whether the sequential and concurrent outputs
// disagreed beyond tol.
func (r Result) Diverged(tol float64) bool {
	return r.MaxDiff > tol
}

func maxAbsDiff(a, b *matrix.Matrix) float64 {
	return floats.Distance(a.Data(), b.Data(), math.Inf(1))
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// Run benchmarks every kernel on one pair of random cfg.Size x cfg.Size
// matrices, averaging cfg.Iterations sequential and then cfg.Iterations
// concurrent calls. Inputs are generated once from cfg.Seed.
func Run(cfg Config) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	size := cfg.Size
	threads := cfg.threads()
	block := cfg.blockSize()
	klog.V(1).Infof("bench: size=%d iterations=%d threads=%d block=%d", size, cfg.Iterations, threads, block)

	src := cfg.source()
	a := matrix.MustNew(size, size)
	b := matrix.MustNew(size, size)
	a.FillRandom(src)
	b.FillRandom(src)
	cSeq := matrix.MustNew(size, size)
	cConc := matrix.MustNew(size, size)

	var reference *matrix.Matrix
	if cfg.VerifyReference {
		reference = matrix.MustNew(size, size)
		reference.Dense().Mul(a.Dense(), b.Dense())
	}

	par := matmul.Parallel{Executor: cfg.Executor}
	results := make([]Result, 0, len(matmul.Methods))
	for _, m := range matmul.Methods {
		r := Result{Method: m, Threads: threads}

		for iter := range cfg.Iterations {
			cSeq.Zero()
			start := time.Now()
			if err := matmul.Multiply(m, a, b, cSeq, block); err != nil {
				return nil, fmt.Errorf("bench: sequential %s: %w", m, err)
			}
			r.SequentialMs += elapsedMs(start)
			klog.V(2).Infof("bench: %s sequential iteration %d done", m, iter)
		}
		r.SequentialMs /= float64(cfg.Iterations)

		for iter := range cfg.Iterations {
			cConc.Zero()
			start := time.Now()
			if err := par.Multiply(m, a, b, cConc, block, threads); err != nil {
				return nil, fmt.Errorf("bench: concurrent %s: %w", m, err)
			}
			r.ConcurrentMs += elapsedMs(start)
			klog.V(2).Infof("bench: %s concurrent iteration %d done", m, iter)
		}
		r.ConcurrentMs /= float64(cfg.Iterations)

		if r.ConcurrentMs > 0 {
			r.Speedup = r.SequentialMs / r.ConcurrentMs
		}

		r.MaxDiff = maxAbsDiff(cSeq, cConc)
		if r.Diverged(cfg.Tolerance) {
			klog.Warningf("%s concurrent result differs from sequential (max diff: %g)", titled(m), r.MaxDiff)
		}
		if reference != nil {
			r.ReferenceDiff = maxAbsDiff(cSeq, reference)
			if !mat.EqualApprox(cSeq.Dense(), reference.Dense(), cfg.Tolerance) {
				klog.Warningf("%s result differs from gonum reference (max diff: %g)", titled(m), r.ReferenceDiff)
			}
		}

		klog.V(1).Infof("bench: %s sequential=%.3fms concurrent=%.3fms speedup=%.2fx",
			m, r.SequentialMs, r.ConcurrentMs, r.Speedup)
		results = append(results, r)
	}
	return results, nil
}
