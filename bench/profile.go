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

package bench

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"k8s.io/klog/v2"

	"github.com/ajroetker/go-locality/matmul"
	"github.com/ajroetker/go-locality/matrix"
	"github.com/ajroetker/go-locality/profiler"
)

// ProfileThreads returns the thread counts a profile run measures: 1, 2
// and the configured count, without repeats.
func (c Config) ProfileThreads() []int {
	threads := []int{1, 2}
	if t := c.threads(); !slices.Contains(threads, t) {
		threads = append(threads, t)
	}
	return threads
}

// SequentialLabel is the profiler name of a sequential multiplication.
func SequentialLabel(m matmul.Method, size int) string {
	return fmt.Sprintf("matrix_multiply_%s_%dx%d", m, size, size)
}

// ParallelLabel is the profiler name of a parallel multiplication.
func ParallelLabel(m matmul.Method, threads, size int) string {
	return fmt.Sprintf("matrix_multiply_%s_parallel_t%d_%dx%d", m, threads, size, size)
}

func phaseLabel(phase string, size int) string {
	return fmt.Sprintf("matrix_%s_%dx%d", phase, size, size)
}

// variant is one multiplication measured in a profile iteration.
type variant struct {
	label   string
	method  matmul.Method
	threads int // 0 for the sequential kernel
	out     *matrix.Matrix
}

// Profile runs cfg.Iterations rounds for every size in cfg.Sizes, timing
// each phase into prof. Names carry the size, so one profiler can collect
// a whole multi-size run. Every output is cross-checked against the naive
// sequential result; divergence beyond cfg.Tolerance is logged.
func Profile(cfg Config, prof *profiler.Profiler) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	src := cfg.source()
	for _, size := range cfg.Sizes {
		klog.V(1).Infof("profile: %dx%d, %d iterations, threads %v", size, size, cfg.Iterations, cfg.ProfileThreads())
		for range cfg.Iterations {
			if err := profileOnce(cfg, prof, src, size); err != nil {
				return err
			}
		}
	}
	return nil
}

func profileOnce(cfg Config, prof *profiler.Profiler, src rand.Source, size int) error {
	block := cfg.blockSize()
	par := matmul.Parallel{Executor: cfg.Executor}

	var a, b *matrix.Matrix
	var variants []variant
	prof.Time(phaseLabel("create", size), func() {
		a = matrix.MustNew(size, size)
		b = matrix.MustNew(size, size)
		for _, m := range matmul.Methods {
			variants = append(variants, variant{
				label:  SequentialLabel(m, size),
				method: m,
				out:    matrix.MustNew(size, size),
			})
			for _, t := range cfg.ProfileThreads() {
				variants = append(variants, variant{
					label:   ParallelLabel(m, t, size),
					method:  m,
					threads: t,
					out:     matrix.MustNew(size, size),
				})
			}
		}
	})

	prof.Time(phaseLabel("init", size), func() {
		a.FillRandom(src)
		b.FillRandom(src)
		for _, v := range variants {
			v.out.Zero()
		}
	})

	for _, v := range variants {
		var err error
		prof.Time(v.label, func() {
			if v.threads == 0 {
				err = matmul.Multiply(v.method, a, b, v.out, block)
			} else {
				err = par.Multiply(v.method, a, b, v.out, block, v.threads)
			}
		})
		if err != nil {
			return fmt.Errorf("bench: %s: %w", v.label, err)
		}
	}

	// variants[0] is the sequential naive result.
	baseline := variants[0].out
	var diverged []string
	for _, v := range variants[1:] {
		if d := maxAbsDiff(baseline, v.out); d > cfg.Tolerance {
			diverged = append(diverged, fmt.Sprintf("%s=%.6e", strings.TrimPrefix(v.label, "matrix_multiply_"), d))
		}
	}
	if len(diverged) > 0 {
		klog.Warningf("Sanity check failed for size %dx%d: max diff %s", size, size, strings.Join(diverged, ", "))
	}

	prof.Time(phaseLabel("free", size), func() {
		a, b = nil, nil
		clear(variants)
		variants = variants[:0]
	})
	return nil
}
