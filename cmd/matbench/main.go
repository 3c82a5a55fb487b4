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

// Command matbench measures how loop order, tiling and row partitioning
// affect matrix multiplication speed.
//
// Usage:
//
//	matbench bench [size] [--threads N] [--iterations N] [--output file]
//	matbench profile [extra-size] [--output file]
//	matbench info
//
// bench compares each kernel's sequential and parallel forms and appends
// the averages to a CSV file. profile times every phase of a run over the
// default sizes and overwrites a per-section CSV. info prints the detected
// cache parameters and CPU features.
package main

import (
	goflag "flag"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/ajroetker/go-locality/bench"
	"github.com/ajroetker/go-locality/workerpool"
)

func main() {
	defer klog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "matbench",
		Short:         "Cache-locality benchmarks for matrix multiplication",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	root.AddCommand(newBenchCmd(), newProfileCmd(), newInfoCmd())
	return root
}

// runFlags are the flags shared by bench and profile.
type runFlags struct {
	cfg    bench.Config
	output string
	pool   bool
}

func (f *runFlags) register(fs *pflag.FlagSet, defaultOutput string) {
	fs.IntVarP(&f.cfg.Threads, "threads", "t", f.cfg.Threads, "Number of threads (0 = auto)")
	fs.IntVarP(&f.cfg.Iterations, "iterations", "i", f.cfg.Iterations, "Number of iterations")
	fs.IntVar(&f.cfg.BlockSize, "block-size", f.cfg.BlockSize, "Tile edge for the blocked kernels (0 = derive from L1 size)")
	fs.Uint64Var(&f.cfg.Seed, "seed", f.cfg.Seed, "Seed for random inputs (0 = time based)")
	fs.Float64Var(&f.cfg.Tolerance, "tolerance", f.cfg.Tolerance, "Largest accepted difference between kernels")
	fs.StringVarP(&f.output, "output", "o", defaultOutput, "Output CSV file")
	fs.BoolVar(&f.pool, "pool", false, "Reuse a persistent worker pool instead of spawning goroutines per call")
}

// executor returns the configured executor and a function releasing it.
func (f *runFlags) executor() (workerpool.Executor, func()) {
	if !f.pool {
		return nil, func() {}
	}
	p := workerpool.New(f.cfg.Threads)
	return p, p.Close
}

// parseSize parses a positional matrix size.
func parseSize(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", arg)
	}
	if n <= 0 || n > bench.MaxSize {
		return 0, fmt.Errorf("size must be between 1 and %d, got %d", bench.MaxSize, n)
	}
	return n, nil
}
