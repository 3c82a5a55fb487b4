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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-locality/bench"
	"github.com/ajroetker/go-locality/cacheinfo"
)

func newBenchCmd() *cobra.Command {
	f := &runFlags{cfg: bench.Defaults()}
	f.cfg.Sizes = nil

	cmd := &cobra.Command{
		Use:   "bench [size]",
		Short: "Compare sequential and parallel kernels at one size",
		Example: "  matbench bench --size 1024 --threads 4\n" +
			"  matbench bench 2048 --iterations 5",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				n, err := parseSize(args[0])
				if err != nil {
					return err
				}
				f.cfg.Size = n
			}
			if err := f.cfg.Validate(); err != nil {
				return err
			}
			exec, release := f.executor()
			defer release()
			f.cfg.Executor = exec

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n========================================================\n")
			fmt.Fprintf(out, "  Concurrent Matrix Multiplication Performance Test\n")
			fmt.Fprintf(out, "========================================================\n\n")
			fmt.Fprintf(out, "Matrix size: %d x %d\n", f.cfg.Size, f.cfg.Size)
			fmt.Fprintf(out, "Iterations: %d\n\n", f.cfg.Iterations)
			if err := bench.WriteCacheReport(out, cacheinfo.Detect(), f.cfg); err != nil {
				return err
			}

			results, err := bench.Run(f.cfg)
			if err != nil {
				return err
			}
			if err := bench.WriteTable(out, results); err != nil {
				return err
			}
			if err := bench.AppendCSV(f.output, results); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nResults saved to: %s\n", f.output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&f.cfg.Size, "size", "s", f.cfg.Size, fmt.Sprintf("Matrix size (1-%d)", bench.MaxSize))
	cmd.Flags().BoolVar(&f.cfg.VerifyReference, "verify", false, "Also check results against gonum")
	f.register(cmd.Flags(), "concurrent_benchmark.csv")
	return cmd
}
