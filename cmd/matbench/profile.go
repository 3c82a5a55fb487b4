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
	"github.com/ajroetker/go-locality/profiler"
)

func newProfileCmd() *cobra.Command {
	f := &runFlags{cfg: bench.Defaults()}
	var extraSize int

	cmd := &cobra.Command{
		Use:   "profile [extra-size]",
		Short: "Time every phase of a multi-size run",
		Long: "Runs every kernel, sequential and at 1, 2 and --threads workers, over\n" +
			"the default sizes plus an optional extra size, and reports the total\n" +
			"time spent in each named section.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				n, err := parseSize(args[0])
				if err != nil {
					return err
				}
				extraSize = n
			}
			if extraSize != 0 {
				f.cfg.Sizes = append(f.cfg.Sizes, extraSize)
			}
			if err := f.cfg.Validate(); err != nil {
				return err
			}
			exec, release := f.executor()
			defer release()
			f.cfg.Executor = exec

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Matrix Multiplication Profiling\n")
			fmt.Fprintf(out, "================================\n\n")
			if err := bench.WriteCacheReport(out, cacheinfo.Detect(), f.cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "Testing sizes %v (%d iterations, threads %v)...\n",
				f.cfg.Sizes, f.cfg.Iterations, f.cfg.ProfileThreads())

			prof := profiler.New()
			if err := bench.Profile(f.cfg, prof); err != nil {
				return err
			}
			if err := prof.WriteTable(out); err != nil {
				return err
			}
			if err := prof.SaveCSV(f.output); err != nil {
				return err
			}
			fmt.Fprintf(out, "Results saved to %s\n", f.output)
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&f.cfg.Sizes, "sizes", f.cfg.Sizes, "Matrix sizes to profile")
	cmd.Flags().IntVar(&extraSize, "extra-size", 0, fmt.Sprintf("Additional matrix size to profile (1-%d)", bench.MaxSize))
	f.register(cmd.Flags(), "profile_results.csv")
	return cmd
}
