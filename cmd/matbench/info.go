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
	"io"
	"runtime"
	"strings"
	"unsafe"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-locality/bench"
	"github.com/ajroetker/go-locality/cacheinfo"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print detected cache parameters and CPU features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeInfo(cmd.OutOrStdout(), cacheinfo.Detect())
		},
	}
}

func writeInfo(w io.Writer, info cacheinfo.Info) error {
	fmt.Fprintf(w, "GOOS/GOARCH: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "CPU features: %s\n", strings.Join(cpuFeatures(), " "))
	fmt.Fprintf(w, "Compile-time cache line pad: %d bytes\n", unsafe.Sizeof(cpu.CacheLinePad{}))
	fmt.Fprintf(w, "Line-size block: %d x %d\n", info.LineBlockSize, info.LineBlockSize)
	return bench.WriteCacheReport(w, info, bench.Defaults())
}

// cpuFeatures lists the SIMD and FMA extensions relevant to a
// floating-point kernel on the running architecture.
func cpuFeatures() []string {
	var features []string
	add := func(name string, ok bool) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add("sse2", cpu.X86.HasSSE2)
		add("sse4.2", cpu.X86.HasSSE42)
		add("avx", cpu.X86.HasAVX)
		add("avx2", cpu.X86.HasAVX2)
		add("fma", cpu.X86.HasFMA)
		add("avx512f", cpu.X86.HasAVX512F)
	case "arm64":
		add("fp", cpu.ARM64.HasFP)
		add("asimd", cpu.ARM64.HasASIMD)
		add("asimddp", cpu.ARM64.HasASIMDDP)
		add("sve", cpu.ARM64.HasSVE)
		add("sve2", cpu.ARM64.HasSVE2)
	}
	if len(features) == 0 {
		features = append(features, "none detected")
	}
	return features
}
