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

// Package cacheinfo discovers the cache geometry of the running machine and
// derives tile sizes for cache-blocked matrix multiplication from it.
//
// Two independent block-size heuristics are provided because different
// callers use different ones:
//
//   - BlockSizeFromL1 sizes a tile so that A, B and C tiles plus headroom
//     fit in the L1 data cache. Used by matmul.BlockedParallel and by the
//     benchmark harness when no block size is given.
//   - BlockSizeFromCacheLine uses one cache line worth of doubles, clamped
//     to [16, 64]. Used by the sequential matmul.Blocked when no block size
//     is given.
//
// Detection can be overridden with the LOCALITY_CACHE_LINE_SIZE and
// LOCALITY_L1_CACHE_SIZE environment variables (bytes).
package cacheinfo

import (
	"os"
	"runtime"
	"strconv"
	"sync"
)

const (
	// DefaultCacheLineSize is used when the platform cannot be queried.
	DefaultCacheLineSize = 64

	// DefaultL1DataCacheSize is used when the platform cannot be queried.
	DefaultL1DataCacheSize = 32 * 1024

	// MinBlockSize is the smallest tile edge either heuristic returns.
	MinBlockSize = 16

	// MaxBlockSize bounds the doubling search in BlockSizeFromL1.
	MaxBlockSize = 128

	// maxLineBlockSize caps BlockSizeFromCacheLine.
	maxLineBlockSize = 64

	// float64Size is sizeof(double).
	float64Size = 8

	// tilesInL1 is the number of tiles budgeted into L1: A, B, C and headroom.
	tilesInL1 = 4
)

// Environment variables that override detection.
const (
	EnvCacheLineSize = "LOCALITY_CACHE_LINE_SIZE"
	EnvL1CacheSize   = "LOCALITY_L1_CACHE_SIZE"
)

// Source records where a detected value came from.
type Source int

const (
	// SourceDefault means the built-in default was used.
	SourceDefault Source = iota

	// SourcePlatform means the operating system reported the value.
	SourcePlatform

	// SourceEnv means an environment variable override was used.
	SourceEnv
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourcePlatform:
		return platformName
	case SourceEnv:
		return "env"
	default:
		return "unknown"
	}
}

// platformCache holds the OS-reported values; zero means unknown.
type platformCache struct {
	lineSize int
	l1Size   int
}

// queryPlatform is evaluated at most once per process; the hardware does
// not change underneath us.
var queryPlatform = sync.OnceValue(func() platformCache {
	line, l1 := detectPlatform()
	return platformCache{lineSize: line, l1Size: l1}
})

// envInt reads a positive integer from the named environment variable.
func envInt(name string) (int, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func resolve(env string, platform, fallback int) (int, Source) {
	if n, ok := envInt(env); ok {
		return n, SourceEnv
	}
	if platform > 0 {
		return platform, SourcePlatform
	}
	return fallback, SourceDefault
}

// CacheLineSize returns the cache line size in bytes, or
// DefaultCacheLineSize if it cannot be determined.
func CacheLineSize() int {
	n, _ := resolve(EnvCacheLineSize, queryPlatform().lineSize, DefaultCacheLineSize)
	return n
}

// L1DataCacheSize returns the L1 data cache size in bytes, or
// DefaultL1DataCacheSize if it cannot be determined.
func L1DataCacheSize() int {
	n, _ := resolve(EnvL1CacheSize, queryPlatform().l1Size, DefaultL1DataCacheSize)
	return n
}

// BlockSizeFromL1 derives a tile edge from an L1 data cache size in bytes.
//
// It finds the largest power of two whose square fits in l1Bytes/(4*8)
// doubles, searching no further than MaxBlockSize, then halves it once more
// to leave room for other working-set pressure. The result is never below
// MinBlockSize. Non-positive input is treated as DefaultL1DataCacheSize.
func BlockSizeFromL1(l1Bytes int) int {
	if l1Bytes <= 0 {
		l1Bytes = DefaultL1DataCacheSize
	}
	maxElements := l1Bytes / (tilesInL1 * float64Size)
	block := 1
	for block*block <= maxElements && block < MaxBlockSize {
		block *= 2
	}
	block /= 2
	return max(block, MinBlockSize)
}

// BlockSizeFromCacheLine derives a tile edge from a cache line size in bytes:
// the number of doubles per line, clamped to [16, 64].
func BlockSizeFromCacheLine(lineBytes int) int {
	return min(max(lineBytes/float64Size, MinBlockSize), maxLineBlockSize)
}

// L1BlockSize is BlockSizeFromL1 applied to the detected L1 size.
func L1BlockSize() int {
	return BlockSizeFromL1(L1DataCacheSize())
}

// LineBlockSize is BlockSizeFromCacheLine applied to the detected line size.
func LineBlockSize() int {
	return BlockSizeFromCacheLine(CacheLineSize())
}

// HardwareConcurrency returns the number of logical CPUs usable by the
// process, never less than 1.
func HardwareConcurrency() int {
	return max(runtime.NumCPU(), 1)
}

// Info is a snapshot of everything this package detects.
type Info struct {
	CacheLineSize       int
	CacheLineSource     Source
	L1DataCacheSize     int
	L1Source            Source
	L1BlockSize         int
	LineBlockSize       int
	HardwareConcurrency int
}

// DoublesPerLine returns how many float64 values fit in one cache line.
func (i Info) DoublesPerLine() int {
	return i.CacheLineSize / float64Size
}

// Detect gathers an Info for the current machine.
func Detect() Info {
	p := queryPlatform()
	line, lineSrc := resolve(EnvCacheLineSize, p.lineSize, DefaultCacheLineSize)
	l1, l1Src := resolve(EnvL1CacheSize, p.l1Size, DefaultL1DataCacheSize)
	return Info{
		CacheLineSize:       line,
		CacheLineSource:     lineSrc,
		L1DataCacheSize:     l1,
		L1Source:            l1Src,
		L1BlockSize:         BlockSizeFromL1(l1),
		LineBlockSize:       BlockSizeFromCacheLine(line),
		HardwareConcurrency: HardwareConcurrency(),
	}
}
