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
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ajroetker/go-locality/cacheinfo"
	"github.com/ajroetker/go-locality/workerpool"
)

const (
	// MaxSize is the largest square matrix edge accepted.
	MaxSize = 4096

	// DefaultTolerance is the largest absolute element difference between
	// two kernels' outputs that is not reported as divergence.
	DefaultTolerance = 1e-9
)

// DefaultSizes are the matrix edges a profile run always covers.
var DefaultSizes = []int{64, 128, 256, 512}

// ErrInvalidConfig is wrapped by every error Config.Validate returns.
var ErrInvalidConfig = errors.New("bench: invalid config")

// Config parameterizes Run and Profile.
type Config struct {
	// Size is the square matrix edge for Run.
	Size int

	// Sizes are the square matrix edges for Profile, in order.
	Sizes []int

	// Iterations is how many timed calls are averaged (Run) or summed
	// (Profile) per kernel.
	Iterations int

	// Threads is the parallel worker count; 0 means hardware concurrency.
	Threads int

	// BlockSize is the blocked kernels' tile edge; 0 means
	// cacheinfo.L1BlockSize.
	BlockSize int

	// Seed drives the input generator; 0 picks one from the clock.
	Seed uint64

	// Tolerance bounds the accepted divergence between kernels.
	Tolerance float64

	// VerifyReference additionally checks every sequential result against
	// gonum's BLAS-backed multiplication.
	VerifyReference bool

	// Executor runs parallel partitions. nil spawns goroutines per call.
	Executor workerpool.Executor
}

// Defaults returns the configuration used when no flags are given.
func Defaults() Config {
	return Config{
		Size:       512,
		Sizes:      append([]int(nil), DefaultSizes...),
		Iterations: 3,
		Tolerance:  DefaultTolerance,
	}
}

// Validate rejects values outside the accepted ranges.
func (c Config) Validate() error {
	if err := validSize(c.Size); err != nil {
		return err
	}
	for _, s := range c.Sizes {
		if err := validSize(s); err != nil {
			return err
		}
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be > 0, got %d", ErrInvalidConfig, c.Iterations)
	}
	if c.Threads < 0 {
		return fmt.Errorf("%w: threads must be >= 0, got %d", ErrInvalidConfig, c.Threads)
	}
	if c.BlockSize < 0 {
		return fmt.Errorf("%w: block size must be >= 0, got %d", ErrInvalidConfig, c.BlockSize)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must be >= 0, got %g", ErrInvalidConfig, c.Tolerance)
	}
	return nil
}

func validSize(n int) error {
	if n <= 0 || n > MaxSize {
		return fmt.Errorf("%w: size must be between 1 and %d, got %d", ErrInvalidConfig, MaxSize, n)
	}
	return nil
}

// threads resolves Threads the way the report shows it: the requested
// count, or hardware concurrency for 0.
func (c Config) threads() int {
	if c.Threads > 0 {
		return c.Threads
	}
	return cacheinfo.HardwareConcurrency()
}

func (c Config) blockSize() int {
	if c.BlockSize > 0 {
		return c.BlockSize
	}
	return cacheinfo.L1BlockSize()
}

// source returns the generator for one run, seeded once.
func (c Config) source() rand.Source {
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewPCG(seed, seed>>32|seed<<32)
}
