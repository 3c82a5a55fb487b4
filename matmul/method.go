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
	"fmt"
	"strings"

	"github.com/ajroetker/go-locality/matrix"
)

// Method selects one of the three kernels.
type Method int

const (
	MethodNaive Method = iota
	MethodTranspose
	MethodBlocked
)

// Methods lists every kernel in the order reports present them.
var Methods = []Method{MethodNaive, MethodTranspose, MethodBlocked}

// String returns the lower-case kernel name used in profiler labels.
func (m Method) String() string {
	switch m {
	case MethodNaive:
		return "naive"
	case MethodTranspose:
		return "transpose"
	case MethodBlocked:
		return "blocked"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod is the inverse of Method.String, ignoring case.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("matmul: unknown method %q", s)
}

// Multiply runs the sequential kernel m. blockSize only applies to
// MethodBlocked.
func Multiply(m Method, a, b, c *matrix.Matrix, blockSize int) error {
	switch m {
	case MethodNaive:
		return Naive(a, b, c)
	case MethodTranspose:
		return Transpose(a, b, c)
	case MethodBlocked:
		return Blocked(a, b, c, blockSize)
	default:
		return fmt.Errorf("matmul: unknown method %d", int(m))
	}
}

// Multiply runs the parallel form of kernel m on p's executor.
func (p Parallel) Multiply(m Method, a, b, c *matrix.Matrix, blockSize, threads int) error {
	switch m {
	case MethodNaive:
		return p.Naive(a, b, c, threads)
	case MethodTranspose:
		return p.Transpose(a, b, c, threads)
	case MethodBlocked:
		return p.Blocked(a, b, c, blockSize, threads)
	default:
		return fmt.Errorf("matmul: unknown method %d", int(m))
	}
}
