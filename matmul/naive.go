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

import "github.com/ajroetker/go-locality/matrix"

// Naive computes C = A * B with the textbook i-j-k triple loop.
//
//   - A is M x N (row-major)
//   - B is N x P (row-major)
//   - C is M x P (row-major)
//
// Each C[i][j] is accumulated in a local and written once. This is the
// baseline every other kernel is checked against.
func Naive(a, b, c *matrix.Matrix) error {
	if err := validate(a, b, c); err != nil {
		return err
	}
	naiveRows(a.Data(), b.Data(), c.Data(), a.Cols(), b.Cols(), 0, a.Rows())
	return nil
}

// naiveRows computes rows [rowStart, rowEnd) of C = A * B, where A has n
// columns and B has p columns.
func naiveRows(a, b, c []float64, n, p, rowStart, rowEnd int) {
	for i := rowStart; i < rowEnd; i++ {
		aRow := a[i*n : (i+1)*n]
		cRow := c[i*p : (i+1)*p]
		for j := range cRow {
			var sum float64
			for k, av := range aRow {
				sum += av * b[k*p+j]
			}
			cRow[j] = sum
		}
	}
}
