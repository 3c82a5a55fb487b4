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

	"github.com/ajroetker/go-locality/matrix"
)

// TransposeInto writes the transpose of src (R x C) into dst (C x R).
// Row j of dst is column j of src.
func TransposeInto(dst, src *matrix.Matrix) error {
	if dst == nil || src == nil {
		return ErrNilInput
	}
	if dst.Rows() != src.Cols() || dst.Cols() != src.Rows() {
		return fmt.Errorf("%w: transpose of %dx%d into %dx%d",
			ErrOutputShape, src.Rows(), src.Cols(), dst.Rows(), dst.Cols())
	}
	transpose2D(src.Data(), src.Rows(), src.Cols(), dst.Data())
	return nil
}

// transpose2D transposes an r x c row-major buffer into dst (c x r).
func transpose2D(src []float64, r, c int, dst []float64) {
	for i := range r {
		row := src[i*c : (i+1)*c]
		for j, v := range row {
			dst[j*r+i] = v
		}
	}
}

// transposed returns a freshly allocated P x N transpose of b (N x P).
func transposed(b *matrix.Matrix) *matrix.Matrix {
	bt := matrix.MustNew(b.Cols(), b.Rows())
	transpose2D(b.Data(), b.Rows(), b.Cols(), bt.Data())
	return bt
}

// Transpose computes C = A * B by first building B^T, so that the inner
// loop reads both A[i][k] and B^T[j][k] with unit stride. The temporary is
// dropped before returning. The per-element summation order is the same as
// Naive.
func Transpose(a, b, c *matrix.Matrix) error {
	if err := validate(a, b, c); err != nil {
		return err
	}
	bt := transposed(b)
	transposeRows(a.Data(), bt.Data(), c.Data(), a.Cols(), b.Cols(), 0, a.Rows())
	return nil
}

// transposeRows computes rows [rowStart, rowEnd) of C = A * B given
// bt = B^T (p x n).
func transposeRows(a, bt, c []float64, n, p, rowStart, rowEnd int) {
	for i := rowStart; i < rowEnd; i++ {
		aRow := a[i*n : (i+1)*n]
		cRow := c[i*p : (i+1)*p]
		for j := range cRow {
			btRow := bt[j*n : (j+1)*n]
			var sum float64
			for k, av := range aRow {
				sum += av * btRow[k]
			}
			cRow[j] = sum
		}
	}
}
