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
	"github.com/ajroetker/go-locality/cacheinfo"
	"github.com/ajroetker/go-locality/matrix"
)

// Blocked computes C = A * B using cache tiling.
//
// C is zeroed first, then the (ii, kk, jj) block loops walk BLOCK x BLOCK
// tiles and the inner (i, k, j) loops accumulate A[i][k]*B[k][j] into
// C[i][j]. Several kk blocks contribute to the same C element, so this
// kernel reads and writes C repeatedly. Blocks at the right and bottom
// edges are clipped to the matrix extents.
//
// If blockSize <= 0 the tile edge comes from cacheinfo.LineBlockSize.
func Blocked(a, b, c *matrix.Matrix, blockSize int) error {
	if err := validate(a, b, c); err != nil {
		return err
	}
	if blockSize <= 0 {
		blockSize = cacheinfo.LineBlockSize()
	}
	c.Zero()
	blockedRows(a.Data(), b.Data(), c.Data(), a.Cols(), b.Cols(), blockSize, 0, a.Rows())
	return nil
}

// blockedRows runs the tiled loop nest over rows [rowStart, rowEnd) of C.
// A has n columns, B has p columns. Row tiles start at rowStart and are
// clipped at rowEnd, so callers must pass block-aligned starts to keep the
// same tiling as a full sequential pass. C rows in range must already be
// zero.
func blockedRows(a, b, c []float64, n, p, block, rowStart, rowEnd int) {
	for ii := rowStart; ii < rowEnd; ii += block {
		iMax := min(ii+block, rowEnd)

		for kk := 0; kk < n; kk += block {
			kMax := min(kk+block, n)

			for jj := 0; jj < p; jj += block {
				jMax := min(jj+block, p)

				for i := ii; i < iMax; i++ {
					aRow := a[i*n : (i+1)*n]
					cTile := c[i*p+jj : i*p+jMax]
					for k := kk; k < kMax; k++ {
						av := aRow[k]
						bTile := b[k*p+jj : k*p+jMax]
						for j, bv := range bTile {
							cTile[j] += av * bv
						}
					}
				}
			}
		}
	}
}
