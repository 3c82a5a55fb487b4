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

// Package matmul provides three algorithmically equivalent dense matrix
// multiplication kernels that differ only in memory-access pattern, each in
// a sequential and a parallel form.
//
//   - Naive: i-j-k triple loop; B is read with stride P in the inner loop.
//   - Transpose: B is copied into a P x N transpose first so both operands
//     are read with unit stride.
//   - Blocked: the loop nest is tiled into BLOCK x BLOCK sub-matrices that
//     fit in L1, accumulating into C across reduction blocks.
//
// Example usage:
//
//	// C = A * B where A is MxN, B is NxP, C is MxP
//	a := matrix.MustNew(M, N)
//	b := matrix.MustNew(N, P)
//	c := matrix.MustNew(M, P)
//
//	if err := matmul.BlockedParallel(a, b, c, 0, 0); err != nil {
//	    // shape mismatch or nil input
//	}
//
// Every kernel validates shapes before touching C, so a failed call leaves
// C unmodified. C must not alias A or B.
//
// Parallel forms partition the rows of C into contiguous, disjoint ranges
// and hand each range to one worker. A and B are shared read-only; no
// element of C is written by more than one worker, so no locking is needed
// and the result does not depend on scheduling order.
package matmul
