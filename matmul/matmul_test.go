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
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ajroetker/go-locality/matrix"
)

const tolerance = 1e-9

// randomMatrix returns a rows x cols matrix filled from a fixed seed so
// failures are reproducible.
func randomMatrix(rows, cols int, seed uint64) *matrix.Matrix {
	m := matrix.MustNew(rows, cols)
	m.FillRandom(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return m
}

// mustFromSlice builds a matrix from literal rows.
func mustFromSlice(t testing.TB, rows [][]float64) *matrix.Matrix {
	t.Helper()
	var data []float64
	for _, r := range rows {
		data = append(data, r...)
	}
	m, err := matrix.FromSlice(len(rows), len(rows[0]), data)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return m
}

func maxDiff(a, b *matrix.Matrix) float64 {
	return floats.Distance(a.Data(), b.Data(), math.Inf(1))
}

// gonumReference computes A * B with gonum's BLAS-backed Dense.Mul.
func gonumReference(a, b *matrix.Matrix) *matrix.Matrix {
	c := matrix.MustNew(a.Rows(), b.Cols())
	c.Dense().Mul(a.Dense(), b.Dense())
	return c
}

type seqKernel struct {
	name string
	fn   func(a, b, c *matrix.Matrix) error
}

func seqKernels(block int) []seqKernel {
	return []seqKernel{
		{"naive", Naive},
		{"transpose", Transpose},
		{fmt.Sprintf("blocked_%d", block), func(a, b, c *matrix.Matrix) error {
			return Blocked(a, b, c, block)
		}},
	}
}

func TestMultiplySmall(t *testing.T) {
	// [[1,2],[3,4]] * [[2,0],[1,2]] = [[4,4],[10,8]]
	a := mustFromSlice(t, [][]float64{{1, 2}, {3, 4}})
	b := mustFromSlice(t, [][]float64{{2, 0}, {1, 2}})
	want := []float64{4, 4, 10, 8}

	run := map[string]func(c *matrix.Matrix) error{
		"naive":            func(c *matrix.Matrix) error { return Naive(a, b, c) },
		"naive_parallel_1": func(c *matrix.Matrix) error { return NaiveParallel(a, b, c, 1) },
		"naive_parallel_2": func(c *matrix.Matrix) error { return NaiveParallel(a, b, c, 2) },
		"transpose":        func(c *matrix.Matrix) error { return Transpose(a, b, c) },
		"blocked":          func(c *matrix.Matrix) error { return Blocked(a, b, c, 0) },
		"blocked_parallel": func(c *matrix.Matrix) error { return BlockedParallel(a, b, c, 1, 2) },
	}
	for name, fn := range run {
		t.Run(name, func(t *testing.T) {
			c := matrix.MustNew(2, 2)
			if err := fn(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, w := range want {
				if got := c.Data()[i]; got != w {
					t.Errorf("c[%d] = %v, want %v", i, got, w)
				}
			}
		})
	}
}

func TestMultiplyIdentity(t *testing.T) {
	a := randomMatrix(3, 3, 7)
	identity := matrix.MustNew(3, 3)
	for i := range 3 {
		identity.Set(i, i, 1)
	}

	for _, k := range seqKernels(16) {
		t.Run(k.name, func(t *testing.T) {
			c := matrix.MustNew(3, 3)
			if err := k.fn(a, identity, c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, v := range a.Data() {
				if c.Data()[i] != v {
					t.Errorf("c[%d] = %v, want exactly %v", i, c.Data()[i], v)
				}
			}
		})
	}
}

func TestKernelsAgree(t *testing.T) {
	testCases := []struct {
		m, n, p int
	}{
		{1, 1, 1},
		{1, 7, 1},
		{5, 3, 4},
		{17, 33, 9},
		{33, 17, 65},
		{64, 64, 64},
		{100, 37, 50},
	}
	blocks := []int{0, 1, 4, 16, 32, 128}

	for _, tc := range testCases {
		a := randomMatrix(tc.m, tc.n, 1)
		b := randomMatrix(tc.n, tc.p, 2)
		want := matrix.MustNew(tc.m, tc.p)
		if err := Naive(a, b, want); err != nil {
			t.Fatalf("Naive %dx%dx%d: %v", tc.m, tc.n, tc.p, err)
		}

		for _, block := range blocks {
			for _, k := range seqKernels(block)[1:] {
				t.Run(fmt.Sprintf("%dx%dx%d/%s", tc.m, tc.n, tc.p, k.name), func(t *testing.T) {
					c := matrix.MustNew(tc.m, tc.p)
					if err := k.fn(a, b, c); err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if d := maxDiff(c, want); d > tolerance {
						t.Errorf("max diff vs naive = %g, want <= %g", d, tolerance)
					}
				})
			}
		}
	}
}

func TestBlockedSmallBlock64(t *testing.T) {
	a := randomMatrix(64, 64, 3)
	b := randomMatrix(64, 64, 4)
	want := matrix.MustNew(64, 64)
	got := matrix.MustNew(64, 64)
	if err := Naive(a, b, want); err != nil {
		t.Fatal(err)
	}
	if err := Blocked(a, b, got, 4); err != nil {
		t.Fatal(err)
	}
	if d := maxDiff(got, want); d > tolerance {
		t.Errorf("blocked(4) max diff vs naive = %g", d)
	}
}

func TestBlockedOverwritesStaleOutput(t *testing.T) {
	a := randomMatrix(20, 20, 5)
	b := randomMatrix(20, 20, 6)
	want := matrix.MustNew(20, 20)
	if err := Naive(a, b, want); err != nil {
		t.Fatal(err)
	}

	c := matrix.MustNew(20, 20)
	for i := range c.Data() {
		c.Data()[i] = 1e6
	}
	if err := Blocked(a, b, c, 8); err != nil {
		t.Fatal(err)
	}
	if d := maxDiff(c, want); d > tolerance {
		t.Errorf("blocked kept stale output: max diff = %g", d)
	}
}

func TestAgainstGonum(t *testing.T) {
	a := randomMatrix(48, 31, 11)
	b := randomMatrix(31, 40, 12)
	want := gonumReference(a, b)

	for _, k := range seqKernels(8) {
		t.Run(k.name, func(t *testing.T) {
			c := matrix.MustNew(48, 40)
			if err := k.fn(a, b, c); err != nil {
				t.Fatal(err)
			}
			if !mat.EqualApprox(c.Dense(), want.Dense(), tolerance) {
				t.Errorf("%s differs from gonum: max diff = %g", k.name, maxDiff(c, want))
			}
		})
	}
}

func TestShapeErrors(t *testing.T) {
	testCases := []struct {
		name     string
		a, b, c  *matrix.Matrix
		wantErr  error
		wantKind FailureKind
	}{
		{"inner", matrix.MustNew(2, 3), matrix.MustNew(4, 2), matrix.MustNew(2, 2), ErrInnerDimension, InnerDimension},
		{"output_rows", matrix.MustNew(2, 3), matrix.MustNew(3, 2), matrix.MustNew(3, 2), ErrOutputShape, OutputShape},
		{"output_cols", matrix.MustNew(2, 3), matrix.MustNew(3, 2), matrix.MustNew(2, 3), ErrOutputShape, OutputShape},
		{"nil_a", nil, matrix.MustNew(3, 2), matrix.MustNew(2, 2), ErrNilInput, NilInput},
		{"nil_b", matrix.MustNew(2, 3), nil, matrix.MustNew(2, 2), ErrNilInput, NilInput},
		{"nil_c", matrix.MustNew(2, 3), matrix.MustNew(3, 2), nil, ErrNilInput, NilInput},
	}

	for _, tc := range testCases {
		for _, k := range seqKernels(0) {
			t.Run(tc.name+"/"+k.name, func(t *testing.T) {
				if tc.c != nil {
					for i := range tc.c.Data() {
						tc.c.Data()[i] = -1
					}
				}
				err := k.fn(tc.a, tc.b, tc.c)
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				if got := Kind(err); got != tc.wantKind {
					t.Errorf("Kind(err) = %v, want %v", got, tc.wantKind)
				}
				if tc.c != nil {
					for i, v := range tc.c.Data() {
						if v != -1 {
							t.Fatalf("c[%d] modified to %v on failure", i, v)
						}
					}
				}
			})
		}
	}
}

func TestShapeErrorDetails(t *testing.T) {
	err := Naive(matrix.MustNew(2, 3), matrix.MustNew(4, 2), matrix.MustNew(2, 2))
	var se *ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("errors.As(%v, *ShapeError) = false", err)
	}
	if se.ACols != 3 || se.BRows != 4 {
		t.Errorf("ShapeError = %+v, want ACols=3 BRows=4", se)
	}
}

func TestKind(t *testing.T) {
	if got := Kind(nil); got != Success {
		t.Errorf("Kind(nil) = %v, want %v", got, Success)
	}
	if got := Kind(errors.New("other")); got != Unknown {
		t.Errorf("Kind(other) = %v, want %v", got, Unknown)
	}
	wrapped := fmt.Errorf("context: %w", ErrNilInput)
	if got := Kind(wrapped); got != NilInput {
		t.Errorf("Kind(wrapped) = %v, want %v", got, NilInput)
	}
}

func TestTransposeInto(t *testing.T) {
	src := mustFromSlice(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	dst := matrix.MustNew(3, 2)
	if err := TransposeInto(dst, src); err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 4, 2, 5, 3, 6}
	for i, w := range want {
		if dst.Data()[i] != w {
			t.Errorf("dst[%d] = %v, want %v", i, dst.Data()[i], w)
		}
	}

	if err := TransposeInto(matrix.MustNew(2, 3), src); !errors.Is(err, ErrOutputShape) {
		t.Errorf("wrong-shape TransposeInto err = %v, want %v", err, ErrOutputShape)
	}
	if err := TransposeInto(nil, src); !errors.Is(err, ErrNilInput) {
		t.Errorf("nil TransposeInto err = %v, want %v", err, ErrNilInput)
	}
}

func TestMethods(t *testing.T) {
	a := randomMatrix(9, 9, 21)
	b := randomMatrix(9, 9, 22)
	want := matrix.MustNew(9, 9)
	if err := Naive(a, b, want); err != nil {
		t.Fatal(err)
	}

	for _, m := range Methods {
		parsed, err := ParseMethod(m.String())
		if err != nil || parsed != m {
			t.Errorf("ParseMethod(%q) = %v, %v", m.String(), parsed, err)
		}

		c := matrix.MustNew(9, 9)
		if err := Multiply(m, a, b, c, 4); err != nil {
			t.Fatalf("Multiply(%v): %v", m, err)
		}
		if d := maxDiff(c, want); d > tolerance {
			t.Errorf("Multiply(%v) max diff = %g", m, d)
		}

		c.Zero()
		if err := (Parallel{}).Multiply(m, a, b, c, 4, 3); err != nil {
			t.Fatalf("Parallel.Multiply(%v): %v", m, err)
		}
		if d := maxDiff(c, want); d > tolerance {
			t.Errorf("Parallel.Multiply(%v) max diff = %g", m, d)
		}
	}

	if _, err := ParseMethod("strassen"); err == nil {
		t.Error("ParseMethod(strassen) succeeded, want error")
	}
	if got, err := ParseMethod("BLOCKED"); err != nil || got != MethodBlocked {
		t.Errorf("ParseMethod(BLOCKED) = %v, %v", got, err)
	}
	if err := Multiply(Method(42), a, b, want, 0); err == nil {
		t.Error("Multiply(Method(42)) succeeded, want error")
	}
}
