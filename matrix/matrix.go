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

// Package matrix provides the dense, row-major float64 buffer that every
// multiplication kernel in this module operates on.
//
// Element (r, c) lives at offset r*Cols()+c of Data(). The shape is fixed
// at creation; there is no resizing. A Matrix is owned by whoever created
// it and is released by the garbage collector once that owner drops it.
//
//	a := matrix.MustNew(512, 512)
//	a.FillRandom(rand.NewPCG(seed, seed))
//	v := a.At(3, 7)
package matrix

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidShape is returned by New when a dimension is not positive.
var ErrInvalidShape = errors.New("matrix: rows and cols must be positive")

// Matrix is a dense row-major matrix of float64 values.
type Matrix struct {
	rows, cols int
	data       []float64
}

// New returns a zero-initialized rows x cols matrix.
func New(rows, cols int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidShape, rows, cols)
	}
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}, nil
}

// MustNew is like New but panics on an invalid shape.
func MustNew(rows, cols int) *Matrix {
	m, err := New(rows, cols)
	if err != nil {
		panic(err)
	}
	return m
}

// FromSlice wraps data (row-major) as a rows x cols matrix without copying.
// The caller hands ownership of data to the returned Matrix.
func FromSlice(rows, cols int, data []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidShape, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("matrix: data length %d does not match %dx%d", len(data), rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns, which is also the row stride.
func (m *Matrix) Cols() int { return m.cols }

// Data returns the underlying row-major buffer. Kernels index it directly
// and rely on the shape having been validated beforehand.
func (m *Matrix) Data() []float64 { return m.data }

// SameShape reports whether m and o have identical extents.
func (m *Matrix) SameShape(o *Matrix) bool {
	return m.rows == o.rows && m.cols == o.cols
}

func (m *Matrix) inBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// At returns element (row, col). Out-of-range reads return 0.
func (m *Matrix) At(row, col int) float64 {
	if m == nil || !m.inBounds(row, col) {
		return 0
	}
	return m.data[row*m.cols+col]
}

// Set stores v at (row, col). Out-of-range writes are ignored.
func (m *Matrix) Set(row, col int, v float64) {
	if m == nil || !m.inBounds(row, col) {
		return
	}
	m.data[row*m.cols+col] = v
}

// Zero sets every element to 0.
func (m *Matrix) Zero() {
	clear(m.data)
}

// FillRandom fills m with values drawn uniformly from [0, 1) using src.
// The caller owns src; seeding it once and reusing it across matrices gives
// a reproducible run.
func (m *Matrix) FillRandom(src rand.Source) {
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	for i := range m.data {
		m.data[i] = u.Rand()
	}
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		rows: m.rows,
		cols: m.cols,
		data: append([]float64(nil), m.data...),
	}
}

// Dense returns a gonum view sharing m's buffer. Writes through either
// value are visible in the other.
func (m *Matrix) Dense() *mat.Dense {
	return mat.NewDense(m.rows, m.cols, m.data)
}

// Print writes m as a human-readable grid, one row per line.
func (m *Matrix) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Matrix (%d x %d):\n", m.rows, m.cols); err != nil {
		return err
	}
	for i := range m.rows {
		row := m.data[i*m.cols : (i+1)*m.cols]
		for _, v := range row {
			if _, err := fmt.Fprintf(w, "%8.4f ", v); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
