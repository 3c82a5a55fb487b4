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

	"github.com/ajroetker/go-locality/matrix"
)

// Sentinel errors returned (possibly wrapped) by every kernel entry point.
var (
	// ErrNilInput means A, B or C was nil.
	ErrNilInput = errors.New("matmul: nil matrix")

	// ErrInnerDimension means A.Cols() != B.Rows().
	ErrInnerDimension = errors.New("matmul: inner dimensions do not match")

	// ErrOutputShape means C is not A.Rows() x B.Cols().
	ErrOutputShape = errors.New("matmul: output shape does not match")
)

// FailureKind classifies the outcome of a kernel call.
type FailureKind int

const (
	// Success means the multiplication completed.
	Success FailureKind = iota

	// NilInput corresponds to ErrNilInput.
	NilInput

	// InnerDimension corresponds to ErrInnerDimension.
	InnerDimension

	// OutputShape corresponds to ErrOutputShape.
	OutputShape

	// Unknown is any other error.
	Unknown
)

// String returns a human-readable name for the kind.
func (k FailureKind) String() string {
	switch k {
	case Success:
		return "success"
	case NilInput:
		return "nil input"
	case InnerDimension:
		return "inner dimension mismatch"
	case OutputShape:
		return "output shape mismatch"
	default:
		return "unknown"
	}
}

// Kind maps an error returned by this package back to its FailureKind.
// A nil error is Success.
func Kind(err error) FailureKind {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrNilInput):
		return NilInput
	case errors.Is(err, ErrInnerDimension):
		return InnerDimension
	case errors.Is(err, ErrOutputShape):
		return OutputShape
	default:
		return Unknown
	}
}

// ShapeError reports the shapes involved in a rejected multiplication.
// It unwraps to ErrInnerDimension or ErrOutputShape.
type ShapeError struct {
	Err   error
	ARows int
	ACols int
	BRows int
	BCols int
	CRows int
	CCols int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: A is %dx%d, B is %dx%d, C is %dx%d",
		e.Err, e.ARows, e.ACols, e.BRows, e.BCols, e.CRows, e.CCols)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// validate checks that C = A * B is well formed: A is MxN, B is NxP and
// C is MxP. Kernel inner loops index the flat buffers directly and rely on
// this having passed.
func validate(a, b, c *matrix.Matrix) error {
	if a == nil || b == nil || c == nil {
		return ErrNilInput
	}
	shapeErr := func(err error) error {
		return &ShapeError{
			Err:   err,
			ARows: a.Rows(), ACols: a.Cols(),
			BRows: b.Rows(), BCols: b.Cols(),
			CRows: c.Rows(), CCols: c.Cols(),
		}
	}
	if a.Cols() != b.Rows() {
		return shapeErr(ErrInnerDimension)
	}
	if c.Rows() != a.Rows() || c.Cols() != b.Cols() {
		return shapeErr(ErrOutputShape)
	}
	return nil
}
