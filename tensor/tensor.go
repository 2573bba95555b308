// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor type used by gradbench.
//
// A Tensor holds float values tagged float32 or float64, an optional
// gradient slot, and the operation that produced it:
//
//	x, _ := tensor.FromSlice([]float64{1, -2, 3}, tensor.Shape{3}, tensor.Float32)
//	x.RequireGrad()
//	y := autodiff.Sum(autodiff.Square(x))
//	_ = y.Backward()
//	fmt.Println(x.Grad().Data()) // [2 -4 6]
//	tensor.ZeroGrad(x)           // slot kept, values zeroed
package tensor

import (
	"math/rand"

	"github.com/born-ml/gradbench/internal/tensor"
)

// Tensor is an n-dimensional array with an optional gradient slot.
type Tensor = tensor.Tensor

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} represents a 2×3 matrix; Shape{} is a scalar.
type Shape = tensor.Shape

// DataType is the element precision of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Errors returned by Backward.
var (
	ErrNonScalarBackward = tensor.ErrNonScalarBackward
	ErrNoGraph           = tensor.ErrNoGraph
)

// FromSlice creates a tensor from a copy of data.
func FromSlice(data []float64, shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.FromSlice(data, shape, dtype)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.Zeros(shape, dtype)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.Ones(shape, dtype)
}

// Scalar creates a zero-dimensional tensor.
func Scalar(value float64, dtype DataType) *Tensor {
	return tensor.Scalar(value, dtype)
}

// Randn creates a tensor of standard normal samples drawn from rng.
func Randn(shape Shape, dtype DataType, rng *rand.Rand) (*Tensor, error) {
	return tensor.Randn(shape, dtype, rng)
}

// ZeroGrad zeroes the gradient slot of each tensor that has one.
func ZeroGrad(xs ...*Tensor) {
	tensor.ZeroGrad(xs...)
}
