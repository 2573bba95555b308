// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides the differentiable operations that build the
// graph walked by Tensor.Backward.
//
// Example:
//
//	x, _ := tensor.FromSlice([]float64{0.5, 2}, tensor.Shape{2}, tensor.Float32)
//	x.RequireGrad()
//	y := autodiff.Sum(autodiff.Exp(x))
//	_ = y.Backward() // x.Grad() = exp(x)
package autodiff

import (
	"github.com/born-ml/gradbench/internal/autodiff"
	"github.com/born-ml/gradbench/tensor"
)

// ErrShapeMismatch is returned when element-wise operands differ in shape.
var ErrShapeMismatch = autodiff.ErrShapeMismatch

// Element-wise binary operations.
func Add(a, b *tensor.Tensor) (*tensor.Tensor, error) { return autodiff.Add(a, b) }
func Sub(a, b *tensor.Tensor) (*tensor.Tensor, error) { return autodiff.Sub(a, b) }
func Mul(a, b *tensor.Tensor) (*tensor.Tensor, error) { return autodiff.Mul(a, b) }
func Div(a, b *tensor.Tensor) (*tensor.Tensor, error) { return autodiff.Div(a, b) }

// Scalar operations.
func AddScalar(x *tensor.Tensor, c float64) *tensor.Tensor { return autodiff.AddScalar(x, c) }
func MulScalar(x *tensor.Tensor, c float64) *tensor.Tensor { return autodiff.MulScalar(x, c) }

// Element-wise unary operations.
func Neg(x *tensor.Tensor) *tensor.Tensor     { return autodiff.Neg(x) }
func Exp(x *tensor.Tensor) *tensor.Tensor     { return autodiff.Exp(x) }
func Log(x *tensor.Tensor) *tensor.Tensor     { return autodiff.Log(x) }
func Log1p(x *tensor.Tensor) *tensor.Tensor   { return autodiff.Log1p(x) }
func Abs(x *tensor.Tensor) *tensor.Tensor     { return autodiff.Abs(x) }
func ReLU(x *tensor.Tensor) *tensor.Tensor    { return autodiff.ReLU(x) }
func Sigmoid(x *tensor.Tensor) *tensor.Tensor { return autodiff.Sigmoid(x) }
func Tanh(x *tensor.Tensor) *tensor.Tensor    { return autodiff.Tanh(x) }
func Square(x *tensor.Tensor) *tensor.Tensor  { return autodiff.Square(x) }
func Sqrt(x *tensor.Tensor) *tensor.Tensor    { return autodiff.Sqrt(x) }

// Reductions. Max is cut from the graph.
func Sum(x *tensor.Tensor) *tensor.Tensor  { return autodiff.Sum(x) }
func Mean(x *tensor.Tensor) *tensor.Tensor { return autodiff.Mean(x) }
func Max(x *tensor.Tensor) *tensor.Tensor  { return autodiff.Max(x) }

// Cast converts x to dtype; gradients return to x in x's dtype.
func Cast(x *tensor.Tensor, dtype tensor.DataType) *tensor.Tensor {
	return autodiff.Cast(x, dtype)
}
